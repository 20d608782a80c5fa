package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/loanledger/pkg/enums"
)

// LoanStatusEvent covers the plain lifecycle moves: applied, approved,
// rejected and closed.
type LoanStatusEvent struct {
	LoanID     uuid.UUID          `json:"loan_id"`
	BorrowerID uuid.UUID          `json:"borrower_id"`
	From       enums.LoanStatus   `json:"from,omitempty"`
	Status     enums.LoanStatus   `json:"status"`
	Amount     decimal.Decimal    `json:"amount"`
	Currency   string             `json:"currency"`
	Reason     string             `json:"reason,omitempty"`
	CloseCause *enums.CloseReason `json:"close_reason,omitempty"`
}

// LoanDisbursedEvent is emitted once the schedule exists and money left the
// funding account.
type LoanDisbursedEvent struct {
	LoanID         uuid.UUID           `json:"loan_id"`
	BorrowerID     uuid.UUID           `json:"borrower_id"`
	Amount         decimal.Decimal     `json:"amount"`
	Currency       string              `json:"currency"`
	Method         enums.PaymentMethod `json:"method"`
	JournalID      uuid.UUID           `json:"journal_id"`
	Periods        int                 `json:"periods"`
	TotalRepayable decimal.Decimal     `json:"total_repayable"`
	FirstDueDate   time.Time           `json:"first_due_date"`
	DisbursedAt    time.Time           `json:"disbursed_at"`
}

// LoanRolloverEvent reports a reschedule or top-up that replaced a loan.
type LoanRolloverEvent struct {
	PreviousLoanID uuid.UUID       `json:"previous_loan_id"`
	LoanID         uuid.UUID       `json:"loan_id"`
	BorrowerID     uuid.UUID       `json:"borrower_id"`
	CarriedOver    decimal.Decimal `json:"carried_over"`
	ExtraPrincipal decimal.Decimal `json:"extra_principal"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	JournalID      uuid.UUID       `json:"journal_id"`
}

// LoanWrittenOffEvent reports principal moved to loan-loss expense.
type LoanWrittenOffEvent struct {
	LoanID     uuid.UUID       `json:"loan_id"`
	BorrowerID uuid.UUID       `json:"borrower_id"`
	Principal  decimal.Decimal `json:"principal"`
	Currency   string          `json:"currency"`
	JournalID  uuid.UUID       `json:"journal_id"`
	Reason     string          `json:"reason"`
}

// PaymentEvent is shared by every payment transition.
type PaymentEvent struct {
	PaymentID   uuid.UUID           `json:"payment_id"`
	LoanID      uuid.UUID           `json:"loan_id"`
	Status      enums.PaymentStatus `json:"status"`
	Amount      decimal.Decimal     `json:"amount"`
	Currency    string              `json:"currency"`
	Method      enums.PaymentMethod `json:"method"`
	Reference   *string             `json:"reference,omitempty"`
	Applied     *decimal.Decimal    `json:"applied,omitempty"`
	Unallocated *decimal.Decimal    `json:"unallocated,omitempty"`
	JournalID   *uuid.UUID          `json:"journal_id,omitempty"`
	Outstanding *decimal.Decimal    `json:"outstanding,omitempty"`
	Reason      string              `json:"reason,omitempty"`
}

// PeriodsOverdueEvent is emitted by the overdue sweep per loan.
type PeriodsOverdueEvent struct {
	LoanID       uuid.UUID       `json:"loan_id"`
	Periods      []int           `json:"periods"`
	PenaltyAdded decimal.Decimal `json:"penalty_added"`
	AsOf         time.Time       `json:"as_of"`
}
