package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/loanledger/pkg/enums"
)

// Loan is the aggregate root for a borrower's credit facility. Outstanding and
// the totals are derived from the schedule and refreshed on every mutation.
type Loan struct {
	ID                 uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID           uuid.UUID                `gorm:"column:tenant_id;type:uuid;not null"`
	BranchID           *uuid.UUID               `gorm:"column:branch_id;type:uuid"`
	BorrowerID         uuid.UUID                `gorm:"column:borrower_id;type:uuid;not null"`
	ProductID          *uuid.UUID               `gorm:"column:product_id;type:uuid"`
	Currency           string                   `gorm:"column:currency;not null"`
	Amount             decimal.Decimal          `gorm:"column:amount;type:numeric(18,2);not null"`
	InterestRate       decimal.Decimal          `gorm:"column:interest_rate;type:numeric(12,6);not null"`
	RateBasis          enums.RateBasis          `gorm:"column:rate_basis;type:rate_basis_enum;not null"`
	TermValue          int                      `gorm:"column:term_value;not null"`
	TermUnit           enums.TermUnit           `gorm:"column:term_unit;type:term_unit_enum;not null"`
	RepaymentFrequency enums.RepaymentFrequency `gorm:"column:repayment_frequency;type:repayment_frequency_enum;not null"`
	InterestMethod     enums.InterestMethod     `gorm:"column:interest_method;type:interest_method_enum;not null"`
	Status             enums.LoanStatus         `gorm:"column:status;type:loan_status_enum;not null;default:pending"`

	Outstanding   decimal.Decimal `gorm:"column:outstanding;type:numeric(18,2);not null;default:0"`
	TotalPaid     decimal.Decimal `gorm:"column:total_paid;type:numeric(18,2);not null;default:0"`
	TotalInterest decimal.Decimal `gorm:"column:total_interest;type:numeric(18,2);not null;default:0"`
	TotalCharges  decimal.Decimal `gorm:"column:total_charges;type:numeric(18,2);not null;default:0"`
	WrittenOff    decimal.Decimal `gorm:"column:written_off;type:numeric(18,2);not null;default:0"`

	RescheduledFromID *uuid.UUID `gorm:"column:rescheduled_from_id;type:uuid"`
	TopUpOfID         *uuid.UUID `gorm:"column:top_up_of_id;type:uuid"`
	SupersededByID    *uuid.UUID `gorm:"column:superseded_by_id;type:uuid"`

	InitiatedBy        uuid.UUID            `gorm:"column:initiated_by;type:uuid;not null"`
	ApprovedBy         *uuid.UUID           `gorm:"column:approved_by;type:uuid"`
	ApprovalDate       *time.Time           `gorm:"column:approval_date"`
	RejectedBy         *uuid.UUID           `gorm:"column:rejected_by;type:uuid"`
	RejectionDate      *time.Time           `gorm:"column:rejection_date"`
	RejectReason       *string              `gorm:"column:reject_reason"`
	DisbursedBy        *uuid.UUID           `gorm:"column:disbursed_by;type:uuid"`
	DisbursementDate   *time.Time           `gorm:"column:disbursement_date"`
	DisbursementMethod *enums.PaymentMethod `gorm:"column:disbursement_method;type:payment_method_enum"`
	ClosedBy           *uuid.UUID           `gorm:"column:closed_by;type:uuid"`
	ClosedAt           *time.Time           `gorm:"column:closed_at"`
	CloseReason        *enums.CloseReason   `gorm:"column:close_reason;type:close_reason_enum"`
	CloseNote          *string              `gorm:"column:close_note"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
