package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/loanledger/internal/accounts"
	"github.com/angelmondragon/loanledger/pkg/db/models"
	"github.com/angelmondragon/loanledger/pkg/enums"
	"github.com/angelmondragon/loanledger/pkg/types"
)

func header(loan *models.Loan, eventType enums.JournalEventType, actor uuid.UUID, at time.Time) Journal {
	return Journal{
		TenantID:  loan.TenantID,
		BranchID:  loan.BranchID,
		LoanID:    loan.ID,
		EventType: eventType,
		EntryDate: at,
		Currency:  loan.Currency,
		PostedBy:  actor,
	}
}

// Disbursement debits the receivable and credits the funding account for the
// principal paid out.
func Disbursement(loan *models.Loan, method enums.PaymentMethod, actor uuid.UUID, at time.Time) Journal {
	j := header(loan, enums.JournalEventDisbursement, actor, at)
	j.Description = fmt.Sprintf("Disbursement of loan %s", loan.ID)
	j.debit(accounts.RoleLoanReceivable, enums.LedgerBucketPrincipal, nil, loan.Amount, "principal disbursed")
	j.credit(accounts.FundsRole(method), enums.LedgerBucketCash, nil, loan.Amount, fmt.Sprintf("paid out by %s", method))
	return j
}

// Payment debits the funding account for everything received and credits the
// receivable and income accounts line by line, one line per period and bucket.
// Any unallocated remainder of an overpayment is owed back to the borrower and
// lands on the borrower credit liability.
func Payment(loan *models.Loan, payment *models.LoanPayment, alloc types.Allocation, actor uuid.UUID, at time.Time) Journal {
	j := header(loan, enums.JournalEventPayment, actor, at)
	j.PaymentID = &payment.ID
	j.Description = fmt.Sprintf("Repayment %s on loan %s", payment.ID, loan.ID)
	received := alloc.Applied().Add(alloc.Unallocated)
	j.debit(accounts.FundsRole(payment.Method), enums.LedgerBucketCash, nil, received, fmt.Sprintf("received by %s", payment.Method))
	for _, line := range alloc.Lines {
		periodID := line.PeriodID
		memo := fmt.Sprintf("period %d", line.Period)
		j.credit(accounts.RolePenaltyIncome, enums.LedgerBucketPenalties, &periodID, line.Penalties, memo)
		j.credit(accounts.RoleFeeIncome, enums.LedgerBucketFees, &periodID, line.Fees, memo)
		j.credit(accounts.RoleInterestIncome, enums.LedgerBucketInterest, &periodID, line.Interest, memo)
		j.credit(accounts.RoleLoanReceivable, enums.LedgerBucketPrincipal, &periodID, line.Principal, memo)
	}
	j.credit(accounts.RoleBorrowerCredit, enums.LedgerBucketCash, nil, alloc.Unallocated, "unallocated overpayment")
	return j
}

// Mirror reverses a posted journal by swapping every debit and credit against
// the same accounts. The original rows are never touched.
func Mirror(original *models.JournalEntry, eventType enums.JournalEventType, actor uuid.UUID, at time.Time, reason string) Journal {
	originalID := original.ID
	j := Journal{
		TenantID:     original.TenantID,
		BranchID:     original.BranchID,
		LoanID:       original.LoanID,
		PaymentID:    original.PaymentID,
		ReversalOfID: &originalID,
		EventType:    eventType,
		EntryDate:    at,
		Currency:     original.Currency,
		Description:  fmt.Sprintf("Reversal of %s: %s", original.ID, reason),
		PostedBy:     actor,
	}
	for _, line := range original.Lines {
		j.Lines = append(j.Lines, Line{
			AccountID: line.AccountID,
			Bucket:    line.Bucket,
			PeriodID:  line.PeriodID,
			Debit:     line.Credit,
			Credit:    line.Debit,
			Memo:      line.Memo,
		})
	}
	return j
}

// WriteOff moves unpaid principal from the receivable to loan-loss expense.
func WriteOff(loan *models.Loan, principal decimal.Decimal, actor uuid.UUID, at time.Time, reason string) Journal {
	j := header(loan, enums.JournalEventWriteOff, actor, at)
	j.Description = fmt.Sprintf("Write-off of loan %s: %s", loan.ID, reason)
	j.debit(accounts.RoleLoanLossExpense, enums.LedgerBucketPrincipal, nil, principal, "principal written off")
	j.credit(accounts.RoleLoanReceivable, enums.LedgerBucketPrincipal, nil, principal, "principal written off")
	return j
}

// Rollover describes how an old loan's balance moves into its successor.
type Rollover struct {
	OldLoan       *models.Loan
	NewLoan       *models.Loan
	Principal     decimal.Decimal
	Interest      decimal.Decimal
	Fees          decimal.Decimal
	Penalties     decimal.Decimal
	ExtraCash     decimal.Decimal
	FundingMethod enums.PaymentMethod
}

// RolloverJournal debits the receivable for the new principal and credits the
// old receivable, income for capitalized charges, and funds for any top-up
// cash. It is posted against the new loan.
func RolloverJournal(r Rollover, eventType enums.JournalEventType, actor uuid.UUID, at time.Time) Journal {
	j := header(r.NewLoan, eventType, actor, at)
	j.Description = fmt.Sprintf("Rollover of loan %s into %s", r.OldLoan.ID, r.NewLoan.ID)
	j.debit(accounts.RoleLoanReceivable, enums.LedgerBucketPrincipal, nil, r.NewLoan.Amount, "new principal")
	j.credit(accounts.RoleLoanReceivable, enums.LedgerBucketPrincipal, nil, r.Principal, fmt.Sprintf("principal carried from %s", r.OldLoan.ID))
	j.credit(accounts.RoleInterestIncome, enums.LedgerBucketInterest, nil, r.Interest, "interest capitalized")
	j.credit(accounts.RoleFeeIncome, enums.LedgerBucketFees, nil, r.Fees, "fees capitalized")
	j.credit(accounts.RolePenaltyIncome, enums.LedgerBucketPenalties, nil, r.Penalties, "penalties capitalized")
	j.credit(accounts.FundsRole(r.FundingMethod), enums.LedgerBucketCash, nil, r.ExtraCash, "top-up paid out")
	return j
}
