package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/loanledger/internal/accounts"
	"github.com/angelmondragon/loanledger/pkg/enums"
)

// Line is one side of a posting. Either Role or AccountID names the account;
// AccountID wins when both are set, which is how mirrored voids reuse the
// original accounts verbatim.
type Line struct {
	Role      accounts.Role
	AccountID uuid.UUID
	Bucket    enums.LedgerBucket
	PeriodID  *uuid.UUID
	Debit     decimal.Decimal
	Credit    decimal.Decimal
	Memo      string
}

// Journal is an unposted journal entry.
type Journal struct {
	TenantID     uuid.UUID
	BranchID     *uuid.UUID
	LoanID       uuid.UUID
	PaymentID    *uuid.UUID
	ReversalOfID *uuid.UUID
	EventType    enums.JournalEventType
	EntryDate    time.Time
	Currency     string
	Description  string
	PostedBy     uuid.UUID
	Lines        []Line
}

// Totals returns the debit and credit sums of the journal.
func (j Journal) Totals() (decimal.Decimal, decimal.Decimal) {
	debit, credit := decimal.Zero, decimal.Zero
	for _, line := range j.Lines {
		debit = debit.Add(line.Debit)
		credit = credit.Add(line.Credit)
	}
	return debit, credit
}

func (j *Journal) debit(role accounts.Role, bucket enums.LedgerBucket, periodID *uuid.UUID, amount decimal.Decimal, memo string) {
	if !amount.IsPositive() {
		return
	}
	j.Lines = append(j.Lines, Line{Role: role, Bucket: bucket, PeriodID: periodID, Debit: amount, Credit: decimal.Zero, Memo: memo})
}

func (j *Journal) credit(role accounts.Role, bucket enums.LedgerBucket, periodID *uuid.UUID, amount decimal.Decimal, memo string) {
	if !amount.IsPositive() {
		return
	}
	j.Lines = append(j.Lines, Line{Role: role, Bucket: bucket, PeriodID: periodID, Debit: decimal.Zero, Credit: amount, Memo: memo})
}
