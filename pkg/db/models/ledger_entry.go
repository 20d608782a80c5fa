package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/loanledger/pkg/enums"
)

// LedgerEntry is a single debit or credit line; exactly one side is positive.
type LedgerEntry struct {
	ID        uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	JournalID uuid.UUID          `gorm:"column:journal_id;type:uuid;not null"`
	AccountID uuid.UUID          `gorm:"column:account_id;type:uuid;not null"`
	LoanID    uuid.UUID          `gorm:"column:loan_id;type:uuid;not null"`
	PeriodID  *uuid.UUID         `gorm:"column:period_id;type:uuid"`
	Bucket    enums.LedgerBucket `gorm:"column:bucket;type:ledger_bucket_enum;not null"`
	Debit     decimal.Decimal    `gorm:"column:debit;type:numeric(18,2);not null;default:0"`
	Credit    decimal.Decimal    `gorm:"column:credit;type:numeric(18,2);not null;default:0"`
	Memo      string             `gorm:"column:memo"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
}
