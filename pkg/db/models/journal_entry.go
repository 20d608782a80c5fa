package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/loanledger/pkg/enums"
)

// JournalEntry groups the ledger lines of one business event. Rows are
// append-only; a void posts a new entry pointing at the original.
type JournalEntry struct {
	ID           uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID     uuid.UUID              `gorm:"column:tenant_id;type:uuid;not null"`
	BranchID     *uuid.UUID             `gorm:"column:branch_id;type:uuid"`
	LoanID       uuid.UUID              `gorm:"column:loan_id;type:uuid;not null"`
	PaymentID    *uuid.UUID             `gorm:"column:payment_id;type:uuid"`
	ReversalOfID *uuid.UUID             `gorm:"column:reversal_of_id;type:uuid"`
	EventType    enums.JournalEventType `gorm:"column:event_type;type:journal_event_type_enum;not null"`
	EntryDate    time.Time              `gorm:"column:entry_date;not null"`
	Currency     string                 `gorm:"column:currency;not null"`
	Description  string                 `gorm:"column:description;not null"`
	PostedBy     uuid.UUID              `gorm:"column:posted_by;type:uuid;not null"`
	CreatedAt    time.Time              `gorm:"column:created_at;autoCreateTime"`

	Lines []LedgerEntry `gorm:"foreignKey:JournalID"`
}
