package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/loanledger/pkg/enums"
	"github.com/angelmondragon/loanledger/pkg/types"
)

// LoanPayment records money received against a loan. (loan_id, method,
// reference) is unique whenever reference is present.
type LoanPayment struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	LoanID      uuid.UUID           `gorm:"column:loan_id;type:uuid;not null"`
	TenantID    uuid.UUID           `gorm:"column:tenant_id;type:uuid;not null"`
	BranchID    *uuid.UUID          `gorm:"column:branch_id;type:uuid"`
	Currency    string              `gorm:"column:currency;not null"`
	AmountPaid  decimal.Decimal     `gorm:"column:amount_paid;type:numeric(18,2);not null"`
	PaymentDate time.Time           `gorm:"column:payment_date;not null"`
	Method      enums.PaymentMethod `gorm:"column:method;type:payment_method_enum;not null"`
	Reference   *string             `gorm:"column:reference"`
	Status      enums.PaymentStatus `gorm:"column:status;type:payment_status_enum;not null;default:pending"`
	Applied     bool                `gorm:"column:applied;not null;default:false"`
	Allocation  *types.Allocation   `gorm:"column:allocation;type:jsonb"`
	Note        *string             `gorm:"column:note"`

	RecordedBy   uuid.UUID  `gorm:"column:recorded_by;type:uuid;not null"`
	ApprovedBy   *uuid.UUID `gorm:"column:approved_by;type:uuid"`
	ApprovedAt   *time.Time `gorm:"column:approved_at"`
	RejectedBy   *uuid.UUID `gorm:"column:rejected_by;type:uuid"`
	RejectedAt   *time.Time `gorm:"column:rejected_at"`
	RejectReason *string    `gorm:"column:reject_reason"`
	VoidedBy     *uuid.UUID `gorm:"column:voided_by;type:uuid"`
	VoidedAt     *time.Time `gorm:"column:voided_at"`
	VoidReason   *string    `gorm:"column:void_reason"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
