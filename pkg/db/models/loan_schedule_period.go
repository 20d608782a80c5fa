package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/loanledger/pkg/enums"
)

// LoanSchedulePeriod is one installment row. Paid buckets never exceed their
// scheduled counterparts.
type LoanSchedulePeriod struct {
	ID       uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	LoanID   uuid.UUID          `gorm:"column:loan_id;type:uuid;not null"`
	TenantID uuid.UUID          `gorm:"column:tenant_id;type:uuid;not null"`
	Period   int                `gorm:"column:period;not null"`
	DueDate  time.Time          `gorm:"column:due_date;type:date;not null"`
	Status   enums.PeriodStatus `gorm:"column:status;type:period_status_enum;not null;default:upcoming"`

	Principal decimal.Decimal `gorm:"column:principal;type:numeric(18,2);not null"`
	Interest  decimal.Decimal `gorm:"column:interest;type:numeric(18,2);not null"`
	Fees      decimal.Decimal `gorm:"column:fees;type:numeric(18,2);not null;default:0"`
	Penalties decimal.Decimal `gorm:"column:penalties;type:numeric(18,2);not null;default:0"`
	Total     decimal.Decimal `gorm:"column:total;type:numeric(18,2);not null"`

	PrincipalPaid decimal.Decimal `gorm:"column:principal_paid;type:numeric(18,2);not null;default:0"`
	InterestPaid  decimal.Decimal `gorm:"column:interest_paid;type:numeric(18,2);not null;default:0"`
	FeesPaid      decimal.Decimal `gorm:"column:fees_paid;type:numeric(18,2);not null;default:0"`
	PenaltiesPaid decimal.Decimal `gorm:"column:penalties_paid;type:numeric(18,2);not null;default:0"`
	Paid          decimal.Decimal `gorm:"column:paid;type:numeric(18,2);not null;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (LoanSchedulePeriod) TableName() string {
	return "loan_schedule_periods"
}

// Remaining is the unpaid portion of the period across every bucket.
func (p LoanSchedulePeriod) Remaining() decimal.Decimal {
	return p.Total.Sub(p.Paid)
}
