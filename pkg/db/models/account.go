package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/loanledger/pkg/enums"
)

// Account is a chart-of-accounts node referenced by ledger lines.
type Account struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code      string            `gorm:"column:code;not null;uniqueIndex"`
	Name      string            `gorm:"column:name;not null"`
	Type      enums.AccountType `gorm:"column:type;type:account_type_enum;not null"`
	ParentID  *uuid.UUID        `gorm:"column:parent_id;type:uuid"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
