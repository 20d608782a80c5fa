package ledger

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/loanledger/pkg/db/models"
	"github.com/angelmondragon/loanledger/pkg/enums"
)

// Repository persists journal entries and their lines. Entries are never
// updated or deleted.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.JournalEntry) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.JournalEntry, error)
	FindByPayment(ctx context.Context, paymentID uuid.UUID, eventType enums.JournalEventType) (*models.JournalEntry, error)
	ListByLoan(ctx context.Context, loanID uuid.UUID) ([]models.JournalEntry, error)
	ListLinesByLoan(ctx context.Context, loanID uuid.UUID) ([]models.LedgerEntry, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a journal repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.JournalEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(entry).Error; err != nil {
		return err
	}
	if len(entry.Lines) == 0 {
		return nil
	}
	for i := range entry.Lines {
		if entry.Lines[i].ID == uuid.Nil {
			entry.Lines[i].ID = uuid.New()
		}
		entry.Lines[i].JournalID = entry.ID
		entry.Lines[i].LoanID = entry.LoanID
	}
	return r.db.WithContext(ctx).Create(&entry.Lines).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.JournalEntry, error) {
	var entry models.JournalEntry
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		First(&entry, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) FindByPayment(ctx context.Context, paymentID uuid.UUID, eventType enums.JournalEventType) (*models.JournalEntry, error) {
	var entry models.JournalEntry
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("payment_id = ? AND event_type = ?", paymentID, eventType).
		Order("created_at ASC").
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) ListByLoan(ctx context.Context, loanID uuid.UUID) ([]models.JournalEntry, error) {
	var entries []models.JournalEntry
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("loan_id = ?", loanID).
		Order("entry_date ASC, created_at ASC").
		Find(&entries).Error
	return entries, err
}

func (r *repository) ListLinesByLoan(ctx context.Context, loanID uuid.UUID) ([]models.LedgerEntry, error) {
	var lines []models.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("created_at ASC").
		Find(&lines).Error
	return lines, err
}
