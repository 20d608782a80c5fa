package loans

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/loanledger/internal/repo"
	"github.com/angelmondragon/loanledger/pkg/db/models"
	"github.com/angelmondragon/loanledger/pkg/enums"
	"github.com/angelmondragon/loanledger/pkg/pagination"
)

// Repository persists loans, their schedule periods and payments. Every read
// is scoped to a tenant.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	SetLockTimeout(ctx context.Context, timeout time.Duration) error

	CreateLoan(ctx context.Context, loan *models.Loan) error
	FindLoan(ctx context.Context, tenantID, loanID uuid.UUID) (*models.Loan, error)
	LockLoan(ctx context.Context, tenantID, loanID uuid.UUID) (*models.Loan, error)
	SaveLoan(ctx context.Context, loan *models.Loan) error
	ListLoans(ctx context.Context, filter ListFilter) ([]models.Loan, error)
	ListLoansWithDuePeriods(ctx context.Context, asOf time.Time, limit int) ([]models.Loan, error)

	CreatePeriods(ctx context.Context, periods []models.LoanSchedulePeriod) error
	ListPeriods(ctx context.Context, loanID uuid.UUID) ([]models.LoanSchedulePeriod, error)
	SavePeriods(ctx context.Context, periods []models.LoanSchedulePeriod) error

	CreatePayment(ctx context.Context, payment *models.LoanPayment) error
	FindPayment(ctx context.Context, loanID, paymentID uuid.UUID) (*models.LoanPayment, error)
	SavePayment(ctx context.Context, payment *models.LoanPayment) error
	ListPayments(ctx context.Context, loanID uuid.UUID) ([]models.LoanPayment, error)
}

// ListFilter narrows a loan listing. Cursor follows created_at DESC, id DESC.
type ListFilter struct {
	TenantID   uuid.UUID
	BranchID   *uuid.UUID
	BorrowerID *uuid.UUID
	Status     *enums.LoanStatus
	Cursor     *pagination.Cursor
	Limit      int
}

type repository struct {
	base repo.Base
}

// NewRepository returns a loan repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{base: r.base.WithTx(tx)}
}

func (r *repository) SetLockTimeout(ctx context.Context, timeout time.Duration) error {
	return r.base.SetLockTimeout(ctx, timeout)
}

func (r *repository) CreateLoan(ctx context.Context, loan *models.Loan) error {
	if loan.ID == uuid.Nil {
		loan.ID = uuid.New()
	}
	return r.base.DB(ctx).Create(loan).Error
}

func (r *repository) FindLoan(ctx context.Context, tenantID, loanID uuid.UUID) (*models.Loan, error) {
	var loan models.Loan
	if err := r.base.DB(ctx).
		Where("id = ? AND tenant_id = ?", loanID, tenantID).
		First(&loan).Error; err != nil {
		return nil, err
	}
	return &loan, nil
}

// LockLoan reads the loan with SELECT ... FOR UPDATE. It must run inside the
// operation's transaction, before periods or payments are read.
func (r *repository) LockLoan(ctx context.Context, tenantID, loanID uuid.UUID) (*models.Loan, error) {
	var loan models.Loan
	if err := r.base.ForUpdate(ctx).
		Where("id = ? AND tenant_id = ?", loanID, tenantID).
		First(&loan).Error; err != nil {
		return nil, err
	}
	return &loan, nil
}

func (r *repository) SaveLoan(ctx context.Context, loan *models.Loan) error {
	return r.base.DB(ctx).Save(loan).Error
}

func (r *repository) ListLoans(ctx context.Context, filter ListFilter) ([]models.Loan, error) {
	query := r.base.DB(ctx).Where("tenant_id = ?", filter.TenantID)
	if filter.BranchID != nil {
		query = query.Where("branch_id = ?", *filter.BranchID)
	}
	if filter.BorrowerID != nil {
		query = query.Where("borrower_id = ?", *filter.BorrowerID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	var loans []models.Loan
	err := pagination.Keyset(query, filter.Cursor, filter.Limit).Find(&loans).Error
	return loans, err
}

// ListLoansWithDuePeriods finds disbursed loans holding an upcoming period due
// on or before asOf. Used by the overdue sweep.
func (r *repository) ListLoansWithDuePeriods(ctx context.Context, asOf time.Time, limit int) ([]models.Loan, error) {
	due := r.base.DB(ctx).
		Model(&models.LoanSchedulePeriod{}).
		Select("loan_id").
		Where("status = ? AND due_date <= ?", enums.PeriodStatusUpcoming, asOf)

	query := r.base.DB(ctx).
		Where("status = ?", enums.LoanStatusDisbursed).
		Where("id IN (?)", due).
		Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var loans []models.Loan
	err := query.Find(&loans).Error
	return loans, err
}

func (r *repository) CreatePeriods(ctx context.Context, periods []models.LoanSchedulePeriod) error {
	if len(periods) == 0 {
		return nil
	}
	for i := range periods {
		if periods[i].ID == uuid.Nil {
			periods[i].ID = uuid.New()
		}
	}
	return r.base.DB(ctx).Create(&periods).Error
}

func (r *repository) ListPeriods(ctx context.Context, loanID uuid.UUID) ([]models.LoanSchedulePeriod, error) {
	var periods []models.LoanSchedulePeriod
	err := r.base.DB(ctx).
		Where("loan_id = ?", loanID).
		Order("period ASC").
		Find(&periods).Error
	return periods, err
}

func (r *repository) SavePeriods(ctx context.Context, periods []models.LoanSchedulePeriod) error {
	db := r.base.DB(ctx)
	for i := range periods {
		if err := db.Save(&periods[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) CreatePayment(ctx context.Context, payment *models.LoanPayment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	return r.base.DB(ctx).Create(payment).Error
}

func (r *repository) FindPayment(ctx context.Context, loanID, paymentID uuid.UUID) (*models.LoanPayment, error) {
	var payment models.LoanPayment
	if err := r.base.DB(ctx).
		Where("id = ? AND loan_id = ?", paymentID, loanID).
		First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) SavePayment(ctx context.Context, payment *models.LoanPayment) error {
	return r.base.DB(ctx).Save(payment).Error
}

func (r *repository) ListPayments(ctx context.Context, loanID uuid.UUID) ([]models.LoanPayment, error) {
	var payments []models.LoanPayment
	err := r.base.DB(ctx).
		Where("loan_id = ?", loanID).
		Order("payment_date ASC").
		Order("created_at ASC").
		Find(&payments).Error
	return payments, err
}
