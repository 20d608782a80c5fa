package loans

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/loanledger/internal/ledger"
	"github.com/angelmondragon/loanledger/internal/schedule"
	"github.com/angelmondragon/loanledger/pkg/config"
	dbpkg "github.com/angelmondragon/loanledger/pkg/db"
	"github.com/angelmondragon/loanledger/pkg/db/models"
	"github.com/angelmondragon/loanledger/pkg/enums"
	pkgerrors "github.com/angelmondragon/loanledger/pkg/errors"
	"github.com/angelmondragon/loanledger/pkg/logger"
	"github.com/angelmondragon/loanledger/pkg/outbox"
	"github.com/angelmondragon/loanledger/pkg/outbox/payloads"
	"github.com/angelmondragon/loanledger/pkg/pagination"
)

// Service runs every loan and payment operation inside one database
// transaction, holding the loan row lock for its duration.
type Service interface {
	Apply(ctx context.Context, actor Actor, input ApplyInput) (*models.Loan, error)
	Approve(ctx context.Context, actor Actor, loanID uuid.UUID) (*models.Loan, error)
	Reject(ctx context.Context, actor Actor, loanID uuid.UUID, reason string) (*models.Loan, error)
	Disburse(ctx context.Context, actor Actor, loanID uuid.UUID, input DisburseInput) (*LoanDetail, error)
	Close(ctx context.Context, actor Actor, loanID uuid.UUID, note string) (*models.Loan, error)
	Reschedule(ctx context.Context, actor Actor, loanID uuid.UUID, input RescheduleInput) (*RolloverResult, error)
	TopUp(ctx context.Context, actor Actor, loanID uuid.UUID, input TopUpInput) (*RolloverResult, error)
	WriteOff(ctx context.Context, actor Actor, loanID uuid.UUID, reason string) (*models.Loan, error)
	AssessCharges(ctx context.Context, actor Actor, loanID uuid.UUID, input ChargeInput) (*LoanDetail, error)
	MarkOverdue(ctx context.Context, actor Actor, loanID uuid.UUID, input OverdueInput) (*OverdueResult, error)
	Get(ctx context.Context, actor Actor, loanID uuid.UUID) (*LoanDetail, error)
	List(ctx context.Context, actor Actor, input ListInput) (*ListResult, error)

	RecordPayment(ctx context.Context, actor Actor, loanID uuid.UUID, input RecordPaymentInput) (*PaymentResult, error)
	ApprovePayment(ctx context.Context, actor Actor, loanID, paymentID uuid.UUID) (*PaymentResult, error)
	RejectPayment(ctx context.Context, actor Actor, loanID, paymentID uuid.UUID, reason string) (*models.LoanPayment, error)
	VoidPayment(ctx context.Context, actor Actor, loanID, paymentID uuid.UUID, reason string) (*PaymentResult, error)
	GetPayment(ctx context.Context, actor Actor, loanID, paymentID uuid.UUID) (*models.LoanPayment, error)
	ListPayments(ctx context.Context, actor Actor, loanID uuid.UUID) ([]models.LoanPayment, error)
}

// Config holds the engine settings the service hands to the generator and
// allocator.
type Config struct {
	Scale               int32
	RoundingTolerance   decimal.Decimal
	LockTimeout         time.Duration
	DefaultCurrency     string
	AutoApprovePayments bool
}

// ConfigFrom extracts the service settings from the loaded configuration.
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		Scale:               cfg.Engine.Scale,
		RoundingTolerance:   cfg.Engine.RoundingTolerance,
		LockTimeout:         cfg.Engine.LockTimeout,
		DefaultCurrency:     cfg.Engine.DefaultCurrency,
		AutoApprovePayments: cfg.FeatureFlags.AutoApprovePayments,
	}
}

func (c Config) scheduleConfig() schedule.Config {
	return schedule.Config{Scale: c.Scale}
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ApplyInput carries a loan application with terms already resolved from the
// product catalog.
type ApplyInput struct {
	BorrowerID         uuid.UUID
	ProductID          *uuid.UUID
	Currency           string
	Amount             decimal.Decimal
	InterestRate       decimal.Decimal
	RateBasis          enums.RateBasis
	TermValue          int
	TermUnit           enums.TermUnit
	RepaymentFrequency enums.RepaymentFrequency
	InterestMethod     enums.InterestMethod
}

// DisburseInput names how the principal leaves the books. Date defaults to
// now and anchors the schedule.
type DisburseInput struct {
	Method enums.PaymentMethod
	Date   *time.Time
}

// LoanDetail is a loan together with its schedule and unpaid balance.
type LoanDetail struct {
	Loan    models.Loan                 `json:"loan"`
	Periods []models.LoanSchedulePeriod `json:"periods"`
	Balance Balance                     `json:"balance"`
}

// ListInput filters the loan listing.
type ListInput struct {
	Status     *enums.LoanStatus
	BorrowerID *uuid.UUID
	Page       pagination.Params
}

// ListResult is one page of loans.
type ListResult struct {
	Loans      []models.Loan
	NextCursor string
}

type service struct {
	repo   Repository
	tx     dbpkg.TxRunner
	ledger ledger.Service
	events eventEmitter
	cfg    Config
	logg   *logger.Logger
	now    func() time.Time
}

// NewService wires the loan service.
func NewService(repo Repository, tx dbpkg.TxRunner, ledgerSvc ledger.Service, events eventEmitter, cfg Config, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("loans repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if events == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	if cfg.Scale < 0 {
		return nil, fmt.Errorf("money scale must not be negative")
	}
	if cfg.DefaultCurrency == "" {
		return nil, fmt.Errorf("default currency required")
	}
	return &service{
		repo:   repo,
		tx:     tx,
		ledger: ledgerSvc,
		events: events,
		cfg:    cfg,
		logg:   logg,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Apply(ctx context.Context, actor Actor, input ApplyInput) (*models.Loan, error) {
	if err := actor.validate(); err != nil {
		return nil, err
	}
	if input.BorrowerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "borrower id required")
	}
	if input.RateBasis == "" {
		input.RateBasis = enums.RateBasisPerPeriod
	}
	if err := s.checkScale(input.Amount, "amount"); err != nil {
		return nil, err
	}
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = s.cfg.DefaultCurrency
	}

	now := s.now()
	terms := schedule.Terms{
		Principal:        input.Amount,
		Rate:             input.InterestRate,
		RateBasis:        input.RateBasis,
		TermValue:        input.TermValue,
		TermUnit:         input.TermUnit,
		Frequency:        input.RepaymentFrequency,
		Method:           input.InterestMethod,
		DisbursementDate: now,
	}
	if err := terms.Validate(); err != nil {
		return nil, err
	}

	loan := &models.Loan{
		ID:                 uuid.New(),
		TenantID:           actor.TenantID,
		BranchID:           actor.BranchID,
		BorrowerID:         input.BorrowerID,
		ProductID:          input.ProductID,
		Currency:           currency,
		Amount:             input.Amount,
		InterestRate:       input.InterestRate,
		RateBasis:          input.RateBasis,
		TermValue:          input.TermValue,
		TermUnit:           input.TermUnit,
		RepaymentFrequency: input.RepaymentFrequency,
		InterestMethod:     input.InterestMethod,
		Status:             enums.LoanStatusPending,
		WrittenOff:         decimal.Zero,
		InitiatedBy:        actor.ActorID,
	}
	refreshAggregates(loan, nil)

	err := s.inTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).CreateLoan(ctx, loan); err != nil {
			return repoErr(err, "create loan")
		}
		return s.emit(ctx, tx, actor, enums.EventLoanApplied, enums.AggregateLoan, loan.ID, statusEvent(loan, "", ""))
	})
	if err != nil {
		return nil, err
	}
	s.logLoan(ctx, loan, "loan applied")
	return loan, nil
}

func (s *service) Approve(ctx context.Context, actor Actor, loanID uuid.UUID) (*models.Loan, error) {
	if err := actor.validate(); err != nil {
		return nil, err
	}
	var loan *models.Loan
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		locked, err := s.lockLoan(ctx, repo, actor, loanID)
		if err != nil {
			return err
		}
		from := locked.Status
		if err := checkTransition(locked.ID, from, enums.LoanStatusApproved); err != nil {
			return err
		}
		now := s.now()
		locked.Status = enums.LoanStatusApproved
		locked.ApprovedBy = &actor.ActorID
		locked.ApprovalDate = &now
		if err := repo.SaveLoan(ctx, locked); err != nil {
			return repoErr(err, "update loan")
		}
		loan = locked
		return s.emit(ctx, tx, actor, enums.EventLoanApproved, enums.AggregateLoan, locked.ID, statusEvent(locked, from, ""))
	})
	if err != nil {
		return nil, err
	}
	s.logLoan(ctx, loan, "loan approved")
	return loan, nil
}

func (s *service) Reject(ctx context.Context, actor Actor, loanID uuid.UUID, reason string) (*models.Loan, error) {
	if err := actor.validate(); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejection reason required")
	}
	var loan *models.Loan
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		locked, err := s.lockLoan(ctx, repo, actor, loanID)
		if err != nil {
			return err
		}
		from := locked.Status
		if err := checkTransition(locked.ID, from, enums.LoanStatusRejected); err != nil {
			return err
		}
		now := s.now()
		locked.Status = enums.LoanStatusRejected
		locked.RejectedBy = &actor.ActorID
		locked.RejectionDate = &now
		locked.RejectReason = &reason
		if err := repo.SaveLoan(ctx, locked); err != nil {
			return repoErr(err, "update loan")
		}
		loan = locked
		return s.emit(ctx, tx, actor, enums.EventLoanRejected, enums.AggregateLoan, locked.ID, statusEvent(locked, from, reason))
	})
	if err != nil {
		return nil, err
	}
	s.logLoan(ctx, loan, "loan rejected")
	return loan, nil
}

func (s *service) Disburse(ctx context.Context, actor Actor, loanID uuid.UUID, input DisburseInput) (*LoanDetail, error) {
	if err := actor.validate(); err != nil {
		return nil, err
	}
	if !input.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid disbursement method %q", input.Method))
	}
	disbursedAt := s.now()
	if input.Date != nil {
		disbursedAt = input.Date.UTC()
	}

	var detail *LoanDetail
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loan, err := s.lockLoan(ctx, repo, actor, loanID)
		if err != nil {
			return err
		}
		if err := checkTransition(loan.ID, loan.Status, enums.LoanStatusDisbursed); err != nil {
			return err
		}

		sched, err := schedule.Generate(termsOf(loan, loan.Amount, disbursedAt), s.cfg.scheduleConfig())
		if err != nil {
			return err
		}
		periods := buildPeriods(loan, sched)
		if err := repo.CreatePeriods(ctx, periods); err != nil {
			return repoErr(err, "create schedule")
		}

		method := input.Method
		loan.Status = enums.LoanStatusDisbursed
		loan.DisbursedBy = &actor.ActorID
		loan.DisbursementDate = &disbursedAt
		loan.DisbursementMethod = &method
		refreshAggregates(loan, periods)
		if err := repo.SaveLoan(ctx, loan); err != nil {
			return repoErr(err, "update loan")
		}

		entry, err := s.ledger.Post(ctx, tx, ledger.Disbursement(loan, method, actor.ActorID, disbursedAt))
		if err != nil {
			return err
		}

		if err := s.emit(ctx, tx, actor, enums.EventLoanDisbursed, enums.AggregateLoan, loan.ID, payloads.LoanDisbursedEvent{
			LoanID:         loan.ID,
			BorrowerID:     loan.BorrowerID,
			Amount:         loan.Amount,
			Currency:       loan.Currency,
			Method:         method,
			JournalID:      entry.ID,
			Periods:        len(periods),
			TotalRepayable: sched.TotalRepayable,
			FirstDueDate:   periods[0].DueDate,
			DisbursedAt:    disbursedAt,
		}); err != nil {
			return err
		}
		detail = &LoanDetail{Loan: *loan, Periods: periods, Balance: unpaidBalance(periods, disbursedAt)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logLoan(ctx, &detail.Loan, "loan disbursed")
	return detail, nil
}

func (s *service) Close(ctx context.Context, actor Actor, loanID uuid.UUID, note string) (*models.Loan, error) {
	if err := actor.validate(); err != nil {
		return nil, err
	}
	var loan *models.Loan
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		locked, err := s.lockLoan(ctx, repo, actor, loanID)
		if err != nil {
			return err
		}
		if err := checkTransition(locked.ID, locked.Status, enums.LoanStatusClosed); err != nil {
			return err
		}
		periods, err := repo.ListPeriods(ctx, locked.ID)
		if err != nil {
			return repoErr(err, "load schedule")
		}
		refreshAggregates(locked, periods)
		if locked.Outstanding.GreaterThan(s.cfg.RoundingTolerance) {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "loan still has an outstanding balance").
				WithDetails(map[string]any{
					"loan_id":     locked.ID,
					"current":     locked.Status,
					"target":      enums.LoanStatusClosed,
					"outstanding": locked.Outstanding.String(),
					"tolerance":   s.cfg.RoundingTolerance.String(),
				})
		}
		if err := s.closeLoan(ctx, tx, repo, actor, locked, enums.CloseReasonRepaid, note); err != nil {
			return err
		}
		loan = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logLoan(ctx, loan, "loan closed")
	return loan, nil
}

func (s *service) WriteOff(ctx context.Context, actor Actor, loanID uuid.UUID, reason string) (*models.Loan, error) {
	if err := actor.validate(); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "write-off reason required")
	}
	var loan *models.Loan
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		locked, err := s.lockLoan(ctx, repo, actor, loanID)
		if err != nil {
			return err
		}
		if err := checkTransition(locked.ID, locked.Status, enums.LoanStatusClosed); err != nil {
			return err
		}
		periods, err := repo.ListPeriods(ctx, locked.ID)
		if err != nil {
			return repoErr(err, "load schedule")
		}
		refreshAggregates(locked, periods)
		if !locked.Outstanding.GreaterThan(s.cfg.RoundingTolerance) {
			return pkgerrors.New(pkgerrors.CodeConflict, "nothing left to write off, close the loan instead").
				WithDetails(map[string]any{"loan_id": locked.ID, "outstanding": locked.Outstanding.String()})
		}

		now := s.now()
		unpaid := unpaidBalance(periods, now)
		var journalID uuid.UUID
		if unpaid.Principal.IsPositive() {
			entry, err := s.ledger.Post(ctx, tx, ledger.WriteOff(locked, unpaid.Principal, actor.ActorID, now, reason))
			if err != nil {
				return err
			}
			journalID = entry.ID
		}

		locked.WrittenOff = locked.WrittenOff.Add(locked.Outstanding)
		refreshAggregates(locked, periods)
		if err := s.emit(ctx, tx, actor, enums.EventLoanWrittenOff, enums.AggregateLoan, locked.ID, payloads.LoanWrittenOffEvent{
			LoanID:     locked.ID,
			BorrowerID: locked.BorrowerID,
			Principal:  unpaid.Principal,
			Currency:   locked.Currency,
			JournalID:  journalID,
			Reason:     reason,
		}); err != nil {
			return err
		}
		if err := s.closeLoan(ctx, tx, repo, actor, locked, enums.CloseReasonWrittenOff, reason); err != nil {
			return err
		}
		loan = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logLoan(ctx, loan, "loan written off")
	return loan, nil
}

func (s *service) Get(ctx context.Context, actor Actor, loanID uuid.UUID) (*LoanDetail, error) {
	if err := actor.validate(); err != nil {
		return nil, err
	}
	loan, err := s.findLoan(ctx, s.repo, actor, loanID)
	if err != nil {
		return nil, err
	}
	periods, err := s.repo.ListPeriods(ctx, loan.ID)
	if err != nil {
		return nil, repoErr(err, "load schedule")
	}
	return &LoanDetail{Loan: *loan, Periods: periods, Balance: unpaidBalance(periods, s.now())}, nil
}

func (s *service) List(ctx context.Context, actor Actor, input ListInput) (*ListResult, error) {
	if err := actor.validate(); err != nil {
		return nil, err
	}
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid loan status %q", *input.Status))
	}
	cursor, err := pagination.ParseCursor(input.Page.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.ListLoans(ctx, ListFilter{
		TenantID:   actor.TenantID,
		BranchID:   actor.BranchID,
		BorrowerID: input.BorrowerID,
		Status:     input.Status,
		Cursor:     cursor,
		Limit:      input.Page.Limit,
	})
	if err != nil {
		return nil, repoErr(err, "list loans")
	}
	page, next := pagination.Trim(rows, input.Page.Limit, func(l models.Loan) pagination.Cursor {
		return pagination.Cursor{CreatedAt: l.CreatedAt, ID: l.ID}
	})
	return &ListResult{Loans: page, NextCursor: next}, nil
}

// closeLoan moves a locked, disbursed loan to closed and queues the event.
func (s *service) closeLoan(ctx context.Context, tx *gorm.DB, repo Repository, actor Actor, loan *models.Loan, reason enums.CloseReason, note string) error {
	from := loan.Status
	if err := checkTransition(loan.ID, from, enums.LoanStatusClosed); err != nil {
		return err
	}
	now := s.now()
	loan.Status = enums.LoanStatusClosed
	loan.ClosedBy = &actor.ActorID
	loan.ClosedAt = &now
	loan.CloseReason = &reason
	if note = strings.TrimSpace(note); note != "" {
		loan.CloseNote = &note
	}
	if err := repo.SaveLoan(ctx, loan); err != nil {
		return repoErr(err, "update loan")
	}
	event := statusEvent(loan, from, note)
	event.CloseCause = &reason
	return s.emit(ctx, tx, actor, enums.EventLoanClosed, enums.AggregateLoan, loan.ID, event)
}

func (s *service) inTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	err := s.tx.WithTx(ctx, fn)
	if err == nil {
		return nil
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	return repoErr(err, "commit loan transaction")
}

func (s *service) lockLoan(ctx context.Context, repo Repository, actor Actor, loanID uuid.UUID) (*models.Loan, error) {
	if err := repo.SetLockTimeout(ctx, s.cfg.LockTimeout); err != nil {
		return nil, repoErr(err, "set lock timeout")
	}
	loan, err := repo.LockLoan(ctx, actor.TenantID, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, loanNotFound(loanID)
		}
		if dbpkg.IsLockConflict(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeLockConflict, err, "loan is locked by another operation").
				WithDetails(map[string]any{"loan_id": loanID})
		}
		return nil, repoErr(err, "lock loan")
	}
	return loan, nil
}

func (s *service) findLoan(ctx context.Context, repo Repository, actor Actor, loanID uuid.UUID) (*models.Loan, error) {
	loan, err := repo.FindLoan(ctx, actor.TenantID, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, loanNotFound(loanID)
		}
		return nil, repoErr(err, "load loan")
	}
	return loan, nil
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, actor Actor, eventType enums.OutboxEventType, aggregateType enums.OutboxAggregateType, aggregateID uuid.UUID, data any) error {
	if err := s.events.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		Actor:         actor.ref(),
		Data:          data,
		Version:       1,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue outbox event")
	}
	return nil
}

func (s *service) checkScale(amount decimal.Decimal, field string) error {
	if !amount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s must be positive", field))
	}
	if !amount.Equal(amount.Round(s.cfg.Scale)) {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s has more than %d decimal places", field, s.cfg.Scale))
	}
	return nil
}

func (s *service) logLoan(ctx context.Context, loan *models.Loan, msg string) {
	if s.logg == nil || loan == nil {
		return
	}
	logCtx := s.logg.WithLoanID(ctx, loan.ID.String())
	logCtx = s.logg.WithFields(logCtx, map[string]any{
		"status":      string(loan.Status),
		"outstanding": loan.Outstanding.String(),
	})
	s.logg.Info(logCtx, msg)
}

func repoErr(err error, msg string) error {
	if dbpkg.IsLockConflict(err) {
		return pkgerrors.Wrap(pkgerrors.CodeLockConflict, err, "loan is locked by another operation")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}

func loanNotFound(loanID uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "loan not found").
		WithDetails(map[string]any{"loan_id": loanID})
}

func termsOf(loan *models.Loan, principal decimal.Decimal, disbursedAt time.Time) schedule.Terms {
	return schedule.Terms{
		Principal:        principal,
		Rate:             loan.InterestRate,
		RateBasis:        loan.RateBasis,
		TermValue:        loan.TermValue,
		TermUnit:         loan.TermUnit,
		Frequency:        loan.RepaymentFrequency,
		Method:           loan.InterestMethod,
		DisbursementDate: disbursedAt,
	}
}

func buildPeriods(loan *models.Loan, sched schedule.Schedule) []models.LoanSchedulePeriod {
	periods := make([]models.LoanSchedulePeriod, 0, len(sched.Periods))
	for _, p := range sched.Periods {
		periods = append(periods, models.LoanSchedulePeriod{
			ID:            uuid.New(),
			LoanID:        loan.ID,
			TenantID:      loan.TenantID,
			Period:        p.Number,
			DueDate:       p.DueDate,
			Status:        enums.PeriodStatusUpcoming,
			Principal:     p.Principal,
			Interest:      p.Interest,
			Fees:          p.Fees,
			Penalties:     p.Penalties,
			Total:         p.Total,
			PrincipalPaid: decimal.Zero,
			InterestPaid:  decimal.Zero,
			FeesPaid:      decimal.Zero,
			PenaltiesPaid: decimal.Zero,
			Paid:          decimal.Zero,
		})
	}
	return periods
}

func statusEvent(loan *models.Loan, from enums.LoanStatus, reason string) payloads.LoanStatusEvent {
	return payloads.LoanStatusEvent{
		LoanID:     loan.ID,
		BorrowerID: loan.BorrowerID,
		From:       from,
		Status:     loan.Status,
		Amount:     loan.Amount,
		Currency:   loan.Currency,
		Reason:     reason,
	}
}
