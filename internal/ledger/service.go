package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/loanledger/internal/accounts"
	"github.com/angelmondragon/loanledger/pkg/db/models"
	"github.com/angelmondragon/loanledger/pkg/enums"
	pkgerrors "github.com/angelmondragon/loanledger/pkg/errors"
	"github.com/angelmondragon/loanledger/pkg/logger"
	"github.com/angelmondragon/loanledger/pkg/metrics"
)

// Service posts balanced journals and reads them back.
type Service interface {
	Post(ctx context.Context, tx *gorm.DB, journal Journal) (*models.JournalEntry, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.JournalEntry, error)
	FindPaymentJournal(ctx context.Context, tx *gorm.DB, paymentID uuid.UUID) (*models.JournalEntry, error)
	ListByLoan(ctx context.Context, loanID uuid.UUID) ([]models.JournalEntry, error)
	Balances(ctx context.Context, loanID uuid.UUID) ([]AccountBalance, error)
}

// AccountBalance is the net movement of one account for a loan.
type AccountBalance struct {
	AccountID uuid.UUID       `json:"account_id"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Net       decimal.Decimal `json:"net"`
}

type service struct {
	repo     Repository
	accounts accounts.Service
	metrics  *metrics.LedgerMetrics
	logg     *logger.Logger
	now      func() time.Time
}

// NewService wires the journal poster.
func NewService(repo Repository, accountsSvc accounts.Service, m *metrics.LedgerMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if accountsSvc == nil {
		return nil, fmt.Errorf("accounts service required")
	}
	return &service{
		repo:     repo,
		accounts: accountsSvc,
		metrics:  m,
		logg:     logg,
		now:      time.Now,
	}, nil
}

// Post validates the journal, resolves role-based lines to accounts and writes
// the entry inside tx. Nothing is written when the journal does not balance.
func (s *service) Post(ctx context.Context, tx *gorm.DB, journal Journal) (*models.JournalEntry, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "journal must be posted inside a transaction")
	}
	if err := s.validate(ctx, journal); err != nil {
		return nil, err
	}

	accountIDs, err := s.resolve(ctx, tx, journal.Lines)
	if err != nil {
		return nil, err
	}

	entryDate := journal.EntryDate
	if entryDate.IsZero() {
		entryDate = s.now().UTC()
	}
	entry := &models.JournalEntry{
		ID:           uuid.New(),
		TenantID:     journal.TenantID,
		BranchID:     journal.BranchID,
		LoanID:       journal.LoanID,
		PaymentID:    journal.PaymentID,
		ReversalOfID: journal.ReversalOfID,
		EventType:    journal.EventType,
		EntryDate:    entryDate,
		Currency:     journal.Currency,
		Description:  journal.Description,
		PostedBy:     journal.PostedBy,
	}
	for i, line := range journal.Lines {
		entry.Lines = append(entry.Lines, models.LedgerEntry{
			ID:        uuid.New(),
			JournalID: entry.ID,
			AccountID: accountIDs[i],
			LoanID:    journal.LoanID,
			PeriodID:  line.PeriodID,
			Bucket:    line.Bucket,
			Debit:     line.Debit,
			Credit:    line.Credit,
			Memo:      line.Memo,
		})
	}

	if err := s.repo.WithTx(tx).Create(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert journal entry")
	}
	s.metrics.IncPosted(string(journal.EventType))
	return entry, nil
}

func (s *service) validate(ctx context.Context, journal Journal) error {
	if !journal.EventType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid journal event type %q", journal.EventType))
	}
	if journal.LoanID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "journal loan id required")
	}
	if len(journal.Lines) < 2 {
		return s.imbalance(ctx, journal, "journal needs at least two lines")
	}
	for i, line := range journal.Lines {
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return s.imbalance(ctx, journal, fmt.Sprintf("line %d has a negative amount", i))
		}
		if line.Debit.IsPositive() == line.Credit.IsPositive() {
			return s.imbalance(ctx, journal, fmt.Sprintf("line %d must carry exactly one of debit or credit", i))
		}
		if line.AccountID == uuid.Nil && line.Role == "" {
			return s.imbalance(ctx, journal, fmt.Sprintf("line %d has no account", i))
		}
	}
	debit, credit := journal.Totals()
	if !debit.Equal(credit) {
		return s.imbalance(ctx, journal, "debits and credits differ")
	}
	return nil
}

func (s *service) imbalance(ctx context.Context, journal Journal, reason string) error {
	debit, credit := journal.Totals()
	err := pkgerrors.New(pkgerrors.CodeLedgerImbalance, reason).WithDetails(map[string]any{
		"event_type": journal.EventType,
		"loan_id":    journal.LoanID,
		"debit":      debit.String(),
		"credit":     credit.String(),
	})
	s.metrics.IncImbalance(string(journal.EventType))
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"loan_id":    journal.LoanID.String(),
			"event_type": string(journal.EventType),
			"debit":      debit.String(),
			"credit":     credit.String(),
		})
		s.logg.Error(logCtx, "journal rejected", err)
	}
	return err
}

func (s *service) resolve(ctx context.Context, tx *gorm.DB, lines []Line) ([]uuid.UUID, error) {
	seen := map[accounts.Role]struct{}{}
	var roles []accounts.Role
	for _, line := range lines {
		if line.AccountID != uuid.Nil {
			continue
		}
		if _, ok := seen[line.Role]; ok {
			continue
		}
		seen[line.Role] = struct{}{}
		roles = append(roles, line.Role)
	}

	var byRole map[accounts.Role]models.Account
	if len(roles) > 0 {
		resolved, err := s.accounts.Resolve(ctx, tx, roles...)
		if err != nil {
			return nil, err
		}
		byRole = resolved
	}

	ids := make([]uuid.UUID, len(lines))
	for i, line := range lines {
		if line.AccountID != uuid.Nil {
			ids[i] = line.AccountID
			continue
		}
		ids[i] = byRole[line.Role].ID
	}
	return ids, nil
}

func (s *service) FindByID(ctx context.Context, id uuid.UUID) (*models.JournalEntry, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "journal entry not found").
				WithDetails(map[string]any{"journal_id": id})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load journal entry")
	}
	return entry, nil
}

// FindPaymentJournal returns the posting made when a payment was applied.
func (s *service) FindPaymentJournal(ctx context.Context, tx *gorm.DB, paymentID uuid.UUID) (*models.JournalEntry, error) {
	entry, err := s.repo.WithTx(tx).FindByPayment(ctx, paymentID, enums.JournalEventPayment)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment journal not found").
				WithDetails(map[string]any{"payment_id": paymentID})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment journal")
	}
	return entry, nil
}

func (s *service) ListByLoan(ctx context.Context, loanID uuid.UUID) ([]models.JournalEntry, error) {
	entries, err := s.repo.ListByLoan(ctx, loanID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list journal entries")
	}
	return entries, nil
}

// Balances sums a loan's ledger lines per account, in first-seen order.
func (s *service) Balances(ctx context.Context, loanID uuid.UUID) ([]AccountBalance, error) {
	lines, err := s.repo.ListLinesByLoan(ctx, loanID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ledger lines")
	}
	index := map[uuid.UUID]int{}
	var out []AccountBalance
	for _, line := range lines {
		i, ok := index[line.AccountID]
		if !ok {
			i = len(out)
			index[line.AccountID] = i
			out = append(out, AccountBalance{AccountID: line.AccountID, Debit: decimal.Zero, Credit: decimal.Zero})
		}
		out[i].Debit = out[i].Debit.Add(line.Debit)
		out[i].Credit = out[i].Credit.Add(line.Credit)
	}
	for i := range out {
		out[i].Net = out[i].Debit.Sub(out[i].Credit)
	}
	return out, nil
}
