package loans

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/loanledger/internal/ledger"
	"github.com/angelmondragon/loanledger/internal/schedule"
	"github.com/angelmondragon/loanledger/pkg/db/models"
	"github.com/angelmondragon/loanledger/pkg/enums"
	pkgerrors "github.com/angelmondragon/loanledger/pkg/errors"
	"github.com/angelmondragon/loanledger/pkg/outbox/payloads"
)

// TermsOverride replaces individual terms on the replacement loan. Nil
// fields keep the previous loan's value.
type TermsOverride struct {
	InterestRate       *decimal.Decimal
	RateBasis          *enums.RateBasis
	TermValue          *int
	TermUnit           *enums.TermUnit
	RepaymentFrequency *enums.RepaymentFrequency
	InterestMethod     *enums.InterestMethod
}

// RescheduleInput restructures a disbursed loan. Date anchors the new
// schedule and decides which interest is already due.
type RescheduleInput struct {
	Terms TermsOverride
	Date  *time.Time
	Note  string
}

// TopUpInput adds fresh principal on top of the carried-over balance. Method
// is how the extra cash is paid out.
type TopUpInput struct {
	ExtraPrincipal decimal.Decimal
	Method         enums.PaymentMethod
	Terms          TermsOverride
	Date           *time.Time
	Note           string
}

// RolloverResult holds the superseded loan and its replacement.
type RolloverResult struct {
	Previous    models.Loan          `json:"previous"`
	Loan        LoanDetail           `json:"loan"`
	CarriedOver Balance              `json:"carried_over"`
	Journal     *models.JournalEntry `json:"journal"`
}

type rolloverKind struct {
	closeReason enums.CloseReason
	journal     enums.JournalEventType
	event       enums.OutboxEventType
	logMsg      string
}

var (
	rescheduleKind = rolloverKind{
		closeReason: enums.CloseReasonRescheduled,
		journal:     enums.JournalEventReschedule,
		event:       enums.EventLoanRescheduled,
		logMsg:      "loan rescheduled",
	}
	topUpKind = rolloverKind{
		closeReason: enums.CloseReasonToppedUp,
		journal:     enums.JournalEventTopUp,
		event:       enums.EventLoanToppedUp,
		logMsg:      "loan topped up",
	}
)

type rolloverRequest struct {
	kind   rolloverKind
	terms  TermsOverride
	date   *time.Time
	note   string
	extra  decimal.Decimal
	method *enums.PaymentMethod
}

func (s *service) Reschedule(ctx context.Context, actor Actor, loanID uuid.UUID, input RescheduleInput) (*RolloverResult, error) {
	return s.rollover(ctx, actor, loanID, rolloverRequest{
		kind:  rescheduleKind,
		terms: input.Terms,
		date:  input.Date,
		note:  input.Note,
		extra: decimal.Zero,
	})
}

func (s *service) TopUp(ctx context.Context, actor Actor, loanID uuid.UUID, input TopUpInput) (*RolloverResult, error) {
	if err := s.checkScale(input.ExtraPrincipal, "extra principal"); err != nil {
		return nil, err
	}
	if !input.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid top-up method "+string(input.Method))
	}
	method := input.Method
	return s.rollover(ctx, actor, loanID, rolloverRequest{
		kind:   topUpKind,
		terms:  input.Terms,
		date:   input.Date,
		note:   input.Note,
		extra:  input.ExtraPrincipal,
		method: &method,
	})
}

// rollover closes a disbursed loan and opens its replacement, already
// disbursed, for the carried-over balance plus any extra principal.
func (s *service) rollover(ctx context.Context, actor Actor, loanID uuid.UUID, req rolloverRequest) (*RolloverResult, error) {
	if err := actor.validate(); err != nil {
		return nil, err
	}
	at := s.now()
	if req.date != nil {
		at = req.date.UTC()
	}

	var result *RolloverResult
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		old, err := s.lockLoan(ctx, repo, actor, loanID)
		if err != nil {
			return err
		}
		if err := requireStatus(old.ID, old.Status, enums.LoanStatusDisbursed, string(req.kind.closeReason)); err != nil {
			return err
		}
		periods, err := repo.ListPeriods(ctx, old.ID)
		if err != nil {
			return repoErr(err, "load schedule")
		}
		carried := unpaidBalance(periods, at)
		principal := carried.CarriedOver().Add(req.extra)
		if !principal.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeConflict, "loan has no balance to roll over").
				WithDetails(map[string]any{"loan_id": old.ID})
		}

		next := successor(old, req, principal, actor, at)
		sched, err := schedule.Generate(termsOf(next, principal, at), s.cfg.scheduleConfig())
		if err != nil {
			return err
		}
		nextPeriods := buildPeriods(next, sched)
		refreshAggregates(next, nextPeriods)
		if err := repo.CreateLoan(ctx, next); err != nil {
			return repoErr(err, "create replacement loan")
		}
		if err := repo.CreatePeriods(ctx, nextPeriods); err != nil {
			return repoErr(err, "create schedule")
		}

		entry, err := s.ledger.Post(ctx, tx, ledger.RolloverJournal(ledger.Rollover{
			OldLoan:       old,
			NewLoan:       next,
			Principal:     carried.Principal,
			Interest:      carried.InterestDue,
			Fees:          carried.Fees,
			Penalties:     carried.Penalties,
			ExtraCash:     req.extra,
			FundingMethod: *next.DisbursementMethod,
		}, req.kind.journal, actor.ActorID, at))
		if err != nil {
			return err
		}

		old.SupersededByID = &next.ID
		if err := s.closeLoan(ctx, tx, repo, actor, old, req.kind.closeReason, req.note); err != nil {
			return err
		}

		if err := s.emit(ctx, tx, actor, req.kind.event, enums.AggregateLoan, next.ID, payloads.LoanRolloverEvent{
			PreviousLoanID: old.ID,
			LoanID:         next.ID,
			BorrowerID:     next.BorrowerID,
			CarriedOver:    carried.CarriedOver(),
			ExtraPrincipal: req.extra,
			Amount:         next.Amount,
			Currency:       next.Currency,
			JournalID:      entry.ID,
		}); err != nil {
			return err
		}

		result = &RolloverResult{
			Previous:    *old,
			Loan:        LoanDetail{Loan: *next, Periods: nextPeriods, Balance: unpaidBalance(nextPeriods, at)},
			CarriedOver: carried,
			Journal:     entry,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logLoan(ctx, &result.Loan.Loan, req.kind.logMsg)
	return result, nil
}

func successor(old *models.Loan, req rolloverRequest, principal decimal.Decimal, actor Actor, at time.Time) *models.Loan {
	method := enums.PaymentMethodBank
	if old.DisbursementMethod != nil {
		method = *old.DisbursementMethod
	}
	if req.method != nil {
		method = *req.method
	}
	next := &models.Loan{
		ID:                 uuid.New(),
		TenantID:           old.TenantID,
		BranchID:           old.BranchID,
		BorrowerID:         old.BorrowerID,
		ProductID:          old.ProductID,
		Currency:           old.Currency,
		Amount:             principal,
		InterestRate:       old.InterestRate,
		RateBasis:          old.RateBasis,
		TermValue:          old.TermValue,
		TermUnit:           old.TermUnit,
		RepaymentFrequency: old.RepaymentFrequency,
		InterestMethod:     old.InterestMethod,
		Status:             enums.LoanStatusDisbursed,
		WrittenOff:         decimal.Zero,
		InitiatedBy:        actor.ActorID,
		ApprovedBy:         &actor.ActorID,
		ApprovalDate:       &at,
		DisbursedBy:        &actor.ActorID,
		DisbursementDate:   &at,
		DisbursementMethod: &method,
	}
	if req.kind.closeReason == enums.CloseReasonToppedUp {
		next.TopUpOfID = &old.ID
	} else {
		next.RescheduledFromID = &old.ID
	}

	t := req.terms
	if t.InterestRate != nil {
		next.InterestRate = *t.InterestRate
	}
	if t.RateBasis != nil {
		next.RateBasis = *t.RateBasis
	}
	if t.TermValue != nil {
		next.TermValue = *t.TermValue
	}
	if t.TermUnit != nil {
		next.TermUnit = *t.TermUnit
	}
	if t.RepaymentFrequency != nil {
		next.RepaymentFrequency = *t.RepaymentFrequency
	}
	if t.InterestMethod != nil {
		next.InterestMethod = *t.InterestMethod
	}
	return next
}
