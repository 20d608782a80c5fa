package loans

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/loanledger/pkg/db/models"
	"github.com/angelmondragon/loanledger/pkg/enums"
	pkgerrors "github.com/angelmondragon/loanledger/pkg/errors"
	"github.com/angelmondragon/loanledger/pkg/outbox/payloads"
)

var hundred = decimal.NewFromInt(100)

// ChargeInput adds fees or penalties to one schedule period, the way an
// external collections job does. MarkOverdue also flips an upcoming period.
type ChargeInput struct {
	Period      int
	Fees        decimal.Decimal
	Penalties   decimal.Decimal
	MarkOverdue bool
}

// OverdueInput drives the overdue sweep for one loan. Periods still upcoming
// and due on or before Cutoff become overdue and PenaltyRate percent of what
// they still owe is added as a penalty.
type OverdueInput struct {
	Cutoff      time.Time
	PenaltyRate decimal.Decimal
}

// OverdueResult lists the periods flipped by MarkOverdue.
type OverdueResult struct {
	LoanID       uuid.UUID       `json:"loan_id"`
	Periods      []int           `json:"periods"`
	PenaltyAdded decimal.Decimal `json:"penalty_added"`
}

func (s *service) AssessCharges(ctx context.Context, actor Actor, loanID uuid.UUID, input ChargeInput) (*LoanDetail, error) {
	if err := actor.validate(); err != nil {
		return nil, err
	}
	if input.Fees.IsNegative() || input.Penalties.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "charges must not be negative")
	}
	if !input.Fees.IsPositive() && !input.Penalties.IsPositive() && !input.MarkOverdue {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nothing to assess")
	}
	for field, amount := range map[string]decimal.Decimal{"fees": input.Fees, "penalties": input.Penalties} {
		if !amount.Equal(amount.Round(s.cfg.Scale)) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s has more than %d decimal places", field, s.cfg.Scale))
		}
	}

	var detail *LoanDetail
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loan, err := s.lockLoan(ctx, repo, actor, loanID)
		if err != nil {
			return err
		}
		if err := requireStatus(loan.ID, loan.Status, enums.LoanStatusDisbursed, "assess charges"); err != nil {
			return err
		}
		periods, err := repo.ListPeriods(ctx, loan.ID)
		if err != nil {
			return repoErr(err, "load schedule")
		}
		idx := -1
		for i := range periods {
			if periods[i].Period == input.Period {
				idx = i
				break
			}
		}
		if idx < 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "schedule period not found").
				WithDetails(map[string]any{"loan_id": loan.ID, "period": input.Period})
		}

		now := s.now()
		p := &periods[idx]
		flipped := false
		p.Fees = p.Fees.Add(input.Fees)
		p.Penalties = p.Penalties.Add(input.Penalties)
		p.Total = p.Total.Add(input.Fees).Add(input.Penalties)
		if p.Status == enums.PeriodStatusPaid && p.Paid.LessThan(p.Total) {
			p.Status = enums.PeriodStatusUpcoming
			if p.DueDate.Before(now) {
				p.Status = enums.PeriodStatusOverdue
			}
		}
		if input.MarkOverdue && p.Status == enums.PeriodStatusUpcoming {
			p.Status = enums.PeriodStatusOverdue
			flipped = true
		}
		if err := repo.SavePeriods(ctx, []models.LoanSchedulePeriod{*p}); err != nil {
			return repoErr(err, "update schedule")
		}
		refreshAggregates(loan, periods)
		if err := repo.SaveLoan(ctx, loan); err != nil {
			return repoErr(err, "update loan")
		}
		if flipped || input.Penalties.IsPositive() {
			if err := s.emit(ctx, tx, actor, enums.EventPeriodsOverdue, enums.AggregateLoan, loan.ID, payloads.PeriodsOverdueEvent{
				LoanID:       loan.ID,
				Periods:      []int{p.Period},
				PenaltyAdded: input.Penalties,
				AsOf:         now,
			}); err != nil {
				return err
			}
		}
		detail = &LoanDetail{Loan: *loan, Periods: periods, Balance: unpaidBalance(periods, now)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logLoan(ctx, &detail.Loan, "charges assessed")
	return detail, nil
}

// MarkOverdue is the in-process collections sweep for a single loan. A loan
// that is no longer disbursed is skipped without error.
func (s *service) MarkOverdue(ctx context.Context, actor Actor, loanID uuid.UUID, input OverdueInput) (*OverdueResult, error) {
	if err := actor.validate(); err != nil {
		return nil, err
	}
	if input.Cutoff.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cutoff required")
	}
	if input.PenaltyRate.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "penalty rate must not be negative")
	}

	result := &OverdueResult{LoanID: loanID, PenaltyAdded: decimal.Zero}
	var loan *models.Loan
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		locked, err := s.lockLoan(ctx, repo, actor, loanID)
		if err != nil {
			return err
		}
		if locked.Status != enums.LoanStatusDisbursed {
			return nil
		}
		periods, err := repo.ListPeriods(ctx, locked.ID)
		if err != nil {
			return repoErr(err, "load schedule")
		}

		var touched []models.LoanSchedulePeriod
		for i := range periods {
			p := &periods[i]
			if p.Status != enums.PeriodStatusUpcoming || p.DueDate.After(input.Cutoff) {
				continue
			}
			p.Status = enums.PeriodStatusOverdue
			if input.PenaltyRate.IsPositive() {
				penalty := p.Remaining().Mul(input.PenaltyRate).Div(hundred).Round(s.cfg.Scale)
				p.Penalties = p.Penalties.Add(penalty)
				p.Total = p.Total.Add(penalty)
				result.PenaltyAdded = result.PenaltyAdded.Add(penalty)
			}
			result.Periods = append(result.Periods, p.Period)
			touched = append(touched, *p)
		}
		if len(touched) == 0 {
			return nil
		}
		if err := repo.SavePeriods(ctx, touched); err != nil {
			return repoErr(err, "update schedule")
		}
		refreshAggregates(locked, periods)
		if err := repo.SaveLoan(ctx, locked); err != nil {
			return repoErr(err, "update loan")
		}
		loan = locked
		return s.emit(ctx, tx, actor, enums.EventPeriodsOverdue, enums.AggregateLoan, locked.ID, payloads.PeriodsOverdueEvent{
			LoanID:       locked.ID,
			Periods:      result.Periods,
			PenaltyAdded: result.PenaltyAdded,
			AsOf:         input.Cutoff,
		})
	})
	if err != nil {
		return nil, err
	}
	if loan != nil {
		s.logLoan(ctx, loan, "periods marked overdue")
	}
	return result, nil
}
