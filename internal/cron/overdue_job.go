package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/angelmondragon/loanledger/internal/loans"
	"github.com/angelmondragon/loanledger/pkg/db/models"
	"github.com/angelmondragon/loanledger/pkg/logger"
	"github.com/angelmondragon/loanledger/pkg/metrics"
)

const defaultOverdueBatch = 200

// OverdueJobParams configures the overdue sweep.
type OverdueJobParams struct {
	Logger      *logger.Logger
	Loans       dueLoanFinder
	Marker      overdueMarker
	Metrics     *metrics.CronJobMetrics
	ActorID     uuid.UUID
	GraceDays   int
	PenaltyRate decimal.Decimal
	BatchSize   int
}

type dueLoanFinder interface {
	ListLoansWithDuePeriods(ctx context.Context, asOf time.Time, limit int) ([]models.Loan, error)
}

type overdueMarker interface {
	MarkOverdue(ctx context.Context, actor loans.Actor, loanID uuid.UUID, input loans.OverdueInput) (*loans.OverdueResult, error)
}

// NewOverdueJob builds the job that flips past-due periods to overdue and
// charges the configured penalty.
func NewOverdueJob(params OverdueJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Loans == nil {
		return nil, fmt.Errorf("loan repository required")
	}
	if params.Marker == nil {
		return nil, fmt.Errorf("loan service required")
	}
	if params.ActorID == uuid.Nil {
		return nil, fmt.Errorf("cron actor id required")
	}
	if params.GraceDays < 0 {
		return nil, fmt.Errorf("grace days must not be negative")
	}
	if params.PenaltyRate.IsNegative() {
		return nil, fmt.Errorf("penalty rate must not be negative")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultOverdueBatch
	}
	return &overdueJob{
		logg:        params.Logger,
		loans:       params.Loans,
		marker:      params.Marker,
		metrics:     params.Metrics,
		actorID:     params.ActorID,
		graceDays:   params.GraceDays,
		penaltyRate: params.PenaltyRate,
		batch:       batch,
		now:         time.Now,
	}, nil
}

type overdueJob struct {
	logg        *logger.Logger
	loans       dueLoanFinder
	marker      overdueMarker
	metrics     *metrics.CronJobMetrics
	actorID     uuid.UUID
	graceDays   int
	penaltyRate decimal.Decimal
	batch       int
	now         func() time.Time
}

func (j *overdueJob) Name() string { return "overdue-sweep" }

// cutoff is the latest due date that counts as late: yesterday, shifted back
// by the grace period.
func (j *overdueJob) cutoff() time.Time {
	now := j.now().UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -j.graceDays-1)
}

// Run pages through loans with late upcoming periods. Each loan is its own
// transaction, so one failure does not stop the sweep; failed loans are not
// retried within the same run.
func (j *overdueJob) Run(ctx context.Context) error {
	cutoff := j.cutoff()
	failed := map[uuid.UUID]struct{}{}
	var errs error
	loansTouched, periods := 0, 0
	penalties := decimal.Zero

	for {
		limit := j.batch + len(failed)
		batch, err := j.loans.ListLoansWithDuePeriods(ctx, cutoff, limit)
		if err != nil {
			return multierr.Append(errs, fmt.Errorf("list loans with due periods: %w", err))
		}
		progressed := false
		for _, loan := range batch {
			if _, skip := failed[loan.ID]; skip {
				continue
			}
			progressed = true
			actor := loans.Actor{TenantID: loan.TenantID, BranchID: loan.BranchID, ActorID: j.actorID}
			result, err := j.marker.MarkOverdue(ctx, actor, loan.ID, loans.OverdueInput{
				Cutoff:      cutoff,
				PenaltyRate: j.penaltyRate,
			})
			if err != nil {
				failed[loan.ID] = struct{}{}
				errs = multierr.Append(errs, fmt.Errorf("loan %s: %w", loan.ID, err))
				continue
			}
			if len(result.Periods) == 0 {
				// no longer due; keep it out of the next page
				failed[loan.ID] = struct{}{}
				continue
			}
			loansTouched++
			periods += len(result.Periods)
			penalties = penalties.Add(result.PenaltyAdded)
		}
		if !progressed || len(batch) < limit {
			break
		}
	}

	if j.metrics != nil {
		j.metrics.AddAffected(j.Name(), periods)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":          cutoff,
		"loans":           loansTouched,
		"periods":         periods,
		"penalties_added": penalties.String(),
		"failures":        len(multierr.Errors(errs)),
	})
	j.logg.Info(logCtx, "overdue sweep complete")
	return errs
}
