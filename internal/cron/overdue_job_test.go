package cron

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/angelmondragon/loanledger/internal/loans"
	"github.com/angelmondragon/loanledger/pkg/db/models"
	"github.com/angelmondragon/loanledger/pkg/logger"
	"github.com/angelmondragon/loanledger/pkg/metrics"
)

type fakeDueLoans struct {
	due    []models.Loan
	limits []int
	asOf   time.Time
}

func (f *fakeDueLoans) ListLoansWithDuePeriods(_ context.Context, asOf time.Time, limit int) ([]models.Loan, error) {
	f.asOf = asOf
	f.limits = append(f.limits, limit)
	if limit > len(f.due) {
		limit = len(f.due)
	}
	out := make([]models.Loan, limit)
	copy(out, f.due[:limit])
	return out, nil
}

func (f *fakeDueLoans) settle(id uuid.UUID) {
	for i, loan := range f.due {
		if loan.ID == id {
			f.due = append(f.due[:i], f.due[i+1:]...)
			return
		}
	}
}

type fakeMarker struct {
	loans  *fakeDueLoans
	fail   map[uuid.UUID]error
	actors []loans.Actor
	inputs []loans.OverdueInput
}

func (f *fakeMarker) MarkOverdue(_ context.Context, actor loans.Actor, loanID uuid.UUID, input loans.OverdueInput) (*loans.OverdueResult, error) {
	f.actors = append(f.actors, actor)
	f.inputs = append(f.inputs, input)
	if err := f.fail[loanID]; err != nil {
		return nil, err
	}
	f.loans.settle(loanID)
	return &loans.OverdueResult{LoanID: loanID, Periods: []int{1, 2}, PenaltyAdded: decimal.RequireFromString("150")}, nil
}

func newOverdueJobForTest(t *testing.T, finder *fakeDueLoans, marker *fakeMarker, batch int) (*overdueJob, *prometheus.Registry, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	reg := prometheus.NewRegistry()
	m := metrics.NewCronJobMetrics(reg)
	job, err := NewOverdueJob(OverdueJobParams{
		Logger:      logger.New(logger.Options{ServiceName: "test", Output: buf}),
		Loans:       finder,
		Marker:      marker,
		Metrics:     m,
		ActorID:     uuid.New(),
		GraceDays:   3,
		PenaltyRate: decimal.RequireFromString("5"),
		BatchSize:   batch,
	})
	require.NoError(t, err)
	impl := job.(*overdueJob)
	impl.now = func() time.Time { return time.Date(2024, time.April, 10, 14, 30, 0, 0, time.UTC) }
	return impl, reg, buf
}

func seedLoans(n int) []models.Loan {
	out := make([]models.Loan, n)
	for i := range out {
		out[i] = models.Loan{ID: uuid.New(), TenantID: uuid.New()}
	}
	return out
}

func TestOverdueJobSweepsEveryPage(t *testing.T) {
	finder := &fakeDueLoans{due: seedLoans(5)}
	marker := &fakeMarker{loans: finder}
	job, reg, buf := newOverdueJobForTest(t, finder, marker, 2)

	require.NoError(t, job.Run(context.Background()))

	assert.Len(t, marker.actors, 5)
	assert.Empty(t, finder.due)
	assert.Equal(t, time.Date(2024, time.April, 6, 0, 0, 0, 0, time.UTC), finder.asOf)
	for _, input := range marker.inputs {
		assert.True(t, input.PenaltyRate.Equal(decimal.NewFromInt(5)))
	}
	assert.Equal(t, job.actorID, marker.actors[0].ActorID)
	assert.NotEqual(t, uuid.Nil, marker.actors[0].TenantID)

	expected := `
# HELP loanledger_cron_job_rows_affected_total Rows changed by cron jobs.
# TYPE loanledger_cron_job_rows_affected_total counter
loanledger_cron_job_rows_affected_total{job="overdue-sweep"} 10
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "loanledger_cron_job_rows_affected_total"))
	assert.Contains(t, buf.String(), "overdue sweep complete")
	assert.Contains(t, buf.String(), `"penalties_added":"750"`)
}

func TestOverdueJobContinuesPastFailures(t *testing.T) {
	finder := &fakeDueLoans{due: seedLoans(3)}
	broken := finder.due[0].ID
	marker := &fakeMarker{loans: finder, fail: map[uuid.UUID]error{broken: errors.New("lock timeout")}}
	job, _, _ := newOverdueJobForTest(t, finder, marker, 2)

	err := job.Run(context.Background())
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 1)
	assert.Contains(t, err.Error(), broken.String())

	require.Len(t, finder.due, 1)
	assert.Equal(t, broken, finder.due[0].ID)
	// the broken loan is attempted once
	assert.Len(t, marker.actors, 3)
}

func TestNewOverdueJobValidatesParams(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test"})
	finder := &fakeDueLoans{}
	marker := &fakeMarker{loans: finder}

	_, err := NewOverdueJob(OverdueJobParams{Logger: logg, Loans: finder, Marker: marker})
	assert.Error(t, err)

	_, err = NewOverdueJob(OverdueJobParams{Logger: logg, Loans: finder, Marker: marker, ActorID: uuid.New(), PenaltyRate: decimal.NewFromInt(-1)})
	assert.Error(t, err)

	job, err := NewOverdueJob(OverdueJobParams{Logger: logg, Loans: finder, Marker: marker, ActorID: uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, defaultOverdueBatch, job.(*overdueJob).batch)
}
