package allocation

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/loanledger/pkg/db/models"
	"github.com/angelmondragon/loanledger/pkg/enums"
	pkgerrors "github.com/angelmondragon/loanledger/pkg/errors"
	"github.com/angelmondragon/loanledger/pkg/types"
)

var cfg = Config{Scale: 2}

func d(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func period(n int, due time.Time, principal, interest, fees, penalties string) models.LoanSchedulePeriod {
	p := models.LoanSchedulePeriod{
		ID:            uuid.New(),
		Period:        n,
		DueDate:       due,
		Status:        enums.PeriodStatusUpcoming,
		Principal:     d(principal),
		Interest:      d(interest),
		Fees:          d(fees),
		Penalties:     d(penalties),
		PrincipalPaid: decimal.Zero,
		InterestPaid:  decimal.Zero,
		FeesPaid:      decimal.Zero,
		PenaltiesPaid: decimal.Zero,
		Paid:          decimal.Zero,
	}
	p.Total = p.Principal.Add(p.Interest).Add(p.Fees).Add(p.Penalties)
	return p
}

func baseDate(offset int) time.Time {
	return time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC).AddDate(0, offset, 0)
}

func TestAllocateWaterfallPartialPeriod(t *testing.T) {
	periods := []models.LoanSchedulePeriod{period(1, baseDate(0), "30000", "20000", "5000", "0")}

	alloc, err := Allocate(d("50000"), periods, cfg)
	require.NoError(t, err)
	require.Len(t, alloc.Lines, 1)

	line := alloc.Lines[0]
	assert.True(t, line.Fees.Equal(d("5000")))
	assert.True(t, line.Interest.Equal(d("20000")))
	assert.True(t, line.Principal.Equal(d("25000")))
	assert.True(t, alloc.Unallocated.IsZero())

	_, err = Apply(periods, alloc)
	require.NoError(t, err)
	assert.Equal(t, enums.PeriodStatusUpcoming, periods[0].Status)
	assert.True(t, periods[0].Remaining().Equal(d("5000")))
}

func TestAllocateWaterfallSettlesPeriod(t *testing.T) {
	periods := []models.LoanSchedulePeriod{period(1, baseDate(0), "30000", "20000", "5000", "0")}

	alloc, err := Allocate(d("55000"), periods, cfg)
	require.NoError(t, err)
	_, err = Apply(periods, alloc)
	require.NoError(t, err)

	p := periods[0]
	assert.Equal(t, enums.PeriodStatusPaid, p.Status)
	assert.True(t, p.FeesPaid.Equal(d("5000")))
	assert.True(t, p.InterestPaid.Equal(d("20000")))
	assert.True(t, p.PrincipalPaid.Equal(d("30000")))
	assert.True(t, p.Paid.Equal(p.Total))
}

func TestAllocatePenaltiesComeFirst(t *testing.T) {
	periods := []models.LoanSchedulePeriod{period(1, baseDate(0), "30000", "20000", "5000", "2500")}
	periods[0].Status = enums.PeriodStatusOverdue

	alloc, err := Allocate(d("6000"), periods, cfg)
	require.NoError(t, err)
	line := alloc.Lines[0]
	assert.True(t, line.Penalties.Equal(d("2500")))
	assert.True(t, line.Fees.Equal(d("3500")))
	assert.True(t, line.Interest.IsZero())
	assert.True(t, line.Principal.IsZero())
	assert.Equal(t, enums.PeriodStatusOverdue, line.PriorStatus)
}

func TestAllocateOldestDueDateFirst(t *testing.T) {
	periods := []models.LoanSchedulePeriod{
		period(2, baseDate(1), "100", "10", "0", "0"),
		period(1, baseDate(0), "100", "10", "0", "0"),
		period(3, baseDate(2), "100", "10", "0", "0"),
	}
	periods[1].Status = enums.PeriodStatusPaid
	periods[1].Paid = periods[1].Total

	alloc, err := Allocate(d("150"), periods, cfg)
	require.NoError(t, err)
	require.Len(t, alloc.Lines, 2)
	assert.Equal(t, 2, alloc.Lines[0].Period)
	assert.True(t, alloc.Lines[0].Total().Equal(d("110")))
	assert.Equal(t, 3, alloc.Lines[1].Period)
	assert.True(t, alloc.Lines[1].Interest.Equal(d("10")))
	assert.True(t, alloc.Lines[1].Principal.Equal(d("30")))
}

func TestAllocateOverpaymentRetainsRemainder(t *testing.T) {
	periods := []models.LoanSchedulePeriod{
		period(1, baseDate(0), "100", "10", "0", "0"),
		period(2, baseDate(1), "100", "10", "0", "0"),
	}

	alloc, err := Allocate(d("250.55"), periods, cfg)
	require.NoError(t, err)
	assert.True(t, alloc.Applied().Equal(d("220")))
	assert.True(t, alloc.Unallocated.Equal(d("30.55")))
	assert.True(t, alloc.Applied().Add(alloc.Unallocated).Equal(d("250.55")))
}

func TestAllocateRejectsInvalidAmounts(t *testing.T) {
	periods := []models.LoanSchedulePeriod{period(1, baseDate(0), "100", "10", "0", "0")}

	_, err := Allocate(decimal.Zero, periods, cfg)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = Allocate(d("10.001"), periods, cfg)
	require.Error(t, err)
}

func TestAllocationDeterminism(t *testing.T) {
	build := func() []models.LoanSchedulePeriod {
		ids := []uuid.UUID{
			uuid.MustParse("00000000-0000-0000-0000-000000000001"),
			uuid.MustParse("00000000-0000-0000-0000-000000000002"),
			uuid.MustParse("00000000-0000-0000-0000-000000000003"),
		}
		periods := []models.LoanSchedulePeriod{
			period(1, baseDate(0), "333.33", "25.10", "5", "1.25"),
			period(2, baseDate(1), "333.33", "18.42", "0", "0"),
			period(3, baseDate(2), "333.34", "9.99", "0", "0"),
		}
		for i := range periods {
			periods[i].ID = ids[i]
		}
		return periods
	}

	first, err := Allocate(d("512.77"), build(), cfg)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := Allocate(d("512.77"), build(), cfg)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestVoidReversalRoundTrip(t *testing.T) {
	periods := []models.LoanSchedulePeriod{
		period(1, baseDate(0), "100", "10", "2", "0"),
		period(2, baseDate(1), "100", "8", "0", "0"),
		period(3, baseDate(2), "100", "6", "0", "0"),
	}
	periods[0].Status = enums.PeriodStatusOverdue
	before := clone(periods)

	alloc, err := Allocate(d("180"), periods, cfg)
	require.NoError(t, err)
	_, err = Apply(periods, alloc)
	require.NoError(t, err)
	assert.Equal(t, enums.PeriodStatusPaid, periods[0].Status)

	_, err = Reverse(periods, alloc)
	require.NoError(t, err)
	for i := range periods {
		assert.Equal(t, before[i].Status, periods[i].Status, "period %d", i+1)
		assert.True(t, before[i].Paid.Equal(periods[i].Paid), "period %d", i+1)
		assert.True(t, before[i].PrincipalPaid.Equal(periods[i].PrincipalPaid))
		assert.True(t, before[i].InterestPaid.Equal(periods[i].InterestPaid))
		assert.True(t, before[i].FeesPaid.Equal(periods[i].FeesPaid))
		assert.True(t, before[i].PenaltiesPaid.Equal(periods[i].PenaltiesPaid))
	}
}

func TestReverseToleratesLaterPenalties(t *testing.T) {
	periods := []models.LoanSchedulePeriod{period(1, baseDate(0), "100", "10", "0", "0")}
	alloc, err := Allocate(d("50"), periods, cfg)
	require.NoError(t, err)
	_, err = Apply(periods, alloc)
	require.NoError(t, err)

	// collections marks the period overdue and adds a penalty afterwards
	periods[0].Status = enums.PeriodStatusOverdue
	periods[0].Penalties = d("5")
	periods[0].Total = periods[0].Total.Add(d("5"))

	_, err = Reverse(periods, alloc)
	require.NoError(t, err)
	assert.Equal(t, enums.PeriodStatusOverdue, periods[0].Status)
	assert.True(t, periods[0].Paid.IsZero())
	assert.True(t, periods[0].Penalties.Equal(d("5")))
}

func TestApplyRejectsStaleAllocation(t *testing.T) {
	periods := []models.LoanSchedulePeriod{period(1, baseDate(0), "100", "10", "0", "0")}
	alloc, err := Allocate(d("110"), periods, cfg)
	require.NoError(t, err)
	_, err = Apply(periods, alloc)
	require.NoError(t, err)
	snapshot := clone(periods)

	_, err = Apply(periods, alloc)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))
	assert.True(t, snapshot[0].Paid.Equal(periods[0].Paid))

	unknown := alloc
	unknown.Lines = append(unknown.Lines[:0:0], alloc.Lines...)
	unknown.Lines[0].PeriodID = uuid.New()
	_, err = Reverse(periods, unknown)
	require.Error(t, err)
}

func TestNoOverAllocationUnderRandomSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	periods := []models.LoanSchedulePeriod{
		period(1, baseDate(0), "250", "30", "5", "0"),
		period(2, baseDate(1), "250", "22.5", "0", "0"),
		period(3, baseDate(2), "250", "15", "0", "0"),
		period(4, baseDate(3), "250", "7.5", "0", "0"),
	}

	var applied []int
	history := make(map[int]types.Allocation)
	for step := 0; step < 200; step++ {
		if rng.Intn(4) == 0 && len(applied) > 0 {
			pick := rng.Intn(len(applied))
			key := applied[pick]
			_, err := Reverse(periods, history[key])
			require.NoError(t, err)
			applied = append(applied[:pick], applied[pick+1:]...)
		} else {
			if rng.Intn(5) == 0 {
				idx := rng.Intn(len(periods))
				if periods[idx].Status != enums.PeriodStatusPaid {
					periods[idx].Penalties = periods[idx].Penalties.Add(d("1.10"))
					periods[idx].Total = periods[idx].Total.Add(d("1.10"))
				}
			}
			amount := decimal.New(int64(rng.Intn(40000)+1), -2)
			alloc, err := Allocate(amount, periods, cfg)
			require.NoError(t, err)
			require.True(t, alloc.Applied().Add(alloc.Unallocated).Equal(amount))
			_, err = Apply(periods, alloc)
			require.NoError(t, err)
			history[step] = alloc
			applied = append(applied, step)
		}

		for _, p := range periods {
			require.False(t, p.PenaltiesPaid.GreaterThan(p.Penalties))
			require.False(t, p.FeesPaid.GreaterThan(p.Fees))
			require.False(t, p.InterestPaid.GreaterThan(p.Interest))
			require.False(t, p.PrincipalPaid.GreaterThan(p.Principal))
			require.False(t, p.Paid.GreaterThan(p.Total))
			require.False(t, p.Paid.IsNegative())
		}
	}
}

func clone(periods []models.LoanSchedulePeriod) []models.LoanSchedulePeriod {
	out := make([]models.LoanSchedulePeriod, len(periods))
	copy(out, periods)
	return out
}
