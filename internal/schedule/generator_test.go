package schedule

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/loanledger/pkg/enums"
	pkgerrors "github.com/angelmondragon/loanledger/pkg/errors"
)

var testConfig = Config{Scale: 2}

func dec(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	require.NoError(t, err)
	return d
}

func monthlyTerms(principal, rate string, n int, method enums.InterestMethod) Terms {
	return Terms{
		Principal:        decimal.RequireFromString(principal),
		Rate:             decimal.RequireFromString(rate),
		RateBasis:        enums.RateBasisPerPeriod,
		TermValue:        n,
		TermUnit:         enums.TermUnitMonths,
		Frequency:        enums.RepaymentFrequencyMonthly,
		Method:           method,
		DisbursementDate: time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestGenerateFlatConstantInterest(t *testing.T) {
	sched, err := Generate(monthlyTerms("1200000", "2", 12, enums.InterestMethodFlat), testConfig)
	require.NoError(t, err)
	require.Len(t, sched.Periods, 12)

	for _, p := range sched.Periods {
		assert.True(t, p.Interest.Equal(dec(t, "24000")), "period %d interest %s", p.Number, p.Interest)
		assert.True(t, p.Principal.Equal(dec(t, "100000")), "period %d principal %s", p.Number, p.Principal)
		assert.True(t, p.Total.Equal(dec(t, "124000")))
		assert.True(t, p.Fees.IsZero())
		assert.True(t, p.Penalties.IsZero())
	}
	assert.True(t, sched.TotalPrincipal.Equal(dec(t, "1200000")))
	assert.True(t, sched.TotalInterest.Equal(dec(t, "288000")))
	assert.Equal(t, time.Date(2024, time.February, 15, 0, 0, 0, 0, time.UTC), sched.Periods[0].DueDate)
	assert.Equal(t, time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC), sched.Periods[11].DueDate)
}

func TestGenerateFlatLastPeriodAbsorbsRemainder(t *testing.T) {
	sched, err := Generate(monthlyTerms("1000", "1.5", 3, enums.InterestMethodFlat), testConfig)
	require.NoError(t, err)
	require.Len(t, sched.Periods, 3)

	assert.True(t, sched.Periods[0].Principal.Equal(dec(t, "333.33")))
	assert.True(t, sched.Periods[1].Principal.Equal(dec(t, "333.33")))
	assert.True(t, sched.Periods[2].Principal.Equal(dec(t, "333.34")))
	assert.True(t, sched.Periods[2].Balance.IsZero())
	assert.True(t, sched.TotalPrincipal.Equal(dec(t, "1000")))
}

func TestGenerateReducingDecliningInterest(t *testing.T) {
	sched, err := Generate(monthlyTerms("1000000", "3", 6, enums.InterestMethodReducing), testConfig)
	require.NoError(t, err)
	require.Len(t, sched.Periods, 6)

	first := sched.Periods[0]
	assert.True(t, first.Interest.Equal(dec(t, "30000")), "got %s", first.Interest)
	assert.True(t, first.Balance.LessThan(dec(t, "1000000")))
	assert.True(t, sched.Installment.Equal(dec(t, "184597.50")), "got %s", sched.Installment)

	for i := 1; i < len(sched.Periods); i++ {
		assert.True(t, sched.Periods[i].Interest.LessThan(sched.Periods[i-1].Interest))
	}
	last := sched.Periods[5]
	assert.True(t, last.Principal.Equal(dec(t, "179220.88")), "got %s", last.Principal)
	assert.True(t, last.Balance.IsZero())
	assert.True(t, sched.TotalPrincipal.Equal(dec(t, "1000000")))
}

func TestGenerateReducingZeroRate(t *testing.T) {
	sched, err := Generate(monthlyTerms("100", "0", 3, enums.InterestMethodReducing), testConfig)
	require.NoError(t, err)
	assert.True(t, sched.TotalInterest.IsZero())
	assert.True(t, sched.Periods[0].Principal.Equal(dec(t, "33.33")))
	assert.True(t, sched.Periods[2].Principal.Equal(dec(t, "33.34")))
}

func TestScheduleSumInvariant(t *testing.T) {
	principals := []string{"1", "99.99", "1000", "12345.67", "250000", "1000000.01"}
	rates := []string{"0", "0.5", "2", "3.75", "12"}
	counts := []int{1, 2, 3, 7, 12, 24, 52}

	for _, method := range []enums.InterestMethod{enums.InterestMethodFlat, enums.InterestMethodReducing} {
		for _, principal := range principals {
			for _, rate := range rates {
				for _, n := range counts {
					name := fmt.Sprintf("%s/%s/%s/%d", method, principal, rate, n)
					terms := monthlyTerms(principal, rate, n, method)
					sched, err := Generate(terms, testConfig)
					require.NoError(t, err, name)
					require.Len(t, sched.Periods, n, name)

					sum := decimal.Zero
					for _, p := range sched.Periods {
						require.False(t, p.Principal.IsNegative(), name)
						require.True(t, p.Total.Equal(p.Principal.Add(p.Interest)), name)
						sum = sum.Add(p.Principal)
					}
					require.True(t, sum.Equal(terms.Principal), "%s: sum %s", name, sum)
					require.True(t, sched.Periods[n-1].Balance.IsZero(), name)
				}
			}
		}
	}
}

func TestPeriodCountRoundsUp(t *testing.T) {
	cases := []struct {
		value     int
		unit      enums.TermUnit
		frequency enums.RepaymentFrequency
		want      int
	}{
		{12, enums.TermUnitMonths, enums.RepaymentFrequencyMonthly, 12},
		{2, enums.TermUnitYears, enums.RepaymentFrequencyMonthly, 24},
		{90, enums.TermUnitDays, enums.RepaymentFrequencyMonthly, 3},
		{10, enums.TermUnitWeeks, enums.RepaymentFrequencyMonthly, 3},
		{10, enums.TermUnitDays, enums.RepaymentFrequencyWeekly, 2},
		{3, enums.TermUnitMonths, enums.RepaymentFrequencyWeekly, 13},
		{1, enums.TermUnitYears, enums.RepaymentFrequencyWeekly, 52},
		{16, enums.TermUnitWeeks, enums.RepaymentFrequencyWeekly, 16},
	}
	for _, tc := range cases {
		terms := Terms{TermValue: tc.value, TermUnit: tc.unit, Frequency: tc.frequency}
		assert.Equal(t, tc.want, terms.PeriodCount(), "%d %s %s", tc.value, tc.unit, tc.frequency)
	}
}

func TestPeriodRateAnnualBasis(t *testing.T) {
	terms := Terms{Rate: dec(t, "24"), RateBasis: enums.RateBasisAnnual, Frequency: enums.RepaymentFrequencyMonthly}
	assert.True(t, terms.PeriodRate().Equal(dec(t, "0.02")))

	terms.Frequency = enums.RepaymentFrequencyWeekly
	terms.Rate = dec(t, "52")
	assert.True(t, terms.PeriodRate().Equal(dec(t, "0.01")))

	terms.RateBasis = enums.RateBasisPerPeriod
	terms.Rate = dec(t, "3")
	assert.True(t, terms.PeriodRate().Equal(dec(t, "0.03")))
}

func TestDueDatesClampToMonthEnd(t *testing.T) {
	start := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)
	dates, err := dueDates(start, enums.RepaymentFrequencyMonthly, 4)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.April, 30, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.May, 31, 0, 0, 0, 0, time.UTC),
	}, dates)
}

func TestDueDatesWeekly(t *testing.T) {
	start := time.Date(2024, time.March, 1, 14, 30, 0, 0, time.UTC)
	dates, err := dueDates(start, enums.RepaymentFrequencyWeekly, 3)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		time.Date(2024, time.March, 8, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 22, 0, 0, 0, 0, time.UTC),
	}, dates)
}

func TestGenerateRejectsInvalidTerms(t *testing.T) {
	terms := monthlyTerms("0", "2", 12, enums.InterestMethodFlat)
	_, err := Generate(terms, testConfig)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	terms = monthlyTerms("100", "2", 12, enums.InterestMethod("compound"))
	_, err = Generate(terms, testConfig)
	require.Error(t, err)

	terms = monthlyTerms("100", "-1", 12, enums.InterestMethodFlat)
	_, err = Generate(terms, testConfig)
	require.Error(t, err)
}

func TestValidateCapsPeriodCount(t *testing.T) {
	terms := monthlyTerms("100000", "1", 7000, enums.InterestMethodFlat)
	terms.TermUnit = enums.TermUnitYears
	terms.Frequency = enums.RepaymentFrequencyWeekly
	err := terms.Validate()
	require.Error(t, err)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
	details, ok := pkgerrors.As(err).Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 364000, details["periods"])
	assert.Equal(t, MaxPeriods, details["max_periods"])

	terms.TermValue = MaxTermValue + 1
	terms.TermUnit = enums.TermUnitDays
	assert.True(t, pkgerrors.HasCode(terms.Validate(), pkgerrors.CodeValidation))

	// Thirty years of weekly instalments is the longest schedule accepted.
	terms.TermValue = 30
	terms.TermUnit = enums.TermUnitYears
	require.Equal(t, MaxPeriods, terms.PeriodCount())
	assert.NoError(t, terms.Validate())

	terms.TermValue = 31
	assert.Error(t, terms.Validate())
}

func TestGenerateIsDeterministic(t *testing.T) {
	terms := monthlyTerms("54321.09", "4.2", 9, enums.InterestMethodReducing)
	first, err := Generate(terms, testConfig)
	require.NoError(t, err)
	second, err := Generate(terms, testConfig)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
