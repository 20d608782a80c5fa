package loans

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/angelmondragon/loanledger/pkg/db/models"
)

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func period(n int, due time.Time, principal, interest, principalPaid, interestPaid string) models.LoanSchedulePeriod {
	p := models.LoanSchedulePeriod{
		Period:        n,
		DueDate:       due,
		Principal:     dec(principal),
		Interest:      dec(interest),
		Fees:          decimal.Zero,
		Penalties:     decimal.Zero,
		PrincipalPaid: dec(principalPaid),
		InterestPaid:  dec(interestPaid),
		FeesPaid:      decimal.Zero,
		PenaltiesPaid: decimal.Zero,
	}
	p.Total = p.Principal.Add(p.Interest)
	p.Paid = p.PrincipalPaid.Add(p.InterestPaid)
	return p
}

func TestRefreshAggregates(t *testing.T) {
	jan := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	periods := []models.LoanSchedulePeriod{
		period(1, jan, "500", "20", "500", "20"),
		period(2, jan.AddDate(0, 1, 0), "500", "20", "0", "10"),
	}
	periods[1].Fees = dec("15")
	periods[1].Penalties = dec("5")

	loan := &models.Loan{Amount: dec("1000"), WrittenOff: decimal.Zero}
	refreshAggregates(loan, periods)

	assert.True(t, loan.TotalInterest.Equal(dec("40")))
	assert.True(t, loan.TotalCharges.Equal(dec("20")))
	assert.True(t, loan.TotalPaid.Equal(dec("530")))
	// 1000 + 40 + 20 - 530
	assert.True(t, loan.Outstanding.Equal(dec("530")), loan.Outstanding.String())

	loan.WrittenOff = dec("530")
	refreshAggregates(loan, periods)
	assert.True(t, loan.Outstanding.IsZero())
}

func TestUnpaidBalanceSplitsDueInterest(t *testing.T) {
	jan := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	periods := []models.LoanSchedulePeriod{
		period(1, jan, "100", "10", "100", "10"),
		period(2, jan.AddDate(0, 1, 0), "100", "10", "40", "0"),
		period(3, jan.AddDate(0, 2, 0), "100", "10", "0", "0"),
	}
	periods[1].Penalties = dec("3")

	b := unpaidBalance(periods, jan.AddDate(0, 1, 0))
	assert.True(t, b.Principal.Equal(dec("160")))
	assert.True(t, b.Interest.Equal(dec("20")))
	assert.True(t, b.InterestDue.Equal(dec("10")))
	assert.True(t, b.Penalties.Equal(dec("3")))
	assert.True(t, b.Total().Equal(dec("183")))
	assert.True(t, b.CarriedOver().Equal(dec("173")))
}
