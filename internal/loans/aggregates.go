package loans

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/loanledger/pkg/db/models"
)

// refreshAggregates recomputes the derived loan totals from its schedule:
// outstanding = amount + interest + charges - paid - written off.
func refreshAggregates(loan *models.Loan, periods []models.LoanSchedulePeriod) {
	interest, charges, paid := decimal.Zero, decimal.Zero, decimal.Zero
	for _, p := range periods {
		interest = interest.Add(p.Interest)
		charges = charges.Add(p.Fees).Add(p.Penalties)
		paid = paid.Add(p.Paid)
	}
	loan.TotalInterest = interest
	loan.TotalCharges = charges
	loan.TotalPaid = paid
	loan.Outstanding = loan.Amount.Add(interest).Add(charges).Sub(paid).Sub(loan.WrittenOff)
}

// Balance breaks the unpaid part of a schedule into buckets.
type Balance struct {
	Principal   decimal.Decimal `json:"principal"`
	Interest    decimal.Decimal `json:"interest"`
	InterestDue decimal.Decimal `json:"interest_due"`
	Fees        decimal.Decimal `json:"fees"`
	Penalties   decimal.Decimal `json:"penalties"`
}

// Total is everything still owed, including interest not yet due.
func (b Balance) Total() decimal.Decimal {
	return b.Principal.Add(b.Interest).Add(b.Fees).Add(b.Penalties)
}

// CarriedOver is what a reschedule or top-up rolls into the new loan: unpaid
// principal, unpaid charges and only the interest already due.
func (b Balance) CarriedOver() decimal.Decimal {
	return b.Principal.Add(b.InterestDue).Add(b.Fees).Add(b.Penalties)
}

// unpaidBalance sums unpaid buckets. Interest on periods due after asOf is
// counted in Interest but not InterestDue.
func unpaidBalance(periods []models.LoanSchedulePeriod, asOf time.Time) Balance {
	b := Balance{
		Principal:   decimal.Zero,
		Interest:    decimal.Zero,
		InterestDue: decimal.Zero,
		Fees:        decimal.Zero,
		Penalties:   decimal.Zero,
	}
	for _, p := range periods {
		interest := p.Interest.Sub(p.InterestPaid)
		b.Principal = b.Principal.Add(p.Principal.Sub(p.PrincipalPaid))
		b.Interest = b.Interest.Add(interest)
		b.Fees = b.Fees.Add(p.Fees.Sub(p.FeesPaid))
		b.Penalties = b.Penalties.Add(p.Penalties.Sub(p.PenaltiesPaid))
		if !p.DueDate.After(asOf) {
			b.InterestDue = b.InterestDue.Add(interest)
		}
	}
	return b
}
