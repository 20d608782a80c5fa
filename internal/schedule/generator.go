package schedule

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/loanledger/pkg/enums"
	pkgerrors "github.com/angelmondragon/loanledger/pkg/errors"
)

// divPrecision bounds intermediate divisions before money is rounded to scale.
const divPrecision = 16

// Period is one generated installment. Fees and penalties start at zero.
type Period struct {
	Number    int             `json:"period"`
	DueDate   time.Time       `json:"due_date"`
	Principal decimal.Decimal `json:"principal"`
	Interest  decimal.Decimal `json:"interest"`
	Fees      decimal.Decimal `json:"fees"`
	Penalties decimal.Decimal `json:"penalties"`
	Total     decimal.Decimal `json:"total"`
	Balance   decimal.Decimal `json:"balance"`
}

// Schedule is the ordered output of Generate.
type Schedule struct {
	Periods        []Period        `json:"periods"`
	PeriodRate     decimal.Decimal `json:"period_rate"`
	Installment    decimal.Decimal `json:"installment"`
	TotalPrincipal decimal.Decimal `json:"total_principal"`
	TotalInterest  decimal.Decimal `json:"total_interest"`
	TotalRepayable decimal.Decimal `json:"total_repayable"`
}

// Generate builds the amortization schedule for the given terms. The sum of
// principal across periods always equals terms.Principal exactly; the final
// period absorbs every rounding remainder.
func Generate(terms Terms, cfg Config) (Schedule, error) {
	if err := terms.Validate(); err != nil {
		return Schedule{}, err
	}
	if cfg.Scale < 0 {
		return Schedule{}, pkgerrors.New(pkgerrors.CodeValidation, "money scale must not be negative")
	}

	n := terms.PeriodCount()
	dates, err := dueDates(terms.DisbursementDate, terms.Frequency, n)
	if err != nil {
		return Schedule{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "due dates could not be generated")
	}

	principal := terms.Principal.Round(cfg.Scale)
	rate := terms.PeriodRate()

	var periods []Period
	var installment decimal.Decimal
	switch terms.Method {
	case enums.InterestMethodFlat:
		periods, installment = flat(principal, rate, n, cfg.Scale)
	default:
		periods, installment = reducing(principal, rate, n, cfg.Scale)
	}

	out := Schedule{
		Periods:        periods,
		PeriodRate:     rate,
		Installment:    installment,
		TotalPrincipal: decimal.Zero,
		TotalInterest:  decimal.Zero,
		TotalRepayable: decimal.Zero,
	}
	for i := range out.Periods {
		p := &out.Periods[i]
		p.Number = i + 1
		p.DueDate = dates[i]
		p.Fees = decimal.Zero
		p.Penalties = decimal.Zero
		p.Total = p.Principal.Add(p.Interest)
		out.TotalPrincipal = out.TotalPrincipal.Add(p.Principal)
		out.TotalInterest = out.TotalInterest.Add(p.Interest)
		out.TotalRepayable = out.TotalRepayable.Add(p.Total)
	}
	return out, nil
}

func flat(principal, rate decimal.Decimal, n int, scale int32) ([]Period, decimal.Decimal) {
	count := decimal.NewFromInt(int64(n))
	interest := principal.Mul(rate).Round(scale)
	share := principal.DivRound(count, divPrecision).Truncate(scale)

	periods := make([]Period, n)
	balance := principal
	for i := 0; i < n; i++ {
		part := share
		if i == n-1 {
			part = balance
		}
		balance = balance.Sub(part)
		periods[i] = Period{Principal: part, Interest: interest, Balance: balance}
	}
	return periods, share.Add(interest)
}

func reducing(principal, rate decimal.Decimal, n int, scale int32) ([]Period, decimal.Decimal) {
	installment := annuity(principal, rate, n, scale)

	periods := make([]Period, n)
	balance := principal
	for i := 0; i < n; i++ {
		interest := balance.Mul(rate).Round(scale)
		part := installment.Sub(interest)
		if i == n-1 || part.GreaterThan(balance) {
			part = balance
		}
		if part.IsNegative() {
			part = decimal.Zero
		}
		balance = balance.Sub(part)
		periods[i] = Period{Principal: part, Interest: interest, Balance: balance}
	}
	return periods, installment
}

// annuity returns P*r*f/(f-1) with f=(1+r)^n, or P/n when the rate is zero.
func annuity(principal, rate decimal.Decimal, n int, scale int32) decimal.Decimal {
	count := decimal.NewFromInt(int64(n))
	if rate.IsZero() {
		return principal.DivRound(count, divPrecision).Truncate(scale)
	}
	growth := decimal.NewFromInt(1).Add(rate)
	factor := decimal.NewFromInt(1)
	for i := 0; i < n; i++ {
		factor = factor.Mul(growth).Round(divPrecision)
	}
	numerator := principal.Mul(rate).Mul(factor)
	denominator := factor.Sub(decimal.NewFromInt(1))
	return numerator.DivRound(denominator, divPrecision).Round(scale)
}
