package schedule

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/loanledger/pkg/enums"
	pkgerrors "github.com/angelmondragon/loanledger/pkg/errors"
)

var (
	hundred   = decimal.NewFromInt(100)
	weeksYear = decimal.NewFromInt(52)
	monthYear = decimal.NewFromInt(12)
)

const (
	// MaxTermValue bounds the raw term so PeriodCount cannot overflow.
	MaxTermValue = 36500
	// MaxPeriods is thirty years of weekly instalments.
	MaxPeriods = 1560
)

// Config carries the numeric settings of the engine. It is always passed in
// explicitly so generation stays a pure function of its inputs.
type Config struct {
	Scale int32
}

// Terms are the resolved numeric terms of a loan. Rate is a percentage, so 2
// means 2% per period (or per year when RateBasis is annual).
type Terms struct {
	Principal        decimal.Decimal
	Rate             decimal.Decimal
	RateBasis        enums.RateBasis
	TermValue        int
	TermUnit         enums.TermUnit
	Frequency        enums.RepaymentFrequency
	Method           enums.InterestMethod
	DisbursementDate time.Time
}

// Validate checks the terms before any arithmetic runs.
func (t Terms) Validate() error {
	if !t.Principal.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "principal must be positive")
	}
	if t.Rate.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "interest rate must not be negative")
	}
	if t.TermValue <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "term value must be positive")
	}
	if t.TermValue > MaxTermValue {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("term value must be at most %d", MaxTermValue))
	}
	if !t.RateBasis.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid rate basis %q", t.RateBasis))
	}
	if !t.TermUnit.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid term unit %q", t.TermUnit))
	}
	if !t.Frequency.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid repayment frequency %q", t.Frequency))
	}
	if !t.Method.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid interest method %q", t.Method))
	}
	if t.DisbursementDate.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "disbursement date is required")
	}
	if n := t.PeriodCount(); n > MaxPeriods {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("term yields %d repayment periods, at most %d allowed", n, MaxPeriods)).
			WithDetails(map[string]any{"periods": n, "max_periods": MaxPeriods})
	}
	return nil
}

// PeriodCount converts the term into repayment periods, rounding a fractional
// count up. A month is 52/12 weeks and a year 365 days.
func (t Terms) PeriodCount() int {
	num, den := int64(t.TermValue), int64(1)
	switch t.Frequency {
	case enums.RepaymentFrequencyWeekly:
		switch t.TermUnit {
		case enums.TermUnitDays:
			den = 7
		case enums.TermUnitMonths:
			num, den = num*52, 12
		case enums.TermUnitYears:
			num *= 52
		}
	case enums.RepaymentFrequencyMonthly:
		switch t.TermUnit {
		case enums.TermUnitDays:
			num, den = num*12, 365
		case enums.TermUnitWeeks:
			num, den = num*12, 52
		case enums.TermUnitYears:
			num *= 12
		}
	}
	return int((num + den - 1) / den)
}

// PeriodRate is the fractional interest rate applied to one period.
func (t Terms) PeriodRate() decimal.Decimal {
	rate := t.Rate.DivRound(hundred, divPrecision)
	if t.RateBasis != enums.RateBasisAnnual {
		return rate
	}
	if t.Frequency == enums.RepaymentFrequencyWeekly {
		return rate.DivRound(weeksYear, divPrecision)
	}
	return rate.DivRound(monthYear, divPrecision)
}
