package enums

import "fmt"

// RepaymentFrequency maps to the repayment_frequency_enum enum in Postgres.
type RepaymentFrequency string

const (
	RepaymentFrequencyWeekly  RepaymentFrequency = "weekly"
	RepaymentFrequencyMonthly RepaymentFrequency = "monthly"
)

var validRepaymentFrequencies = []RepaymentFrequency{
	RepaymentFrequencyWeekly,
	RepaymentFrequencyMonthly,
}

// IsValid reports whether the value is a known repayment frequency.
func (r RepaymentFrequency) IsValid() bool {
	for _, candidate := range validRepaymentFrequencies {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRepaymentFrequency converts raw input into RepaymentFrequency.
func ParseRepaymentFrequency(value string) (RepaymentFrequency, error) {
	for _, candidate := range validRepaymentFrequencies {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid repayment frequency %q", value)
}
