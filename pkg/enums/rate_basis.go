package enums

import "fmt"

// RateBasis is the rate basis stored on the rate_basis column.
type RateBasis string

const (
	RateBasisPerPeriod RateBasis = "per_period"
	RateBasisAnnual    RateBasis = "annual"
)

var validRateBases = []RateBasis{
	RateBasisPerPeriod,
	RateBasisAnnual,
}

func (r RateBasis) IsValid() bool {
	for _, candidate := range validRateBases {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRateBasis converts raw input into RateBasis.
func ParseRateBasis(value string) (RateBasis, error) {
	for _, candidate := range validRateBases {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid rate basis %q", value)
}
