package enums

import "fmt"

// TermUnit maps to the term_unit_enum enum in Postgres.
type TermUnit string

const (
	TermUnitDays   TermUnit = "days"
	TermUnitWeeks  TermUnit = "weeks"
	TermUnitMonths TermUnit = "months"
	TermUnitYears  TermUnit = "years"
)

var validTermUnits = []TermUnit{
	TermUnitDays,
	TermUnitWeeks,
	TermUnitMonths,
	TermUnitYears,
}

// IsValid reports whether the value matches the canonical term_unit enum.
func (t TermUnit) IsValid() bool {
	for _, candidate := range validTermUnits {
		if candidate == t {
			return true
		}
	}
	return false
}

func ParseTermUnit(value string) (TermUnit, error) {
	for _, candidate := range validTermUnits {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid term unit %q", value)
}
