package enums

import "fmt"

// PeriodStatus maps to the period_status_enum enum in Postgres.
type PeriodStatus string

const (
	PeriodStatusUpcoming PeriodStatus = "upcoming"
	PeriodStatusOverdue  PeriodStatus = "overdue"
	PeriodStatusPaid     PeriodStatus = "paid"
)

var validPeriodStatuses = []PeriodStatus{
	PeriodStatusUpcoming,
	PeriodStatusOverdue,
	PeriodStatusPaid,
}

// IsValid reports whether the value is a known schedule period status.
func (p PeriodStatus) IsValid() bool {
	for _, candidate := range validPeriodStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

func ParsePeriodStatus(value string) (PeriodStatus, error) {
	for _, candidate := range validPeriodStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid schedule period status %q", value)
}
