package enums

import "fmt"

// InterestMethod is the interest method stored on the interest_method column.
type InterestMethod string

const (
	InterestMethodFlat     InterestMethod = "flat"
	InterestMethodReducing InterestMethod = "reducing"
)

var validInterestMethods = []InterestMethod{
	InterestMethodFlat,
	InterestMethodReducing,
}

func (i InterestMethod) IsValid() bool {
	for _, candidate := range validInterestMethods {
		if candidate == i {
			return true
		}
	}
	return false
}

func ParseInterestMethod(value string) (InterestMethod, error) {
	for _, candidate := range validInterestMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid interest method %q", value)
}
