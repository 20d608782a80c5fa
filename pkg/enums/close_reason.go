package enums

import "fmt"

// CloseReason is the loan close reason stored on the close_reason column.
type CloseReason string

const (
	CloseReasonRepaid      CloseReason = "repaid"
	CloseReasonRescheduled CloseReason = "rescheduled"
	CloseReasonToppedUp    CloseReason = "topped_up"
	CloseReasonWrittenOff  CloseReason = "written_off"
	CloseReasonManual      CloseReason = "manual"
)

var validCloseReasons = []CloseReason{
	CloseReasonRepaid,
	CloseReasonRescheduled,
	CloseReasonToppedUp,
	CloseReasonWrittenOff,
	CloseReasonManual,
}

func (c CloseReason) IsValid() bool {
	for _, candidate := range validCloseReasons {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCloseReason converts raw input into CloseReason.
func ParseCloseReason(value string) (CloseReason, error) {
	for _, candidate := range validCloseReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid loan close reason %q", value)
}
