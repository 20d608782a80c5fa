package enums

import "fmt"

// JournalEventType maps to the journal_event_type_enum enum in Postgres.
type JournalEventType string

const (
	JournalEventDisbursement JournalEventType = "disbursement"
	JournalEventPayment      JournalEventType = "payment"
	JournalEventPaymentVoid  JournalEventType = "payment_void"
	JournalEventWriteOff     JournalEventType = "write_off"
	JournalEventReschedule   JournalEventType = "reschedule"
	JournalEventTopUp        JournalEventType = "top_up"
)

var validJournalEventTypes = []JournalEventType{
	JournalEventDisbursement,
	JournalEventPayment,
	JournalEventPaymentVoid,
	JournalEventWriteOff,
	JournalEventReschedule,
	JournalEventTopUp,
}

// IsValid reports whether the value matches the canonical journal_event_type enum.
func (j JournalEventType) IsValid() bool {
	for _, candidate := range validJournalEventTypes {
		if candidate == j {
			return true
		}
	}
	return false
}

func ParseJournalEventType(value string) (JournalEventType, error) {
	for _, candidate := range validJournalEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid journal event type %q", value)
}
