package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateLoan    OutboxAggregateType = "loan"
	AggregatePayment OutboxAggregateType = "payment"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateLoan,
	AggregatePayment,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventLoanApplied     OutboxEventType = "loan_applied"
	EventLoanApproved    OutboxEventType = "loan_approved"
	EventLoanRejected    OutboxEventType = "loan_rejected"
	EventLoanDisbursed   OutboxEventType = "loan_disbursed"
	EventLoanClosed      OutboxEventType = "loan_closed"
	EventLoanRescheduled OutboxEventType = "loan_rescheduled"
	EventLoanToppedUp    OutboxEventType = "loan_topped_up"
	EventLoanWrittenOff  OutboxEventType = "loan_written_off"
	EventPaymentRecorded OutboxEventType = "payment_recorded"
	EventPaymentApplied  OutboxEventType = "payment_applied"
	EventPaymentRejected OutboxEventType = "payment_rejected"
	EventPaymentVoided   OutboxEventType = "payment_voided"
	EventPeriodsOverdue  OutboxEventType = "periods_overdue"
)

var validOutboxEventTypes = []OutboxEventType{
	EventLoanApplied,
	EventLoanApproved,
	EventLoanRejected,
	EventLoanDisbursed,
	EventLoanClosed,
	EventLoanRescheduled,
	EventLoanToppedUp,
	EventLoanWrittenOff,
	EventPaymentRecorded,
	EventPaymentApplied,
	EventPaymentRejected,
	EventPaymentVoided,
	EventPeriodsOverdue,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
