package registry

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/loanledger/pkg/config"
	"github.com/angelmondragon/loanledger/pkg/db/models"
	"github.com/angelmondragon/loanledger/pkg/enums"
	"github.com/angelmondragon/loanledger/pkg/outbox"
	"github.com/angelmondragon/loanledger/pkg/outbox/payloads"
)

// currentVersion is the envelope version written by outbox.Service.
const currentVersion = 1

// EventDescriptor links an event type to its aggregate/topic/payload schema.
type EventDescriptor struct {
	EventType      enums.OutboxEventType
	AggregateType  enums.OutboxAggregateType
	Topic          string
	PayloadFactory func() interface{}
}

// ResolvedEvent is the result of decoding an outbox row.
type ResolvedEvent struct {
	Descriptor EventDescriptor
	Envelope   outbox.PayloadEnvelope
	Payload    interface{}
}

// EventRegistry maps each supported event type to its descriptor.
type EventRegistry struct {
	entries  map[enums.OutboxEventType]EventDescriptor
	decoders *DecoderRegistry
}

// NonRetryableError signals the dispatcher should stop retrying a row.
type NonRetryableError struct {
	Err error
}

// Error implements error.
func (e NonRetryableError) Error() string {
	if e.Err == nil {
		return "non-retryable error"
	}
	return e.Err.Error()
}

// Unwrap exposes the wrapped error.
func (e NonRetryableError) Unwrap() error {
	return e.Err
}

// NewEventRegistry builds the registry with the configured topic names.
func NewEventRegistry(cfg config.PubSubConfig) (*EventRegistry, error) {
	if cfg.LoanEventsTopic == "" {
		return nil, fmt.Errorf("loan events topic is required")
	}
	paymentTopic := cfg.PaymentEventsTopic
	if paymentTopic == "" {
		paymentTopic = cfg.LoanEventsTopic
	}

	reg := &EventRegistry{
		entries:  make(map[enums.OutboxEventType]EventDescriptor),
		decoders: NewDecoderRegistry(),
	}
	loanTopic := cfg.LoanEventsTopic

	status := func() interface{} { return &payloads.LoanStatusEvent{} }
	rollover := func() interface{} { return &payloads.LoanRolloverEvent{} }
	payment := func() interface{} { return &payloads.PaymentEvent{} }

	for _, desc := range []EventDescriptor{
		{EventType: enums.EventLoanApplied, AggregateType: enums.AggregateLoan, Topic: loanTopic, PayloadFactory: status},
		{EventType: enums.EventLoanApproved, AggregateType: enums.AggregateLoan, Topic: loanTopic, PayloadFactory: status},
		{EventType: enums.EventLoanRejected, AggregateType: enums.AggregateLoan, Topic: loanTopic, PayloadFactory: status},
		{EventType: enums.EventLoanClosed, AggregateType: enums.AggregateLoan, Topic: loanTopic, PayloadFactory: status},
		{
			EventType:      enums.EventLoanDisbursed,
			AggregateType:  enums.AggregateLoan,
			Topic:          loanTopic,
			PayloadFactory: func() interface{} { return &payloads.LoanDisbursedEvent{} },
		},
		{EventType: enums.EventLoanRescheduled, AggregateType: enums.AggregateLoan, Topic: loanTopic, PayloadFactory: rollover},
		{EventType: enums.EventLoanToppedUp, AggregateType: enums.AggregateLoan, Topic: loanTopic, PayloadFactory: rollover},
		{
			EventType:      enums.EventLoanWrittenOff,
			AggregateType:  enums.AggregateLoan,
			Topic:          loanTopic,
			PayloadFactory: func() interface{} { return &payloads.LoanWrittenOffEvent{} },
		},
		{
			EventType:      enums.EventPeriodsOverdue,
			AggregateType:  enums.AggregateLoan,
			Topic:          loanTopic,
			PayloadFactory: func() interface{} { return &payloads.PeriodsOverdueEvent{} },
		},
	} {
		reg.register(desc)
	}
	for _, eventType := range []enums.OutboxEventType{
		enums.EventPaymentRecorded,
		enums.EventPaymentApplied,
		enums.EventPaymentRejected,
		enums.EventPaymentVoided,
	} {
		reg.register(EventDescriptor{
			EventType:      eventType,
			AggregateType:  enums.AggregatePayment,
			Topic:          paymentTopic,
			PayloadFactory: payment,
		})
	}

	return reg, nil
}

func (r *EventRegistry) register(desc EventDescriptor) {
	if desc.PayloadFactory == nil {
		return
	}
	r.entries[desc.EventType] = desc
	r.decoders.Register(desc.EventType, currentVersion, jsonDecoder(desc.PayloadFactory))
}

// Descriptors returns the registered descriptors keyed by event type.
func (r *EventRegistry) Descriptors() map[enums.OutboxEventType]EventDescriptor {
	out := make(map[enums.OutboxEventType]EventDescriptor, len(r.entries))
	for k, v := range r.entries {
		out[k] = v
	}
	return out
}

// Resolve validates the row and decodes its typed payload.
func (r *EventRegistry) Resolve(event models.OutboxEvent) (*ResolvedEvent, error) {
	desc, ok := r.entries[event.EventType]
	if !ok {
		return nil, NewNonRetryableError(fmt.Errorf("unsupported event type %s", event.EventType))
	}
	if desc.AggregateType != event.AggregateType {
		return nil, NewNonRetryableError(fmt.Errorf("aggregate mismatch: expected %s got %s", desc.AggregateType, event.AggregateType))
	}
	if event.AggregateID == uuid.Nil {
		return nil, NewNonRetryableError(fmt.Errorf("missing aggregate_id"))
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(event.Payload, &envelope); err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("decode envelope: %w", err))
	}

	trimmed := bytes.TrimSpace(envelope.Data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, NewNonRetryableError(fmt.Errorf("payload missing for %s", event.EventType))
	}

	payload, err := r.decoders.Decode(event.EventType, envelope.Version, envelope.Data)
	if err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("decode %s payload: %w", event.EventType, err))
	}

	return &ResolvedEvent{
		Descriptor: desc,
		Envelope:   envelope,
		Payload:    payload,
	}, nil
}

// NewNonRetryableError wraps an error to signal no retries.
func NewNonRetryableError(err error) NonRetryableError {
	return NonRetryableError{Err: err}
}
