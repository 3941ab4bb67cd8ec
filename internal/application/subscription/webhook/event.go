// Package webhook decodes inbound provider notifications into a closed set of event kinds.
package webhook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// EventKind is the closed set of provider events the billing engine reacts to.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventPlanActivated
	EventPlanInactivated
	EventPlanStopped
	EventCycleCreated
	EventCycleSucceeded
	EventCycleFailed
)

// Provider event names.
const (
	NamePlanActivated   = "recurring.plan.activated"
	NamePlanInactivated = "recurring.plan.inactivated"
	NamePlanStopped     = "recurring.plan.stopped"
	NameCycleCreated    = "recurring.cycle.created"
	NameCycleSucceeded  = "recurring.cycle.succeeded"
	NameCycleFailed     = "recurring.cycle.failed"
)

var eventNames = map[string]EventKind{
	NamePlanActivated:   EventPlanActivated,
	NamePlanInactivated: EventPlanInactivated,
	NamePlanStopped:     EventPlanStopped,
	NameCycleCreated:    EventCycleCreated,
	NameCycleSucceeded:  EventCycleSucceeded,
	NameCycleFailed:     EventCycleFailed,
}

// ParseEventKind maps a provider event name onto its kind. Unknown names yield EventUnknown.
func ParseEventKind(name string) EventKind {
	if kind, ok := eventNames[strings.TrimSpace(name)]; ok {
		return kind
	}
	return EventUnknown
}

func (k EventKind) String() string {
	switch k {
	case EventPlanActivated:
		return NamePlanActivated
	case EventPlanInactivated:
		return NamePlanInactivated
	case EventPlanStopped:
		return NamePlanStopped
	case EventCycleCreated:
		return NameCycleCreated
	case EventCycleSucceeded:
		return NameCycleSucceeded
	case EventCycleFailed:
		return NameCycleFailed
	default:
		return "unknown"
	}
}

// IsCycle reports whether the event concerns one billing cycle of a plan.
func (k EventKind) IsCycle() bool {
	return k == EventCycleCreated || k == EventCycleSucceeded || k == EventCycleFailed
}

// Payload holds the fields of the event data the engine needs, plus the raw object
// for traceability.
type Payload struct {
	ID            string      `json:"id"`
	PlanID        string      `json:"plan_id"`
	ReferenceID   string      `json:"reference_id"`
	Amount        json.Number `json:"amount"`
	Currency      string      `json:"currency"`
	FailureCode   string      `json:"failure_code"`
	FailureReason string      `json:"failure_reason"`

	Raw map[string]any `json:"-"`
}

// FailureDescription returns the most specific failure text the provider sent.
func (p Payload) FailureDescription() string {
	switch {
	case p.FailureCode != "" && p.FailureReason != "":
		return p.FailureCode + ": " + p.FailureReason
	case p.FailureCode != "":
		return p.FailureCode
	default:
		return p.FailureReason
	}
}

// Event is one decoded webhook delivery.
type Event struct {
	// Name is the event name exactly as delivered.
	Name string
	Kind EventKind
	Data Payload
}

type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Decode parses a webhook body. Unknown event names decode successfully with Kind EventUnknown;
// only malformed JSON is an error.
func Decode(body []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Event{}, fmt.Errorf("decode webhook envelope: %w", err)
	}

	ev := Event{
		Name: env.Event,
		Kind: ParseEventKind(env.Event),
	}
	if len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return ev, nil
	}

	if err := json.Unmarshal(env.Data, &ev.Data); err != nil {
		return Event{}, fmt.Errorf("decode webhook data: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(env.Data))
	dec.UseNumber()
	if err := dec.Decode(&ev.Data.Raw); err != nil {
		return Event{}, fmt.Errorf("decode webhook data: %w", err)
	}
	return ev, nil
}

// Outcome is the acknowledged result of processing one delivery.
type Outcome string

const (
	OutcomeProcessed Outcome = "processed"
	OutcomeNotFound  Outcome = "not_found"
	OutcomeUnhandled Outcome = "unhandled"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeIgnored   Outcome = "ignored"
)
