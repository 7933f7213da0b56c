package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Event types sent by the voice API.
const (
	EventTypeToolCall  = "tool_call"
	EventTypeCompleted = "completed"
	EventTypeFailed    = "failed"
)

// Route says where an event is forwarded.
type Route int

const (
	RouteNone Route = iota
	RouteOutcome
	RouteStatus
)

func (r Route) String() string {
	switch r {
	case RouteOutcome:
		return "outcome"
	case RouteStatus:
		return "status"
	default:
		return "none"
	}
}

// Event is an inbound call-lifecycle event. Fields of the wrong JSON type
// are treated as absent.
type Event struct {
	Type        string
	Name        string
	Arguments   json.RawMessage
	LeadID      any
	Reason      any
	DurationSec any
}

// StatusUpdate is forwarded to the status hook when a call ends.
type StatusUpdate struct {
	LeadID      any    `json:"lead_id"`
	Status      string `json:"status"`
	Reason      any    `json:"reason"`
	DurationSec any    `json:"duration_sec"`
}

// ParseEvent decodes an event body. Only a body that is not a JSON object is an error.
func ParseEvent(body []byte) (*Event, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}

	evt := &Event{
		Type:        decodeString(fields["type"]),
		Name:        decodeString(fields["name"]),
		Arguments:   fields["arguments"],
		Reason:      decodeValue(fields["reason"]),
		DurationSec: decodeValue(fields["duration_sec"]),
	}

	if raw, ok := fields["context"]; ok {
		var ctxFields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &ctxFields); err == nil {
			evt.LeadID = decodeValue(ctxFields["lead_id"])
		}
	}

	return evt, nil
}

// Classify decides which hook, if any, receives the event.
func (e *Event) Classify() Route {
	switch {
	case e.Type == EventTypeToolCall && e.Name == ToolFinalizeOutcome:
		return RouteOutcome
	case e.Type == EventTypeCompleted || e.Type == EventTypeFailed:
		return RouteStatus
	default:
		return RouteNone
	}
}

// OutcomePayload returns the tool call arguments verbatim. It is empty when
// the arguments are absent or null.
func (e *Event) OutcomePayload() []byte {
	args := bytes.TrimSpace(e.Arguments)
	if len(args) == 0 || bytes.Equal(args, []byte("null")) {
		return nil
	}
	return e.Arguments
}

// StatusUpdate reshapes a terminal event for the status hook.
func (e *Event) StatusUpdate() StatusUpdate {
	return StatusUpdate{
		LeadID:      e.LeadID,
		Status:      e.Type,
		Reason:      orNull(e.Reason),
		DurationSec: orNull(e.DurationSec),
	}
}

func decodeString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

func decodeValue(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	return v
}
