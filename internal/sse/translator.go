package sse

import (
	"encoding/json"
	"fmt"
)

// EventKind discriminates the StreamEvent union.
type EventKind string

const (
	EventToken                 EventKind = "token"
	EventContent               EventKind = "content"
	EventAgentFlow             EventKind = "agentFlowEvent"
	EventNextAgentFlow         EventKind = "nextAgentFlow"
	EventAgentFlowExecutedData EventKind = "agentFlowExecutedData"
	EventCalledTools           EventKind = "calledTools"
	EventUsageMetadata         EventKind = "usageMetadata"
	EventMetadata              EventKind = "metadata"
	EventEnd                   EventKind = "end"
	EventSessionID             EventKind = "session_id"
)

// AgentFlowStatus values reported by agentFlowEvent frames.
type AgentFlowStatus string

const (
	AgentFlowInProgress AgentFlowStatus = "INPROGRESS"
	AgentFlowSuccess    AgentFlowStatus = "SUCCESS"
	AgentFlowError      AgentFlowStatus = "ERROR"
)

// StreamEvent is one member of the typed event union. Exactly one payload
// field is populated, selected by Kind; events with an unrecognized kind pass
// through with Kind set to the wire event name and the payload in Text.
// Immutable once constructed.
type StreamEvent struct {
	Kind EventKind

	// Text carries the payload of token, end, session_id, and unknown events.
	Text string

	Content       *ContentPayload
	AgentFlow     *AgentFlowPayload
	NextAgentFlow *NextAgentFlowPayload

	// Raw carries the payload of opaque structured kinds:
	// agentFlowExecutedData, calledTools, usageMetadata, metadata.
	Raw json.RawMessage
}

// ContentPayload is the body of a content event.
type ContentPayload struct {
	Content       string          `json:"content"`
	TimeMetadata  json.RawMessage `json:"timeMetadata,omitempty"`
	UsageMetadata json.RawMessage `json:"usageMetadata,omitempty"`
	CalledTools   json.RawMessage `json:"calledTools,omitempty"`
}

// AgentFlowPayload is the body of an agentFlowEvent.
type AgentFlowPayload struct {
	Status AgentFlowStatus `json:"status"`
	FlowID string          `json:"flowId"`
}

// NextAgentFlowPayload is the body of a nextAgentFlow event.
type NextAgentFlowPayload struct {
	AgentName string `json:"agentName"`
	Status    string `json:"status"`
}

// Translate maps a decoded frame to its StreamEvent variant. A structured
// payload that fails to decode yields a DecodeError for that single frame,
// never for the stream.
func Translate(f Frame) (StreamEvent, error) {
	if !f.HasEvent && !f.HasData {
		return StreamEvent{}, &ProtocolViolation{
			Reason: fmt.Sprintf("frame has no event or data line: %.80q", f.Data),
		}
	}
	if !f.HasEvent {
		// Anonymous frame: the data content is a token verbatim.
		return StreamEvent{Kind: EventToken, Text: f.Data}, nil
	}

	switch EventKind(f.Event) {
	case EventToken, EventEnd, EventSessionID:
		return StreamEvent{Kind: EventKind(f.Event), Text: f.Data}, nil

	case EventContent:
		var p ContentPayload
		if err := json.Unmarshal([]byte(f.Data), &p); err != nil {
			return StreamEvent{}, &DecodeError{Event: f.Event, Reason: "invalid content payload", Err: err}
		}
		return StreamEvent{Kind: EventContent, Content: &p}, nil

	case EventAgentFlow:
		var p AgentFlowPayload
		if err := json.Unmarshal([]byte(f.Data), &p); err != nil {
			return StreamEvent{}, &DecodeError{Event: f.Event, Reason: "invalid agent flow payload", Err: err}
		}
		return StreamEvent{Kind: EventAgentFlow, AgentFlow: &p, Raw: json.RawMessage(f.Data)}, nil

	case EventNextAgentFlow:
		var p NextAgentFlowPayload
		if err := json.Unmarshal([]byte(f.Data), &p); err != nil {
			return StreamEvent{}, &DecodeError{Event: f.Event, Reason: "invalid next agent flow payload", Err: err}
		}
		return StreamEvent{Kind: EventNextAgentFlow, NextAgentFlow: &p, Raw: json.RawMessage(f.Data)}, nil

	case EventAgentFlowExecutedData, EventCalledTools, EventUsageMetadata, EventMetadata:
		if !json.Valid([]byte(f.Data)) {
			return StreamEvent{}, &DecodeError{Event: f.Event, Reason: "payload is not valid JSON"}
		}
		return StreamEvent{Kind: EventKind(f.Event), Raw: json.RawMessage(f.Data)}, nil

	default:
		// Unknown event names are preserved as opaque pass-through.
		return StreamEvent{Kind: EventKind(f.Event), Text: f.Data}, nil
	}
}
