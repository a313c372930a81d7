// Package history builds the running message record from a chat event stream.
package history

import (
	"time"

	"github.com/flowchat-ai/flowchat-cli/internal/sse"
)

// TimeMetadata records when streaming started and ended for one message.
type TimeMetadata struct {
	Start time.Time
	End   time.Time
	Delta time.Duration
}

// Message accumulates one streamed answer. StreamEvents holds the token-only
// subsequence that is safe to replay when history is reloaded later;
// LiveEvents holds the full subsequence for a live view. Once sealed by an
// end event the message no longer mutates.
type Message struct {
	Text         string
	SessionID    string
	StreamEvents []sse.StreamEvent
	LiveEvents   []sse.StreamEvent
	Time         TimeMetadata

	sealed     bool
	sessionSet bool
}

func (m *Message) Sealed() bool { return m.sealed }

// Accumulator consumes the event sequence for a single in-flight request.
// One instance per request; never shared.
type Accumulator struct {
	msg Message
	now func() time.Time
}

// NewAccumulator starts a message record; streaming is considered begun at
// the moment of creation.
func NewAccumulator() *Accumulator {
	a := &Accumulator{now: time.Now}
	a.msg.Time.Start = a.now()
	return a
}

// OnEvent folds one event into the message. The returned error, when
// non-nil, is a ProtocolViolation; the event sequence itself may continue.
func (a *Accumulator) OnEvent(ev sse.StreamEvent) error {
	if a.msg.sealed {
		return &sse.ProtocolViolation{Reason: "event received after end"}
	}
	a.msg.LiveEvents = append(a.msg.LiveEvents, ev)

	switch ev.Kind {
	case sse.EventToken:
		a.msg.Text += ev.Text
		a.msg.StreamEvents = append(a.msg.StreamEvents, ev)
	case sse.EventContent:
		a.msg.Text += ev.Content.Content
	case sse.EventSessionID:
		if a.msg.sessionSet {
			// Keep the first value; a second assignment is a violation.
			return &sse.ProtocolViolation{Reason: "duplicate session_id event"}
		}
		a.msg.SessionID = ev.Text
		a.msg.sessionSet = true
	case sse.EventEnd:
		a.msg.Time.End = a.now()
		a.msg.Time.Delta = a.msg.Time.End.Sub(a.msg.Time.Start)
		a.msg.sealed = true
	}
	return nil
}

// Message returns the record built so far. Complete once Sealed reports true.
func (a *Accumulator) Message() *Message {
	return &a.msg
}

// Handler tees events into the accumulator and forwards them to next, so the
// caller's callback and the history record observe the same ordered
// sequence. Violations raised by accumulation are reported through next's
// error path.
func (a *Accumulator) Handler(next sse.Handler) sse.Handler {
	return sse.HandlerFuncs{
		Event: func(ev sse.StreamEvent) {
			if err := a.OnEvent(ev); err != nil {
				next.OnError(err)
			}
			next.OnEvent(ev)
		},
		Error: next.OnError,
	}
}
