package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowchat-ai/flowchat-cli/internal/sse"
)

func token(text string) sse.StreamEvent {
	return sse.StreamEvent{Kind: sse.EventToken, Text: text}
}

func TestAccumulator_BuildsMessageText(t *testing.T) {
	a := NewAccumulator()

	require.NoError(t, a.OnEvent(token("Hel")))
	require.NoError(t, a.OnEvent(token("lo")))
	require.NoError(t, a.OnEvent(sse.StreamEvent{Kind: sse.EventEnd, Text: "done"}))

	msg := a.Message()
	assert.Equal(t, "Hello", msg.Text)
	assert.True(t, msg.Sealed())
	assert.Len(t, msg.StreamEvents, 2)
	assert.Len(t, msg.LiveEvents, 3)
}

func TestAccumulator_ContentAddsTextButNotStreamEvents(t *testing.T) {
	a := NewAccumulator()

	require.NoError(t, a.OnEvent(token("Answer: ")))
	require.NoError(t, a.OnEvent(sse.StreamEvent{
		Kind:    sse.EventContent,
		Content: &sse.ContentPayload{Content: "42"},
	}))

	msg := a.Message()
	assert.Equal(t, "Answer: 42", msg.Text)
	// Only tokens are replay-safe; structural events stay out of StreamEvents.
	assert.Len(t, msg.StreamEvents, 1)
	assert.Len(t, msg.LiveEvents, 2)
}

func TestAccumulator_MetaEventsOnlyInLiveEvents(t *testing.T) {
	a := NewAccumulator()

	require.NoError(t, a.OnEvent(sse.StreamEvent{Kind: sse.EventUsageMetadata, Raw: []byte(`{}`)}))
	require.NoError(t, a.OnEvent(sse.StreamEvent{Kind: sse.EventAgentFlow, AgentFlow: &sse.AgentFlowPayload{Status: sse.AgentFlowSuccess}}))

	msg := a.Message()
	assert.Empty(t, msg.Text)
	assert.Empty(t, msg.StreamEvents)
	assert.Len(t, msg.LiveEvents, 2)
}

func TestAccumulator_SessionIDRecordedOnce(t *testing.T) {
	a := NewAccumulator()

	require.NoError(t, a.OnEvent(sse.StreamEvent{Kind: sse.EventSessionID, Text: "first"}))

	err := a.OnEvent(sse.StreamEvent{Kind: sse.EventSessionID, Text: "second"})
	var pv *sse.ProtocolViolation
	require.ErrorAs(t, err, &pv)

	// The first value recorded is not altered.
	assert.Equal(t, "first", a.Message().SessionID)
}

func TestAccumulator_EndSealsAndComputesDelta(t *testing.T) {
	a := NewAccumulator()
	start := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	clock := start
	a.now = func() time.Time { return clock }
	a.msg.Time.Start = start

	clock = start.Add(1500 * time.Millisecond)
	require.NoError(t, a.OnEvent(sse.StreamEvent{Kind: sse.EventEnd, Text: "done"}))

	msg := a.Message()
	assert.True(t, msg.Sealed())
	assert.Equal(t, 1500*time.Millisecond, msg.Time.Delta)

	err := a.OnEvent(token("late"))
	var pv *sse.ProtocolViolation
	require.ErrorAs(t, err, &pv)
	assert.Equal(t, "", msg.Text, "sealed message no longer mutates")
}

func TestAccumulator_HandlerTeesToNext(t *testing.T) {
	a := NewAccumulator()
	var forwarded []sse.StreamEvent
	var reported []error
	h := a.Handler(sse.HandlerFuncs{
		Event: func(ev sse.StreamEvent) { forwarded = append(forwarded, ev) },
		Error: func(err error) { reported = append(reported, err) },
	})

	h.OnEvent(sse.StreamEvent{Kind: sse.EventSessionID, Text: "s1"})
	h.OnEvent(sse.StreamEvent{Kind: sse.EventSessionID, Text: "s2"})
	h.OnEvent(token("hi"))

	assert.Len(t, forwarded, 3, "caller sees every event in order")
	require.Len(t, reported, 1, "duplicate session_id reported once")
	assert.Equal(t, "s1", a.Message().SessionID)
	assert.Equal(t, "hi", a.Message().Text)
}
