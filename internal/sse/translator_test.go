package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate_PlainStringKinds(t *testing.T) {
	tests := []struct {
		name  string
		event string
		data  string
		kind  EventKind
	}{
		{name: "Token", event: "token", data: "Hel", kind: EventToken},
		{name: "End", event: "end", data: "done", kind: EventEnd},
		{name: "SessionID", event: "session_id", data: "9f2c", kind: EventSessionID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := Translate(Frame{Event: tt.event, Data: tt.data, HasEvent: true, HasData: true})
			require.NoError(t, err)
			assert.Equal(t, tt.kind, ev.Kind)
			assert.Equal(t, tt.data, ev.Text)
		})
	}
}

func TestTranslate_AnonymousFrameBecomesToken(t *testing.T) {
	ev, err := Translate(Frame{Data: "fragment", HasData: true})
	require.NoError(t, err)
	assert.Equal(t, EventToken, ev.Kind)
	assert.Equal(t, "fragment", ev.Text)
}

func TestTranslate_ContentPayload(t *testing.T) {
	ev, err := Translate(Frame{
		Event:    "content",
		Data:     `{"content":"Hello","usageMetadata":{"totalTokens":12}}`,
		HasEvent: true,
		HasData:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, EventContent, ev.Kind)
	require.NotNil(t, ev.Content)
	assert.Equal(t, "Hello", ev.Content.Content)
	assert.JSONEq(t, `{"totalTokens":12}`, string(ev.Content.UsageMetadata))
}

func TestTranslate_AgentFlowPayload(t *testing.T) {
	ev, err := Translate(Frame{
		Event:    "agentFlowEvent",
		Data:     `{"status":"INPROGRESS","flowId":"f-1"}`,
		HasEvent: true,
		HasData:  true,
	})
	require.NoError(t, err)
	require.NotNil(t, ev.AgentFlow)
	assert.Equal(t, AgentFlowInProgress, ev.AgentFlow.Status)
	assert.Equal(t, "f-1", ev.AgentFlow.FlowID)
}

func TestTranslate_NextAgentFlowPayload(t *testing.T) {
	ev, err := Translate(Frame{
		Event:    "nextAgentFlow",
		Data:     `{"agentName":"researcher","status":"INPROGRESS"}`,
		HasEvent: true,
		HasData:  true,
	})
	require.NoError(t, err)
	require.NotNil(t, ev.NextAgentFlow)
	assert.Equal(t, "researcher", ev.NextAgentFlow.AgentName)
}

func TestTranslate_OpaqueKindsKeepRawPayload(t *testing.T) {
	for _, name := range []string{"agentFlowExecutedData", "calledTools", "usageMetadata", "metadata"} {
		t.Run(name, func(t *testing.T) {
			ev, err := Translate(Frame{Event: name, Data: `{"k":"v"}`, HasEvent: true, HasData: true})
			require.NoError(t, err)
			assert.Equal(t, EventKind(name), ev.Kind)
			assert.JSONEq(t, `{"k":"v"}`, string(ev.Raw))
		})
	}
}

func TestTranslate_MalformedStructuredPayloadIsDecodeError(t *testing.T) {
	tests := []struct {
		event string
		data  string
	}{
		{event: "content", data: `{"content":`},
		{event: "agentFlowEvent", data: `not json`},
		{event: "calledTools", data: `{broken`},
	}

	for _, tt := range tests {
		t.Run(tt.event, func(t *testing.T) {
			_, err := Translate(Frame{Event: tt.event, Data: tt.data, HasEvent: true, HasData: true})
			var de *DecodeError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.event, de.Event)
		})
	}
}

func TestTranslate_UnknownEventPassesThrough(t *testing.T) {
	ev, err := Translate(Frame{Event: "somethingNew", Data: "opaque payload", HasEvent: true, HasData: true})
	require.NoError(t, err)
	assert.Equal(t, EventKind("somethingNew"), ev.Kind)
	assert.Equal(t, "opaque payload", ev.Text)
}

func TestTranslate_GarbageFrameIsProtocolViolation(t *testing.T) {
	_, err := Translate(Frame{Data: "no recognized lines here"})
	var pv *ProtocolViolation
	require.ErrorAs(t, err, &pv)
	assert.False(t, pv.Fatal)
}
