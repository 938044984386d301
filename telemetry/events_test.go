package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTraceEvent(t *testing.T) {
	data := []byte(`{
		"kind": "trace",
		"externalTraceId": "trace_abc",
		"name": "Support run",
		"groupId": "grp-1",
		"metadata": {"tenant": "acme"}
	}`)

	item, err := DecodeItem(data)
	require.NoError(t, err)

	trace, ok := item.(*TraceEvent)
	require.True(t, ok)
	assert.Equal(t, "trace_abc", trace.ExternalTraceID)
	assert.Equal(t, "Support run", trace.Name)
	assert.Equal(t, "grp-1", trace.GroupID)
	assert.Equal(t, map[string]any{"tenant": "acme"}, trace.Metadata)
}

func TestDecodeSpanEventGeneration(t *testing.T) {
	data := []byte(`{
		"kind": "span",
		"externalTraceId": "trace_abc",
		"externalSpanId": "span_1",
		"externalParentSpanId": "span_0",
		"startedAt": "2026-03-01T10:00:00Z",
		"endedAt": "2026-03-01T10:00:02Z",
		"payload": {
			"type": "generation",
			"model": "gpt-4o",
			"input": [{"role": "user", "content": "hi"}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5}
		}
	}`)

	item, err := DecodeItem(data)
	require.NoError(t, err)

	span, ok := item.(*SpanEvent)
	require.True(t, ok)
	assert.Equal(t, "span_1", span.ExternalSpanID)
	assert.Equal(t, "span_0", span.ExternalParentSpanID)
	assert.True(t, span.Terminal())
	require.NotNil(t, span.StartedAt)
	assert.Equal(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), span.StartedAt.UTC())

	gen, ok := span.Payload.(*GenerationPayload)
	require.True(t, ok)
	assert.Equal(t, "gpt-4o", gen.Model)
	require.NotNil(t, gen.Usage)
	assert.Equal(t, 10, gen.Usage.PromptTokens)
	assert.Equal(t, 5, gen.Usage.CompletionTokens)
}

func TestDecodeSpanEventWithError(t *testing.T) {
	data := []byte(`{
		"kind": "span",
		"externalTraceId": "trace_abc",
		"externalSpanId": "span_2",
		"error": {"message": "tool exploded", "data": {"code": 500}},
		"payload": {"type": "function", "name": "search", "input": "{\"q\":1}"}
	}`)

	item, err := DecodeItem(data)
	require.NoError(t, err)

	span := item.(*SpanEvent)
	assert.True(t, span.Terminal())
	require.NotNil(t, span.Error)
	assert.Equal(t, "tool exploded", span.Error.Message)

	fn, ok := span.Payload.(*FunctionPayload)
	require.True(t, ok)
	assert.Equal(t, "search", fn.Name)
	assert.Equal(t, `{"q":1}`, fn.Input)
}

func TestDecodeUnknownPayloadVariantDegradesToCustom(t *testing.T) {
	data := []byte(`{
		"kind": "span",
		"externalTraceId": "trace_abc",
		"externalSpanId": "span_3",
		"payload": {"type": "quantum_leap", "qubits": 7}
	}`)

	item, err := DecodeItem(data)
	require.NoError(t, err)

	span := item.(*SpanEvent)
	custom, ok := span.Payload.(*CustomPayload)
	require.True(t, ok)
	assert.Equal(t, "quantum_leap", custom.Name)
	assert.Equal(t, float64(7), custom.Data["qubits"])
	assert.False(t, span.Terminal())
}

func TestDecodeRejectsMalformedEvents(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{{{`},
		{"unknown kind", `{"kind": "metric"}`},
		{"trace missing id", `{"kind": "trace", "name": "run"}`},
		{"span missing id", `{"kind": "span", "externalTraceId": "t"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeItem([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestTerminal(t *testing.T) {
	now := time.Now()
	assert.False(t, (&SpanEvent{}).Terminal())
	assert.True(t, (&SpanEvent{EndedAt: &now}).Terminal())
	assert.True(t, (&SpanEvent{Error: &SpanError{Message: "x"}}).Terminal())
}
