package telemetry

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"
)

// Item is one element of an export batch: either a *TraceEvent or a
// *SpanEvent. The set is closed.
type Item interface {
	isItem()
}

// TraceEvent announces a logical agent run. Immutable once emitted.
type TraceEvent struct {
	ExternalTraceID string         `json:"externalTraceId"`
	Name            string         `json:"name"`
	GroupID         string         `json:"groupId,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

func (*TraceEvent) isItem() {}

// SpanEvent is one timed operation within a trace, possibly nested under
// a parent span. Immutable once emitted.
type SpanEvent struct {
	ExternalTraceID      string      `json:"externalTraceId"`
	ExternalSpanID       string      `json:"externalSpanId"`
	ExternalParentSpanID string      `json:"externalParentSpanId,omitempty"`
	Payload              SpanPayload `json:"payload"`
	StartedAt            *time.Time  `json:"startedAt,omitempty"`
	EndedAt              *time.Time  `json:"endedAt,omitempty"`
	Error                *SpanError  `json:"error,omitempty"`
}

func (*SpanEvent) isItem() {}

// Terminal reports whether the span has finished, successfully or not.
// Terminal spans are eligible for a completion update after creation.
func (s *SpanEvent) Terminal() bool {
	return s.Error != nil || s.EndedAt != nil
}

// SpanError carries the failure recorded on a span by the framework.
type SpanError struct {
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// Usage holds token counts reported by a model provider.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}

type itemEnvelope struct {
	Kind                 string         `json:"kind"`
	ExternalTraceID      string         `json:"externalTraceId"`
	Name                 string         `json:"name"`
	GroupID              string         `json:"groupId"`
	Metadata             map[string]any `json:"metadata"`
	ExternalSpanID       string         `json:"externalSpanId"`
	ExternalParentSpanID string         `json:"externalParentSpanId"`
	Payload              rawPayload     `json:"payload"`
	StartedAt            *time.Time     `json:"startedAt"`
	EndedAt              *time.Time     `json:"endedAt"`
	Error                *SpanError     `json:"error"`
}

// DecodeItem parses one serialized event, dispatching on its "kind"
// discriminator. Span payloads are decoded by their "type" tag; payloads
// with an unrecognized type degrade to *CustomPayload rather than failing,
// so a newer framework never breaks replay of recorded logs.
func DecodeItem(data []byte) (Item, error) {
	var env itemEnvelope
	if err := sonic.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}

	switch env.Kind {
	case "trace":
		if env.ExternalTraceID == "" {
			return nil, fmt.Errorf("trace event missing externalTraceId")
		}
		return &TraceEvent{
			ExternalTraceID: env.ExternalTraceID,
			Name:            env.Name,
			GroupID:         env.GroupID,
			Metadata:        env.Metadata,
		}, nil
	case "span":
		if env.ExternalSpanID == "" {
			return nil, fmt.Errorf("span event missing externalSpanId")
		}
		payload, err := env.Payload.decode()
		if err != nil {
			return nil, err
		}
		return &SpanEvent{
			ExternalTraceID:      env.ExternalTraceID,
			ExternalSpanID:       env.ExternalSpanID,
			ExternalParentSpanID: env.ExternalParentSpanID,
			Payload:              payload,
			StartedAt:            env.StartedAt,
			EndedAt:              env.EndedAt,
			Error:                env.Error,
		}, nil
	default:
		return nil, fmt.Errorf("unknown event kind %q", env.Kind)
	}
}
