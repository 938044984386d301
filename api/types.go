package api

import "time"

// SpanType is the backend's canonical span classification.
type SpanType string

const (
	SpanTypeAgentStep SpanType = "AGENT_STEP"
	SpanTypeToolCall  SpanType = "TOOL_CALL"
	SpanTypeLLMCall   SpanType = "LLM_CALL"
	SpanTypeCustom    SpanType = "CUSTOM"
)

// SpanStatus is the backend's span lifecycle state.
type SpanStatus string

const (
	SpanStatusRunning   SpanStatus = "RUNNING"
	SpanStatusCompleted SpanStatus = "COMPLETED"
	SpanStatusFailed    SpanStatus = "FAILED"
)

// TraceInput creates a trace. ExternalID is the idempotency key; the
// backend upserts on it.
type TraceInput struct {
	Name       string         `json:"name"`
	ExternalID string         `json:"externalId"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Trace is a created trace as returned by the backend.
type Trace struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	ExternalID string    `json:"externalId,omitempty"`
	ProjectID  string    `json:"projectId,omitempty"`
	CreatedAt  time.Time `json:"createdAt,omitempty"`
}

// SpanInput creates a span under an existing trace.
type SpanInput struct {
	TraceID   string         `json:"traceId"`
	Name      string         `json:"name"`
	Type      SpanType       `json:"type"`
	Model     string         `json:"model,omitempty"`
	ToolName  string         `json:"toolName,omitempty"`
	ToolInput any            `json:"toolInput,omitempty"`
	Input     map[string]any `json:"input,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Span is a created span as returned by the backend.
type Span struct {
	ID        string     `json:"id"`
	TraceID   string     `json:"traceId"`
	Name      string     `json:"name"`
	Type      SpanType   `json:"type"`
	Status    SpanStatus `json:"status,omitempty"`
	CreatedAt time.Time  `json:"createdAt,omitempty"`
}

// SpanUpdate is the completion delta for a terminal span.
type SpanUpdate struct {
	Status       SpanStatus     `json:"status,omitempty"`
	Error        string         `json:"error,omitempty"`
	Output       any            `json:"output,omitempty"`
	ToolOutput   any            `json:"toolOutput,omitempty"`
	PromptTokens *int           `json:"promptTokens,omitempty"`
	OutputTokens *int           `json:"outputTokens,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// Empty reports whether the update carries nothing; open spans map to an
// empty delta.
func (u SpanUpdate) Empty() bool {
	return u.Status == ""
}

// BatchResult summarizes a batch create. The batch endpoint reports counts
// only; it does not return per-span ids, so batch-created spans cannot
// later receive individual completion updates.
type BatchResult struct {
	Created int `json:"created"`
	Total   int `json:"total"`
}
