// Package telemetry defines the event model emitted by instrumented agent
// frameworks and consumed by the exporter.
//
// An export batch is a slice of Item values, each either a *TraceEvent
// (one per logical agent run) or a *SpanEvent (one timed operation within
// a run). Span payloads form a closed set of variants (agent step, tool
// call, LLM generation, handoff, guardrail, and so on); the exporter's
// mapper switches over the set exhaustively, so adding a variant is a
// compile-time-visible change everywhere it is consumed.
//
// Events are identified by externally-assigned ids. The backend assigns
// its own ids on creation; the external ids serve as idempotency keys.
package telemetry
