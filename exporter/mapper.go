package exporter

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"

	"github.com/agentlens/agentlens-go/api"
	"github.com/agentlens/agentlens-go/telemetry"
)

// buildSpanInput translates a span event into the backend's wire shape.
// Pure: the same event and trace id always produce the same input.
func buildSpanInput(s *telemetry.SpanEvent, traceID string) api.SpanInput {
	meta := map[string]any{
		"externalId":     s.ExternalSpanID,
		"payloadVariant": payloadVariant(s.Payload),
	}
	if s.ExternalParentSpanID != "" {
		meta["externalParentId"] = s.ExternalParentSpanID
	}
	if s.StartedAt != nil {
		meta["startedAt"] = s.StartedAt.Format(time.RFC3339Nano)
	}

	in := api.SpanInput{
		TraceID:  traceID,
		Name:     spanName(s.Payload),
		Type:     spanType(s.Payload),
		Metadata: meta,
	}

	switch p := s.Payload.(type) {
	case *telemetry.GenerationPayload:
		in.Model = p.Model
		if len(p.Input) > 0 {
			in.Input = map[string]any{"messages": p.Input}
		}
		if p.ModelConfig != nil {
			meta["model_config"] = p.ModelConfig
		}
	case *telemetry.FunctionPayload:
		in.ToolName = p.Name
		if p.Input != "" {
			in.ToolInput = safeParseJSON(p.Input)
		}
		if p.MCPData != nil {
			meta["mcp_data"] = p.MCPData
		}
	case *telemetry.AgentPayload:
		if len(p.Handoffs) > 0 {
			meta["handoffs"] = p.Handoffs
		}
		if len(p.Tools) > 0 {
			meta["tools"] = p.Tools
		}
		if p.OutputType != "" {
			meta["output_type"] = p.OutputType
		}
	case *telemetry.HandoffPayload:
		meta["from_agent"] = p.FromAgent
		meta["to_agent"] = p.ToAgent
	case *telemetry.GuardrailPayload:
		meta["triggered"] = p.Triggered
	case *telemetry.ResponsePayload:
		if p.Input != nil {
			in.Input = map[string]any{"input": p.Input}
		}
		if p.ResponseID != "" {
			meta["response_id"] = p.ResponseID
		}
	case *telemetry.TranscriptionPayload:
		in.Model = p.Model
		if p.ModelConfig != nil {
			meta["model_config"] = p.ModelConfig
		}
	case *telemetry.SpeechPayload:
		in.Model = p.Model
		if p.ModelConfig != nil {
			meta["model_config"] = p.ModelConfig
		}
	case *telemetry.CustomPayload:
		if p.Data != nil {
			meta["customData"] = p.Data
		}
	case *telemetry.MCPListToolsPayload:
		meta["server"] = p.Server
		if len(p.Result) > 0 {
			meta["result"] = p.Result
		}
	}

	return in
}

// buildSpanUpdate computes the completion delta for a span. An open span
// (no end, no error) yields an empty update. A recorded error wins over a
// recorded end time.
func buildSpanUpdate(s *telemetry.SpanEvent) api.SpanUpdate {
	if s.Error != nil {
		upd := api.SpanUpdate{
			Status: api.SpanStatusFailed,
			Error:  s.Error.Message,
		}
		if s.Error.Data != nil {
			upd.Metadata = map[string]any{"errorData": s.Error.Data}
		}
		return upd
	}
	if s.EndedAt == nil {
		return api.SpanUpdate{}
	}

	upd := api.SpanUpdate{Status: api.SpanStatusCompleted}
	switch p := s.Payload.(type) {
	case *telemetry.GenerationPayload:
		if len(p.Output) > 0 {
			upd.Output = map[string]any{"messages": p.Output}
		}
		if p.Usage != nil {
			prompt, output := p.Usage.PromptTokens, p.Usage.CompletionTokens
			upd.PromptTokens = &prompt
			upd.OutputTokens = &output
		}
	case *telemetry.FunctionPayload:
		if p.Output != "" {
			upd.ToolOutput = safeParseJSON(p.Output)
		}
	case *telemetry.ResponsePayload:
		if p.Response != nil {
			upd.Output = p.Response
		}
	}
	return upd
}

// spanType maps each payload variant onto the backend's canonical span
// types. Unknown payloads (including nil) classify as CUSTOM.
func spanType(p telemetry.SpanPayload) api.SpanType {
	switch p.(type) {
	case *telemetry.GenerationPayload,
		*telemetry.ResponsePayload,
		*telemetry.TranscriptionPayload,
		*telemetry.SpeechPayload,
		*telemetry.SpeechGroupPayload:
		return api.SpanTypeLLMCall
	case *telemetry.FunctionPayload,
		*telemetry.MCPListToolsPayload:
		return api.SpanTypeToolCall
	case *telemetry.AgentPayload,
		*telemetry.HandoffPayload:
		return api.SpanTypeAgentStep
	default:
		return api.SpanTypeCustom
	}
}

func spanName(p telemetry.SpanPayload) string {
	switch p := p.(type) {
	case *telemetry.AgentPayload:
		return "Agent: " + p.Name
	case *telemetry.FunctionPayload:
		return "Tool: " + p.Name
	case *telemetry.GenerationPayload:
		return "LLM: " + orUnknown(p.Model)
	case *telemetry.HandoffPayload:
		return fmt.Sprintf("Handoff: %s → %s", p.FromAgent, p.ToAgent)
	case *telemetry.GuardrailPayload:
		return "Guardrail: " + p.Name
	case *telemetry.ResponsePayload:
		return "Response"
	case *telemetry.TranscriptionPayload:
		return "Transcription: " + orUnknown(p.Model)
	case *telemetry.SpeechPayload:
		return "Speech: " + orUnknown(p.Model)
	case *telemetry.SpeechGroupPayload:
		return "Speech Group"
	case *telemetry.MCPListToolsPayload:
		return "MCP Tools: " + orUnknown(p.Server)
	case *telemetry.CustomPayload:
		return p.Name
	default:
		return "Span"
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func payloadVariant(p telemetry.SpanPayload) string {
	if p == nil {
		return "custom"
	}
	return p.Variant()
}

// safeParseJSON decodes a captured tool boundary string. Unparsable input
// is not an error; it degrades to {"raw": <original>}.
func safeParseJSON(s string) any {
	var v any
	if err := sonic.Unmarshal([]byte(s), &v); err != nil {
		return map[string]any{"raw": s}
	}
	return v
}
