package telemetry

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// SpanPayload is the closed set of span variants an agent framework emits.
// Variant returns the wire tag ("agent", "function", "generation", ...).
type SpanPayload interface {
	Variant() string
	isPayload()
}

// AgentPayload records one step of an agent's reasoning loop.
type AgentPayload struct {
	Name       string   `json:"name"`
	Handoffs   []string `json:"handoffs,omitempty"`
	Tools      []string `json:"tools,omitempty"`
	OutputType string   `json:"output_type,omitempty"`
}

// FunctionPayload records a tool invocation. Input and Output hold the
// raw JSON strings the framework captured from the tool boundary.
type FunctionPayload struct {
	Name    string         `json:"name"`
	Input   string         `json:"input,omitempty"`
	Output  string         `json:"output,omitempty"`
	MCPData map[string]any `json:"mcp_data,omitempty"`
}

// GenerationPayload records an LLM call.
type GenerationPayload struct {
	Model       string           `json:"model,omitempty"`
	Input       []map[string]any `json:"input,omitempty"`
	Output      []map[string]any `json:"output,omitempty"`
	ModelConfig map[string]any   `json:"model_config,omitempty"`
	Usage       *Usage           `json:"usage,omitempty"`
}

// HandoffPayload records control passing between agents.
type HandoffPayload struct {
	FromAgent string `json:"from_agent,omitempty"`
	ToAgent   string `json:"to_agent,omitempty"`
}

// GuardrailPayload records a guardrail evaluation.
type GuardrailPayload struct {
	Name      string `json:"name"`
	Triggered bool   `json:"triggered"`
}

// ResponsePayload records a raw provider response exchange.
type ResponsePayload struct {
	ResponseID string         `json:"response_id,omitempty"`
	Input      any            `json:"input,omitempty"`
	Response   map[string]any `json:"response,omitempty"`
}

// TranscriptionPayload records a speech-to-text call.
type TranscriptionPayload struct {
	Model       string         `json:"model,omitempty"`
	ModelConfig map[string]any `json:"model_config,omitempty"`
}

// SpeechPayload records a text-to-speech call.
type SpeechPayload struct {
	Model       string         `json:"model,omitempty"`
	ModelConfig map[string]any `json:"model_config,omitempty"`
}

// SpeechGroupPayload groups a run of speech spans.
type SpeechGroupPayload struct{}

// CustomPayload carries framework- or user-defined data.
type CustomPayload struct {
	Name string         `json:"name"`
	Data map[string]any `json:"data,omitempty"`
}

// MCPListToolsPayload records a tool listing against an MCP server.
type MCPListToolsPayload struct {
	Server string   `json:"server,omitempty"`
	Result []string `json:"result,omitempty"`
}

func (*AgentPayload) Variant() string        { return "agent" }
func (*FunctionPayload) Variant() string     { return "function" }
func (*GenerationPayload) Variant() string   { return "generation" }
func (*HandoffPayload) Variant() string      { return "handoff" }
func (*GuardrailPayload) Variant() string    { return "guardrail" }
func (*ResponsePayload) Variant() string     { return "response" }
func (*TranscriptionPayload) Variant() string { return "transcription" }
func (*SpeechPayload) Variant() string       { return "speech" }
func (*SpeechGroupPayload) Variant() string  { return "speech_group" }
func (*CustomPayload) Variant() string       { return "custom" }
func (*MCPListToolsPayload) Variant() string { return "mcp_tools" }

func (*AgentPayload) isPayload()         {}
func (*FunctionPayload) isPayload()      {}
func (*GenerationPayload) isPayload()    {}
func (*HandoffPayload) isPayload()       {}
func (*GuardrailPayload) isPayload()     {}
func (*ResponsePayload) isPayload()      {}
func (*TranscriptionPayload) isPayload() {}
func (*SpeechPayload) isPayload()        {}
func (*SpeechGroupPayload) isPayload()   {}
func (*CustomPayload) isPayload()        {}
func (*MCPListToolsPayload) isPayload()  {}

// rawPayload defers variant decoding until the "type" tag is known.
type rawPayload struct {
	raw []byte
}

func (p *rawPayload) UnmarshalJSON(data []byte) error {
	p.raw = append(p.raw[:0], data...)
	return nil
}

func (p *rawPayload) decode() (SpanPayload, error) {
	if len(p.raw) == 0 {
		return &CustomPayload{}, nil
	}

	var tag struct {
		Type string `json:"type"`
	}
	if err := sonic.Unmarshal(p.raw, &tag); err != nil {
		return nil, fmt.Errorf("decode span payload: %w", err)
	}

	var target SpanPayload
	switch tag.Type {
	case "agent":
		target = &AgentPayload{}
	case "function":
		target = &FunctionPayload{}
	case "generation":
		target = &GenerationPayload{}
	case "handoff":
		target = &HandoffPayload{}
	case "guardrail":
		target = &GuardrailPayload{}
	case "response":
		target = &ResponsePayload{}
	case "transcription":
		target = &TranscriptionPayload{}
	case "speech":
		target = &SpeechPayload{}
	case "speech_group":
		target = &SpeechGroupPayload{}
	case "mcp_tools":
		target = &MCPListToolsPayload{}
	case "custom":
		target = &CustomPayload{}
	default:
		// Unrecognized variants keep their fields as custom data.
		var data map[string]any
		if err := sonic.Unmarshal(p.raw, &data); err != nil {
			return nil, fmt.Errorf("decode span payload: %w", err)
		}
		delete(data, "type")
		return &CustomPayload{Name: tag.Type, Data: data}, nil
	}

	if err := sonic.Unmarshal(p.raw, target); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", tag.Type, err)
	}
	return target, nil
}
