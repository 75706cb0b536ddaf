package provider

import (
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/Prism-Shadow/AgentHub/pkg/jsonx"
	json "github.com/goccy/go-json"
)

// ThinkingLevel selects how much reasoning effort a model spends before
// answering. Each adapter maps the four levels onto its vendor's own
// control, either an effort enum or a strictly increasing token budget.
type ThinkingLevel string

const (
	ThinkingNone   ThinkingLevel = "none"
	ThinkingLow    ThinkingLevel = "low"
	ThinkingMedium ThinkingLevel = "medium"
	ThinkingHigh   ThinkingLevel = "high"
)

// Valid reports whether the level is one of the four canonical levels.
func (l ThinkingLevel) Valid() bool {
	switch l {
	case ThinkingNone, ThinkingLow, ThinkingMedium, ThinkingHigh:
		return true
	}
	return false
}

// PromptCaching selects the prompt caching posture for a request.
type PromptCaching string

const (
	// CachingEnable asks for the vendor's default caching behavior.
	CachingEnable PromptCaching = "enable"
	// CachingDisable asks for no caching. Vendors that always cache
	// implicitly reject this with a configuration error.
	CachingDisable PromptCaching = "disable"
	// CachingEnhance asks the adapter to place an explicit cache boundary
	// marker on the last content item of the most recent user message.
	// Only meaningful for vendors with such a marker.
	CachingEnhance PromptCaching = "enhance"
)

// ToolChoiceMode says how the model may use the configured tools.
type ToolChoiceMode string

const (
	// ToolChoiceAuto lets the model decide whether to call tools.
	ToolChoiceAuto ToolChoiceMode = "auto"
	// ToolChoiceRequired forces the model to call at least one tool.
	ToolChoiceRequired ToolChoiceMode = "required"
	// ToolChoiceNone forbids tool calls for this request.
	ToolChoiceNone ToolChoiceMode = "none"
	// ToolChoiceNamed restricts the model to the tools listed in Names.
	ToolChoiceNamed ToolChoiceMode = "named"
)

// ToolChoice restricts the model's use of the configured tools. On the wire
// it is either one of the mode strings or a list of tool names.
type ToolChoice struct {
	Mode  ToolChoiceMode
	Names []string
	_     struct{} // require keyed usage
}

// Named builds a tool choice restricted to the given tool names.
func Named(names ...string) *ToolChoice {
	return &ToolChoice{Mode: ToolChoiceNamed, Names: names}
}

// Auto builds the model-decides tool choice.
func Auto() *ToolChoice { return &ToolChoice{Mode: ToolChoiceAuto} }

// Required builds the must-call-a-tool tool choice.
func Required() *ToolChoice { return &ToolChoice{Mode: ToolChoiceRequired} }

// None builds the no-tool-calls tool choice.
func None() *ToolChoice { return &ToolChoice{Mode: ToolChoiceNone} }

// MarshalJSON implements json.Marshaler for ToolChoice.
func (c ToolChoice) MarshalJSON() ([]byte, error) {
	if c.Mode == ToolChoiceNamed {
		return json.Marshal(c.Names)
	}
	return json.Marshal(string(c.Mode))
}

// UnmarshalJSON implements json.Unmarshaler for ToolChoice.
func (c *ToolChoice) UnmarshalJSON(input []byte) error {
	jv := gjson.ParseBytes(input)
	if jv.IsArray() {
		c.Mode = ToolChoiceNamed
		c.Names = nil
		for _, name := range jv.Array() {
			c.Names = append(c.Names, name.String())
		}
		return nil
	}
	mode := ToolChoiceMode(jv.String())
	switch mode {
	case ToolChoiceAuto, ToolChoiceRequired, ToolChoiceNone:
		c.Mode = mode
		c.Names = nil
		return nil
	default:
		return fmt.Errorf("unknown tool choice %q", jv.String())
	}
}

// ToolSchema describes one callable function offered to the model.
type ToolSchema struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Parameters  *jsonschema.Schema `json:"parameters,omitempty"`
	_           struct{}           // require keyed usage
}

// ParametersMap renders the parameter schema as the dynamic JSON map most
// vendor SDKs expect.
func (t ToolSchema) ParametersMap() (map[string]any, error) {
	if t.Parameters == nil {
		return map[string]any{"type": "object", "properties": map[string]any{}}, nil
	}
	jv, err := jsonx.ToDynamicJSON(t.Parameters)
	if err != nil {
		return nil, fmt.Errorf("failed to render parameters for tool %s: %w", t.Name, err)
	}
	return jv, nil
}

// SchemaFor reflects a jsonschema for T, inlined without a definitions
// section so it can be embedded directly into a vendor request.
func SchemaFor[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	var model T
	return reflector.Reflect(model)
}

// Config is the canonical request configuration. It is constructed fresh by
// the caller for each request and never mutated by an adapter; adapters
// derive a vendor-specific request object from it.
type Config struct {
	Model           string        `json:"model,omitempty"`
	MaxTokens       *int64        `json:"max_tokens,omitempty"`
	Temperature     *float64      `json:"temperature,omitempty"`
	Tools           []ToolSchema  `json:"tools,omitempty"`
	ThinkingSummary *bool         `json:"thinking_summary,omitempty"`
	ThinkingLevel   ThinkingLevel `json:"thinking_level,omitempty"`
	ToolChoice      *ToolChoice   `json:"tool_choice,omitempty"`
	SystemPrompt    *string       `json:"system_prompt,omitempty"`
	PromptCaching   PromptCaching `json:"prompt_caching,omitempty"`
	TraceID         string        `json:"trace_id,omitempty"`
	_               struct{}      // require keyed usage
}

// Validate checks the vendor-independent invariants. Vendor-specific
// constraints live in each adapter's config transformation.
func (c Config) Validate() error {
	if c.ThinkingLevel != "" && !c.ThinkingLevel.Valid() {
		return Configf("unknown thinking level %q", c.ThinkingLevel)
	}
	switch c.PromptCaching {
	case "", CachingEnable, CachingDisable, CachingEnhance:
	default:
		return Configf("unknown prompt caching mode %q", c.PromptCaching)
	}
	if c.ToolChoice != nil {
		switch c.ToolChoice.Mode {
		case ToolChoiceAuto, ToolChoiceRequired, ToolChoiceNone:
		case ToolChoiceNamed:
			if len(c.ToolChoice.Names) == 0 {
				return Configf("named tool choice requires at least one tool name")
			}
		default:
			return Configf("unknown tool choice mode %q", c.ToolChoice.Mode)
		}
	}
	if c.MaxTokens != nil && *c.MaxTokens <= 0 {
		return Configf("max_tokens must be positive, got %d", *c.MaxTokens)
	}
	return nil
}

// TraceView renders the config for trace files: tool schemas are collapsed
// to their names so transcripts stay readable.
func (c Config) TraceView() ([]byte, error) {
	base, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	if len(c.Tools) == 0 {
		return base, nil
	}
	names := make([]string, len(c.Tools))
	for i, tool := range c.Tools {
		names[i] = tool.Name
	}
	return sjson.SetBytes(base, "tools", names)
}
