package gemini

import (
	"context"
	"encoding/base64"
	"net/http"

	"google.golang.org/genai"

	"github.com/Prism-Shadow/AgentHub/messages"
	"github.com/Prism-Shadow/AgentHub/pkg/imagex"
	"github.com/Prism-Shadow/AgentHub/provider"
)

// Thinking budgets per canonical level. Strictly increasing so that a
// higher level always buys more reasoning.
var thinkingBudgets = map[provider.ThinkingLevel]int32{
	provider.ThinkingNone:   0,
	provider.ThinkingLow:    2048,
	provider.ThinkingMedium: 8192,
	provider.ThinkingHigh:   24576,
}

// TransformConfig derives the vendor generation config from a canonical
// config. A config with nothing to say stays nil.
func TransformConfig(model string, cfg provider.Config) (*genai.GenerateContentConfig, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	result := &genai.GenerateContentConfig{}
	touched := false

	if cfg.SystemPrompt != nil {
		result.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: *cfg.SystemPrompt}}}
		touched = true
	}
	if cfg.MaxTokens != nil {
		result.MaxOutputTokens = int32(*cfg.MaxTokens)
		touched = true
	}
	if cfg.Temperature != nil {
		result.Temperature = genai.Ptr(float32(*cfg.Temperature))
		touched = true
	}

	if cfg.ThinkingSummary != nil || cfg.ThinkingLevel != "" {
		thinking := &genai.ThinkingConfig{}
		if cfg.ThinkingSummary != nil {
			thinking.IncludeThoughts = *cfg.ThinkingSummary
		}
		if cfg.ThinkingLevel != "" {
			thinking.ThinkingBudget = genai.Ptr(thinkingBudgets[cfg.ThinkingLevel])
		}
		result.ThinkingConfig = thinking
		touched = true
	}

	if len(cfg.Tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, len(cfg.Tools))
		for i, tool := range cfg.Tools {
			schema, err := tool.ParametersMap()
			if err != nil {
				return nil, provider.Configf("%v", err)
			}
			decls[i] = &genai.FunctionDeclaration{
				Name:                 tool.Name,
				Description:          tool.Description,
				ParametersJsonSchema: schema,
			}
		}
		result.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
		touched = true
	}

	if cfg.ToolChoice != nil {
		calling, err := callingConfig(*cfg.ToolChoice)
		if err != nil {
			return nil, err
		}
		result.ToolConfig = &genai.ToolConfig{FunctionCallingConfig: calling}
		touched = true
	}

	if cfg.PromptCaching != "" && cfg.PromptCaching != provider.CachingEnable {
		return nil, provider.Configf(
			"gemini model %s caches prompts implicitly, prompt_caching %q cannot be honored", model, cfg.PromptCaching)
	}

	if !touched {
		return nil, nil
	}
	return result, nil
}

func callingConfig(choice provider.ToolChoice) (*genai.FunctionCallingConfig, error) {
	switch choice.Mode {
	case provider.ToolChoiceAuto:
		return &genai.FunctionCallingConfig{Mode: genai.FunctionCallingConfigModeAuto}, nil
	case provider.ToolChoiceRequired:
		return &genai.FunctionCallingConfig{Mode: genai.FunctionCallingConfigModeAny}, nil
	case provider.ToolChoiceNone:
		return &genai.FunctionCallingConfig{Mode: genai.FunctionCallingConfigModeNone}, nil
	case provider.ToolChoiceNamed:
		return &genai.FunctionCallingConfig{
			Mode:                 genai.FunctionCallingConfigModeAny,
			AllowedFunctionNames: choice.Names,
		}, nil
	default:
		return nil, provider.Configf("unknown tool choice mode %q", choice.Mode)
	}
}

// TransformMessages converts canonical history to vendor contents. Remote
// images inside tool results are fetched here because the function response
// format only takes inline bytes.
func TransformMessages(ctx context.Context, httpClient *http.Client, msgs []messages.UniMessage) ([]*genai.Content, error) {
	contents := make([]*genai.Content, 0, len(msgs))
	seenCalls := map[string]bool{}

	for _, msg := range msgs {
		parts := make([]*genai.Part, 0, len(msg.ContentItems))
		for _, item := range msg.ContentItems {
			switch it := item.(type) {
			case messages.TextItem:
				parts = append(parts, &genai.Part{Text: it.Text, ThoughtSignature: decodeSignature(it.Signature)})
			case messages.ThinkingItem:
				parts = append(parts, &genai.Part{Text: it.Thinking, Thought: true, ThoughtSignature: decodeSignature(it.Signature)})
			case messages.ImageURLItem:
				part, err := imagePart(it.URL)
				if err != nil {
					return nil, err
				}
				parts = append(parts, part)
			case messages.ToolCallItem:
				seenCalls[it.ToolCallID] = true
				parts = append(parts, &genai.Part{
					FunctionCall:     &genai.FunctionCall{Name: it.Name, Args: it.Arguments},
					ThoughtSignature: decodeSignature(it.Signature),
				})
			case messages.ToolResultItem:
				if !seenCalls[it.ToolCallID] {
					return nil, provider.Integrityf(
						"tool result references tool call %s which never appeared in the conversation", it.ToolCallID)
				}
				responseParts, err := functionResponseParts(ctx, httpClient, it)
				if err != nil {
					return nil, err
				}
				parts = append(parts, responseParts...)
			case messages.PartialToolCallItem:
				return nil, provider.Integrityf("partial tool call %s cannot be sent back to the model", it.ToolCallID)
			default:
				return nil, provider.Malformedf("content item %T has no gemini representation", item)
			}
		}
		contents = append(contents, genai.NewContentFromParts(parts, geminiRole(msg.Role)))
	}
	return contents, nil
}

func geminiRole(role messages.Role) genai.Role {
	if role == messages.RoleAssistant {
		return genai.RoleModel
	}
	return genai.RoleUser
}

func imagePart(url string) (*genai.Part, error) {
	if imagex.IsDataURI(url) {
		mime, data, err := imagex.DecodeDataURI(url)
		if err != nil {
			return nil, provider.Configf("%v", err)
		}
		return genai.NewPartFromBytes(data, mime), nil
	}
	return genai.NewPartFromURI(url, imagex.MIMEFromURL(url)), nil
}

// The function response payload itself only carries text. Image parts ride
// as inline-data siblings of the response part inside the same content, the
// model associates them with the preceding function response.
func functionResponseParts(ctx context.Context, httpClient *http.Client, item messages.ToolResultItem) ([]*genai.Part, error) {
	response := &genai.FunctionResponse{
		Name:     item.ToolCallID,
		Response: map[string]any{"result": item.Result.Content},
	}

	var text string
	var images []*genai.Part
	for _, part := range item.Result.Parts {
		switch p := part.(type) {
		case messages.TextItem:
			text += p.Text
		case messages.ImageURLItem:
			mime, data, err := inlineImage(ctx, httpClient, p.URL)
			if err != nil {
				return nil, err
			}
			images = append(images, genai.NewPartFromBytes(data, mime))
		default:
			return nil, provider.Malformedf("tool result part %T has no gemini representation", part)
		}
	}
	if text != "" {
		response.Response = map[string]any{"result": text}
	}

	return append([]*genai.Part{{FunctionResponse: response}}, images...), nil
}

// inlineImage turns an image reference into bytes the function response can
// carry, fetching remote URLs over the given client.
func inlineImage(ctx context.Context, httpClient *http.Client, url string) (string, []byte, error) {
	if imagex.IsDataURI(url) {
		mime, data, err := imagex.DecodeDataURI(url)
		if err != nil {
			return "", nil, provider.Configf("%v", err)
		}
		return mime, data, nil
	}
	return imagex.Fetch(ctx, httpClient, url)
}

// Thought signatures are opaque bytes on the wire and base64 text in the
// canonical protocol. A token that does not decode is passed through as raw
// bytes rather than dropped, the vendor rejects it loudly if it matters.
func decodeSignature(signature string) []byte {
	if signature == "" {
		return nil
	}
	if data, err := base64.StdEncoding.DecodeString(signature); err == nil {
		return data
	}
	return []byte(signature)
}

func encodeSignature(signature []byte) string {
	if len(signature) == 0 {
		return ""
	}
	return base64.StdEncoding.EncodeToString(signature)
}
