package anthropic

import (
	"github.com/anthropics/anthropic-sdk-go"

	"github.com/Prism-Shadow/AgentHub/messages"
	"github.com/Prism-Shadow/AgentHub/pkg/imagex"
	"github.com/Prism-Shadow/AgentHub/provider"
)

// Thinking budgets per canonical level. Strictly increasing so that a
// higher level always buys more reasoning.
var thinkingBudgets = map[provider.ThinkingLevel]int64{
	provider.ThinkingNone:   0,
	provider.ThinkingLow:    2000,
	provider.ThinkingMedium: 5000,
	provider.ThinkingHigh:   10000,
}

// The API requires max_tokens, so an unset canonical value needs a concrete
// number to send.
const defaultMaxTokens = 4096

// TransformConfig derives the vendor request parameters from a canonical
// config. Absent canonical fields stay absent; combinations the API cannot
// honor fail here, before any network I/O.
func TransformConfig(model string, cfg provider.Config) (anthropic.MessageNewParams, error) {
	if err := cfg.Validate(); err != nil {
		return anthropic.MessageNewParams{}, err
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: defaultMaxTokens,
	}
	if cfg.MaxTokens != nil {
		params.MaxTokens = *cfg.MaxTokens
	}
	if cfg.SystemPrompt != nil {
		params.System = []anthropic.TextBlockParam{{Text: *cfg.SystemPrompt}}
	}

	thinking := cfg.ThinkingLevel != "" && cfg.ThinkingLevel != provider.ThinkingNone
	if thinking {
		if cfg.Temperature != nil {
			return anthropic.MessageNewParams{}, provider.Configf(
				"anthropic model %s does not support setting temperature while thinking is enabled", model)
		}
		params.Thinking = anthropic.ThinkingConfigParamUnion{
			OfEnabled: &anthropic.ThinkingConfigEnabledParam{
				BudgetTokens: thinkingBudgets[cfg.ThinkingLevel],
			},
		}
	}
	if cfg.Temperature != nil {
		params.Temperature = anthropic.Float(*cfg.Temperature)
	}

	for _, tool := range cfg.Tools {
		schema, err := tool.ParametersMap()
		if err != nil {
			return anthropic.MessageNewParams{}, provider.Configf("%v", err)
		}
		toolParam := anthropic.ToolParam{
			Name: tool.Name,
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: schema["properties"],
			},
		}
		if required, ok := schema["required"]; ok {
			toolParam.InputSchema.ExtraFields = map[string]any{"required": required}
		}
		if tool.Description != "" {
			toolParam.Description = anthropic.String(tool.Description)
		}
		params.Tools = append(params.Tools, anthropic.ToolUnionParam{OfTool: &toolParam})
	}

	if cfg.ToolChoice != nil {
		choice, err := toolChoice(model, *cfg.ToolChoice)
		if err != nil {
			return anthropic.MessageNewParams{}, err
		}
		params.ToolChoice = choice
	}

	return params, nil
}

func toolChoice(model string, choice provider.ToolChoice) (anthropic.ToolChoiceUnionParam, error) {
	switch choice.Mode {
	case provider.ToolChoiceAuto:
		return anthropic.ToolChoiceUnionParam{OfAuto: &anthropic.ToolChoiceAutoParam{}}, nil
	case provider.ToolChoiceRequired:
		return anthropic.ToolChoiceUnionParam{OfAny: &anthropic.ToolChoiceAnyParam{}}, nil
	case provider.ToolChoiceNone:
		return anthropic.ToolChoiceUnionParam{OfNone: &anthropic.ToolChoiceNoneParam{}}, nil
	case provider.ToolChoiceNamed:
		if len(choice.Names) != 1 {
			return anthropic.ToolChoiceUnionParam{}, provider.Configf(
				"anthropic model %s supports forcing exactly one tool, got %d names", model, len(choice.Names))
		}
		return anthropic.ToolChoiceUnionParam{
			OfTool: &anthropic.ToolChoiceToolParam{Name: choice.Names[0]},
		}, nil
	default:
		return anthropic.ToolChoiceUnionParam{}, provider.Configf("unknown tool choice mode %q", choice.Mode)
	}
}

// TransformMessages converts canonical history to the vendor's message
// blocks. With markCache set, the last content block of the most recent
// user message carries the explicit cache boundary marker.
func TransformMessages(msgs []messages.UniMessage, markCache bool) ([]anthropic.MessageParam, error) {
	result := make([]anthropic.MessageParam, 0, len(msgs))
	seenCalls := map[string]bool{}
	lastUser := -1

	for _, msg := range msgs {
		blocks := make([]anthropic.ContentBlockParamUnion, 0, len(msg.ContentItems))
		for _, item := range msg.ContentItems {
			switch it := item.(type) {
			case messages.TextItem:
				blocks = append(blocks, anthropic.NewTextBlock(it.Text))
			case messages.ThinkingItem:
				blocks = append(blocks, anthropic.ContentBlockParamUnion{
					OfThinking: &anthropic.ThinkingBlockParam{
						Thinking:  it.Thinking,
						Signature: it.Signature,
					},
				})
			case messages.ImageURLItem:
				block, err := imageBlock(it.URL)
				if err != nil {
					return nil, err
				}
				blocks = append(blocks, block)
			case messages.ToolCallItem:
				seenCalls[it.ToolCallID] = true
				blocks = append(blocks, anthropic.ContentBlockParamUnion{
					OfToolUse: &anthropic.ToolUseBlockParam{
						ID:    it.ToolCallID,
						Name:  it.Name,
						Input: it.Arguments,
					},
				})
			case messages.ToolResultItem:
				if !seenCalls[it.ToolCallID] {
					return nil, provider.Integrityf(
						"tool result references tool call %s which never appeared in the conversation", it.ToolCallID)
				}
				block, err := toolResultBlock(it)
				if err != nil {
					return nil, err
				}
				blocks = append(blocks, block)
			case messages.PartialToolCallItem:
				return nil, provider.Integrityf("partial tool call %s cannot be sent back to the model", it.ToolCallID)
			default:
				return nil, provider.Malformedf("content item %T has no anthropic representation", item)
			}
		}

		if msg.Role == messages.RoleUser {
			lastUser = len(result)
		}
		result = append(result, anthropic.MessageParam{
			Role:    anthropicRole(msg.Role),
			Content: blocks,
		})
	}

	if markCache && lastUser >= 0 && len(result[lastUser].Content) > 0 {
		markCacheBoundary(&result[lastUser].Content[len(result[lastUser].Content)-1])
	}
	return result, nil
}

func anthropicRole(role messages.Role) anthropic.MessageParamRole {
	if role == messages.RoleAssistant {
		return anthropic.MessageParamRoleAssistant
	}
	return anthropic.MessageParamRoleUser
}

func imageBlock(url string) (anthropic.ContentBlockParamUnion, error) {
	if imagex.IsDataURI(url) {
		mime, payload, err := imagex.ParseDataURI(url)
		if err != nil {
			return anthropic.ContentBlockParamUnion{}, provider.Configf("%v", err)
		}
		return anthropic.NewImageBlockBase64(mime, payload), nil
	}
	return anthropic.ContentBlockParamUnion{
		OfImage: &anthropic.ImageBlockParam{
			Source: anthropic.ImageBlockParamSourceUnion{
				OfURL: &anthropic.URLImageSourceParam{URL: url},
			},
		},
	}, nil
}

func toolResultBlock(item messages.ToolResultItem) (anthropic.ContentBlockParamUnion, error) {
	block := anthropic.ToolResultBlockParam{ToolUseID: item.ToolCallID}

	if len(item.Result.Parts) == 0 {
		block.Content = []anthropic.ToolResultBlockParamContentUnion{
			{OfText: &anthropic.TextBlockParam{Text: item.Result.Content}},
		}
		return anthropic.ContentBlockParamUnion{OfToolResult: &block}, nil
	}

	for _, part := range item.Result.Parts {
		switch p := part.(type) {
		case messages.TextItem:
			block.Content = append(block.Content, anthropic.ToolResultBlockParamContentUnion{
				OfText: &anthropic.TextBlockParam{Text: p.Text},
			})
		case messages.ImageURLItem:
			img, err := imageBlock(p.URL)
			if err != nil {
				return anthropic.ContentBlockParamUnion{}, err
			}
			block.Content = append(block.Content, anthropic.ToolResultBlockParamContentUnion{
				OfImage: img.OfImage,
			})
		default:
			return anthropic.ContentBlockParamUnion{}, provider.Malformedf(
				"tool result part %T has no anthropic representation", part)
		}
	}
	return anthropic.ContentBlockParamUnion{OfToolResult: &block}, nil
}

func markCacheBoundary(block *anthropic.ContentBlockParamUnion) {
	marker := anthropic.NewCacheControlEphemeralParam()
	switch {
	case block.OfText != nil:
		block.OfText.CacheControl = marker
	case block.OfThinking != nil:
		// thinking blocks take no cache marker, the API rejects it
	case block.OfImage != nil:
		block.OfImage.CacheControl = marker
	case block.OfToolUse != nil:
		block.OfToolUse.CacheControl = marker
	case block.OfToolResult != nil:
		block.OfToolResult.CacheControl = marker
	}
}
