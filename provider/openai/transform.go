package openai

import (
	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"

	json "github.com/goccy/go-json"

	"github.com/Prism-Shadow/AgentHub/messages"
	"github.com/Prism-Shadow/AgentHub/provider"
)

// Reasoning effort per canonical level. The API has no true "off", so the
// lowest effort stands in for none.
var reasoningEfforts = map[provider.ThinkingLevel]shared.ReasoningEffort{
	provider.ThinkingNone:   "minimal",
	provider.ThinkingLow:    "low",
	provider.ThinkingMedium: "medium",
	provider.ThinkingHigh:   "high",
}

// TransformConfig derives the responses API request parameters from a
// canonical config. Absent canonical fields stay absent.
func TransformConfig(model string, cfg provider.Config) (responses.ResponseNewParams, error) {
	if err := cfg.Validate(); err != nil {
		return responses.ResponseNewParams{}, err
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(model),
	}
	if cfg.MaxTokens != nil {
		params.MaxOutputTokens = openaisdk.Int(*cfg.MaxTokens)
	}
	if cfg.Temperature != nil {
		params.Temperature = openaisdk.Float(*cfg.Temperature)
	}
	if cfg.SystemPrompt != nil {
		params.Instructions = openaisdk.String(*cfg.SystemPrompt)
	}

	// This API caches prompts implicitly; there is no switch to flip.
	switch cfg.PromptCaching {
	case "", provider.CachingEnable:
	default:
		return responses.ResponseNewParams{}, provider.Configf(
			"openai model %s caches prompts implicitly and cannot honor prompt_caching %q", model, cfg.PromptCaching)
	}

	if cfg.ThinkingLevel != "" {
		params.Reasoning = shared.ReasoningParam{Effort: reasoningEfforts[cfg.ThinkingLevel]}
		if cfg.ThinkingSummary != nil && *cfg.ThinkingSummary {
			params.Reasoning.Summary = shared.ReasoningSummaryAuto
		}
		// Encrypted reasoning state must be requested explicitly, and it
		// only comes back on stateless requests.
		params.Include = []responses.ResponseIncludable{"reasoning.encrypted_content"}
		params.Store = openaisdk.Bool(false)
	}

	for _, tool := range cfg.Tools {
		schema, err := tool.ParametersMap()
		if err != nil {
			return responses.ResponseNewParams{}, provider.Configf("%v", err)
		}
		fn := responses.FunctionToolParam{
			Name:       tool.Name,
			Parameters: schema,
		}
		if tool.Description != "" {
			fn.Description = openaisdk.String(tool.Description)
		}
		params.Tools = append(params.Tools, responses.ToolUnionParam{OfFunction: &fn})
	}

	if cfg.ToolChoice != nil {
		choice, err := toolChoice(model, *cfg.ToolChoice)
		if err != nil {
			return responses.ResponseNewParams{}, err
		}
		params.ToolChoice = choice
	}

	return params, nil
}

func toolChoice(model string, choice provider.ToolChoice) (responses.ResponseNewParamsToolChoiceUnion, error) {
	switch choice.Mode {
	case provider.ToolChoiceAuto, provider.ToolChoiceRequired, provider.ToolChoiceNone:
		return responses.ResponseNewParamsToolChoiceUnion{
			OfToolChoiceMode: param.NewOpt(responses.ToolChoiceOptions(choice.Mode)),
		}, nil
	case provider.ToolChoiceNamed:
		if len(choice.Names) != 1 {
			return responses.ResponseNewParamsToolChoiceUnion{}, provider.Configf(
				"openai model %s supports forcing exactly one tool, got %d names", model, len(choice.Names))
		}
		return responses.ResponseNewParamsToolChoiceUnion{
			OfFunctionTool: &responses.ToolChoiceFunctionParam{Name: choice.Names[0]},
		}, nil
	default:
		return responses.ResponseNewParamsToolChoiceUnion{}, provider.Configf("unknown tool choice mode %q", choice.Mode)
	}
}

// TransformMessages converts canonical history into responses API input
// items. Tool calls and results become top-level items rather than message
// content, and signed thinking items replay as reasoning items.
func TransformMessages(msgs []messages.UniMessage) (responses.ResponseInputParam, error) {
	var input responses.ResponseInputParam
	seenCalls := map[string]bool{}

	for _, msg := range msgs {
		var parts responses.ResponseInputMessageContentListParam
		flush := func() {
			if len(parts) > 0 {
				input = append(input, responses.ResponseInputItemUnionParam{
					OfMessage: &responses.EasyInputMessageParam{
						Role: easyRole(msg.Role),
						Content: responses.EasyInputMessageContentUnionParam{
							OfInputItemContentList: parts,
						},
					},
				})
				parts = nil
			}
		}

		for _, item := range msg.ContentItems {
			switch it := item.(type) {
			case messages.TextItem:
				parts = append(parts, responses.ResponseInputContentUnionParam{
					OfInputText: &responses.ResponseInputTextParam{Text: it.Text},
				})
			case messages.ImageURLItem:
				parts = append(parts, responses.ResponseInputContentUnionParam{
					OfInputImage: &responses.ResponseInputImageParam{
						ImageURL: openaisdk.String(it.URL),
						Detail:   "auto",
					},
				})
			case messages.ThinkingItem:
				if it.Signature == "" {
					// reasoning without its encrypted state cannot be
					// replayed, the API rejects bare text
					continue
				}
				id, encrypted, err := decodeSignature(it.Signature)
				if err != nil {
					return nil, err
				}
				flush()
				reasoning := responses.ResponseReasoningItemParam{
					ID:               id,
					EncryptedContent: openaisdk.String(encrypted),
				}
				if it.Thinking != "" {
					reasoning.Summary = []responses.ResponseReasoningItemSummaryParam{{Text: it.Thinking}}
				}
				input = append(input, responses.ResponseInputItemUnionParam{OfReasoning: &reasoning})
			case messages.ToolCallItem:
				args, err := json.Marshal(it.Arguments)
				if err != nil {
					return nil, provider.Malformedf("tool call %s arguments: %v", it.ToolCallID, err)
				}
				seenCalls[it.ToolCallID] = true
				flush()
				input = append(input, responses.ResponseInputItemUnionParam{
					OfFunctionCall: &responses.ResponseFunctionToolCallParam{
						CallID:    it.ToolCallID,
						Name:      it.Name,
						Arguments: string(args),
					},
				})
			case messages.ToolResultItem:
				if !seenCalls[it.ToolCallID] {
					return nil, provider.Integrityf(
						"tool result references tool call %s which never appeared in the conversation", it.ToolCallID)
				}
				if len(it.Result.Parts) > 0 {
					return nil, provider.Configf(
						"openai tool results are text only, tool call %s carries structured parts", it.ToolCallID)
				}
				flush()
				input = append(input, responses.ResponseInputItemUnionParam{
					OfFunctionCallOutput: &responses.ResponseInputItemFunctionCallOutputParam{
						CallID: it.ToolCallID,
						Output: it.Result.Content,
					},
				})
			case messages.PartialToolCallItem:
				return nil, provider.Integrityf("partial tool call %s cannot be sent back to the model", it.ToolCallID)
			default:
				return nil, provider.Malformedf("content item %T has no openai representation", item)
			}
		}
		flush()
	}
	return input, nil
}

func easyRole(role messages.Role) responses.EasyInputMessageRole {
	if role == messages.RoleAssistant {
		return responses.EasyInputMessageRoleAssistant
	}
	return responses.EasyInputMessageRoleUser
}
