package glm

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/Prism-Shadow/AgentHub/messages"
	"github.com/Prism-Shadow/AgentHub/provider"
)

// TransformConfig derives the chat-completions request parameters from a
// canonical config. The thinking switch is not part of the standard surface,
// so it travels as a request-body patch alongside the typed params.
func TransformConfig(model string, cfg provider.Config) (openai.ChatCompletionNewParams, []option.RequestOption, error) {
	if err := cfg.Validate(); err != nil {
		return openai.ChatCompletionNewParams{}, nil, err
	}

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(model),
		StreamOptions: openai.ChatCompletionStreamOptionsParam{
			IncludeUsage: param.NewOpt(true),
		},
	}
	if cfg.MaxTokens != nil {
		params.MaxTokens = openai.Int(*cfg.MaxTokens)
	}
	if cfg.Temperature != nil {
		params.Temperature = openai.Float(*cfg.Temperature)
	}

	var reqOpts []option.RequestOption
	if cfg.ThinkingLevel != "" {
		mode := "enabled"
		if cfg.ThinkingLevel == provider.ThinkingNone {
			mode = "disabled"
		}
		reqOpts = append(reqOpts, option.WithJSONSet("thinking", map[string]string{"type": mode}))
	}

	if cfg.PromptCaching != "" && cfg.PromptCaching != provider.CachingEnable {
		return openai.ChatCompletionNewParams{}, nil, provider.Configf(
			"glm model %s caches prompts implicitly, prompt_caching %q cannot be honored", model, cfg.PromptCaching)
	}

	for _, tool := range cfg.Tools {
		schema, err := tool.ParametersMap()
		if err != nil {
			return openai.ChatCompletionNewParams{}, nil, provider.Configf("%v", err)
		}
		def := shared.FunctionDefinitionParam{
			Name:       tool.Name,
			Parameters: shared.FunctionParameters(schema),
		}
		if tool.Description != "" {
			def.Description = param.NewOpt(tool.Description)
		}
		params.Tools = append(params.Tools, openai.ChatCompletionToolParam{Function: def})
	}

	if cfg.ToolChoice != nil {
		if cfg.ToolChoice.Mode != provider.ToolChoiceAuto {
			return openai.ChatCompletionNewParams{}, nil, provider.Configf(
				"glm model %s supports only automatic tool choice, got %q", model, cfg.ToolChoice.Mode)
		}
		params.ToolChoice = openai.ChatCompletionToolChoiceOptionUnionParam{
			OfAuto: param.NewOpt("auto"),
		}
	}

	return params, reqOpts, nil
}

// TransformMessages converts canonical history to chat-completions messages.
// The system prompt, when present, leads the list. Thinking replay rides on
// the assistant message as a reasoning_content body patch, addressed by the
// final index of that message.
func TransformMessages(systemPrompt *string, msgs []messages.UniMessage) ([]openai.ChatCompletionMessageParamUnion, []option.RequestOption, error) {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs)+1)
	var reqOpts []option.RequestOption
	seenCalls := map[string]bool{}

	if systemPrompt != nil {
		result = append(result, openai.SystemMessage(*systemPrompt))
	}

	for _, msg := range msgs {
		var parts []openai.ChatCompletionContentPartUnionParam
		var text string
		var thinking *string
		var toolCalls []openai.ChatCompletionMessageToolCallParam

		for _, item := range msg.ContentItems {
			switch it := item.(type) {
			case messages.TextItem:
				parts = append(parts, openai.TextContentPart(it.Text))
				text += it.Text
			case messages.ImageURLItem:
				parts = append(parts, openai.ImageContentPart(
					openai.ChatCompletionContentPartImageImageURLParam{URL: it.URL}))
			case messages.ThinkingItem:
				if thinking == nil {
					t := it.Thinking
					thinking = &t
				}
			case messages.ToolCallItem:
				seenCalls[it.ToolCallID] = true
				args, err := json.Marshal(it.Arguments)
				if err != nil {
					return nil, nil, provider.Malformedf("tool call %s: %v", it.ToolCallID, err)
				}
				toolCalls = append(toolCalls, openai.ChatCompletionMessageToolCallParam{
					ID: it.ToolCallID,
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      it.Name,
						Arguments: string(args),
					},
				})
			case messages.ToolResultItem:
				if !seenCalls[it.ToolCallID] {
					return nil, nil, provider.Integrityf(
						"tool result references tool call %s which never appeared in the conversation", it.ToolCallID)
				}
				if len(it.Result.Parts) > 0 {
					return nil, nil, provider.Configf("glm tool results carry text only, got structured parts")
				}
				result = append(result, openai.ToolMessage(it.Result.Content, it.ToolCallID))
			case messages.PartialToolCallItem:
				return nil, nil, provider.Integrityf("partial tool call %s cannot be sent back to the model", it.ToolCallID)
			default:
				return nil, nil, provider.Malformedf("content item %T has no glm representation", item)
			}
		}

		switch {
		case msg.Role == messages.RoleAssistant:
			if text == "" && thinking == nil && len(toolCalls) == 0 {
				continue
			}
			assistant := openai.ChatCompletionAssistantMessageParam{
				Content: openai.ChatCompletionAssistantMessageParamContentUnion{
					OfString: param.NewOpt(text),
				},
				ToolCalls: toolCalls,
			}
			if thinking != nil {
				reqOpts = append(reqOpts, option.WithJSONSet(
					fmt.Sprintf("messages.%d.reasoning_content", len(result)), *thinking))
			}
			result = append(result, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant})
		case len(parts) > 0:
			result = append(result, openai.ChatCompletionMessageParamUnion{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfArrayOfContentParts: parts,
					},
				},
			})
		}
	}

	return result, reqOpts, nil
}
