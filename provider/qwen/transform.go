package qwen

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

// Reasoning fragments of a turn are joined in order before replay; relays
// want the whole text back, not the first fragment.
func appendThinking(thinking *string, fragment string) *string {
	if thinking == nil {
		thinking = new(string)
	}
	*thinking += fragment
	return thinking
}

// TransformConfig derives the chat-completions request parameters from a
// canonical config. Relays differ in which reasoning field they honor, so
// thinking replay is handled in TransformMessages rather than here.
func TransformConfig(model string, cfg provider.Config) (openai.ChatCompletionNewParams, error) {
	if err := cfg.Validate(); err != nil {
		return openai.ChatCompletionNewParams{}, err
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

	if cfg.PromptCaching != "" && cfg.PromptCaching != provider.CachingEnable {
		return openai.ChatCompletionNewParams{}, provider.Configf(
			"qwen model %s caches prompts implicitly, prompt_caching %q cannot be honored", model, cfg.PromptCaching)
	}

	for _, tool := range cfg.Tools {
		schema, err := tool.ParametersMap()
		if err != nil {
			return openai.ChatCompletionNewParams{}, provider.Configf("%v", err)
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
			return openai.ChatCompletionNewParams{}, provider.Configf(
				"qwen model %s supports only automatic tool choice, got %q", model, cfg.ToolChoice.Mode)
		}
		params.ToolChoice = openai.ChatCompletionToolChoiceOptionUnionParam{
			OfAuto: param.NewOpt("auto"),
		}
	}

	return params, nil
}

// TransformMessages converts canonical history to chat-completions messages.
// Thinking replay is patched onto the assistant message under both field
// names the relays use, addressed by the final index of that message.
// Images are rejected, none of the relays accept them.
func TransformMessages(systemPrompt *string, msgs []messages.UniMessage) ([]openai.ChatCompletionMessageParamUnion, []option.RequestOption, error) {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs)+1)
	var reqOpts []option.RequestOption
	seenCalls := map[string]bool{}

	if systemPrompt != nil {
		result = append(result, openai.SystemMessage(*systemPrompt))
	}

	for _, msg := range msgs {
		var text string
		var thinking *string
		var toolCalls []openai.ChatCompletionMessageToolCallParam

		for _, item := range msg.ContentItems {
			switch it := item.(type) {
			case messages.TextItem:
				text += it.Text
			case messages.ImageURLItem:
				return nil, nil, provider.Configf("qwen relays do not accept images")
			case messages.ThinkingItem:
				thinking = appendThinking(thinking, it.Thinking)
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
				tool, err := toolResultMessage(it)
				if err != nil {
					return nil, nil, err
				}
				result = append(result, tool)
			case messages.PartialToolCallItem:
				return nil, nil, provider.Integrityf("partial tool call %s cannot be sent back to the model", it.ToolCallID)
			default:
				return nil, nil, provider.Malformedf("content item %T has no qwen representation", item)
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
				reqOpts = append(reqOpts,
					option.WithJSONSet(fmt.Sprintf("messages.%d.reasoning_content", len(result)), *thinking),
					option.WithJSONSet(fmt.Sprintf("messages.%d.reasoning", len(result)), *thinking))
			}
			result = append(result, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant})
		case text != "":
			result = append(result, openai.UserMessage(text))
		}
	}

	return result, reqOpts, nil
}

func toolResultMessage(item messages.ToolResultItem) (openai.ChatCompletionMessageParamUnion, error) {
	if len(item.Result.Parts) == 0 {
		return openai.ToolMessage(item.Result.Content, item.ToolCallID), nil
	}

	parts := make([]openai.ChatCompletionContentPartTextParam, 0, len(item.Result.Parts))
	for _, part := range item.Result.Parts {
		text, ok := part.(messages.TextItem)
		if !ok {
			return openai.ChatCompletionMessageParamUnion{}, provider.Configf(
				"qwen relays accept only text in tool results, got %T", part)
		}
		parts = append(parts, openai.ChatCompletionContentPartTextParam{Text: text.Text})
	}
	return openai.ChatCompletionMessageParamUnion{
		OfTool: &openai.ChatCompletionToolMessageParam{
			ToolCallID: item.ToolCallID,
			Content: openai.ChatCompletionToolMessageParamContentUnion{
				OfArrayOfContentParts: parts,
			},
		},
	}, nil
}
