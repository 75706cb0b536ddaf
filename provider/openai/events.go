package openai

import (
	"github.com/openai/openai-go/responses"

	"github.com/Prism-Shadow/AgentHub/messages"
	"github.com/Prism-Shadow/AgentHub/pkg/stdx"
	"github.com/Prism-Shadow/AgentHub/provider"
)

var finishByStatus = map[responses.ResponseStatus]messages.FinishReason{
	responses.ResponseStatusCompleted:  messages.FinishStop,
	responses.ResponseStatusIncomplete: messages.FinishLength,
	responses.ResponseStatusFailed:     messages.FinishStop,
}

// Housekeeping chunk types that carry no canonical payload. Everything not
// handled explicitly and not listed here is an unknown output.
var unusedEvents = map[string]bool{
	"response.in_progress":                  true,
	"response.content_part.added":           true,
	"response.content_part.done":            true,
	"response.output_text.done":             true,
	"response.reasoning_summary_part.added": true,
	"response.reasoning_summary_part.done":  true,
	"response.reasoning_summary_text.done":  true,
}

type eventPump struct {
	acc provider.ToolCallAccumulator
}

func (p *eventPump) handle(chunk responses.ResponseStreamEventUnion) (messages.UniEvent, error) {
	switch chunk.Type {
	case "response.created":
		return messages.Start(), nil

	case "response.output_text.delta":
		return messages.Delta(messages.Text(chunk.Delta.OfString)), nil

	case "response.reasoning_summary_text.delta":
		return messages.Delta(messages.Thinking(chunk.Delta.OfString)), nil

	case "response.output_item.added":
		item := chunk.Item
		switch item.Type {
		case "function_call":
			return messages.Delta(p.acc.Open(item.Name, item.CallID)), nil
		case "message", "reasoning":
			return messages.Unused(), nil
		default:
			return messages.UniEvent{}, provider.Malformedf("unknown output: item type %q", item.Type)
		}

	case "response.function_call_arguments.delta":
		return messages.Delta(p.acc.Continue(chunk.Delta.OfString)), nil

	case "response.function_call_arguments.done":
		call, err := p.acc.Close()
		if err != nil {
			return messages.UniEvent{}, err
		}
		return messages.Delta(call), nil

	case "response.output_item.done":
		item := chunk.Item
		if item.Type == "reasoning" && item.EncryptedContent != "" {
			signature, err := encodeSignature(item.ID, item.EncryptedContent)
			if err != nil {
				return messages.UniEvent{}, err
			}
			return messages.Delta(messages.ThinkingItem{Signature: signature}), nil
		}
		return messages.Unused(), nil

	case "response.completed", "response.incomplete", "response.failed":
		reason, ok := finishByStatus[chunk.Response.Status]
		if !ok {
			reason = messages.FinishUnknown
		}
		event := messages.Stop(reason)
		usage := chunk.Response.Usage
		if chunk.Response.JSON.Usage.Valid() {
			event.Usage = &messages.UsageMetadata{
				PromptTokens:   stdx.Ptr(usage.InputTokens),
				ResponseTokens: stdx.Ptr(usage.OutputTokens),
				ThoughtsTokens: stdx.Ptr(usage.OutputTokensDetails.ReasoningTokens),
				CachedTokens:   stdx.Ptr(usage.InputTokensDetails.CachedTokens),
			}
		}
		return event, nil

	default:
		if unusedEvents[chunk.Type] {
			return messages.Unused(), nil
		}
		return messages.UniEvent{}, provider.Malformedf("unknown output: event type %q", chunk.Type)
	}
}
