package glm

import (
	"github.com/openai/openai-go"
	"github.com/tidwall/gjson"

	"github.com/Prism-Shadow/AgentHub/messages"
	"github.com/Prism-Shadow/AgentHub/pkg/stdx"
	"github.com/Prism-Shadow/AgentHub/provider"
)

var finishReasons = map[string]messages.FinishReason{
	"stop":           messages.FinishStop,
	"tool_calls":     messages.FinishStop,
	"content_filter": messages.FinishStop,
	"length":         messages.FinishLength,
}

// eventPump maps one chat-completions chunk to zero or more canonical
// events. A chunk can both flush a pending tool call and end the stream, so
// the mapping is one to many.
type eventPump struct {
	acc     provider.ToolCallAccumulator
	started bool
}

func (p *eventPump) handle(chunk openai.ChatCompletionChunk) ([]messages.UniEvent, error) {
	var events []messages.UniEvent
	if !p.started {
		p.started = true
		events = append(events, messages.Start())
	}

	if len(chunk.Choices) > 0 {
		choice := chunk.Choices[0]
		var items []messages.ContentItem

		if thinking := extraString(chunk, "choices.0.delta.reasoning_content"); thinking != "" {
			items = append(items, messages.Thinking(thinking))
		}
		if choice.Delta.Content != "" {
			items = append(items, messages.Text(choice.Delta.Content))
		}

		for _, tc := range choice.Delta.ToolCalls {
			if tc.ID != "" || tc.Function.Name != "" {
				call, pending, err := p.acc.Flush()
				if err != nil {
					return nil, err
				}
				if pending {
					items = append(items, call)
				}
				items = append(items, p.acc.Open(tc.Function.Name, tc.ID))
			}
			if tc.Function.Arguments != "" {
				items = append(items, p.acc.Continue(tc.Function.Arguments))
			}
		}

		if len(items) > 0 {
			events = append(events, messages.Delta(items...))
		}

		if choice.FinishReason != "" {
			call, pending, err := p.acc.Flush()
			if err != nil {
				return nil, err
			}
			if pending {
				events = append(events, messages.Delta(call))
			}
			reason, ok := finishReasons[choice.FinishReason]
			if !ok {
				reason = messages.FinishUnknown
			}
			events = append(events, messages.Stop(reason))
		}
	}

	if usage := usageOf(chunk); usage != nil {
		if len(events) == 0 {
			events = append(events, messages.Delta())
		}
		events[len(events)-1].Usage = usage
	}
	return events, nil
}

// usageOf reports only the dimensions the chunk actually carries. Absent
// detail blocks stay absent instead of reading as zero.
func usageOf(chunk openai.ChatCompletionChunk) *messages.UsageMetadata {
	if !chunk.JSON.Usage.Valid() {
		return nil
	}
	usage := &messages.UsageMetadata{
		PromptTokens:   stdx.Ptr(chunk.Usage.PromptTokens),
		ResponseTokens: stdx.Ptr(chunk.Usage.CompletionTokens),
	}
	if chunk.Usage.JSON.CompletionTokensDetails.Valid() {
		usage.ThoughtsTokens = stdx.Ptr(chunk.Usage.CompletionTokensDetails.ReasoningTokens)
	}
	if chunk.Usage.JSON.PromptTokensDetails.Valid() {
		usage.CachedTokens = stdx.Ptr(chunk.Usage.PromptTokensDetails.CachedTokens)
	}
	return usage
}

// extraString pulls a vendor extension field the typed chunk does not model,
// straight from the raw chunk JSON.
func extraString(chunk openai.ChatCompletionChunk, path string) string {
	return gjson.Get(chunk.RawJSON(), path).String()
}
