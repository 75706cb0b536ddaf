package qwen

import (
	"strings"

	json "github.com/goccy/go-json"
	"github.com/openai/openai-go"
	"github.com/tidwall/gjson"

	"github.com/Prism-Shadow/AgentHub/messages"
	"github.com/Prism-Shadow/AgentHub/pkg/stdx"
	"github.com/Prism-Shadow/AgentHub/provider"
)

// Relay markers framing a tool call inside the text channel. vLLM's tool
// parser is not reliable enough to depend on, so the raw markers are
// handled here.
const (
	frameOpen  = "<tool_call>"
	frameClose = "</tool_call>"
)

var finishReasons = map[string]messages.FinishReason{
	"stop":           messages.FinishStop,
	"tool_calls":     messages.FinishStop,
	"content_filter": messages.FinishStop,
	"length":         messages.FinishLength,
}

// eventPump maps one chat-completions chunk to zero or more canonical
// events, tracking two in-flight tool call channels: the structured
// tool_calls deltas and the text-framed variant.
type eventPump struct {
	acc        provider.ToolCallAccumulator
	frame      strings.Builder
	framing    bool
	started    bool
	openRouter bool
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

		if thinking := thinkingOf(chunk); thinking != "" {
			items = append(items, messages.Thinking(thinking))
		}

		switch content := choice.Delta.Content; {
		case content == frameOpen:
			p.framing = true
			p.frame.Reset()
		case content == frameClose:
			framed, err := p.closeFrame()
			if err != nil {
				return nil, err
			}
			items = append(items, framed...)
		case p.framing:
			p.frame.WriteString(content)
		case content != "":
			items = append(items, messages.Text(content))
		}

		for _, tc := range choice.Delta.ToolCalls {
			if name := tc.Function.Name; name != "" && (!p.acc.IsOpen() || name != p.acc.Name()) {
				call, pending, err := p.acc.Flush()
				if err != nil {
					return nil, err
				}
				if pending {
					items = append(items, call)
				}
				id := tc.ID
				if id == "" {
					id = name
				}
				items = append(items, p.acc.Open(name, id))
			}
			if tc.Function.Arguments != "" {
				items = append(items, p.acc.Continue(tc.Function.Arguments))
			}
		}

		if len(items) > 0 {
			events = append(events, messages.Delta(items...))
		}

		if choice.FinishReason != "" {
			var closing []messages.ContentItem
			if p.framing {
				framed, err := p.closeFrame()
				if err != nil {
					return nil, err
				}
				closing = append(closing, framed...)
			}
			call, pending, err := p.acc.Flush()
			if err != nil {
				return nil, err
			}
			if pending {
				closing = append(closing, call)
			}
			if len(closing) > 0 {
				events = append(events, messages.Delta(closing...))
			}
			reason, ok := finishReasons[choice.FinishReason]
			if !ok {
				reason = messages.FinishUnknown
			}
			events = append(events, messages.Stop(reason))
		}
	}

	if usage := p.usageOf(chunk); usage != nil {
		if len(events) == 0 {
			events = append(events, messages.Delta())
		}
		events[len(events)-1].Usage = usage
	}
	return events, nil
}

// closeFrame parses the buffered frame into the partial and materialized
// forms of one tool call. Framed calls carry no call id, the name stands in.
func (p *eventPump) closeFrame() ([]messages.ContentItem, error) {
	p.framing = false
	raw := strings.TrimSpace(p.frame.String())
	p.frame.Reset()
	if raw == "" {
		return nil, nil
	}

	jv := gjson.Parse(raw)
	name := jv.Get("name").String()
	if !jv.IsObject() || name == "" {
		return nil, provider.Malformedf("framed tool call is not a call object: %q", raw)
	}

	fragment := "{}"
	args := map[string]any{}
	if argsRaw := jv.Get("arguments"); argsRaw.Exists() {
		fragment = argsRaw.Raw
		if err := json.Unmarshal([]byte(argsRaw.Raw), &args); err != nil {
			return nil, provider.Malformedf("framed tool call %s: arguments are not valid JSON: %v", name, err)
		}
	}
	return []messages.ContentItem{
		messages.PartialToolCallItem{Name: name, Arguments: fragment, ToolCallID: name},
		messages.ToolCallItem{Name: name, Arguments: args, ToolCallID: name},
	}, nil
}

// thinkingOf reads whichever reasoning extension field the relay populates.
// vLLM and SiliconFlow send reasoning_content, OpenRouter sends reasoning.
func thinkingOf(chunk openai.ChatCompletionChunk) string {
	delta := gjson.Get(chunk.RawJSON(), "choices.0.delta")
	if thinking := delta.Get("reasoning_content").String(); thinking != "" {
		return thinking
	}
	return delta.Get("reasoning").String()
}

// usageOf reports only the dimensions the chunk actually carries. OpenRouter
// occasionally excludes reasoning tokens from the completion count, which
// shows up as a negative number that the thoughts count repairs.
func (p *eventPump) usageOf(chunk openai.ChatCompletionChunk) *messages.UsageMetadata {
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
	if p.openRouter && *usage.ResponseTokens < 0 {
		var thoughts int64
		if usage.ThoughtsTokens != nil {
			thoughts = *usage.ThoughtsTokens
		}
		usage.ResponseTokens = stdx.Ptr(*usage.ResponseTokens + thoughts)
	}
	return usage
}
