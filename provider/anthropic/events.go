package anthropic

import (
	"github.com/anthropics/anthropic-sdk-go"

	"github.com/Prism-Shadow/AgentHub/messages"
	"github.com/Prism-Shadow/AgentHub/pkg/stdx"
	"github.com/Prism-Shadow/AgentHub/provider"
)

var stopReasons = map[string]messages.FinishReason{
	"end_turn":      messages.FinishStop,
	"stop_sequence": messages.FinishStop,
	"tool_use":      messages.FinishStop,
	"max_tokens":    messages.FinishLength,
}

// eventPump classifies one vendor stream. It owns the tool-call accumulator
// for its invocation, so each stream accumulates independently.
type eventPump struct {
	acc provider.ToolCallAccumulator
}

// handle maps one vendor chunk to its canonical event. Unrecognized chunk
// or delta types are hard errors; recognized housekeeping chunks come back
// as "unused" events for the caller to swallow.
func (p *eventPump) handle(chunk anthropic.MessageStreamEventUnion) (messages.UniEvent, error) {
	switch chunk.Type {
	case "message_start":
		event := messages.Start()
		usage := chunk.Message.Usage
		event.Usage = &messages.UsageMetadata{
			PromptTokens:   stdx.Ptr(usage.InputTokens),
			ResponseTokens: stdx.Ptr(usage.OutputTokens),
			CachedTokens:   stdx.Ptr(usage.CacheReadInputTokens),
		}
		return event, nil

	case "content_block_start":
		block := chunk.ContentBlock
		switch block.Type {
		case "text", "thinking", "redacted_thinking":
			// content follows in deltas
			return messages.Unused(), nil
		case "tool_use":
			return messages.Delta(p.acc.Open(block.Name, block.ID)), nil
		default:
			return messages.UniEvent{}, provider.Malformedf("unknown output: content block type %q", block.Type)
		}

	case "content_block_delta":
		delta := chunk.Delta
		switch delta.Type {
		case "text_delta":
			return messages.Delta(messages.Text(delta.Text)), nil
		case "thinking_delta":
			return messages.Delta(messages.Thinking(delta.Thinking)), nil
		case "signature_delta":
			return messages.Delta(messages.ThinkingItem{Signature: delta.Signature}), nil
		case "input_json_delta":
			return messages.Delta(p.acc.Continue(delta.PartialJSON)), nil
		default:
			return messages.UniEvent{}, provider.Malformedf("unknown output: delta type %q", delta.Type)
		}

	case "content_block_stop":
		if !p.acc.IsOpen() {
			return messages.Unused(), nil
		}
		call, err := p.acc.Close()
		if err != nil {
			return messages.UniEvent{}, err
		}
		return messages.Delta(call), nil

	case "message_delta":
		reason, ok := stopReasons[string(chunk.Delta.StopReason)]
		if !ok {
			reason = messages.FinishUnknown
		}
		event := messages.Stop(reason)
		event.Usage = &messages.UsageMetadata{
			ResponseTokens: stdx.Ptr(chunk.Usage.OutputTokens),
		}
		return event, nil

	case "message_stop", "ping":
		return messages.Unused(), nil

	default:
		return messages.UniEvent{}, provider.Malformedf("unknown output: event type %q", chunk.Type)
	}
}
