package gemini

import (
	json "github.com/goccy/go-json"
	"google.golang.org/genai"

	"github.com/Prism-Shadow/AgentHub/messages"
	"github.com/Prism-Shadow/AgentHub/pkg/stdx"
	"github.com/Prism-Shadow/AgentHub/provider"
)

var finishReasons = map[genai.FinishReason]messages.FinishReason{
	genai.FinishReasonStop:      messages.FinishStop,
	genai.FinishReasonMaxTokens: messages.FinishLength,
}

// eventPump maps one response chunk to zero or more canonical events. The
// API delivers function calls whole rather than incrementally, so each one
// is announced as a synthesized partial before it materializes.
type eventPump struct {
	started bool
}

func (p *eventPump) handle(chunk *genai.GenerateContentResponse) ([]messages.UniEvent, error) {
	var events []messages.UniEvent
	if !p.started {
		p.started = true
		events = append(events, messages.Start())
	}

	if len(chunk.Candidates) > 0 {
		candidate := chunk.Candidates[0]
		var items []messages.ContentItem

		if candidate.Content != nil {
			for _, part := range candidate.Content.Parts {
				switch {
				case part.FunctionCall != nil:
					call := part.FunctionCall
					id := call.ID
					if id == "" {
						id = call.Name
					}
					args, err := json.Marshal(call.Args)
					if err != nil {
						return nil, provider.Malformedf("function call %s: %v", call.Name, err)
					}
					signature := encodeSignature(part.ThoughtSignature)
					events = append(events, messages.Delta(messages.PartialToolCallItem{
						Name:       call.Name,
						Arguments:  string(args),
						ToolCallID: id,
						Signature:  signature,
					}))
					items = append(items, messages.ToolCallItem{
						Name:       call.Name,
						Arguments:  call.Args,
						ToolCallID: id,
						Signature:  signature,
					})
				case part.Thought:
					items = append(items, messages.ThinkingItem{
						Thinking:  part.Text,
						Signature: encodeSignature(part.ThoughtSignature),
					})
				case part.Text != "" || len(part.ThoughtSignature) > 0:
					items = append(items, messages.TextItem{
						Text:      part.Text,
						Signature: encodeSignature(part.ThoughtSignature),
					})
				default:
					return nil, provider.Malformedf("unknown output: part carries none of text, thought or function call")
				}
			}
		}

		if len(items) > 0 {
			events = append(events, messages.Delta(items...))
		}
		if candidate.FinishReason != "" {
			reason, ok := finishReasons[candidate.FinishReason]
			if !ok {
				reason = messages.FinishUnknown
			}
			events = append(events, messages.Stop(reason))
		}
	}

	if chunk.UsageMetadata != nil {
		usage := &messages.UsageMetadata{
			PromptTokens:   stdx.Ptr(int64(chunk.UsageMetadata.PromptTokenCount)),
			ThoughtsTokens: stdx.Ptr(int64(chunk.UsageMetadata.ThoughtsTokenCount)),
			ResponseTokens: stdx.Ptr(int64(chunk.UsageMetadata.CandidatesTokenCount)),
			CachedTokens:   stdx.Ptr(int64(chunk.UsageMetadata.CachedContentTokenCount)),
		}
		if len(events) == 0 {
			events = append(events, messages.Delta())
		}
		events[len(events)-1].Usage = usage
	}
	return events, nil
}
