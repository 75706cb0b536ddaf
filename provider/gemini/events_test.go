package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/Prism-Shadow/AgentHub/messages"
)

func textChunk(text string, thought bool, signature []byte) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Parts: []*genai.Part{{Text: text, Thought: thought, ThoughtSignature: signature}},
			},
		}},
	}
}

func TestEventPump(t *testing.T) {
	t.Run("first chunk opens the stream", func(t *testing.T) {
		var pump eventPump
		events, err := pump.handle(textChunk("Hel", false, nil))
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, messages.EventStart, events[0].EventType)
		assert.Equal(t, []messages.ContentItem{messages.Text("Hel")}, events[1].ContentItems)
	})

	t.Run("thought parts become signed thinking", func(t *testing.T) {
		pump := eventPump{started: true}
		events, err := pump.handle(textChunk("the user wants", true, []byte("sig")))
		require.NoError(t, err)
		require.Len(t, events, 1)
		require.Len(t, events[0].ContentItems, 1)
		thinking, ok := events[0].ContentItems[0].(messages.ThinkingItem)
		require.True(t, ok)
		assert.Equal(t, "the user wants", thinking.Thinking)
		assert.NotEmpty(t, thinking.Signature)
	})

	t.Run("function calls announce a partial before materializing", func(t *testing.T) {
		pump := eventPump{started: true}
		events, err := pump.handle(&genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{
					Parts: []*genai.Part{{
						FunctionCall:     &genai.FunctionCall{Name: "get_weather", Args: map[string]any{"city": "Paris"}},
						ThoughtSignature: []byte("sig"),
					}},
				},
			}},
		})
		require.NoError(t, err)
		require.Len(t, events, 2)

		require.Len(t, events[0].ContentItems, 1)
		partial, ok := events[0].ContentItems[0].(messages.PartialToolCallItem)
		require.True(t, ok)
		assert.Equal(t, "get_weather", partial.Name)
		assert.Equal(t, "get_weather", partial.ToolCallID)
		assert.JSONEq(t, `{"city":"Paris"}`, partial.Arguments)

		require.Len(t, events[1].ContentItems, 1)
		call, ok := events[1].ContentItems[0].(messages.ToolCallItem)
		require.True(t, ok)
		assert.Equal(t, map[string]any{"city": "Paris"}, call.Arguments)
		assert.Equal(t, partial.Signature, call.Signature)
		assert.NotEmpty(t, call.Signature)
	})

	t.Run("finish reasons map onto the canonical set", func(t *testing.T) {
		cases := map[genai.FinishReason]messages.FinishReason{
			genai.FinishReasonStop:      messages.FinishStop,
			genai.FinishReasonMaxTokens: messages.FinishLength,
			genai.FinishReasonSafety:    messages.FinishUnknown,
		}
		for vendor, want := range cases {
			pump := eventPump{started: true}
			events, err := pump.handle(&genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{FinishReason: vendor}},
			})
			require.NoError(t, err, vendor)
			require.Len(t, events, 1, vendor)
			assert.Equal(t, messages.EventStop, events[0].EventType, vendor)
			assert.Equal(t, want, events[0].FinishReason, vendor)
		}
	})

	t.Run("usage rides the last event of the chunk", func(t *testing.T) {
		pump := eventPump{started: true}
		events, err := pump.handle(&genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonStop}},
			UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
				PromptTokenCount:        11,
				CandidatesTokenCount:    40,
				ThoughtsTokenCount:      25,
				CachedContentTokenCount: 2,
			},
		})
		require.NoError(t, err)
		require.Len(t, events, 1)
		usage := events[0].Usage
		require.NotNil(t, usage)
		assert.Equal(t, int64(11), *usage.PromptTokens)
		assert.Equal(t, int64(40), *usage.ResponseTokens)
		assert.Equal(t, int64(25), *usage.ThoughtsTokens)
		assert.Equal(t, int64(2), *usage.CachedTokens)
	})

	t.Run("empty part is an unknown output", func(t *testing.T) {
		pump := eventPump{started: true}
		_, err := pump.handle(&genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{{}}},
			}},
		})
		require.Error(t, err)
	})
}
