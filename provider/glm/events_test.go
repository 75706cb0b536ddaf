package glm

import (
	"encoding/json"
	"testing"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Prism-Shadow/AgentHub/messages"
)

func chunk(t *testing.T, raw string) openai.ChatCompletionChunk {
	t.Helper()
	var c openai.ChatCompletionChunk
	require.NoError(t, json.Unmarshal([]byte(raw), &c))
	return c
}

func TestEventPump(t *testing.T) {
	t.Run("first chunk opens the stream", func(t *testing.T) {
		var pump eventPump
		events, err := pump.handle(chunk(t, `{"choices":[{"delta":{"role":"assistant","content":"Hel"}}]}`))
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, messages.EventStart, events[0].EventType)
		assert.Equal(t, []messages.ContentItem{messages.Text("Hel")}, events[1].ContentItems)
	})

	t.Run("reasoning content becomes thinking", func(t *testing.T) {
		pump := eventPump{started: true}
		events, err := pump.handle(chunk(t, `{"choices":[{"delta":{"reasoning_content":"the user wants"}}]}`))
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, []messages.ContentItem{messages.Thinking("the user wants")}, events[0].ContentItems)
	})

	t.Run("thinking and text in one chunk keep their order", func(t *testing.T) {
		pump := eventPump{started: true}
		events, err := pump.handle(chunk(t, `{"choices":[{"delta":{"reasoning_content":"done.","content":"Sunny"}}]}`))
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, []messages.ContentItem{messages.Thinking("done."), messages.Text("Sunny")}, events[0].ContentItems)
	})

	t.Run("tool call accumulates and materializes at finish", func(t *testing.T) {
		pump := eventPump{started: true}

		events, err := pump.handle(chunk(t, `{"choices":[{"delta":{"tool_calls":[
			{"index":0,"id":"call_1","function":{"name":"get_weather","arguments":"{\"city\":"}}]}}]}`))
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, []messages.ContentItem{
			messages.PartialToolCallItem{Name: "get_weather", ToolCallID: "call_1"},
			messages.PartialToolCallItem{Arguments: `{"city":`},
		}, events[0].ContentItems)

		events, err = pump.handle(chunk(t, `{"choices":[{"delta":{"tool_calls":[
			{"index":0,"function":{"arguments":"\"Paris\"}"}}]}}]}`))
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, []messages.ContentItem{
			messages.PartialToolCallItem{Arguments: `"Paris"}`},
		}, events[0].ContentItems)

		events, err = pump.handle(chunk(t, `{"choices":[{"delta":{},"finish_reason":"tool_calls"}]}`))
		require.NoError(t, err)
		require.Len(t, events, 2)
		require.Len(t, events[0].ContentItems, 1)
		call, ok := events[0].ContentItems[0].(messages.ToolCallItem)
		require.True(t, ok)
		assert.Equal(t, "get_weather", call.Name)
		assert.Equal(t, "call_1", call.ToolCallID)
		assert.Equal(t, map[string]any{"city": "Paris"}, call.Arguments)
		assert.Equal(t, messages.EventStop, events[1].EventType)
		assert.Equal(t, messages.FinishStop, events[1].FinishReason)
	})

	t.Run("second call flushes the first", func(t *testing.T) {
		pump := eventPump{started: true}

		_, err := pump.handle(chunk(t, `{"choices":[{"delta":{"tool_calls":[
			{"index":0,"id":"call_1","function":{"name":"get_weather","arguments":"{}"}}]}}]}`))
		require.NoError(t, err)

		events, err := pump.handle(chunk(t, `{"choices":[{"delta":{"tool_calls":[
			{"index":1,"id":"call_2","function":{"name":"get_time","arguments":"{}"}}]}}]}`))
		require.NoError(t, err)
		require.Len(t, events, 1)
		require.Len(t, events[0].ContentItems, 3)
		first, ok := events[0].ContentItems[0].(messages.ToolCallItem)
		require.True(t, ok)
		assert.Equal(t, "call_1", first.ToolCallID)
		assert.Equal(t, messages.PartialToolCallItem{Name: "get_time", ToolCallID: "call_2"}, events[0].ContentItems[1])
	})

	t.Run("finish reasons map onto the canonical set", func(t *testing.T) {
		cases := map[string]messages.FinishReason{
			"stop":           messages.FinishStop,
			"tool_calls":     messages.FinishStop,
			"content_filter": messages.FinishStop,
			"length":         messages.FinishLength,
			"weird":          messages.FinishUnknown,
		}
		for vendor, want := range cases {
			pump := eventPump{started: true}
			events, err := pump.handle(chunk(t, `{"choices":[{"delta":{},"finish_reason":"`+vendor+`"}]}`))
			require.NoError(t, err, vendor)
			require.Len(t, events, 1, vendor)
			assert.Equal(t, messages.EventStop, events[0].EventType, vendor)
			assert.Equal(t, want, events[0].FinishReason, vendor)
		}
	})

	t.Run("trailing usage chunk reports only observed fields", func(t *testing.T) {
		pump := eventPump{started: true}
		events, err := pump.handle(chunk(t, `{"choices":[],
			"usage":{"prompt_tokens":12,"completion_tokens":30,
			"completion_tokens_details":{"reasoning_tokens":18}}}`))
		require.NoError(t, err)
		require.Len(t, events, 1)
		usage := events[0].Usage
		require.NotNil(t, usage)
		assert.Equal(t, int64(12), *usage.PromptTokens)
		assert.Equal(t, int64(30), *usage.ResponseTokens)
		assert.Equal(t, int64(18), *usage.ThoughtsTokens)
		assert.Nil(t, usage.CachedTokens)
	})

	t.Run("usage on the finish chunk rides the stop event", func(t *testing.T) {
		pump := eventPump{started: true}
		events, err := pump.handle(chunk(t, `{"choices":[{"delta":{},"finish_reason":"stop"}],
			"usage":{"prompt_tokens":5,"completion_tokens":7}}`))
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, messages.EventStop, events[0].EventType)
		require.NotNil(t, events[0].Usage)
		assert.Equal(t, int64(7), *events[0].Usage.ResponseTokens)
	})
}
