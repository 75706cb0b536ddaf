package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Prism-Shadow/AgentHub/messages"
)

func TestToolCallAccumulator(t *testing.T) {
	t.Run("open continue close materializes one call", func(t *testing.T) {
		var acc ToolCallAccumulator

		skeleton := acc.Open("get_weather", "call_1")
		assert.Equal(t, messages.PartialToolCallItem{Name: "get_weather", ToolCallID: "call_1"}, skeleton)
		assert.True(t, acc.IsOpen())

		frag := acc.Continue(`{"city":`)
		assert.Equal(t, messages.PartialToolCallItem{Arguments: `{"city":`}, frag)
		acc.Continue(`"Paris"}`)

		call, err := acc.Close()
		require.NoError(t, err)
		assert.Equal(t, "get_weather", call.Name)
		assert.Equal(t, "call_1", call.ToolCallID)
		assert.Equal(t, map[string]any{"city": "Paris"}, call.Arguments)
		assert.False(t, acc.IsOpen())
	})

	t.Run("empty buffer closes to an empty argument map", func(t *testing.T) {
		var acc ToolCallAccumulator
		acc.Open("noop", "call_2")
		call, err := acc.Close()
		require.NoError(t, err)
		assert.Equal(t, map[string]any{}, call.Arguments)
	})

	t.Run("unparseable buffer is a malformed payload error", func(t *testing.T) {
		var acc ToolCallAccumulator
		acc.Open("get_weather", "call_3")
		acc.Continue(`{"city": "Par`)
		_, err := acc.Close()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMalformedPayload)
		assert.Contains(t, err.Error(), "get_weather")
	})

	t.Run("back to back calls never cross contaminate", func(t *testing.T) {
		var acc ToolCallAccumulator

		acc.Open("first", "call_a")
		acc.Continue(`{"a":1}`)
		flushed, ok, err := acc.Flush()
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, map[string]any{"a": float64(1)}, flushed.Arguments)

		acc.Open("second", "call_b")
		acc.Continue(`{"b":2}`)
		call, err := acc.Close()
		require.NoError(t, err)
		assert.Equal(t, "call_b", call.ToolCallID)
		assert.Equal(t, map[string]any{"b": float64(2)}, call.Arguments)
	})

	t.Run("flush on a closed accumulator is a no-op", func(t *testing.T) {
		var acc ToolCallAccumulator
		_, ok, err := acc.Flush()
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
