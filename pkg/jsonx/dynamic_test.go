package jsonx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestToDynamicJSON(t *testing.T) {
	t.Run("flattens a struct to a map", func(t *testing.T) {
		got, err := ToDynamicJSON(sample{Name: "weather", Count: 2})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"name": "weather", "count": float64(2)}, got)
	})

	t.Run("rejects values without an object form", func(t *testing.T) {
		_, err := ToDynamicJSON(42)
		require.Error(t, err)
	})
}

func TestFromDynamicJSON(t *testing.T) {
	var got sample
	require.NoError(t, FromDynamicJSON(map[string]any{"name": "weather", "count": 3}, &got))
	assert.Equal(t, sample{Name: "weather", Count: 3}, got)
}
