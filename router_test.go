package agenthub

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Prism-Shadow/AgentHub/provider/anthropic"
	"github.com/Prism-Shadow/AgentHub/provider/gemini"
	"github.com/Prism-Shadow/AgentHub/provider/glm"
	"github.com/Prism-Shadow/AgentHub/provider/openai"
	"github.com/Prism-Shadow/AgentHub/provider/qwen"
)

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("routes by family substring", func(t *testing.T) {
		for model, want := range map[string]any{
			"claude-sonnet-4-5":   (*anthropic.Client)(nil),
			"gpt-5.2":             (*openai.Client)(nil),
			"glm-4.7":             (*glm.Client)(nil),
			"qwen3-235b-a22b":     (*qwen.Client)(nil),
			"gemini-3-pro-router": (*gemini.Client)(nil),
		} {
			routed, err := New(ctx, model, WithAPIKey("test-key"))
			require.NoError(t, err, model)
			assert.IsType(t, want, routed, model)
			assert.Equal(t, model, routed.Model())
		}
	})

	t.Run("unknown family fails loudly", func(t *testing.T) {
		_, err := New(ctx, "mistral-large")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mistral-large")
		assert.Contains(t, err.Error(), "claude")
	})

	t.Run("same model and endpoint share a client", func(t *testing.T) {
		first, err := New(ctx, "glm-4.7-cached", WithAPIKey("test-key"))
		require.NoError(t, err)
		second, err := New(ctx, "glm-4.7-cached", WithAPIKey("test-key"))
		require.NoError(t, err)
		assert.Same(t, first, second)
	})

	t.Run("distinct endpoints get distinct clients", func(t *testing.T) {
		first, err := New(ctx, "qwen3-endpoints", WithAPIKey("test-key"),
			WithBaseURL("http://relay-a:8000/v1/"))
		require.NoError(t, err)
		second, err := New(ctx, "qwen3-endpoints", WithAPIKey("test-key"),
			WithBaseURL("http://relay-b:8000/v1/"))
		require.NoError(t, err)
		assert.NotSame(t, first, second)
	})
}

func TestNewSession(t *testing.T) {
	session, err := NewSession(context.Background(), "claude-sonnet-4-5-session", WithAPIKey("test-key"))
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID())
	assert.Equal(t, "claude-sonnet-4-5-session", session.Model())
	assert.Empty(t, session.History())
}
