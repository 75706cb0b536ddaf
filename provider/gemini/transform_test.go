package gemini

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/Prism-Shadow/AgentHub/messages"
	"github.com/Prism-Shadow/AgentHub/pkg/stdx"
	"github.com/Prism-Shadow/AgentHub/provider"
)

func TestTransformConfig(t *testing.T) {
	t.Run("empty config stays nil", func(t *testing.T) {
		cfg, err := TransformConfig("gemini-3-pro", provider.Config{})
		require.NoError(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("generation knobs carry over", func(t *testing.T) {
		cfg, err := TransformConfig("gemini-3-pro", provider.Config{
			SystemPrompt: stdx.Ptr("be brief"),
			MaxTokens:    stdx.Ptr(int64(2048)),
			Temperature:  stdx.Ptr(0.5),
		})
		require.NoError(t, err)
		require.NotNil(t, cfg)
		require.NotNil(t, cfg.SystemInstruction)
		assert.Equal(t, "be brief", cfg.SystemInstruction.Parts[0].Text)
		assert.Equal(t, int32(2048), cfg.MaxOutputTokens)
		require.NotNil(t, cfg.Temperature)
		assert.InDelta(t, 0.5, *cfg.Temperature, 1e-6)
	})

	t.Run("thinking budgets increase with the level", func(t *testing.T) {
		var prev int32 = -1
		for _, level := range []provider.ThinkingLevel{
			provider.ThinkingNone, provider.ThinkingLow, provider.ThinkingMedium, provider.ThinkingHigh,
		} {
			cfg, err := TransformConfig("gemini-3-pro", provider.Config{ThinkingLevel: level})
			require.NoError(t, err, level)
			require.NotNil(t, cfg.ThinkingConfig, level)
			require.NotNil(t, cfg.ThinkingConfig.ThinkingBudget, level)
			assert.Greater(t, *cfg.ThinkingConfig.ThinkingBudget, prev, level)
			prev = *cfg.ThinkingConfig.ThinkingBudget
		}
	})

	t.Run("thinking summary requests thoughts", func(t *testing.T) {
		cfg, err := TransformConfig("gemini-3-pro", provider.Config{ThinkingSummary: stdx.Ptr(true)})
		require.NoError(t, err)
		require.NotNil(t, cfg.ThinkingConfig)
		assert.True(t, cfg.ThinkingConfig.IncludeThoughts)
		assert.Nil(t, cfg.ThinkingConfig.ThinkingBudget)
	})

	t.Run("named tools force mode any with allowed names", func(t *testing.T) {
		cfg, err := TransformConfig("gemini-3-pro", provider.Config{
			ToolChoice: provider.Named("get_weather", "get_time"),
		})
		require.NoError(t, err)
		calling := cfg.ToolConfig.FunctionCallingConfig
		require.NotNil(t, calling)
		assert.Equal(t, genai.FunctionCallingConfigModeAny, calling.Mode)
		assert.Equal(t, []string{"get_weather", "get_time"}, calling.AllowedFunctionNames)
	})

	t.Run("tools become function declarations", func(t *testing.T) {
		cfg, err := TransformConfig("gemini-3-pro", provider.Config{
			Tools: []provider.ToolSchema{{Name: "get_weather", Description: "current weather"}},
		})
		require.NoError(t, err)
		require.Len(t, cfg.Tools, 1)
		require.Len(t, cfg.Tools[0].FunctionDeclarations, 1)
		decl := cfg.Tools[0].FunctionDeclarations[0]
		assert.Equal(t, "get_weather", decl.Name)
		assert.NotNil(t, decl.ParametersJsonSchema)
	})

	t.Run("prompt caching other than enable is rejected", func(t *testing.T) {
		_, err := TransformConfig("gemini-3-pro", provider.Config{PromptCaching: provider.CachingDisable})
		require.Error(t, err)
		assert.ErrorIs(t, err, provider.ErrConfig)

		_, err = TransformConfig("gemini-3-pro", provider.Config{PromptCaching: provider.CachingEnable})
		assert.NoError(t, err)
	})
}

func TestTransformMessages(t *testing.T) {
	ctx := context.Background()

	t.Run("roles map onto user and model", func(t *testing.T) {
		contents, err := TransformMessages(ctx, http.DefaultClient, []messages.UniMessage{
			messages.User(messages.Text("hi")),
			messages.Assistant(messages.Text("hello")),
		})
		require.NoError(t, err)
		require.Len(t, contents, 2)
		assert.Equal(t, "user", string(contents[0].Role))
		assert.Equal(t, "model", string(contents[1].Role))
		assert.Equal(t, "hi", contents[0].Parts[0].Text)
	})

	t.Run("signatures decode back to thought signature bytes", func(t *testing.T) {
		signature := base64.StdEncoding.EncodeToString([]byte("sig-bytes"))
		contents, err := TransformMessages(ctx, http.DefaultClient, []messages.UniMessage{
			messages.Assistant(messages.ThinkingItem{Thinking: "hmm", Signature: signature}),
		})
		require.NoError(t, err)
		part := contents[0].Parts[0]
		assert.True(t, part.Thought)
		assert.Equal(t, []byte("sig-bytes"), part.ThoughtSignature)
	})

	t.Run("data uri images become inline bytes", func(t *testing.T) {
		payload := base64.StdEncoding.EncodeToString([]byte("png-bytes"))
		contents, err := TransformMessages(ctx, http.DefaultClient, []messages.UniMessage{
			messages.User(messages.Image("data:image/png;base64," + payload)),
		})
		require.NoError(t, err)
		part := contents[0].Parts[0]
		require.NotNil(t, part.InlineData)
		assert.Equal(t, "image/png", part.InlineData.MIMEType)
		assert.Equal(t, []byte("png-bytes"), part.InlineData.Data)
	})

	t.Run("remote tool result images are fetched inline", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte("remote-bytes"))
		}))
		defer server.Close()

		contents, err := TransformMessages(ctx, server.Client(), []messages.UniMessage{
			messages.Assistant(messages.ToolCallItem{Name: "shot", Arguments: map[string]any{}, ToolCallID: "call_1"}),
			messages.User(messages.ToolResultItem{
				ToolCallID: "call_1",
				Result: messages.ToolResultContent{Parts: []messages.ContentItem{
					messages.Text("a screenshot"),
					messages.Image(server.URL + "/shot.png"),
				}},
			}),
		})
		require.NoError(t, err)
		require.Len(t, contents[1].Parts, 2)
		response := contents[1].Parts[0].FunctionResponse
		require.NotNil(t, response)
		assert.Equal(t, "call_1", response.Name)
		assert.Equal(t, map[string]any{"result": "a screenshot"}, response.Response)
		image := contents[1].Parts[1]
		require.NotNil(t, image.InlineData)
		assert.Equal(t, "image/png", image.InlineData.MIMEType)
		assert.Equal(t, []byte("remote-bytes"), image.InlineData.Data)
	})

	t.Run("orphan tool results are rejected", func(t *testing.T) {
		_, err := TransformMessages(ctx, http.DefaultClient, []messages.UniMessage{
			messages.User(messages.ToolResultText("call_missing", "sunny")),
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, provider.ErrToolCallIntegrity)
	})

	t.Run("partial tool calls never replay", func(t *testing.T) {
		_, err := TransformMessages(ctx, http.DefaultClient, []messages.UniMessage{
			messages.Assistant(messages.PartialToolCallItem{Name: "get_weather", ToolCallID: "call_1"}),
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, provider.ErrToolCallIntegrity)
	})
}
