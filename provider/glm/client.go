package glm

import (
	"context"
	"iter"
	"log/slog"
	"os"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/Prism-Shadow/AgentHub/messages"
	"github.com/Prism-Shadow/AgentHub/pkg/slogx"
	"github.com/Prism-Shadow/AgentHub/provider"
)

const defaultBaseURL = "https://open.bigmodel.cn/api/paas/v4/"

var _ provider.Provider = (*Client)(nil)

// Client adapts the GLM chat-completions API to the canonical protocol.
type Client struct {
	model  string
	client openaisdk.Client
}

// New builds a client for the given model. GLM_API_KEY and GLM_BASE_URL
// seed the connection unless options override them.
func New(model string, options ...option.RequestOption) *Client {
	baseURL := os.Getenv("GLM_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	opts := append([]option.RequestOption{
		option.WithAPIKey(os.Getenv("GLM_API_KEY")),
		option.WithBaseURL(baseURL),
	}, options...)
	return &Client{
		model:  model,
		client: openaisdk.NewClient(opts...),
	}
}

// Model implements provider.Provider.
func (c *Client) Model() string { return c.model }

// StreamingResponse implements provider.Provider.
func (c *Client) StreamingResponse(ctx context.Context, msgs []messages.UniMessage, cfg provider.Config) iter.Seq2[messages.UniEvent, error] {
	params, reqOpts, err := TransformConfig(c.model, cfg)
	if err != nil {
		return provider.Fail(err)
	}
	input, msgOpts, err := TransformMessages(cfg.SystemPrompt, msgs)
	if err != nil {
		return provider.Fail(err)
	}
	params.Messages = input
	reqOpts = append(reqOpts, msgOpts...)

	return func(yield func(messages.UniEvent, error) bool) {
		stream := c.client.Chat.Completions.NewStreaming(ctx, params, reqOpts...)
		defer stream.Close()

		var pump eventPump
		for stream.Next() {
			events, err := pump.handle(stream.Current())
			if err != nil {
				slog.Debug("glm stream failed", slogx.Model(c.model), slogx.Error(err))
				yield(messages.UniEvent{}, err)
				return
			}
			for _, event := range events {
				if event.EventType == messages.EventUnused {
					continue
				}
				if !yield(event, nil) {
					return
				}
			}
		}
		if err := stream.Err(); err != nil {
			yield(messages.UniEvent{}, err)
		}
	}
}
