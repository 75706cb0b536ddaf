package anthropic

import (
	"context"
	"iter"
	"log/slog"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/Prism-Shadow/AgentHub/messages"
	"github.com/Prism-Shadow/AgentHub/pkg/slogx"
	"github.com/Prism-Shadow/AgentHub/provider"
)

var _ provider.Provider = (*Client)(nil)

// Client adapts Anthropic's streaming messages API to the canonical
// protocol.
type Client struct {
	model  string
	client anthropic.Client
}

// New builds a client for the given model. The SDK reads ANTHROPIC_API_KEY
// from the environment unless an option overrides it.
func New(model string, options ...option.RequestOption) *Client {
	return &Client{
		model:  model,
		client: anthropic.NewClient(options...),
	}
}

// Model implements provider.Provider.
func (c *Client) Model() string { return c.model }

// StreamingResponse implements provider.Provider.
func (c *Client) StreamingResponse(ctx context.Context, msgs []messages.UniMessage, cfg provider.Config) iter.Seq2[messages.UniEvent, error] {
	params, err := TransformConfig(c.model, cfg)
	if err != nil {
		return provider.Fail(err)
	}
	input, err := TransformMessages(msgs, cfg.PromptCaching == provider.CachingEnhance)
	if err != nil {
		return provider.Fail(err)
	}
	params.Messages = input

	return func(yield func(messages.UniEvent, error) bool) {
		stream := c.client.Messages.NewStreaming(ctx, params)
		defer stream.Close()

		var pump eventPump
		for stream.Next() {
			event, err := pump.handle(stream.Current())
			if err != nil {
				slog.Debug("anthropic stream failed", slogx.Model(c.model), slogx.Error(err))
				yield(messages.UniEvent{}, err)
				return
			}
			if event.EventType == messages.EventUnused {
				continue
			}
			if !yield(event, nil) {
				return
			}
		}
		if err := stream.Err(); err != nil {
			yield(messages.UniEvent{}, err)
		}
	}
}
