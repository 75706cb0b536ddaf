package openai

import (
	"context"
	"iter"
	"log/slog"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/Prism-Shadow/AgentHub/messages"
	"github.com/Prism-Shadow/AgentHub/pkg/slogx"
	"github.com/Prism-Shadow/AgentHub/provider"
)

var _ provider.Provider = (*Client)(nil)

// Client adapts the OpenAI responses API to the canonical protocol.
type Client struct {
	model  string
	client openaisdk.Client
}

// New builds a client for the given model. The SDK reads OPENAI_API_KEY and
// OPENAI_BASE_URL from the environment unless options override them.
func New(model string, options ...option.RequestOption) *Client {
	return &Client{
		model:  model,
		client: openaisdk.NewClient(options...),
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
	input, err := TransformMessages(msgs)
	if err != nil {
		return provider.Fail(err)
	}
	params.Input.OfInputItemList = input

	return func(yield func(messages.UniEvent, error) bool) {
		stream := c.client.Responses.NewStreaming(ctx, params)
		defer stream.Close()

		var pump eventPump
		for stream.Next() {
			event, err := pump.handle(stream.Current())
			if err != nil {
				slog.Debug("openai stream failed", slogx.Model(c.model), slogx.Error(err))
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
