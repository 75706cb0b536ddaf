package qwen

import (
	"context"
	"iter"
	"log/slog"
	"os"
	"strings"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/Prism-Shadow/AgentHub/messages"
	"github.com/Prism-Shadow/AgentHub/pkg/slogx"
	"github.com/Prism-Shadow/AgentHub/provider"
)

const defaultBaseURL = "http://127.0.0.1:8000/v1/"

var _ provider.Provider = (*Client)(nil)

// Client adapts OpenAI-compatible Qwen relays to the canonical protocol.
// The base URL selects the relay and steers relay-specific handling, so it
// is an explicit argument rather than just a request option.
type Client struct {
	model   string
	baseURL string
	client  openaisdk.Client
}

// New builds a client for the given model against the given relay. An empty
// baseURL falls back to QWEN_BASE_URL, then to a local vLLM endpoint.
// QWEN_API_KEY seeds authentication unless options override it.
func New(model, baseURL string, options ...option.RequestOption) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("QWEN_BASE_URL")
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	opts := append([]option.RequestOption{
		option.WithAPIKey(os.Getenv("QWEN_API_KEY")),
		option.WithBaseURL(baseURL),
	}, options...)
	return &Client{
		model:   model,
		baseURL: baseURL,
		client:  openaisdk.NewClient(opts...),
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
	input, reqOpts, err := TransformMessages(cfg.SystemPrompt, msgs)
	if err != nil {
		return provider.Fail(err)
	}
	params.Messages = input

	return func(yield func(messages.UniEvent, error) bool) {
		stream := c.client.Chat.Completions.NewStreaming(ctx, params, reqOpts...)
		defer stream.Close()

		pump := eventPump{openRouter: strings.Contains(c.baseURL, "openrouter.ai")}
		for stream.Next() {
			events, err := pump.handle(stream.Current())
			if err != nil {
				slog.Debug("qwen stream failed", slogx.Model(c.model), slogx.Error(err))
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
