package gemini

import (
	"context"
	"iter"
	"log/slog"
	"net/http"

	"google.golang.org/genai"

	"github.com/Prism-Shadow/AgentHub/messages"
	"github.com/Prism-Shadow/AgentHub/pkg/slogx"
	"github.com/Prism-Shadow/AgentHub/provider"
)

var _ provider.Provider = (*Client)(nil)

// Client adapts the Gemini API to the canonical protocol.
type Client struct {
	model      string
	client     *genai.Client
	httpClient *http.Client
}

// New builds a client for the given model. A nil config lets the SDK read
// GEMINI_API_KEY or GOOGLE_API_KEY from the environment.
func New(ctx context.Context, model string, config *genai.ClientConfig) (*Client, error) {
	if config == nil {
		config = &genai.ClientConfig{}
	}
	client, err := genai.NewClient(ctx, config)
	if err != nil {
		return nil, err
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		model:      model,
		client:     client,
		httpClient: httpClient,
	}, nil
}

// Model implements provider.Provider.
func (c *Client) Model() string { return c.model }

// StreamingResponse implements provider.Provider.
func (c *Client) StreamingResponse(ctx context.Context, msgs []messages.UniMessage, cfg provider.Config) iter.Seq2[messages.UniEvent, error] {
	genCfg, err := TransformConfig(c.model, cfg)
	if err != nil {
		return provider.Fail(err)
	}
	contents, err := TransformMessages(ctx, c.httpClient, msgs)
	if err != nil {
		return provider.Fail(err)
	}

	return func(yield func(messages.UniEvent, error) bool) {
		var pump eventPump
		for chunk, err := range c.client.Models.GenerateContentStream(ctx, c.model, contents, genCfg) {
			if err != nil {
				yield(messages.UniEvent{}, err)
				return
			}
			events, err := pump.handle(chunk)
			if err != nil {
				slog.Debug("gemini stream failed", slogx.Model(c.model), slogx.Error(err))
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
	}
}
