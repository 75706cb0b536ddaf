package agenthub

import (
	"context"
	"fmt"
	"strings"

	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/fogfish/opts"
	openaiopt "github.com/openai/openai-go/option"
	"google.golang.org/genai"

	"github.com/Prism-Shadow/AgentHub/internal/registry"
	"github.com/Prism-Shadow/AgentHub/provider"
	"github.com/Prism-Shadow/AgentHub/provider/anthropic"
	"github.com/Prism-Shadow/AgentHub/provider/gemini"
	"github.com/Prism-Shadow/AgentHub/provider/glm"
	"github.com/Prism-Shadow/AgentHub/provider/openai"
	"github.com/Prism-Shadow/AgentHub/provider/qwen"
)

// Providers are shared across sessions: the same model against the same
// endpoint reuses one client.
var providers = registry.New[provider.Provider]()

// New routes a model name to its provider family by substring and returns a
// cached client for it. Unknown families fail loudly rather than guessing a
// compatible API.
func New(ctx context.Context, model string, options ...opts.Option[Settings]) (provider.Provider, error) {
	var settings Settings
	if err := opts.Apply(&settings, options); err != nil {
		return nil, err
	}

	key := model + "|" + settings.baseURL
	if cached, ok := providers.Get(key); ok {
		return cached, nil
	}

	built, err := build(ctx, model, settings)
	if err != nil {
		return nil, err
	}
	providers.Add(key, built)
	return built, nil
}

func build(ctx context.Context, model string, settings Settings) (provider.Provider, error) {
	switch {
	case strings.Contains(model, "claude"):
		var vendorOpts []anthropicopt.RequestOption
		if settings.apiKey != "" {
			vendorOpts = append(vendorOpts, anthropicopt.WithAPIKey(settings.apiKey))
		}
		if settings.baseURL != "" {
			vendorOpts = append(vendorOpts, anthropicopt.WithBaseURL(settings.baseURL))
		}
		if settings.httpClient != nil {
			vendorOpts = append(vendorOpts, anthropicopt.WithHTTPClient(settings.httpClient))
		}
		return anthropic.New(model, vendorOpts...), nil

	case strings.Contains(model, "gpt"):
		return openai.New(model, openAIOptions(settings)...), nil

	case strings.Contains(model, "glm"):
		return glm.New(model, openAIOptions(settings)...), nil

	case strings.Contains(model, "qwen"):
		return qwen.New(model, settings.baseURL, openAIOptions(settings)...), nil

	case strings.Contains(model, "gemini"):
		config := &genai.ClientConfig{
			APIKey:     settings.apiKey,
			Backend:    genai.BackendGeminiAPI,
			HTTPClient: settings.httpClient,
		}
		if settings.baseURL != "" {
			config.HTTPOptions.BaseURL = settings.baseURL
		}
		return gemini.New(ctx, model, config)

	default:
		return nil, fmt.Errorf(
			"model %q matches no supported family (claude, gpt, glm, qwen, gemini)", model)
	}
}

func openAIOptions(settings Settings) []openaiopt.RequestOption {
	var vendorOpts []openaiopt.RequestOption
	if settings.apiKey != "" {
		vendorOpts = append(vendorOpts, openaiopt.WithAPIKey(settings.apiKey))
	}
	if settings.baseURL != "" {
		vendorOpts = append(vendorOpts, openaiopt.WithBaseURL(settings.baseURL))
	}
	if settings.httpClient != nil {
		vendorOpts = append(vendorOpts, openaiopt.WithHTTPClient(settings.httpClient))
	}
	return vendorOpts
}

// NewSession routes the model and opens a stateful session on it.
func NewSession(ctx context.Context, model string, options ...opts.Option[Settings]) (*Session, error) {
	var settings Settings
	if err := opts.Apply(&settings, options); err != nil {
		return nil, err
	}
	routed, err := New(ctx, model, options...)
	if err != nil {
		return nil, err
	}
	return newSession(routed, settings.tracer), nil
}
