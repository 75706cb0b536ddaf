package agenthub

import (
	"net/http"

	"github.com/fogfish/opts"

	"github.com/Prism-Shadow/AgentHub/tracer"
)

// Settings carries the connection knobs shared by every provider family.
// Zero values defer to each vendor SDK's environment handling.
type Settings struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	tracer     tracer.Tracer
	_          struct{} // require keyed usage
}

var (
	// WithAPIKey overrides the API key read from the environment.
	WithAPIKey = opts.ForName[Settings, string]("apiKey")

	// WithBaseURL points the provider at a different endpoint, for example
	// a relay or a regional deployment.
	WithBaseURL = opts.ForName[Settings, string]("baseURL")

	// WithHTTPClient supplies the HTTP client vendor SDKs and image
	// fetching run over.
	WithHTTPClient = opts.ForName[Settings, *http.Client]("httpClient")

	// WithTracer selects where sessions persist their traces. Defaults to
	// a file tracer rooted at the cache directory.
	WithTracer = opts.ForName[Settings, tracer.Tracer]("tracer")
)
