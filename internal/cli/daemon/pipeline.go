// Package daemon holds the linkdigestd commands.
package daemon

import (
	"log"
	"net/http"

	"github.com/cloo-solutions/linkdigest/internal/config"
	"github.com/cloo-solutions/linkdigest/internal/loader"
	"github.com/cloo-solutions/linkdigest/internal/openai"
	"github.com/cloo-solutions/linkdigest/internal/retry"
	"github.com/cloo-solutions/linkdigest/internal/service"
	"github.com/cloo-solutions/linkdigest/internal/telemetry"
)

// NewLoaders builds the video and web page loaders described by cfg.
func NewLoaders(cfg *config.Config, client *http.Client) loader.Set {
	fetcher := loader.NewFetcher(client, retry.DefaultPolicy(cfg.MaxRetries))

	var renderer loader.Renderer
	switch cfg.Renderer {
	case config.RendererHTTP:
		renderer = loader.NewHTTPRenderer(fetcher)
	default:
		renderer = loader.NewChromeRenderer(cfg.RenderTimeout, cfg.BrowserWSURL, cfg.ChromePath)
	}

	return loader.Set{
		Video:   loader.NewYouTubeLoader(fetcher, cfg.TranscriptLanguage),
		WebPage: loader.NewWebPageLoader(renderer),
	}
}

// NewResolver builds the completion backend resolver described by cfg.
func NewResolver(cfg *config.Config, client *http.Client) *openai.Resolver {
	return openai.NewResolver(openai.ResolverConfig{
		LocalLLMURL:         cfg.LocalLLMURL,
		LocalModel:          cfg.LocalModel,
		LocalMaxTokens:      cfg.LocalMaxTokens,
		OpenAIAPIKey:        cfg.OpenAIAPIKey,
		OpenAIBaseURL:       cfg.OpenAIBaseURL,
		GroqBaseURL:         cfg.GroqBaseURL,
		GroqModel:           cfg.GroqModel,
		EmbeddingModel:      cfg.EmbeddingModel,
		EmbeddingDimensions: cfg.EmbeddingDimensions,
		Policy:              retry.DefaultPolicy(cfg.MaxRetries),
		HTTPClient:          client,
	})
}

// NewSummaryService wires the full pipeline from cfg.
func NewSummaryService(cfg *config.Config) *service.SummaryService {
	client := &http.Client{Timeout: cfg.RequestTimeout}

	if cfg.HasLocalLLM() {
		log.Printf("using local LLM at %s", cfg.LocalLLMURL)
	}

	return service.NewSummaryServiceWithConfig(
		NewLoaders(cfg, client),
		NewResolver(cfg, client),
		service.SummaryServiceConfig{
			DefaultMode:  cfg.Mode(),
			ChunkSize:    cfg.ChunkSize,
			ChunkOverlap: cfg.ChunkOverlap,
			TopK:         cfg.TopK,
		},
	)
}

// initTelemetry starts Sentry when a DSN is configured. The returned func is
// always safe to call.
func initTelemetry(cfg *config.Config) func() {
	if cfg.SentryDSN == "" {
		return func() {}
	}

	// Default to 10% sampling in production, 100% in development
	sampleRate := 0.1
	if cfg.Environment == "development" {
		sampleRate = 1.0
	}

	shutdown, err := telemetry.Init(telemetry.Config{
		DSN:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		TracesSampleRate: sampleRate,
		Debug:            cfg.Debug,
	})
	if err != nil {
		log.Printf("telemetry init failed (continuing without tracing): %v", err)
		return func() {}
	}
	return shutdown
}
