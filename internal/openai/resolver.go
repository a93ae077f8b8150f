package openai

import (
	"net/http"

	"github.com/cloo-solutions/linkdigest/internal/domain"
	"github.com/cloo-solutions/linkdigest/internal/retry"
	"github.com/cloo-solutions/linkdigest/internal/service"
)

const (
	BackendLocal = "local"
	BackendGroq  = "groq"
)

// ResolverConfig is the process-wide backend configuration.
type ResolverConfig struct {
	LocalLLMURL         string
	LocalModel          string
	LocalMaxTokens      int
	OpenAIAPIKey        string
	OpenAIBaseURL       string
	GroqBaseURL         string
	GroqModel           string
	EmbeddingModel      string
	EmbeddingDimensions int
	Policy              retry.Policy
	HTTPClient          *http.Client
}

// Resolver picks the completion and embedding backends for a request.
type Resolver struct {
	cfg ResolverConfig
}

func NewResolver(cfg ResolverConfig) *Resolver {
	if cfg.GroqBaseURL == "" {
		cfg.GroqBaseURL = DefaultGroqBaseURL
	}
	return &Resolver{cfg: cfg}
}

// Resolve returns the backend for one request. A configured local endpoint
// always wins, even when the caller sends a Groq key.
func (r *Resolver) Resolve(credential string, mode domain.Mode) (*service.Backend, error) {
	if r.cfg.LocalLLMURL != "" {
		return r.local(mode), nil
	}

	if credential == "" {
		return nil, domain.ErrGroqAPIKeyRequired
	}
	if mode == domain.ModeRetrieval && r.cfg.OpenAIAPIKey == "" {
		return nil, domain.ErrOpenAIKeyRequired
	}

	groq := NewAPIClient(ClientConfig{
		APIKey:     credential,
		BaseURL:    r.cfg.GroqBaseURL,
		HTTPClient: r.cfg.HTTPClient,
	})
	backend := &service.Backend{
		Name:      BackendGroq,
		Completer: NewChatCompleter(groq, r.cfg.GroqModel, r.cfg.Policy),
	}
	if mode == domain.ModeRetrieval {
		backend.Embedder = NewEmbeddingClient(EmbeddingConfig{
			ClientConfig: ClientConfig{
				APIKey:     r.cfg.OpenAIAPIKey,
				BaseURL:    r.cfg.OpenAIBaseURL,
				HTTPClient: r.cfg.HTTPClient,
			},
			Model:      r.cfg.EmbeddingModel,
			Dimensions: r.cfg.EmbeddingDimensions,
			Policy:     r.cfg.Policy,
		})
	}
	return backend, nil
}

func (r *Resolver) local(mode domain.Mode) *service.Backend {
	cc := ClientConfig{
		APIKey:     r.cfg.OpenAIAPIKey,
		BaseURL:    r.cfg.LocalLLMURL,
		HTTPClient: r.cfg.HTTPClient,
	}
	client := NewAPIClient(cc)
	backend := &service.Backend{
		Name:      BackendLocal,
		Completer: NewTextCompleter(client, r.cfg.LocalModel, r.cfg.LocalMaxTokens, r.cfg.Policy),
	}
	if mode == domain.ModeRetrieval {
		backend.Embedder = NewEmbeddingClient(EmbeddingConfig{
			ClientConfig: cc,
			Model:        r.cfg.EmbeddingModel,
			Dimensions:   r.cfg.EmbeddingDimensions,
			Policy:       r.cfg.Policy,
		})
	}
	return backend
}
