package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cloo-solutions/linkdigest/internal/domain"
	"github.com/cloo-solutions/linkdigest/internal/telemetry"
)

// ContentLoader loads a classified link.
type ContentLoader interface {
	Load(ctx context.Context, link domain.SourceLink) ([]domain.ContentFragment, error)
}

// CompletionRequest is what the model is asked.
type CompletionRequest struct {
	Prompt      string
	Query       string
	Temperature *float64
}

// Completer returns the raw completion text for a request.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Backend is the completion and embedding strategy for one request. Embedder
// is nil when the mode does not need embeddings.
type Backend struct {
	Name      string
	Completer Completer
	Embedder  Embedder
}

// BackendResolver picks the backend once per request. Missing credentials are
// validation errors.
type BackendResolver interface {
	Resolve(credential string, mode domain.Mode) (*Backend, error)
}

// SummaryServiceConfig holds the pipeline tuning knobs.
type SummaryServiceConfig struct {
	DefaultMode  domain.Mode
	ChunkSize    int
	ChunkOverlap int
	TopK         int
}

// DefaultSummaryServiceConfig returns the defaults used when nothing is configured.
func DefaultSummaryServiceConfig() SummaryServiceConfig {
	return SummaryServiceConfig{
		DefaultMode:  domain.ModeDirect,
		ChunkSize:    DefaultChunkSize,
		ChunkOverlap: DefaultChunkOverlap,
		TopK:         DefaultTopK,
	}
}

// SummaryOutput is a finished summary plus what it took to produce it.
type SummaryOutput struct {
	Message    string
	Result     domain.SummaryResult
	Link       domain.SourceLink
	Mode       domain.Mode
	Backend    string
	ChunkCount int
	Duration   time.Duration
}

// SummaryService runs the link to summary pipeline. It keeps no per-request
// state; each call builds its own index.
type SummaryService struct {
	loader   ContentLoader
	resolver BackendResolver
	splitter Splitter
	config   SummaryServiceConfig
}

// NewSummaryService creates a new SummaryService with default configuration
func NewSummaryService(loader ContentLoader, resolver BackendResolver) *SummaryService {
	return NewSummaryServiceWithConfig(loader, resolver, DefaultSummaryServiceConfig())
}

func NewSummaryServiceWithConfig(loader ContentLoader, resolver BackendResolver, cfg SummaryServiceConfig) *SummaryService {
	if cfg.DefaultMode == "" {
		cfg.DefaultMode = domain.ModeDirect
	}
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	return &SummaryService{
		loader:   loader,
		resolver: resolver,
		splitter: NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap),
		config:   cfg,
	}
}

// ResolveMode returns the request mode, or the configured default.
func (s *SummaryService) ResolveMode(mode domain.Mode) domain.Mode {
	if mode == "" {
		return s.config.DefaultMode
	}
	return mode
}

// Summarize validates the request, loads the link, builds the context for the
// chosen mode and asks the model for a title-first summary. Stages run
// strictly in order and the first failure aborts the request.
func (s *SummaryService) Summarize(ctx context.Context, req domain.SummaryRequest) (*SummaryOutput, error) {
	started := time.Now()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	mode, _ := domain.ParseMode(string(req.Mode))
	mode = s.ResolveMode(mode)

	backend, err := s.resolver.Resolve(req.GroqAPIKey, mode)
	if err != nil {
		return nil, err
	}

	link := domain.NewSourceLink(req.Link)
	ctx, span := telemetry.StartSpan(ctx, "summary.summarize", telemetry.SpanAttributes{
		Link:     link.Raw,
		LinkKind: string(link.Kind),
		Mode:     string(mode),
		Backend:  backend.Name,
	})
	defer span.End()

	fragments, err := s.load(ctx, link)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	out := &SummaryOutput{Link: link, Mode: mode, Backend: backend.Name}

	var contexts []string
	switch mode {
	case domain.ModeRetrieval:
		chunks, top, err := s.retrieve(ctx, backend, fragments)
		if err != nil {
			span.SetError(err)
			return nil, err
		}
		out.ChunkCount = len(chunks)
		contexts = domain.ChunkTexts(top)
	default:
		contexts = domain.FragmentTexts(fragments)
	}

	prompt := ComposePrompt(contexts)

	message, err := s.invoke(ctx, backend, prompt, req.Temperature)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	out.Message = message
	out.Result = domain.ParseSummary(message)
	out.Duration = time.Since(started)
	return out, nil
}

func (s *SummaryService) load(ctx context.Context, link domain.SourceLink) ([]domain.ContentFragment, error) {
	ctx, span := telemetry.StartSpan(ctx, "summary.load", telemetry.SpanAttributes{
		Link:     link.Raw,
		LinkKind: string(link.Kind),
	})
	defer span.End()

	fragments, err := s.loader.Load(ctx, link)
	if err != nil {
		var domainErr *domain.DomainError
		if !errors.As(err, &domainErr) {
			err = domain.NewLoadError("failed to load "+link.Raw, err)
		}
		return nil, err
	}

	for _, f := range fragments {
		if strings.TrimSpace(f.Text) != "" {
			return fragments, nil
		}
	}
	return nil, domain.NewLoadError("no content found at "+link.Raw, nil)
}

func (s *SummaryService) retrieve(ctx context.Context, backend *Backend, fragments []domain.ContentFragment) ([]domain.TextChunk, []domain.TextChunk, error) {
	if backend.Embedder == nil {
		return nil, nil, domain.NewEmbeddingError("no embedding backend configured", nil)
	}

	ctx, span := telemetry.StartSpan(ctx, "summary.retrieve", telemetry.SpanAttributes{
		Backend: backend.Name,
	})
	defer span.End()

	chunks := s.splitter.Split(fragments)
	index, err := NewEphemeralIndex(ctx, backend.Embedder, chunks)
	if err != nil {
		return nil, nil, err
	}

	top, err := index.Retrieve(ctx, SummaryQuery, s.config.TopK)
	if err != nil {
		return nil, nil, err
	}

	log.Printf("Retrieved %d of %d chunks for summary", len(top), len(chunks))
	return chunks, top, nil
}

func (s *SummaryService) invoke(ctx context.Context, backend *Backend, prompt string, temperature *float64) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "summary.invoke", telemetry.SpanAttributes{
		Backend: backend.Name,
	})
	defer span.End()

	text, err := backend.Completer.Complete(ctx, CompletionRequest{
		Prompt:      prompt,
		Query:       SummaryQuery,
		Temperature: temperature,
	})
	if err != nil {
		if !domain.HasCode(err, domain.ErrCodeInvocation) {
			err = domain.NewInvocationError(fmt.Sprintf("%s completion failed", backend.Name), err)
		}
		return "", err
	}

	message := strings.TrimSpace(text)
	if message == "" {
		return "", domain.NewInvocationError(fmt.Sprintf("%s returned an empty completion", backend.Name), nil)
	}
	return message, nil
}
