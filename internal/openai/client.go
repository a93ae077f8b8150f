package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/cloo-solutions/linkdigest/internal/retry"
)

const (
	// DefaultEmbeddingModel is the model used for retrieval-mode embeddings
	DefaultEmbeddingModel = openai.SmallEmbedding3
	// DefaultGroqBaseURL is Groq's OpenAI-compatible API root
	DefaultGroqBaseURL = "https://api.groq.com/openai/v1"
)

var (
	// ErrEmptyText is returned when text is empty
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrWrongDimensions is returned when embedding has wrong dimensions
	ErrWrongDimensions = errors.New("embedding has wrong dimensions")
	// ErrEmptyResponse is returned when the API answers without data
	ErrEmptyResponse = errors.New("no data returned")
)

// EmbeddingAPI defines the interface for embedding generation
type EmbeddingAPI interface {
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// OpenAIAdapter calls an OpenAI-compatible /embeddings endpoint.
type OpenAIAdapter struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
}

func NewOpenAIAdapter(client *openai.Client, model openai.EmbeddingModel, dimensions int) *OpenAIAdapter {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	return &OpenAIAdapter{
		client:     client,
		model:      model,
		dimensions: dimensions,
	}
}

// CreateEmbeddings embeds texts in one call and returns vectors in input order.
func (a *OpenAIAdapter) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      texts,
		Model:      a.model,
		Dimensions: a.dimensions,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d texts", ErrEmptyResponse, len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, fmt.Errorf("embedding index %d out of range", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}

// ClientConfig describes one OpenAI-compatible endpoint.
type ClientConfig struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// NewAPIClient builds a go-openai client for cfg. An empty BaseURL keeps the
// OpenAI default.
func NewAPIClient(cfg ClientConfig) *openai.Client {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.HTTPClient != nil {
		oc.HTTPClient = cfg.HTTPClient
	}
	return openai.NewClientWithConfig(oc)
}

// EmbeddingClient implements the retrieval embedder on top of EmbeddingAPI.
type EmbeddingClient struct {
	api        EmbeddingAPI
	dimensions int
	policy     retry.Policy
}

type EmbeddingConfig struct {
	ClientConfig
	Model      string
	Dimensions int
	Policy     retry.Policy
}

// NewEmbeddingClient creates an embeddings client for cfg. Dimensions of 0
// accepts whatever size the model returns.
func NewEmbeddingClient(cfg EmbeddingConfig) *EmbeddingClient {
	return &EmbeddingClient{
		api:        NewOpenAIAdapter(NewAPIClient(cfg.ClientConfig), openai.EmbeddingModel(cfg.Model), cfg.Dimensions),
		dimensions: cfg.Dimensions,
		policy:     cfg.Policy,
	}
}

// EmbedTexts embeds texts, retrying transient failures.
func (c *EmbeddingClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	for _, t := range texts {
		if strings.TrimSpace(t) == "" {
			return nil, ErrEmptyText
		}
	}

	vectors, err := retry.Do(ctx, c.policy, IsTransient, func() ([][]float32, error) {
		return c.api.CreateEmbeddings(ctx, texts)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings: %w", err)
	}

	if c.dimensions > 0 {
		for _, v := range vectors {
			if len(v) != c.dimensions {
				return nil, fmt.Errorf("%w: expected %d, got %d", ErrWrongDimensions, c.dimensions, len(v))
			}
		}
	}

	return vectors, nil
}
