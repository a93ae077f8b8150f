package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/linkdigest/internal/domain"
	"github.com/cloo-solutions/linkdigest/internal/service"
)

// fakeLLMServer serves the OpenAI-compatible routes the resolver's backends call.
func fakeLLMServer(t *testing.T) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/completions", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"text": "Local Title\nLocal body."}},
		})
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.Header.Get("Authorization") != "Bearer gsk_good" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"message": "Invalid API Key", "type": "invalid_request_error"},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"role": "assistant", "content": "Groq Title\nGroq body."}}},
		})
	})
	mux.HandleFunc("/v1/embeddings", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		var req struct {
			Input []string `json:"input"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		data := make([]map[string]any, 0, len(req.Input))
		for i := range req.Input {
			data = append(data, map[string]any{"object": "embedding", "index": i, "embedding": []float32{1, float32(i)}})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"object": "list", "data": data})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestResolver_Resolve_MissingGroqKey(t *testing.T) {
	r := NewResolver(ResolverConfig{})

	_, err := r.Resolve("", domain.ModeDirect)

	assert.ErrorIs(t, err, domain.ErrGroqAPIKeyRequired)
	assert.Equal(t, "groqApiKey is required", err.Error())
}

func TestResolver_Resolve_RetrievalNeedsOpenAIKey(t *testing.T) {
	r := NewResolver(ResolverConfig{})

	_, err := r.Resolve("gsk_good", domain.ModeRetrieval)

	assert.ErrorIs(t, err, domain.ErrOpenAIKeyRequired)
}

func TestResolver_Resolve_Groq(t *testing.T) {
	srv, _ := fakeLLMServer(t)
	r := NewResolver(ResolverConfig{
		GroqBaseURL:   srv.URL + "/v1",
		GroqModel:     "llama-3.1-8b-instant",
		OpenAIAPIKey:  "sk-test",
		OpenAIBaseURL: srv.URL + "/v1",
		Policy:        testPolicy(),
	})

	direct, err := r.Resolve("gsk_good", domain.ModeDirect)
	require.NoError(t, err)
	assert.Equal(t, BackendGroq, direct.Name)
	assert.Nil(t, direct.Embedder)

	got, err := direct.Completer.Complete(context.Background(), service.CompletionRequest{Prompt: "p", Query: service.SummaryQuery})
	require.NoError(t, err)
	assert.Equal(t, "Groq Title\nGroq body.", got)

	retrieval, err := r.Resolve("gsk_good", domain.ModeRetrieval)
	require.NoError(t, err)
	require.NotNil(t, retrieval.Embedder)

	vectors, err := retrieval.Embedder.EmbedTexts(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0}, {1, 1}}, vectors)
}

func TestResolver_Resolve_GroqBadKey(t *testing.T) {
	srv, hits := fakeLLMServer(t)
	r := NewResolver(ResolverConfig{GroqBaseURL: srv.URL + "/v1", GroqModel: "m", Policy: testPolicy()})

	backend, err := r.Resolve("gsk_bad", domain.ModeDirect)
	require.NoError(t, err)

	_, err = backend.Completer.Complete(context.Background(), service.CompletionRequest{Prompt: "p"})

	require.Error(t, err)
	assert.Equal(t, 401, StatusCode(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}

func TestResolver_Resolve_LocalWins(t *testing.T) {
	srv, _ := fakeLLMServer(t)
	r := NewResolver(ResolverConfig{
		LocalLLMURL:    srv.URL + "/v1/",
		LocalModel:     "gpt-3.5-turbo-instruct",
		LocalMaxTokens: 128,
		Policy:         testPolicy(),
	})

	for _, credential := range []string{"", "gsk_good"} {
		backend, err := r.Resolve(credential, domain.ModeDirect)
		require.NoError(t, err)
		assert.Equal(t, BackendLocal, backend.Name)

		got, err := backend.Completer.Complete(context.Background(), service.CompletionRequest{Prompt: "p", Query: "q"})
		require.NoError(t, err)
		assert.Equal(t, "Local Title\nLocal body.", got)
	}
}

func TestResolver_Resolve_LocalRetrievalUsesLocalEmbeddings(t *testing.T) {
	srv, _ := fakeLLMServer(t)
	r := NewResolver(ResolverConfig{LocalLLMURL: srv.URL + "/v1", LocalModel: "gpt-3.5-turbo-instruct", Policy: testPolicy()})

	backend, err := r.Resolve("", domain.ModeRetrieval)
	require.NoError(t, err)
	require.NotNil(t, backend.Embedder)

	vectors, err := backend.Embedder.EmbedTexts(context.Background(), []string{"only"})
	require.NoError(t, err)
	assert.Len(t, vectors, 1)
}
