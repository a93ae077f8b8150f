package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/linkdigest/internal/api/handlers"
	"github.com/cloo-solutions/linkdigest/internal/api/middleware"
	"github.com/cloo-solutions/linkdigest/internal/domain"
	"github.com/cloo-solutions/linkdigest/internal/openai"
	"github.com/cloo-solutions/linkdigest/internal/service"
)

type MockContentLoader struct {
	mock.Mock
}

func (m *MockContentLoader) Load(ctx context.Context, link domain.SourceLink) ([]domain.ContentFragment, error) {
	args := m.Called(ctx, link)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ContentFragment), args.Error(1)
}

type stubCompleter struct {
	reply string
}

func (s stubCompleter) Complete(context.Context, service.CompletionRequest) (string, error) {
	return s.reply, nil
}

type stubResolver struct {
	backend *service.Backend
}

func (s stubResolver) Resolve(credential string, mode domain.Mode) (*service.Backend, error) {
	if credential == "" {
		return nil, domain.ErrGroqAPIKeyRequired
	}
	return s.backend, nil
}

func newTestRouter(loader service.ContentLoader, resolver service.BackendResolver, limiter *middleware.RateLimiter) http.Handler {
	svc := service.NewSummaryService(loader, resolver)
	return NewRouter(RouterConfig{
		SummaryHandler: handlers.NewSummaryHandler(svc, nil),
		RateLimiter:    limiter,
	})
}

func post(router http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter(new(MockContentLoader), openai.NewResolver(openai.ResolverConfig{}), nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_GenerateSummary_Validation(t *testing.T) {
	router := newTestRouter(new(MockContentLoader), openai.NewResolver(openai.ResolverConfig{}), nil)

	tests := []struct {
		name string
		path string
		body string
		want string
	}{
		{"missing link", "/api/generate-summary", `{"groqApiKey":"gsk"}`, "link is required"},
		{"missing groq key", "/api/generate-summary", `{"link":"https://example.com"}`, "groqApiKey is required"},
		{"missing openai key", "/api/generate-summary/with-embeddings", `{"link":"https://example.com","groqApiKey":"gsk"}`, "OPENAI_API_KEY is required if LOCAL_LLM_URL is not set"},
		{"bad temperature", "/api/generate-summary", `{"link":"https://example.com","temperature":3}`, "temperature must be between 0 and 1"},
		{"bad mode", "/api/generate-summary", `{"link":"https://example.com","mode":"rag"}`, "mode must be one of: direct, retrieval"},
		{"bad body", "/api/generate-summary", `link=x`, "invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(router, tt.path, tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.want, body["error"])
		})
	}
}

func TestRouter_GenerateSummary_EndToEnd(t *testing.T) {
	loader := new(MockContentLoader)
	loader.On("Load", mock.Anything, mock.Anything).
		Return([]domain.ContentFragment{{Text: "A long talk about cats and their habits."}}, nil)
	resolver := stubResolver{backend: &service.Backend{
		Name:      "groq",
		Completer: stubCompleter{reply: "Cats Explained\nThis video is about cats."},
	}}
	router := newTestRouter(loader, resolver, nil)

	w := post(router, "/api/generate-summary", `{"link":"https://www.youtube.com/watch?v=abc123","groqApiKey":"gsk","temperature":0.2}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Cats Explained\nThis video is about cats."}`, w.Body.String())
}

func TestRouter_GenerateSummary_NoTranscript(t *testing.T) {
	loader := new(MockContentLoader)
	loader.On("Load", mock.Anything, mock.Anything).
		Return(nil, domain.NewNoTranscriptError("no transcript available for video abc123", nil))
	router := newTestRouter(loader, stubResolver{backend: &service.Backend{Name: "groq", Completer: stubCompleter{}}}, nil)

	w := post(router, "/api/generate-summary", `{"link":"https://youtu.be/abc123","groqApiKey":"gsk"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "no transcript available")
}

func TestRouter_RateLimited(t *testing.T) {
	router := newTestRouter(new(MockContentLoader), openai.NewResolver(openai.ResolverConfig{}), middleware.NewRateLimiter(0.001, 1))

	first := post(router, "/api/generate-summary", `{}`)
	second := post(router, "/api/generate-summary", `{}`)

	assert.Equal(t, http.StatusBadRequest, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_SummariesWithoutDatabase(t *testing.T) {
	router := newTestRouter(new(MockContentLoader), openai.NewResolver(openai.ResolverConfig{}), nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/summaries", nil))

	assert.Equal(t, http.StatusNotImplemented, w.Code)
}
