package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cloo-solutions/linkdigest/internal/api"
	"github.com/cloo-solutions/linkdigest/internal/domain"
	"github.com/cloo-solutions/linkdigest/internal/service"
)

type SummaryLogService interface {
	List(ctx context.Context, cursor string, limit int) (*service.SummaryLogPageResult, error)
	Get(ctx context.Context, id string) (*domain.SummaryLog, error)
}

// SummaryLogHandler serves the audit log. With no service configured every
// route answers 501.
type SummaryLogHandler struct {
	svc SummaryLogService
}

func NewSummaryLogHandler(svc SummaryLogService) *SummaryLogHandler {
	return &SummaryLogHandler{svc: svc}
}

type SummaryLogResponse struct {
	ID           string `json:"id"`
	Link         string `json:"link"`
	Kind         string `json:"kind"`
	Mode         string `json:"mode,omitempty"`
	Backend      string `json:"backend,omitempty"`
	StatusCode   int    `json:"status_code"`
	Title        string `json:"title,omitempty"`
	ChunkCount   int    `json:"chunk_count"`
	DurationMs   int    `json:"duration_ms"`
	ErrorMessage string `json:"error_message,omitempty"`
	CreatedAt    string `json:"created_at"`
}

type ListSummaryLogsResponse struct {
	Items   []*SummaryLogResponse `json:"items"`
	Cursor  string                `json:"cursor,omitempty"`
	HasMore bool                  `json:"has_more"`
}

func summaryLogToResponse(l *domain.SummaryLog) *SummaryLogResponse {
	return &SummaryLogResponse{
		ID:           l.ID,
		Link:         l.Link,
		Kind:         string(l.Kind),
		Mode:         string(l.Mode),
		Backend:      l.Backend,
		StatusCode:   l.StatusCode,
		Title:        l.Title,
		ChunkCount:   l.ChunkCount,
		DurationMs:   l.DurationMs,
		ErrorMessage: l.ErrorMessage,
		CreatedAt:    l.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *SummaryLogHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.svc == nil {
		api.Error(w, http.StatusNotImplemented, "summary log is not configured")
		return
	}

	cursor := r.URL.Query().Get("cursor")
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			api.Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	page, err := h.svc.List(r.Context(), cursor, limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]*SummaryLogResponse, 0, len(page.Items))
	for _, l := range page.Items {
		items = append(items, summaryLogToResponse(l))
	}

	api.Success(w, http.StatusOK, ListSummaryLogsResponse{
		Items:   items,
		Cursor:  page.NextCursor,
		HasMore: page.HasMore,
	})
}

func (h *SummaryLogHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.svc == nil {
		api.Error(w, http.StatusNotImplemented, "summary log is not configured")
		return
	}

	entry, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, summaryLogToResponse(entry))
}
