package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/cloo-solutions/linkdigest/internal/api"
	"github.com/cloo-solutions/linkdigest/internal/domain"
	"github.com/cloo-solutions/linkdigest/internal/service"
	"github.com/cloo-solutions/linkdigest/internal/telemetry"
)

type Summarizer interface {
	Summarize(ctx context.Context, req domain.SummaryRequest) (*service.SummaryOutput, error)
}

// SummaryRecorder stores the outcome of a summary request.
type SummaryRecorder interface {
	Record(ctx context.Context, entry *domain.SummaryLog) error
}

type SummaryHandler struct {
	svc      Summarizer
	recorder SummaryRecorder
	timeout  time.Duration
}

// NewSummaryHandler creates the summary endpoints. recorder may be nil.
func NewSummaryHandler(svc Summarizer, recorder SummaryRecorder) *SummaryHandler {
	return &SummaryHandler{svc: svc, recorder: recorder}
}

// WithTimeout bounds every summary request to d. Zero means no deadline
// beyond the client's own.
func (h *SummaryHandler) WithTimeout(d time.Duration) *SummaryHandler {
	h.timeout = d
	return h
}

// GenerateSummaryRequest is the body of both summary routes. Temperture is
// the misspelled field older clients send.
type GenerateSummaryRequest struct {
	Link        string   `json:"link"`
	GroqAPIKey  string   `json:"groqApiKey"`
	Temperature *float64 `json:"temperature"`
	Temperture  *float64 `json:"temperture"`
	Mode        string   `json:"mode"`
}

func (req GenerateSummaryRequest) toDomain(mode domain.Mode) domain.SummaryRequest {
	temp := req.Temperature
	if temp == nil {
		temp = req.Temperture
	}
	if mode == "" {
		mode = domain.Mode(req.Mode)
	}
	return domain.SummaryRequest{
		Link:        req.Link,
		GroqAPIKey:  req.GroqAPIKey,
		Temperature: temp,
		Mode:        mode,
	}
}

// Generate handles POST /api/generate-summary.
func (h *SummaryHandler) Generate(w http.ResponseWriter, r *http.Request) {
	h.generate(w, r, "")
}

// GenerateWithEmbeddings handles POST /api/generate-summary/with-embeddings,
// which always runs in retrieval mode.
func (h *SummaryHandler) GenerateWithEmbeddings(w http.ResponseWriter, r *http.Request) {
	h.generate(w, r, domain.ModeRetrieval)
}

func (h *SummaryHandler) generate(w http.ResponseWriter, r *http.Request, mode domain.Mode) {
	started := time.Now()

	var body GenerateSummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req := body.toDomain(mode)

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	out, err := h.svc.Summarize(ctx, req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && r.Context().Err() == nil {
			err = domain.NewTimeoutError(fmt.Sprintf("summary timed out after %s", h.timeout), err)
		}
		status := api.HandleError(w, err)
		if status >= http.StatusInternalServerError {
			log.Printf("Summary failed for %s: %v", req.Link, err)
			telemetry.CaptureError(r.Context(), err)
		}
		h.record(r.Context(), req, nil, status, err, time.Since(started))
		return
	}

	api.Message(w, out.Message)
	h.record(r.Context(), req, out, http.StatusOK, nil, time.Since(started))
}

func (h *SummaryHandler) record(ctx context.Context, req domain.SummaryRequest, out *service.SummaryOutput, status int, summaryErr error, elapsed time.Duration) {
	if h.recorder == nil || req.Link == "" {
		return
	}

	link := domain.NewSourceLink(req.Link)
	entry := &domain.SummaryLog{
		Link:       link.Raw,
		Kind:       link.Kind,
		Mode:       req.Mode,
		StatusCode: status,
		DurationMs: int(elapsed.Milliseconds()),
	}
	if out != nil {
		entry.Mode = out.Mode
		entry.Backend = out.Backend
		entry.Title = out.Result.Title
		entry.ChunkCount = out.ChunkCount
	}
	if summaryErr != nil {
		entry.ErrorMessage = summaryErr.Error()
	}

	if err := h.recorder.Record(context.WithoutCancel(ctx), entry); err != nil {
		log.Printf("Failed to record summary log: %v", err)
	}
}
