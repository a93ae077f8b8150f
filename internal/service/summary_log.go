package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cloo-solutions/linkdigest/internal/domain"
	"github.com/cloo-solutions/linkdigest/internal/pagination"
)

const (
	defaultLogPageSize = 20
	maxLogPageSize     = 100
)

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

// SummaryLogPageResult is one page of summary logs, newest first.
type SummaryLogPageResult struct {
	Items      []*domain.SummaryLog
	NextCursor string
	HasMore    bool
}

// SummaryLogRepository persists summary audit records.
type SummaryLogRepository interface {
	Create(ctx context.Context, entry *domain.SummaryLog) error
	GetByID(ctx context.Context, id string) (*domain.SummaryLog, error)
	ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*SummaryLogPageResult, error)
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}

// SummaryLogService records and lists summary attempts. The pipeline never
// reads these records back.
type SummaryLogService struct {
	repo    SummaryLogRepository
	uuidGen UUIDGenerator
	now     func() time.Time
}

func NewSummaryLogService(repo SummaryLogRepository, uuidGen UUIDGenerator) *SummaryLogService {
	if uuidGen == nil {
		uuidGen = &DefaultUUIDGenerator{}
	}
	return &SummaryLogService{repo: repo, uuidGen: uuidGen, now: time.Now}
}

// Record stores one attempt, assigning its ID and timestamp.
func (s *SummaryLogService) Record(ctx context.Context, entry *domain.SummaryLog) error {
	if entry == nil {
		return domain.NewDomainError(domain.ErrCodeValidation, "summary log cannot be nil")
	}
	if entry.ID == "" {
		entry.ID = s.uuidGen.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now().UTC()
	}
	if err := domain.ValidateSummaryLog(entry); err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid summary log", err)
	}
	return s.repo.Create(ctx, entry)
}

func (s *SummaryLogService) Get(ctx context.Context, id string) (*domain.SummaryLog, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrSummaryLogNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// List returns a page of logs after cursor. Limits outside [1, 100] are
// clamped.
func (s *SummaryLogService) List(ctx context.Context, cursor string, limit int) (*SummaryLogPageResult, error) {
	decoded, err := pagination.DecodeCursor(cursor)
	if err != nil {
		return nil, domain.ErrInvalidCursor
	}
	if limit <= 0 {
		limit = defaultLogPageSize
	}
	if limit > maxLogPageSize {
		limit = maxLogPageSize
	}
	return s.repo.ListWithCursor(ctx, decoded, limit)
}

// Prune deletes logs older than retention.
func (s *SummaryLogService) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	return s.repo.DeleteOlderThan(ctx, s.now().UTC().Add(-retention))
}
