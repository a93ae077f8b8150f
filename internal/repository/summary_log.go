package repository

import (
	"context"
	"errors"
	"time"

	"github.com/cloo-solutions/linkdigest/internal/domain"
	"github.com/cloo-solutions/linkdigest/internal/pagination"
	"github.com/cloo-solutions/linkdigest/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const summaryLogColumns = `id, link, kind, mode, backend, status_code, title, chunk_count, duration_ms, error_message, created_at`

// SummaryLogRepository stores one row per summary attempt.
type SummaryLogRepository struct {
	pool *pgxpool.Pool
}

func NewSummaryLogRepository(pool *pgxpool.Pool) *SummaryLogRepository {
	return &SummaryLogRepository{pool: pool}
}

func (r *SummaryLogRepository) Create(ctx context.Context, entry *domain.SummaryLog) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO summary_logs (`+summaryLogColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		entry.ID,
		entry.Link,
		string(entry.Kind),
		string(entry.Mode),
		entry.Backend,
		entry.StatusCode,
		nullableString(entry.Title),
		entry.ChunkCount,
		entry.DurationMs,
		nullableString(entry.ErrorMessage),
		entry.CreatedAt,
	)
	return err
}

func (r *SummaryLogRepository) GetByID(ctx context.Context, id string) (*domain.SummaryLog, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+summaryLogColumns+` FROM summary_logs WHERE id = $1`,
		id,
	)
	entry, err := scanSummaryLog(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSummaryLogNotFound
		}
		return nil, err
	}
	return entry, nil
}

func (r *SummaryLogRepository) ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*service.SummaryLogPageResult, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.pool.Query(ctx,
			`SELECT `+summaryLogColumns+` FROM summary_logs
			 WHERE (created_at, id) < ($1, $2)
			 ORDER BY created_at DESC, id DESC
			 LIMIT $3`,
			cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.pool.Query(ctx,
			`SELECT `+summaryLogColumns+` FROM summary_logs
			 ORDER BY created_at DESC, id DESC
			 LIMIT $1`,
			limit+1,
		)
	}

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.SummaryLog
	for rows.Next() {
		entry, err := scanSummaryLog(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	hasMore := len(entries) > limit
	if hasMore {
		entries = entries[:limit]
	}

	var nextCursor string
	if hasMore && len(entries) > 0 {
		last := entries[len(entries)-1]
		nextCursor = pagination.EncodeCursor(last.ID, last.CreatedAt)
	}

	return &service.SummaryLogPageResult{
		Items:      entries,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

// DeleteOlderThan removes entries created before the cutoff.
func (r *SummaryLogRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	cmdTag, err := r.pool.Exec(ctx,
		`DELETE FROM summary_logs WHERE created_at < $1`,
		before,
	)
	if err != nil {
		return 0, err
	}
	return cmdTag.RowsAffected(), nil
}

func scanSummaryLog(row pgx.Row) (*domain.SummaryLog, error) {
	var entry domain.SummaryLog
	var kind, mode string
	var title, errorMessage *string
	err := row.Scan(
		&entry.ID,
		&entry.Link,
		&kind,
		&mode,
		&entry.Backend,
		&entry.StatusCode,
		&title,
		&entry.ChunkCount,
		&entry.DurationMs,
		&errorMessage,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	entry.Kind = domain.LinkKind(kind)
	entry.Mode = domain.Mode(mode)
	if title != nil {
		entry.Title = *title
	}
	if errorMessage != nil {
		entry.ErrorMessage = *errorMessage
	}
	return &entry, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
