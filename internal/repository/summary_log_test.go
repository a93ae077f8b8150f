//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/cloo-solutions/linkdigest/internal/domain"
	"github.com/cloo-solutions/linkdigest/internal/pagination"
	"github.com/cloo-solutions/linkdigest/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSummaryLog(link string, createdAt time.Time) *domain.SummaryLog {
	return &domain.SummaryLog{
		ID:         uuid.NewString(),
		Link:       link,
		Kind:       domain.Classify(link),
		Mode:       domain.ModeDirect,
		Backend:    "groq",
		StatusCode: 200,
		Title:      "Title for " + link,
		DurationMs: 1200,
		CreatedAt:  createdAt.UTC().Truncate(time.Microsecond),
	}
}

func TestSummaryLogRepository(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc)
	defer pool.Close()

	repo := NewSummaryLogRepository(pool)

	t.Run("create and get", func(t *testing.T) {
		require.NoError(t, testutil.TruncateAll(ctx, pool))

		entry := newSummaryLog("https://youtu.be/abc123", time.Now())
		entry.ChunkCount = 7
		require.NoError(t, repo.Create(ctx, entry))

		got, err := repo.GetByID(ctx, entry.ID)
		require.NoError(t, err)
		assert.Equal(t, entry.Link, got.Link)
		assert.Equal(t, domain.LinkKindVideo, got.Kind)
		assert.Equal(t, domain.ModeDirect, got.Mode)
		assert.Equal(t, "groq", got.Backend)
		assert.Equal(t, 7, got.ChunkCount)
		assert.Equal(t, entry.Title, got.Title)
		assert.Empty(t, got.ErrorMessage)
		assert.True(t, entry.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("failed attempt keeps error message", func(t *testing.T) {
		require.NoError(t, testutil.TruncateAll(ctx, pool))

		entry := newSummaryLog("https://example.com", time.Now())
		entry.StatusCode = 500
		entry.Title = ""
		entry.Backend = ""
		entry.ErrorMessage = "timed out rendering https://example.com"
		require.NoError(t, repo.Create(ctx, entry))

		got, err := repo.GetByID(ctx, entry.ID)
		require.NoError(t, err)
		assert.Equal(t, 500, got.StatusCode)
		assert.Empty(t, got.Title)
		assert.Equal(t, entry.ErrorMessage, got.ErrorMessage)
	})

	t.Run("get not found", func(t *testing.T) {
		_, err := repo.GetByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrSummaryLogNotFound)
	})

	t.Run("list with cursor", func(t *testing.T) {
		require.NoError(t, testutil.TruncateAll(ctx, pool))

		base := time.Now().Add(-time.Hour)
		for i := 0; i < 5; i++ {
			require.NoError(t, repo.Create(ctx, newSummaryLog("https://example.com/"+string(rune('a'+i)), base.Add(time.Duration(i)*time.Minute))))
		}

		first, err := repo.ListWithCursor(ctx, nil, 2)
		require.NoError(t, err)
		require.Len(t, first.Items, 2)
		assert.True(t, first.HasMore)
		assert.Equal(t, "https://example.com/e", first.Items[0].Link)
		assert.Equal(t, "https://example.com/d", first.Items[1].Link)

		cursor, err := pagination.DecodeCursor(first.NextCursor)
		require.NoError(t, err)

		second, err := repo.ListWithCursor(ctx, cursor, 2)
		require.NoError(t, err)
		require.Len(t, second.Items, 2)
		assert.Equal(t, "https://example.com/c", second.Items[0].Link)

		cursor, err = pagination.DecodeCursor(second.NextCursor)
		require.NoError(t, err)

		last, err := repo.ListWithCursor(ctx, cursor, 2)
		require.NoError(t, err)
		require.Len(t, last.Items, 1)
		assert.False(t, last.HasMore)
		assert.Empty(t, last.NextCursor)
	})

	t.Run("delete older than", func(t *testing.T) {
		require.NoError(t, testutil.TruncateAll(ctx, pool))

		now := time.Now()
		old := newSummaryLog("https://example.com/old", now.Add(-48*time.Hour))
		fresh := newSummaryLog("https://example.com/fresh", now)
		require.NoError(t, repo.Create(ctx, old))
		require.NoError(t, repo.Create(ctx, fresh))

		deleted, err := repo.DeleteOlderThan(ctx, now.Add(-24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)

		_, err = repo.GetByID(ctx, old.ID)
		assert.ErrorIs(t, err, domain.ErrSummaryLogNotFound)
		_, err = repo.GetByID(ctx, fresh.ID)
		assert.NoError(t, err)
	})
}
