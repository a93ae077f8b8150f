package jobs

import (
	"context"
	"fmt"
	"log"
	"time"
)

// SummaryLogPruner deletes summary logs older than a retention window.
type SummaryLogPruner interface {
	Prune(ctx context.Context, retention time.Duration) (int64, error)
}

// LogRetentionJob enforces the summary log retention window.
type LogRetentionJob struct {
	pruner    SummaryLogPruner
	retention time.Duration
}

func NewLogRetentionJob(pruner SummaryLogPruner, retention time.Duration) *LogRetentionJob {
	return &LogRetentionJob{pruner: pruner, retention: retention}
}

// ProcessJobs implements the JobProcessor interface
func (j *LogRetentionJob) ProcessJobs(ctx context.Context) error {
	if j.retention <= 0 {
		return nil
	}

	deleted, err := j.pruner.Prune(ctx, j.retention)
	if err != nil {
		return fmt.Errorf("failed to prune summary logs: %w", err)
	}
	if deleted > 0 {
		log.Printf("Pruned %d summary logs older than %v", deleted, j.retention)
	}
	return nil
}

// PruneInterval picks how often to run the retention job: a tenth of the
// window, between one minute and one hour.
func PruneInterval(retention time.Duration) time.Duration {
	interval := retention / 10
	if interval < time.Minute {
		return time.Minute
	}
	if interval > time.Hour {
		return time.Hour
	}
	return interval
}
