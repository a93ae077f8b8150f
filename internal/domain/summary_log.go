package domain

import (
	"fmt"
	"time"
)

// SummaryLog records one summarisation attempt. It holds no content.
type SummaryLog struct {
	ID           string
	Link         string
	Kind         LinkKind
	Mode         Mode
	Backend      string
	StatusCode   int
	Title        string
	ChunkCount   int
	DurationMs   int
	ErrorMessage string
	CreatedAt    time.Time
}

// Succeeded reports whether the attempt returned a summary.
func (l *SummaryLog) Succeeded() bool {
	return l.StatusCode >= 200 && l.StatusCode < 300
}

// ValidateSummaryLog validates a SummaryLog instance
func ValidateSummaryLog(l *SummaryLog) error {
	if l == nil {
		return fmt.Errorf("summary log cannot be nil")
	}
	if l.Link == "" {
		return fmt.Errorf("summary log Link is required")
	}
	if l.StatusCode < 100 || l.StatusCode > 599 {
		return fmt.Errorf("summary log StatusCode is invalid: %d", l.StatusCode)
	}
	if l.DurationMs < 0 {
		return fmt.Errorf("summary log DurationMs cannot be negative")
	}
	return nil
}
