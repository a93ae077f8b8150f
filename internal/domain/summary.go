package domain

import (
	"strings"
)

// Mode selects how loaded content reaches the prompt.
type Mode string

const (
	// ModeDirect stuffs every loaded fragment into the prompt.
	ModeDirect Mode = "direct"
	// ModeRetrieval chunks, embeds and retrieves the top-k chunks.
	ModeRetrieval Mode = "retrieval"
)

// ParseMode validates a mode name. The empty string is returned unchanged and
// means "use the configured default".
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "", ModeDirect, ModeRetrieval:
		return m, nil
	}
	return "", ErrInvalidMode
}

// SummaryRequest is the input of one summarisation.
type SummaryRequest struct {
	Link        string
	GroqAPIKey  string
	Temperature *float64
	Mode        Mode
}

// Validate checks the request fields that need no configuration.
func (r SummaryRequest) Validate() error {
	if strings.TrimSpace(r.Link) == "" {
		return ErrLinkRequired
	}
	if r.Temperature != nil && (*r.Temperature < 0 || *r.Temperature > 1) {
		return ErrInvalidTemperature
	}
	if _, err := ParseMode(string(r.Mode)); err != nil {
		return err
	}
	return nil
}

// SummaryResult is a title plus the summary body lines.
type SummaryResult struct {
	Title string
	Body  []string
}

// ParseSummary reads a completion whose first non-empty line is the title.
func ParseSummary(text string) SummaryResult {
	var result SummaryResult
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if result.Title == "" {
			result.Title = line
			continue
		}
		result.Body = append(result.Body, line)
	}
	return result
}

// String joins the title and body with newlines, title first.
func (r SummaryResult) String() string {
	if len(r.Body) == 0 {
		return r.Title
	}
	return r.Title + "\n" + strings.Join(r.Body, "\n")
}
