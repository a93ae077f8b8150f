package loader

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"log"
	"net/url"
	"regexp"
	"strings"

	"github.com/cloo-solutions/linkdigest/internal/domain"
)

const (
	defaultYouTubeBaseURL = "https://www.youtube.com"
	playerResponseMarker  = "ytInitialPlayerResponse = "
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{6,}$`)

// YouTubeLoader loads the caption transcript of a video as one fragment.
type YouTubeLoader struct {
	fetcher *Fetcher
	baseURL string
	langs   []string
}

// NewYouTubeLoader creates a loader preferring captions in lang.
func NewYouTubeLoader(fetcher *Fetcher, lang string) *YouTubeLoader {
	langs := []string{}
	if lang != "" {
		langs = append(langs, lang)
	}
	return &YouTubeLoader{fetcher: fetcher, baseURL: defaultYouTubeBaseURL, langs: langs}
}

// WithBaseURL points the loader at another watch-page host.
func (l *YouTubeLoader) WithBaseURL(baseURL string) *YouTubeLoader {
	l.baseURL = strings.TrimRight(baseURL, "/")
	return l
}

func (l *YouTubeLoader) Load(ctx context.Context, link domain.SourceLink) ([]domain.ContentFragment, error) {
	videoID, err := ExtractVideoID(link.URL())
	if err != nil {
		return nil, domain.NewLoadError("failed to read video link", err)
	}

	watchURL := l.baseURL + "/watch?v=" + url.QueryEscape(videoID)
	body, err := l.fetcher.Get(ctx, watchURL, map[string]string{
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.9",
		"Cookie":          "CONSENT=YES+1",
	})
	if err != nil {
		return nil, domain.NewLoadError("failed to fetch video page", err)
	}

	player, err := parsePlayerResponse(body)
	if err != nil {
		return nil, domain.NewLoadError("failed to parse video page", err)
	}

	if player.Captions == nil || len(player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks) == 0 {
		reason := "video has no captions"
		if player.PlayabilityStatus != nil && player.PlayabilityStatus.Reason != "" {
			reason = player.PlayabilityStatus.Reason
		}
		return nil, domain.NewNoTranscriptError("no transcript available for video "+videoID, errors.New(reason))
	}

	track, ok := pickBestTrack(player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks, l.langs)
	if !ok {
		return nil, domain.NewNoTranscriptError("no transcript available for video "+videoID, errors.New("all caption tracks require a browser session"))
	}

	captionXML, err := l.fetcher.Get(ctx, track.BaseURL, nil)
	if err != nil {
		return nil, domain.NewLoadError("failed to fetch transcript", err)
	}

	text, err := parseTimedText(captionXML)
	if err != nil {
		return nil, domain.NewLoadError("failed to parse transcript", err)
	}
	if text == "" {
		return nil, domain.NewNoTranscriptError("no transcript available for video "+videoID, errors.New("caption track is empty"))
	}

	meta := map[string]string{
		domain.MetaSource:   link.Raw,
		domain.MetaVideoID:  videoID,
		domain.MetaLanguage: track.LanguageCode,
	}
	if player.VideoDetails != nil {
		meta[domain.MetaTitle] = player.VideoDetails.Title
		meta[domain.MetaAuthor] = player.VideoDetails.Author
	}

	log.Printf("Loaded transcript for video %s (%s, %d chars)", videoID, track.LanguageCode, len(text))
	return []domain.ContentFragment{domain.NewContentFragment(text, meta)}, nil
}

// ExtractVideoID reads the video id from the supported link shapes.
func ExtractVideoID(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid video link: %w", err)
	}

	var id string
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")

	switch {
	case host == "youtu.be" || host == "youtube":
		id = segments[0]
	case u.Query().Get("v") != "":
		id = u.Query().Get("v")
	case len(segments) >= 2:
		switch segments[0] {
		case "shorts", "embed", "live", "v":
			id = segments[1]
		}
	}

	if !videoIDPattern.MatchString(id) {
		return "", fmt.Errorf("no video id in %q", raw)
	}
	return id, nil
}

func parsePlayerResponse(page []byte) (*playerResponse, error) {
	idx := strings.Index(string(page), playerResponseMarker)
	if idx < 0 {
		return nil, errors.New("ytInitialPlayerResponse not found in watch page")
	}
	raw := extractJSON(page[idx+len(playerResponseMarker):])
	if raw == nil {
		return nil, errors.New("failed to extract ytInitialPlayerResponse JSON")
	}

	var player playerResponse
	if err := json.Unmarshal(raw, &player); err != nil {
		return nil, fmt.Errorf("failed to decode ytInitialPlayerResponse: %w", err)
	}
	return &player, nil
}

// extractJSON returns the balanced JSON object at the start of b.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	escaped := false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}

// needsPoToken reports whether a track is only fetchable from a browser.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// pickBestTrack prefers a manual track in a preferred language, then an
// auto-generated one, then any English track, then the first usable track.
func pickBestTrack(tracks []captionTrack, langs []string) (captionTrack, bool) {
	usable := make([]captionTrack, 0, len(tracks))
	for _, t := range tracks {
		if t.BaseURL != "" && !needsPoToken(t.BaseURL) {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return captionTrack{}, false
	}
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang && t.Kind != "asr" {
				return t, true
			}
		}
	}
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang {
				return t, true
			}
		}
	}
	for _, t := range usable {
		if strings.HasPrefix(t.LanguageCode, "en") {
			return t, true
		}
	}
	return usable[0], true
}

func parseTimedText(data []byte) (string, error) {
	var tt timedText
	if err := xml.Unmarshal(data, &tt); err != nil {
		return "", fmt.Errorf("failed to parse timedtext XML: %w", err)
	}

	var lines []string
	for _, line := range tt.Lines {
		lines = appendCaption(lines, line.Text)
	}
	for _, p := range tt.Paragraphs {
		if len(p.Segments) == 0 {
			lines = appendCaption(lines, p.Text)
			continue
		}
		var words []string
		for _, s := range p.Segments {
			words = append(words, s.Text)
		}
		lines = appendCaption(lines, strings.Join(words, ""))
	}
	return strings.Join(lines, " "), nil
}

// appendCaption adds a caption line after undoing the second layer of entity
// escaping YouTube applies.
func appendCaption(lines []string, text string) []string {
	text = strings.Join(strings.Fields(html.UnescapeString(text)), " ")
	if text == "" {
		return lines
	}
	return append(lines, text)
}
