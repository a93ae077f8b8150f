package domain

import (
	"regexp"
	"strings"
)

// LinkKind tells which loader a link needs
type LinkKind string

const (
	LinkKindVideo   LinkKind = "video"
	LinkKindWebPage LinkKind = "webpage"
)

var videoLinkPattern = regexp.MustCompile(`^(https?://)?(www\.)?(youtube\.com|youtu\.?be)/.+$`)

// SourceLink is a classified link. It is not modified after creation.
type SourceLink struct {
	Raw  string
	Kind LinkKind
}

// NewSourceLink trims and classifies a raw link.
func NewSourceLink(raw string) SourceLink {
	raw = strings.TrimSpace(raw)
	return SourceLink{Raw: raw, Kind: Classify(raw)}
}

// Classify matches the link against known video-hosting shapes. It never
// validates the URL; anything that isn't a video link is a web page.
func Classify(raw string) LinkKind {
	if videoLinkPattern.MatchString(raw) {
		return LinkKindVideo
	}
	return LinkKindWebPage
}

// URL returns the link with a scheme, defaulting to https.
func (l SourceLink) URL() string {
	if strings.HasPrefix(l.Raw, "http://") || strings.HasPrefix(l.Raw, "https://") {
		return l.Raw
	}
	return "https://" + l.Raw
}
