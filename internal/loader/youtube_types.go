package loader

type playerResponse struct {
	VideoDetails *struct {
		VideoID string `json:"videoId"`
		Title   string `json:"title"`
		Author  string `json:"author"`
	} `json:"videoDetails"`
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" = auto-generated
}

// Timedtext XML comes in two shapes: the legacy <transcript><text> list and
// format 3 <timedtext><body><p> paragraphs with optional <s> word segments.
type timedText struct {
	Lines      []timedLine      `xml:"text"`
	Paragraphs []timedParagraph `xml:"body>p"`
}

type timedLine struct {
	Text string `xml:",chardata"`
}

type timedParagraph struct {
	Text     string      `xml:",chardata"`
	Segments []timedLine `xml:"s"`
}
