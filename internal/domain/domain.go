package domain

import "time"

// Mode selects which summarization target an input belongs to.
type Mode string

const (
	ModeURL  Mode = "url"
	ModeText Mode = "text"
)

// SourceProfile maps a news source to the class selectors its article
// pages use for content containers. Domains holds regex patterns matched
// against full URLs.
type SourceProfile struct {
	Name      string
	Domains   []string
	Selectors []string
	FeedURL   string
}

type ExtractedContent struct {
	Text      string
	WordCount int
}

type SummaryRequest struct {
	Content  string
	MinWords int
	MaxWords int
}

type SummaryResult struct {
	Headline string
	Body     string
}

// Input is the full request signature for one summarization action.
// Two inputs are the same request iff all fields are equal.
type Input struct {
	Mode           Mode
	URL            string
	Text           string
	Source         string
	CustomSelector string
	MinWords       int
	MaxWords       int
}

type FeedItem struct {
	Title     string
	URL       string
	Published time.Time
}
