package stream

import "time"

// Company is one entry of an enriched article's companies list.
// Confidence arrives wire-side as a string-encoded float and is
// normalized to float64 by the transformer. Only name and confidence are
// kept; other keys of a wire entry are dropped.
type Company struct {
	Name       string   `json:"name"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// RawArticle is the undecorated article variant delivered by the /raw
// stream: date coercion only, no sentiment/company/category enrichment.
type RawArticle struct {
	Link        string    `json:"link"`
	Title       string    `json:"title"`
	PublishDate time.Time `json:"publishDate"`
	Source      string    `json:"source"`
	Language    string    `json:"language"`
	Summary     string    `json:"summary,omitempty"`
	Images      []string  `json:"images,omitempty"`
}

// EnrichedArticle is the full article variant delivered by the default
// stream: publishDate, createdAt, confidence, and per-company confidence
// are normalized from their string-encoded wire forms.
type EnrichedArticle struct {
	Link        string    `json:"link"`
	Title       string    `json:"title"`
	PublishDate time.Time `json:"publishDate"`
	Source      string    `json:"source"`
	Language    string    `json:"language"`
	Summary     string    `json:"summary,omitempty"`
	Images      []string  `json:"images,omitempty"`

	Sentiment  string     `json:"sentiment,omitempty"`
	Confidence *float64   `json:"confidence,omitempty"`
	Content    string     `json:"content,omitempty"`
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
	Companies  []Company  `json:"companies,omitempty"`
	Categories []string   `json:"categories,omitempty"`
	Countries  []string   `json:"countries,omitempty"`
}
