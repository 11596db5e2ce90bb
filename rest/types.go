package rest

import (
	"strconv"
	"time"

	json "github.com/goccy/go-json"
)

// FlexibleTime decodes an ISO-8601 wire string into a time.Time. Named
// fields that carry it get string->date coercion for free, per spec.md
// §1's "ingested-response type coercion (string→date ... on named
// fields)".
type FlexibleTime struct {
	time.Time
}

func (t *FlexibleTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// FlexibleFloat decodes a string-encoded number into a float64, per
// spec.md §1's "string→float on named fields".
type FlexibleFloat float64

func (f *FlexibleFloat) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if s == "" {
			*f = 0
			return nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*f = FlexibleFloat(parsed)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = FlexibleFloat(v)
	return nil
}

// ArticleResponse is a single article as ingested from the REST API, with
// the named coercions applied.
type ArticleResponse struct {
	Link        string       `json:"link"`
	Title       string       `json:"title"`
	PublishDate FlexibleTime `json:"publishDate"`
	Source      string       `json:"source"`
	Confidence  FlexibleFloat `json:"confidence"`
}

// ArticlesResponse is the paginated article-list envelope.
type ArticlesResponse struct {
	Articles []ArticleResponse `json:"articles"`
	Total    int               `json:"total"`
}
