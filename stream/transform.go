package stream

import (
	"strconv"
	"time"
)

// transformEnriched coerces a raw wire payload (already JSON-decoded into
// a generic map) into an EnrichedArticle, per spec.md §4.8: publishDate
// and createdAt are parsed from ISO-8601 only when present as strings,
// confidence (top-level and per-company) is parsed from a string-encoded
// float only when present and non-empty, and the other string and
// string-list fields of EnrichedArticle are copied as-is. Keys that
// EnrichedArticle or Company do not declare are dropped, including any
// company-entry keys other than name and confidence. Fields that
// already arrive as native Go types (as
// opposed to wire strings) are left untouched, making the function a
// no-op on an already-native payload.
func transformEnriched(data map[string]any) EnrichedArticle {
	a := EnrichedArticle{
		Link:     stringField(data, "link"),
		Title:    stringField(data, "title"),
		Source:   stringField(data, "source"),
		Language: stringField(data, "language"),
		Summary:  stringField(data, "summary"),
		Images:   stringSliceField(data, "images"),

		Sentiment:  stringField(data, "sentiment"),
		Content:    stringField(data, "content"),
		Categories: stringSliceField(data, "categories"),
		Countries:  stringSliceField(data, "countries"),
	}

	if t, ok := parseFlexibleTime(data["publishDate"]); ok {
		a.PublishDate = t
	}
	if t, ok := parseFlexibleTime(data["createdAt"]); ok {
		a.CreatedAt = &t
	}
	if f, ok := parseFlexibleFloat(data["confidence"]); ok {
		a.Confidence = &f
	}
	if companies, ok := data["companies"].([]any); ok {
		a.Companies = make([]Company, 0, len(companies))
		for _, raw := range companies {
			cm, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			c := Company{Name: stringField(cm, "name")}
			if f, ok := parseFlexibleFloat(cm["confidence"]); ok {
				c.Confidence = &f
			}
			a.Companies = append(a.Companies, c)
		}
	}

	return a
}

// transformRaw performs date coercion only, per spec.md §4.8's "Raw
// variant performs only date coercion."
func transformRaw(data map[string]any) RawArticle {
	a := RawArticle{
		Link:     stringField(data, "link"),
		Title:    stringField(data, "title"),
		Source:   stringField(data, "source"),
		Language: stringField(data, "language"),
		Summary:  stringField(data, "summary"),
		Images:   stringSliceField(data, "images"),
	}
	if t, ok := parseFlexibleTime(data["publishDate"]); ok {
		a.PublishDate = t
	}
	return a
}

func stringField(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func stringSliceField(m map[string]any, key string) []string {
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// parseFlexibleTime parses v as ISO-8601 when it is a non-empty string.
// A value that is already a time.Time (i.e. not decoded from wire JSON)
// is returned unchanged, making repeated transformation a no-op.
func parseFlexibleTime(v any) (time.Time, bool) {
	switch val := v.(type) {
	case string:
		if val == "" {
			return time.Time{}, false
		}
		t, err := time.Parse(time.RFC3339, val)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	case time.Time:
		return val, true
	default:
		return time.Time{}, false
	}
}

// parseFlexibleFloat parses v as a float when it is a truthy
// string-encoded number. A value that already arrives as a float64 is
// returned unchanged.
func parseFlexibleFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case string:
		if val == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case float64:
		return val, true
	default:
		return 0, false
	}
}
