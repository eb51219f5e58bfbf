// Package listing holds the data-model boundary shared by every resource type.
package listing

import (
	"fmt"
	"strings"
	"time"
)

// NotMentioned is the sentinel filter value that selects items whose field is absent or empty.
const NotMentioned = "Not Mentioned"

// LastUpdatedField is touched on every successful update.
const LastUpdatedField = "lastUpdated"

// StringList coerces a persisted array-typed attribute into an ordered list of strings.
// Both a literal list and a comma-joined string are accepted; blanks are dropped.
func StringList(v any) []string {
	switch tv := v.(type) {
	case nil:
		return []string{}
	case []string:
		return cleanList(tv)
	case []any:
		raw := make([]string, 0, len(tv))
		for _, e := range tv {
			if e == nil {
				continue
			}
			raw = append(raw, fmt.Sprint(e))
		}
		return cleanList(raw)
	case string:
		return cleanList(strings.Split(tv, ","))
	default:
		return cleanList([]string{fmt.Sprint(tv)})
	}
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp reads an ISO-8601 attribute. Missing or unparsable values yield the zero
// time, which callers treat as the oldest possible value.
func ParseTimestamp(v any) time.Time {
	s, ok := v.(string)
	if !ok {
		return time.Time{}
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// FormatTimestamp renders t the way timestamps are persisted.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
