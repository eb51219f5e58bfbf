package search

import "strings"

// Normalize lower-cases input, drops every character outside [a-z0-9 ] and collapses runs
// of spaces.
func Normalize(input string) string {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return ""
	}

	b := strings.Builder{}
	b.Grow(len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '\t' || r == '\n':
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Compact is Normalize with the spaces removed.
func Compact(input string) string {
	return strings.ReplaceAll(Normalize(input), " ", "")
}

// Query is a free-text search term prepared once and matched against many fields.
type Query struct {
	normalized string
	compact    string
}

func NewQuery(q string) Query {
	n := Normalize(q)
	return Query{normalized: n, compact: strings.ReplaceAll(n, " ", "")}
}

func (q Query) Empty() bool {
	return q.normalized == ""
}

// Matches reports whether the normalized field contains the normalized query as a substring.
// The comparison is retried with spaces removed on both sides so "Node.js" matches
// "Node JS Developer".
func (q Query) Matches(field string) bool {
	if q.Empty() {
		return true
	}
	n := Normalize(field)
	if n == "" {
		return false
	}
	if strings.Contains(n, q.normalized) {
		return true
	}
	return strings.Contains(strings.ReplaceAll(n, " ", ""), q.compact)
}

// MatchesAny reports whether at least one field matches.
func (q Query) MatchesAny(fields ...string) bool {
	if q.Empty() {
		return true
	}
	for _, f := range fields {
		if q.Matches(f) {
			return true
		}
	}
	return false
}
