package search

import (
	"sort"
	"strings"
	"time"
)

// Candidate is a listing considered for a suggestion.
type Candidate struct {
	ID       string
	Title    string
	Skills   []string
	PostedAt time.Time
	Payload  any
}

type CandidateScore struct {
	Overlap   float64
	Freshness float64
	Final     float64
}

// ComputeOverlap counts how many of skills appear in the candidate's title or skill list.
func ComputeOverlap(c Candidate, skills []string) float64 {
	if len(skills) == 0 {
		return 0
	}

	fields := make([]string, 0, len(c.Skills)+1)
	fields = append(fields, c.Title)
	fields = append(fields, c.Skills...)

	score := 0.0
	for _, s := range skills {
		q := NewQuery(s)
		if q.Empty() {
			continue
		}
		if q.MatchesAny(fields...) {
			score++
		}
	}
	return score
}

func ComputeFreshness(postedAt time.Time, now time.Time) float64 {
	if postedAt.IsZero() {
		return 0
	}
	age := now.Sub(postedAt)
	if age < 0 {
		age = 0
	}

	switch {
	case age <= 24*time.Hour:
		return 5
	case age <= 3*24*time.Hour:
		return 4
	case age <= 7*24*time.Hour:
		return 3
	case age <= 14*24*time.Hour:
		return 2
	case age <= 30*24*time.Hour:
		return 1
	}
	return 0
}

func ScoreCandidate(c Candidate, skills []string, now time.Time) CandidateScore {
	overlap := ComputeOverlap(c, skills)
	fresh := ComputeFreshness(c.PostedAt, now)
	return CandidateScore{
		Overlap:   overlap,
		Freshness: fresh,
		Final:     overlap*2.0 + fresh*0.5,
	}
}

// RankCandidates returns at most limit candidates with at least one overlapping skill,
// best first. Ties keep input order.
func RankCandidates(cands []Candidate, skills []string, limit int, now time.Time) []Candidate {
	type scored struct {
		idx   int
		score CandidateScore
	}

	clean := make([]string, 0, len(skills))
	for _, s := range skills {
		if s = strings.TrimSpace(s); s != "" {
			clean = append(clean, s)
		}
	}

	hits := make([]scored, 0, len(cands))
	for i := range cands {
		sc := ScoreCandidate(cands[i], clean, now)
		if sc.Overlap == 0 {
			continue
		}
		hits = append(hits, scored{idx: i, score: sc})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].score.Final > hits[j].score.Final
	})

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]Candidate, 0, len(hits))
	for _, h := range hits {
		out = append(out, cands[h.idx])
	}
	return out
}
