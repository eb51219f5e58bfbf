package scoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Weakness is either a plain remark or a rewrite suggestion for a passage of the CV.
type Weakness struct {
	Text         string `json:"-"`
	OriginalText string `json:"originalText,omitempty"`
	ImprovedText string `json:"improvedText,omitempty"`
}

func (w Weakness) IsSuggestion() bool {
	return w.OriginalText != "" || w.ImprovedText != ""
}

func (w Weakness) MarshalJSON() ([]byte, error) {
	if !w.IsSuggestion() {
		return json.Marshal(w.Text)
	}
	type pair struct {
		OriginalText string `json:"originalText"`
		ImprovedText string `json:"improvedText"`
	}
	return json.Marshal(pair{OriginalText: w.OriginalText, ImprovedText: w.ImprovedText})
}

func (w *Weakness) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return errors.New("empty weakness")
	}
	if b[0] == '"' {
		*w = Weakness{}
		return json.Unmarshal(b, &w.Text)
	}
	var pair struct {
		OriginalText string `json:"originalText"`
		ImprovedText string `json:"improvedText"`
	}
	if err := json.Unmarshal(b, &pair); err != nil {
		return err
	}
	*w = Weakness{OriginalText: pair.OriginalText, ImprovedText: pair.ImprovedText}
	return nil
}

// Score is a whole-number rating. Models sometimes answer with a fraction or a quoted
// number; both are rounded to the nearest integer.
type Score int

func (s *Score) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = 0
		return nil
	}
	raw := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		raw = strings.TrimSuffix(strings.TrimSpace(raw), "%")
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("invalid score %s", b)
	}
	*s = Score(math.Round(max(-1, min(f, 101))))
	return nil
}

type Result struct {
	Score          Score      `json:"score"`
	Strengths      []string   `json:"strengths"`
	Weaknesses     []Weakness `json:"weaknesses"`
	Improvements   []string   `json:"improvements"`
	MatchingSkills []string   `json:"matchingSkills"`
	MissingSkills  []string   `json:"missingSkills"`
	// Error is set when the submitted document was rejected as not being a CV.
	Error string `json:"error,omitempty"`
}

// FallbackResult is returned whenever the model cannot be reached or its reply cannot be read.
func FallbackResult() Result {
	return Result{
		Score:          50,
		Strengths:      []string{"Unable to analyze strengths at this time"},
		Weaknesses:     []Weakness{{Text: "Unable to analyze weaknesses at this time"}},
		Improvements:   []string{"Please try again later for detailed suggestions"},
		MatchingSkills: []string{},
		MissingSkills:  []string{},
	}
}

func (r *Result) normalize() {
	if r.Score < 0 {
		r.Score = 0
	}
	if r.Score > 100 {
		r.Score = 100
	}
	if r.Strengths == nil {
		r.Strengths = []string{}
	}
	if r.Weaknesses == nil {
		r.Weaknesses = []Weakness{}
	}
	if r.Improvements == nil {
		r.Improvements = []string{}
	}
	if r.MatchingSkills == nil {
		r.MatchingSkills = []string{}
	}
	if r.MissingSkills == nil {
		r.MissingSkills = []string{}
	}
}
