// Package scoring asks a generative model to rate a CV against a listing.
package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxCandidateText = 20000
	notResumeCode    = "NOT_A_RESUME"
	// NotResumeMessage is surfaced in Result.Error when the document was rejected.
	NotResumeMessage = "The uploaded document does not appear to be a resume"
)

var ErrProviderUnavailable = errors.New("scoring provider unavailable")

// Provider completes a single prompt.
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Listing carries the descriptive fields of the listing a CV is scored against. A zero
// Listing scores the CV on its own merits.
type Listing struct {
	Role        string
	Company     string
	Location    string
	Description string
	Skills      []string
}

func (l Listing) empty() bool {
	return l.Role == "" && l.Company == "" && l.Description == "" && len(l.Skills) == 0
}

type Scorer struct {
	provider Provider
	timeout  time.Duration
	logger   *log.Logger
}

func NewScorer(p Provider, timeout time.Duration, logger *log.Logger) *Scorer {
	if logger == nil {
		logger = log.Default()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Scorer{provider: p, timeout: timeout, logger: logger}
}

// Score never fails; any provider or parse failure yields FallbackResult.
func (s *Scorer) Score(ctx context.Context, l Listing, text string) Result {
	if s.provider == nil {
		return FallbackResult()
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.provider.Complete(ctx, BuildPrompt(l, text))
	if err != nil {
		s.logger.Printf("[Scoring] provider error: %v", err)
		return FallbackResult()
	}

	res, err := ParseResult(raw)
	if err != nil {
		s.logger.Printf("[Scoring] parse error: %v", err)
		return FallbackResult()
	}
	return res
}

// ParseResult decodes a model reply, tolerating markdown code fences around the JSON.
func ParseResult(raw string) (Result, error) {
	body := StripCodeFence(raw)
	if body == "" {
		return Result{}, errors.New("empty response")
	}

	var probe struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(body), &probe); err != nil {
		return Result{}, fmt.Errorf("decode response: %w", err)
	}
	if probe.Error != "" {
		r := Result{Error: NotResumeMessage}
		if probe.Error != notResumeCode {
			r.Error = probe.Error
		}
		r.normalize()
		return r, nil
	}

	var r Result
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		return Result{}, fmt.Errorf("decode response: %w", err)
	}
	r.normalize()
	return r, nil
}

// StripCodeFence removes a leading ```/```json fence and the matching closing fence.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

const scorePrompt = `
You are an experienced technical recruiter. Evaluate the candidate CV below%s.

### INSTRUCTIONS:
1. If the text is not a CV or resume, reply with exactly {"error": "%s"} and nothing else.
2. Otherwise score the overall fit from 0 to 100.
3. List concrete strengths, weaknesses and improvements.
4. A weakness may be a plain string, or an object {"originalText": "...", "improvedText": "..."} quoting a passage of the CV and a better rewrite.
5. Format the output as valid JSON only. Do not wrap the output in markdown code blocks.

### OUTPUT SCHEMA:
{
    "score": 0,
    "strengths": ["..."],
    "weaknesses": ["..." or {"originalText": "...", "improvedText": "..."}],
    "improvements": ["..."],
    "matchingSkills": ["skills from the CV that the role needs"],
    "missingSkills": ["skills the role needs that the CV lacks"]
}
%s
### CANDIDATE CV:
%s
`

func BuildPrompt(l Listing, text string) string {
	text = strings.TrimSpace(text)
	text = truncateUTF8(text, maxCandidateText)

	target := " for general employability as a software professional"
	listing := ""
	if !l.empty() {
		target = " against the job listing"
		b := strings.Builder{}
		b.WriteString("\n### JOB LISTING:\n")
		writeField(&b, "Role", l.Role)
		writeField(&b, "Company", l.Company)
		writeField(&b, "Location", l.Location)
		writeField(&b, "Skills", strings.Join(l.Skills, ", "))
		writeField(&b, "Description", l.Description)
		listing = b.String()
	}
	return fmt.Sprintf(scorePrompt, target, notResumeCode, listing, text)
}

// truncateUTF8 cuts s to at most n bytes without splitting a multi-byte character.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func writeField(b *strings.Builder, name, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	b.WriteString(name)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteByte('\n')
}
