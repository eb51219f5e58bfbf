package cv

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	domain "careerboard/internal/domain/listing"
	"careerboard/internal/listing"
	"careerboard/internal/scoring"
	"careerboard/internal/search"
	"careerboard/internal/store"
)

const (
	suggestionLimit = 5
	// suggestionPool is how many of the newest active jobs are ranked for suggestions.
	suggestionPool = 200
)

var (
	ErrInvalidKey  = errors.New("invalid document key")
	ErrJobNotFound = errors.New("job not found")
)

type Fetcher interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

type Scorer interface {
	Score(ctx context.Context, l scoring.Listing, text string) scoring.Result
}

type Jobs interface {
	Get(ctx context.Context, id string) (store.Item, error)
	List(ctx context.Context, q listing.ListQuery) (listing.ListResult, error)
}

type Analysis struct {
	Analysis      scoring.Result `json:"analysis"`
	SuggestedJobs []store.Item   `json:"suggestedJobs"`
}

type Analyzer struct {
	blobs   Fetcher
	scorer  Scorer
	jobs    Jobs
	extract func([]byte) (string, error)
	logger  *log.Logger
	now     func() time.Time
}

func NewAnalyzer(blobs Fetcher, scorer Scorer, jobs Jobs, logger *log.Logger) *Analyzer {
	if logger == nil {
		logger = log.Default()
	}
	return &Analyzer{
		blobs:   blobs,
		scorer:  scorer,
		jobs:    jobs,
		extract: ExtractText,
		logger:  logger,
		now:     time.Now,
	}
}

// Analyze scores the CV stored under key, optionally against one job, and suggests the
// active jobs that best match the skills found.
func (a *Analyzer) Analyze(ctx context.Context, key, jobID string) (Analysis, error) {
	key = strings.TrimSpace(key)
	if key == "" || !strings.HasSuffix(strings.ToLower(key), ".pdf") {
		return Analysis{}, fmt.Errorf("%w: only .pdf documents can be analyzed", ErrInvalidKey)
	}

	var target scoring.Listing
	if jobID = strings.TrimSpace(jobID); jobID != "" {
		job, err := a.jobs.Get(ctx, jobID)
		if err != nil {
			if errors.Is(err, listing.ErrNotFound) {
				return Analysis{}, ErrJobNotFound
			}
			return Analysis{}, err
		}
		target = listingFromItem(job)
	}

	doc, err := a.blobs.Fetch(ctx, key)
	if err != nil {
		return Analysis{}, err
	}
	text, err := a.extract(doc)
	if err != nil {
		return Analysis{}, err
	}

	res := a.scorer.Score(ctx, target, text)
	out := Analysis{Analysis: res, SuggestedJobs: []store.Item{}}
	if res.Error != "" || len(res.MatchingSkills) == 0 {
		return out, nil
	}

	suggested, err := a.suggest(ctx, res.MatchingSkills, jobID)
	if err != nil {
		a.logger.Printf("[CV] suggestions unavailable: %v", err)
		return out, nil
	}
	out.SuggestedJobs = suggested
	return out, nil
}

func (a *Analyzer) suggest(ctx context.Context, skills []string, excludeID string) ([]store.Item, error) {
	page, err := a.jobs.List(ctx, listing.ListQuery{
		Page:    1,
		Limit:   suggestionPool,
		Filters: map[string]string{"status": "active"},
	})
	if err != nil {
		return nil, err
	}

	cands := make([]search.Candidate, 0, len(page.Items))
	for _, it := range page.Items {
		id := it.String("jobId")
		if id == excludeID && excludeID != "" {
			continue
		}
		cands = append(cands, search.Candidate{
			ID:       id,
			Title:    it.String("role"),
			Skills:   domain.StringList(it["tags"]),
			PostedAt: domain.ParseTimestamp(it["postedOn"]),
			Payload:  it,
		})
	}

	ranked := search.RankCandidates(cands, skills, suggestionLimit, a.now())
	out := make([]store.Item, 0, len(ranked))
	for _, c := range ranked {
		out = append(out, c.Payload.(store.Item))
	}
	return out, nil
}

func listingFromItem(it store.Item) scoring.Listing {
	return scoring.Listing{
		Role:        it.String("role"),
		Company:     it.String("companyName"),
		Location:    it.String("location"),
		Description: it.String("jobDescription"),
		Skills:      domain.StringList(it["tags"]),
	}
}
