package cv

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	domain "careerboard/internal/domain/listing"
	"careerboard/internal/listing"
	"careerboard/internal/scoring"
	"careerboard/internal/store"
)

type fakeFetcher struct {
	keys []string
	err  error
}

func (f *fakeFetcher) Fetch(_ context.Context, key string) ([]byte, error) {
	f.keys = append(f.keys, key)
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.4 fake"), nil
}

type fakeScorer struct {
	res     scoring.Result
	listing scoring.Listing
	text    string
}

func (f *fakeScorer) Score(_ context.Context, l scoring.Listing, text string) scoring.Result {
	f.listing, f.text = l, text
	return f.res
}

type fakeJobs struct {
	items []store.Item
}

func (f fakeJobs) Get(_ context.Context, id string) (store.Item, error) {
	for _, it := range f.items {
		if it.String("jobId") == id {
			return it, nil
		}
	}
	return nil, listing.ErrNotFound
}

func (f fakeJobs) List(context.Context, listing.ListQuery) (listing.ListResult, error) {
	return listing.ListResult{Items: f.items}, nil
}

var testNow = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

func newAnalyzer(f Fetcher, s Scorer, j Jobs) *Analyzer {
	a := NewAnalyzer(f, s, j, log.New(io.Discard, "", 0))
	a.extract = func([]byte) (string, error) { return "Go developer with AWS", nil }
	a.now = func() time.Time { return testNow }
	return a
}

func jobItem(id, role string, tags ...string) store.Item {
	return store.Item{
		"jobId":    id,
		"role":     role,
		"tags":     tags,
		"status":   "active",
		"postedOn": domain.FormatTimestamp(testNow.Add(-time.Hour)),
	}
}

func TestAnalyzer_RejectsNonPDFKey(t *testing.T) {
	f := &fakeFetcher{}
	a := newAnalyzer(f, &fakeScorer{}, fakeJobs{})
	if _, err := a.Analyze(context.Background(), "resumes/a.docx", ""); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
	if len(f.keys) != 0 {
		t.Fatalf("document must not be fetched")
	}
}

func TestAnalyzer_ScoresAgainstJobAndSuggests(t *testing.T) {
	jobs := fakeJobs{items: []store.Item{
		jobItem("target", "Backend Engineer", "go"),
		jobItem("a", "Go Developer", "go", "aws"),
		jobItem("b", "Designer", "figma"),
		jobItem("c", "Cloud Engineer", "aws"),
	}}
	sc := &fakeScorer{res: scoring.Result{Score: 70, MatchingSkills: []string{"Go", "AWS"}}}
	a := newAnalyzer(&fakeFetcher{}, sc, jobs)

	out, err := a.Analyze(context.Background(), "resumes/a.PDF", "target")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if sc.listing.Role != "Backend Engineer" || sc.text == "" {
		t.Fatalf("scorer not given job context: %+v", sc.listing)
	}
	if out.Analysis.Score != 70 {
		t.Fatalf("unexpected analysis: %+v", out.Analysis)
	}
	if len(out.SuggestedJobs) != 2 || out.SuggestedJobs[0].String("jobId") != "a" || out.SuggestedJobs[1].String("jobId") != "c" {
		t.Fatalf("unexpected suggestions: %+v", out.SuggestedJobs)
	}
}

func TestAnalyzer_UnknownJob(t *testing.T) {
	a := newAnalyzer(&fakeFetcher{}, &fakeScorer{}, fakeJobs{})
	if _, err := a.Analyze(context.Background(), "resumes/a.pdf", "missing"); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
}

func TestAnalyzer_NotAResumeHasNoSuggestions(t *testing.T) {
	sc := &fakeScorer{res: scoring.Result{Error: scoring.NotResumeMessage, MatchingSkills: []string{"Go"}}}
	a := newAnalyzer(&fakeFetcher{}, sc, fakeJobs{items: []store.Item{jobItem("a", "Go Developer", "go")}})

	out, err := a.Analyze(context.Background(), "resumes/a.pdf", "")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.Analysis.Error == "" || len(out.SuggestedJobs) != 0 {
		t.Fatalf("unexpected output: %+v", out)
	}
}

func TestAnalyzer_FetchError(t *testing.T) {
	boom := errors.New("s3 down")
	a := newAnalyzer(&fakeFetcher{err: boom}, &fakeScorer{}, fakeJobs{})
	if _, err := a.Analyze(context.Background(), "resumes/a.pdf", ""); !errors.Is(err, boom) {
		t.Fatalf("expected fetch error, got %v", err)
	}
}

func TestExtractText_RejectsNonPDF(t *testing.T) {
	if _, err := ExtractText([]byte("hello")); !errors.Is(err, ErrUnreadableDocument) {
		t.Fatalf("expected ErrUnreadableDocument, got %v", err)
	}
	if _, err := ExtractText([]byte("%PDF-1.4 truncated")); !errors.Is(err, ErrUnreadableDocument) {
		t.Fatalf("expected ErrUnreadableDocument for malformed pdf, got %v", err)
	}
}
