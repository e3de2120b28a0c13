package pipeline

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/aluiziolira/cinesent/config"
	"github.com/aluiziolira/cinesent/failure"
	"github.com/aluiziolira/cinesent/metrics"
	"github.com/aluiziolira/cinesent/models"
	"github.com/aluiziolira/cinesent/omdb"
	"github.com/aluiziolira/cinesent/sentiment"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type mockFetcher struct {
	mu      sync.Mutex
	calls   int
	records map[string]*models.MovieRecord
}

func (mf *mockFetcher) Lookup(_ context.Context, q omdb.Query) (*models.MovieRecord, error) {
	mf.mu.Lock()
	defer mf.mu.Unlock()
	mf.calls++
	rec, ok := mf.records[q.Title]
	if !ok {
		return nil, failure.ErrNotFound{Query: q.Title, Reason: "Movie not found!"}
	}
	return rec, nil
}

type mockScraper struct {
	mu      sync.Mutex
	calls   int
	reviews map[string][]models.Review
	err     error
}

func (ms *mockScraper) Scrape(_ context.Context, imdbID string, max int) ([]models.Review, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.calls++
	if ms.err != nil {
		return nil, ms.err
	}
	reviews := ms.reviews[imdbID]
	if len(reviews) > max {
		reviews = reviews[:max]
	}
	return reviews, nil
}

// textAnalyzer returns a fixed compound per review text.
type textAnalyzer map[string]float64

func (ta textAnalyzer) PolarityScores(text string) sentiment.Scores {
	c := ta[text]
	return sentiment.Scores{Compound: c, Positive: math.Max(c, 0), Negative: math.Max(-c, 0), Neutral: 1 - math.Abs(c)}
}

func ptr(v float64) *float64 {
	return &v
}

func newTestPipeline(t *testing.T, fetcher MetadataFetcher, scraper ReviewScraper, analyzer sentiment.Analyzer) (*Pipeline, *metrics.Metrics) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.APIKey = "test-key"
	scorer, err := sentiment.NewScorer(analyzer, sentiment.DefaultThresholds())
	if err != nil {
		t.Fatalf("new scorer: %v", err)
	}
	m := metrics.New()
	p := NewPipeline(cfg, fetcher, scraper, scorer, m)
	p.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return p, m
}

func inceptionFixtures() (*mockFetcher, *mockScraper, textAnalyzer) {
	fetcher := &mockFetcher{records: map[string]*models.MovieRecord{
		"Inception": {Title: "Inception", Year: "2010", IMDbID: "tt1375666"},
	}}
	scraper := &mockScraper{reviews: map[string][]models.Review{
		"tt1375666": {
			{Text: "first review", Rating: ptr(8)},
			{Text: "second review", Rating: ptr(9)},
			{Text: "third review", Rating: ptr(7)},
		},
	}}
	analyzer := textAnalyzer{"first review": 0.6, "second review": 0.4, "third review": 0.5}
	return fetcher, scraper, analyzer
}

func TestPipelineRunRecommends(t *testing.T) {
	fetcher, scraper, analyzer := inceptionFixtures()
	p, m := newTestPipeline(t, fetcher, scraper, analyzer)

	report, err := p.Run(context.Background(), "Inception", RunOptions{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if report.Movie.IMDbID != "tt1375666" {
		t.Fatalf("imdb id=%q", report.Movie.IMDbID)
	}
	if len(report.Reviews) != 3 {
		t.Fatalf("reviews=%d, want 3", len(report.Reviews))
	}
	if report.Reviews[1].Text != "second review" {
		t.Fatalf("review order not preserved: %q", report.Reviews[1].Text)
	}
	s := report.Summary
	if math.Abs(s.AverageSentiment-0.5) > 1e-9 {
		t.Fatalf("average sentiment=%v, want 0.5", s.AverageSentiment)
	}
	if s.AverageRating == nil || math.Abs(*s.AverageRating-8) > 1e-9 {
		t.Fatalf("average rating=%v, want 8", s.AverageRating)
	}
	if s.Recommendation != models.Recommend {
		t.Fatalf("tier=%q, want Recommend", s.Recommendation)
	}
	if !report.GeneratedAt.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)) {
		t.Fatalf("generated at=%v", report.GeneratedAt)
	}
	if got := testutil.ToFloat64(m.AnalysesTotal.WithLabelValues(string(models.Recommend))); got != 1 {
		t.Fatalf("analyses=%v, want 1", got)
	}
}

func TestPipelineRunUsesCache(t *testing.T) {
	fetcher, scraper, analyzer := inceptionFixtures()
	p, m := newTestPipeline(t, fetcher, scraper, analyzer)

	for i := 0; i < 3; i++ {
		if _, err := p.Run(context.Background(), "Inception", RunOptions{}); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
	if fetcher.calls != 1 || scraper.calls != 1 {
		t.Fatalf("fetch calls=%d scrape calls=%d, want 1 and 1", fetcher.calls, scraper.calls)
	}
	if got := testutil.ToFloat64(m.CacheLookups.WithLabelValues("metadata", "hit")); got != 2 {
		t.Fatalf("metadata hits=%v, want 2", got)
	}

	// A different review limit is a different key.
	if _, err := p.Run(context.Background(), "Inception", RunOptions{MaxReviews: 2}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if scraper.calls != 2 {
		t.Fatalf("scrape calls=%d, want 2", scraper.calls)
	}
}

func TestPipelineNotFoundIsNotCached(t *testing.T) {
	fetcher, scraper, analyzer := inceptionFixtures()
	p, _ := newTestPipeline(t, fetcher, scraper, analyzer)

	for i := 0; i < 2; i++ {
		_, err := p.Run(context.Background(), "Xyzzy123", RunOptions{})
		var notFound failure.ErrNotFound
		if !errors.As(err, &notFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	}
	if fetcher.calls != 2 {
		t.Fatalf("fetch calls=%d, want 2", fetcher.calls)
	}
	if scraper.calls != 0 {
		t.Fatalf("scraper must not run without a movie")
	}
}

type countingAnalyzer struct {
	calls int
}

func (ca *countingAnalyzer) PolarityScores(string) sentiment.Scores {
	ca.calls++
	return sentiment.Scores{Neutral: 1}
}

func TestPipelineHaltsBeforeScoringWithoutReviews(t *testing.T) {
	tests := []struct {
		name    string
		scraper *mockScraper
	}{
		{name: "empty result", scraper: &mockScraper{reviews: map[string][]models.Review{}}},
		{name: "scraper error", scraper: &mockScraper{err: failure.ErrNoReviews{ID: "tt1375666"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher, _, _ := inceptionFixtures()
			analyzer := &countingAnalyzer{}
			p, _ := newTestPipeline(t, fetcher, tt.scraper, analyzer)

			report, err := p.Run(context.Background(), "Inception", RunOptions{})
			if report != nil {
				t.Fatalf("expected no report")
			}
			var noReviews failure.ErrNoReviews
			if !errors.As(err, &noReviews) {
				t.Fatalf("expected no reviews, got %v", err)
			}
			if analyzer.calls != 0 {
				t.Fatalf("scorer ran %d times, want 0", analyzer.calls)
			}
		})
	}
}

func TestPipelineUnknownRatings(t *testing.T) {
	fetcher, _, _ := inceptionFixtures()
	scraper := &mockScraper{reviews: map[string][]models.Review{
		"tt1375666": {{Text: "first review"}, {Text: "second review"}},
	}}
	p, _ := newTestPipeline(t, fetcher, scraper, textAnalyzer{"first review": 0.9, "second review": 0.7})

	report, err := p.Run(context.Background(), "Inception", RunOptions{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Summary.AverageRating != nil {
		t.Fatalf("average rating should be unavailable, got %v", *report.Summary.AverageRating)
	}
	if report.Summary.Recommendation != models.Mixed {
		t.Fatalf("tier=%q, want Mixed", report.Summary.Recommendation)
	}
}
