package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aluiziolira/cinesent/analysis"
	"github.com/aluiziolira/cinesent/cache"
	"github.com/aluiziolira/cinesent/config"
	"github.com/aluiziolira/cinesent/failure"
	"github.com/aluiziolira/cinesent/metrics"
	"github.com/aluiziolira/cinesent/models"
	"github.com/aluiziolira/cinesent/omdb"
	"github.com/aluiziolira/cinesent/sentiment"
)

const source = "pipeline"

// MetadataFetcher looks movies up. *omdb.Client implements it.
type MetadataFetcher interface {
	Lookup(ctx context.Context, q omdb.Query) (*models.MovieRecord, error)
}

// ReviewScraper fetches reviews for an IMDb id. *scraper.Scraper implements it.
type ReviewScraper interface {
	Scrape(ctx context.Context, imdbID string, max int) ([]models.Review, error)
}

// Pipeline runs fetch, scrape, score and aggregate in sequence.
// Metadata and reviews are cached per (operation, identifier, parameters).
type Pipeline struct {
	fetcher    MetadataFetcher
	scraper    ReviewScraper
	scorer     *sentiment.Scorer
	policy     analysis.Policy
	maxReviews int
	keyPrint   string

	movies  *cache.Store[*models.MovieRecord]
	reviews *cache.Store[[]models.Review]
	metrics *metrics.Metrics

	now func() time.Time
}

// NewPipeline wires the stages together using the cache and limit settings in cfg.
func NewPipeline(cfg *config.Config, fetcher MetadataFetcher, scraper ReviewScraper, scorer *sentiment.Scorer, m *metrics.Metrics) *Pipeline {
	policy := analysis.DefaultPolicy()
	policy.Thresholds = scorer.Thresholds()

	return &Pipeline{
		fetcher:    fetcher,
		scraper:    scraper,
		scorer:     scorer,
		policy:     policy,
		maxReviews: cfg.MaxReviews,
		keyPrint:   cache.Fingerprint(cfg.APIKey),
		movies:     cache.New[*models.MovieRecord]("metadata", cfg.CacheSize, cfg.MetadataTTL, m),
		reviews:    cache.New[[]models.Review]("reviews", cfg.CacheSize, cfg.ReviewsTTL, m),
		metrics:    m,
		now:        time.Now,
	}
}

// RunOptions narrows a single run.
type RunOptions struct {
	Year       string
	MaxReviews int
}

// Run analyses title and returns the report. It stops before scoring when no review was found.
func (p *Pipeline) Run(ctx context.Context, title string, opts RunOptions) (*models.Report, error) {
	start := time.Now()

	movie, err := p.Movie(ctx, omdb.Query{Title: title, Year: opts.Year})
	if err != nil {
		return nil, p.fail("fetch", err)
	}
	if movie.IMDbID == "" {
		return nil, p.fail("fetch", failure.ErrNotFound{Query: title, Reason: "no identifier"})
	}
	slog.Debug("stage complete", slog.String("stage", "fetch"), slog.Duration("elapsed", time.Since(start)))

	stageStart := time.Now()
	reviews, err := p.Reviews(ctx, movie.IMDbID, opts.MaxReviews)
	if err != nil {
		return nil, p.fail("scrape", err)
	}
	if len(reviews) == 0 {
		return nil, p.fail("scrape", failure.ErrNoReviews{ID: movie.IMDbID})
	}
	slog.Debug("stage complete", slog.String("stage", "scrape"), slog.Int("reviews", len(reviews)), slog.Duration("elapsed", time.Since(stageStart)))

	stageStart = time.Now()
	results := p.scorer.ScoreAll(reviews)
	summary, err := analysis.Aggregate(results, p.policy)
	if err != nil {
		return nil, p.fail("aggregate", err)
	}
	slog.Debug("stage complete", slog.String("stage", "score"), slog.Duration("elapsed", time.Since(stageStart)))

	p.metrics.IncAnalysis(string(summary.Recommendation))
	slog.Info("analysis complete",
		slog.String("title", movie.Title),
		slog.String("imdb_id", movie.IMDbID),
		slog.Int("reviews", summary.Total),
		slog.String("recommendation", string(summary.Recommendation)),
		slog.Duration("elapsed", time.Since(start)),
	)

	return &models.Report{
		Movie:       movie,
		Summary:     summary,
		Reviews:     results,
		GeneratedAt: p.now().UTC(),
	}, nil
}

// Movie returns the metadata for q, from the cache when it is still fresh.
func (p *Pipeline) Movie(ctx context.Context, q omdb.Query) (*models.MovieRecord, error) {
	if strings.TrimSpace(q.Title) == "" && strings.TrimSpace(q.ID) == "" {
		return nil, fmt.Errorf("a title or imdb id is required")
	}
	key := cache.Key("metadata", q.Title, q.ID, q.Year, p.keyPrint)
	movie, hit, err := p.movies.GetOrLoad(ctx, key, func(ctx context.Context) (*models.MovieRecord, error) {
		return p.fetcher.Lookup(ctx, q)
	})
	if err != nil {
		return nil, err
	}
	if hit {
		slog.Debug("metadata cache hit", slog.String("query", q.String()))
	}
	return movie, nil
}

// Reviews returns up to max reviews for imdbID, from the cache when still fresh.
func (p *Pipeline) Reviews(ctx context.Context, imdbID string, max int) ([]models.Review, error) {
	if max <= 0 {
		max = p.maxReviews
	}
	key := cache.Key("reviews", imdbID, cache.IntPart(max))
	reviews, hit, err := p.reviews.GetOrLoad(ctx, key, func(ctx context.Context) ([]models.Review, error) {
		return p.scraper.Scrape(ctx, imdbID, max)
	})
	if err != nil {
		return nil, err
	}
	if hit {
		slog.Debug("reviews cache hit", slog.String("imdb_id", imdbID))
	}
	return reviews, nil
}

func (p *Pipeline) fail(stage string, err error) error {
	p.metrics.IncError(source, failure.Label(err))
	slog.Error("analysis failed",
		slog.String("stage", stage),
		slog.String("error_type", failure.Label(err)),
		slog.Any("error", err),
	)
	return fmt.Errorf("%s: %w", stage, err)
}
