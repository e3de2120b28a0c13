package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/aluiziolira/cinesent/config"
	"github.com/aluiziolira/cinesent/failure"
	"github.com/aluiziolira/cinesent/metrics"
	"github.com/aluiziolira/cinesent/models"
	"github.com/aluiziolira/cinesent/parser"
	"github.com/aluiziolira/cinesent/retry"
)

const (
	source = "reviews"

	ctxBody   = "body"
	ctxStatus = "status"
)

var idPattern = regexp.MustCompile(`^tt\d+$`)

// Scraper wraps the colly collector, the retry policy and the extraction cascade.
type Scraper struct {
	cfg        *config.Config
	collector  *colly.Collector
	retrier    *retry.Retrier
	strategies []Strategy
	Metrics    *metrics.Metrics
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithStrategies replaces the default extraction cascade.
func WithStrategies(strategies ...Strategy) Option {
	return func(s *Scraper) {
		s.strategies = strategies
	}
}

// WithRetryPolicy overrides the attempt ceiling and backoff taken from the config.
func WithRetryPolicy(p retry.Policy) Option {
	return func(s *Scraper) {
		s.retrier = retry.New(p, source, s.Metrics)
	}
}

// NewScraper builds a synchronous scraper for the review site in cfg.
func NewScraper(cfg *config.Config, m *metrics.Metrics, opts ...Option) (*Scraper, error) {
	parsed, err := url.Parse(cfg.ReviewsURL)
	if err != nil {
		return nil, fmt.Errorf("parse reviews url: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("reviews url must include a host")
	}

	collector := colly.NewCollector(
		colly.AllowedDomains(parsed.Hostname()),
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
	)
	collector.SetRequestTimeout(cfg.Timeout)
	collector.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})

	s := &Scraper{
		cfg:        cfg,
		collector:  collector,
		strategies: DefaultStrategies(),
		Metrics:    m,
	}
	s.retrier = retry.New(retry.Policy{MaxAttempts: cfg.MaxAttempts, Backoff: cfg.RetryBackoff}, source, m)
	for _, opt := range opts {
		opt(s)
	}
	s.configureHandlers()
	return s, nil
}

// Scrape fetches the review page for imdbID and returns at most max reviews.
// A page that cannot be fetched within the attempt ceiling, a 404, or a page
// on which no strategy finds a review all end in failure.ErrNoReviews.
func (s *Scraper) Scrape(ctx context.Context, imdbID string, max int) ([]models.Review, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	imdbID = strings.TrimSpace(imdbID)
	if !idPattern.MatchString(imdbID) {
		return nil, fmt.Errorf("invalid imdb id %q", imdbID)
	}
	if max <= 0 {
		max = s.cfg.MaxReviews
	}

	target := s.reviewsURL(imdbID)
	start := time.Now()

	var (
		reviews  []models.Review
		strategy string
	)
	err := s.retrier.Do(ctx, func(ctx context.Context, attempt int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc, err := s.fetch(imdbID, target)
		if err != nil {
			return err
		}
		reviews, strategy = s.extract(doc, max)
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("scrape %s: %w", imdbID, ctxErr)
		}
		var noReviews failure.ErrNoReviews
		if errors.As(err, &noReviews) {
			return nil, err
		}
		if failure.IsRetryable(err) {
			return nil, failure.ErrNoReviews{ID: imdbID, Err: err}
		}
		return nil, fmt.Errorf("scrape %s: %w", imdbID, err)
	}

	if len(reviews) == 0 {
		slog.Info("no reviews extracted", slog.String("imdb_id", imdbID))
		return nil, failure.ErrNoReviews{ID: imdbID}
	}

	s.Metrics.IncStrategy(strategy)
	s.Metrics.AddReviews(len(reviews))
	slog.Info("reviews scraped",
		slog.String("imdb_id", imdbID),
		slog.String("strategy", strategy),
		slog.Int("count", len(reviews)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return reviews, nil
}

func (s *Scraper) reviewsURL(imdbID string) string {
	return strings.TrimSuffix(s.cfg.ReviewsURL, "/") + "/title/" + imdbID + "/reviews"
}

func (s *Scraper) configureHandlers() {
	s.collector.OnRequest(func(r *colly.Request) {
		r.Ctx.Put("start", time.Now())
		r.Headers.Set("Accept-Language", "en-US,en;q=0.9")
		s.Metrics.IncRequest(source)
	})

	s.collector.OnResponse(func(r *colly.Response) {
		r.Ctx.Put(ctxStatus, r.StatusCode)
		r.Ctx.Put(ctxBody, r.Body)
		if start, ok := r.Ctx.GetAny("start").(time.Time); ok {
			s.Metrics.ObserveDuration(source, time.Since(start))
		}
	})

	s.collector.OnError(func(r *colly.Response, err error) {
		status := 0
		if r != nil {
			status = r.StatusCode
			if r.Ctx != nil {
				r.Ctx.Put(ctxStatus, status)
			}
		}
		url := ""
		if r != nil && r.Request != nil && r.Request.URL != nil {
			url = r.Request.URL.String()
		}
		slog.Warn("review page request failed",
			slog.String("url", url),
			slog.Int("status", status),
			slog.Any("error", err),
		)
	})
}

// fetch issues one GET and parses the body into a document.
func (s *Scraper) fetch(imdbID, target string) (*goquery.Document, error) {
	cctx := colly.NewContext()
	err := s.collector.Request(http.MethodGet, target, nil, cctx, nil)
	status, _ := cctx.GetAny(ctxStatus).(int)

	if status == http.StatusNotFound {
		s.Metrics.IncError(source, "no_reviews")
		return nil, failure.ErrNoReviews{ID: imdbID}
	}
	if err != nil || status >= http.StatusBadRequest {
		classified := failure.Classify(err, status)
		if status == http.StatusUnauthorized {
			classified = failure.ErrNetwork{StatusCode: status, Err: err}
		}
		s.Metrics.IncError(source, failure.Label(classified))
		return nil, classified
	}

	body, _ := cctx.GetAny(ctxBody).([]byte)
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		s.Metrics.IncParseFailure("document")
		return nil, failure.ErrParse{Field: "document", Value: target, Err: err}
	}
	return doc, nil
}

// extract runs the cascade and returns the first non-empty result with the winning strategy's name.
func (s *Scraper) extract(doc *goquery.Document, max int) ([]models.Review, string) {
	for _, strategy := range s.strategies {
		reviews := s.collect(strategy.Extract(doc), max)
		if len(reviews) > 0 {
			return reviews, strategy.Name()
		}
		slog.Debug("extraction strategy found nothing", slog.String("strategy", strategy.Name()))
	}
	return nil, ""
}

// collect normalizes candidates, drops short and repeated texts, and parses ratings.
// An unparseable rating leaves the review unrated; it never drops the review.
func (s *Scraper) collect(candidates []Candidate, max int) []models.Review {
	seen := make(map[string]struct{}, len(candidates))
	reviews := make([]models.Review, 0, min(len(candidates), max))

	for _, c := range candidates {
		if len(reviews) >= max {
			break
		}
		review := models.Review{Text: parser.NormalizeText(c.Text)}
		if err := parser.ValidateReview(&review, s.cfg.MinReviewLength); err != nil {
			continue
		}
		key := parser.PrefixKey(review.Text)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		rating, err := parser.ParseRating(c.Rating)
		if err != nil {
			s.Metrics.IncParseFailure("rating")
			slog.Debug("rating not parsed", slog.String("raw", c.Rating), slog.Any("error", err))
		}
		review.Rating = rating
		reviews = append(reviews, review)
	}
	return reviews
}
