// Package omdb fetches movie metadata from the OMDb API.
package omdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aluiziolira/cinesent/failure"
	"github.com/aluiziolira/cinesent/metrics"
	"github.com/aluiziolira/cinesent/models"
	"github.com/aluiziolira/cinesent/retry"
)

const source = "omdb"

// Client is an OMDb API client.
type Client struct {
	baseURL    string
	apiKey     string
	plot       string
	httpClient *http.Client
	policy     retry.Policy
	metrics    *metrics.Metrics
	retrier    *retry.Retrier
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client, e.g. to install a mock transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRetryPolicy overrides the default 3 attempts / 2 seconds.
func WithRetryPolicy(p retry.Policy) Option {
	return func(c *Client) {
		c.policy = p
	}
}

// WithMetrics records requests, retries and errors on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithFullPlot requests the long plot instead of the short one.
func WithFullPlot() Option {
	return func(c *Client) {
		c.plot = "full"
	}
}

// NewClient creates a new OMDb client.
func NewClient(baseURL, apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("omdb URL is required")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("omdb API key is required")
	}

	c := &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		plot:       "short",
		httpClient: &http.Client{Timeout: 15 * time.Second},
		policy:     retry.DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.retrier = retry.New(c.policy, source, c.metrics)
	return c, nil
}

// Query selects a movie by title (optionally narrowed by year) or by IMDb id.
type Query struct {
	Title string
	Year  string
	ID    string
}

func (q Query) String() string {
	if q.ID != "" {
		return q.ID
	}
	if q.Year != "" {
		return q.Title + " (" + q.Year + ")"
	}
	return q.Title
}

// Fetch looks a movie up by title.
func (c *Client) Fetch(ctx context.Context, title string) (*models.MovieRecord, error) {
	return c.Lookup(ctx, Query{Title: title})
}

// FetchByID looks a movie up by IMDb id.
func (c *Client) FetchByID(ctx context.Context, imdbID string) (*models.MovieRecord, error) {
	return c.Lookup(ctx, Query{ID: imdbID})
}

// Lookup returns the movie for q. Transient failures are retried; a "not found"
// payload and a rejected key are returned immediately.
func (c *Client) Lookup(ctx context.Context, q Query) (*models.MovieRecord, error) {
	q.Title = strings.TrimSpace(q.Title)
	q.ID = strings.TrimSpace(q.ID)
	if q.Title == "" && q.ID == "" {
		return nil, fmt.Errorf("omdb: title or id is required")
	}

	var record *models.MovieRecord
	err := c.retrier.Do(ctx, func(ctx context.Context, attempt int) error {
		resp, err := c.doRequest(ctx, q)
		if err != nil {
			c.metrics.IncError(source, failure.Label(err))
			return err
		}
		rec, err := resp.record(q)
		if err != nil {
			c.metrics.IncError(source, failure.Label(err))
			return err
		}
		record = rec
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("omdb lookup %s: %w", q, err)
	}

	slog.Debug("movie metadata fetched",
		slog.String("title", record.Title),
		slog.String("imdb_id", record.IMDbID),
	)
	return record, nil
}

func (c *Client) doRequest(ctx context.Context, q Query) (*movieResponse, error) {
	params := url.Values{}
	params.Set("apikey", c.apiKey)
	if q.ID != "" {
		params.Set("i", q.ID)
	} else {
		params.Set("t", q.Title)
	}
	if q.Year != "" {
		params.Set("y", q.Year)
	}
	params.Set("plot", c.plot)
	params.Set("r", "json")

	reqURL := c.baseURL
	if strings.Contains(reqURL, "?") {
		reqURL += "&" + params.Encode()
	} else {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.metrics.IncRequest(source)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.ObserveDuration(source, time.Since(start))
	if err != nil {
		return nil, failure.Classify(err, 0)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, failure.Classify(err, 0)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// The Response discriminator only decides on 2xx; otherwise the status does,
		// except that a credential message is terminal at any status.
		msg := strings.TrimSpace(string(body))
		var payload movieResponse
		if jerr := json.Unmarshal(body, &payload); jerr == nil && payload.failed() {
			msg = payload.Error
			if resp.StatusCode == http.StatusUnauthorized || credentialMessage(msg) {
				return nil, failure.ErrInvalidCredential{Reason: msg}
			}
		}
		return nil, failure.Classify(fmt.Errorf("omdb: %s", msg), resp.StatusCode)
	}

	var payload movieResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, failure.ErrParse{Field: "response", Value: truncate(string(body), 64), Err: err}
	}
	return &payload, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
