package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds analysis configuration.
type Config struct {
	OMDbURL           string        `mapstructure:"omdb_url"`
	APIKey            string        `mapstructure:"api_key"`
	ReviewsURL        string        `mapstructure:"reviews_url"`
	MaxReviews        int           `mapstructure:"max_reviews"`
	MinReviewLength   int           `mapstructure:"min_review_length"`
	Timeout           time.Duration `mapstructure:"timeout"`
	MaxAttempts       int           `mapstructure:"max_attempts"`
	RetryBackoff      time.Duration `mapstructure:"retry_backoff"`
	UserAgent         string        `mapstructure:"user_agent"`
	MetadataTTL       time.Duration `mapstructure:"metadata_ttl"`
	ReviewsTTL        time.Duration `mapstructure:"reviews_ttl"`
	CacheSize         int           `mapstructure:"cache_size"`
	Analyzer          string        `mapstructure:"analyzer"` // vader or bayes
	PositiveThreshold float64       `mapstructure:"positive_threshold"`
	NegativeThreshold float64       `mapstructure:"negative_threshold"`
	OutputFile        string        `mapstructure:"output_file"`
	OutputFormat      string        `mapstructure:"output_format"` // csv, json, or dual
	Filter            string        `mapstructure:"filter"`
	Verbose           bool          `mapstructure:"verbose"`
	MetricsAddr       string        `mapstructure:"metrics_addr"`
}

const (
	MinMaxReviews = 10
	MaxMaxReviews = 100
)

// DefaultConfig returns conservative defaults for OMDb and IMDb.
func DefaultConfig() *Config {
	return &Config{
		OMDbURL:           "http://www.omdbapi.com/",
		ReviewsURL:        "https://www.imdb.com",
		MaxReviews:        50,
		MinReviewLength:   20,
		Timeout:           15 * time.Second,
		MaxAttempts:       3,
		RetryBackoff:      2 * time.Second,
		UserAgent:         "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36",
		MetadataTTL:       24 * time.Hour,
		ReviewsTTL:        time.Hour,
		CacheSize:         128,
		Analyzer:          "vader",
		PositiveThreshold: 0.05,
		NegativeThreshold: -0.05,
		OutputFile:        "",
		OutputFormat:      "csv",
		Verbose:           false,
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if err := validateURL("omdb URL", c.OMDbURL); err != nil {
		return err
	}
	if err := validateURL("reviews URL", c.ReviewsURL); err != nil {
		return err
	}
	if c.MaxReviews < MinMaxReviews || c.MaxReviews > MaxMaxReviews {
		return fmt.Errorf("max reviews must be between %d and %d", MinMaxReviews, MaxMaxReviews)
	}
	if c.MinReviewLength < 0 {
		return fmt.Errorf("min review length cannot be negative")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("max attempts must be positive")
	}
	if c.RetryBackoff < 0 {
		return fmt.Errorf("retry backoff cannot be negative")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if c.MetadataTTL <= 0 || c.ReviewsTTL <= 0 {
		return fmt.Errorf("cache ttl must be positive")
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("cache size must be positive")
	}
	if c.Analyzer != "vader" && c.Analyzer != "bayes" {
		return fmt.Errorf("analyzer must be vader or bayes")
	}
	if c.NegativeThreshold > c.PositiveThreshold {
		return fmt.Errorf("negative threshold (%v) cannot exceed positive threshold (%v)", c.NegativeThreshold, c.PositiveThreshold)
	}
	if c.OutputFormat != "csv" && c.OutputFormat != "json" && c.OutputFormat != "dual" {
		return fmt.Errorf("output format must be csv, json, or dual")
	}
	return nil
}

// RequireAPIKey reports a missing API key; commands that call the metadata API use it.
func (c *Config) RequireAPIKey() error {
	if c.APIKey == "" {
		return fmt.Errorf("api key cannot be empty (set --api-key or CINESENT_API_KEY)")
	}
	return nil
}

func validateURL(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s cannot be empty", name)
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s must include a host", name)
	}
	return nil
}
