package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. CINESENT_API_KEY.
const EnvPrefix = "CINESENT"

// Load builds a Config from defaults, an optional YAML file and CINESENT_* environment variables.
// An empty path searches ./cinesent.yaml and ~/.cinesent/cinesent.yaml; a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("cinesent")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".cinesent"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("omdb_url", d.OMDbURL)
	v.SetDefault("api_key", d.APIKey)
	v.SetDefault("reviews_url", d.ReviewsURL)
	v.SetDefault("max_reviews", d.MaxReviews)
	v.SetDefault("min_review_length", d.MinReviewLength)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("max_attempts", d.MaxAttempts)
	v.SetDefault("retry_backoff", d.RetryBackoff)
	v.SetDefault("user_agent", d.UserAgent)
	v.SetDefault("metadata_ttl", d.MetadataTTL)
	v.SetDefault("reviews_ttl", d.ReviewsTTL)
	v.SetDefault("cache_size", d.CacheSize)
	v.SetDefault("analyzer", d.Analyzer)
	v.SetDefault("positive_threshold", d.PositiveThreshold)
	v.SetDefault("negative_threshold", d.NegativeThreshold)
	v.SetDefault("output_file", d.OutputFile)
	v.SetDefault("output_format", d.OutputFormat)
	v.SetDefault("filter", d.Filter)
	v.SetDefault("verbose", d.Verbose)
	v.SetDefault("metrics_addr", d.MetricsAddr)
}

// EnvString returns the value of key and whether it was set to a non-empty value.
func EnvString(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return "", false
	}
	return strings.TrimSpace(value), true
}

// EnvInt parses key as an integer. ok is false when the variable is unset.
func EnvInt(key string) (int, bool, error) {
	value, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", key, err)
	}
	return n, true, nil
}
