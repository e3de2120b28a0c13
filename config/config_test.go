package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "too few reviews",
			mutate: func(cfg *Config) {
				cfg.MaxReviews = 5
			},
			wantErr: "max reviews",
		},
		{
			name: "too many reviews",
			mutate: func(cfg *Config) {
				cfg.MaxReviews = 101
			},
			wantErr: "max reviews",
		},
		{
			name: "empty omdb url",
			mutate: func(cfg *Config) {
				cfg.OMDbURL = ""
			},
			wantErr: "omdb URL",
		},
		{
			name: "invalid reviews url format",
			mutate: func(cfg *Config) {
				cfg.ReviewsURL = "http://"
			},
			wantErr: "reviews URL",
		},
		{
			name: "negative timeout",
			mutate: func(cfg *Config) {
				cfg.Timeout = -1 * time.Second
			},
			wantErr: "timeout",
		},
		{
			name: "zero attempts",
			mutate: func(cfg *Config) {
				cfg.MaxAttempts = 0
			},
			wantErr: "max attempts",
		},
		{
			name: "overlapping thresholds",
			mutate: func(cfg *Config) {
				cfg.PositiveThreshold = -0.2
				cfg.NegativeThreshold = 0.1
			},
			wantErr: "negative threshold",
		},
		{
			name: "unknown analyzer",
			mutate: func(cfg *Config) {
				cfg.Analyzer = "llm"
			},
			wantErr: "analyzer",
		},
		{
			name: "unknown format",
			mutate: func(cfg *Config) {
				cfg.OutputFormat = "xml"
			},
			wantErr: "output format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
	if err := cfg.RequireAPIKey(); err == nil {
		t.Fatalf("default config has no api key")
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cinesent.yaml")
	content := "api_key: file-key\nmax_reviews: 20\nretry_backoff: 500ms\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CINESENT_MAX_REVIEWS", "30")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIKey != "file-key" {
		t.Fatalf("api key=%q, want file-key", cfg.APIKey)
	}
	if cfg.MaxReviews != 30 {
		t.Fatalf("max reviews=%d, want env override 30", cfg.MaxReviews)
	}
	if cfg.RetryBackoff != 500*time.Millisecond {
		t.Fatalf("retry backoff=%v, want 500ms", cfg.RetryBackoff)
	}
	if cfg.Timeout != DefaultConfig().Timeout {
		t.Fatalf("timeout=%v, want default", cfg.Timeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("loaded config should validate: %v", err)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing explicit config file")
	}
}

func TestEnvInt(t *testing.T) {
	t.Setenv("CINESENT_TEST_INT", "42")
	n, ok, err := EnvInt("CINESENT_TEST_INT")
	if err != nil || !ok || n != 42 {
		t.Fatalf("EnvInt = %d, %v, %v", n, ok, err)
	}

	t.Setenv("CINESENT_TEST_INT", "forty")
	if _, _, err := EnvInt("CINESENT_TEST_INT"); err == nil {
		t.Fatalf("expected parse error")
	}

	if _, ok, err := EnvInt("CINESENT_TEST_UNSET"); ok || err != nil {
		t.Fatalf("unset variable should report ok=false, err=nil")
	}
}
