package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	m.IncRequest("omdb")
	m.ObserveDuration("omdb", time.Second)
	m.IncRetries("omdb")
	m.IncError("omdb", "timeout")
	m.AddReviews(3)
	m.IncStrategy("review-cards")
	m.IncParseFailure("rating")
	m.IncCache("metadata", true)
	m.IncAnalysis("Mixed")
}

func TestCounters(t *testing.T) {
	m := New()
	m.IncRetries("imdb")
	m.IncRetries("imdb")
	m.IncCache("reviews", false)
	m.IncCache("reviews", true)
	m.AddReviews(5)
	m.AddReviews(-1)

	if got := testutil.ToFloat64(m.RetriesTotal.WithLabelValues("imdb")); got != 2 {
		t.Fatalf("retries=%v, want 2", got)
	}
	if got := testutil.ToFloat64(m.CacheLookups.WithLabelValues("reviews", "hit")); got != 1 {
		t.Fatalf("cache hits=%v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ReviewsScraped); got != 5 {
		t.Fatalf("reviews=%v, want 5", got)
	}
}
