package failure

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		statusCode int
		expected   string
		retryable  bool
	}{
		{name: "nil", err: nil, statusCode: 0, expected: "unknown", retryable: false},
		{name: "ok status", err: nil, statusCode: http.StatusOK, expected: "unknown", retryable: false},
		{name: "context timeout", err: context.DeadlineExceeded, expected: "timeout", retryable: true},
		{name: "net timeout", err: &net.DNSError{IsTimeout: true}, expected: "timeout", retryable: true},
		{name: "connection", err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, expected: "network", retryable: true},
		{name: "unauthorized", statusCode: http.StatusUnauthorized, expected: "invalid_credential", retryable: false},
		{name: "server error", statusCode: http.StatusBadGateway, expected: "network", retryable: true},
		{name: "rate limited", statusCode: http.StatusTooManyRequests, expected: "network", retryable: true},
		{name: "forbidden", statusCode: http.StatusForbidden, expected: "network", retryable: false},
		{name: "canceled", err: context.Canceled, expected: "other", retryable: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := Classify(tt.err, tt.statusCode)
			if got := Label(classified); got != tt.expected {
				t.Fatalf("Label(Classify(%v, %d)) = %q, want %q", tt.err, tt.statusCode, got, tt.expected)
			}
			if got := IsRetryable(classified); got != tt.retryable {
				t.Fatalf("IsRetryable = %v, want %v", got, tt.retryable)
			}
		})
	}
}

func TestTerminalErrorsAreNotRetryable(t *testing.T) {
	terminal := []error{
		ErrInvalidCredential{Reason: "Invalid API key!"},
		ErrNotFound{Query: "Xyzzy123"},
		ErrNoReviews{ID: "tt0000001"},
		ErrNoReviews{ID: "tt0000001", Err: ErrTimeout{Err: context.DeadlineExceeded}},
		ErrParse{Field: "rating", Value: "abc", Err: errors.New("bad")},
	}
	for _, err := range terminal {
		if IsRetryable(err) {
			t.Fatalf("%v should not be retryable", err)
		}
		if IsRetryable(fmt.Errorf("wrapped: %w", err)) {
			t.Fatalf("wrapped %v should not be retryable", err)
		}
	}
}

func TestMessagesAreDistinct(t *testing.T) {
	errs := []error{
		ErrInvalidCredential{},
		ErrNotFound{Query: "Xyzzy123"},
		ErrNoReviews{ID: "tt0000001"},
		ErrNetwork{Err: errors.New("connection reset")},
		ErrTimeout{Err: context.DeadlineExceeded},
	}
	seen := make(map[string]bool)
	for _, err := range errs {
		msg := Message(fmt.Errorf("op: %w", err))
		if msg == "" {
			t.Fatalf("empty message for %v", err)
		}
		if seen[msg] {
			t.Fatalf("duplicate message %q", msg)
		}
		seen[msg] = true
	}
}

func TestNoReviewsKeepsCause(t *testing.T) {
	cause := ErrNetwork{StatusCode: http.StatusBadGateway, Err: errors.New("bad gateway")}
	err := fmt.Errorf("scrape: %w", ErrNoReviews{ID: "tt1375666", Err: cause})

	if got := Label(err); got != "no_reviews" {
		t.Fatalf("Label = %q, want no_reviews", got)
	}
	var network ErrNetwork
	if !errors.As(err, &network) || network.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected network cause to stay reachable, got %v", err)
	}
	if Message(err) == Message(ErrNoReviews{ID: "tt1375666"}) {
		t.Fatalf("unreachable page should read differently from an empty one")
	}
}
