// Package failure defines the error taxonomy shared by the metadata fetcher,
// the review scraper and the pipeline.
package failure

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNetwork indicates a connectivity failure or an unexpected HTTP status.
// StatusCode is zero when no response was received.
type ErrNetwork struct {
	StatusCode int
	Err        error
}

func (e ErrNetwork) Error() string {
	if e.StatusCode != 0 {
		return fmt.Errorf("network: http status %d: %w", e.StatusCode, e.Err).Error()
	}
	return fmt.Errorf("network: %w", e.Err).Error()
}

func (e ErrNetwork) Unwrap() error {
	return e.Err
}

// ErrTimeout indicates a timeout while issuing a request.
type ErrTimeout struct {
	Err error
}

func (e ErrTimeout) Error() string {
	return fmt.Errorf("timeout: %w", e.Err).Error()
}

func (e ErrTimeout) Unwrap() error {
	return e.Err
}

// ErrInvalidCredential indicates the API rejected the configured key.
type ErrInvalidCredential struct {
	Reason string
}

func (e ErrInvalidCredential) Error() string {
	if e.Reason == "" {
		return "invalid_credential"
	}
	return "invalid_credential: " + e.Reason
}

// ErrNotFound indicates the API answered with a definitive "no such movie".
type ErrNotFound struct {
	Query  string
	Reason string
}

func (e ErrNotFound) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("not_found: %q", e.Query)
	}
	return fmt.Sprintf("not_found: %q: %s", e.Query, e.Reason)
}

// ErrNoReviews indicates the review page yielded no usable review with any strategy.
// Err holds the transport failure when the page could not be fetched within the
// attempt ceiling; the outcome stays terminal either way.
type ErrNoReviews struct {
	ID  string
	Err error
}

func (e ErrNoReviews) Error() string {
	if e.Err != nil {
		return fmt.Errorf("no_reviews: %s: %w", e.ID, e.Err).Error()
	}
	return fmt.Sprintf("no_reviews: %s", e.ID)
}

func (e ErrNoReviews) Unwrap() error {
	return e.Err
}

// ErrParse indicates a single field could not be parsed. It is reported per item
// and never aborts a batch.
type ErrParse struct {
	Field string
	Value string
	Err   error
}

func (e ErrParse) Error() string {
	return fmt.Errorf("parse %s %q: %w", e.Field, e.Value, e.Err).Error()
}

func (e ErrParse) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is a transient failure worth another attempt.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var noReviews ErrNoReviews
	if errors.As(err, &noReviews) {
		return false
	}
	var timeout ErrTimeout
	if errors.As(err, &timeout) {
		return true
	}
	var network ErrNetwork
	if errors.As(err, &network) {
		return transientStatus(network.StatusCode)
	}
	return false
}

func transientStatus(code int) bool {
	switch {
	case code == 0:
		return true
	case code == http.StatusRequestTimeout, code == http.StatusTooManyRequests:
		return true
	case code >= http.StatusInternalServerError:
		return true
	default:
		return false
	}
}

// Label returns a stable metric label for err.
func Label(err error) string {
	if err == nil {
		return "unknown"
	}
	var noReviews ErrNoReviews
	if errors.As(err, &noReviews) {
		return "no_reviews"
	}
	var timeout ErrTimeout
	if errors.As(err, &timeout) {
		return "timeout"
	}
	var network ErrNetwork
	if errors.As(err, &network) {
		return "network"
	}
	var credential ErrInvalidCredential
	if errors.As(err, &credential) {
		return "invalid_credential"
	}
	var notFound ErrNotFound
	if errors.As(err, &notFound) {
		return "not_found"
	}
	var parse ErrParse
	if errors.As(err, &parse) {
		return "parse"
	}
	return "other"
}

// Message returns the human-readable text shown to the user for a terminal failure.
func Message(err error) string {
	switch Label(err) {
	case "invalid_credential":
		return "The API key was rejected. Check the OMDb API key and try again."
	case "not_found":
		var notFound ErrNotFound
		errors.As(err, &notFound)
		return fmt.Sprintf("No movie details found for %q. Try a different title.", notFound.Query)
	case "no_reviews":
		var noReviews ErrNoReviews
		if errors.As(err, &noReviews) && noReviews.Err != nil {
			return "No reviews could be retrieved for this movie. The review page was unreachable; retry later."
		}
		return "No reviews found for this movie."
	case "timeout":
		return "The request timed out. Please retry later."
	case "network":
		return "A network error occurred while contacting the service. Please retry later."
	case "parse":
		return "The service returned data that could not be read."
	case "unknown":
		return ""
	default:
		return "Unexpected error: " + err.Error()
	}
}
