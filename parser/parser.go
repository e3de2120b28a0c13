package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/aluiziolira/cinesent/failure"
	"github.com/aluiziolira/cinesent/models"
)

// MaxRating is the top of the IMDb user rating scale.
const MaxRating = 10.0

// prefixLength is how much normalized text two reviews must share to count as one.
const prefixLength = 80

var (
	ratingPattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*(?:/\s*(\d+(?:\.\d+)?))?$`)
	spacePattern  = regexp.MustCompile(`\s+`)

	errEmptyRating = errors.New("empty rating")
	errOutOfRange  = errors.New("rating out of range")
	errBadScale    = errors.New("unsupported rating scale")
)

// ValidateReview ensures the scraper captured enough text to score.
// Text must be longer than minLength runes.
func ValidateReview(r *models.Review, minLength int) error {
	if r == nil {
		return fmt.Errorf("review is nil")
	}
	n := utf8.RuneCountInString(strings.TrimSpace(r.Text))
	if n == 0 {
		return fmt.Errorf("review missing text")
	}
	if n <= minLength {
		return fmt.Errorf("review text too short: %d <= %d", n, minLength)
	}
	if r.Rating != nil && (*r.Rating < 0 || *r.Rating > MaxRating) {
		return fmt.Errorf("review rating %.1f outside 0-%.0f", *r.Rating, MaxRating)
	}
	return nil
}

// NormalizeText collapses whitespace runs and trims the ends.
func NormalizeText(text string) string {
	return strings.TrimSpace(spacePattern.ReplaceAllString(text, " "))
}

// ParseRating converts "8/10", "8" or "7.5" into a rating on the 0-10 scale.
// Empty input yields (nil, nil): the review simply has no rating.
// Anything else that does not parse yields a failure.ErrParse and a nil rating.
func ParseRating(raw string) (*float64, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, nil
	}

	m := ratingPattern.FindStringSubmatch(text)
	if m == nil {
		return nil, failure.ErrParse{Field: "rating", Value: raw, Err: errEmptyRatingOr(text)}
	}

	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil, failure.ErrParse{Field: "rating", Value: raw, Err: err}
	}
	if m[2] != "" {
		scale, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return nil, failure.ErrParse{Field: "rating", Value: raw, Err: err}
		}
		if scale != MaxRating {
			return nil, failure.ErrParse{Field: "rating", Value: raw, Err: errBadScale}
		}
	}
	if value < 0 || value > MaxRating {
		return nil, failure.ErrParse{Field: "rating", Value: raw, Err: errOutOfRange}
	}
	return &value, nil
}

func errEmptyRatingOr(text string) error {
	if strings.Trim(text, "/ ") == "" {
		return errEmptyRating
	}
	return fmt.Errorf("no numeric rating in %q", text)
}

// PrefixKey returns a dedupe key built from the start of the normalized, lowercased text.
func PrefixKey(text string) string {
	normalized := strings.ToLower(NormalizeText(text))
	if utf8.RuneCountInString(normalized) <= prefixLength {
		return normalized
	}
	runes := []rune(normalized)
	return string(runes[:prefixLength])
}
