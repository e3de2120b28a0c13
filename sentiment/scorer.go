package sentiment

import (
	"fmt"

	"github.com/aluiziolira/cinesent/models"
)

// Thresholds partition the compound range into three labels:
// (Positive, 1] is Positive, [-1, Negative) is Negative, and the closed band between is Neutral.
type Thresholds struct {
	Positive float64
	Negative float64
}

// DefaultThresholds returns the ±0.05 partition.
func DefaultThresholds() Thresholds {
	return Thresholds{Positive: 0.05, Negative: -0.05}
}

// Validate rejects bands that would overlap.
func (t Thresholds) Validate() error {
	if t.Negative > t.Positive {
		return fmt.Errorf("negative threshold %.3f exceeds positive threshold %.3f", t.Negative, t.Positive)
	}
	if t.Positive > 1 || t.Negative < -1 {
		return fmt.Errorf("thresholds must lie within [-1, 1]")
	}
	return nil
}

// Classify labels a compound score.
func (t Thresholds) Classify(compound float64) models.Label {
	switch {
	case compound > t.Positive:
		return models.Positive
	case compound < t.Negative:
		return models.Negative
	default:
		return models.Neutral
	}
}

// Scorer turns reviews into sentiment results. It is safe for concurrent use
// as long as the Analyzer is.
type Scorer struct {
	analyzer   Analyzer
	thresholds Thresholds
}

// NewScorer returns a Scorer using a and t.
func NewScorer(a Analyzer, t Thresholds) (*Scorer, error) {
	if a == nil {
		return nil, fmt.Errorf("analyzer is required")
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{analyzer: a, thresholds: t}, nil
}

// Thresholds returns the partition the Scorer labels with.
func (s *Scorer) Thresholds() Thresholds {
	return s.thresholds
}

// Score scores one review.
func (s *Scorer) Score(r models.Review) models.SentimentResult {
	scores := s.analyzer.PolarityScores(r.Text)
	return models.SentimentResult{
		Review:   r,
		Label:    s.thresholds.Classify(scores.Compound),
		Compound: scores.Compound,
		Positive: scores.Positive,
		Negative: scores.Negative,
		Neutral:  scores.Neutral,
	}
}

// ScoreAll scores a batch; result i belongs to reviews[i].
func (s *Scorer) ScoreAll(reviews []models.Review) []models.SentimentResult {
	out := make([]models.SentimentResult, len(reviews))
	for i, r := range reviews {
		out[i] = s.Score(r)
	}
	return out
}
