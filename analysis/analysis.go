// Package analysis reduces scored reviews to summary statistics and a recommendation.
package analysis

import (
	"errors"

	"github.com/aluiziolira/cinesent/models"
	"github.com/aluiziolira/cinesent/sentiment"
)

// ErrEmptyBatch is returned when there is nothing to aggregate.
var ErrEmptyBatch = errors.New("analysis: empty batch")

// Policy holds the recommendation cut-offs.
type Policy struct {
	RecommendSentiment    float64 // average sentiment must exceed this
	RecommendRating       float64 // and average rating must be at least this
	NotRecommendSentiment float64 // average sentiment must be below this
	NotRecommendRating    float64 // and average rating must be at most this

	// Thresholds label the average compound as the overall sentiment.
	Thresholds sentiment.Thresholds
}

// DefaultPolicy returns the 0.1 / 7.0 and -0.1 / 4.0 cut-offs.
func DefaultPolicy() Policy {
	return Policy{
		RecommendSentiment:    0.1,
		RecommendRating:       7.0,
		NotRecommendSentiment: -0.1,
		NotRecommendRating:    4.0,
		Thresholds:            sentiment.DefaultThresholds(),
	}
}

// Aggregate computes the summary of results.
// The sentiment average covers every review; the rating average covers rated reviews only
// and stays nil when none is rated.
func Aggregate(results []models.SentimentResult, p Policy) (models.Summary, error) {
	if len(results) == 0 {
		return models.Summary{}, ErrEmptyBatch
	}

	var (
		s         models.Summary
		compound  float64
		ratingSum float64
	)
	s.Total = len(results)
	for _, r := range results {
		compound += r.Compound
		if r.HasRating() {
			ratingSum += *r.Rating
			s.RatedCount++
		}
		switch r.Label {
		case models.Positive:
			s.Positive++
		case models.Negative:
			s.Negative++
		default:
			s.Neutral++
		}
	}

	s.AverageSentiment = compound / float64(s.Total)
	if s.RatedCount > 0 {
		avg := ratingSum / float64(s.RatedCount)
		s.AverageRating = &avg
	}
	s.Overall = OverallLabel(s, p.Thresholds)
	s.Recommendation = Recommend(s.AverageSentiment, s.AverageRating, p)
	return s, nil
}

// Recommend picks the tier. An unavailable rating fails both rating conditions.
func Recommend(avgSentiment float64, avgRating *float64, p Policy) models.Tier {
	if avgRating == nil {
		return models.Mixed
	}
	switch {
	case avgSentiment > p.RecommendSentiment && *avgRating >= p.RecommendRating:
		return models.Recommend
	case avgSentiment < p.NotRecommendSentiment && *avgRating <= p.NotRecommendRating:
		return models.DoNotRecommend
	default:
		return models.Mixed
	}
}

// OverallLabel labels the summary's average compound.
func OverallLabel(s models.Summary, t sentiment.Thresholds) models.Label {
	return t.Classify(s.AverageSentiment)
}
