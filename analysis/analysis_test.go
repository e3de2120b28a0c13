package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aluiziolira/cinesent/models"
	"github.com/aluiziolira/cinesent/sentiment"
)

func rating(v float64) *float64 {
	return &v
}

func result(compound float64, r *float64) models.SentimentResult {
	return models.SentimentResult{
		Review:   models.Review{Text: "review text long enough to count", Rating: r},
		Label:    sentiment.DefaultThresholds().Classify(compound),
		Compound: compound,
	}
}

func TestAggregateRecommendScenario(t *testing.T) {
	results := []models.SentimentResult{
		result(0.6, rating(8)),
		result(0.4, rating(9)),
		result(0.5, rating(7)),
	}

	s, err := Aggregate(results, DefaultPolicy())
	require.NoError(t, err)

	assert.InDelta(t, 0.5, s.AverageSentiment, 1e-9)
	require.NotNil(t, s.AverageRating)
	assert.InDelta(t, 8.0, *s.AverageRating, 1e-9)
	assert.Equal(t, models.Recommend, s.Recommendation)
	assert.Equal(t, models.Positive, s.Overall)
	assert.Equal(t, 3, s.Positive)
	assert.Equal(t, 3, s.RatedCount)
}

func TestAggregateUnknownRatings(t *testing.T) {
	results := []models.SentimentResult{
		result(0.9, nil),
		result(0.8, nil),
	}

	s, err := Aggregate(results, DefaultPolicy())
	require.NoError(t, err)

	assert.Nil(t, s.AverageRating, "all-unknown ratings must be unavailable, not zero")
	assert.Equal(t, 0, s.RatedCount)
	assert.InDelta(t, 0.85, s.AverageSentiment, 1e-9)
	assert.Equal(t, models.Mixed, s.Recommendation)
}

func TestAggregateRatingAverageSkipsUnknown(t *testing.T) {
	results := []models.SentimentResult{
		result(-0.5, rating(2)),
		result(-0.3, nil),
		result(-0.4, rating(4)),
	}

	s, err := Aggregate(results, DefaultPolicy())
	require.NoError(t, err)

	require.NotNil(t, s.AverageRating)
	assert.InDelta(t, 3.0, *s.AverageRating, 1e-9)
	assert.InDelta(t, -0.4, s.AverageSentiment, 1e-9)
	assert.Equal(t, models.DoNotRecommend, s.Recommendation)
}

func TestAggregateCountsSumToTotal(t *testing.T) {
	results := []models.SentimentResult{
		result(0.7, rating(9)),
		result(-0.7, rating(1)),
		result(0.01, nil),
		result(0.05, rating(5)),
		result(-0.2, nil),
	}

	s, err := Aggregate(results, DefaultPolicy())
	require.NoError(t, err)

	assert.Equal(t, s.Total, s.Positive+s.Negative+s.Neutral)
	assert.Equal(t, 1, s.Positive)
	assert.Equal(t, 2, s.Negative)
	assert.Equal(t, 2, s.Neutral)
}

func TestAggregateEmptyBatch(t *testing.T) {
	_, err := Aggregate(nil, DefaultPolicy())
	assert.ErrorIs(t, err, ErrEmptyBatch)
}

func TestRecommend(t *testing.T) {
	p := DefaultPolicy()
	tests := []struct {
		name      string
		sentiment float64
		rating    *float64
		want      models.Tier
	}{
		{name: "strong positive", sentiment: 0.5, rating: rating(8), want: models.Recommend},
		{name: "rating boundary inclusive", sentiment: 0.11, rating: rating(7), want: models.Recommend},
		{name: "sentiment boundary exclusive", sentiment: 0.1, rating: rating(9), want: models.Mixed},
		{name: "positive but low rating", sentiment: 0.5, rating: rating(5), want: models.Mixed},
		{name: "strong negative", sentiment: -0.5, rating: rating(3), want: models.DoNotRecommend},
		{name: "negative rating boundary inclusive", sentiment: -0.2, rating: rating(4), want: models.DoNotRecommend},
		{name: "negative but decent rating", sentiment: -0.5, rating: rating(6), want: models.Mixed},
		{name: "unavailable rating", sentiment: 0.9, rating: nil, want: models.Mixed},
		{name: "unavailable rating negative", sentiment: -0.9, rating: nil, want: models.Mixed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Recommend(tt.sentiment, tt.rating, p))
		})
	}
}
