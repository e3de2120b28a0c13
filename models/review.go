package models

import "time"

// Review is one user review scraped from the review page.
// A nil Rating means the rating was absent or could not be parsed.
type Review struct {
	Text   string   `json:"review" jsonschema:"required"`
	Rating *float64 `json:"rating,omitempty" jsonschema:"minimum=0,maximum=10"`
}

// HasRating reports whether the review carries a known numeric rating.
func (r Review) HasRating() bool {
	return r.Rating != nil
}

// Label is the categorical sentiment of a compound score.
type Label string

const (
	Positive Label = "Positive"
	Negative Label = "Negative"
	Neutral  Label = "Neutral"
)

// SentimentResult is the sentiment of exactly one Review.
type SentimentResult struct {
	Review
	Label    Label   `json:"sentiment" jsonschema:"required,enum=Positive,enum=Negative,enum=Neutral"`
	Compound float64 `json:"compound" jsonschema:"minimum=-1,maximum=1"`
	Positive float64 `json:"positive" jsonschema:"minimum=0,maximum=1"`
	Negative float64 `json:"negative" jsonschema:"minimum=0,maximum=1"`
	Neutral  float64 `json:"neutral" jsonschema:"minimum=0,maximum=1"`
}

// Tier is the recommendation category derived from a Summary.
type Tier string

const (
	Recommend      Tier = "Recommend"
	DoNotRecommend Tier = "Do not recommend"
	Mixed          Tier = "Mixed"
)

// Headline returns the sentence shown next to the tier for a movie title.
func (t Tier) Headline(title string) string {
	switch t {
	case Recommend:
		return "I highly recommend '" + title + "'! It has received positive reviews and high ratings."
	case DoNotRecommend:
		return "I do not recommend '" + title + "'... It has received negative reviews and low ratings."
	default:
		return "You may enjoy watching '" + title + "'! It has received mixed reviews and ratings."
	}
}

// Summary holds the aggregate statistics of a scored batch.
// Positive+Negative+Neutral always equals Total.
type Summary struct {
	Total            int      `json:"total" jsonschema:"required"`
	AverageSentiment float64  `json:"average_sentiment" jsonschema:"required"`
	AverageRating    *float64 `json:"average_rating,omitempty"`
	RatedCount       int      `json:"rated_count"`
	Positive         int      `json:"positive"`
	Negative         int      `json:"negative"`
	Neutral          int      `json:"neutral"`
	Overall          Label    `json:"overall_sentiment"`
	Recommendation   Tier     `json:"recommendation" jsonschema:"required"`
}

// Report is the read-only snapshot of one analysis run.
type Report struct {
	Movie       *MovieRecord      `json:"movie,omitempty"`
	Summary     Summary           `json:"summary" jsonschema:"required"`
	Reviews     []SentimentResult `json:"reviews" jsonschema:"required"`
	GeneratedAt time.Time         `json:"generated_at"`
}
