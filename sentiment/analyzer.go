// Package sentiment scores review text with a lexicon analyzer and labels the result.
package sentiment

import (
	"fmt"
	"strings"

	bayes "github.com/cdipaolo/sentiment"
	"github.com/jonreiter/govader"
)

// Scores are the polarity magnitudes of one text.
// Compound is in [-1, 1]; Positive, Negative and Neutral are in [0, 1] and sum to about 1.
type Scores struct {
	Compound float64
	Positive float64
	Negative float64
	Neutral  float64
}

// Analyzer computes polarity scores. Implementations hold no per-call state.
type Analyzer interface {
	PolarityScores(text string) Scores
}

const (
	AnalyzerVADER = "vader"
	AnalyzerBayes = "bayes"
)

// New builds the analyzer registered under name.
func New(name string) (Analyzer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", AnalyzerVADER:
		return NewVADER(), nil
	case AnalyzerBayes:
		return NewBayes()
	default:
		return nil, fmt.Errorf("unknown analyzer %q", name)
	}
}

// VADER wraps the govader lexicon and rule-based analyzer.
type VADER struct {
	sia *govader.SentimentIntensityAnalyzer
}

// NewVADER loads the VADER lexicon.
func NewVADER() *VADER {
	return &VADER{sia: govader.NewSentimentIntensityAnalyzer()}
}

func (v *VADER) PolarityScores(text string) Scores {
	s := v.sia.PolarityScores(text)
	return Scores{
		Compound: s.Compound,
		Positive: s.Positive,
		Negative: s.Negative,
		Neutral:  s.Neutral,
	}
}

// Bayes adapts the cdipaolo naive-Bayes model, which votes 0 or 1 per word,
// to the four-way score: Positive and Negative are the vote fractions and
// Compound is their difference. Neutral is 1 only for text with no words.
type Bayes struct {
	model bayes.Models
}

// NewBayes restores the bundled pre-trained model.
func NewBayes() (*Bayes, error) {
	model, err := bayes.Restore()
	if err != nil {
		return nil, fmt.Errorf("restore bayes sentiment model: %w", err)
	}
	return &Bayes{model: model}, nil
}

func (b *Bayes) PolarityScores(text string) Scores {
	if strings.TrimSpace(text) == "" {
		return Scores{Neutral: 1}
	}
	analysis := b.model.SentimentAnalysis(text, bayes.English)
	if len(analysis.Words) == 0 {
		if analysis.Score > 0 {
			return Scores{Compound: 1, Positive: 1}
		}
		return Scores{Compound: -1, Negative: 1}
	}

	positive := 0
	for _, w := range analysis.Words {
		if w.Score > 0 {
			positive++
		}
	}
	total := float64(len(analysis.Words))
	pos := float64(positive) / total
	neg := 1 - pos
	return Scores{
		Compound: pos - neg,
		Positive: pos,
		Negative: neg,
	}
}
