package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aluiziolira/cinesent/filter"
	"github.com/aluiziolira/cinesent/models"
)

func printMovie(w io.Writer, m *models.MovieRecord) {
	fmt.Fprintln(w, "Movie Details")
	fmt.Fprintln(w, strings.Repeat("=", 13))
	field := func(name, value string) {
		if value != "" {
			fmt.Fprintf(w, "%-10s %s\n", name+":", value)
		}
	}
	field("Title", m.Title)
	field("Year", m.Year)
	field("Rated", m.Rated)
	field("Released", m.Released)
	field("Runtime", m.Runtime)
	field("Genre", m.Genre)
	field("Director", m.Director)
	field("Writer", m.Writer)
	field("Cast", strings.Join(m.Cast, ", "))
	field("Language", m.Language)
	field("Country", m.Country)
	field("Awards", m.Awards)
	if m.IMDbRating != nil {
		field("IMDb", formatRating(*m.IMDbRating)+"/10")
	}
	field("IMDb ID", m.IMDbID)
	field("Poster", m.PosterURL)
	if m.Plot != "" {
		fmt.Fprintf(w, "\n%s\n", m.Plot)
	}
}

func printSummary(w io.Writer, title string, s models.Summary) {
	fmt.Fprintln(w, "Summary & Recommendation")
	fmt.Fprintln(w, strings.Repeat("=", 24))
	fmt.Fprintf(w, "Overall Sentiment: %s (average compound %.4f)\n", s.Overall, s.AverageSentiment)
	if s.AverageRating != nil {
		fmt.Fprintf(w, "Average Rating:    %.2f/10 (%d of %d reviews rated)\n", *s.AverageRating, s.RatedCount, s.Total)
	} else {
		fmt.Fprintln(w, "Average Rating:    unavailable")
	}
	fmt.Fprintf(w, "Reviews:           %d positive, %d negative, %d neutral\n", s.Positive, s.Negative, s.Neutral)
	fmt.Fprintf(w, "\n%s: %s\n", s.Recommendation, s.Recommendation.Headline(title))
}

// printReviews lists results; total is the scored count before any filter.
func printReviews(w io.Writer, results []models.SentimentResult, total, width int, expression string) {
	if expression == "" {
		fmt.Fprintf(w, "Reviews (%d)\n", total)
	} else {
		fmt.Fprintf(w, "Reviews (%d of %d matching %s)\n", len(results), total, expression)
	}
	fmt.Fprintln(w, strings.Repeat("-", 11))
	for i, r := range results {
		rating := "unknown"
		if r.Rating != nil {
			rating = formatRating(*r.Rating) + "/10"
		}
		fmt.Fprintf(w, "Review %d: [%s] %s (compound %.4f)\n", i+1, rating, r.Label, r.Compound)
		fmt.Fprintf(w, "  %s\n\n", clip(r.Text, width))
	}
}

// printReport renders the report; a nil filter lists every review.
func printReport(w io.Writer, report *models.Report, f *filter.Filter, width int) {
	title := ""
	if report.Movie != nil {
		title = report.Movie.Title
		printMovie(w, report.Movie)
		fmt.Fprintln(w)
	}
	printSummary(w, title, report.Summary)
	fmt.Fprintln(w)
	expression := ""
	if f != nil {
		expression = f.Expression()
	}
	printReviews(w, f.Apply(report.Reviews), len(report.Reviews), width, expression)
}

func formatRating(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func clip(text string, width int) string {
	runes := []rune(text)
	if width <= 0 || len(runes) <= width {
		return text
	}
	return string(runes[:width]) + "..."
}
