// Package models defines data structures shared by the fetch, scrape, score and export stages.
package models

// MovieRecord is the metadata returned by the movie-info API.
type MovieRecord struct {
	Title      string   `json:"title"`
	Year       string   `json:"year,omitempty"`
	Rated      string   `json:"rated,omitempty"`
	Released   string   `json:"released,omitempty"`
	Runtime    string   `json:"runtime,omitempty"`
	Genre      string   `json:"genre,omitempty"`
	Director   string   `json:"director,omitempty"`
	Writer     string   `json:"writer,omitempty"`
	Cast       []string `json:"cast,omitempty"`
	Plot       string   `json:"plot,omitempty"`
	Language   string   `json:"language,omitempty"`
	Country    string   `json:"country,omitempty"`
	Awards     string   `json:"awards,omitempty"`
	PosterURL  string   `json:"poster_url,omitempty"`
	IMDbRating *float64 `json:"imdb_rating,omitempty"`
	IMDbID     string   `json:"imdb_id" jsonschema:"required"`
}
