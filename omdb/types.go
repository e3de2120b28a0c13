package omdb

import (
	"errors"
	"strconv"
	"strings"

	"github.com/aluiziolira/cinesent/failure"
	"github.com/aluiziolira/cinesent/models"
)

var (
	errMissingID            = errors.New("response has no imdbID")
	errUnknownDiscriminator = errors.New("expected True or False")
)

// movieResponse is the OMDb payload. Response is the "True"/"False" discriminator.
type movieResponse struct {
	Response   string `json:"Response"`
	Error      string `json:"Error"`
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Rated      string `json:"Rated"`
	Released   string `json:"Released"`
	Runtime    string `json:"Runtime"`
	Genre      string `json:"Genre"`
	Director   string `json:"Director"`
	Writer     string `json:"Writer"`
	Actors     string `json:"Actors"`
	Plot       string `json:"Plot"`
	Language   string `json:"Language"`
	Country    string `json:"Country"`
	Awards     string `json:"Awards"`
	Poster     string `json:"Poster"`
	ImdbRating string `json:"imdbRating"`
	ImdbID     string `json:"imdbID"`
}

func (r *movieResponse) failed() bool {
	return strings.EqualFold(strings.TrimSpace(r.Response), "False")
}

// record converts a payload into a MovieRecord or a terminal failure.
func (r *movieResponse) record(q Query) (*models.MovieRecord, error) {
	if r.failed() {
		return nil, classifyAPIError(q, r.Error)
	}
	if !strings.EqualFold(strings.TrimSpace(r.Response), "True") {
		return nil, failure.ErrParse{Field: "Response", Value: r.Response, Err: errUnknownDiscriminator}
	}
	if clean(r.ImdbID) == "" {
		return nil, failure.ErrNotFound{Query: q.String(), Reason: errMissingID.Error()}
	}

	rec := &models.MovieRecord{
		Title:     clean(r.Title),
		Year:      clean(r.Year),
		Rated:     clean(r.Rated),
		Released:  clean(r.Released),
		Runtime:   clean(r.Runtime),
		Genre:     clean(r.Genre),
		Director:  clean(r.Director),
		Writer:    clean(r.Writer),
		Cast:      splitList(r.Actors),
		Plot:      clean(r.Plot),
		Language:  clean(r.Language),
		Country:   clean(r.Country),
		Awards:    clean(r.Awards),
		PosterURL: clean(r.Poster),
		IMDbID:    clean(r.ImdbID),
	}
	if v, err := strconv.ParseFloat(clean(r.ImdbRating), 64); err == nil {
		rec.IMDbRating = &v
	}
	return rec, nil
}

// classifyAPIError maps the OMDb Error string of a Response=False payload.
func classifyAPIError(q Query, msg string) error {
	if credentialMessage(msg) {
		return failure.ErrInvalidCredential{Reason: msg}
	}
	return failure.ErrNotFound{Query: q.String(), Reason: msg}
}

// credentialMessage reports an OMDb error that means the key is unusable.
func credentialMessage(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "api key") || strings.Contains(lower, "limit reached")
}

// clean maps OMDb's "N/A" placeholder to the empty string.
func clean(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "N/A") {
		return ""
	}
	return s
}

func splitList(s string) []string {
	s = clean(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
