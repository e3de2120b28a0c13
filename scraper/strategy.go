package scraper

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Candidate is raw review text and rating markup lifted from the page, before validation.
type Candidate struct {
	Text   string
	Rating string
}

// Strategy extracts candidates from one flavour of review-page markup.
type Strategy interface {
	Name() string
	Extract(doc *goquery.Document) []Candidate
}

// DefaultStrategies returns the extraction cascade, most specific markup first.
func DefaultStrategies() []Strategy {
	return []Strategy{
		ReviewCards{},
		ReviewContainers{},
		ParallelLists{},
		GenericDivs{MaxLength: 10000},
	}
}

// ReviewCards reads the current review-card layout.
type ReviewCards struct{}

func (ReviewCards) Name() string { return "review-cards" }

func (ReviewCards) Extract(doc *goquery.Document) []Candidate {
	var out []Candidate
	doc.Find(`article.user-review-item, [data-testid="review-card-parent"]`).Each(func(_ int, card *goquery.Selection) {
		text := card.Find(".ipc-html-content-inner-div").First().Text()
		if strings.TrimSpace(text) == "" {
			return
		}
		out = append(out, Candidate{
			Text:   text,
			Rating: card.Find(".ipc-rating-star--rating").First().Text(),
		})
	})
	return out
}

// ReviewContainers reads the legacy layout, pairing text and rating inside each container.
type ReviewContainers struct{}

func (ReviewContainers) Name() string { return "review-containers" }

func (ReviewContainers) Extract(doc *goquery.Document) []Candidate {
	var out []Candidate
	doc.Find("div.review-container, div.lister-item-content").Each(func(_ int, container *goquery.Selection) {
		text := container.Find("div.text.show-more__control").First().Text()
		if strings.TrimSpace(text) == "" {
			return
		}
		out = append(out, Candidate{
			Text:   text,
			Rating: container.Find("span.rating-other-user-rating span").First().Text(),
		})
	})
	return out
}

// ParallelLists collects every review body and every rating on the page and pairs them by position.
// Reviews past the end of the rating list are unrated.
type ParallelLists struct{}

func (ParallelLists) Name() string { return "parallel-lists" }

func (ParallelLists) Extract(doc *goquery.Document) []Candidate {
	texts := doc.Find("div.text.show-more__control")
	ratings := doc.Find("span.rating-other-user-rating")

	out := make([]Candidate, 0, texts.Length())
	texts.Each(func(i int, text *goquery.Selection) {
		c := Candidate{Text: text.Text()}
		if i < ratings.Length() {
			c.Rating = ratings.Eq(i).Text()
		}
		out = append(out, c)
	})
	return out
}

// GenericDivs is the last resort: any div whose class suggests review content.
// Only the innermost matching divs are taken, so an outer wrapper never
// duplicates the review it contains.
type GenericDivs struct {
	MaxLength int
}

func (GenericDivs) Name() string { return "generic-divs" }

func (g GenericDivs) Extract(doc *goquery.Document) []Candidate {
	var out []Candidate
	doc.Find("div[class]").FilterFunction(reviewClass).Each(func(_ int, div *goquery.Selection) {
		if div.Find("div[class]").FilterFunction(reviewClass).Length() > 0 {
			return
		}
		text := div.Text()
		if g.MaxLength > 0 && utf8.RuneCountInString(text) > g.MaxLength {
			return
		}
		out = append(out, Candidate{
			Text:   text,
			Rating: div.Find(`[class*="rating"]`).First().Text(),
		})
	})
	return out
}

func reviewClass(_ int, s *goquery.Selection) bool {
	class := strings.ToLower(s.AttrOr("class", ""))
	return strings.Contains(class, "review") || strings.Contains(class, "text") || strings.Contains(class, "content")
}
