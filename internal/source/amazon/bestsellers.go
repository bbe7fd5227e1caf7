// Package amazon implements the marketplace listing source. It scrapes
// an Amazon Best-Sellers category page supplied by the caller.
package amazon

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/prodscout/prodscout/internal/research"
)

// ArtifactBestsellers is the artifact name for the listing rows.
const ArtifactBestsellers = "amazon_bestsellers"

const baseURL = "https://www.amazon.com"

var columns = []string{"rank", "title", "price", "rating", "reviews", "url"}

// Config controls collector behavior.
type Config struct {
	UserAgent string
	Timeout   time.Duration
	MaxRows   int
}

// Source scrapes best-seller listing rows for the competition gauge.
type Source struct {
	cfg Config
}

// New builds the marketplace source.
func New(cfg Config) *Source {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRows == 0 {
		cfg.MaxRows = 20
	}
	return &Source{cfg: cfg}
}

// ID returns the registry identifier.
func (s *Source) ID() string { return research.SourceAmazon }

// Validate requires the marketplace category URL.
func (s *Source) Validate(q research.Query) error {
	if strings.TrimSpace(q.AmazonURL) == "" {
		return fmt.Errorf("%w: marketplace url", research.ErrMissingParameter)
	}
	return nil
}

// Fetch scrapes up to MaxRows listing rows from the category page.
func (s *Source) Fetch(ctx context.Context, q research.Query) ([]research.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: amazon: %v", research.ErrSource, err)
	}

	c := colly.NewCollector(colly.UserAgent(s.cfg.UserAgent))
	c.SetRequestTimeout(s.cfg.Timeout)

	var (
		rows     [][]string
		fetchErr error
	)
	c.OnHTML(".zg-grid-general-faceout", func(e *colly.HTMLElement) {
		if len(rows) >= s.cfg.MaxRows {
			return
		}
		rows = append(rows, parseListing(e))
	})
	c.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	if err := c.Visit(q.AmazonURL); err != nil {
		return nil, fmt.Errorf("%w: amazon visit: %v", research.ErrSource, err)
	}
	c.Wait()
	if fetchErr != nil {
		return nil, fmt.Errorf("%w: amazon fetch: %v", research.ErrSource, fetchErr)
	}

	return []research.Artifact{{
		Name:  ArtifactBestsellers,
		Table: research.Table{Columns: columns, Rows: rows},
	}}, nil
}

func parseListing(e *colly.HTMLElement) []string {
	rank := strings.TrimPrefix(strings.TrimSpace(e.DOM.Find(".zg-bdg-text").First().Text()), "#")

	title := text(e.DOM, ".p13n-sc-truncate-desktop-type2, ._cDEzb_p13n-sc-css-line-clamp-3_g3dy1")
	if title == "" {
		title = "?"
	}

	itemURL := ""
	if href, ok := e.DOM.Find("a[href]").First().Attr("href"); ok {
		itemURL = baseURL + stripRef(href)
	}

	price := text(e.DOM, "span.a-price > span.a-offscreen")
	if price == "" {
		price = "NA"
	}

	rating := ""
	if alt := text(e.DOM, "span.a-icon-alt"); alt != "" {
		rating = strings.Fields(alt)[0]
	}

	reviews := strings.ReplaceAll(text(e.DOM, "span.a-size-small"), ",", "")
	if reviews == "" {
		reviews = "0"
	}

	return []string{rank, title, price, rating, reviews, itemURL}
}

func text(sel *goquery.Selection, selector string) string {
	return strings.TrimSpace(sel.Find(selector).First().Text())
}

// stripRef drops the tracking suffix Amazon appends to listing links.
func stripRef(href string) string {
	if i := strings.Index(href, "?ref"); i >= 0 {
		return href[:i]
	}
	return href
}
