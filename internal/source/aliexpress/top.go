// Package aliexpress implements the top-sellers source: a keyword search
// on AliExpress sorted by order volume.
package aliexpress

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/prodscout/prodscout/internal/research"
)

// ArtifactTop is the artifact name for the top-seller rows.
const ArtifactTop = "aliexpress_top"

const defaultBaseURL = "https://www.aliexpress.com"

const searchPathFormat = "/wholesale?SearchText=%s&sortType=total_tranpro_desc"

var (
	columns   = []string{"title", "orders", "price", "url"}
	ordersPat = regexp.MustCompile(`(\d+[,\d]*)`)
)

// Config controls collector behavior.
type Config struct {
	UserAgent string
	Timeout   time.Duration
	MaxRows   int
	// BaseURL overrides the marketplace host, for tests.
	BaseURL string
}

// Source scrapes the highest-volume listings for a keyword.
type Source struct {
	cfg Config
}

// New builds the top-sellers source.
func New(cfg Config) *Source {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRows == 0 {
		cfg.MaxRows = 20
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return &Source{cfg: cfg}
}

// ID returns the registry identifier.
func (s *Source) ID() string { return research.SourceAliExpress }

// Validate always accepts; only the keyword is needed.
func (s *Source) Validate(research.Query) error { return nil }

// Fetch scrapes up to MaxRows listing cards from the search results.
func (s *Source) Fetch(ctx context.Context, q research.Query) ([]research.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: aliexpress: %v", research.ErrSource, err)
	}

	c := colly.NewCollector(colly.UserAgent(s.cfg.UserAgent))
	c.SetRequestTimeout(s.cfg.Timeout)

	var (
		rows     [][]string
		fetchErr error
	)
	c.OnHTML("div.list-item", func(e *colly.HTMLElement) {
		if len(rows) >= s.cfg.MaxRows {
			return
		}
		rows = append(rows, parseCard(e))
	})
	c.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	searchURL := s.cfg.BaseURL + fmt.Sprintf(searchPathFormat, url.QueryEscape(q.Keyword))
	if err := c.Visit(searchURL); err != nil {
		return nil, fmt.Errorf("%w: aliexpress visit: %v", research.ErrSource, err)
	}
	c.Wait()
	if fetchErr != nil {
		return nil, fmt.Errorf("%w: aliexpress fetch: %v", research.ErrSource, fetchErr)
	}

	return []research.Artifact{{
		Name:  ArtifactTop,
		Table: research.Table{Columns: columns, Rows: rows},
	}}, nil
}

func parseCard(e *colly.HTMLElement) []string {
	title := strings.TrimSpace(e.Attr("title"))
	if title == "" {
		title = strings.TrimSpace(e.DOM.Find(".multi--titleText--text").First().Text())
	}

	orders := "0"
	if m := ordersPat.FindString(e.DOM.Find("span.multi--trade--text").First().Text()); m != "" {
		orders = strings.ReplaceAll(m, ",", "")
	}

	price := strings.TrimSpace(e.DOM.Find(".multi--price-sale--text").First().Text())
	if price == "" {
		price = "NA"
	}

	itemURL := ""
	if href, ok := e.DOM.Find("a[href]").First().Attr("href"); ok {
		itemURL = "https:" + href
	}

	return []string{title, orders, price, itemURL}
}
