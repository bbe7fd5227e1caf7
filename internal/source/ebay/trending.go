// Package ebay implements the trending-terms source backed by eBay's
// trending page. It needs only the keywordless trending list, so the
// query is used for nothing beyond logging context.
package ebay

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/prodscout/prodscout/internal/research"
)

// ArtifactTrending is the artifact name for the trending-term rows.
const ArtifactTrending = "ebay_trending"

const defaultTrendingURL = "https://www.ebay.com/trending"

// Config controls collector behavior.
type Config struct {
	UserAgent string
	Timeout   time.Duration
	MaxRows   int
	// TrendingURL overrides the endpoint, for tests.
	TrendingURL string
}

// Source scrapes the current trending search terms.
type Source struct {
	cfg Config
}

// New builds the trending source.
func New(cfg Config) *Source {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRows == 0 {
		cfg.MaxRows = 20
	}
	if cfg.TrendingURL == "" {
		cfg.TrendingURL = defaultTrendingURL
	}
	return &Source{cfg: cfg}
}

// ID returns the registry identifier.
func (s *Source) ID() string { return research.SourceEbay }

// Validate always accepts; the trending list takes no parameters.
func (s *Source) Validate(research.Query) error { return nil }

// Fetch scrapes up to MaxRows trending terms.
func (s *Source) Fetch(ctx context.Context, _ research.Query) ([]research.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: ebay: %v", research.ErrSource, err)
	}

	c := colly.NewCollector(colly.UserAgent(s.cfg.UserAgent))
	c.SetRequestTimeout(s.cfg.Timeout)

	var (
		rows     [][]string
		fetchErr error
	)
	c.OnHTML("ul.trending-list li a", func(e *colly.HTMLElement) {
		if len(rows) >= s.cfg.MaxRows {
			return
		}
		term := strings.TrimSpace(e.Text)
		if term == "" {
			return
		}
		rows = append(rows, []string{term})
	})
	c.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	if err := c.Visit(s.cfg.TrendingURL); err != nil {
		return nil, fmt.Errorf("%w: ebay visit: %v", research.ErrSource, err)
	}
	c.Wait()
	if fetchErr != nil {
		return nil, fmt.Errorf("%w: ebay fetch: %v", research.ErrSource, fetchErr)
	}

	return []research.Artifact{{
		Name:  ArtifactTrending,
		Table: research.Table{Columns: []string{"trending"}, Rows: rows},
	}}, nil
}
