// Package amazon_test tests the best-sellers scraper against stub HTML.
package amazon_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prodscout/prodscout/internal/research"
	"github.com/prodscout/prodscout/internal/source/amazon"
)

const listingHTML = `<html><body>
<div class="zg-grid-general-faceout">
  <span class="zg-bdg-text">#1</span>
  <a href="/dp/B001?ref=zg_bs"><span class="p13n-sc-truncate-desktop-type2">Yoga Mat Pro</span></a>
  <span class="a-price"><span class="a-offscreen">$24.99</span></span>
  <span class="a-icon-alt">4.7 out of 5 stars</span>
  <span class="a-size-small">12,345</span>
</div>
<div class="zg-grid-general-faceout">
  <span class="zg-bdg-text">#2</span>
  <a href="/dp/B002"></a>
</div>
</body></html>`

func TestValidate(t *testing.T) {
	src := amazon.New(amazon.Config{})
	require.Equal(t, research.SourceAmazon, src.ID())

	err := src.Validate(research.Query{Keyword: "yoga mat"})
	require.Error(t, err)
	assert.ErrorIs(t, err, research.ErrMissingParameter)

	assert.NoError(t, src.Validate(research.Query{Keyword: "yoga mat", AmazonURL: "https://example.com/zgbs"}))
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, listingHTML)
	}))
	t.Cleanup(srv.Close)

	src := amazon.New(amazon.Config{})
	artifacts, err := src.Fetch(context.Background(), research.Query{Keyword: "yoga mat", AmazonURL: srv.URL})
	require.NoError(t, err)
	require.Len(t, artifacts, 1)

	table := artifacts[0].Table
	assert.Equal(t, amazon.ArtifactBestsellers, artifacts[0].Name)
	assert.Equal(t, []string{"rank", "title", "price", "rating", "reviews", "url"}, table.Columns)
	require.Len(t, table.Rows, 2)

	assert.Equal(t, []string{"1", "Yoga Mat Pro", "$24.99", "4.7", "12345", "https://www.amazon.com/dp/B001"}, table.Rows[0])

	// Sparse card falls back to placeholders.
	assert.Equal(t, []string{"2", "?", "NA", "", "0", "https://www.amazon.com/dp/B002"}, table.Rows[1])
}

func TestFetchCapsRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		for i := 0; i < 5; i++ {
			fmt.Fprintf(w, `<div class="zg-grid-general-faceout"><span class="zg-bdg-text">#%d</span></div>`, i+1)
		}
	}))
	t.Cleanup(srv.Close)

	src := amazon.New(amazon.Config{MaxRows: 3})
	artifacts, err := src.Fetch(context.Background(), research.Query{Keyword: "k", AmazonURL: srv.URL})
	require.NoError(t, err)
	assert.Len(t, artifacts[0].Table.Rows, 3)
}

func TestFetchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	src := amazon.New(amazon.Config{})
	_, err := src.Fetch(context.Background(), research.Query{Keyword: "k", AmazonURL: srv.URL})
	require.Error(t, err)
	assert.ErrorIs(t, err, research.ErrSource)
}
