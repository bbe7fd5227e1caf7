// Package google_test tests the trends widget client against a stub server.
package google_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prodscout/prodscout/internal/research"
	"github.com/prodscout/prodscout/internal/source/google"
)

const exploreBody = `)]}'
{"widgets":[
  {"id":"TIMESERIES","token":"ts-token","request":{"time":"today 5-y"}},
  {"id":"RELATED_QUERIES","token":"rq-token","request":{"restriction":{}}}
]}`

const multilineBody = `)]}',
{"default":{"timelineData":[
  {"time":"1735776000","value":[41]},
  {"time":"1736380800","value":[43]}
]}}`

const relatedBody = `)]}',
{"default":{"rankedList":[
  {"rankedKeyword":[{"query":"top one","value":100}]},
  {"rankedKeyword":[{"query":"rising one","value":250},{"query":"rising two","value":120}]}
]}}`

func newStub(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/trends/api/explore", func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.URL.Query().Get("req"))
		fmt.Fprint(w, exploreBody)
	})
	mux.HandleFunc("/trends/api/widgetdata/multiline", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ts-token", r.URL.Query().Get("token"))
		fmt.Fprint(w, multilineBody)
	})
	mux.HandleFunc("/trends/api/widgetdata/relatedsearches", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "rq-token", r.URL.Query().Get("token"))
		fmt.Fprint(w, relatedBody)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch(t *testing.T) {
	srv := newStub(t)
	src := google.New(google.Config{BaseURL: srv.URL})

	require.Equal(t, research.SourceGoogle, src.ID())
	require.NoError(t, src.Validate(research.Query{Keyword: "yoga mat"}))

	artifacts, err := src.Fetch(context.Background(), research.Query{Keyword: "yoga mat"})
	require.NoError(t, err)
	require.Len(t, artifacts, 2)

	interest := artifacts[0]
	assert.Equal(t, google.ArtifactInterest, interest.Name)
	assert.Equal(t, []string{"date", "interest"}, interest.Table.Columns)
	require.Len(t, interest.Table.Rows, 2)
	assert.Equal(t, []string{"2025-01-02", "41"}, interest.Table.Rows[0])
	assert.Equal(t, "43", interest.Table.Rows[1][1])

	rising := artifacts[1]
	assert.Equal(t, google.ArtifactRising, rising.Name)
	require.Len(t, rising.Table.Rows, 2)
	assert.Equal(t, []string{"rising one", "250"}, rising.Table.Rows[0])
}

func TestFetchNoRelatedWidget(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/trends/api/explore", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `)]}'
{"widgets":[{"id":"TIMESERIES","token":"ts-token","request":{}}]}`)
	})
	mux.HandleFunc("/trends/api/widgetdata/multiline", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, multilineBody)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	src := google.New(google.Config{BaseURL: srv.URL})
	artifacts, err := src.Fetch(context.Background(), research.Query{Keyword: "obscure thing"})
	require.NoError(t, err)
	require.Len(t, artifacts, 1)
	assert.Equal(t, google.ArtifactInterest, artifacts[0].Name)
}

func TestFetchErrors(t *testing.T) {
	t.Run("ServerError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		t.Cleanup(srv.Close)

		src := google.New(google.Config{BaseURL: srv.URL})
		_, err := src.Fetch(context.Background(), research.Query{Keyword: "k"})
		require.Error(t, err)
		assert.ErrorIs(t, err, research.ErrSource)
	})

	t.Run("NoTimeseriesWidget", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `)]}'
{"widgets":[]}`)
		}))
		t.Cleanup(srv.Close)

		src := google.New(google.Config{BaseURL: srv.URL})
		_, err := src.Fetch(context.Background(), research.Query{Keyword: "k"})
		require.Error(t, err)
		assert.ErrorIs(t, err, research.ErrSource)
	})
}
