// Package tiktok_test tests the discover client against a stub server.
package tiktok_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prodscout/prodscout/internal/research"
	"github.com/prodscout/prodscout/internal/source/tiktok"
)

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"itemList":[{"text":"glow lamp"},{"text":""},{"text":"desk pad"}]}`)
	}))
	t.Cleanup(srv.Close)

	src := tiktok.New(tiktok.Config{DiscoverURL: srv.URL})
	require.Equal(t, research.SourceTikTok, src.ID())

	artifacts, err := src.Fetch(context.Background(), research.Query{Keyword: "anything"})
	require.NoError(t, err)
	require.Len(t, artifacts, 1)

	table := artifacts[0].Table
	assert.Equal(t, tiktok.ArtifactTrending, artifacts[0].Name)
	assert.Equal(t, []string{"trending"}, table.Columns)
	assert.Equal(t, [][]string{{"glow lamp"}, {"desk pad"}}, table.Rows)
}

func TestFetchCapsRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"itemList":[{"text":"a"},{"text":"b"},{"text":"c"}]}`)
	}))
	t.Cleanup(srv.Close)

	src := tiktok.New(tiktok.Config{DiscoverURL: srv.URL, MaxRows: 2})
	artifacts, err := src.Fetch(context.Background(), research.Query{})
	require.NoError(t, err)
	assert.Len(t, artifacts[0].Table.Rows, 2)
}

func TestFetchFailures(t *testing.T) {
	t.Run("BadStatus", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		t.Cleanup(srv.Close)

		src := tiktok.New(tiktok.Config{DiscoverURL: srv.URL})
		_, err := src.Fetch(context.Background(), research.Query{})
		require.Error(t, err)
		assert.ErrorIs(t, err, research.ErrSource)
	})

	t.Run("BadJSON", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `<html>captcha</html>`)
		}))
		t.Cleanup(srv.Close)

		src := tiktok.New(tiktok.Config{DiscoverURL: srv.URL})
		_, err := src.Fetch(context.Background(), research.Query{})
		require.Error(t, err)
		assert.ErrorIs(t, err, research.ErrSource)
	})
}
