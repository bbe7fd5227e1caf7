// Package tiktok implements the short-video trending source backed by
// TikTok's discover API.
package tiktok

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prodscout/prodscout/internal/research"
)

// ArtifactTrending is the artifact name for the trending rows.
const ArtifactTrending = "tiktok_trending"

const defaultDiscoverURL = "https://www.tiktok.com/api/discover/item_list/?count=30&region=US"

// Config controls the client.
type Config struct {
	UserAgent string
	Timeout   time.Duration
	MaxRows   int
	// DiscoverURL overrides the endpoint, for tests.
	DiscoverURL string
}

// Source fetches the current trending item texts.
type Source struct {
	cfg    Config
	client *http.Client
}

// New builds the trending source.
func New(cfg Config) *Source {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRows == 0 {
		cfg.MaxRows = 20
	}
	if cfg.DiscoverURL == "" {
		cfg.DiscoverURL = defaultDiscoverURL
	}
	return &Source{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// ID returns the registry identifier.
func (s *Source) ID() string { return research.SourceTikTok }

// Validate always accepts; the trending list takes no parameters.
func (s *Source) Validate(research.Query) error { return nil }

// Fetch returns up to MaxRows trending texts.
func (s *Source) Fetch(ctx context.Context, _ research.Query) ([]research.Artifact, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.DiscoverURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: tiktok: build request: %v", research.ErrSource, err)
	}
	if s.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", s.cfg.UserAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: tiktok: %v", research.ErrSource, err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: tiktok: unexpected status %d", research.ErrSource, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: tiktok: read response: %v", research.ErrSource, err)
	}

	var payload struct {
		ItemList []struct {
			Text string `json:"text"`
		} `json:"itemList"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: tiktok: decode response: %v", research.ErrSource, err)
	}

	var rows [][]string
	for _, item := range payload.ItemList {
		if len(rows) >= s.cfg.MaxRows {
			break
		}
		text := strings.TrimSpace(item.Text)
		if text == "" {
			continue
		}
		rows = append(rows, []string{text})
	}

	return []research.Artifact{{
		Name:  ArtifactTrending,
		Table: research.Table{Columns: []string{"trending"}, Rows: rows},
	}}, nil
}
