// Package google implements the trend source against the Google Trends
// widget API: an explore call hands out per-widget tokens, then each
// widget endpoint returns the actual data. Responses carry an anti-XSSI
// prefix before the JSON payload.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prodscout/prodscout/internal/research"
)

// Artifact names for the two tables this source emits.
const (
	ArtifactInterest = "google_interest"
	ArtifactRising   = "google_rising"
)

const (
	defaultBaseURL = "https://trends.google.com"

	explorePath   = "/trends/api/explore"
	multilinePath = "/trends/api/widgetdata/multiline"
	relatedPath   = "/trends/api/widgetdata/relatedsearches"

	widgetTimeseries = "TIMESERIES"
	widgetRelated    = "RELATED_QUERIES"
)

// Config controls the trends client.
type Config struct {
	UserAgent string
	Timeout   time.Duration
	// Timeframe is the Trends window expression, e.g. "today 5-y".
	Timeframe string
	Locale    string
	// TZ is the timezone offset in minutes, as the API expects.
	TZ int
	// BaseURL overrides the trends host, for tests.
	BaseURL string
}

// Source fetches interest-over-time and rising related queries.
type Source struct {
	cfg    Config
	client *http.Client
}

// New builds the trend source.
func New(cfg Config) *Source {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Timeframe == "" {
		cfg.Timeframe = "today 5-y"
	}
	if cfg.Locale == "" {
		cfg.Locale = "en-US"
	}
	if cfg.TZ == 0 {
		cfg.TZ = 360
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return &Source{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// ID returns the registry identifier.
func (s *Source) ID() string { return research.SourceGoogle }

// Validate always accepts; only the keyword is needed.
func (s *Source) Validate(research.Query) error { return nil }

// Fetch returns the interest series and rising queries for the keyword.
func (s *Source) Fetch(ctx context.Context, q research.Query) ([]research.Artifact, error) {
	widgets, err := s.explore(ctx, q.Keyword)
	if err != nil {
		return nil, err
	}

	ts, ok := widgets[widgetTimeseries]
	if !ok {
		return nil, fmt.Errorf("%w: trends explore returned no timeseries widget", research.ErrSource)
	}
	interest, err := s.interestOverTime(ctx, ts)
	if err != nil {
		return nil, err
	}

	artifacts := []research.Artifact{{Name: ArtifactInterest, Table: interest}}

	// Rising queries are best-effort detail; the widget is sometimes
	// absent for low-volume keywords.
	if rq, ok := widgets[widgetRelated]; ok {
		rising, err := s.risingQueries(ctx, rq)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, research.Artifact{Name: ArtifactRising, Table: rising})
	}

	return artifacts, nil
}

type widget struct {
	ID      string          `json:"id"`
	Token   string          `json:"token"`
	Request json.RawMessage `json:"request"`
}

func (s *Source) explore(ctx context.Context, keyword string) (map[string]widget, error) {
	req := map[string]any{
		"comparisonItem": []map[string]any{{
			"keyword": keyword,
			"geo":     "",
			"time":    s.cfg.Timeframe,
		}},
		"category": 0,
		"property": "",
	}
	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal explore request: %v", research.ErrSource, err)
	}

	params := url.Values{
		"hl":  {s.cfg.Locale},
		"tz":  {strconv.Itoa(s.cfg.TZ)},
		"req": {string(reqJSON)},
	}
	body, err := s.get(ctx, s.cfg.BaseURL+explorePath, params)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Widgets []widget `json:"widgets"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode explore response: %v", research.ErrSource, err)
	}

	widgets := make(map[string]widget, len(payload.Widgets))
	for _, w := range payload.Widgets {
		widgets[w.ID] = w
	}
	return widgets, nil
}

func (s *Source) interestOverTime(ctx context.Context, w widget) (research.Table, error) {
	body, err := s.widgetData(ctx, s.cfg.BaseURL+multilinePath, w)
	if err != nil {
		return research.Table{}, err
	}

	var payload struct {
		Default struct {
			TimelineData []struct {
				Time  string    `json:"time"`
				Value []float64 `json:"value"`
			} `json:"timelineData"`
		} `json:"default"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return research.Table{}, fmt.Errorf("%w: decode timeline: %v", research.ErrSource, err)
	}

	rows := make([][]string, 0, len(payload.Default.TimelineData))
	for _, point := range payload.Default.TimelineData {
		if len(point.Value) == 0 {
			continue
		}
		rows = append(rows, []string{
			formatPointDate(point.Time),
			strconv.FormatFloat(point.Value[0], 'f', -1, 64),
		})
	}
	return research.Table{Columns: []string{"date", "interest"}, Rows: rows}, nil
}

func (s *Source) risingQueries(ctx context.Context, w widget) (research.Table, error) {
	body, err := s.widgetData(ctx, s.cfg.BaseURL+relatedPath, w)
	if err != nil {
		return research.Table{}, err
	}

	var payload struct {
		Default struct {
			RankedList []struct {
				RankedKeyword []struct {
					Query string `json:"query"`
					Value int    `json:"value"`
				} `json:"rankedKeyword"`
			} `json:"rankedList"`
		} `json:"default"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return research.Table{}, fmt.Errorf("%w: decode related queries: %v", research.ErrSource, err)
	}

	// rankedList[0] is "top", rankedList[1] is "rising".
	var rows [][]string
	if len(payload.Default.RankedList) > 1 {
		for _, kw := range payload.Default.RankedList[1].RankedKeyword {
			rows = append(rows, []string{kw.Query, strconv.Itoa(kw.Value)})
		}
	}
	return research.Table{Columns: []string{"query", "value"}, Rows: rows}, nil
}

func (s *Source) widgetData(ctx context.Context, endpoint string, w widget) ([]byte, error) {
	params := url.Values{
		"hl":    {s.cfg.Locale},
		"tz":    {strconv.Itoa(s.cfg.TZ)},
		"req":   {string(w.Request)},
		"token": {w.Token},
	}
	return s.get(ctx, endpoint, params)
}

func (s *Source) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build trends request: %v", research.ErrSource, err)
	}
	if s.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", s.cfg.UserAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: trends request: %v", research.ErrSource, err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: trends request: unexpected status %d", research.ErrSource, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read trends response: %v", research.ErrSource, err)
	}
	return stripXSSIPrefix(body), nil
}

// stripXSSIPrefix drops everything before the first JSON byte. Trends
// responses start with a ")]}'" guard of varying length.
func stripXSSIPrefix(body []byte) []byte {
	if i := strings.IndexAny(string(body), "{["); i > 0 {
		return body[i:]
	}
	return body
}

func formatPointDate(unixSeconds string) string {
	secs, err := strconv.ParseInt(unixSeconds, 10, 64)
	if err != nil {
		return unixSeconds
	}
	return time.Unix(secs, 0).UTC().Format("2006-01-02")
}
