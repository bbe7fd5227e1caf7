// Package research defines core types shared across subsystems.
package research

import (
	"time"
)

// Source identifiers known to the registry. Each maps to one external
// data provider adapter under internal/source.
const (
	SourceGoogle     = "google"
	SourceAmazon     = "amazon"
	SourceEbay       = "ebay"
	SourceAliExpress = "aliexpress"
	SourceTikTok     = "tiktok"
)

// DefaultSources is the source set used when the caller requests none.
var DefaultSources = []string{SourceGoogle, SourceAmazon}

// Table is an ordered tabular record set returned by one source.
// Schemas vary by source; no cross-source unification is attempted.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Empty reports whether the table holds no data rows.
func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

// Artifact is one named table produced by a source. A single source may
// produce several artifacts (the trend source emits an interest series
// and a rising-queries list).
type Artifact struct {
	Name  string
	Table Table
}

// Query carries the per-run inputs supplied by the caller.
type Query struct {
	Keyword   string
	AmazonURL string
}

// SourceStatus is the outcome tag on a SourceResult.
type SourceStatus string

// Source outcome values recorded in a RunSummary.
const (
	StatusOK     SourceStatus = "ok"
	StatusFailed SourceStatus = "failed"
)

// SourceResult captures the outcome of dispatching one source for one run.
// It is produced once per requested source per run and never mutated.
type SourceResult struct {
	SourceID  string
	Status    SourceStatus
	Reason    string
	Duration  time.Duration
	Artifacts []Artifact
}

// OK reports whether the source fetch succeeded.
func (r SourceResult) OK() bool {
	return r.Status == StatusOK
}

// StatusEntry is the per-source line carried on a RunSummary.
type StatusEntry struct {
	Status SourceStatus
	Reason string
}

// RunSummary is the single record produced by one research run for one
// keyword. Immutable once written; each run overwrites the prior snapshot
// for its keyword.
type RunSummary struct {
	RunID            string
	Keyword          string
	DemandScore      float64
	CompetitionGauge int
	Timestamp        time.Time
	SourceStatuses   map[string]StatusEntry
	SummaryPath      string
}

// TickResult is one keyword's outcome within a scheduler tick. Err is set
// when the run itself failed; Summary is valid otherwise.
type TickResult struct {
	Keyword     string
	Summary     RunSummary
	SummaryPath string
	Err         error
}
