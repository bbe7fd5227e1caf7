// Package report persists per-source and summary CSV artifacts under a
// deterministic path scheme keyed by keyword.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/prodscout/prodscout/internal/research"
)

// SummaryArtifact is the artifact name of the per-run summary file.
const SummaryArtifact = "summary"

// summaryColumns is the header row of summary.csv. One data row per run,
// overwritten each run.
var summaryColumns = []string{
	"run_id", "keyword", "demand_score", "competition_gauge", "timestamp", "source_statuses",
}

// Normalize maps a keyword to its report directory name: runs of
// whitespace become a single underscore, case is preserved so the
// operator's keyword casing round-trips into the directory they expect.
// Idempotent.
func Normalize(keyword string) string {
	return strings.Join(strings.Fields(keyword), "_")
}

// Store writes report artifacts beneath an explicit base directory.
// Writes are idempotent and destructive: re-persisting the same
// keyword/artifact pair overwrites the prior file.
type Store struct {
	baseDir string
}

// NewStore creates a Store rooted at baseDir. The directory itself is
// created lazily on first write, so constructing a Store performs no I/O.
func NewStore(baseDir string) (*Store, error) {
	if strings.TrimSpace(baseDir) == "" {
		return nil, fmt.Errorf("%w: report base directory is required", research.ErrConfiguration)
	}
	return &Store{baseDir: baseDir}, nil
}

// BaseDir returns the configured report root.
func (s *Store) BaseDir() string {
	return s.baseDir
}

// Persist writes one source artifact as CSV and returns its path.
func (s *Store) Persist(keyword, name string, t research.Table) (string, error) {
	path := s.artifactPath(keyword, name)
	if err := s.writeCSV(path, t.Columns, t.Rows); err != nil {
		return "", err
	}
	return path, nil
}

// PersistSummary writes the single-row summary.csv for a run and returns
// its path.
func (s *Store) PersistSummary(sum research.RunSummary) (string, error) {
	row := []string{
		sum.RunID,
		sum.Keyword,
		strconv.FormatFloat(sum.DemandScore, 'f', 2, 64),
		strconv.Itoa(sum.CompetitionGauge),
		sum.Timestamp.Format(time.RFC3339),
		encodeStatuses(sum.SourceStatuses),
	}
	path := s.artifactPath(sum.Keyword, SummaryArtifact)
	if err := s.writeCSV(path, summaryColumns, [][]string{row}); err != nil {
		return "", err
	}
	return path, nil
}

// ReadSummary reads back the persisted summary for a keyword.
func (s *Store) ReadSummary(keyword string) (research.RunSummary, error) {
	table, err := s.ReadTable(s.artifactPath(keyword, SummaryArtifact))
	if err != nil {
		return research.RunSummary{}, err
	}
	if len(table.Rows) == 0 {
		return research.RunSummary{}, fmt.Errorf("%w: summary for %q has no rows", research.ErrStorage, keyword)
	}
	return decodeSummary(table.Rows[0])
}

// ReadTable loads a persisted CSV artifact.
func (s *Store) ReadTable(path string) (research.Table, error) {
	f, err := os.Open(path) // #nosec G304 -- paths are built from the configured base dir
	if err != nil {
		return research.Table{}, fmt.Errorf("%w: open %s: %v", research.ErrStorage, path, err)
	}
	defer f.Close() //nolint:errcheck // read-only handle

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return research.Table{}, fmt.Errorf("%w: read %s: %v", research.ErrStorage, path, err)
	}
	if len(records) == 0 {
		return research.Table{}, nil
	}
	return research.Table{Columns: records[0], Rows: records[1:]}, nil
}

func (s *Store) artifactPath(keyword, name string) string {
	return filepath.Join(s.baseDir, Normalize(keyword), name+".csv")
}

func (s *Store) writeCSV(path string, columns []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("%w: create report directory: %v", research.ErrStorage, err)
	}

	f, err := os.Create(path) // #nosec G304 -- paths are built from the configured base dir
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", research.ErrStorage, path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		f.Close() //nolint:errcheck,gosec // write already failed
		return fmt.Errorf("%w: write header %s: %v", research.ErrStorage, path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		f.Close() //nolint:errcheck,gosec // write already failed
		return fmt.Errorf("%w: write rows %s: %v", research.ErrStorage, path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close() //nolint:errcheck,gosec // write already failed
		return fmt.Errorf("%w: flush %s: %v", research.ErrStorage, path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", research.ErrStorage, path, err)
	}
	return nil
}

// encodeStatuses renders the status map as "id=status" pairs joined with
// ";" in stable order. Failure reasons live in the digest body, not here.
func encodeStatuses(statuses map[string]research.StatusEntry) string {
	ids := make([]string, 0, len(statuses))
	for id := range statuses {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	pairs := make([]string, 0, len(ids))
	for _, id := range ids {
		pairs = append(pairs, id+"="+string(statuses[id].Status))
	}
	return strings.Join(pairs, ";")
}

func decodeStatuses(encoded string) map[string]research.StatusEntry {
	statuses := make(map[string]research.StatusEntry)
	for _, pair := range strings.Split(encoded, ";") {
		id, status, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		statuses[id] = research.StatusEntry{Status: research.SourceStatus(status)}
	}
	return statuses
}

func decodeSummary(row []string) (research.RunSummary, error) {
	if len(row) < len(summaryColumns) {
		return research.RunSummary{}, fmt.Errorf("%w: summary row has %d fields, want %d",
			research.ErrStorage, len(row), len(summaryColumns))
	}
	demand, err := strconv.ParseFloat(row[2], 64)
	if err != nil {
		return research.RunSummary{}, fmt.Errorf("%w: parse demand_score: %v", research.ErrStorage, err)
	}
	gauge, err := strconv.Atoi(row[3])
	if err != nil {
		return research.RunSummary{}, fmt.Errorf("%w: parse competition_gauge: %v", research.ErrStorage, err)
	}
	ts, err := time.Parse(time.RFC3339, row[4])
	if err != nil {
		return research.RunSummary{}, fmt.Errorf("%w: parse timestamp: %v", research.ErrStorage, err)
	}
	return research.RunSummary{
		RunID:            row[0],
		Keyword:          row[1],
		DemandScore:      demand,
		CompetitionGauge: gauge,
		Timestamp:        ts,
		SourceStatuses:   decodeStatuses(row[5]),
	}, nil
}
