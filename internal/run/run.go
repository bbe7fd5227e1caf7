// Package run orchestrates one end-to-end research pass for one keyword:
// dispatch the requested sources, persist their artifacts, derive the
// summary metrics, persist the summary.
package run

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/prodscout/prodscout/internal/metrics"
	"github.com/prodscout/prodscout/internal/report"
	"github.com/prodscout/prodscout/internal/research"
	"github.com/prodscout/prodscout/internal/score"
	"github.com/prodscout/prodscout/internal/source"
	"github.com/prodscout/prodscout/internal/source/amazon"
	"github.com/prodscout/prodscout/internal/source/google"
)

// Runner executes research runs.
type Runner struct {
	registry   *source.Registry
	dispatcher *source.Dispatcher
	store      *report.Store
	clock      research.Clock
	logger     *zap.Logger
}

// New constructs a Runner.
func New(
	registry *source.Registry,
	dispatcher *source.Dispatcher,
	store *report.Store,
	clock research.Clock,
	logger *zap.Logger,
) *Runner {
	return &Runner{
		registry:   registry,
		dispatcher: dispatcher,
		store:      store,
		clock:      clock,
		logger:     logger,
	}
}

// Execute runs the full pipeline for one keyword. The returned summary
// carries one source status per requested id. A run that assembles a
// summary succeeds even when every source failed: the all-default summary
// tells the operator no data could be obtained, which must be visible
// rather than swallowed.
func (r *Runner) Execute(ctx context.Context, q research.Query, sourceIDs []string) (research.RunSummary, error) {
	if len(sourceIDs) == 0 {
		sourceIDs = research.DefaultSources
	}

	// Boundary check before any I/O.
	if err := r.registry.Validate(sourceIDs); err != nil {
		metrics.IncRun("failed")
		return research.RunSummary{}, err
	}

	r.logger.Info("research run started",
		zap.String("keyword", q.Keyword),
		zap.Strings("sources", sourceIDs))

	results := r.dispatcher.Dispatch(ctx, q, sourceIDs)

	if err := r.persistArtifacts(q.Keyword, sourceIDs, results); err != nil {
		metrics.IncRun("failed")
		return research.RunSummary{}, err
	}

	summary := r.assemble(q.Keyword, sourceIDs, results)

	path, err := r.store.PersistSummary(summary)
	if err != nil {
		metrics.IncRun("failed")
		return research.RunSummary{}, fmt.Errorf("persist summary for %q: %w", q.Keyword, err)
	}
	summary.SummaryPath = path

	r.logger.Info("research run finished",
		zap.String("keyword", q.Keyword),
		zap.Float64("demand_score", summary.DemandScore),
		zap.Int("competition_gauge", summary.CompetitionGauge),
		zap.String("summary", path))
	metrics.IncRun("ok")
	return summary, nil
}

// persistArtifacts writes every successful source's tables. Failed
// sources contribute no artifact; a storage failure is fatal to the run.
func (r *Runner) persistArtifacts(keyword string, ids []string, results map[string]research.SourceResult) error {
	for _, id := range ids {
		res, ok := results[id]
		if !ok || !res.OK() {
			continue
		}
		for _, artifact := range res.Artifacts {
			if _, err := r.store.Persist(keyword, artifact.Name, artifact.Table); err != nil {
				return fmt.Errorf("persist %s/%s: %w", keyword, artifact.Name, err)
			}
		}
	}
	return nil
}

func (r *Runner) assemble(keyword string, ids []string, results map[string]research.SourceResult) research.RunSummary {
	statuses := make(map[string]research.StatusEntry, len(ids))
	for _, id := range ids {
		res, ok := results[id]
		if !ok {
			statuses[id] = research.StatusEntry{Status: research.StatusFailed, Reason: "not dispatched"}
			continue
		}
		statuses[id] = research.StatusEntry{Status: res.Status, Reason: res.Reason}
	}

	return research.RunSummary{
		RunID:            uuid.NewString(),
		Keyword:          keyword,
		DemandScore:      demandScore(results),
		CompetitionGauge: competitionGauge(results),
		Timestamp:        r.clock.Now(),
		SourceStatuses:   statuses,
	}
}

// demandScore derives the metric from the trend source's interest
// artifact; a failed or absent trend source yields the default 0.0.
func demandScore(results map[string]research.SourceResult) float64 {
	res, ok := results[research.SourceGoogle]
	if !ok || !res.OK() {
		return 0.0
	}
	for _, artifact := range res.Artifacts {
		if artifact.Name == google.ArtifactInterest {
			return score.Demand(score.Series(artifact.Table))
		}
	}
	return 0.0
}

// competitionGauge derives the metric from the marketplace listing
// artifact; a failed or absent marketplace source yields the default 0.
func competitionGauge(results map[string]research.SourceResult) int {
	res, ok := results[research.SourceAmazon]
	if !ok || !res.OK() {
		return 0
	}
	for _, artifact := range res.Artifacts {
		if artifact.Name == amazon.ArtifactBestsellers {
			return score.Competition(score.Reviews(artifact.Table))
		}
	}
	return 0
}
