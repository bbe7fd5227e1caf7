package source

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/prodscout/prodscout/internal/metrics"
	"github.com/prodscout/prodscout/internal/research"
)

// Dispatcher fans a query out to the requested sources, isolating
// per-source failures. Sources are independent, so they run concurrently;
// results are identical to a sequential dispatch.
type Dispatcher struct {
	registry *Registry
	clock    research.Clock
	logger   *zap.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(registry *Registry, clock research.Clock, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		clock:    clock,
		logger:   logger,
	}
}

// Dispatch invokes every requested source for the query and returns one
// SourceResult per requested id. A source failure is captured as a Failed
// result and never aborts the other sources. Ids without a registered
// source are the orchestrator's responsibility and must be rejected
// before calling Dispatch.
func (d *Dispatcher) Dispatch(ctx context.Context, q research.Query, ids []string) map[string]research.SourceResult {
	results := make(map[string]research.SourceResult, len(ids))

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, id := range ids {
		src, ok := d.registry.Lookup(id)
		if !ok {
			continue
		}
		wg.Add(1)
		go func(id string, src research.Source) {
			defer wg.Done()
			res := d.dispatchOne(ctx, q, id, src)
			mu.Lock()
			results[id] = res
			mu.Unlock()
		}(id, src)
	}
	wg.Wait()

	return results
}

func (d *Dispatcher) dispatchOne(ctx context.Context, q research.Query, id string, src research.Source) research.SourceResult {
	// A source missing a required parameter is recorded as failed
	// without being invoked.
	if err := src.Validate(q); err != nil {
		d.logger.Warn("source skipped",
			zap.String("source", id),
			zap.String("keyword", q.Keyword),
			zap.Error(err))
		metrics.ObserveSourceFetch(id, "skipped", 0)
		return research.SourceResult{
			SourceID: id,
			Status:   research.StatusFailed,
			Reason:   err.Error(),
		}
	}

	start := d.clock.Now()
	artifacts, err := src.Fetch(ctx, q)
	elapsed := d.clock.Now().Sub(start)

	if err != nil {
		d.logger.Warn("source fetch failed",
			zap.String("source", id),
			zap.String("keyword", q.Keyword),
			zap.Duration("duration", elapsed),
			zap.Error(err))
		metrics.ObserveSourceFetch(id, "failed", elapsed)
		return research.SourceResult{
			SourceID: id,
			Status:   research.StatusFailed,
			Reason:   err.Error(),
			Duration: elapsed,
		}
	}

	d.logger.Debug("source fetch succeeded",
		zap.String("source", id),
		zap.String("keyword", q.Keyword),
		zap.Duration("duration", elapsed),
		zap.Int("artifacts", len(artifacts)))
	metrics.ObserveSourceFetch(id, "ok", elapsed)
	return research.SourceResult{
		SourceID:  id,
		Status:    research.StatusOK,
		Duration:  elapsed,
		Artifacts: artifacts,
	}
}
