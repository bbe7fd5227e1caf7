// Package schedule drives recurring research runs on a cron cadence and
// hands each tick's results to the digest dispatcher.
package schedule

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/prodscout/prodscout/internal/metrics"
	"github.com/prodscout/prodscout/internal/research"
)

// Spec configures the recurring schedule. Immutable for the lifetime of
// the scheduler.
type Spec struct {
	Keywords  []string
	AmazonURL string
	SourceIDs []string
	CronExpr  string
	Recipient string
}

// Executor runs one research pass for one keyword.
type Executor interface {
	Execute(ctx context.Context, q research.Query, sourceIDs []string) (research.RunSummary, error)
}

// Digest delivers one tick's results.
type Digest interface {
	Send(ctx context.Context, results []research.TickResult) error
}

// Scheduler fires research ticks on a five-field cron expression.
// Missed ticks are never backfilled: this is fire-on-schedule only, not
// a durable job queue.
type Scheduler struct {
	spec     Spec
	executor Executor
	digest   Digest
	logger   *zap.Logger

	cron     *cron.Cron
	stopOnce sync.Once
	stopped  chan struct{}
}

// New builds a Scheduler for the given spec.
func New(spec Spec, executor Executor, digest Digest, logger *zap.Logger) *Scheduler {
	// Standard 5-field parser (minute hour day month weekday).
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	return &Scheduler{
		spec:     spec,
		executor: executor,
		digest:   digest,
		logger:   logger,
		cron:     cron.New(cron.WithParser(parser), cron.WithChain(cron.Recover(cron.DefaultLogger))),
		stopped:  make(chan struct{}),
	}
}

// Start registers the tick job and blocks until the context is cancelled
// or Stop is called. A malformed cron expression is a configuration
// error reported before anything fires.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec.CronExpr, func() { s.runTick(ctx) }); err != nil {
		return fmt.Errorf("%w: invalid cron expression %q: %v", research.ErrConfiguration, s.spec.CronExpr, err)
	}

	s.cron.Start()
	s.logger.Info("recurring schedule started",
		zap.String("cron", s.spec.CronExpr),
		zap.Strings("keywords", s.spec.Keywords),
		zap.String("recipient", s.spec.Recipient))

	select {
	case <-ctx.Done():
	case <-s.stopped:
	}

	// Drain: let an in-flight tick finish rather than interrupting it.
	<-s.cron.Stop().Done()
	s.logger.Info("recurring schedule stopped")
	return nil
}

// Stop halts future firings. In-flight ticks complete.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopped) })
}

// runTick executes every configured keyword in order and sends the
// digest exactly once, even when every keyword failed: the digest is how
// failures reach the operator.
func (s *Scheduler) runTick(ctx context.Context) {
	metrics.IncTick()
	s.logger.Info("tick started", zap.Int("keywords", len(s.spec.Keywords)))

	results := make([]research.TickResult, 0, len(s.spec.Keywords))
	for _, keyword := range s.spec.Keywords {
		q := research.Query{Keyword: keyword, AmazonURL: s.spec.AmazonURL}
		summary, err := s.executor.Execute(ctx, q, s.spec.SourceIDs)
		if err != nil {
			// One keyword's failure never aborts the rest of the tick.
			s.logger.Error("keyword run failed", zap.String("keyword", keyword), zap.Error(err))
			results = append(results, research.TickResult{Keyword: keyword, Err: err})
			continue
		}
		results = append(results, research.TickResult{
			Keyword:     keyword,
			Summary:     summary,
			SummaryPath: summary.SummaryPath,
		})
	}

	if err := s.digest.Send(ctx, results); err != nil {
		// Reported, not retried within the tick; artifacts stay persisted.
		s.logger.Error("digest delivery failed", zap.Error(err))
		metrics.IncDigest("failed")
		return
	}
	metrics.IncDigest("ok")
	s.logger.Info("tick finished", zap.Int("results", len(results)))
}
