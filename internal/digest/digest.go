// Package digest formats the multi-keyword tick digest and delegates
// delivery to a Mailer.
package digest

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/prodscout/prodscout/internal/research"
)

// Dispatcher assembles and sends the per-tick digest email.
type Dispatcher struct {
	mailer research.Mailer
	clock  research.Clock
	logger *zap.Logger
}

// New builds a Dispatcher.
func New(mailer research.Mailer, clock research.Clock, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		mailer: mailer,
		clock:  clock,
		logger: logger,
	}
}

// Send delivers one digest for the tick's results, in input order.
// Keywords that failed appear in the body but contribute no attachment.
// A transport failure is reported to the caller; there is no retry
// within the tick.
func (d *Dispatcher) Send(ctx context.Context, results []research.TickResult) error {
	subject := fmt.Sprintf("Product Research Digest - %s", d.clock.Now().Format("2006-01-02"))
	body := renderBody(results)

	var attachments []string
	for _, res := range results {
		if res.Err == nil && res.SummaryPath != "" {
			attachments = append(attachments, res.SummaryPath)
		}
	}

	if err := d.mailer.Deliver(ctx, subject, body, attachments); err != nil {
		return fmt.Errorf("%w: send digest: %v", research.ErrDelivery, err)
	}

	d.logger.Info("digest sent",
		zap.Int("keywords", len(results)),
		zap.Int("attachments", len(attachments)))
	return nil
}

// renderBody concatenates one block per keyword, blank-line separated.
func renderBody(results []research.TickResult) string {
	blocks := make([]string, 0, len(results))
	for _, res := range results {
		blocks = append(blocks, renderBlock(res))
	}
	return strings.Join(blocks, "\n\n")
}

func renderBlock(res research.TickResult) string {
	if res.Err != nil {
		return strings.Join([]string{
			"keyword:           " + res.Keyword,
			"status:            run failed",
			"error:             " + res.Err.Error(),
		}, "\n")
	}

	sum := res.Summary
	return strings.Join([]string{
		"keyword:           " + sum.Keyword,
		fmt.Sprintf("demand_score:      %.2f", sum.DemandScore),
		fmt.Sprintf("competition_gauge: %d", sum.CompetitionGauge),
		"timestamp:         " + sum.Timestamp.Format("2006-01-02 15:04:05 MST"),
		"sources:           " + renderStatuses(sum.SourceStatuses),
	}, "\n")
}

func renderStatuses(statuses map[string]research.StatusEntry) string {
	ids := make([]string, 0, len(statuses))
	for id := range statuses {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		entry := statuses[id]
		if entry.Status == research.StatusFailed && entry.Reason != "" {
			parts = append(parts, fmt.Sprintf("%s=%s (%s)", id, entry.Status, entry.Reason))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%s", id, entry.Status))
	}
	return strings.Join(parts, ", ")
}
