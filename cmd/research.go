package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/prodscout/prodscout/internal/research"
)

// newResearchCmd creates the one-shot research command.
func newResearchCmd() *cobra.Command {
	var (
		keywords  []string
		amazonURL string
		sourceIDs []string
	)

	cmd := &cobra.Command{
		Use:   "research",
		Short: "Run one research pass for the given keywords and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}

			for _, keyword := range keywords {
				q := research.Query{Keyword: keyword, AmazonURL: amazonURL}
				summary, err := appInstance.Runner().Execute(cmd.Context(), q, sourceIDs)
				if err != nil {
					return err
				}
				printSummary(summary)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&keywords, "keyword", nil, "keyword to research (repeatable)")
	cmd.Flags().StringVar(&amazonURL, "amazon", "", "Amazon bestseller listing URL for the marketplace source")
	cmd.Flags().StringSliceVar(&sourceIDs, "sources", research.DefaultSources, "source ids to collect from")
	_ = cmd.MarkFlagRequired("keyword") //nolint:errcheck // flag exists

	return cmd
}

// printSummary renders one run's outcome as a console table.
func printSummary(summary research.RunSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Field", "Value"})
	t.AppendRows([]table.Row{
		{"run_id", summary.RunID},
		{"keyword", summary.Keyword},
		{"demand_score", fmt.Sprintf("%.2f", summary.DemandScore)},
		{"competition_gauge", summary.CompetitionGauge},
		{"timestamp", summary.Timestamp.Format("2006-01-02 15:04:05 MST")},
		{"sources", formatStatuses(summary.SourceStatuses)},
		{"summary", summary.SummaryPath},
	})
	t.Render()
}

func formatStatuses(statuses map[string]research.StatusEntry) string {
	parts := make([]string, 0, len(statuses))
	for id, entry := range statuses {
		if entry.Reason != "" {
			parts = append(parts, fmt.Sprintf("%s=%s (%s)", id, entry.Status, entry.Reason))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%s", id, entry.Status))
	}
	sort.Strings(parts)
	return strings.Join(parts, "\n")
}
