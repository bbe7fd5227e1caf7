package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/prodscout/prodscout/internal/api"
	"github.com/prodscout/prodscout/internal/config"
	"github.com/prodscout/prodscout/internal/digest"
	"github.com/prodscout/prodscout/internal/research"
	"github.com/prodscout/prodscout/internal/schedule"
)

// newScheduleCmd creates the recurring research command.
func newScheduleCmd() *cobra.Command {
	var (
		keywords  []string
		amazonURL string
		sourceIDs []string
		cronExpr  string
		emailTo   string
		smtpJSON  string
		listen    string
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run research on a cron cadence and email a digest per tick",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cronExpr == "" || emailTo == "" || smtpJSON == "" {
				return fmt.Errorf("%w: recurring mode requires --cron, --email_to and --smtp_json together",
					research.ErrConfiguration)
			}

			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}

			smtpCfg, err := config.LoadSMTP(smtpJSON)
			if err != nil {
				return err
			}

			mailer := digest.NewSMTPMailer(smtpCfg, emailTo)
			dispatcher := digest.New(mailer, appInstance.Clock(), appInstance.Logger())

			spec := schedule.Spec{
				Keywords:  keywords,
				AmazonURL: amazonURL,
				SourceIDs: sourceIDs,
				CronExpr:  cronExpr,
				Recipient: emailTo,
			}
			scheduler := schedule.New(spec, appInstance.Runner(), dispatcher, appInstance.Logger())

			if listen == "" {
				listen = appInstance.Config().Admin.Listen
			}
			if listen != "" {
				srv := api.NewServer(listen, appInstance.Logger())
				go srv.Start()
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = srv.Shutdown(shutdownCtx) //nolint:errcheck // best effort on exit
				}()
			}

			return scheduler.Start(cmd.Context())
		},
	}

	cmd.Flags().StringArrayVar(&keywords, "keyword", nil, "keyword to research (repeatable)")
	cmd.Flags().StringVar(&amazonURL, "amazon", "", "Amazon bestseller listing URL for the marketplace source")
	cmd.Flags().StringSliceVar(&sourceIDs, "sources", research.DefaultSources, "source ids to collect from")
	cmd.Flags().StringVar(&cronExpr, "cron", "", "five-field cron expression for the tick cadence")
	cmd.Flags().StringVar(&emailTo, "email_to", "", "digest recipient address")
	cmd.Flags().StringVar(&smtpJSON, "smtp_json", "", "path to the SMTP credential JSON file")
	cmd.Flags().StringVar(&listen, "listen", "", "admin listen address for health and metrics (optional)")
	_ = cmd.MarkFlagRequired("keyword") //nolint:errcheck // flag exists

	return cmd
}
