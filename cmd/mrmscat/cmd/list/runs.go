package list

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/hdwx/mrms/internal/appcontext"
	"github.com/hdwx/mrms/internal/cmd/cmdutil"
	"github.com/hdwx/mrms/internal/cmd/output"
	"github.com/hdwx/mrms/pkg/catalogs"
)

// NewRunsCommand creates the list runs subcommand.
func NewRunsCommand(app appcontext.Interface) *cobra.Command {
	var (
		product int
		since   string
		limit   int
	)

	cmd := &cobra.Command{
		Use:     "runs",
		Aliases: []string{"run"},
		Short:   "List the run documents of a product",
		Example: `  mrmscat list runs --product 1
  mrmscat list runs -p 0 --since 24h --limit 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := cmdutil.Context(cmd)
			defer cancel()

			client, err := app.Client()
			if err != nil {
				return err
			}
			id := catalogs.ProductID(product)
			sinceTime, err := cmdutil.ParseSince(since, time.Now())
			if err != nil {
				return err
			}

			hours, err := client.Runs(ctx, id)
			if err != nil {
				return err
			}
			if !sinceTime.IsZero() {
				start := catalogs.RunHour(sinceTime)
				kept := hours[:0]
				for _, h := range hours {
					if !h.Before(start) {
						kept = append(kept, h)
					}
				}
				hours = kept
			}
			// Newest runs are the interesting ones.
			if limit > 0 && len(hours) > limit {
				hours = hours[len(hours)-limit:]
			}

			runs := make([]output.RunSummary, 0, len(hours))
			for _, h := range hours {
				run, err := client.Run(ctx, id, h)
				if err != nil {
					return err
				}
				runs = append(runs, output.RunSummary{
					Run:         catalogs.FormatStamp(h),
					RunName:     run.RunName,
					Frames:      run.AvailableFrameCount,
					PublishTime: run.PublishTime,
				})
			}

			table := output.RunsTable(runs)
			return output.Write(cmd.OutOrStdout(), output.Format(app.OutputFormat()), &table, runs)
		},
	}

	cmd.Flags().IntVarP(&product, "product", "p", -1, "product ID (required)")
	cmd.Flags().StringVar(&since, "since", "", "skip runs before this time (duration ago, YYYYMMDDHHMM or RFC 3339)")
	cmd.Flags().IntVar(&limit, "limit", 0, "show at most this many of the newest runs")
	_ = cmd.MarkFlagRequired("product")

	return cmd
}
