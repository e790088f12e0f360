// Package reindex implements "mrmscat reindex", which heals run documents
// from the image files on disk.
package reindex

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/hdwx/mrms"
	"github.com/hdwx/mrms/internal/appcontext"
	"github.com/hdwx/mrms/internal/cmd/cmdutil"
	"github.com/hdwx/mrms/internal/cmd/output"
)

// NewCommand creates the reindex command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var (
		since  string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:     "reindex",
		GroupID: "core",
		Short:   "Reconcile every run directory with its run document",
		Long: `Reindex walks the run directories of the selected products (all of them by
default) and adds every image file the run document does not list yet.
Use it after a renderer crashed between writing an image and recording it,
or to rebuild the metadata tree from images alone.`,
		Example: `  mrmscat reindex
  mrmscat reindex --product 1 --since 6h
  mrmscat reindex --since 202205010000 --dry-run`,
		Args: cobra.NoArgs,
	}
	products := cmdutil.AddProductFlags(cmd)
	cmd.Flags().StringVar(&since, "since", "", "skip runs before this time (duration ago, YYYYMMDDHHMM or RFC 3339)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report changes without writing")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := cmdutil.Context(cmd)
		defer cancel()

		client, err := app.Client()
		if err != nil {
			return err
		}
		ids, err := products.IDs(client.Registry(), true)
		if err != nil {
			return err
		}
		sinceTime, err := cmdutil.ParseSince(since, time.Now())
		if err != nil {
			return err
		}

		opts := []mrms.ReindexOption{mrms.WithDryRun(dryRun)}
		if len(ids) > 0 {
			opts = append(opts, mrms.WithProducts(ids...))
		}
		if !sinceTime.IsZero() {
			opts = append(opts, mrms.WithSince(sinceTime))
		}

		result, err := client.Reindex(ctx, opts...)
		if err != nil {
			return err
		}

		table := Table(result)
		return output.Write(cmd.OutOrStdout(), output.Format(app.OutputFormat()), &table, result)
	}

	return cmd
}

// Table lays out a reindex result one product per row plus a total.
func Table(r *mrms.ReindexResult) output.Data {
	data := output.Data{
		Headers: []string{"Product", "Runs Scanned", "Runs Updated", "Discovered", "Conflicts"},
		ColumnAlignment: []output.Align{
			output.AlignLeft, output.AlignRight, output.AlignRight, output.AlignRight, output.AlignRight,
		},
	}
	row := func(name string, scanned, updated, discovered, conflicts int) []string {
		return []string{
			name,
			strconv.Itoa(scanned),
			strconv.Itoa(updated),
			strconv.Itoa(discovered),
			strconv.Itoa(conflicts),
		}
	}
	for _, p := range r.Products {
		data.Rows = append(data.Rows, row(p.ProductID.String(), p.RunsScanned, p.RunsUpdated, p.FramesDiscovered, p.Conflicts))
	}
	total := "total"
	if r.DryRun {
		total = "total (dry run)"
	}
	data.Rows = append(data.Rows, row(total, r.RunsScanned, r.RunsUpdated, r.FramesDiscovered, r.Conflicts))
	return data
}
