// Package show implements "mrmscat show", which prints single catalog
// documents.
package show

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hdwx/mrms/internal/appcontext"
	"github.com/hdwx/mrms/internal/cmd/cmdutil"
	"github.com/hdwx/mrms/internal/cmd/output"
	"github.com/hdwx/mrms/pkg/catalogs"
)

// NewCommand creates the show command with its subcommands.
func NewCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "show [document]",
		GroupID: "query",
		Short:   "Print a catalog document",
		Example: `  mrmscat show run --product 1 --run 2022050112
  mrmscat show index -o json`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return fmt.Errorf("unknown document: %s", args[0])
		},
	}

	cmd.AddCommand(newRunCommand(app))
	cmd.AddCommand(newIndexCommand(app))

	return cmd
}

func newRunCommand(app appcontext.Interface) *cobra.Command {
	var (
		product int
		runTime string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Print the run document of a product and hour",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := cmdutil.Context(cmd)
			defer cancel()

			client, err := app.Client()
			if err != nil {
				return err
			}
			t, err := cmdutil.ParseTime(runTime)
			if err != nil {
				return err
			}

			run, err := client.Run(ctx, catalogs.ProductID(product), t)
			if err != nil {
				return err
			}

			table := output.FramesTable(run)
			return output.Write(cmd.OutOrStdout(), output.Format(app.OutputFormat()), &table, run)
		},
	}

	cmd.Flags().IntVarP(&product, "product", "p", -1, "product ID (required)")
	cmd.Flags().StringVar(&runTime, "run", "", "run hour: YYYYMMDDHH, YYYYMMDDHHMM or RFC 3339 (required)")
	_ = cmd.MarkFlagRequired("product")
	_ = cmd.MarkFlagRequired("run")

	return cmd
}

func newIndexCommand(app appcontext.Interface) *cobra.Command {
	var typeID int

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Print the product type index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := cmdutil.Context(cmd)
			defer cancel()

			client, err := app.Client()
			if err != nil {
				return err
			}
			pt, err := client.ProductType(ctx, catalogs.ProductTypeID(typeID))
			if err != nil {
				return err
			}

			// The index is a nested document; tables show its product list.
			specs := client.Registry().ProductsOfType(pt.ProductTypeID)
			summaries := make(map[catalogs.ProductID]*catalogs.Product, len(pt.Products))
			for i := range pt.Products {
				summaries[pt.Products[i].ProductID] = &pt.Products[i]
			}
			table := output.ProductsTable(specs, summaries)
			return output.Write(cmd.OutOrStdout(), output.Format(app.OutputFormat()), &table, pt)
		},
	}

	cmd.Flags().IntVar(&typeID, "type", int(catalogs.Reflectivity.ID), "product type ID")

	return cmd
}
