// Package list implements "mrmscat list", which lists products and runs.
package list

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hdwx/mrms/internal/appcontext"
)

// NewCommand creates the list command with its subcommands.
func NewCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list [resource]",
		GroupID: "query",
		Short:   "List catalog resources",
		Long: `List displays catalog resources.

Available subcommands:
  products  - product definitions and their published summaries
  runs      - run documents of one product`,
		Example: `  mrmscat list products
  mrmscat list runs --product 1 -o json`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return fmt.Errorf("unknown resource: %s", args[0])
		},
	}

	cmd.AddCommand(NewProductsCommand(app))
	cmd.AddCommand(NewRunsCommand(app))

	return cmd
}
