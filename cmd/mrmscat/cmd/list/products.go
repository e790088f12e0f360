package list

import (
	"github.com/spf13/cobra"

	"github.com/hdwx/mrms/internal/appcontext"
	"github.com/hdwx/mrms/internal/cmd/cmdutil"
	"github.com/hdwx/mrms/internal/cmd/output"
	"github.com/hdwx/mrms/pkg/catalogs"
	"github.com/hdwx/mrms/pkg/errors"
)

// ProductEntry pairs a product definition with its published summary.
type ProductEntry struct {
	ID          catalogs.ProductID     `json:"productID" yaml:"productID"`
	TypeID      catalogs.ProductTypeID `json:"productTypeID" yaml:"productTypeID"`
	Description string                 `json:"productDescription" yaml:"productDescription"`
	Path        string                 `json:"productPath" yaml:"productPath"`
	IsGIS       bool                   `json:"isGIS" yaml:"isGIS"`
	Summary     *catalogs.Product      `json:"summary,omitempty" yaml:"summary,omitempty"`
}

// NewProductsCommand creates the list products subcommand.
func NewProductsCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "products",
		Aliases: []string{"product"},
		Short:   "List product definitions and their summaries",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := cmdutil.Context(cmd)
			defer cancel()

			client, err := app.Client()
			if err != nil {
				return err
			}

			specs := client.Registry().Specs()
			summaries := make(map[catalogs.ProductID]*catalogs.Product, len(specs))
			entries := make([]ProductEntry, 0, len(specs))
			for _, spec := range specs {
				summary, err := client.Product(ctx, spec.ID)
				switch {
				case errors.IsNotFound(err):
					summary = nil
				case err != nil:
					return err
				}
				summaries[spec.ID] = summary
				entries = append(entries, ProductEntry{
					ID:          spec.ID,
					TypeID:      spec.TypeID,
					Description: spec.Description,
					Path:        spec.Path,
					IsGIS:       spec.IsGIS,
					Summary:     summary,
				})
			}

			app.Logger().Debug().Int("products", len(entries)).Msg("Listed products")

			table := output.ProductsTable(specs, summaries)
			return output.Write(cmd.OutOrStdout(), output.Format(app.OutputFormat()), &table, entries)
		},
	}
}
