// Package record implements "mrmscat record", the call renderers make after
// writing a frame image.
package record

import (
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/hdwx/mrms"
	"github.com/hdwx/mrms/internal/appcontext"
	"github.com/hdwx/mrms/internal/cmd/cmdutil"
	"github.com/hdwx/mrms/internal/cmd/output"
	"github.com/hdwx/mrms/pkg/catalogs"
	"github.com/hdwx/mrms/pkg/errors"
)

// Flags holds the record command flags.
type Flags struct {
	Products   *cmdutil.ProductFlags
	Valid      string
	Filename   string
	GIS        []string
	Reload     int
	StatusFile string
}

// NewCommand creates the record command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "record",
		GroupID: "core",
		Short:   "Record a rendered frame in the catalog",
		Long: `Record adds a frame image that has already been written to its run
directory. The run directory is reconciled with the run document first, so
frames written by a crashed earlier call are picked up as well. The product
summary, run document and product type index are then replaced atomically.

With several products (or --all) each product is recorded in turn. When
every product succeeds and a status file is configured, a status document
is written below the output root.`,
		Example: `  mrmscat record --product 1 --valid 202205011205
  mrmscat record --all --valid 2022-05-01T12:05:00Z
  mrmscat record -p 0 --valid 202205011205 --gis 23.5,-129 --gis 51,-65`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, app, flags)
		},
	}

	flags.Products = cmdutil.AddProductFlags(cmd)
	cmd.Flags().StringVar(&flags.Valid, "valid", "", "valid time: YYYYMMDDHHMM or RFC 3339 (required)")
	cmd.Flags().StringVar(&flags.Filename, "filename", "", "image file name in the run directory (default MM.<ext>)")
	cmd.Flags().StringArrayVar(&flags.GIS, "gis", nil, `GIS corner "lat,lon"; give twice to override the product's corners`)
	cmd.Flags().IntVar(&flags.Reload, "reload", 0, "reload hint in seconds for the product summary (default from config)")
	cmd.Flags().StringVar(&flags.StatusFile, "status-file", "", "status document path below the output root (default from config)")
	_ = cmd.MarkFlagRequired("valid")

	return cmd
}

func run(cmd *cobra.Command, app appcontext.Interface, flags *Flags) error {
	ctx, cancel := cmdutil.Context(cmd)
	defer cancel()

	logger := app.Logger()

	client, err := app.Client()
	if err != nil {
		return err
	}

	ids, err := flags.Products.IDs(client.Registry(), false)
	if err != nil {
		return err
	}
	valid, err := cmdutil.ParseTime(flags.Valid)
	if err != nil {
		return err
	}

	var gis *catalogs.GISInfo
	if len(flags.GIS) > 0 {
		parsed, err := catalogs.ParseGISInfo(flags.GIS)
		if err != nil {
			return errors.WrapValidation("gis", err)
		}
		gis = &parsed
	}

	status := NewStatus(valid)
	var errs *multierror.Error
	for _, id := range ids {
		result, err := client.RecordFrame(ctx, mrms.FrameRequest{
			ProductID:     id,
			ValidTime:     valid,
			Filename:      flags.Filename,
			GISInfo:       gis,
			ReloadSeconds: flags.Reload,
		})
		if err != nil {
			logger.Error().Err(err).Int("product_id", int(id)).Str("batch_id", status.BatchID).Msg("Record failed")
			errs = multierror.Append(errs, err)
			continue
		}
		status.Add(result)
	}
	if err := errs.ErrorOrNil(); err != nil {
		return err
	}

	statusFile := flags.StatusFile
	if statusFile == "" {
		statusFile = app.StatusFile()
	}
	if statusFile != "" {
		status.CompletedTime = catalogs.FormatStamp(time.Now())
		if err := client.Store().Save(statusFile, status); err != nil {
			return err
		}
		logger.Debug().Str("path", statusFile).Str("batch_id", status.BatchID).Msg("Wrote status document")
	}

	format := output.Format(app.OutputFormat())
	table := status.Table()
	return output.Write(cmd.OutOrStdout(), format, &table, status)
}
