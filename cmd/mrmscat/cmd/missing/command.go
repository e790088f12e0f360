// Package missing implements "mrmscat missing", which tells the retrieval
// job which valid times still need rendering.
package missing

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/hdwx/mrms/internal/appcontext"
	"github.com/hdwx/mrms/internal/cmd/cmdutil"
	"github.com/hdwx/mrms/internal/cmd/output"
	"github.com/hdwx/mrms/pkg/catalogs"
	"github.com/hdwx/mrms/pkg/errors"
)

// Flags holds the missing command flags.
type Flags struct {
	Product int
	Last    time.Duration
	Step    time.Duration
	To      string
}

// Result lists the candidate times without a recorded frame.
type Result struct {
	ProductID catalogs.ProductID `json:"productID" yaml:"productID"`
	Missing   []string           `json:"missing" yaml:"missing"`
}

// NewCommand creates the missing command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "missing [time...]",
		GroupID: "query",
		Short:   "List valid times that have no recorded frame",
		Long: `Missing checks candidate valid times against the run documents of one
product and prints those with no frame. Candidates are the given times, or
every --step over the --last window ending at --to (default now).`,
		Example: `  mrmscat missing --product 1 202205011200 202205011202
  mrmscat missing --product 0 --last 2h --step 2m`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, app, flags, args)
		},
	}

	cmd.Flags().IntVarP(&flags.Product, "product", "p", -1, "product ID (required)")
	cmd.Flags().DurationVar(&flags.Last, "last", time.Hour, "window length when no times are given")
	cmd.Flags().DurationVar(&flags.Step, "step", 2*time.Minute, "candidate spacing when no times are given")
	cmd.Flags().StringVar(&flags.To, "to", "", "window end (default now)")
	_ = cmd.MarkFlagRequired("product")

	return cmd
}

func run(cmd *cobra.Command, app appcontext.Interface, flags *Flags, args []string) error {
	ctx, cancel := cmdutil.Context(cmd)
	defer cancel()

	client, err := app.Client()
	if err != nil {
		return err
	}
	id := catalogs.ProductID(flags.Product)
	if _, err := client.Registry().Lookup(id); err != nil {
		return err
	}

	candidates, err := Candidates(args, flags, time.Now())
	if err != nil {
		return err
	}

	missing, err := client.MissingTimes(ctx, id, candidates)
	if err != nil {
		return err
	}

	result := Result{ProductID: id, Missing: make([]string, 0, len(missing))}
	for _, t := range missing {
		result.Missing = append(result.Missing, catalogs.FormatStamp(t))
	}
	app.Logger().Debug().
		Int("product_id", int(id)).
		Int("candidates", len(candidates)).
		Int("missing", len(missing)).
		Msg("Checked candidate times")

	table := output.StampsTable("Missing", result.Missing)
	return output.Write(cmd.OutOrStdout(), output.Format(app.OutputFormat()), &table, result)
}

// Candidates returns the explicit times in args, or the --last window of
// --step times ending at --to.
func Candidates(args []string, flags *Flags, now time.Time) ([]time.Time, error) {
	if len(args) > 0 {
		times := make([]time.Time, 0, len(args))
		for _, arg := range args {
			t, err := cmdutil.ParseTime(arg)
			if err != nil {
				return nil, err
			}
			times = append(times, t)
		}
		return times, nil
	}

	end := now.UTC()
	if flags.To != "" {
		t, err := cmdutil.ParseTime(flags.To)
		if err != nil {
			return nil, err
		}
		end = t
	}
	if flags.Last <= 0 {
		return nil, errors.NewValidationError("last", flags.Last, "must be positive")
	}
	return cmdutil.Window(end.Add(-flags.Last), end, flags.Step)
}
