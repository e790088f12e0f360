// Package cmdutil provides shared flags and parsing helpers for mrmscat
// commands.
package cmdutil

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hdwx/mrms/pkg/catalogs"
	"github.com/hdwx/mrms/pkg/errors"
)

// ProductFlags selects the products a command acts on.
type ProductFlags struct {
	Products []int
	All      bool
}

// AddProductFlags adds --product and --all to cmd.
func AddProductFlags(cmd *cobra.Command) *ProductFlags {
	flags := &ProductFlags{}

	cmd.Flags().IntSliceVarP(&flags.Products, "product", "p", nil,
		"Product ID (repeatable or comma separated)")
	cmd.Flags().BoolVar(&flags.All, "all", false,
		"Select every registered product")

	return flags
}

// IDs resolves the selection against the registry. Without --product or
// --all it returns an error unless allowEmpty is set, in which case it
// returns nil meaning "every product".
func (f *ProductFlags) IDs(registry *catalogs.Registry, allowEmpty bool) ([]catalogs.ProductID, error) {
	if f.All {
		var ids []catalogs.ProductID
		for _, spec := range registry.Specs() {
			ids = append(ids, spec.ID)
		}
		return ids, nil
	}
	if len(f.Products) == 0 {
		if allowEmpty {
			return nil, nil
		}
		return nil, errors.NewValidationError("product", nil, "--product or --all is required")
	}
	ids := make([]catalogs.ProductID, 0, len(f.Products))
	for _, p := range f.Products {
		id := catalogs.ProductID(p)
		if _, err := registry.Lookup(id); err != nil {
			return nil, err
		}
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// ParseTime parses a time given as a YYYYMMDDHHMM stamp, a YYYYMMDDHH run
// bucket or RFC 3339.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"200601021504", "2006010215", time.RFC3339} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.NewValidationError("time", s,
		fmt.Sprintf("%q is not YYYYMMDDHHMM, YYYYMMDDHH or RFC 3339", s))
}

// ParseSince parses either a duration before now (e.g. "6h") or an absolute
// time accepted by ParseTime.
func ParseSince(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		return now.Add(-d).UTC(), nil
	}
	return ParseTime(s)
}

// Window returns the times from start to end inclusive, step apart, after
// truncating start to the step.
func Window(start, end time.Time, step time.Duration) ([]time.Time, error) {
	if step <= 0 {
		return nil, errors.NewValidationError("step", step, "must be positive")
	}
	if end.Before(start) {
		return nil, errors.NewValidationError("to", end, "must not be before --from")
	}
	var times []time.Time
	for t := start.UTC().Truncate(step); !t.After(end); t = t.Add(step) {
		times = append(times, t)
	}
	return times, nil
}
