package reconcile

import (
	"slices"

	"github.com/hdwx/mrms/pkg/catalogs"
	"github.com/hdwx/mrms/pkg/errors"
)

// Conflict records two distinct frames found for one valid time and the one
// that was kept.
type Conflict struct {
	Valid    string
	Held     catalogs.Frame
	Incoming catalogs.Frame
	Kept     catalogs.Frame
}

// Result is the outcome of a merge.
type Result struct {
	// Frames is the merged list, sorted by valid time.
	Frames []catalogs.Frame

	// Changes describes how Frames differs from the existing list.
	Changes *Changeset

	// Conflicts lists every valid time that had distinct records.
	Conflicts []Conflict
}

// Changed reports whether the merged list differs from the existing one.
func (r *Result) Changed() bool {
	return r.Changes.HasChanges()
}

// MergeFrames folds observed into existing. Records are taken in order,
// existing first: an identical record for a valid time already held is
// dropped, a distinct one is a conflict resolved by policy. Under Strict any
// conflict returns an errors.ConflictError together with the result; its
// ProductID and Run are left for the caller to fill in.
func MergeFrames(existing, observed []catalogs.Frame, policy Policy) (*Result, error) {
	policy, err := ParsePolicy(string(policy))
	if err != nil {
		return nil, err
	}

	held := make(map[string]int, len(existing)+len(observed))
	merged := make([]catalogs.Frame, 0, len(existing)+len(observed))
	var conflicts []Conflict
	strictFailed := false

	for _, incoming := range slices.Concat(existing, observed) {
		i, ok := held[incoming.Valid]
		if !ok {
			held[incoming.Valid] = len(merged)
			merged = append(merged, incoming)
			continue
		}
		if merged[i] == incoming {
			continue
		}
		kept, resolved := policy.resolve(merged[i], incoming)
		if !resolved {
			strictFailed = true
		}
		conflicts = append(conflicts, Conflict{
			Valid:    incoming.Valid,
			Held:     merged[i],
			Incoming: incoming,
			Kept:     kept,
		})
		merged[i] = kept
	}

	catalogs.SortFrames(merged)
	result := &Result{
		Frames:    merged,
		Changes:   Diff(existing, merged),
		Conflicts: conflicts,
	}
	if strictFailed {
		return result, errors.NewConflictError(0, "", result.ConflictValids())
	}
	return result, nil
}

// ConflictValids returns the distinct valid times that had conflicts.
func (r *Result) ConflictValids() []string {
	var valids []string
	for _, c := range r.Conflicts {
		if !slices.Contains(valids, c.Valid) {
			valids = append(valids, c.Valid)
		}
	}
	slices.Sort(valids)
	return valids
}
