// Package reconcile merges the frames recorded in a run document with the
// frames observed on disk.
package reconcile

import (
	"strings"

	"github.com/hdwx/mrms/pkg/catalogs"
	"github.com/hdwx/mrms/pkg/errors"
)

// Policy decides which record survives when two distinct frames claim the
// same valid time.
type Policy string

const (
	// PreferObserved keeps the most recently reconciled record.
	PreferObserved Policy = "prefer-observed"
	// PreferExisting keeps the record already in the run document.
	PreferExisting Policy = "prefer-existing"
	// Strict refuses to merge and reports every conflict as an error.
	Strict Policy = "strict"
)

// DefaultPolicy is used when no policy is configured.
const DefaultPolicy = PreferObserved

// Policies lists every supported policy.
func Policies() []Policy {
	return []Policy{PreferObserved, PreferExisting, Strict}
}

// ParsePolicy parses a policy name. The empty string selects DefaultPolicy.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return DefaultPolicy, nil
	case PreferObserved, PreferExisting, Strict:
		return p, nil
	default:
		return "", errors.NewValidationError("conflict_policy", s,
			"must be one of prefer-observed, prefer-existing, strict")
	}
}

// String returns the policy name.
func (p Policy) String() string {
	return string(p)
}

// Description returns a human-readable description.
func (p Policy) Description() string {
	switch p {
	case PreferObserved:
		return "Keeps the most recently reconciled frame record"
	case PreferExisting:
		return "Keeps the frame record already in the run document"
	case Strict:
		return "Fails the merge on any conflicting frame records"
	default:
		return "Unknown policy"
	}
}

// resolve picks the surviving record. ok is false under Strict.
func (p Policy) resolve(held, incoming catalogs.Frame) (catalogs.Frame, bool) {
	switch p {
	case PreferExisting:
		return held, true
	case Strict:
		return held, false
	default:
		return incoming, true
	}
}
