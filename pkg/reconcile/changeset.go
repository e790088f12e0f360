package reconcile

import (
	"fmt"
	"strings"

	"github.com/hdwx/mrms/pkg/catalogs"
)

// FrameUpdate is a frame whose record changed for the same valid time.
type FrameUpdate struct {
	Valid string
	Old   catalogs.Frame
	New   catalogs.Frame
}

// Changeset represents the changes between two frame lists.
type Changeset struct {
	Added   []catalogs.Frame // Frames with a new valid time
	Updated []FrameUpdate    // Frames whose record changed
	Removed []catalogs.Frame // Frames no longer present
}

// Diff compares two frame lists keyed by valid time. Repeated records for one
// valid time in old count as a change once collapsed.
func Diff(old, updated []catalogs.Frame) *Changeset {
	c := &Changeset{}
	before := make(map[string]catalogs.Frame, len(old))
	repeated := make(map[string]bool)
	for _, f := range old {
		if _, ok := before[f.Valid]; ok {
			repeated[f.Valid] = true
		}
		before[f.Valid] = f
	}
	after := make(map[string]bool, len(updated))
	for _, f := range updated {
		after[f.Valid] = true
		prev, ok := before[f.Valid]
		switch {
		case !ok:
			c.Added = append(c.Added, f)
		case prev != f || repeated[f.Valid]:
			c.Updated = append(c.Updated, FrameUpdate{Valid: f.Valid, Old: prev, New: f})
		}
	}
	for _, f := range old {
		if !after[f.Valid] {
			c.Removed = append(c.Removed, f)
			after[f.Valid] = true
		}
	}
	return c
}

// HasChanges returns true if the changeset contains any changes.
func (c *Changeset) HasChanges() bool {
	return c != nil && (len(c.Added) > 0 || len(c.Updated) > 0 || len(c.Removed) > 0)
}

// String returns a human-readable summary of the changeset.
func (c *Changeset) String() string {
	if !c.HasChanges() {
		return "No changes detected"
	}
	var parts []string
	if len(c.Added) > 0 {
		parts = append(parts, fmt.Sprintf("%d added", len(c.Added)))
	}
	if len(c.Updated) > 0 {
		parts = append(parts, fmt.Sprintf("%d updated", len(c.Updated)))
	}
	if len(c.Removed) > 0 {
		parts = append(parts, fmt.Sprintf("%d removed", len(c.Removed)))
	}
	return "Frames: " + strings.Join(parts, ", ")
}
