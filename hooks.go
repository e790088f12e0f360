package mrms

import (
	"sync"

	"github.com/hdwx/mrms/pkg/catalogs"
	"github.com/hdwx/mrms/pkg/reconcile"
)

// Hook function types for catalog events
type (
	// FrameRecordedHook is called for each frame newly added to a run document
	FrameRecordedHook func(product catalogs.ProductID, frame catalogs.Frame)

	// ConflictHook is called for each conflict found while merging a run
	ConflictHook func(product catalogs.ProductID, conflict reconcile.Conflict)

	// RunPublishedHook is called after a run document has been written
	RunPublishedHook func(product catalogs.ProductID, run *catalogs.ProductRun)
)

// Hooks provides event callback registration.
type Hooks interface {
	// OnFrameRecorded registers a callback for frames added to the catalog
	OnFrameRecorded(FrameRecordedHook)

	// OnConflict registers a callback for frame conflicts
	OnConflict(ConflictHook)

	// OnRunPublished registers a callback for written run documents
	OnRunPublished(RunPublishedHook)
}

// hooks manages event callbacks for catalog changes
type hooks struct {
	mu              sync.RWMutex
	onFrameRecorded []FrameRecordedHook
	onConflict      []ConflictHook
	onRunPublished  []RunPublishedHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

// OnFrameRecorded implements Hooks.
func (c *client) OnFrameRecorded(fn FrameRecordedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onFrameRecorded = append(c.hooks.onFrameRecorded, fn)
}

// OnConflict implements Hooks.
func (c *client) OnConflict(fn ConflictHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onConflict = append(c.hooks.onConflict, fn)
}

// OnRunPublished implements Hooks.
func (c *client) OnRunPublished(fn RunPublishedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onRunPublished = append(c.hooks.onRunPublished, fn)
}

// runEvents is what a single run merge has to report once it is persisted.
type runEvents struct {
	product   catalogs.ProductID
	run       *catalogs.ProductRun
	added     []catalogs.Frame
	conflicts []reconcile.Conflict
	published bool
}

// trigger calls the registered hooks for ev in order: conflicts, added
// frames, then the published run.
func (h *hooks) trigger(ev runEvents) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, conflict := range ev.conflicts {
		for _, hook := range h.onConflict {
			hook(ev.product, conflict)
		}
	}
	for _, frame := range ev.added {
		for _, hook := range h.onFrameRecorded {
			hook(ev.product, frame)
		}
	}
	if ev.published && ev.run != nil {
		for _, hook := range h.onRunPublished {
			hook(ev.product, ev.run)
		}
	}
}
