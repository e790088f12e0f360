// Package mrms maintains the frame-metadata catalog of a radar imagery
// pipeline. Renderers write images to deterministic paths and then call
// RecordFrame; the catalog reconciles each run directory against its run
// document, keeps the product-type index current, and replaces every
// document atomically so a front end polling the output tree never sees a
// partial write.
//
// Example usage:
//
//	client, err := mrms.New(mrms.WithOutputRoot("/srv/output"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	client.OnFrameRecorded(func(id catalogs.ProductID, frame catalogs.Frame) {
//	    log.Printf("product %d: %s", id, frame.Valid)
//	})
//
//	result, err := client.RecordFrame(ctx, mrms.FrameRequest{
//	    ProductID: 1,
//	    ValidTime: valid,
//	})
//
// Every call is independent: there is no in-memory state shared between
// invocations beyond the documents on disk.
package mrms

import (
	"time"

	"github.com/hdwx/mrms/pkg/catalogs"
	"github.com/hdwx/mrms/pkg/errors"
	"github.com/hdwx/mrms/pkg/logging"
	"github.com/hdwx/mrms/pkg/metrics"
	"github.com/hdwx/mrms/pkg/reconcile"
	"github.com/hdwx/mrms/pkg/store"
)

// Compile-time interface check to ensure proper implementation.
var _ Client = (*client)(nil)

// Client records frames and answers catalog queries.
type Client interface {

	// Recorder handles the catalog write path
	Recorder

	// Reindexer heals whole output trees
	Reindexer

	// Reader loads catalog documents
	Reader

	// Hooks provides access to event callback registration
	Hooks

	// Registry returns the product definitions in use
	Registry() *catalogs.Registry

	// Store returns the document store in use
	Store() store.Store
}

// client is the internal implementation of the Client interface.
type client struct {
	options  *options
	registry *catalogs.Registry
	store    store.Store
	policy   reconcile.Policy
	metrics  *metrics.Recorder
	hooks    *hooks
}

// New creates a new Client with the given options. Without WithStore the
// client writes under WithOutputRoot (default ./output) on the local
// filesystem.
func New(opts ...Option) (Client, error) {
	o, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}

	c := &client{
		options:  o,
		registry: o.registry,
		store:    o.store,
		policy:   o.policy,
		metrics:  o.metrics,
		hooks:    newHooks(),
	}

	if c.store == nil {
		fsStore, err := store.NewOS(o.outputRoot)
		if err != nil {
			return nil, errors.NewConfigError("store", "opening output root "+o.outputRoot, err)
		}
		c.store = fsStore
	}

	logging.Debug().
		Str("output_root", o.outputRoot).
		Str("conflict_policy", c.policy.String()).
		Int("products", len(c.registry.Specs())).
		Msg("Catalog client ready")

	return c, nil
}

// Registry implements Client.
func (c *client) Registry() *catalogs.Registry {
	return c.registry
}

// Store implements Client.
func (c *client) Store() store.Store {
	return c.store
}

func (c *client) now() time.Time {
	return c.options.clock().UTC()
}
