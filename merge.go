package mrms

import (
	"context"
	"time"

	"github.com/hdwx/mrms/pkg/catalogs"
	"github.com/hdwx/mrms/pkg/errors"
	"github.com/hdwx/mrms/pkg/logging"
	"github.com/hdwx/mrms/pkg/reconcile"
)

// mergedRun is a run document reconciled against its directory, not yet
// persisted.
type mergedRun struct {
	spec       catalogs.ProductSpec
	hour       time.Time
	path       string
	found      bool
	discovered []catalogs.Frame
	result     *reconcile.Result
}

// mergeRun loads the run document for hour, lists the run directory and
// merges both with requested, if any. Nothing is written. A strict-policy
// conflict returns the merge alongside the error so the conflicts can still
// be reported.
func (c *client) mergeRun(ctx context.Context, spec catalogs.ProductSpec, hour time.Time, requested *catalogs.Frame) (*mergedRun, error) {
	logger := logging.FromContext(ctx)

	m := &mergedRun{
		spec: spec,
		hour: catalogs.RunHour(hour),
		path: catalogs.RunDocumentPath(spec.ID, hour),
	}

	existing := &catalogs.ProductRun{}
	found, err := c.store.Load(m.path, existing)
	if err != nil {
		return nil, err
	}
	m.found = found

	runDir := spec.RunDir(m.hour)
	names, err := c.store.List(runDir)
	if err != nil {
		return nil, err
	}

	recorded := existing.Filenames()
	if requested != nil {
		recorded[requested.Filename] = true
	}
	listing := reconcile.ObserveDirectory(names, recorded, spec, m.hour)
	for _, name := range listing.Ignored {
		logger.Debug().Str("dir", runDir).Str("name", name).Msg("Ignoring non-frame file")
	}
	m.discovered = listing.Frames

	observed := listing.Frames
	if requested != nil {
		observed = append(observed, *requested)
	}

	m.result, err = reconcile.MergeFrames(existing.ProductFrames, observed, c.policy)
	if m.result != nil {
		for _, conflict := range m.result.Conflicts {
			logger.Warn().
				Str("valid", conflict.Valid).
				Str("held", conflict.Held.Filename).
				Str("incoming", conflict.Incoming.Filename).
				Str("policy", c.policy.String()).
				Msg("Conflicting frame records")
		}
		c.metrics.Conflicts(int(spec.ID), c.policy.String(), len(m.result.Conflicts))
	}
	if err != nil {
		var conflictErr *errors.ConflictError
		if errors.As(err, &conflictErr) {
			conflictErr.ProductID = int(spec.ID)
			conflictErr.Run = catalogs.FormatStamp(m.hour)
		}
		if m.result == nil {
			return nil, err
		}
		return m, err
	}

	if len(m.discovered) > 0 {
		logger.Info().Int("frames", len(m.discovered)).Msg("Discovered unrecorded frames")
	}
	return m, nil
}

// events returns the hook events for a merge.
func (m *mergedRun) events(run *catalogs.ProductRun, published bool) runEvents {
	return runEvents{
		product:   m.spec.ID,
		run:       run,
		added:     m.result.Changes.Added,
		conflicts: m.result.Conflicts,
		published: published,
	}
}

// saveSummaries refreshes product summaries and their entries in the product
// type index. The index is loaded before anything is written.
func (c *client) saveSummaries(ctx context.Context, typeID catalogs.ProductTypeID, summaries []catalogs.Product) error {
	typeSpec, err := c.registry.Type(typeID)
	if err != nil {
		return err
	}
	index, err := c.loadIndex(ctx, typeSpec)
	if err != nil {
		return err
	}
	for _, summary := range summaries {
		if err := c.store.Save(catalogs.ProductDocumentPath(summary.ProductID), summary); err != nil {
			return err
		}
		c.metrics.DocumentWritten("product")
		index.Upsert(summary)
	}
	if err := c.store.Save(catalogs.TypeDocumentPath(typeID), index); err != nil {
		return err
	}
	c.metrics.DocumentWritten("index")
	logging.FromContext(ctx).Debug().
		Int("product_type_id", int(typeID)).
		Int("products", len(index.Products)).
		Msg("Product type index written")
	return nil
}

// loadIndex loads the product type index, or an empty one if absent. The
// type ID and description always come from the registry.
func (c *client) loadIndex(ctx context.Context, typeSpec catalogs.ProductTypeSpec) (*catalogs.ProductType, error) {
	index := catalogs.NewProductType(typeSpec)
	if _, err := c.store.Load(catalogs.TypeDocumentPath(typeSpec.ID), index); err != nil {
		return nil, err
	}
	if index.Products == nil {
		index.Products = []catalogs.Product{}
	}
	for _, id := range index.Collapse() {
		logging.FromContext(ctx).Warn().
			Int("product_type_id", int(typeSpec.ID)).
			Int("repeated_product_id", int(id)).
			Msg("Collapsing repeated product entry in index")
	}
	index.ProductTypeID = typeSpec.ID
	index.ProductTypeDescription = typeSpec.Description
	return index, nil
}
