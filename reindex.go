package mrms

import (
	"context"
	"maps"
	"path"
	"slices"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/hdwx/mrms/pkg/catalogs"
	"github.com/hdwx/mrms/pkg/logging"
)

// Reindexer heals whole output trees.
type Reindexer interface {
	// Reindex reconciles every run directory of the selected products with
	// its run document.
	Reindex(ctx context.Context, opts ...ReindexOption) (*ReindexResult, error)
}

// ReindexOption configures a Reindex call.
type ReindexOption func(*reindexOptions)

type reindexOptions struct {
	products []catalogs.ProductID
	since    time.Time
	dryRun   bool
}

// WithProducts limits the sweep to ids. By default every registry product
// is scanned.
func WithProducts(ids ...catalogs.ProductID) ReindexOption {
	return func(o *reindexOptions) {
		o.products = append(o.products, ids...)
	}
}

// WithSince skips runs older than the hour containing t.
func WithSince(t time.Time) ReindexOption {
	return func(o *reindexOptions) {
		o.since = catalogs.RunHour(t)
	}
}

// WithDryRun reports what would change without writing anything.
func WithDryRun(enabled bool) ReindexOption {
	return func(o *reindexOptions) {
		o.dryRun = enabled
	}
}

// ReindexResult summarizes a sweep.
type ReindexResult struct {
	RunsScanned      int              `json:"runsScanned" yaml:"runsScanned"`
	RunsUpdated      int              `json:"runsUpdated" yaml:"runsUpdated"`
	FramesDiscovered int              `json:"framesDiscovered" yaml:"framesDiscovered"`
	Conflicts        int              `json:"conflicts" yaml:"conflicts"`
	DryRun           bool             `json:"dryRun" yaml:"dryRun"`
	Products         []ProductReindex `json:"products" yaml:"products"`
}

// ProductReindex summarizes the sweep of one product.
type ProductReindex struct {
	ProductID        catalogs.ProductID `json:"productID" yaml:"productID"`
	RunsScanned      int                `json:"runsScanned" yaml:"runsScanned"`
	RunsUpdated      int                `json:"runsUpdated" yaml:"runsUpdated"`
	FramesDiscovered int                `json:"framesDiscovered" yaml:"framesDiscovered"`
	Conflicts        int                `json:"conflicts" yaml:"conflicts"`

	events []runEvents
}

// Reindex implements Reindexer. Products are scanned concurrently; each
// run document belongs to exactly one product so no two workers write the
// same file. Summaries and indexes are written serially once every product
// is done, and only for products that had a run updated.
func (c *client) Reindex(ctx context.Context, opts ...ReindexOption) (result *ReindexResult, err error) {
	start := time.Now()
	defer func() {
		c.metrics.Observe("reindex", start, err)
	}()

	o := &reindexOptions{}
	for _, opt := range opts {
		opt(o)
	}

	specs := c.registry.Specs()
	if len(o.products) > 0 {
		specs = specs[:0:0]
		for _, id := range o.products {
			spec, err := c.registry.Lookup(id)
			if err != nil {
				return nil, err
			}
			if !slices.ContainsFunc(specs, func(s catalogs.ProductSpec) bool { return s.ID == id }) {
				specs = append(specs, spec)
			}
		}
	}

	ctx = logging.WithOperation(ctx, "reindex")
	logger := logging.FromContext(ctx)
	logger.Info().Int("products", len(specs)).Bool("dry_run", o.dryRun).Msg("Reindexing")

	p := pool.NewWithResults[*ProductReindex]().
		WithContext(ctx).
		WithCollectErrored().
		WithMaxGoroutines(c.options.concurrency)
	for _, spec := range specs {
		p.Go(func(ctx context.Context) (*ProductReindex, error) {
			return c.reindexProduct(logging.WithProduct(ctx, int(spec.ID)), spec, o)
		})
	}
	products, poolErr := p.Wait()

	slices.SortFunc(products, func(a, b *ProductReindex) int {
		return int(a.ProductID) - int(b.ProductID)
	})

	result = &ReindexResult{DryRun: o.dryRun}
	summaries := make(map[catalogs.ProductTypeID][]catalogs.Product)
	now := c.now()
	for _, pr := range products {
		result.RunsScanned += pr.RunsScanned
		result.RunsUpdated += pr.RunsUpdated
		result.FramesDiscovered += pr.FramesDiscovered
		result.Conflicts += pr.Conflicts
		result.Products = append(result.Products, *pr)
		for _, ev := range pr.events {
			c.hooks.trigger(ev)
		}
		c.metrics.FramesDiscovered(int(pr.ProductID), pr.FramesDiscovered)

		if pr.RunsUpdated > 0 && !o.dryRun {
			spec, _ := c.registry.Lookup(pr.ProductID)
			summaries[spec.TypeID] = append(summaries[spec.TypeID], c.refreshedSummary(ctx, spec, now))
		}
	}

	for _, typeID := range slices.Sorted(maps.Keys(summaries)) {
		if err := c.saveSummaries(ctx, typeID, summaries[typeID]); err != nil {
			return result, err
		}
	}

	if poolErr != nil {
		return result, poolErr
	}

	logger.Info().
		Int("runs_scanned", result.RunsScanned).
		Int("runs_updated", result.RunsUpdated).
		Int("frames_discovered", result.FramesDiscovered).
		Int("conflicts", result.Conflicts).
		Dur("took", time.Since(start)).
		Msg("Reindex complete")

	return result, nil
}

// refreshedSummary rebuilds a product summary, keeping the reload hint the
// last writer published.
func (c *client) refreshedSummary(ctx context.Context, spec catalogs.ProductSpec, now time.Time) catalogs.Product {
	reload := c.options.reloadSeconds
	var prev catalogs.Product
	found, err := c.store.Load(catalogs.ProductDocumentPath(spec.ID), &prev)
	if err != nil {
		logging.FromContext(ctx).Warn().Err(err).Msg("Rebuilding unreadable product summary")
	} else if found && prev.ProductReloadTime > 0 {
		reload = prev.ProductReloadTime
	}
	return spec.Summary(now, reload)
}

// reindexProduct walks <productPath>/YYYY/MM/DD/HH00 and reconciles each run.
func (c *client) reindexProduct(ctx context.Context, spec catalogs.ProductSpec, o *reindexOptions) (*ProductReindex, error) {
	logger := logging.FromContext(ctx)
	pr := &ProductReindex{ProductID: spec.ID}

	hours, err := c.runHours(spec)
	if err != nil {
		return pr, err
	}

	for _, hour := range hours {
		if err := ctx.Err(); err != nil {
			return pr, err
		}
		if !o.since.IsZero() && hour.Before(o.since) {
			continue
		}

		pr.RunsScanned++
		merged, err := c.mergeRun(logging.WithRun(ctx, hour), spec, hour, nil)
		if merged != nil {
			pr.Conflicts += len(merged.result.Conflicts)
		}
		if err != nil {
			if merged != nil {
				pr.events = append(pr.events, merged.events(nil, false))
			}
			return pr, err
		}
		pr.FramesDiscovered += len(merged.discovered)

		if !merged.result.Changed() && (merged.found || len(merged.result.Frames) == 0) {
			continue
		}

		pr.RunsUpdated++
		if o.dryRun {
			logger.Info().Time("run", hour).Str("changes", merged.result.Changes.String()).Msg("Run would be updated")
			continue
		}

		run := catalogs.NewProductRun(hour, merged.result.Frames, c.now())
		if err := c.store.Save(merged.path, run); err != nil {
			return pr, err
		}
		c.metrics.DocumentWritten("run")
		pr.events = append(pr.events, merged.events(run, true))
		logger.Info().Time("run", hour).Str("changes", merged.result.Changes.String()).Msg("Run document healed")
	}
	return pr, nil
}

// runHours lists the run directories of a product, oldest first.
func (c *client) runHours(spec catalogs.ProductSpec) ([]time.Time, error) {
	var hours []time.Time
	var walk func(dir string, depth int) error
	walk = func(dir string, depth int) error {
		names, err := c.store.Dirs(path.Join(spec.Path, dir))
		if err != nil {
			return err
		}
		for _, name := range names {
			rel := path.Join(dir, name)
			if depth == 3 {
				if hour, ok := catalogs.ParseRunDir(rel); ok {
					hours = append(hours, hour)
				}
				continue
			}
			if err := walk(rel, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk("", 0); err != nil {
		return nil, err
	}
	slices.SortFunc(hours, func(a, b time.Time) int { return a.Compare(b) })
	return hours, nil
}
