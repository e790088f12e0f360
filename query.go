package mrms

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/hdwx/mrms/pkg/catalogs"
	"github.com/hdwx/mrms/pkg/constants"
	"github.com/hdwx/mrms/pkg/errors"
)

// Reader loads catalog documents.
type Reader interface {
	// ProductType loads the product type index.
	ProductType(ctx context.Context, id catalogs.ProductTypeID) (*catalogs.ProductType, error)

	// Product loads a product summary.
	Product(ctx context.Context, id catalogs.ProductID) (*catalogs.Product, error)

	// Run loads the run document of the hour containing t.
	Run(ctx context.Context, id catalogs.ProductID, t time.Time) (*catalogs.ProductRun, error)

	// Runs lists the run hours that have a document, oldest first.
	Runs(ctx context.Context, id catalogs.ProductID) ([]time.Time, error)

	// HasFrame reports whether a frame valid at t is recorded.
	HasFrame(ctx context.Context, id catalogs.ProductID, t time.Time) (bool, error)

	// MissingTimes returns the candidates that have no recorded frame, in
	// candidate order.
	MissingTimes(ctx context.Context, id catalogs.ProductID, candidates []time.Time) ([]time.Time, error)
}

// ProductType implements Reader.
func (c *client) ProductType(ctx context.Context, id catalogs.ProductTypeID) (*catalogs.ProductType, error) {
	if _, err := c.registry.Type(id); err != nil {
		return nil, err
	}
	var pt catalogs.ProductType
	if err := c.load(ctx, catalogs.TypeDocumentPath(id), &pt, "product type", id.String()); err != nil {
		return nil, err
	}
	return &pt, nil
}

// Product implements Reader.
func (c *client) Product(ctx context.Context, id catalogs.ProductID) (*catalogs.Product, error) {
	if _, err := c.registry.Lookup(id); err != nil {
		return nil, err
	}
	var p catalogs.Product
	if err := c.load(ctx, catalogs.ProductDocumentPath(id), &p, "product", id.String()); err != nil {
		return nil, err
	}
	return &p, nil
}

// Run implements Reader.
func (c *client) Run(ctx context.Context, id catalogs.ProductID, t time.Time) (*catalogs.ProductRun, error) {
	if _, err := c.registry.Lookup(id); err != nil {
		return nil, err
	}
	var run catalogs.ProductRun
	runID := id.String() + "/" + catalogs.FormatStamp(catalogs.RunHour(t))
	if err := c.load(ctx, catalogs.RunDocumentPath(id, t), &run, "run", runID); err != nil {
		return nil, err
	}
	return &run, nil
}

// Runs implements Reader.
func (c *client) Runs(ctx context.Context, id catalogs.ProductID) ([]time.Time, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := c.registry.Lookup(id); err != nil {
		return nil, err
	}
	names, err := c.store.List(catalogs.ProductRunsDir(id))
	if err != nil {
		return nil, err
	}
	var hours []time.Time
	for _, name := range names {
		stem, ok := strings.CutSuffix(name, constants.DocumentExtension)
		if !ok {
			continue
		}
		hour, err := time.ParseInLocation(constants.RunFileLayout, stem, time.UTC)
		if err != nil {
			continue
		}
		hours = append(hours, hour)
	}
	slices.SortFunc(hours, func(a, b time.Time) int { return a.Compare(b) })
	return hours, nil
}

// HasFrame implements Reader.
func (c *client) HasFrame(ctx context.Context, id catalogs.ProductID, t time.Time) (bool, error) {
	missing, err := c.MissingTimes(ctx, id, []time.Time{t})
	if err != nil {
		return false, err
	}
	return len(missing) == 0, nil
}

// MissingTimes implements Reader. A candidate is missing when its run has
// no document or the document has no frame with that valid time. Each run
// document is read once.
func (c *client) MissingTimes(ctx context.Context, id catalogs.ProductID, candidates []time.Time) ([]time.Time, error) {
	runs := make(map[time.Time]*catalogs.ProductRun)
	var missing []time.Time
	for _, t := range candidates {
		hour := catalogs.RunHour(t)
		run, seen := runs[hour]
		if !seen {
			var err error
			run, err = c.Run(ctx, id, hour)
			if err != nil && !errors.IsNotFound(err) {
				return nil, err
			}
			runs[hour] = run
		}
		if run == nil || !run.HasValid(catalogs.FormatStamp(t)) {
			missing = append(missing, t)
		}
	}
	return missing, nil
}

// load reads the document at p, mapping absence to a NotFoundError.
func (c *client) load(ctx context.Context, p string, v any, resource, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	found, err := c.store.Load(p, v)
	if err != nil {
		return err
	}
	if !found {
		return errors.NewNotFoundError(resource, id)
	}
	return nil
}
