package mrms

import (
	"context"
	"path"
	"time"

	"github.com/hdwx/mrms/pkg/catalogs"
	"github.com/hdwx/mrms/pkg/errors"
	"github.com/hdwx/mrms/pkg/logging"
	"github.com/hdwx/mrms/pkg/reconcile"
)

// Recorder handles the catalog write path.
type Recorder interface {
	// RecordFrame adds a rendered frame to its run document and refreshes
	// the product summary and product type index.
	RecordFrame(ctx context.Context, req FrameRequest) (*RecordResult, error)
}

// FrameRequest describes a frame image the caller has just written.
type FrameRequest struct {
	// ProductID selects the product definition.
	ProductID catalogs.ProductID

	// ValidTime is the time the frame depicts. Its hour selects the run.
	ValidTime time.Time

	// Filename is the image name inside the run directory. Empty derives
	// MM.<ext> from ValidTime.
	Filename string

	// GISInfo overrides the product's registry corners when non-nil.
	GISInfo *catalogs.GISInfo

	// ReloadSeconds is the reload hint for the product summary. Zero or
	// less uses the configured default.
	ReloadSeconds int
}

// RecordResult reports what RecordFrame persisted.
type RecordResult struct {
	ProductID  catalogs.ProductID
	Frame      catalogs.Frame
	Run        *catalogs.ProductRun
	Product    catalogs.Product
	Discovered []catalogs.Frame
	Conflicts  []reconcile.Conflict
	Changes    *reconcile.Changeset
}

// RecordFrame implements Recorder. Every read and check completes before
// the first write; the summary, run document and index are then replaced in
// that order, each atomically.
func (c *client) RecordFrame(ctx context.Context, req FrameRequest) (result *RecordResult, err error) {
	start := time.Now()
	defer func() {
		c.metrics.Observe("record", start, err)
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	spec, err := c.registry.Lookup(req.ProductID)
	if err != nil {
		return nil, err
	}
	typeSpec, err := c.registry.Type(spec.TypeID)
	if err != nil {
		return nil, err
	}
	frame, err := c.requestedFrame(spec, req)
	if err != nil {
		return nil, err
	}

	hour := catalogs.RunHour(req.ValidTime)
	ctx = logging.WithRun(logging.WithProduct(ctx, int(spec.ID)), hour)
	logger := logging.FromContext(ctx)

	imagePath := path.Join(spec.RunDir(hour), frame.Filename)
	exists, err := c.store.Exists(imagePath)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.NewPreconditionError(int(spec.ID), imagePath)
	}

	merged, err := c.mergeRun(ctx, spec, hour, &frame)
	if err != nil {
		if merged != nil {
			c.hooks.trigger(runEvents{product: spec.ID, conflicts: merged.result.Conflicts})
		}
		return nil, err
	}

	index, err := c.loadIndex(ctx, typeSpec)
	if err != nil {
		return nil, err
	}

	reload := req.ReloadSeconds
	if reload <= 0 {
		reload = c.options.reloadSeconds
	}
	now := c.now()
	run := catalogs.NewProductRun(hour, merged.result.Frames, now)
	summary := spec.Summary(now, reload)
	index.Upsert(summary)

	if err := c.store.Save(catalogs.ProductDocumentPath(spec.ID), summary); err != nil {
		return nil, err
	}
	c.metrics.DocumentWritten("product")
	if err := c.store.Save(merged.path, run); err != nil {
		return nil, err
	}
	c.metrics.DocumentWritten("run")
	if err := c.store.Save(catalogs.TypeDocumentPath(typeSpec.ID), index); err != nil {
		return nil, err
	}
	c.metrics.DocumentWritten("index")

	c.metrics.FrameRecorded(int(spec.ID))
	c.metrics.FramesDiscovered(int(spec.ID), len(merged.discovered))
	c.hooks.trigger(merged.events(run, true))

	logger.Info().
		Str("filename", frame.Filename).
		Str("valid", frame.Valid).
		Int("frames", run.TotalFrameCount).
		Str("changes", merged.result.Changes.String()).
		Msg("Frame recorded")

	return &RecordResult{
		ProductID:  spec.ID,
		Frame:      frame,
		Run:        run,
		Product:    summary,
		Discovered: merged.discovered,
		Conflicts:  merged.result.Conflicts,
		Changes:    merged.result.Changes,
	}, nil
}

// requestedFrame validates req against spec and builds its frame record.
func (c *client) requestedFrame(spec catalogs.ProductSpec, req FrameRequest) (catalogs.Frame, error) {
	if req.ValidTime.IsZero() {
		return catalogs.Frame{}, errors.NewValidationError("validTime", req.ValidTime, "valid time is required")
	}
	valid := req.ValidTime.UTC().Truncate(time.Minute)

	filename := req.Filename
	if filename == "" {
		filename = spec.FrameName(valid)
	}
	minute, ok := catalogs.ParseFrameName(filename, spec.Extension)
	if !ok {
		return catalogs.Frame{}, errors.NewValidationError("filename", filename,
			"must be MM."+spec.Extension)
	}
	if minute != valid.Minute() {
		return catalogs.Frame{}, errors.NewValidationError("filename", filename,
			"minutes do not match valid time "+catalogs.FormatStamp(valid))
	}

	gis := spec.GISInfo
	if req.GISInfo != nil {
		if err := req.GISInfo.Validate(); err != nil {
			return catalogs.Frame{}, errors.WrapValidation("gisInfo", err)
		}
		gis = *req.GISInfo
	}
	return catalogs.NewFrame(filename, valid, gis), nil
}
