package mrms

import (
	"fmt"
	"time"

	"github.com/spf13/afero"

	"github.com/hdwx/mrms/pkg/catalogs"
	"github.com/hdwx/mrms/pkg/constants"
	"github.com/hdwx/mrms/pkg/errors"
	"github.com/hdwx/mrms/pkg/metrics"
	"github.com/hdwx/mrms/pkg/reconcile"
	"github.com/hdwx/mrms/pkg/store"
)

// Option is a function that configures a Client
type Option func(*options) error

// options is the configuration for a Client
type options struct {
	outputRoot    string
	store         store.Store
	policy        reconcile.Policy
	clock         func() time.Time
	metrics       *metrics.Recorder
	registry      *catalogs.Registry
	concurrency   int
	reloadSeconds int
}

// defaults returns the default client configuration
func defaults() *options {
	return &options{
		outputRoot:    constants.DefaultOutputRoot,
		policy:        reconcile.DefaultPolicy,
		clock:         time.Now,
		registry:      catalogs.DefaultRegistry(),
		concurrency:   constants.DefaultConcurrency,
		reloadSeconds: constants.DefaultReloadSeconds,
	}
}

// apply applies opts in order, stopping at the first error
func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("applying option: %w", err)
		}
	}
	return o, nil
}

// WithOutputRoot sets the directory all product and metadata paths are
// relative to.
func WithOutputRoot(dir string) Option {
	return func(o *options) error {
		if dir == "" {
			return errors.NewValidationError("output_root", dir, "output root is required")
		}
		o.outputRoot = dir
		return nil
	}
}

// WithStore configures the document store directly, overriding WithOutputRoot.
func WithStore(s store.Store) Option {
	return func(o *options) error {
		if s == nil {
			return errors.NewValidationError("store", nil, "store is required")
		}
		o.store = s
		return nil
	}
}

// WithFs stores documents on fsys, e.g. an afero.MemMapFs in tests.
func WithFs(fsys afero.Fs) Option {
	return func(o *options) error {
		if fsys == nil {
			return errors.NewValidationError("fs", nil, "filesystem is required")
		}
		o.store = store.New(fsys)
		return nil
	}
}

// WithConflictPolicy selects how distinct records for one valid time are
// resolved.
func WithConflictPolicy(p reconcile.Policy) Option {
	return func(o *options) error {
		parsed, err := reconcile.ParsePolicy(string(p))
		if err != nil {
			return err
		}
		o.policy = parsed
		return nil
	}
}

// WithClock replaces time.Now for publish and reload timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) error {
		if now == nil {
			return errors.NewValidationError("clock", nil, "clock is required")
		}
		o.clock = now
		return nil
	}
}

// WithMetrics records catalog activity on r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(o *options) error {
		o.metrics = r
		return nil
	}
}

// WithRegistry replaces the built-in product definitions.
func WithRegistry(r *catalogs.Registry) Option {
	return func(o *options) error {
		if r == nil {
			return errors.NewValidationError("registry", nil, "registry is required")
		}
		o.registry = r
		return nil
	}
}

// WithConcurrency bounds how many products Reindex scans at once.
func WithConcurrency(n int) Option {
	return func(o *options) error {
		if n < 1 {
			return errors.NewValidationError("concurrency", n, "must be at least 1")
		}
		o.concurrency = n
		return nil
	}
}

// WithReloadSeconds sets the default reload hint written to product
// summaries when a request does not carry one.
func WithReloadSeconds(seconds int) Option {
	return func(o *options) error {
		if seconds < 1 {
			return errors.NewValidationError("reload_seconds", seconds, "must be positive")
		}
		o.reloadSeconds = seconds
		return nil
	}
}
