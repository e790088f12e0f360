package appcontext

import (
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/hdwx/mrms"
	"github.com/hdwx/mrms/pkg/catalogs"
)

// TestRun is the run hour used by command tests.
var TestRun = time.Date(2022, 5, 1, 12, 0, 0, 0, time.UTC)

// NewTestMock returns a Mock whose client writes to an in-memory
// filesystem, and that filesystem. Output is JSON.
func NewTestMock(t testing.TB, opts ...mrms.Option) (*Mock, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	clock := func() time.Time { return TestRun.Add(30 * time.Minute) }
	client, err := mrms.New(append([]mrms.Option{mrms.WithFs(fs), mrms.WithClock(clock)}, opts...)...)
	if err != nil {
		t.Fatalf("mrms.New() failed: %v", err)
	}
	return &Mock{
		ClientFunc: func() (mrms.Client, error) { return client, nil },
	}, fs
}

// WriteTestFrame creates the image of product id valid at valid.
func WriteTestFrame(t testing.TB, fs afero.Fs, id catalogs.ProductID, valid time.Time) {
	t.Helper()
	spec, err := catalogs.DefaultRegistry().Lookup(id)
	if err != nil {
		t.Fatalf("Lookup(%d) failed: %v", id, err)
	}
	if err := afero.WriteFile(fs, spec.FramePath(valid), []byte("PNG"), 0o644); err != nil {
		t.Fatalf("writing frame: %v", err)
	}
}
