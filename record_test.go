package mrms

import (
	"context"
	"path"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdwx/mrms/pkg/catalogs"
	"github.com/hdwx/mrms/pkg/errors"
	"github.com/hdwx/mrms/pkg/logging"
	"github.com/hdwx/mrms/pkg/metrics"
	"github.com/hdwx/mrms/pkg/reconcile"
	"github.com/hdwx/mrms/pkg/store"
)

var testRun = time.Date(2022, 5, 1, 12, 0, 0, 0, time.UTC)

// testClock returns a clock that advances one minute per call.
func testClock() func() time.Time {
	now := testRun.Add(10 * time.Minute)
	return func() time.Time {
		now = now.Add(time.Minute)
		return now
	}
}

func newTestClient(t *testing.T, opts ...Option) (*client, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	base := []Option{WithFs(fs), WithClock(testClock())}
	c, err := New(append(base, opts...)...)
	require.NoError(t, err)
	return c.(*client), fs
}

// writeImages creates frame images for product id in the run of testRun.
func writeImages(t *testing.T, fs afero.Fs, c *client, id catalogs.ProductID, minutes ...int) {
	t.Helper()
	spec, err := c.registry.Lookup(id)
	require.NoError(t, err)
	for _, m := range minutes {
		valid := testRun.Add(time.Duration(m) * time.Minute)
		require.NoError(t, afero.WriteFile(fs, spec.FramePath(valid), []byte("PNG"), 0o644))
	}
}

func readFile(t *testing.T, fs afero.Fs, p string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, p)
	require.NoError(t, err)
	return string(data)
}

func TestRecordFrame_ExampleScenario(t *testing.T) {
	c, fs := newTestClient(t)
	ctx := context.Background()
	writeImages(t, fs, c, 1, 0)

	gis := catalogs.NoGIS
	_, err := c.RecordFrame(ctx, FrameRequest{
		ProductID:     1,
		ValidTime:     testRun,
		Filename:      "00.png",
		GISInfo:       &gis,
		ReloadSeconds: 60,
	})
	require.NoError(t, err)

	run, err := c.Run(ctx, 1, testRun)
	require.NoError(t, err)
	first := catalogs.Frame{FHour: 0, Filename: "00.png", GISInfo: catalogs.NoGIS, Valid: "202205011200"}
	assert.Equal(t, []catalogs.Frame{first}, run.ProductFrames)
	assert.Equal(t, 1, run.AvailableFrameCount)
	assert.Equal(t, 1, run.TotalFrameCount)
	assert.Equal(t, "2022/05/01/1200/", run.PathExtension)
	assert.Equal(t, "01 May 2022 1200Z", run.RunName)

	assert.Contains(t, readFile(t, fs, "metadata/products/1/202205011200.json"),
		"\"productFrames\": [\n        {\n            \"fhour\": 0,\n            \"filename\": \"00.png\",")

	writeImages(t, fs, c, 1, 5)
	_, err = c.RecordFrame(ctx, FrameRequest{ProductID: 1, ValidTime: testRun.Add(5 * time.Minute), Filename: "05.png"})
	require.NoError(t, err)

	run, err = c.Run(ctx, 1, testRun)
	require.NoError(t, err)
	require.Len(t, run.ProductFrames, 2)
	assert.Equal(t, first, run.ProductFrames[0])
	assert.Equal(t, "202205011205", run.ProductFrames[1].Valid)
	assert.Equal(t, 2, run.TotalFrameCount)
}

func TestRecordFrame_Idempotent(t *testing.T) {
	c, fs := newTestClient(t)
	ctx := context.Background()
	writeImages(t, fs, c, 2, 0, 2, 4)

	req := FrameRequest{ProductID: 2, ValidTime: testRun.Add(2 * time.Minute)}
	first, err := c.RecordFrame(ctx, req)
	require.NoError(t, err)
	second, err := c.RecordFrame(ctx, req)
	require.NoError(t, err)

	assert.NotEqual(t, first.Run.PublishTime, second.Run.PublishTime)
	assert.False(t, second.Changes.HasChanges())
	if diff := cmp.Diff(first.Run.ProductFrames, second.Run.ProductFrames); diff != "" {
		t.Errorf("frames changed on repeat (-first +second):\n%s", diff)
	}

	stripPublish := func(doc string) string {
		lines := strings.Split(doc, "\n")
		return strings.Join(lines[2:], "\n")
	}
	doc := readFile(t, fs, catalogs.RunDocumentPath(2, testRun))
	assert.True(t, strings.HasPrefix(doc, "{\n    \"publishTime\": "))
	first.Run.PublishTime = second.Run.PublishTime
	assert.Equal(t, stripPublish(doc), stripPublish(mustEncode(t, first.Run)))
}

func TestRecordFrame_MergeCompleteness(t *testing.T) {
	c, fs := newTestClient(t)
	writeImages(t, fs, c, 0, 58, 4, 30, 0, 12)

	var discovered []catalogs.Frame
	c.OnFrameRecorded(func(id catalogs.ProductID, f catalogs.Frame) {
		assert.Equal(t, catalogs.ProductID(0), id)
		discovered = append(discovered, f)
	})

	result, err := c.RecordFrame(context.Background(), FrameRequest{ProductID: 0, ValidTime: testRun.Add(30 * time.Minute)})
	require.NoError(t, err)

	var valids []string
	for _, f := range result.Run.ProductFrames {
		valids = append(valids, f.Valid)
		assert.Equal(t, catalogs.RALAGIS, f.GISInfo)
	}
	assert.Equal(t, []string{"202205011200", "202205011204", "202205011212", "202205011230", "202205011258"}, valids)
	assert.Len(t, result.Discovered, 4)
	assert.Len(t, discovered, 5)
}

func TestRecordFrame_IndexAndSummary(t *testing.T) {
	c, fs := newTestClient(t)
	ctx := context.Background()
	for _, id := range []catalogs.ProductID{3, 0, 2, 3} {
		writeImages(t, fs, c, id, 10)
		_, err := c.RecordFrame(ctx, FrameRequest{ProductID: id, ValidTime: testRun.Add(10 * time.Minute), ReloadSeconds: 30})
		require.NoError(t, err)
	}

	pt, err := c.ProductType(ctx, catalogs.Reflectivity.ID)
	require.NoError(t, err)
	assert.Equal(t, "MRMS Reflectivity", pt.ProductTypeDescription)
	require.Len(t, pt.Products, 3)
	for i, want := range []catalogs.ProductID{0, 2, 3} {
		assert.Equal(t, want, pt.Products[i].ProductID)
		assert.Equal(t, 30, pt.Products[i].ProductReloadTime)
	}

	summary, err := c.Product(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, pt.Products[2], *summary)
	assert.Equal(t, "products/radar/local/", summary.ProductPath)
}

func TestRecordFrame_PreconditionWritesNothing(t *testing.T) {
	c, fs := newTestClient(t)

	_, err := c.RecordFrame(context.Background(), FrameRequest{ProductID: 1, ValidTime: testRun})
	require.Error(t, err)
	assert.True(t, errors.IsFrameMissing(err))
	var pe *errors.PreconditionError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "products/radar/national/2022/05/01/1200/00.png", pe.Path)

	exists, err := afero.DirExists(fs, "metadata")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRecordFrame_MalformedRunWritesNothing(t *testing.T) {
	c, fs := newTestClient(t)
	writeImages(t, fs, c, 1, 0)
	runPath := catalogs.RunDocumentPath(1, testRun)
	require.NoError(t, afero.WriteFile(fs, runPath, []byte(`{"productFrames": [{"valid": `), 0o644))

	_, err := c.RecordFrame(context.Background(), FrameRequest{ProductID: 1, ValidTime: testRun})
	require.Error(t, err)
	assert.True(t, errors.IsMalformed(err))

	assert.Equal(t, `{"productFrames": [{"valid": `, readFile(t, fs, runPath))
	for _, p := range []string{catalogs.ProductDocumentPath(1), catalogs.TypeDocumentPath(1)} {
		ok, err := afero.Exists(fs, p)
		require.NoError(t, err)
		assert.False(t, ok, p)
	}
}

func TestRecordFrame_MalformedIndexWritesNothing(t *testing.T) {
	c, fs := newTestClient(t)
	writeImages(t, fs, c, 1, 0)
	require.NoError(t, afero.WriteFile(fs, catalogs.TypeDocumentPath(1), []byte(`[]`), 0o644))

	_, err := c.RecordFrame(context.Background(), FrameRequest{ProductID: 1, ValidTime: testRun})
	require.Error(t, err)
	assert.True(t, errors.IsMalformed(err))

	ok, err := afero.Exists(fs, catalogs.RunDocumentPath(1, testRun))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecordFrame_CollapsesRepeatedIndexEntries(t *testing.T) {
	captured := logging.CaptureLoggingForTest(t)
	c, fs := newTestClient(t)
	writeImages(t, fs, c, 1, 0)
	legacy := `{"productTypeID": 1, "productTypeDescription": "MRMS Reflectivity", "products": [
		{"productID": 2, "lastReloadTime": "202205011100"},
		{"productID": 1, "lastReloadTime": "202205011100"},
		{"productID": 2, "lastReloadTime": "202205011130"},
		{"productID": 1, "lastReloadTime": "202205011130"}]}`
	require.NoError(t, afero.WriteFile(fs, catalogs.TypeDocumentPath(1), []byte(legacy), 0o644))

	_, err := c.RecordFrame(context.Background(), FrameRequest{ProductID: 1, ValidTime: testRun})
	require.NoError(t, err)

	index, err := c.ProductType(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, index.Products, 2)
	assert.Equal(t, catalogs.ProductID(1), index.Products[0].ProductID)
	assert.NotEqual(t, "202205011130", index.Products[0].LastReloadTime)
	assert.Equal(t, catalogs.ProductID(2), index.Products[1].ProductID)
	assert.Equal(t, "202205011130", index.Products[1].LastReloadTime)

	collapsed := captured.Messages(t, "Collapsing repeated product entry in index")
	require.Len(t, collapsed, 2)
	assert.EqualValues(t, 2, collapsed[0]["repeated_product_id"])
	assert.EqualValues(t, 1, collapsed[1]["repeated_product_id"])
}

func TestRecordFrame_Validation(t *testing.T) {
	c, fs := newTestClient(t)
	writeImages(t, fs, c, 1, 0)
	bad := catalogs.GISInfo{"north", "south"}

	tests := []struct {
		name string
		req  FrameRequest
	}{
		{"unknown product", FrameRequest{ProductID: 9, ValidTime: testRun}},
		{"zero time", FrameRequest{ProductID: 1}},
		{"bad filename", FrameRequest{ProductID: 1, ValidTime: testRun, Filename: "frame.png"}},
		{"minute mismatch", FrameRequest{ProductID: 1, ValidTime: testRun, Filename: "05.png"}},
		{"bad corners", FrameRequest{ProductID: 1, ValidTime: testRun, GISInfo: &bad}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.RecordFrame(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, errors.IsValidationError(err))
		})
	}
}

func TestRecordFrame_ConflictPolicies(t *testing.T) {
	recordTwice := func(t *testing.T, policy reconcile.Policy) (*client, *RecordResult, []reconcile.Conflict, error) {
		c, fs := newTestClient(t, WithConflictPolicy(policy))
		writeImages(t, fs, c, 1, 0)
		_, err := c.RecordFrame(context.Background(), FrameRequest{ProductID: 1, ValidTime: testRun})
		require.NoError(t, err)

		var seen []reconcile.Conflict
		c.OnConflict(func(_ catalogs.ProductID, conflict reconcile.Conflict) {
			seen = append(seen, conflict)
		})
		moved := catalogs.GISInfo{"20,-130", "55,-60"}
		result, err := c.RecordFrame(context.Background(), FrameRequest{ProductID: 1, ValidTime: testRun, GISInfo: &moved})
		return c, result, seen, err
	}

	t.Run("prefer-observed", func(t *testing.T) {
		c, result, seen, err := recordTwice(t, reconcile.PreferObserved)
		require.NoError(t, err)
		require.Len(t, seen, 1)
		assert.Equal(t, "20,-130", result.Run.ProductFrames[0].GISInfo[0])
		run, err := c.Run(context.Background(), 1, testRun)
		require.NoError(t, err)
		assert.Len(t, run.ProductFrames, 1)
	})

	t.Run("prefer-existing", func(t *testing.T) {
		_, result, seen, err := recordTwice(t, reconcile.PreferExisting)
		require.NoError(t, err)
		require.Len(t, seen, 1)
		assert.Equal(t, catalogs.NoGIS, result.Run.ProductFrames[0].GISInfo)
	})

	t.Run("strict", func(t *testing.T) {
		c, _, seen, err := recordTwice(t, reconcile.Strict)
		require.Error(t, err)
		assert.True(t, errors.IsConflict(err))
		var ce *errors.ConflictError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, 1, ce.ProductID)
		assert.Equal(t, "202205011200", ce.Run)
		require.Len(t, seen, 1)

		run, err := c.Run(context.Background(), 1, testRun)
		require.NoError(t, err)
		assert.Equal(t, catalogs.NoGIS, run.ProductFrames[0].GISInfo)
	})
}

func TestRecordFrame_IgnoresTempAndForeignFiles(t *testing.T) {
	captured := logging.CaptureLoggingForTest(t)
	c, fs := newTestClient(t)
	writeImages(t, fs, c, 1, 0)
	dir := path.Join("products/radar/national", "2022/05/01/1200")
	for _, name := range []string{".05.png.123.tmp", "index.html", "07.gif"} {
		require.NoError(t, afero.WriteFile(fs, path.Join(dir, name), []byte("x"), 0o644))
	}

	result, err := c.RecordFrame(context.Background(), FrameRequest{ProductID: 1, ValidTime: testRun})
	require.NoError(t, err)
	assert.Len(t, result.Run.ProductFrames, 1)

	assert.Len(t, captured.Messages(t, "Ignoring non-frame file"), 3)
	captured.AssertNotContains(t, `"level":"warn"`)
}

func TestRecordFrame_StrictIgnoresSignedNames(t *testing.T) {
	c, fs := newTestClient(t, WithConflictPolicy(reconcile.Strict))
	writeImages(t, fs, c, 1, 5)
	dir := path.Join("products/radar/national", "2022/05/01/1200")
	require.NoError(t, afero.WriteFile(fs, path.Join(dir, "+5.png"), []byte("PNG"), 0o644))

	result, err := c.RecordFrame(context.Background(), FrameRequest{ProductID: 1, ValidTime: testRun.Add(5 * time.Minute)})
	require.NoError(t, err)
	require.Len(t, result.Run.ProductFrames, 1)
	assert.Equal(t, "05.png", result.Run.ProductFrames[0].Filename)
}

func TestRecordFrame_Metrics(t *testing.T) {
	rec := metrics.New()
	c, fs := newTestClient(t, WithMetrics(rec))
	writeImages(t, fs, c, 1, 0, 1)

	_, err := c.RecordFrame(context.Background(), FrameRequest{ProductID: 1, ValidTime: testRun})
	require.NoError(t, err)
	_, err = c.RecordFrame(context.Background(), FrameRequest{ProductID: 1, ValidTime: testRun.Add(2 * time.Minute)})
	require.Error(t, err)

	families, err := rec.Registry().Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["mrms_catalog_frames_recorded_total"])
	assert.True(t, names["mrms_catalog_frames_discovered_total"])
	assert.True(t, names["mrms_catalog_failures_total"])
}

func TestRecordFrame_Canceled(t *testing.T) {
	c, fs := newTestClient(t)
	writeImages(t, fs, c, 1, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.RecordFrame(ctx, FrameRequest{ProductID: 1, ValidTime: testRun})
	assert.ErrorIs(t, err, context.Canceled)
}

func mustEncode(t *testing.T, v any) string {
	t.Helper()
	data, err := store.Encode(v)
	require.NoError(t, err)
	return string(data)
}
