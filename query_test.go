package mrms

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdwx/mrms/pkg/catalogs"
	"github.com/hdwx/mrms/pkg/errors"
)

func TestReader_NotFound(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	_, err := c.ProductType(ctx, 1)
	assert.True(t, errors.IsNotFound(err))
	_, err = c.Product(ctx, 1)
	assert.True(t, errors.IsNotFound(err))
	_, err = c.Run(ctx, 1, testRun)
	assert.True(t, errors.IsNotFound(err))
	var nf *errors.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "1/202205011200", nf.ID)

	_, err = c.Product(ctx, 12)
	assert.True(t, errors.IsValidationError(err))
	_, err = c.ProductType(ctx, 12)
	assert.True(t, errors.IsValidationError(err))
}

func TestReader_MissingTimes(t *testing.T) {
	c, fs := newTestClient(t)
	ctx := context.Background()
	writeImages(t, fs, c, 3, 0, 2)
	_, err := c.RecordFrame(ctx, FrameRequest{ProductID: 3, ValidTime: testRun})
	require.NoError(t, err)

	candidates := []time.Time{
		testRun.Add(4 * time.Minute),
		testRun,
		testRun.Add(2 * time.Minute),
		testRun.Add(time.Hour),
		testRun.Add(-2 * time.Minute),
	}
	missing, err := c.MissingTimes(ctx, 3, candidates)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{candidates[0], candidates[3], candidates[4]}, missing)

	ok, err := c.HasFrame(ctx, 3, testRun.Add(2*time.Minute))
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = c.HasFrame(ctx, 3, testRun.Add(4*time.Minute))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReader_MissingTimesMalformed(t *testing.T) {
	c, fs := newTestClient(t)
	require.NoError(t, afero.WriteFile(fs, catalogs.RunDocumentPath(1, testRun), []byte("{"), 0o644))

	_, err := c.MissingTimes(context.Background(), 1, []time.Time{testRun})
	assert.True(t, errors.IsMalformed(err))
}

func TestReader_Runs(t *testing.T) {
	c, fs := newTestClient(t)
	ctx := context.Background()
	for _, h := range []time.Duration{2 * time.Hour, 0, time.Hour} {
		valid := testRun.Add(h)
		spec, _ := c.registry.Lookup(0)
		require.NoError(t, afero.WriteFile(fs, spec.FramePath(valid), []byte("PNG"), 0o644))
		_, err := c.RecordFrame(ctx, FrameRequest{ProductID: 0, ValidTime: valid})
		require.NoError(t, err)
	}
	require.NoError(t, afero.WriteFile(fs, "metadata/products/0/notes.txt", []byte("x"), 0o644))

	runs, err := c.Runs(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{testRun, testRun.Add(time.Hour), testRun.Add(2 * time.Hour)}, runs)

	runs, err = c.Runs(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
