package reindex

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdwx/mrms"
	"github.com/hdwx/mrms/internal/appcontext"
)

func execute(t *testing.T, app appcontext.Interface, args ...string) (string, error) {
	t.Helper()
	cmd := NewCommand(app)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestReindex_HealsUnrecordedFrames(t *testing.T) {
	app, fs := appcontext.NewTestMock(t)
	appcontext.WriteTestFrame(t, fs, 2, appcontext.TestRun)
	appcontext.WriteTestFrame(t, fs, 2, appcontext.TestRun.Add(2*time.Minute))

	out, err := execute(t, app, "--product", "2")
	require.NoError(t, err)

	var result mrms.ReindexResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 1, result.RunsUpdated)
	assert.Equal(t, 2, result.FramesDiscovered)

	exists, err := afero.Exists(fs, "metadata/products/2/202205011200.json")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestReindex_DryRunWritesNothing(t *testing.T) {
	app, fs := appcontext.NewTestMock(t)
	appcontext.WriteTestFrame(t, fs, 1, appcontext.TestRun)

	out, err := execute(t, app, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, `"dryRun": true`)

	exists, err := afero.DirExists(fs, "metadata")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestReindex_BadSince(t *testing.T) {
	app, _ := appcontext.NewTestMock(t)
	_, err := execute(t, app, "--since", "last tuesday")
	assert.Error(t, err)
}

func TestTable(t *testing.T) {
	data := Table(&mrms.ReindexResult{
		RunsScanned: 3,
		RunsUpdated: 1,
		DryRun:      true,
		Products: []mrms.ProductReindex{
			{ProductID: 1, RunsScanned: 3, RunsUpdated: 1},
		},
	})
	require.Len(t, data.Rows, 2)
	assert.Equal(t, []string{"1", "3", "1", "0", "0"}, data.Rows[0])
	assert.Equal(t, "total (dry run)", data.Rows[1][0])
}
