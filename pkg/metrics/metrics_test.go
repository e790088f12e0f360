package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdwx/mrms/pkg/errors"
)

func TestRecorder_Counters(t *testing.T) {
	r := New()

	r.FrameRecorded(1)
	r.FrameRecorded(1)
	r.FramesDiscovered(1, 3)
	r.FramesDiscovered(1, 0)
	r.Conflicts(2, "strict", 1)
	r.DocumentWritten("run")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.framesRecorded.WithLabelValues("1")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.framesDiscovered.WithLabelValues("1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.conflicts.WithLabelValues("2", "strict")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.documentsWritten.WithLabelValues("run")))
}

func TestRecorder_Observe(t *testing.T) {
	r := New()

	r.Observe("record", time.Now(), nil)
	r.Observe("record", time.Now(), errors.NewPreconditionError(1, "x/04.png"))

	assert.Equal(t, 1.0, testutil.ToFloat64(r.failures.WithLabelValues("record", "precondition")))
	assert.Greater(t, testutil.ToFloat64(r.lastSuccess.WithLabelValues("record")), 0.0)
	assert.Equal(t, 1, testutil.CollectAndCount(r.recordDuration))
}

func TestRecorder_Nil(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.FrameRecorded(1)
		r.FramesDiscovered(1, 2)
		r.Conflicts(1, "strict", 1)
		r.DocumentWritten("index")
		r.Observe("record", time.Now(), nil)
	})
	assert.NoError(t, r.WriteTextfile("/nonexistent/metrics.prom"))
	assert.Nil(t, r.Registry())
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := New()
	r.FrameRecorded(0)

	path := filepath.Join(t.TempDir(), "mrms.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `mrms_catalog_frames_recorded_total{product="0"} 1`))
}

func TestClass(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "none"},
		{errors.NewPreconditionError(1, "p"), "precondition"},
		{errors.NewParseError("json", "f", "bad", nil), "malformed"},
		{errors.NewConflictError(1, "r", nil), "conflict"},
		{errors.NewValidationError("f", 1, "bad"), "validation"},
		{errors.NewNotFoundError("run", "x"), "not_found"},
		{errors.NewIOError("write", "p", os.ErrPermission), "io"},
		{errors.New("boom"), "other"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Class(tt.err))
		})
	}
}
