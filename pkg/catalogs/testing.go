package catalogs

import (
	"slices"
	"testing"
	"time"
)

// TestTimeNow returns a consistent run hour for testing.
func TestTimeNow() time.Time {
	return time.Date(2022, 5, 1, 12, 0, 0, 0, time.UTC)
}

// TestFrame returns the frame valid minute minutes into the TestTimeNow run.
func TestFrame(t testing.TB, minute int, gis GISInfo) Frame {
	t.Helper()
	if minute < 0 || minute > 59 {
		t.Fatalf("TestFrame: minute %d outside the hour", minute)
	}
	valid := TestTimeNow().Add(time.Duration(minute) * time.Minute)
	return NewFrame(FrameName(valid, "png"), valid, gis)
}

// TestFrames returns sentinel-GIS frames for minutes, in the order given.
func TestFrames(t testing.TB, minutes ...int) []Frame {
	t.Helper()
	frames := make([]Frame, 0, len(minutes))
	for _, m := range minutes {
		frames = append(frames, TestFrame(t, m, NoGIS))
	}
	return frames
}

// TestProductRun returns a run document of the TestTimeNow hour holding
// sentinel-GIS frames for minutes.
func TestProductRun(t testing.TB, minutes ...int) *ProductRun {
	t.Helper()
	return NewProductRun(TestTimeNow(), TestFrames(t, minutes...), TestTimeNow().Add(time.Hour))
}

// AssertFramesSorted asserts ascending valid times with no repeats.
func AssertFramesSorted(t testing.TB, frames []Frame) {
	t.Helper()
	for i := 1; i < len(frames); i++ {
		if frames[i-1].Valid >= frames[i].Valid {
			t.Errorf("frames out of order at %d: %s then %s", i, frames[i-1].Valid, frames[i].Valid)
		}
	}
}

// AssertRunHasValids asserts that run lists exactly valids, in order.
func AssertRunHasValids(t testing.TB, run *ProductRun, valids ...string) {
	t.Helper()
	got := make([]string, 0, len(run.ProductFrames))
	for _, f := range run.ProductFrames {
		got = append(got, f.Valid)
	}
	if !slices.Equal(got, valids) {
		t.Errorf("run valids = %v, want %v", got, valids)
	}
	if run.AvailableFrameCount != len(run.ProductFrames) || run.TotalFrameCount != len(run.ProductFrames) {
		t.Errorf("run counts = %d/%d, want %d", run.AvailableFrameCount, run.TotalFrameCount, len(run.ProductFrames))
	}
}
