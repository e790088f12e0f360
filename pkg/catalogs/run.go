package catalogs

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/hdwx/mrms/pkg/constants"
)

// ProductRun is the frame list for one product and one hour bucket.
type ProductRun struct {
	PublishTime         string  `json:"publishTime" yaml:"publishTime"`
	PathExtension       string  `json:"pathExtension" yaml:"pathExtension"`
	RunName             string  `json:"runName" yaml:"runName"`
	AvailableFrameCount int     `json:"availableFrameCount" yaml:"availableFrameCount"`
	TotalFrameCount     int     `json:"totalFrameCount" yaml:"totalFrameCount"`
	ProductFrames       []Frame `json:"productFrames" yaml:"productFrames"`
}

// NewProductRun builds a run document for hour from frames, sorting them and
// stamping the counts and publish time.
func NewProductRun(hour time.Time, frames []Frame, now time.Time) *ProductRun {
	hour = RunHour(hour)
	run := &ProductRun{
		PublishTime:   FormatStamp(now),
		PathExtension: PathExtension(hour),
		RunName:       hour.Format(constants.RunNameLayout),
		ProductFrames: slices.Clone(frames),
	}
	if run.ProductFrames == nil {
		run.ProductFrames = []Frame{}
	}
	SortFrames(run.ProductFrames)
	run.AvailableFrameCount = len(run.ProductFrames)
	run.TotalFrameCount = len(run.ProductFrames)
	return run
}

// SortFrames orders frames by valid time. Filename breaks ties so the order
// is deterministic even when a conflict left two records for one time.
func SortFrames(frames []Frame) {
	slices.SortStableFunc(frames, func(a, b Frame) int {
		if c := strings.Compare(a.Valid, b.Valid); c != 0 {
			return c
		}
		return strings.Compare(a.Filename, b.Filename)
	})
}

// HasValid reports whether the run holds a frame valid at stamp.
func (r *ProductRun) HasValid(stamp string) bool {
	for _, f := range r.ProductFrames {
		if f.Valid == stamp {
			return true
		}
	}
	return false
}

// Filenames returns the set of file names already recorded in the run.
func (r *ProductRun) Filenames() map[string]bool {
	names := make(map[string]bool, len(r.ProductFrames))
	for _, f := range r.ProductFrames {
		names[f.Filename] = true
	}
	return names
}

// Validate checks a decoded run document for values no writer produces.
func (r *ProductRun) Validate() error {
	for i, f := range r.ProductFrames {
		if _, err := ParseStamp(f.Valid); err != nil {
			return fmt.Errorf("productFrames[%d]: %w", i, err)
		}
		if f.Filename == "" {
			return fmt.Errorf("productFrames[%d]: empty filename", i)
		}
	}
	return nil
}
