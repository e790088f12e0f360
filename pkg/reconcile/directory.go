package reconcile

import (
	"strings"
	"time"

	"github.com/hdwx/mrms/pkg/catalogs"
)

// Listing is the set of names found in a run directory.
type Listing struct {
	// Frames holds one synthesized record per frame image not yet recorded.
	Frames []catalogs.Frame

	// Ignored holds names that are not frame images of the product.
	Ignored []string
}

// ObserveDirectory turns the names in a run directory into frame records.
// Names already present in recorded are skipped so their stored record is
// kept. Hidden files (including in-flight temp files) and names that are not
// MM.<ext> are ignored. Synthesized frames take their valid time from the run
// hour plus the minutes in the name and carry the product's corners.
func ObserveDirectory(names []string, recorded map[string]bool, spec catalogs.ProductSpec, hour time.Time) Listing {
	var l Listing
	hour = catalogs.RunHour(hour)
	for _, name := range names {
		if strings.HasPrefix(name, ".") {
			l.Ignored = append(l.Ignored, name)
			continue
		}
		minute, ok := catalogs.ParseFrameName(name, spec.Extension)
		if !ok {
			l.Ignored = append(l.Ignored, name)
			continue
		}
		if recorded[name] {
			continue
		}
		valid := hour.Add(time.Duration(minute) * time.Minute)
		l.Frames = append(l.Frames, catalogs.NewFrame(name, valid, spec.GISInfo))
	}
	return l
}
