package catalogs

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// GISInfo is the two-corner bounding box of a georeferenced frame, each
// corner encoded as "lat,lon". Non-georeferenced frames carry NoGIS.
type GISInfo [2]string

// NoGIS is the sentinel bounding box for products that are not georeferenced.
var NoGIS = GISInfo{"0,0", "0,0"}

// IsZero reports whether g is the non-georeferenced sentinel (or empty).
func (g GISInfo) IsZero() bool {
	return g == NoGIS || g == GISInfo{}
}

// Validate checks that both corners are "lat,lon" number pairs.
func (g GISInfo) Validate() error {
	for i, corner := range g {
		parts := strings.Split(corner, ",")
		if len(parts) != 2 {
			return fmt.Errorf("corner %d %q is not lat,lon", i, corner)
		}
		for _, p := range parts {
			if _, err := strconv.ParseFloat(strings.TrimSpace(p), 64); err != nil {
				return fmt.Errorf("corner %d %q: %w", i, corner, err)
			}
		}
	}
	return nil
}

// UnmarshalJSON rejects anything other than exactly two strings, so that a
// drifted document fails loudly instead of silently dropping a corner.
func (g *GISInfo) UnmarshalJSON(data []byte) error {
	var corners []string
	if err := json.Unmarshal(data, &corners); err != nil {
		return err
	}
	if len(corners) != 2 {
		return fmt.Errorf("gisInfo must have 2 corners, got %d", len(corners))
	}
	g[0], g[1] = corners[0], corners[1]
	return nil
}

// ParseGISInfo builds a GISInfo from two "lat,lon" corners.
func ParseGISInfo(corners []string) (GISInfo, error) {
	if len(corners) != 2 {
		return GISInfo{}, fmt.Errorf("expected 2 corners, got %d", len(corners))
	}
	g := GISInfo{corners[0], corners[1]}
	if err := g.Validate(); err != nil {
		return GISInfo{}, err
	}
	return g, nil
}
