package dataset

import (
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// ParsePoint extracts (lat, lon) from a raw GeoJSON geometry string.
// GeoJSON stores coordinates as [lon, lat]; the return value flips them
// back to the conventional (lat, lon) order.
//
// Malformed input, a non-Point geometry, or a missing coordinate pair all
// soft-fail with ok=false so callers can skip the row instead of aborting
// the whole search.
func ParsePoint(raw string) (lat, lon float64, ok bool) {
	if raw == "" {
		return 0, 0, false
	}

	var g geom.T
	if err := geojson.Unmarshal([]byte(raw), &g); err != nil {
		return 0, 0, false
	}

	p, isPoint := g.(*geom.Point)
	if !isPoint {
		return 0, 0, false
	}

	coords := p.Coords()
	if len(coords) < 2 {
		return 0, 0, false
	}
	return coords[1], coords[0], true
}
