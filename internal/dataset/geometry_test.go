package dataset

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePoint(t *testing.T) {
	lat, lon, ok := ParsePoint(`{"type":"Point","coordinates":[-79.3832,43.6532]}`)
	assert.True(t, ok)
	assert.InDelta(t, 43.6532, lat, 1e-9)
	assert.InDelta(t, -79.3832, lon, 1e-9)
}

// Encoding (lat, lon) as GeoJSON [lon, lat] and parsing it back must yield
// the original pair.
func TestParsePointRoundTrip(t *testing.T) {
	wantLat, wantLon := 43.7615, -79.4111

	raw := fmt.Sprintf(`{"type":"Point","coordinates":[%g,%g]}`, wantLon, wantLat)
	lat, lon, ok := ParsePoint(raw)
	assert.True(t, ok)
	assert.InDelta(t, wantLat, lat, 1e-9)
	assert.InDelta(t, wantLon, lon, 1e-9)
}

func TestParsePointMalformed(t *testing.T) {
	cases := []string{
		"",
		"not json",
		`{"type":"Point"}`,
		`{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}`,
		`{"coordinates":[-79.38,43.65]}`,
		`{"type":"Point","coordinates":"oops"}`,
	}

	for _, raw := range cases {
		_, _, ok := ParsePoint(raw)
		assert.False(t, ok, "input %q should not parse", raw)
	}
}
