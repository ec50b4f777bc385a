package geocode

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/findmydaycare/daycare-server/internal/retry"
)

const torontoRooftop = `{
	"status": "OK",
	"results": [{
		"geometry": {
			"location": {"lat": 43.6525, "lng": -79.3839},
			"location_type": "ROOFTOP"
		},
		"formatted_address": "100 Queen St W, Toronto, ON M5H 2N2, Canada",
		"address_components": [
			{"long_name": "100", "types": ["street_number"]},
			{"long_name": "Queen Street West", "types": ["route"]},
			{"long_name": "Toronto", "types": ["locality", "political"]}
		]
	}]
}`

func newTestClient(srvURL string) *client {
	return &client{
		apiKey:     "test-key",
		httpClient: newRewriteClient(srvURL, geocodeURL),
		limiter:    newTestLimiter(),
		retry:      retry.Config{Attempts: 3, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond},
	}
}

func TestGeocode_RetriesTransientFailure(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, torontoRooftop)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	result, err := c.Geocode(context.Background(), "100 Queen St W")
	require.NoError(t, err)
	assert.True(t, result.Matched)
	assert.Equal(t, 3, calls)
}

func TestGeocode_Rooftop(t *testing.T) {
	var gotAddress string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAddress = r.URL.Query().Get("address")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, torontoRooftop)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	result, err := c.Geocode(context.Background(), "100 Queen St W")
	require.NoError(t, err)
	assert.True(t, result.Matched)
	assert.InDelta(t, 43.6525, result.Latitude, 0.0001)
	assert.InDelta(t, -79.3839, result.Longitude, 0.0001)
	assert.Equal(t, "rooftop", result.Quality)

	// Bare addresses are anchored to Toronto before the lookup.
	assert.Equal(t, "100 Queen St W, Toronto, Ontario, Canada", gotAddress)
}

func TestGeocode_KeepsExplicitToronto(t *testing.T) {
	var gotAddress string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAddress = r.URL.Query().Get("address")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, torontoRooftop)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Geocode(context.Background(), "100 Queen St W, Toronto")
	require.NoError(t, err)
	assert.Equal(t, "100 Queen St W, Toronto", gotAddress)
}

func TestGeocode_RejectsApproximate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"status": "OK",
			"results": [{
				"geometry": {
					"location": {"lat": 43.7, "lng": -79.4},
					"location_type": "APPROXIMATE"
				},
				"address_components": [
					{"long_name": "Toronto", "types": ["locality"]},
					{"long_name": "Yonge Street", "types": ["route"]}
				]
			}]
		}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	result, err := c.Geocode(context.Background(), "Yonge St")
	require.NoError(t, err)
	assert.False(t, result.Matched)
}

func TestGeocode_RejectsOutsideToronto(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"status": "OK",
			"results": [{
				"geometry": {
					"location": {"lat": 43.5890, "lng": -79.6441},
					"location_type": "ROOFTOP"
				},
				"address_components": [
					{"long_name": "300", "types": ["street_number"]},
					{"long_name": "City Centre Drive", "types": ["route"]},
					{"long_name": "Mississauga", "types": ["locality", "political"]}
				]
			}]
		}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	result, err := c.Geocode(context.Background(), "300 City Centre Dr, Mississauga, not toronto")
	require.NoError(t, err)
	assert.False(t, result.Matched)
}

func TestGeocode_RejectsNoStreet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"status": "OK",
			"results": [{
				"geometry": {
					"location": {"lat": 43.6532, "lng": -79.3832},
					"location_type": "RANGE_INTERPOLATED"
				},
				"address_components": [
					{"long_name": "Toronto", "types": ["locality", "political"]}
				]
			}]
		}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	result, err := c.Geocode(context.Background(), "somewhere in toronto")
	require.NoError(t, err)
	assert.False(t, result.Matched)
}

func TestGeocode_ZeroResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"status": "ZERO_RESULTS", "results": []}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	result, err := c.Geocode(context.Background(), "000 Nonexistent Rd, toronto")
	require.NoError(t, err)
	assert.False(t, result.Matched)
}

func TestGeocode_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Geocode(context.Background(), "100 Queen St W, toronto")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}

func TestGeocode_NoKey(t *testing.T) {
	c := &client{httpClient: http.DefaultClient, limiter: newTestLimiter()}
	_, err := c.Geocode(context.Background(), "100 Queen St W")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
