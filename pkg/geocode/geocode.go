// Package geocode resolves free-text Toronto addresses to coordinates via
// the Google Geocoding API.
package geocode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/findmydaycare/daycare-server/internal/retry"
)

const geocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

// Client resolves an address to a coordinate.
type Client interface {
	// Geocode resolves a single free-text address. A result with
	// Matched=false means the address could not be resolved precisely
	// enough; it is not an error.
	Geocode(ctx context.Context, address string) (*Result, error)
}

// Result holds the geocoding output for an address.
type Result struct {
	Latitude         float64
	Longitude        float64
	FormattedAddress string
	Quality          string // "rooftop" or "range"
	Matched          bool
}

// Option configures the client.
type Option func(*client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// WithRateLimit sets the requests-per-second limit on outbound calls.
func WithRateLimit(rps float64) Option {
	return func(c *client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), int(rps))
	}
}

// WithRetry overrides the retry policy for transient upstream failures.
func WithRetry(cfg retry.Config) Option {
	return func(c *client) {
		c.retry = cfg
	}
}

type client struct {
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      retry.Config
}

// NewClient creates a geocoding Client with the given Google API key.
func NewClient(apiKey string, opts ...Option) Client {
	c := &client{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(10, 10),
		retry:      retry.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type geocodeResponse struct {
	Results []geocodeResult `json:"results"`
	Status  string          `json:"status"`
}

type geocodeResult struct {
	Geometry struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
		LocationType string `json:"location_type"`
	} `json:"geometry"`
	AddressComponents []addressComponent `json:"address_components"`
	FormattedAddress  string             `json:"formatted_address"`
}

type addressComponent struct {
	LongName string   `json:"long_name"`
	Types    []string `json:"types"`
}

// Geocode implements Client.
func (c *client) Geocode(ctx context.Context, address string) (*Result, error) {
	if c.apiKey == "" {
		return nil, eris.New("geocode: api key not configured")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "geocode: rate limit")
	}

	// Anchor bare street addresses to Toronto for better accuracy.
	if !strings.Contains(strings.ToLower(address), "toronto") {
		address = address + ", Toronto, Ontario, Canada"
	}

	params := url.Values{
		"address": {address},
		"key":     {c.apiKey},
	}

	reqURL := geocodeURL + "?" + params.Encode()

	body, err := retry.Do(ctx, c.retry, "geocode", func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "geocode: build request")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, eris.Wrap(retry.Transient(err), "geocode: request")
		}
		defer resp.Body.Close() //nolint:errcheck

		if resp.StatusCode != http.StatusOK {
			err := eris.Errorf("geocode: returned status %d", resp.StatusCode)
			if retry.TransientStatus(resp.StatusCode) {
				err = retry.Transient(err)
			}
			return nil, err
		}

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, eris.Wrap(retry.Transient(err), "geocode: read body")
		}
		return b, nil
	})
	if err != nil {
		return nil, err
	}

	var geocodeResp geocodeResponse
	if err := json.Unmarshal(body, &geocodeResp); err != nil {
		return nil, eris.Wrap(err, "geocode: parse response")
	}

	if geocodeResp.Status != "OK" || len(geocodeResp.Results) == 0 {
		return &Result{Matched: false}, nil
	}

	result := geocodeResp.Results[0]

	// Reject vague matches. ROOFTOP is an exact address, RANGE_INTERPOLATED
	// an interpolated street number; anything coarser is treated as not found.
	quality, precise := locationTypeToQuality(result.Geometry.LocationType)
	if !precise {
		return &Result{Matched: false}, nil
	}

	// The result must sit inside Toronto and carry a street-level component.
	if !inToronto(result.AddressComponents) || !hasStreet(result.AddressComponents) {
		return &Result{Matched: false}, nil
	}

	return &Result{
		Latitude:         result.Geometry.Location.Lat,
		Longitude:        result.Geometry.Location.Lng,
		FormattedAddress: result.FormattedAddress,
		Quality:          quality,
		Matched:          true,
	}, nil
}

// locationTypeToQuality maps Google's location_type to our quality taxonomy
// and reports whether the match is precise enough to accept.
func locationTypeToQuality(locType string) (string, bool) {
	switch strings.ToUpper(locType) {
	case "ROOFTOP":
		return "rooftop", true
	case "RANGE_INTERPOLATED":
		return "range", true
	default:
		return "approximate", false
	}
}

func inToronto(components []addressComponent) bool {
	for _, comp := range components {
		for _, t := range comp.Types {
			if t == "locality" && strings.Contains(strings.ToLower(comp.LongName), "toronto") {
				return true
			}
		}
	}
	return false
}

func hasStreet(components []addressComponent) bool {
	for _, comp := range components {
		for _, t := range comp.Types {
			if t == "street_number" || t == "route" {
				return true
			}
		}
	}
	return false
}
