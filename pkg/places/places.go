// Package places looks up Google Places details (website, rating, reviews)
// for known facilities.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const (
	textSearchURL = "https://maps.googleapis.com/maps/api/place/textsearch/json"
	detailsURL    = "https://maps.googleapis.com/maps/api/place/details/json"

	// locationBiasRadiusM biases the text search toward the facility's
	// known coordinate.
	locationBiasRadiusM = 500

	// maxCoordDelta rejects text-search matches further than roughly 1 km
	// from the expected coordinate on either axis.
	maxCoordDelta = 0.01
)

// Match confidence taxonomy, recorded alongside the fetched details.
const (
	ConfidenceHigh             = "high"
	ConfidenceNoResults        = "no_results"
	ConfidenceLocationMismatch = "location_mismatch"
)

// Query identifies a facility to look up.
type Query struct {
	Name       string
	Address    string
	PostalCode string

	// Lat/Lon bias the search and gate the match; HasCoord=false skips both.
	Lat      float64
	Lon      float64
	HasCoord bool
}

// Details holds the fetched Places fields. A non-high Confidence means the
// remaining fields are empty.
type Details struct {
	PlaceID      string
	Website      string
	Rating       *float64
	ReviewsCount *int
	MapsURL      string
	Phone        string
	Confidence   string
}

// Client looks up place details for a facility.
type Client interface {
	Lookup(ctx context.Context, q Query) (*Details, error)
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

type client struct {
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a Places Client with the given Google API key.
func NewClient(apiKey string, opts ...Option) Client {
	c := &client{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(10, 10),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type textSearchResponse struct {
	Results []struct {
		PlaceID  string `json:"place_id"`
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
	Status string `json:"status"`
}

type detailsResponse struct {
	Result struct {
		Website          string   `json:"website"`
		Rating           *float64 `json:"rating"`
		UserRatingsTotal *int     `json:"user_ratings_total"`
		URL              string   `json:"url"`
		Phone            string   `json:"formatted_phone_number"`
	} `json:"result"`
	Status string `json:"status"`
}

// Lookup implements Client: a text search scoped to the facility coordinate,
// a sanity check that the top hit is where the facility should be, then a
// details fetch for the enrichment fields.
func (c *client) Lookup(ctx context.Context, q Query) (*Details, error) {
	if c.apiKey == "" {
		return nil, eris.New("places: api key not configured")
	}

	query := fmt.Sprintf("%s, %s, %s, Toronto, Ontario", q.Name, q.Address, q.PostalCode)

	params := url.Values{
		"query": {query},
		"type":  {"child_care"},
		"key":   {c.apiKey},
	}
	if q.HasCoord {
		params.Set("location", fmt.Sprintf("%f,%f", q.Lat, q.Lon))
		params.Set("radius", fmt.Sprintf("%d", locationBiasRadiusM))
	}

	var searchResp textSearchResponse
	if err := c.getJSON(ctx, textSearchURL, params, &searchResp); err != nil {
		return nil, eris.Wrap(err, "places: text search")
	}

	if searchResp.Status != "OK" || len(searchResp.Results) == 0 {
		return &Details{Confidence: ConfidenceNoResults}, nil
	}

	top := searchResp.Results[0]

	if q.HasCoord {
		latDelta := math.Abs(top.Geometry.Location.Lat - q.Lat)
		lonDelta := math.Abs(top.Geometry.Location.Lng - q.Lon)
		if latDelta > maxCoordDelta || lonDelta > maxCoordDelta {
			return &Details{Confidence: ConfidenceLocationMismatch}, nil
		}
	}

	detailParams := url.Values{
		"place_id": {top.PlaceID},
		"fields":   {"website,rating,user_ratings_total,url,formatted_phone_number"},
		"key":      {c.apiKey},
	}

	var detResp detailsResponse
	if err := c.getJSON(ctx, detailsURL, detailParams, &detResp); err != nil {
		return nil, eris.Wrap(err, "places: details")
	}
	if detResp.Status != "OK" {
		return nil, eris.Errorf("places: details status %q", detResp.Status)
	}

	return &Details{
		PlaceID:      top.PlaceID,
		Website:      detResp.Result.Website,
		Rating:       detResp.Result.Rating,
		ReviewsCount: detResp.Result.UserRatingsTotal,
		MapsURL:      detResp.Result.URL,
		Phone:        detResp.Result.Phone,
		Confidence:   ConfidenceHigh,
	}, nil
}

func (c *client) getJSON(ctx context.Context, baseURL string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "rate limit")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return eris.Wrap(err, "build request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return eris.Wrap(err, "request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "read body")
	}

	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "parse response")
	}
	return nil
}
