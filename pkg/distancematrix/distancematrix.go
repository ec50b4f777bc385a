// Package distancematrix fetches walking, transit, and driving durations
// from the Google Distance Matrix API.
package distancematrix

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const matrixURL = "https://maps.googleapis.com/maps/api/distancematrix/json"

// batchSize is the Distance Matrix per-request destination cap.
const batchSize = 25

// Unavailable is substituted for any destination whose lookup fails.
const Unavailable = "N/A"

// Coord is a latitude/longitude pair.
type Coord struct {
	Lat float64
	Lon float64
}

// Durations holds the per-destination duration strings for all three modes.
type Durations struct {
	Walk    string
	Transit string
	Drive   string
}

// Mode is a Distance Matrix travel mode.
type Mode string

const (
	ModeWalking Mode = "walking"
	ModeTransit Mode = "transit"
	ModeDriving Mode = "driving"
)

// Client fetches travel durations from one origin to many destinations.
type Client interface {
	// Durations returns one duration string per destination for the given
	// mode. Individual failures yield the Unavailable marker, never an error.
	Durations(ctx context.Context, origin Coord, dests []Coord, mode Mode) []string

	// AllModes fetches walking, transit, and driving durations and zips
	// them per destination.
	AllModes(ctx context.Context, origin Coord, dests []Coord) ([]Durations, error)
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

// NewClient creates a Distance Matrix Client with the given Google API key.
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

type matrixResponse struct {
	Rows []struct {
		Elements []struct {
			Status   string `json:"status"`
			Duration struct {
				Text string `json:"text"`
			} `json:"duration"`
		} `json:"elements"`
	} `json:"rows"`
	Status string `json:"status"`
}

// Durations implements Client. Destinations are split into batches of 25 to
// respect the upstream request-size limit; a failed batch marks only its own
// destinations Unavailable.
func (c *client) Durations(ctx context.Context, origin Coord, dests []Coord, mode Mode) []string {
	out := make([]string, 0, len(dests))

	for start := 0; start < len(dests); start += batchSize {
		end := start + batchSize
		if end > len(dests) {
			end = len(dests)
		}
		batch := dests[start:end]

		texts, err := c.fetchBatch(ctx, origin, batch, mode)
		if err != nil {
			zap.L().Warn("distancematrix: batch failed",
				zap.String("mode", string(mode)),
				zap.Int("batch_size", len(batch)),
				zap.Error(err),
			)
			for range batch {
				out = append(out, Unavailable)
			}
			continue
		}
		out = append(out, texts...)
	}

	return out
}

func (c *client) fetchBatch(ctx context.Context, origin Coord, dests []Coord, mode Mode) ([]string, error) {
	if c.apiKey == "" {
		return nil, eris.New("distancematrix: api key not configured")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "distancematrix: rate limit")
	}

	destParts := make([]string, len(dests))
	for i, d := range dests {
		destParts[i] = fmt.Sprintf("%f,%f", d.Lat, d.Lon)
	}

	params := url.Values{
		"origins":      {fmt.Sprintf("%f,%f", origin.Lat, origin.Lon)},
		"destinations": {strings.Join(destParts, "|")},
		"mode":         {string(mode)},
		"units":        {"metric"},
		"key":          {c.apiKey},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, matrixURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "distancematrix: build request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "distancematrix: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("distancematrix: returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "distancematrix: read body")
	}

	var matrixResp matrixResponse
	if err := json.Unmarshal(body, &matrixResp); err != nil {
		return nil, eris.Wrap(err, "distancematrix: parse response")
	}

	if matrixResp.Status != "OK" || len(matrixResp.Rows) == 0 {
		return nil, eris.Errorf("distancematrix: response status %q", matrixResp.Status)
	}

	texts := make([]string, 0, len(dests))
	for _, el := range matrixResp.Rows[0].Elements {
		if el.Status == "OK" {
			texts = append(texts, el.Duration.Text)
		} else {
			texts = append(texts, Unavailable)
		}
	}
	// Pad if the upstream returned fewer elements than destinations.
	for len(texts) < len(dests) {
		texts = append(texts, Unavailable)
	}
	return texts, nil
}

// AllModes implements Client. The three modes are fetched in parallel.
func (c *client) AllModes(ctx context.Context, origin Coord, dests []Coord) ([]Durations, error) {
	if len(dests) == 0 {
		return nil, nil
	}

	var walk, transit, drive []string

	eg, gCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		walk = c.Durations(gCtx, origin, dests, ModeWalking)
		return nil
	})
	eg.Go(func() error {
		transit = c.Durations(gCtx, origin, dests, ModeTransit)
		return nil
	})
	eg.Go(func() error {
		drive = c.Durations(gCtx, origin, dests, ModeDriving)
		return nil
	})
	_ = eg.Wait()

	out := make([]Durations, len(dests))
	for i := range dests {
		out[i] = Durations{Walk: walk[i], Transit: transit[i], Drive: drive[i]}
	}
	return out, nil
}
