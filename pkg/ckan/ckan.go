// Package ckan is a minimal client for CKAN open-data portals, covering
// package metadata lookup and datastore CSV dumps.
package ckan

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Resource is one downloadable resource inside a CKAN package.
type Resource struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Format          string `json:"format"`
	DatastoreActive bool   `json:"datastore_active"`
}

// Package is CKAN package metadata.
type Package struct {
	Name      string     `json:"name"`
	Resources []Resource `json:"resources"`
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// Client talks to one CKAN instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client for the CKAN instance at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type packageShowResponse struct {
	Success bool    `json:"success"`
	Result  Package `json:"result"`
}

// ShowPackage fetches package metadata by package name or ID.
func (c *Client) ShowPackage(ctx context.Context, id string) (*Package, error) {
	params := url.Values{"id": {id}}
	reqURL := c.baseURL + "/api/3/action/package_show?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "ckan: build request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "ckan: package_show request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("ckan: package_show returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "ckan: read body")
	}

	var showResp packageShowResponse
	if err := json.Unmarshal(body, &showResp); err != nil {
		return nil, eris.Wrap(err, "ckan: parse response")
	}
	if !showResp.Success {
		return nil, eris.Errorf("ckan: package_show unsuccessful for %q", id)
	}

	return &showResp.Result, nil
}

// DatastoreDump streams the full CSV dump of a datastore resource into w.
func (c *Client) DatastoreDump(ctx context.Context, resourceID string, w io.Writer) error {
	reqURL := c.baseURL + "/datastore/dump/" + url.PathEscape(resourceID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return eris.Wrap(err, "ckan: build request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return eris.Wrap(err, "ckan: dump request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("ckan: dump returned status %d", resp.StatusCode)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return eris.Wrap(err, "ckan: write dump")
	}
	return nil
}
