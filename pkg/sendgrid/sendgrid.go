// Package sendgrid is a thin client for the SendGrid v3 mail send API.
package sendgrid

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

const mailSendURL = "https://api.sendgrid.com/v3/mail/send"

// Message is one outbound email with plain-text and HTML parts.
type Message struct {
	ToEmail   string
	Subject   string
	PlainText string
	HTML      string
}

// Client sends email.
type Client interface {
	Send(ctx context.Context, msg Message) error
}

// Option configures the client.
type Option func(*client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

type client struct {
	apiKey     string
	fromEmail  string
	fromName   string
	httpClient *http.Client
}

// NewClient creates a SendGrid Client sending from the given address.
func NewClient(apiKey, fromEmail, fromName string, opts ...Option) Client {
	c := &client{
		apiKey:     apiKey,
		fromEmail:  fromEmail,
		fromName:   fromName,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type emailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type mailSendRequest struct {
	Personalizations []struct {
		To []emailAddress `json:"to"`
	} `json:"personalizations"`
	From    emailAddress `json:"from"`
	Subject string       `json:"subject"`
	Content []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"content"`
}

// Send implements Client. Any non-2xx response is an error.
func (c *client) Send(ctx context.Context, msg Message) error {
	if c.apiKey == "" {
		return eris.New("sendgrid: api key not configured")
	}

	var payload mailSendRequest
	payload.Personalizations = make([]struct {
		To []emailAddress `json:"to"`
	}, 1)
	payload.Personalizations[0].To = []emailAddress{{Email: msg.ToEmail}}
	payload.From = emailAddress{Email: c.fromEmail, Name: c.fromName}
	payload.Subject = msg.Subject
	payload.Content = []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	}{
		{Type: "text/plain", Value: msg.PlainText},
		{Type: "text/html", Value: msg.HTML},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrap(err, "sendgrid: marshal payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, mailSendURL, bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "sendgrid: build request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return eris.Wrap(err, "sendgrid: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return eris.Errorf("sendgrid: returned status %d: %s", resp.StatusCode, string(detail))
	}
	return nil
}
