// Package apod is a client for the Astronomy Picture of the Day API.
package apod

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/hoanghai1803/birthsky/internal/models"
)

// DefaultEndpoint is the public APOD API endpoint.
const DefaultEndpoint = "https://api.nasa.gov/planetary/apod"

const (
	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 1 << 20
	userAgent      = "birthsky/1.0 (+https://github.com/hoanghai1803/birthsky)"
)

// Client fetches one record per request from the APOD API.
type Client struct {
	endpoint string
	hd       bool
	client   *http.Client
}

// Options configures a Client. Zero values select the defaults.
type Options struct {
	Endpoint string
	Timeout  time.Duration
	// HD requests the highest-quality media variant.
	HD bool
	// Transport overrides the base round tripper; nil uses http.DefaultTransport.
	Transport http.RoundTripper
}

// NewClient creates a Client with the given options.
func NewClient(opts Options) *Client {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	return &Client{
		endpoint: opts.Endpoint,
		hd:       opts.HD,
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: &userAgentTransport{base: base},
		},
	}
}

// userAgentTransport wraps an http.RoundTripper to inject the birthsky
// User-Agent and JSON Accept headers on every request.
type userAgentTransport struct {
	base http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	return t.base.RoundTrip(req)
}

// errorBody covers both error shapes the API gateway and the APOD service use.
type errorBody struct {
	Msg   string `json:"msg"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (b errorBody) message() string {
	if b.Error != nil && b.Error.Message != "" {
		return b.Error.Message
	}
	return b.Msg
}

// Fetch requests the record published on date using credential. A 429
// response yields ErrRateLimited; any other non-200 status yields a
// *StatusError.
func (c *Client) Fetch(ctx context.Context, credential models.Credential, date models.CalendarDate) (*models.Record, error) {
	q := url.Values{}
	q.Set("api_key", string(credential))
	q.Set("date", date.String())
	if c.hd {
		q.Set("hd", "true")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	slog.Debug("calling APOD API", "date", date.String(), "key", credential.Masked())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	default:
		var eb errorBody
		_ = json.Unmarshal(body, &eb)
		return nil, &StatusError{StatusCode: resp.StatusCode, Message: eb.message()}
	}

	var rec models.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	if rec.MediaType == "" {
		return nil, fmt.Errorf("parsing response: missing media_type for %s", date)
	}

	return &rec, nil
}
