// Package archive reads the APOD website: the per-day archive pages, used to
// fill fields the API left empty, and the RSS feed of recent pictures.
package archive

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/hoanghai1803/birthsky/internal/models"
)

const (
	httpTimeout    = 30 * time.Second
	rateLimitDelay = 1 * time.Second
	maxPageBytes   = 2 << 20
)

// Client is the HTTP side shared by Enricher and Feed. It spaces requests
// to the same host by rateLimitDelay.
type Client struct {
	http        *http.Client
	rateLimiter map[string]time.Time // per-domain last request time
	mu          sync.Mutex           // protects rateLimiter
	delay       time.Duration
}

// NewClient creates a Client with a 30-second timeout and the birthsky user
// agent.
func NewClient() *Client {
	return &Client{
		http: &http.Client{
			Timeout: httpTimeout,
			Transport: &userAgentTransport{
				base: http.DefaultTransport,
			},
		},
		rateLimiter: make(map[string]time.Time),
		delay:       rateLimitDelay,
	}
}

// userAgentTransport wraps an http.RoundTripper to inject a custom User-Agent
// header on every request.
type userAgentTransport struct {
	base http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; birthsky/1.0; +https://github.com/hoanghai1803/birthsky)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	return t.base.RoundTrip(req)
}

// waitForRateLimit enforces a minimum delay between requests to the same
// domain. It blocks until the delay has elapsed or ctx is done.
func (c *Client) waitForRateLimit(ctx context.Context, domain string) error {
	c.mu.Lock()
	lastReq, ok := c.rateLimiter[domain]
	if ok {
		elapsed := time.Since(lastReq)
		if elapsed < c.delay {
			c.mu.Unlock()
			select {
			case <-time.After(c.delay - elapsed):
			case <-ctx.Done():
				return ctx.Err()
			}
			c.mu.Lock()
		}
	}
	c.rateLimiter[domain] = time.Now()
	c.mu.Unlock()
	return nil
}

// extractDomain parses a URL and returns its hostname. If parsing fails, it
// returns the raw URL as a fallback key.
func extractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Hostname()
}

// PageURL returns the archive page for date, e.g. ap100305.html for
// 2010-03-05, under baseURL.
func PageURL(baseURL string, date models.CalendarDate) string {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return fmt.Sprintf("%sap%02d%02d%02d.html", baseURL, date.Year%100, date.Month, date.Day)
}
