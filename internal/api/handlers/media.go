package handlers

import (
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"
)

const maxMediaBytes = 50 << 20

// mediaClient is a dedicated HTTP client for streaming pictures to the
// kiosk (TLS 1.2+, 20s TLS handshake timeout).
var mediaClient = &http.Client{
	Timeout: 60 * time.Second,
	Transport: &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   20 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	},
}

// ProxyMedia handles GET /api/media?url=<encoded-url>. It streams an image
// from one of allowedHosts so the front end can draw it on a canvas and
// export or print it without cross-origin taint.
func ProxyMedia(allowedHosts []string) http.HandlerFunc {
	return proxyMedia(mediaClient, allowedHosts)
}

var errRedirectNotAllowed = errors.New("redirect to a host that is not allowed")

// allowlistedRedirects returns a copy of client that follows a redirect only
// when its target host is in allowedHosts.
func allowlistedRedirects(client *http.Client, allowedHosts []string) *http.Client {
	c := *client
	c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= 10 {
			return errors.New("stopped after 10 redirects")
		}
		if !slices.Contains(allowedHosts, strings.ToLower(req.URL.Host)) {
			return fmt.Errorf("%w: %s", errRedirectNotAllowed, req.URL.Host)
		}
		return nil
	}
	return &c
}

func proxyMedia(client *http.Client, allowedHosts []string) http.HandlerFunc {
	client = allowlistedRedirects(client, allowedHosts)
	return func(w http.ResponseWriter, r *http.Request) {
		targetURL := r.URL.Query().Get("url")
		if targetURL == "" {
			writeError(w, http.StatusBadRequest, "url parameter is required")
			return
		}

		parsed, err := url.Parse(targetURL)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			writeError(w, http.StatusBadRequest, "url must be a valid HTTP or HTTPS URL")
			return
		}
		if !slices.Contains(allowedHosts, strings.ToLower(parsed.Host)) {
			writeError(w, http.StatusBadRequest, "url host is not allowed")
			return
		}

		req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, targetURL, nil)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to create request")
			return
		}
		req.Header.Set("Accept", "image/*")

		resp, err := client.Do(req)
		if errors.Is(err, errRedirectNotAllowed) {
			slog.Warn("media redirect refused", "url", targetURL, "error", err)
			writeError(w, http.StatusBadRequest, "url redirects to a host that is not allowed")
			return
		}
		if err != nil {
			slog.Warn("media fetch failed", "url", targetURL, "error", err)
			writeError(w, http.StatusBadGateway, "failed to fetch media")
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			slog.Warn("media fetch returned non-200", "url", targetURL, "status", resp.StatusCode)
			writeError(w, http.StatusBadGateway, "failed to fetch media")
			return
		}

		contentType := resp.Header.Get("Content-Type")
		if !strings.HasPrefix(contentType, "image/") {
			writeError(w, http.StatusBadGateway, "upstream did not return an image")
			return
		}

		if resp.ContentLength > maxMediaBytes {
			slog.Warn("media too large", "url", targetURL, "bytes", resp.ContentLength)
			writeError(w, http.StatusBadGateway, "media is too large")
			return
		}

		w.Header().Set("Content-Type", contentType)
		if resp.ContentLength >= 0 {
			w.Header().Set("Content-Length", strconv.FormatInt(resp.ContentLength, 10))
		}
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		io.Copy(w, io.LimitReader(resp.Body, maxMediaBytes)) //nolint:errcheck
	}
}
