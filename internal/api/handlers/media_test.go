package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
)

func TestProxyMedia(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/image/saturn.jpg":
			w.Header().Set("Content-Type", "image/jpeg")
			_, _ = w.Write([]byte("JPEGDATA"))
		case "/image/huge.jpg":
			w.Header().Set("Content-Type", "image/jpeg")
			w.Header().Set("Content-Length", strconv.Itoa(maxMediaBytes+1))
			_, _ = w.Write([]byte("JPEG"))
		case "/page.html":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html></html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer upstream.Close()

	other := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("OTHER-HOST-DATA"))
	}))
	defer other.Close()

	redirector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/away.png":
			http.Redirect(w, r, other.URL+"/x.png", http.StatusFound)
		default:
			http.Redirect(w, r, upstream.URL+"/image/saturn.jpg", http.StatusFound)
		}
	}))
	defer redirector.Close()

	host := strings.TrimPrefix(upstream.URL, "http://")
	redirectHost := strings.TrimPrefix(redirector.URL, "http://")
	handler := proxyMedia(http.DefaultClient, []string{host, redirectHost})

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantBody   string
	}{
		{name: "image streamed", target: upstream.URL + "/image/saturn.jpg", wantStatus: http.StatusOK, wantBody: "JPEGDATA"},
		{name: "missing url", target: "", wantStatus: http.StatusBadRequest},
		{name: "non-http scheme", target: "file:///etc/passwd", wantStatus: http.StatusBadRequest},
		{name: "host not allowed", target: "https://evil.example.com/x.jpg", wantStatus: http.StatusBadRequest},
		{name: "not an image", target: upstream.URL + "/page.html", wantStatus: http.StatusBadGateway},
		{name: "image too large", target: upstream.URL + "/image/huge.jpg", wantStatus: http.StatusBadGateway},
		{name: "redirect to allowed host", target: redirector.URL + "/saturn.jpg", wantStatus: http.StatusOK, wantBody: "JPEGDATA"},
		{name: "redirect to other host", target: redirector.URL + "/away.png", wantStatus: http.StatusBadRequest},
		{name: "upstream 404", target: upstream.URL + "/missing.jpg", wantStatus: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := "/api/media"
			if tt.target != "" {
				path += "?url=" + url.QueryEscape(tt.target)
			}
			r := httptest.NewRequest(http.MethodGet, path, nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, r)

			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d; body: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantBody != "" && w.Body.String() != tt.wantBody {
				t.Errorf("got body %q, want %q", w.Body.String(), tt.wantBody)
			}
			if strings.Contains(w.Body.String(), "OTHER-HOST-DATA") {
				t.Errorf("body leaked content from a host that is not allowed")
			}
		})
	}
}
