package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
	"github.com/hoanghai1803/birthsky/internal/models"
	"golang.org/x/net/html"
)

// Enricher fills the explanation and credit line of a record from its
// archive page when the API response left them empty.
type Enricher struct {
	client  *Client
	baseURL string
}

// NewEnricher creates an Enricher reading pages under baseURL.
func NewEnricher(client *Client, baseURL string) *Enricher {
	return &Enricher{client: client, baseURL: baseURL}
}

// Enrich returns a copy of rec with missing fields filled from the archive
// page. Failures are logged and the unchanged copy is returned.
func (e *Enricher) Enrich(ctx context.Context, rec *models.Record) *models.Record {
	out := *rec
	if out.Explanation != "" && out.Copyright != "" {
		return &out
	}

	date, err := models.ParseCalendarDate(rec.Date)
	if err != nil {
		slog.Warn("skipping enrichment, record has no usable date", "date", rec.Date, "error", err)
		return &out
	}

	pageURL := PageURL(e.baseURL, date)
	page, err := e.fetchPage(ctx, pageURL)
	if err != nil {
		slog.Warn("failed to fetch archive page", "url", pageURL, "error", err)
		return &out
	}

	if out.Explanation == "" {
		text, err := readableText(page, pageURL)
		if err != nil {
			slog.Warn("failed to extract archive text", "url", pageURL, "error", err)
		} else {
			out.Explanation = explanationFrom(text)
		}
	}

	if out.Copyright == "" {
		credit, err := parseCredit(page)
		if err != nil {
			slog.Warn("failed to parse archive credit", "url", pageURL, "error", err)
		} else {
			out.Copyright = credit
		}
	}

	return &out
}

// fetchPage downloads an archive page.
func (e *Enricher) fetchPage(ctx context.Context, pageURL string) ([]byte, error) {
	if err := e.client.waitForRateLimit(ctx, extractDomain(pageURL)); err != nil {
		return nil, fmt.Errorf("waiting to fetch %q: %w", pageURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request for %q: %w", pageURL, err)
	}

	resp, err := e.client.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %q: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %q: HTTP %d", pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("reading body from %q: %w", pageURL, err)
	}
	return body, nil
}

// readableText returns the main readable text of the page using
// go-readability.
func readableText(page []byte, pageURL string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parsing page URL: %w", err)
	}
	article, err := readability.FromReader(bytes.NewReader(page), u)
	if err != nil {
		return "", fmt.Errorf("readability extraction: %w", err)
	}
	return article.TextContent, nil
}

// explanationFrom cuts the explanation paragraph out of an archive page's
// text: everything after "Explanation:" up to the navigation footer.
func explanationFrom(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if i := strings.Index(text, "Explanation:"); i >= 0 {
		text = text[i+len("Explanation:"):]
	}
	if i := strings.Index(text, "Tomorrow's picture"); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}

// parseCredit finds the credit line of an archive page. APOD pages put it
// in a <center> block as "Image Credit & Copyright: Name".
func parseCredit(page []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	var credit string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if credit != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "center" {
			if c := creditFromText(textContent(n)); c != "" {
				credit = c
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if credit == "" {
		return "", fmt.Errorf("no credit line found")
	}
	return credit, nil
}

// creditFromText returns the text following the first "Credit...:" label.
func creditFromText(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	i := strings.Index(s, "Credit")
	if i < 0 {
		return ""
	}
	rest := s[i:]
	j := strings.Index(rest, ":")
	if j < 0 {
		return ""
	}
	return strings.TrimSpace(rest[j+1:])
}

// textContent returns the concatenated text content of an HTML node and its children.
func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}
