package archive

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/hoanghai1803/birthsky/internal/models"
	"github.com/mmcdole/gofeed"
)

var htmlTagPattern = regexp.MustCompile("<[^>]*>")

// Feed reads recent pictures from the APOD RSS feed.
type Feed struct {
	client  *Client
	feedURL string
}

// NewFeed creates a Feed reading feedURL.
func NewFeed(client *Client, feedURL string) *Feed {
	return &Feed{client: client, feedURL: feedURL}
}

// Recent returns up to limit entries from the feed, newest first as the
// feed lists them. Entries without a title or link are skipped.
func (f *Feed) Recent(ctx context.Context, limit int) ([]models.FeedEntry, error) {
	if err := f.client.waitForRateLimit(ctx, extractDomain(f.feedURL)); err != nil {
		return nil, fmt.Errorf("waiting to read feed %q: %w", f.feedURL, err)
	}

	fp := gofeed.NewParser()
	fp.Client = f.client.http

	feed, err := fp.ParseURLWithContext(f.feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parsing feed %q: %w", f.feedURL, err)
	}

	return feedEntries(feed, limit), nil
}

// feedEntries converts gofeed items into FeedEntry models.
func feedEntries(feed *gofeed.Feed, limit int) []models.FeedEntry {
	entries := make([]models.FeedEntry, 0, min(limit, len(feed.Items)))
	for _, item := range feed.Items {
		if len(entries) >= limit {
			break
		}
		if item.Title == "" || item.Link == "" {
			continue
		}
		entries = append(entries, models.FeedEntry{
			Title:       strings.TrimSpace(item.Title),
			Link:        item.Link,
			Description: stripHTML(item.Description),
			PublishedAt: item.PublishedParsed,
		})
	}
	return entries
}

// stripHTML removes HTML tags from s and unescapes HTML entities.
func stripHTML(s string) string {
	clean := htmlTagPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(html.UnescapeString(clean))
}
