package models

import "time"

// FeedEntry is one recent picture announced on the service's RSS feed.
type FeedEntry struct {
	Title       string     `json:"title"`
	Link        string     `json:"link"`
	Description string     `json:"description,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}
