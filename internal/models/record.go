package models

// MediaType is the kind of media the daily content service published for a date.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// Record is the daily content service's answer for one calendar date.
type Record struct {
	Date           string    `json:"date"`
	Title          string    `json:"title"`
	Explanation    string    `json:"explanation,omitempty"`
	URL            string    `json:"url"`
	HDURL          string    `json:"hdurl,omitempty"`
	MediaType      MediaType `json:"media_type"`
	Copyright      string    `json:"copyright,omitempty"`
	ServiceVersion string    `json:"service_version,omitempty"`
	ThumbnailURL   string    `json:"thumbnail_url,omitempty"`
}

// IsImage reports whether the record carries a still image.
func (r *Record) IsImage() bool {
	return r.MediaType == MediaImage
}

// BestURL returns the high-resolution media URL when the service supplied
// one, and the regular URL otherwise.
func (r *Record) BestURL() string {
	if r.HDURL != "" {
		return r.HDURL
	}
	return r.URL
}
