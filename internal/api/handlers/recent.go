package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/hoanghai1803/birthsky/internal/models"
)

const (
	defaultRecentLimit = 7
	maxRecentLimit     = 30
)

// RecentLister lists recently published pictures.
type RecentLister interface {
	Recent(ctx context.Context, limit int) ([]models.FeedEntry, error)
}

// GetRecent handles GET /api/recent?limit=N. It returns the most recent
// pictures from the APOD feed for the kiosk's attract screen.
func GetRecent(feed RecentLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultRecentLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				writeError(w, http.StatusBadRequest, "limit must be a positive number")
				return
			}
			limit = min(n, maxRecentLimit)
		}

		entries, err := feed.Recent(r.Context(), limit)
		if err != nil {
			slog.Error("failed to read recent pictures", "error", err)
			writeError(w, http.StatusBadGateway, "Failed to load recent pictures")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
	}
}
