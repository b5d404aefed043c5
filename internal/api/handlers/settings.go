package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hoanghai1803/birthsky/internal/models"
	"github.com/hoanghai1803/birthsky/internal/storage"
)

// GetPrintSettings handles GET /api/settings/print.
func GetPrintSettings(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ps, err := store.PrintSettings(r.Context())
		if err != nil {
			slog.Error("failed to get print settings", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to get print settings")
			return
		}

		writeJSON(w, http.StatusOK, ps)
	}
}

// UpdatePrintSettings handles PUT /api/settings/print. An empty paper size
// selects the printer default.
func UpdatePrintSettings(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var body models.PrintSettings
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		if body.PaperSize == "" {
			body.PaperSize = models.DefaultPaperSize
		}
		if msg := validateStruct(body); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		if err := store.SavePrintSettings(ctx, body); err != nil {
			slog.Error("failed to save print settings", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to save print settings")
			return
		}

		slog.Info("print settings updated", "printer", body.PrinterName, "paper_size", body.PaperSize)

		ps, err := store.PrintSettings(ctx)
		if err != nil {
			slog.Error("failed to get print settings after save", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to get print settings")
			return
		}

		writeJSON(w, http.StatusOK, ps)
	}
}

// ListSettings handles GET /api/settings. It returns every stored setting
// for the admin screen.
func ListSettings(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		settings, err := store.ListSettings(r.Context())
		if err != nil {
			slog.Error("failed to list settings", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to list settings")
			return
		}
		if settings == nil {
			settings = []models.Setting{}
		}

		writeJSON(w, http.StatusOK, map[string]any{"settings": settings})
	}
}

// GetPaperSizes handles GET /api/settings/paper-sizes.
func GetPaperSizes() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.PaperSizes)
	}
}
