package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/hoanghai1803/birthsky/internal/models"
	"github.com/hoanghai1803/birthsky/internal/resolver"
)

// PictureResolver resolves a requested date to an image record.
type PictureResolver interface {
	Resolve(ctx context.Context, date models.CalendarDate, pool []models.Credential) (*models.Record, error)
}

// RecordEnricher fills optional fields of a resolved record.
type RecordEnricher interface {
	Enrich(ctx context.Context, rec *models.Record) *models.Record
}

// dateQuery is the requested date. Month and day ranges are checked here so
// malformed kiosk input never reaches the content service.
type dateQuery struct {
	Year  int `json:"year" validate:"gte=1,lte=9999"`
	Month int `json:"month" validate:"gte=1,lte=12"`
	Day   int `json:"day" validate:"gte=1,lte=31"`
}

// parseDateQuery reads either ?date=YYYY-MM-DD or ?year=&month=&day=.
func parseDateQuery(r *http.Request) (dateQuery, string) {
	q := r.URL.Query()

	if raw := q.Get("date"); raw != "" {
		d, err := models.ParseCalendarDate(raw)
		if err != nil {
			return dateQuery{}, "date must be YYYY-MM-DD"
		}
		return dateQuery{Year: d.Year, Month: d.Month, Day: d.Day}, ""
	}

	var dq dateQuery
	for _, f := range []struct {
		name string
		dst  *int
	}{
		{"year", &dq.Year},
		{"month", &dq.Month},
		{"day", &dq.Day},
	} {
		raw := q.Get(f.name)
		if raw == "" {
			return dateQuery{}, "year, month and day are required"
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return dateQuery{}, f.name + " must be a number"
		}
		*f.dst = n
	}
	return dq, ""
}

// GetPicture handles GET /api/picture. It resolves the requested date to an
// image record, optionally enriched from the archive, and maps the
// resolver's failures to HTTP statuses the front end can present.
func GetPicture(res PictureResolver, pool []models.Credential, enricher RecordEnricher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		dq, msg := parseDateQuery(r)
		if msg == "" {
			msg = validateStruct(dq)
		}
		if msg != "" {
			writeCodedError(w, http.StatusBadRequest, "invalid_date", msg)
			return
		}

		date := models.CalendarDate{Year: dq.Year, Month: dq.Month, Day: dq.Day}
		rec, err := res.Resolve(ctx, date, pool)
		if err != nil {
			writeResolveError(w, r, date, err)
			return
		}

		if enricher != nil {
			rec = enricher.Enrich(ctx, rec)
		}

		writeJSON(w, http.StatusOK, rec)
	}
}

// writeResolveError maps a resolver failure to a response.
func writeResolveError(w http.ResponseWriter, r *http.Request, date models.CalendarDate, err error) {
	var svcErr *resolver.ServiceError

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// The kiosk navigated away; nobody is listening for a body.
		slog.Info("picture request abandoned", "date", date.String(), "error", err)
		if r.Context().Err() == nil {
			writeCodedError(w, http.StatusGatewayTimeout, "timeout", "The picture service took too long to answer")
		}

	case errors.Is(err, resolver.ErrAllCredentialsExhausted):
		slog.Error("all API keys exhausted", "date", date.String())
		writeCodedError(w, http.StatusServiceUnavailable, "credentials_exhausted", "Service temporarily unavailable")

	case errors.Is(err, resolver.ErrNoImageFound):
		slog.Warn("no image found", "date", date.String())
		writeCodedError(w, http.StatusNotFound, "no_image_found", "No picture found for this date, please try another one")

	case errors.As(err, &svcErr):
		slog.Error("picture service error", "date", date.String(), "error", err)
		writeCodedError(w, http.StatusBadGateway, "service_error", "Failed to fetch the picture")

	default:
		slog.Error("failed to resolve picture", "date", date.String(), "error", err)
		writeCodedError(w, http.StatusInternalServerError, "internal", "Failed to fetch the picture")
	}
}
