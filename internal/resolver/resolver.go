// Package resolver turns a requested calendar date into a still-image record
// from the daily content service.
//
// Two budgets are tracked separately. The attempt ceiling bounds the content
// search: every non-image record consumes one attempt and moves the search to
// a random year with the same month and day. The credential pool bounds quota
// recovery: a rate-limited credential is dropped for the rest of the call and
// the same date is retried with another credential, free of charge.
package resolver

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/hoanghai1803/birthsky/internal/apod"
	"github.com/hoanghai1803/birthsky/internal/models"
)

// DefaultMaxAttempts is the content search ceiling.
const DefaultMaxAttempts = 10

// LaunchDate is the first date the service has a record for.
var LaunchDate = models.CalendarDate{Year: 1995, Month: 6, Day: 16}

// Fetcher retrieves the record published on a date. Implementations must
// return an error matching apod.ErrRateLimited when the credential's quota is
// used up.
type Fetcher interface {
	Fetch(ctx context.Context, credential models.Credential, date models.CalendarDate) (*models.Record, error)
}

// Outcome classifies a single request made during a resolution.
type Outcome string

const (
	OutcomeImage       Outcome = "image"
	OutcomeNotImage    Outcome = "not_image"
	OutcomeRateLimited Outcome = "rate_limited"
	OutcomeError       Outcome = "error"
)

// Attempt describes one request: the date tried, the credential used and
// what came back.
type Attempt struct {
	Date       models.CalendarDate
	Credential models.Credential
	Outcome    Outcome
}

// Options configures a Resolver. Zero values select the defaults.
type Options struct {
	MaxAttempts int
	LaunchDate  models.CalendarDate
	// Now provides "today"; defaults to time.Now.
	Now func() time.Time
	// Rand is the source for year substitution and credential draws; defaults
	// to the goroutine-safe top-level math/rand/v2 functions.
	Rand *rand.Rand
	// Observe, if set, is called after every request.
	Observe func(Attempt)
}

// Resolver resolves requested dates to image records. A Resolver holds no
// per-call state; it is safe for concurrent use unless Options.Rand was set.
type Resolver struct {
	fetcher     Fetcher
	maxAttempts int
	launch      models.CalendarDate
	now         func() time.Time
	intN        func(n int) int
	observe     func(Attempt)
}

// New creates a Resolver backed by fetcher.
func New(fetcher Fetcher, opts Options) *Resolver {
	r := &Resolver{
		fetcher:     fetcher,
		maxAttempts: opts.MaxAttempts,
		launch:      opts.LaunchDate,
		now:         opts.Now,
		intN:        rand.IntN,
		observe:     opts.Observe,
	}
	if r.maxAttempts <= 0 {
		r.maxAttempts = DefaultMaxAttempts
	}
	if r.launch == (models.CalendarDate{}) {
		r.launch = LaunchDate
	}
	if r.now == nil {
		r.now = time.Now
	}
	if opts.Rand != nil {
		r.intN = opts.Rand.IntN
	}
	return r
}

// YearRange returns the inclusive range substitute years are drawn from.
func (r *Resolver) YearRange() (minYear, maxYear int) {
	minYear = r.launch.Year + 1
	maxYear = r.now().Year() - 1
	if maxYear < minYear {
		maxYear = minYear
	}
	return minYear, maxYear
}

// randomYear draws uniformly from the years in YearRange not yet tried in
// this call, or from the whole range once every year has been tried.
func (r *Resolver) randomYear(tried map[int]bool) int {
	minYear, maxYear := r.YearRange()
	var fresh []int
	for y := minYear; y <= maxYear; y++ {
		if !tried[y] {
			fresh = append(fresh, y)
		}
	}
	if len(fresh) == 0 {
		return minYear + r.intN(maxYear-minYear+1)
	}
	return fresh[r.intN(len(fresh))]
}

// Resolve returns the first image record found for the requested month and
// day. Dates before the launch date are moved to a random year. The pool is
// copied; the caller's slice is never modified.
//
// Errors are ErrAllCredentialsExhausted, ErrNoImageFound, a *ServiceError, or
// the context's error when ctx is done.
func (r *Resolver) Resolve(ctx context.Context, requested models.CalendarDate, pool []models.Credential) (*models.Record, error) {
	log := slog.With("resolution_id", uuid.NewString(), "requested", requested.String())

	tried := make(map[int]bool)
	date := requested
	if requested.Before(r.launch) {
		date = requested.WithYear(r.randomYear(tried))
		log.Info("requested date precedes service launch, substituting year", "year", date.Year)
	}

	alive := slices.Clone(pool)
	attempts := 0

	for attempts < r.maxAttempts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(alive) == 0 {
			log.Warn("all credentials exhausted", "pool_size", len(pool))
			return nil, ErrAllCredentialsExhausted
		}

		i := r.intN(len(alive))
		key := alive[i]

		rec, err := r.fetcher.Fetch(ctx, key, date)
		switch {
		case errors.Is(err, apod.ErrRateLimited):
			alive = slices.Delete(alive, i, i+1)
			r.report(Attempt{Date: date, Credential: key, Outcome: OutcomeRateLimited})
			log.Warn("credential rate limited, dropping it",
				"date", date.String(),
				"key", key.Masked(),
				"alive", len(alive),
			)
			continue

		case err != nil:
			r.report(Attempt{Date: date, Credential: key, Outcome: OutcomeError})
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			log.Error("content service request failed", "date", date.String(), "error", err)
			return nil, &ServiceError{Date: date, Err: err}
		}

		if rec.IsImage() {
			r.report(Attempt{Date: date, Credential: key, Outcome: OutcomeImage})
			log.Info("resolved image", "date", date.String(), "attempts", attempts+1)
			return rec, nil
		}

		r.report(Attempt{Date: date, Credential: key, Outcome: OutcomeNotImage})
		attempts++
		tried[date.Year] = true
		next := date.WithYear(r.randomYear(tried))
		log.Info("record is not an image, trying another year",
			"date", date.String(),
			"media_type", rec.MediaType,
			"next", next.String(),
			"attempt", attempts,
		)
		date = next
	}

	log.Warn("no image found", "attempts", attempts)
	return nil, ErrNoImageFound
}

func (r *Resolver) report(a Attempt) {
	if r.observe != nil {
		r.observe(a)
	}
}
