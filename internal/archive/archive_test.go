package archive

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hoanghai1803/birthsky/internal/models"
)

// newTestClient returns a Client without the per-domain delay.
func newTestClient() *Client {
	c := NewClient()
	c.delay = 0
	return c
}

const samplePage = `<html>
<head><title>APOD: 2010 March 5 - Saturn's Rings Edge On</title></head>
<body>
<center>
<h1> Astronomy Picture of the Day </h1>
<p>
<a href="archivepix.html">Discover the cosmos!</a>
<p>
2010 March 5
<br>
<a href="image/1003/saturn_big.jpg"><IMG SRC="image/1003/saturn.jpg" alt="See Explanation."></a>
</center>

<center>
<b> Saturn's Rings Edge On </b> <br>
<b> Image Credit &amp; Copyright: </b>
<a href="https://example.org/jdoe">Jane   Doe</a>
</center> <p>

<b> Explanation: </b>
Saturn's rings were seen nearly edge on from planet Earth this week, a geometry that
happens only twice during Saturn's nearly thirty year orbit around the Sun. With the
bright rings reduced to a thin line, faint moons and the shadow of the rings on the
planet's cloud tops stand out in this sharp telescopic view. The rings themselves are
mostly water ice, ranging in size from tiny grains to boulders, and extend hundreds of
thousands of kilometers from the planet while being only tens of meters thick. Ring
plane crossings let astronomers search for new moons and measure the thickness of the
rings with unusual precision, so observatories around the world followed the event.
<p>
<center>
<b> Tomorrow's picture: </b>edge of the ring plane
<p> <hr>
<a href="ap100304.html">&lt;</a> | <a href="archivepix.html">Archive</a>
</center>
</body>
</html>`

func TestPageURL(t *testing.T) {
	tests := []struct {
		name string
		base string
		date models.CalendarDate
		want string
	}{
		{
			name: "two-digit year in the 2000s",
			base: "https://apod.nasa.gov/apod/",
			date: models.CalendarDate{Year: 2010, Month: 3, Day: 5},
			want: "https://apod.nasa.gov/apod/ap100305.html",
		},
		{
			name: "1990s date",
			base: "https://apod.nasa.gov/apod/",
			date: models.CalendarDate{Year: 1996, Month: 12, Day: 31},
			want: "https://apod.nasa.gov/apod/ap961231.html",
		},
		{
			name: "base without trailing slash",
			base: "https://apod.nasa.gov/apod",
			date: models.CalendarDate{Year: 2023, Month: 6, Day: 15},
			want: "https://apod.nasa.gov/apod/ap230615.html",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PageURL(tt.base, tt.date); got != tt.want {
				t.Errorf("PageURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseCredit(t *testing.T) {
	got, err := parseCredit([]byte(samplePage))
	if err != nil {
		t.Fatalf("parseCredit() error: %v", err)
	}
	if got != "Jane Doe" {
		t.Errorf("parseCredit() = %q, want %q", got, "Jane Doe")
	}
}

func TestParseCredit_Missing(t *testing.T) {
	if _, err := parseCredit([]byte(`<html><body><center>No label here</center></body></html>`)); err == nil {
		t.Error("parseCredit() error = nil, want error")
	}
}

func TestExplanationFrom(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "cuts label and footer",
			in:   "Title\nExplanation:  Rings are\n thin. Tomorrow's picture: more rings",
			want: "Rings are thin.",
		},
		{
			name: "no label keeps text",
			in:   "  Just   text  ",
			want: "Just text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := explanationFrom(tt.in); got != tt.want {
				t.Errorf("explanationFrom() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEnrich_FillsMissingFields(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	e := NewEnricher(newTestClient(), srv.URL+"/apod/")
	rec := &models.Record{Date: "2010-03-05", Title: "Saturn's Rings Edge On", MediaType: models.MediaImage}

	got := e.Enrich(context.Background(), rec)

	if gotPath != "/apod/ap100305.html" {
		t.Errorf("requested %q, want %q", gotPath, "/apod/ap100305.html")
	}
	if got.Copyright != "Jane Doe" {
		t.Errorf("Copyright = %q, want %q", got.Copyright, "Jane Doe")
	}
	if !strings.Contains(got.Explanation, "Saturn") {
		t.Errorf("Explanation = %q, want text about Saturn", got.Explanation)
	}
	if rec.Copyright != "" || rec.Explanation != "" {
		t.Error("Enrich modified the input record")
	}
}

func TestEnrich_CompleteRecordSkipsFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
	}))
	defer srv.Close()

	e := NewEnricher(newTestClient(), srv.URL)
	rec := &models.Record{Date: "2010-03-05", Explanation: "known", Copyright: "known"}

	got := e.Enrich(context.Background(), rec)
	if got.Explanation != "known" || got.Copyright != "known" {
		t.Errorf("Enrich() = %+v, want fields unchanged", got)
	}
}

func TestEnrich_PageErrorReturnsRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	e := NewEnricher(newTestClient(), srv.URL)
	rec := &models.Record{Date: "2010-03-05", Title: "x", MediaType: models.MediaImage}

	got := e.Enrich(context.Background(), rec)
	if got.Title != "x" || got.Explanation != "" {
		t.Errorf("Enrich() = %+v, want the record unchanged", got)
	}
}

func TestWaitForRateLimit_CancelledContext(t *testing.T) {
	c := NewClient()
	c.delay = time.Hour

	if err := c.waitForRateLimit(context.Background(), "apod.nasa.gov"); err != nil {
		t.Fatalf("first waitForRateLimit() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := c.waitForRateLimit(ctx, "apod.nasa.gov")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("waitForRateLimit() error = %v, want context.Canceled", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("waitForRateLimit() blocked for %v after cancellation", elapsed)
	}
}

func TestWaitForRateLimit_OtherDomainNotDelayed(t *testing.T) {
	c := NewClient()
	c.delay = time.Hour

	if err := c.waitForRateLimit(context.Background(), "apod.nasa.gov"); err != nil {
		t.Fatalf("waitForRateLimit() error: %v", err)
	}
	if err := c.waitForRateLimit(context.Background(), "example.org"); err != nil {
		t.Fatalf("waitForRateLimit() for another domain error: %v", err)
	}
}
