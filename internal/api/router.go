package api

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/hoanghai1803/birthsky/internal/api/handlers"
	"github.com/hoanghai1803/birthsky/internal/config"
	"github.com/hoanghai1803/birthsky/internal/storage"
)

//go:embed all:dist
var distFS embed.FS

// Services bundles the collaborators the API handlers depend on. Enricher
// may be nil when archive enrichment is disabled.
type Services struct {
	Store    *storage.Store
	Resolver handlers.PictureResolver
	Enricher handlers.RecordEnricher
	Feed     handlers.RecentLister
}

// NewRouter creates and configures the HTTP router with all API routes and
// static file serving for the kiosk front end.
func NewRouter(svc Services, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(RequestLogger)
	r.Use(Recovery)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", handlers.AdminCodeHeader},
		MaxAge:         300,
	}))

	// API sub-router.
	r.Route("/api", func(api chi.Router) {
		api.Get("/health", handlers.Health(svc.Store))

		api.Get("/picture", handlers.GetPicture(svc.Resolver, cfg.Credentials(), svc.Enricher))
		api.Get("/recent", handlers.GetRecent(svc.Feed))
		api.Get("/media", handlers.ProxyMedia(cfg.MediaHosts()))

		api.Post("/auth/access", handlers.CheckCode("access", cfg.Kiosk.AccessCode))
		api.Post("/auth/admin", handlers.CheckCode("admin", cfg.Kiosk.AdminCode))

		api.Get("/settings/print", handlers.GetPrintSettings(svc.Store))
		api.Get("/settings/paper-sizes", handlers.GetPaperSizes())

		api.Group(func(admin chi.Router) {
			admin.Use(handlers.RequireAdmin(cfg.Kiosk.AdminCode))
			admin.Get("/settings", handlers.ListSettings(svc.Store))
			admin.Put("/settings/print", handlers.UpdatePrintSettings(svc.Store))
		})
	})

	// Serve the front end from the embedded dist/ directory.
	distContent, _ := fs.Sub(distFS, "dist")
	fileServer := http.FileServer(http.FS(distContent))

	// SPA fallback: serve index.html for any non-API GET request that does
	// not match a static file.
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if path == "/" {
			path = "/index.html"
		}

		f, err := distContent.Open(path[1:])
		if err != nil {
			r.URL.Path = "/"
			fileServer.ServeHTTP(w, r)
			return
		}
		f.Close()

		fileServer.ServeHTTP(w, r)
	})

	return r
}
