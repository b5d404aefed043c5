package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/hoanghai1803/birthsky/internal/api"
	"github.com/hoanghai1803/birthsky/internal/apod"
	"github.com/hoanghai1803/birthsky/internal/archive"
	"github.com/hoanghai1803/birthsky/internal/config"
	"github.com/hoanghai1803/birthsky/internal/resolver"
	"github.com/hoanghai1803/birthsky/internal/storage"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var flagDataDir string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the kiosk HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServer(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagDataDir, "data-dir", "./data", "path to data directory")
}

func runServer(ctx context.Context) error {
	// Load configuration (auto-creates default if missing).
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := os.MkdirAll(flagDataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	db, err := storage.OpenDatabase(filepath.Join(flagDataDir, "birthsky.db"))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := storage.RunMigrations(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	svc := api.Services{
		Store:    storage.NewStore(db),
		Resolver: newResolver(cfg),
	}

	archiveClient := archive.NewClient()
	svc.Feed = archive.NewFeed(archiveClient, cfg.Archive.FeedURL)
	if cfg.Archive.Enrich {
		svc.Enricher = archive.NewEnricher(archiveClient, cfg.Archive.PageBaseURL)
	}

	slog.Info("content service configured",
		"endpoint", cfg.APOD.Endpoint,
		"keys", len(cfg.APOD.APIKeys),
		"max_attempts", cfg.APOD.MaxAttempts,
		"enrich", cfg.Archive.Enrich,
	)

	// Localhost only: the kiosk browser runs on the same machine.
	addr := fmt.Sprintf("localhost:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.NewRouter(svc, cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting server", "addr", "http://"+addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down server: %w", err)
		}
		return nil
	})

	// Auto-open browser after a short delay to let the server start.
	if cfg.Server.AutoOpenBrowser {
		g.Go(func() error {
			select {
			case <-time.After(500 * time.Millisecond):
				openBrowser("http://" + addr)
			case <-gctx.Done():
			}
			return nil
		})
	}

	return g.Wait()
}

// newResolver builds the resolver and its content service client from cfg.
func newResolver(cfg *config.Config) *resolver.Resolver {
	client := apod.NewClient(apod.Options{
		Endpoint: cfg.APOD.Endpoint,
		Timeout:  cfg.Timeout(),
		HD:       cfg.APOD.HD,
	})
	return resolver.New(client, resolver.Options{MaxAttempts: cfg.APOD.MaxAttempts})
}

// openBrowser opens the given URL in the user's default browser.
// It is a fire-and-forget operation; errors are silently ignored.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	}
	if cmd != nil {
		_ = cmd.Start()
	}
}
