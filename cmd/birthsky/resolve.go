package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hoanghai1803/birthsky/internal/archive"
	"github.com/hoanghai1803/birthsky/internal/config"
	"github.com/hoanghai1803/birthsky/internal/models"
	"github.com/spf13/cobra"
)

var flagEnrich bool

var resolveCmd = &cobra.Command{
	Use:   "resolve YYYY-MM-DD",
	Short: "Resolve a date to a picture and print it as JSON",
	Long: `Resolve a date the same way the kiosk does and print the resulting record.

Dates before the first published picture are moved to a random year with the
same month and day. Video days are skipped in favour of another year.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := models.ParseCalendarDate(args[0])
		if err != nil {
			return err
		}

		cfg, err := config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rec, err := newResolver(cfg).Resolve(ctx, date, cfg.Credentials())
		if err != nil {
			return fmt.Errorf("resolving %s: %w", date, err)
		}

		if flagEnrich {
			rec = archive.NewEnricher(archive.NewClient(), cfg.Archive.PageBaseURL).Enrich(ctx, rec)
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	},
}

func init() {
	resolveCmd.Flags().BoolVar(&flagEnrich, "enrich", false, "fill missing explanation and credit from the archive page")
}
