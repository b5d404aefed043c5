package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hoanghai1803/birthsky/internal/models"
)

const (
	keyPrinterName = "printer_name"
	keyPaperSize   = "paper_size"
)

// GetSetting retrieves a setting by key and JSON-unmarshals it into dest.
// Returns ErrNotFound if the key does not exist.
func (s *Store) GetSetting(ctx context.Context, key string, dest any) error {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, key,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("getting setting %q: %w", key, err)
	}

	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return fmt.Errorf("unmarshaling setting %q: %w", key, err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// setSetting JSON-marshals value and stores it under the given key. If the
// key already exists, its value and updated_at are overwritten.
func setSetting(ctx context.Context, db execer, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshaling setting %q: %w", key, err)
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO settings (key, value, updated_at)
		 VALUES (?, ?, datetime('now'))
		 ON CONFLICT(key) DO UPDATE SET
			value      = excluded.value,
			updated_at = excluded.updated_at`,
		key, string(data),
	)
	if err != nil {
		return fmt.Errorf("setting %q: %w", key, err)
	}
	return nil
}

// ListSettings returns every setting ordered by key. The admin screen shows
// them with their last update time.
func (s *Store) ListSettings(ctx context.Context) ([]models.Setting, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value, updated_at FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("querying settings: %w", err)
	}
	defer rows.Close()

	var settings []models.Setting
	for rows.Next() {
		var (
			st        models.Setting
			updatedAt string
		)
		if err := rows.Scan(&st.Key, &st.Value, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning setting row: %w", err)
		}
		st.UpdatedAt = parseTime(updatedAt)
		settings = append(settings, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating setting rows: %w", err)
	}
	return settings, nil
}

// PrintSettings returns the saved printer and paper size. Missing keys fall
// back to the system default printer and the "auto" paper size.
func (s *Store) PrintSettings(ctx context.Context) (models.PrintSettings, error) {
	ps := models.PrintSettings{PaperSize: models.DefaultPaperSize}

	if err := s.GetSetting(ctx, keyPrinterName, &ps.PrinterName); err != nil && !errors.Is(err, ErrNotFound) {
		return ps, err
	}
	if err := s.GetSetting(ctx, keyPaperSize, &ps.PaperSize); err != nil && !errors.Is(err, ErrNotFound) {
		return ps, err
	}
	if ps.PaperSize == "" {
		ps.PaperSize = models.DefaultPaperSize
	}
	return ps, nil
}

// SavePrintSettings stores the printer and paper size in one transaction.
func (s *Store) SavePrintSettings(ctx context.Context, ps models.PrintSettings) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if err := setSetting(ctx, tx, keyPrinterName, ps.PrinterName); err != nil {
		return err
	}
	if err := setSetting(ctx, tx, keyPaperSize, ps.PaperSize); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing print settings: %w", err)
	}
	return nil
}
