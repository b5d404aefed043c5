package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/hoanghai1803/birthsky/internal/models"
)

// Config holds all application configuration.
type Config struct {
	APOD    APODConfig    `toml:"apod"`
	Archive ArchiveConfig `toml:"archive"`
	Server  ServerConfig  `toml:"server"`
	Kiosk   KioskConfig   `toml:"kiosk"`
}

// APODConfig holds settings for the daily content service.
type APODConfig struct {
	Endpoint       string   `toml:"endpoint"`
	APIKeys        []string `toml:"api_keys"`
	HD             bool     `toml:"hd"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
	MaxAttempts    int      `toml:"max_attempts"`
}

// ArchiveConfig holds settings for the APOD website (archive pages and RSS).
type ArchiveConfig struct {
	Enrich      bool   `toml:"enrich"`
	FeedURL     string `toml:"feed_url"`
	PageBaseURL string `toml:"page_base_url"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int  `toml:"port"`
	AutoOpenBrowser bool `toml:"auto_open_browser"`
}

// KioskConfig holds the codes guarding the kiosk and its admin screen.
type KioskConfig struct {
	AccessCode string `toml:"access_code"`
	AdminCode  string `toml:"admin_code"`
}

const (
	defaultEndpoint    = "https://api.nasa.gov/planetary/apod"
	defaultAPIKey      = "DEMO_KEY"
	defaultTimeout     = 30
	defaultMaxAttempts = 10
	defaultFeedURL     = "https://apod.nasa.gov/apod.rss"
	defaultPageBaseURL = "https://apod.nasa.gov/apod/"
	defaultPort        = 8080
	defaultAccessCode  = "0000"
	defaultAdminCode   = "1234"
)

const defaultConfigContent = `[apod]
endpoint = "https://api.nasa.gov/planetary/apod"
api_keys = ["DEMO_KEY"]           # Several keys spread the daily quota (or set APOD_API_KEYS)
hd = true
timeout_seconds = 30
max_attempts = 10                 # Non-image dates tried before giving up

[archive]
enrich = true                     # Fill missing explanation/credit from apod.nasa.gov
feed_url = "https://apod.nasa.gov/apod.rss"
page_base_url = "https://apod.nasa.gov/apod/"

[server]
port = 8080
auto_open_browser = true

[kiosk]
access_code = "0000"              # Web access gate (or set BIRTHSKY_ACCESS_CODE)
admin_code = "1234"               # Admin settings gate (or set BIRTHSKY_ADMIN_CODE)
`

// Load reads and parses the TOML config from the given path. If the file does
// not exist, it creates a default config file at that path. Environment
// variables override values from the file with highest priority.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := createDefault(path); err != nil {
			return nil, fmt.Errorf("creating default config: %w", err)
		}
		slog.Info("created default config file", "path", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := validateExplicit(&cfg, md); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	applyDefaults(&cfg, md)
	applyEnvOverrides(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Credentials returns the configured key pool.
func (c *Config) Credentials() []models.Credential {
	creds := make([]models.Credential, 0, len(c.APOD.APIKeys))
	for _, k := range c.APOD.APIKeys {
		creds = append(creds, models.Credential(k))
	}
	return creds
}

// MediaHosts returns the hosts the media proxy may stream images from: the
// archive host plus the feed host. Picture URLs in records point there.
func (c *Config) MediaHosts() []string {
	var hosts []string
	for _, raw := range []string{c.Archive.PageBaseURL, c.Archive.FeedURL} {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			continue
		}
		h := strings.ToLower(u.Host)
		if !slices.Contains(hosts, h) {
			hosts = append(hosts, h)
		}
	}
	return hosts
}

// Timeout returns the per-request timeout for the content service.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.APOD.TimeoutSeconds) * time.Second
}

// createDefault writes the default config content to the given path,
// creating any parent directories as needed.
func createDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigContent), 0o644); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}

// validateExplicit checks values that were explicitly set in the TOML file,
// so that "port = 0" or "api_keys = []" is an error rather than silently
// being replaced with the default.
func validateExplicit(cfg *Config, md toml.MetaData) error {
	if md.IsDefined("server", "port") {
		if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
			return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", cfg.Server.Port)
		}
	}
	if md.IsDefined("apod", "api_keys") && len(nonEmpty(cfg.APOD.APIKeys)) == 0 {
		return errors.New("invalid apod.api_keys: at least one key is required")
	}
	if md.IsDefined("apod", "max_attempts") && cfg.APOD.MaxAttempts < 1 {
		return fmt.Errorf("invalid apod.max_attempts %d: must be >= 1", cfg.APOD.MaxAttempts)
	}
	if md.IsDefined("apod", "timeout_seconds") && cfg.APOD.TimeoutSeconds < 1 {
		return fmt.Errorf("invalid apod.timeout_seconds %d: must be >= 1", cfg.APOD.TimeoutSeconds)
	}
	return nil
}

// applyDefaults sets default values for any zero-valued fields. Booleans
// default to true only when the key is absent from the file.
func applyDefaults(cfg *Config, md toml.MetaData) {
	if cfg.APOD.Endpoint == "" {
		cfg.APOD.Endpoint = defaultEndpoint
	}
	cfg.APOD.APIKeys = nonEmpty(cfg.APOD.APIKeys)
	if len(cfg.APOD.APIKeys) == 0 {
		cfg.APOD.APIKeys = []string{defaultAPIKey}
	}
	if !md.IsDefined("apod", "hd") {
		cfg.APOD.HD = true
	}
	if cfg.APOD.TimeoutSeconds == 0 {
		cfg.APOD.TimeoutSeconds = defaultTimeout
	}
	if cfg.APOD.MaxAttempts == 0 {
		cfg.APOD.MaxAttempts = defaultMaxAttempts
	}
	if !md.IsDefined("archive", "enrich") {
		cfg.Archive.Enrich = true
	}
	if cfg.Archive.FeedURL == "" {
		cfg.Archive.FeedURL = defaultFeedURL
	}
	if cfg.Archive.PageBaseURL == "" {
		cfg.Archive.PageBaseURL = defaultPageBaseURL
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaultPort
	}
	if !md.IsDefined("server", "auto_open_browser") {
		cfg.Server.AutoOpenBrowser = true
	}
	if cfg.Kiosk.AccessCode == "" {
		cfg.Kiosk.AccessCode = defaultAccessCode
	}
	if cfg.Kiosk.AdminCode == "" {
		cfg.Kiosk.AdminCode = defaultAdminCode
	}
}

// applyEnvOverrides applies environment variable overrides. Environment
// variables take highest priority over config file values.
//
// Priority for apod.api_keys:
//  1. APOD_API_KEYS (comma-separated pool, highest)
//  2. NASA_API_KEY (single key)
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("NASA_API_KEY"); v != "" {
		cfg.APOD.APIKeys = []string{v}
	}
	if v := os.Getenv("APOD_API_KEYS"); v != "" {
		if keys := nonEmpty(strings.Split(v, ",")); len(keys) > 0 {
			cfg.APOD.APIKeys = keys
		}
	}

	if v := os.Getenv("BIRTHSKY_ACCESS_CODE"); v != "" {
		cfg.Kiosk.AccessCode = v
	}
	if v := os.Getenv("BIRTHSKY_ADMIN_CODE"); v != "" {
		cfg.Kiosk.AdminCode = v
	}
}

// validate checks that configuration values are within acceptable ranges.
func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", cfg.Server.Port)
	}

	for name, raw := range map[string]string{
		"apod.endpoint":         cfg.APOD.Endpoint,
		"archive.feed_url":      cfg.Archive.FeedURL,
		"archive.page_base_url": cfg.Archive.PageBaseURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid %s %q: must be an http(s) URL", name, raw)
		}
	}

	if cfg.APOD.MaxAttempts < 1 {
		return fmt.Errorf("invalid apod.max_attempts %d: must be >= 1", cfg.APOD.MaxAttempts)
	}

	if len(cfg.APOD.APIKeys) == 1 && cfg.APOD.APIKeys[0] == defaultAPIKey {
		slog.Warn("using NASA's DEMO_KEY: set apod.api_keys or APOD_API_KEYS for a real daily quota")
	}

	return nil
}

// nonEmpty trims keys and drops blanks.
func nonEmpty(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}
