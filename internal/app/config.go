package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/Super-StarX/INIValidator/internal/diag"
	"github.com/Super-StarX/INIValidator/internal/report"
)

// Built-in defaults, used when neither a flag nor the settings file sets a
// value.
const (
	DefaultSchemaPath    = "INICodingCheck.ini"
	DefaultScriptsDir    = "Scripts"
	DefaultWatchDebounce = 300 * time.Millisecond
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config holds all the necessary configuration for an App instance to run.
// Empty strings and zero numbers mean "not set on the command line".
type Config struct {
	SchemaPath      string
	Targets         []string
	SettingsPath    string
	ScriptsDir      string
	FileType        string
	MaxStringLength int

	Format     string
	OutputPath string
	Color      string
	FailOn     string

	LogFormat       string
	LogLevel        string
	Watch           bool
	WatchDebounce   time.Duration
	HealthcheckPort int
}

// NewConfig validates cfg and fills in presentation defaults.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.Targets) == 0 {
		return nil, errors.New("at least one target file or directory is required")
	}

	switch cfg.Format {
	case "":
		cfg.Format = report.FormatText
	case report.FormatText, report.FormatJSON:
	default:
		return nil, fmt.Errorf("invalid format %q: must be 'text' or 'json'", cfg.Format)
	}

	switch cfg.Color {
	case "":
		cfg.Color = ColorAuto
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return nil, fmt.Errorf("invalid color mode %q: must be 'auto', 'always' or 'never'", cfg.Color)
	}

	if cfg.FailOn == "" {
		cfg.FailOn = "error"
	}
	if _, err := diag.ParseSeverity(cfg.FailOn); err != nil {
		return nil, fmt.Errorf("invalid fail-on: %w", err)
	}

	if cfg.MaxStringLength < 0 {
		return nil, fmt.Errorf("max-string-length must not be negative, got %d", cfg.MaxStringLength)
	}
	if cfg.WatchDebounce <= 0 {
		cfg.WatchDebounce = DefaultWatchDebounce
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("invalid healthcheck port %d", cfg.HealthcheckPort)
	}
	return &cfg, nil
}
