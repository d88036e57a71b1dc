package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Super-StarX/INIValidator/internal/config"
	"github.com/Super-StarX/INIValidator/internal/diag"
	"github.com/Super-StarX/INIValidator/internal/hcl_adapter"
	"github.com/Super-StarX/INIValidator/internal/toml_adapter"
	"github.com/Super-StarX/INIValidator/internal/validator"
)

// settings is the effective configuration of one check: flags over the
// settings file over built-in defaults.
type settings struct {
	schemaPath      string
	scriptsDir      string
	fileType        string
	maxStringLength int
	optional        []string
	policy          diag.Policy
	sources         []string
}

// settingsLoader picks the loader for a settings file by extension.
func settingsLoader(path string) config.Loader {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return toml_adapter.NewLoader()
	}
	return hcl_adapter.NewLoader()
}

func (a *App) loadSettings(ctx context.Context) (*settings, error) {
	model := config.New()
	if a.config.SettingsPath != "" {
		m, err := settingsLoader(a.config.SettingsPath).Load(ctx, a.config.SettingsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load settings: %w", err)
		}
		model = m
	}

	policy, err := diag.ParsePolicy(model.Severities)
	if err != nil {
		return nil, fmt.Errorf("invalid severity settings: %w", err)
	}

	s := &settings{
		schemaPath:      firstNonEmpty(a.config.SchemaPath, model.Schema, DefaultSchemaPath),
		scriptsDir:      firstNonEmpty(a.config.ScriptsDir, model.ScriptsDir, DefaultScriptsDir),
		fileType:        firstNonEmpty(a.config.FileType, model.FileType),
		maxStringLength: validator.DefaultMaxStringLength,
		optional:        model.OptionalReferenceTypes,
		policy:          policy,
		sources:         model.Sources,
	}
	if model.MaxStringLength > 0 {
		s.maxStringLength = model.MaxStringLength
	}
	if a.config.MaxStringLength > 0 {
		s.maxStringLength = a.config.MaxStringLength
	}
	return s, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
