// Package toml_adapter implements config.Loader for TOML settings files.
//
//	schema = "INICodingCheck.ini"
//	scripts_dir = "Scripts"
//	file_type = "rules"
//	max_string_length = 512
//	optional_reference_types = ["AnimList"]
//
//	[severity]
//	KeyNotExist = "off"
package toml_adapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/Super-StarX/INIValidator/internal/config"
	"github.com/Super-StarX/INIValidator/internal/ctxlog"
	"github.com/Super-StarX/INIValidator/internal/fsutil"
)

// Loader is the TOML implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new TOML settings loader.
func NewLoader() *Loader {
	return &Loader{}
}

type fileRoot struct {
	Schema                 string            `toml:"schema"`
	ScriptsDir             string            `toml:"scripts_dir"`
	FileType               string            `toml:"file_type"`
	MaxStringLength        *int              `toml:"max_string_length"`
	OptionalReferenceTypes []string          `toml:"optional_reference_types"`
	Severity               map[string]string `toml:"severity"`
}

// Load decodes every TOML file at paths. Directories are searched
// recursively for .toml files. Unknown keys are errors.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("TOML settings loader started.", "path_count", len(paths))

	files, err := fsutil.ExpandPaths(paths, ".toml")
	if err != nil {
		return nil, err
	}

	model := config.New()
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var root fileRoot
		md, err := toml.DecodeFile(file, &root)
		if err != nil {
			return nil, fmt.Errorf("failed to decode TOML file %s: %w", file, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, fmt.Errorf("unknown settings in %s: %s", file, strings.Join(keys, ", "))
		}

		m := config.New()
		m.Schema = root.Schema
		m.ScriptsDir = root.ScriptsDir
		m.FileType = root.FileType
		if root.MaxStringLength != nil {
			if *root.MaxStringLength <= 0 {
				return nil, fmt.Errorf("in settings file %s: max_string_length must be positive, got %d", file, *root.MaxStringLength)
			}
			m.MaxStringLength = *root.MaxStringLength
		}
		if md.IsDefined("optional_reference_types") {
			m.OptionalReferenceTypes = append([]string{}, root.OptionalReferenceTypes...)
		}
		for code, level := range root.Severity {
			m.Severities[code] = level
		}
		m.Sources = []string{file}
		model.Merge(m)
		logger.Debug("Settings file loaded.", "file", file, "severities", len(root.Severity))
	}

	logger.Debug("TOML settings loading complete.", "files", len(files))
	return model, nil
}
