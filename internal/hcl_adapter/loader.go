package hcl_adapter

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/Super-StarX/INIValidator/internal/config"
	"github.com/Super-StarX/INIValidator/internal/ctxlog"
	"github.com/Super-StarX/INIValidator/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	// Environ supplies the env variable. Defaults to os.Environ.
	Environ func() []string
}

// NewLoader creates a new HCL settings loader.
func NewLoader() *Loader {
	return &Loader{Environ: os.Environ}
}

// fileRoot is the top-level layout of a settings file.
type fileRoot struct {
	Schema                 hcl.Expression   `hcl:"schema,optional"`
	ScriptsDir             hcl.Expression   `hcl:"scripts_dir,optional"`
	FileType               hcl.Expression   `hcl:"file_type,optional"`
	MaxStringLength        hcl.Expression   `hcl:"max_string_length,optional"`
	OptionalReferenceTypes hcl.Expression   `hcl:"optional_reference_types,optional"`
	Severities             []*severityBlock `hcl:"severity,block"`
}

type severityBlock struct {
	Code  string `hcl:"code,label"`
	Level string `hcl:"level"`
}

// Load parses every HCL file at paths. Directories are searched recursively
// for .hcl files.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL settings loader started.", "path_count", len(paths))

	files, err := fsutil.ExpandPaths(paths, ".hcl")
	if err != nil {
		return nil, err
	}

	parser := hclparse.NewParser()
	evalCtx := l.evalContext()
	model := config.New()

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		m, err := l.translate(ctx, &root, evalCtx)
		if err != nil {
			return nil, fmt.Errorf("in settings file %s: %w", file, err)
		}
		m.Sources = []string{file}
		model.Merge(m)
		logger.Debug("Settings file loaded.", "file", file, "severities", len(root.Severities))
	}

	logger.Debug("HCL settings loading complete.", "files", len(files))
	return model, nil
}

func (l *Loader) translate(ctx context.Context, root *fileRoot, evalCtx *hcl.EvalContext) (*config.Model, error) {
	m := config.New()

	strs := []struct {
		name   string
		expr   hcl.Expression
		target *string
	}{
		{"schema", root.Schema, &m.Schema},
		{"scripts_dir", root.ScriptsDir, &m.ScriptsDir},
		{"file_type", root.FileType, &m.FileType},
	}
	for _, s := range strs {
		if !isExprDefined(ctx, s.expr, s.name) {
			continue
		}
		if err := decodeString(s.expr, evalCtx, s.target); err != nil {
			return nil, fmt.Errorf("attribute '%s': %w", s.name, err)
		}
	}

	if isExprDefined(ctx, root.MaxStringLength, "max_string_length") {
		if err := decodeInt(root.MaxStringLength, evalCtx, &m.MaxStringLength); err != nil {
			return nil, fmt.Errorf("attribute 'max_string_length': %w", err)
		}
		if m.MaxStringLength <= 0 {
			return nil, fmt.Errorf("attribute 'max_string_length' must be positive, got %d", m.MaxStringLength)
		}
	}

	if isExprDefined(ctx, root.OptionalReferenceTypes, "optional_reference_types") {
		types, err := decodeStringList(root.OptionalReferenceTypes, evalCtx)
		if err != nil {
			return nil, fmt.Errorf("attribute 'optional_reference_types': %w", err)
		}
		m.OptionalReferenceTypes = types
	}

	for _, s := range root.Severities {
		m.Severities[s.Code] = s.Level
	}
	return m, nil
}
