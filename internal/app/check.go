package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Super-StarX/INIValidator/internal/checker"
	"github.com/Super-StarX/INIValidator/internal/ctxlog"
	"github.com/Super-StarX/INIValidator/internal/diag"
	"github.com/Super-StarX/INIValidator/internal/fsutil"
	"github.com/Super-StarX/INIValidator/internal/ini"
	"github.com/Super-StarX/INIValidator/internal/report"
	"github.com/Super-StarX/INIValidator/internal/script"
)

// progressInterval throttles progress logs.
const progressInterval = 500 * time.Millisecond

// Result is the outcome of one validation pass.
type Result struct {
	RunID  string
	Report report.Report
	Stats  checker.Stats
	// Files lists every file the pass read, for watch mode.
	Files []string
	// ScriptsDir is the effective script directory.
	ScriptsDir string
}

// MaxSeverity returns the highest severity among the diagnostics.
func (r *Result) MaxSeverity() diag.Severity {
	return diag.Max(r.Report.Diagnostics)
}

// Check runs one validation pass without writing a report.
func (a *App) Check(ctx context.Context) (*Result, error) {
	runID := uuid.NewString()
	ctx = ctxlog.With(ctxlog.WithLogger(ctx, a.logger), "run_id", runID)
	logger := ctxlog.FromContext(ctx)
	started := time.Now()
	logger.Debug("Validation pass started.")

	s, err := a.loadSettings(ctx)
	if err != nil {
		return nil, err
	}
	targets, err := fsutil.ExpandPaths(a.config.Targets, ".ini")
	if err != nil {
		return nil, fmt.Errorf("failed to resolve targets: %w", err)
	}
	logger.Debug("Settings resolved.", "schema", s.schemaPath, "targets", len(targets), "scripts_dir", s.scriptsDir, "file_type", s.fileType)

	progress := newProgressLogger(logger, progressInterval)
	schemaDiags := diag.NewCollector(s.policy)
	targetDiags := diag.NewCollector(s.policy)
	checkDiags := diag.NewCollector(s.policy)

	var (
		schemaDoc *ini.Document
		target    *ini.Document
		engine    *script.Engine
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		schemaDoc = ini.Parse(gctx, s.schemaPath, schemaDiags)
		return nil
	})
	g.Go(func() error {
		target = ini.NewDocument()
		target.FileType = s.fileType
		for _, path := range targets {
			if err := gctx.Err(); err != nil {
				return err
			}
			target.Load(gctx, path, targetDiags, ini.WithProgress(progress))
		}
		return nil
	})
	g.Go(func() error {
		var err error
		engine, err = script.New(gctx, s.scriptsDir)
		if err != nil {
			return fmt.Errorf("failed to load scripts: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		if engine != nil {
			engine.Close()
		}
		return nil, err
	}
	defer engine.Close()
	logger.Debug("Documents loaded.", "schema_sections", schemaDoc.Len(), "target_sections", target.Len(), "scripts", len(engine.Types()))

	opts := []checker.Option{
		checker.WithMaxStringLength(s.maxStringLength),
		checker.WithOptionalReferenceTypes(s.optional...),
		checker.WithFileType(s.fileType),
		checker.WithProgress(progress),
	}
	if len(engine.Types()) > 0 {
		engine.SetSections(target)
		opts = append(opts, checker.WithExternal(engine))
	}
	c := checker.New(ctx, schemaDoc, checkDiags, opts...)
	stats := c.Run(ctx, target, checkDiags)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var all []diag.Diagnostic
	all = append(all, schemaDiags.Diagnostics()...)
	all = append(all, targetDiags.Diagnostics()...)
	all = append(all, checkDiags.Diagnostics()...)

	loaded := append(schemaDoc.Paths(), target.Paths()...)
	files := append(append([]string(nil), loaded...), s.sources...)

	res := &Result{
		RunID: runID,
		Report: report.Report{
			RunID:       runID,
			Schema:      s.schemaPath,
			Targets:     targets,
			Files:       loaded,
			Diagnostics: all,
		},
		Stats:      stats,
		Files:      files,
		ScriptsDir: s.scriptsDir,
	}
	a.setLastResult(res)

	counts := diag.Counts(all)
	logger.Info("Validation finished.",
		"errors", counts[diag.SeverityError],
		"warnings", counts[diag.SeverityWarning],
		"info", counts[diag.SeverityInfo],
		"sections", stats.Sections,
		"unreachable", stats.Unreachable,
		"duration", time.Since(started),
	)
	return res, nil
}

// CheckAndReport runs one validation pass and writes its report.
func (a *App) CheckAndReport(ctx context.Context) (*Result, error) {
	res, err := a.Check(ctx)
	if err != nil {
		return nil, err
	}
	if err := a.writeReport(res.Report); err != nil {
		return res, err
	}
	return res, nil
}

func (a *App) writeReport(rep report.Report) error {
	var w io.Writer = a.outW
	if a.config.OutputPath != "" {
		if dir := filepath.Dir(a.config.OutputPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create report directory: %w", err)
			}
		}
		f, err := os.Create(a.config.OutputPath)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer f.Close()
		w = f
	}

	renderer, err := report.NewRenderer(a.config.Format, a.useColor(w))
	if err != nil {
		return err
	}
	if err := renderer.Render(w, rep); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
