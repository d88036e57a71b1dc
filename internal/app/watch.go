package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Super-StarX/INIValidator/internal/ctxlog"
)

// watchedExtensions are the file kinds whose changes trigger a new pass.
var watchedExtensions = map[string]bool{
	".ini":  true,
	".lua":  true,
	".hcl":  true,
	".toml": true,
}

// watch runs a pass, then re-runs it whenever a relevant file changes, until
// ctx is cancelled. Failed passes are logged and do not stop watching.
func (a *App) watch(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	pass := func() {
		res, err := a.CheckAndReport(ctx)
		if err != nil {
			logger.Error("Validation pass failed.", "error", err)
		}
		a.addWatches(ctx, w, res)
	}
	pass()
	logger.Info("Watching for changes.", "directories", len(w.WatchList()))

	debounce := a.config.WatchDebounce
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}
	ticker := time.NewTicker(debounce / 3)
	defer ticker.Stop()
	var pending time.Time

	for {
		select {
		case <-ctx.Done():
			logger.Debug("Watch mode stopped.")
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if relevantEvent(event) {
				logger.Debug("Change detected.", "file", event.Name, "op", event.Op.String())
				pending = time.Now()
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("File watcher error.", "error", err)

		case <-ticker.C:
			if !pending.IsZero() && time.Since(pending) >= debounce {
				pending = time.Time{}
				pass()
			}
		}
	}
}

func relevantEvent(e fsnotify.Event) bool {
	if !e.Op.Has(fsnotify.Write) && !e.Op.Has(fsnotify.Create) &&
		!e.Op.Has(fsnotify.Remove) && !e.Op.Has(fsnotify.Rename) {
		return false
	}
	return watchedExtensions[strings.ToLower(filepath.Ext(e.Name))]
}

// addWatches watches the directory of every file the pass read, the script
// directory, the settings file and every directory target.
func (a *App) addWatches(ctx context.Context, w *fsnotify.Watcher, res *Result) {
	logger := ctxlog.FromContext(ctx)

	var dirs []string
	if res != nil {
		for _, f := range res.Files {
			dirs = append(dirs, filepath.Dir(f))
		}
		dirs = append(dirs, res.ScriptsDir)
	}
	if a.config.SettingsPath != "" {
		dirs = append(dirs, filepath.Dir(a.config.SettingsPath))
	}
	for _, t := range a.config.Targets {
		if info, err := os.Stat(t); err == nil && info.IsDir() {
			dirs = append(dirs, t)
		} else {
			dirs = append(dirs, filepath.Dir(t))
		}
	}

	watched := make(map[string]bool)
	for _, d := range w.WatchList() {
		watched[d] = true
	}
	for _, d := range dirs {
		if d == "" {
			continue
		}
		if abs, err := filepath.Abs(d); err == nil {
			d = abs
		}
		if watched[d] {
			continue
		}
		if err := w.Add(d); err != nil {
			logger.Debug("Cannot watch directory.", "dir", d, "error", err)
			continue
		}
		watched[d] = true
	}
}
