package app

import (
	"io"
	"log/slog"
	"net/http"
	"sync"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config

	httpServer *http.Server

	mu      sync.Mutex
	lastRun *Result
}

// NewApp is the constructor for the main application. Reports go to outW
// unless an output file is configured; logs go to logW.
func NewApp(outW, logW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	return &App{
		outW:   outW,
		logger: logger,
		config: cfg,
	}
}

// LastResult returns the result of the most recent check, or nil.
func (a *App) LastResult() *Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastRun
}

func (a *App) setLastResult(r *Result) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastRun = r
}
