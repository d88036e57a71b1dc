package app

import (
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// progressLogger turns load and check progress into throttled debug logs.
type progressLogger struct {
	logger    *slog.Logger
	sometimes rate.Sometimes

	mu    sync.Mutex
	phase string
	total int
	done  int
}

func newProgressLogger(logger *slog.Logger, interval time.Duration) *progressLogger {
	return &progressLogger{
		logger:    logger,
		sometimes: rate.Sometimes{First: 1, Interval: interval},
	}
}

// Start implements ini.Progress and checker.Progress.
func (p *progressLogger) Start(phase string, total int) {
	p.mu.Lock()
	p.phase, p.total, p.done = phase, total, 0
	p.mu.Unlock()
	p.logger.Debug("Phase started.", "phase", phase, "total", total)
}

// Step implements ini.Progress and checker.Progress.
func (p *progressLogger) Step() {
	p.mu.Lock()
	p.done++
	phase, done, total := p.phase, p.done, p.total
	p.mu.Unlock()

	p.sometimes.Do(func() {
		p.logger.Debug("Progress.", "phase", phase, "processed", done, "total", total)
	})
}

func (p *progressLogger) processed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}
