package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/Super-StarX/INIValidator/internal/ctxlog"
	"github.com/Super-StarX/INIValidator/internal/diag"
)

// ErrThresholdReached is returned by Run when the report holds diagnostics
// at or above the configured fail-on severity.
var ErrThresholdReached = errors.New("diagnostics at or above the failure threshold")

// Run executes the main application logic based on the provided configuration.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.HealthcheckPort > 0 {
		a.startHealthcheckServer(ctx)
		defer a.closeHealthCheckServer(ctx)
	}

	if a.config.Watch {
		return a.watch(ctx)
	}

	res, err := a.CheckAndReport(ctx)
	if err != nil {
		return err
	}

	a.logger.Debug("App.Run method finished.")
	return a.threshold(res)
}

func (a *App) threshold(res *Result) error {
	failOn, err := diag.ParseSeverity(a.config.FailOn)
	if err != nil {
		return err
	}
	if failOn == diag.SeverityOff {
		return nil
	}
	if max := res.MaxSeverity(); max >= failOn {
		return fmt.Errorf("%w: highest severity is %s", ErrThresholdReached, max)
	}
	return nil
}
