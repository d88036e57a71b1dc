package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Super-StarX/INIValidator/internal/app"
)

// Exit codes.
const (
	ExitFailure = 1
	ExitUsage   = 2
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("inivalidator", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
INIValidator - Validates INI game configuration against a declarative schema.

Usage:
  inivalidator [options] TARGET [TARGET...]

Arguments:
  TARGET
    An .ini file, or a directory searched recursively for .ini files.
    All targets are merged into one document in the order given.

Options:
`)
		flagSet.PrintDefaults()
	}

	schemaFlag := flagSet.String("schema", "", "Path to the schema INI file. (default \""+app.DefaultSchemaPath+"\")")
	sFlag := flagSet.String("s", "", "Path to the schema INI file (shorthand).")
	settingsFlag := flagSet.String("settings", "", "Path to an HCL or TOML settings file.")
	scriptsFlag := flagSet.String("scripts", "", "Directory of Lua validation scripts. (default \""+app.DefaultScriptsDir+"\")")
	fileTypeFlag := flagSet.String("file-type", "", "File-scope tag of the target document, e.g. 'rules' or 'art'.")
	maxLenFlag := flagSet.Int("max-string-length", 0, "Maximum length of string values. 0 keeps the configured value.")
	formatFlag := flagSet.String("format", "text", "Report format. Options: 'text' or 'json'.")
	outputFlag := flagSet.String("output", "", "Write the report to this file instead of stdout.")
	oFlag := flagSet.String("o", "", "Write the report to this file (shorthand).")
	colorFlag := flagSet.String("color", app.ColorAuto, "Colored text report. Options: 'auto', 'always', 'never'.")
	failOnFlag := flagSet.String("fail-on", "error", "Exit with status 1 when diagnostics reach this severity. Options: 'info', 'warning', 'error', 'never'.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	watchFlag := flagSet.Bool("watch", false, "Re-run validation whenever a schema, target, script or settings file changes.")
	debounceFlag := flagSet.Duration("watch-debounce", app.DefaultWatchDebounce, "Quiet period before a watch re-run.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	targets := flagSet.Args()
	if len(targets) == 0 {
		slog.Debug("No target provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	schema := *schemaFlag
	if schema == "" {
		schema = *sFlag
	}
	outputPath := *outputFlag
	if outputPath == "" {
		outputPath = *oFlag
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: ExitUsage, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: ExitUsage, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		SchemaPath:      schema,
		Targets:         targets,
		SettingsPath:    *settingsFlag,
		ScriptsDir:      *scriptsFlag,
		FileType:        *fileTypeFlag,
		MaxStringLength: *maxLenFlag,
		Format:          strings.ToLower(*formatFlag),
		OutputPath:      outputPath,
		Color:           strings.ToLower(*colorFlag),
		FailOn:          strings.ToLower(*failOnFlag),
		LogFormat:       logFormat,
		LogLevel:        logLevel,
		Watch:           *watchFlag,
		WatchDebounce:   *debounceFlag,
		HealthcheckPort: *healthPortFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "targets", len(config.Targets))
	return config, false, nil
}
