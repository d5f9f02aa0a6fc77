package config

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/toolforge/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

type Logger struct {
	level  string
	format string
	output string
}

func (x *Logger) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Category:    "Logging",
			Value:       "info",
			Sources:     cli.EnvVars("TOOLFORGE_LOG_LEVEL"),
			Destination: &x.level,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log format (console, json)",
			Category:    "Logging",
			Value:       "console",
			Sources:     cli.EnvVars("TOOLFORGE_LOG_FORMAT"),
			Destination: &x.format,
		},
		&cli.StringFlag{
			Name:        "log-output",
			Usage:       "Log output (stdout, stderr, or a file path)",
			Category:    "Logging",
			Value:       "stdout",
			Sources:     cli.EnvVars("TOOLFORGE_LOG_OUTPUT"),
			Destination: &x.output,
		},
	}
}

func (x Logger) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("level", x.level),
		slog.String("format", x.format),
		slog.String("output", x.output),
	)
}

// Configure installs the default logger. The returned closer releases the
// log file when output is a path.
func (x *Logger) Configure() (func(), error) {
	level, err := parseLogLevel(x.level)
	if err != nil {
		return nil, err
	}

	var format logging.Format
	switch strings.ToLower(x.format) {
	case "", string(logging.FormatConsole):
		format = logging.FormatConsole
	case string(logging.FormatJSON):
		format = logging.FormatJSON
	default:
		return nil, goerr.Wrap(ErrInvalidConfig, "invalid log format",
			goerr.V(FlagKey, "log-format"),
			goerr.V(ValueKey, x.format))
	}

	var w io.Writer
	closer := func() {}
	switch x.output {
	case "", "stdout", "-":
		w = os.Stdout
	case "stderr":
		w = os.Stderr
	default:
		f, err := os.OpenFile(x.output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open log file", goerr.V("path", x.output))
		}
		w = f
		closer = func() {
			if err := f.Close(); err != nil {
				logging.Default().Error("failed to close log file", "error", err.Error())
			}
		}
	}

	logging.SetDefault(logging.New(w, level, format))
	return closer, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, goerr.Wrap(ErrInvalidConfig, "invalid log level",
			goerr.V(FlagKey, "log-level"),
			goerr.V(ValueKey, s))
	}
}
