package cli

import (
	"context"
	"errors"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/toolforge/pkg/cli/config"
	"github.com/secmon-lab/toolforge/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

const defaultEnvFile = ".env"

func Run(ctx context.Context, args []string, version string) error {
	var loggerCfg config.Logger
	var sentryCfg config.Sentry
	var envFile string
	var closers []func()

	// Environment variables must be in place before flags are parsed
	if err := loadEnvFile(args); err != nil {
		logging.Default().Error("failed to load env file", "error", err)
		return err
	}

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "env-file",
			Usage:       "Load environment variables from this file before parsing flags",
			Value:       defaultEnvFile,
			Destination: &envFile,
		},
	}
	flags = append(flags, loggerCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	app := &cli.Command{
		Name:    "toolforge",
		Usage:   "Generate, moderate and share single-file web tools from natural language prompts",
		Version: version,
		Flags:   flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			closeLogger, err := loggerCfg.Configure()
			if err != nil {
				return ctx, err
			}
			closers = append(closers, closeLogger)

			flushSentry, err := sentryCfg.Configure(version)
			if err != nil {
				return ctx, err
			}
			closers = append(closers, flushSentry)

			logging.Default().Info("Starting toolforge",
				"version", version,
				"env_file", envFile,
				"logger", loggerCfg,
				"sentry", sentryCfg)
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
			return nil
		},
		Commands: []*cli.Command{
			cmdServe(),
			cmdMigrate(),
			cmdValidate(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		logging.Default().Error("failed to run app", "error", err)
		return err
	}

	return nil
}

// loadEnvFile loads --env-file ahead of flag parsing. A missing default file
// is ignored; a missing explicit file is an error.
func loadEnvFile(args []string) error {
	path, explicit := envFileFromArgs(args)

	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return goerr.Wrap(err, "failed to load env file", goerr.V("path", path))
	}
	return nil
}

func envFileFromArgs(args []string) (string, bool) {
	for i := 1; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}
		for _, prefix := range []string{"--env-file", "-env-file"} {
			if v, ok := strings.CutPrefix(arg, prefix+"="); ok {
				return v, true
			}
			if arg == prefix && i+1 < len(args) {
				return args[i+1], true
			}
		}
	}
	return defaultEnvFile, false
}
