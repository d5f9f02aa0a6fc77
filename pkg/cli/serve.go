package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/toolforge/pkg/cli/config"
	httpctrl "github.com/secmon-lab/toolforge/pkg/controller/http"
	"github.com/secmon-lab/toolforge/pkg/usecase"
	"github.com/secmon-lab/toolforge/pkg/utils/async"
	"github.com/secmon-lab/toolforge/pkg/utils/logging"
	"github.com/secmon-lab/toolforge/pkg/utils/safe"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func cmdServe() *cli.Command {
	var addr string
	var corsOrigins []string
	var repoCfg config.Repository
	var llmCfg config.LLM
	var embeddingCfg config.Embedding
	var redisCfg config.Redis
	var authCfg config.Auth
	var slackCfg config.Slack
	var pipelineCfg config.Pipeline

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("TOOLFORGE_ADDR"),
			Destination: &addr,
		},
		&cli.StringSliceFlag{
			Name:        "cors-allowed-origins",
			Usage:       "Origins allowed to call the API (all origins when empty)",
			Sources:     cli.EnvVars("TOOLFORGE_CORS_ALLOWED_ORIGINS"),
			Destination: &corsOrigins,
		},
	}

	// Add shared config flags
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, llmCfg.Flags()...)
	flags = append(flags, embeddingCfg.Flags()...)
	flags = append(flags, redisCfg.Flags()...)
	flags = append(flags, authCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, pipelineCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()
			logger.Info("Serve configuration",
				"addr", addr,
				"cors_allowed_origins", corsOrigins,
				"repository", repoCfg,
				"llm", llmCfg,
				"embedding", embeddingCfg,
				"redis", redisCfg,
				"auth", authCfg,
				"slack", slackCfg,
				"pipeline", pipelineCfg)

			pipeline, err := pipelineCfg.Load()
			if err != nil {
				return goerr.Wrap(err, "failed to load pipeline configuration")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			llms, err := llmCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize LLM clients")
			}

			redisClient, err := redisCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize redis")
			}
			if redisClient != nil {
				defer safe.Close(ctx, redisClient)
			}

			embedder, err := embeddingCfg.Configure(ctx, &llmCfg, redisClient)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize embedding service")
			}

			authUC, err := authCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure authentication")
			}

			ucOpts := []usecase.Option{
				usecase.WithClassifierLLM(llms.Classifier),
				usecase.WithGeneratorLLM(llms.Generator),
				usecase.WithMetadataLLM(llms.Metadata),
				usecase.WithAuth(authUC),
			}
			ucOpts = append(ucOpts, pipeline.Options()...)

			slackSvc, err := slackCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure slack")
			}
			if slackSvc != nil {
				ucOpts = append(ucOpts, usecase.WithSlack(slackSvc))
				logger.Info("Slack moderation notices enabled")
			} else {
				logger.Info("Slack not configured, moderation notices are disabled")
			}

			uc := usecase.New(repo, embedder, ucOpts...)

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc.Tool, uc.Auth, httpctrl.WithCORSAllowedOrigins(corsOrigins)),
				ReadHeaderTimeout: 30 * time.Second,
			}

			return runServer(ctx, server)
		},
	}
}

// runServer serves until a signal arrives or the server fails, then drains
// in-flight requests and async notices
func runServer(ctx context.Context, server *http.Server) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		logging.Default().Info("Starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return goerr.Wrap(err, "failed to start server")
		}
		return nil
	})

	eg.Go(func() error {
		<-ctx.Done()
		logging.Default().Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return goerr.Wrap(err, "failed to shutdown server gracefully")
		}
		if err := async.Wait(shutdownCtx); err != nil {
			logging.Default().Warn("pending notices were dropped", "error", err.Error())
		}

		logging.Default().Info("Server shutdown completed")
		return nil
	})

	return eg.Wait()
}
