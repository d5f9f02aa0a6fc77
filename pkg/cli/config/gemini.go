package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/urfave/cli/v3"
)

// Gemini holds configuration for the Gemini LLM client on Vertex AI
type Gemini struct {
	projectID string
	location  string
	model     string
}

// Flags returns CLI flags for Gemini configuration
func (g *Gemini) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini API",
			Category:    "LLM",
			Sources:     cli.EnvVars("TOOLFORGE_GEMINI_PROJECT"),
			Destination: &g.projectID,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini API",
			Category:    "LLM",
			Value:       "us-central1",
			Sources:     cli.EnvVars("TOOLFORGE_GEMINI_LOCATION"),
			Destination: &g.location,
		},
		&cli.StringFlag{
			Name:        "gemini-model",
			Usage:       "Gemini model name (provider default when empty)",
			Category:    "LLM",
			Sources:     cli.EnvVars("TOOLFORGE_GEMINI_MODEL"),
			Destination: &g.model,
		},
	}
}

func (g Gemini) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("project_id", g.projectID),
		slog.String("location", g.location),
		slog.String("model", g.model),
	)
}

// newClient creates a Gemini client. A nil temperature keeps the provider default.
func (g *Gemini) newClient(ctx context.Context, temperature *float32) (gollem.LLMClient, error) {
	if g.projectID == "" {
		return nil, goerr.Wrap(ErrMissingRequired, "gemini-project is required for gemini provider",
			goerr.V(FlagKey, "gemini-project"))
	}

	var opts []gemini.Option
	if g.model != "" {
		opts = append(opts, gemini.WithModel(g.model))
	}
	if temperature != nil {
		opts = append(opts, gemini.WithTemperature(*temperature))
	}

	client, err := gemini.New(ctx, g.projectID, g.location, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Gemini client")
	}

	return client, nil
}
