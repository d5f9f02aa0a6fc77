package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/openai"
	"github.com/urfave/cli/v3"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Sampling temperatures per model role. The generator keeps the provider default.
var (
	classifierTemperature float32 = 0
	metadataTemperature   float32 = 0.2
)

// LLM selects the completion provider used by the classifier, the generator
// and the metadata suggester
type LLM struct {
	provider     string
	openaiAPIKey string
	openaiModel  string
	gemini       Gemini
}

// LLMClients carries one client per model role
type LLMClients struct {
	Classifier gollem.LLMClient
	Generator  gollem.LLMClient
	Metadata   gollem.LLMClient
}

func (x *LLM) Flags() []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "llm-provider",
			Usage:       "Completion provider (openai or gemini)",
			Category:    "LLM",
			Value:       ProviderOpenAI,
			Sources:     cli.EnvVars("TOOLFORGE_LLM_PROVIDER"),
			Destination: &x.provider,
		},
		&cli.StringFlag{
			Name:        "openai-api-key",
			Usage:       "OpenAI API key",
			Category:    "LLM",
			Sources:     cli.EnvVars("TOOLFORGE_OPENAI_API_KEY", "OPENAI_API_KEY"),
			Destination: &x.openaiAPIKey,
		},
		&cli.StringFlag{
			Name:        "openai-model",
			Usage:       "OpenAI chat model",
			Category:    "LLM",
			Value:       "gpt-4o",
			Sources:     cli.EnvVars("TOOLFORGE_OPENAI_MODEL"),
			Destination: &x.openaiModel,
		},
	}
	return append(flags, x.gemini.Flags()...)
}

func (x LLM) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("provider", x.provider),
		slog.Int("openai-api-key.len", len(x.openaiAPIKey)),
		slog.String("openai-model", x.openaiModel),
		slog.Any("gemini", x.gemini),
	)
}

// Provider returns the configured completion provider
func (x *LLM) Provider() string {
	return x.provider
}

// OpenAIAPIKey is shared with the OpenAI embedding provider
func (x *LLM) OpenAIAPIKey() string {
	return x.openaiAPIKey
}

// Configure builds a client per role
func (x *LLM) Configure(ctx context.Context) (*LLMClients, error) {
	classifier, err := x.newClient(ctx, &classifierTemperature)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure classifier LLM")
	}
	generator, err := x.newClient(ctx, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure generator LLM")
	}
	metadata, err := x.newClient(ctx, &metadataTemperature)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure metadata LLM")
	}

	return &LLMClients{
		Classifier: classifier,
		Generator:  generator,
		Metadata:   metadata,
	}, nil
}

// EmbeddingClient returns a gollem client usable for GenerateEmbedding
func (x *LLM) EmbeddingClient(ctx context.Context) (gollem.LLMClient, error) {
	return x.newClient(ctx, nil)
}

func (x *LLM) newClient(ctx context.Context, temperature *float32) (gollem.LLMClient, error) {
	switch x.provider {
	case ProviderOpenAI:
		if x.openaiAPIKey == "" {
			return nil, goerr.Wrap(ErrMissingRequired, "openai-api-key is required for openai provider",
				goerr.V(FlagKey, "openai-api-key"))
		}
		var opts []openai.Option
		if x.openaiModel != "" {
			opts = append(opts, openai.WithModel(x.openaiModel))
		}
		if temperature != nil {
			opts = append(opts, openai.WithTemperature(*temperature))
		}
		client, err := openai.New(ctx, x.openaiAPIKey, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create OpenAI client")
		}
		return client, nil

	case ProviderGemini:
		return x.gemini.newClient(ctx, temperature)

	default:
		return nil, goerr.Wrap(ErrUnknownProvider, "invalid llm provider",
			goerr.V(ProviderKey, x.provider))
	}
}
