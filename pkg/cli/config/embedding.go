package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/redis/go-redis/v9"
	"github.com/secmon-lab/toolforge/pkg/domain/model"
	"github.com/secmon-lab/toolforge/pkg/service/embedding"
	"github.com/secmon-lab/toolforge/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

const (
	// EmbeddingProviderGollem embeds through the completion provider's client
	EmbeddingProviderGollem = "gollem"
)

type Embedding struct {
	provider  string
	apiKey    string
	model     string
	baseURL   string
	maxTokens int
	cacheTTL  time.Duration
}

func (x *Embedding) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "embedding-provider",
			Usage:       "Embedding provider (openai or gollem)",
			Category:    "Embedding",
			Value:       ProviderOpenAI,
			Sources:     cli.EnvVars("TOOLFORGE_EMBEDDING_PROVIDER"),
			Destination: &x.provider,
		},
		&cli.StringFlag{
			Name:        "embedding-api-key",
			Usage:       "OpenAI API key for embeddings (falls back to --openai-api-key)",
			Category:    "Embedding",
			Sources:     cli.EnvVars("TOOLFORGE_EMBEDDING_API_KEY"),
			Destination: &x.apiKey,
		},
		&cli.StringFlag{
			Name:        "embedding-model",
			Usage:       "OpenAI embedding model",
			Category:    "Embedding",
			Value:       embedding.DefaultOpenAIModel,
			Sources:     cli.EnvVars("TOOLFORGE_EMBEDDING_MODEL"),
			Destination: &x.model,
		},
		&cli.StringFlag{
			Name:        "embedding-base-url",
			Usage:       "Base URL of an OpenAI compatible embeddings API",
			Category:    "Embedding",
			Sources:     cli.EnvVars("TOOLFORGE_EMBEDDING_BASE_URL"),
			Destination: &x.baseURL,
		},
		&cli.IntFlag{
			Name:        "embedding-max-tokens",
			Usage:       "Truncate embedding input to this many tokens (0 disables truncation)",
			Category:    "Embedding",
			Value:       embedding.DefaultMaxTokens,
			Sources:     cli.EnvVars("TOOLFORGE_EMBEDDING_MAX_TOKENS"),
			Destination: &x.maxTokens,
		},
		&cli.DurationFlag{
			Name:        "embedding-cache-ttl",
			Usage:       "TTL of cached embeddings when redis is configured",
			Category:    "Embedding",
			Value:       embedding.DefaultCacheTTL,
			Sources:     cli.EnvVars("TOOLFORGE_EMBEDDING_CACHE_TTL"),
			Destination: &x.cacheTTL,
		},
	}
}

func (x Embedding) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("provider", x.provider),
		slog.Int("api-key.len", len(x.apiKey)),
		slog.String("model", x.model),
		slog.String("base-url", x.baseURL),
		slog.Int("max-tokens", x.maxTokens),
		slog.Duration("cache-ttl", x.cacheTTL),
	)
}

// Configure builds the embedding service. llm provides the fallback API key
// and the gollem client; cache may be nil.
func (x *Embedding) Configure(ctx context.Context, llm *LLM, cache *redis.Client) (embedding.Service, error) {
	var svc embedding.Service
	cacheModel := x.model

	switch x.provider {
	case ProviderOpenAI:
		apiKey := x.apiKey
		if apiKey == "" && llm != nil {
			apiKey = llm.OpenAIAPIKey()
		}
		if apiKey == "" {
			return nil, goerr.Wrap(ErrMissingRequired, "embedding-api-key or openai-api-key is required for openai embeddings",
				goerr.V(FlagKey, "embedding-api-key"))
		}

		opts := []embedding.OpenAIOption{
			embedding.WithOpenAIModel(x.model),
			embedding.WithOpenAIDimension(model.EmbeddingDimension),
			embedding.WithOpenAIMaxTokens(x.maxTokens),
		}
		if x.baseURL != "" {
			opts = append(opts, embedding.WithOpenAIBaseURL(x.baseURL))
		}

		openaiSvc, err := embedding.NewOpenAI(apiKey, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create OpenAI embedder")
		}
		svc = openaiSvc
		cacheModel = openaiSvc.Model()

	case EmbeddingProviderGollem:
		if llm == nil {
			return nil, goerr.Wrap(ErrMissingRequired, "llm configuration is required for gollem embeddings")
		}
		client, err := llm.EmbeddingClient(ctx)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create embedding LLM client")
		}
		svc = embedding.NewGollem(client)
		cacheModel = EmbeddingProviderGollem + "-" + llm.Provider()

	default:
		return nil, goerr.Wrap(ErrUnknownProvider, "invalid embedding provider",
			goerr.V(ProviderKey, x.provider))
	}

	if cache == nil {
		return svc, nil
	}

	logging.From(ctx).Info("Embedding cache enabled", "model", cacheModel, "ttl", x.cacheTTL)
	return embedding.NewCached(svc, cache, cacheModel, embedding.WithCacheTTL(x.cacheTTL)), nil
}
