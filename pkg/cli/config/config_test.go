package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/toolforge/pkg/cli/config"
	"github.com/secmon-lab/toolforge/pkg/utils/logging"
)

func TestAuthConfigure(t *testing.T) {
	ctx := context.Background()

	t.Run("nothing configured", func(t *testing.T) {
		_, err := config.NewAuthForTest("", "", "").Configure(ctx)
		gt.Error(t, err).Is(config.ErrMissingRequired)
	})

	t.Run("conflicting modes", func(t *testing.T) {
		_, err := config.NewAuthForTest("secret", "", "dev-user").Configure(ctx)
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})

	t.Run("no-auth mode", func(t *testing.T) {
		cfg := config.NewAuthForTest("", "", "dev-user")
		gt.Bool(t, cfg.IsNoAuthMode()).True()

		uc, err := cfg.Configure(ctx)
		gt.NoError(t, err).Required()
		gt.Bool(t, uc.IsNoAuthn()).True()

		user, err := uc.Authenticate(ctx, "")
		gt.NoError(t, err).Required()
		gt.Value(t, user.ID.String()).Equal("dev-user")
		gt.Bool(t, user.IsAdmin).True()
	})

	t.Run("shared secret", func(t *testing.T) {
		uc, err := config.NewAuthForTest("0123456789abcdef0123456789abcdef", "", "").Configure(ctx)
		gt.NoError(t, err).Required()
		gt.Bool(t, uc.IsNoAuthn()).False()
	})
}

func TestSlackConfigure(t *testing.T) {
	t.Run("disabled without token", func(t *testing.T) {
		svc, err := config.NewSlackForTest("", "", "").Configure()
		gt.NoError(t, err)
		gt.Value(t, svc).Nil()
	})

	t.Run("channel is required", func(t *testing.T) {
		_, err := config.NewSlackForTest("xoxb-test", "", "").Configure()
		gt.Error(t, err).Is(config.ErrMissingRequired)
	})

	t.Run("configured", func(t *testing.T) {
		svc, err := config.NewSlackForTest("xoxb-test", "C0123", "https://forge.example.com/admin").Configure()
		gt.NoError(t, err).Required()
		gt.Value(t, svc).NotNil()
	})
}

func TestLLMConfigure(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown provider", func(t *testing.T) {
		_, err := config.NewLLMForTest("llama", "").Configure(ctx)
		gt.Error(t, err).Is(config.ErrUnknownProvider)
	})

	t.Run("openai requires key", func(t *testing.T) {
		_, err := config.NewLLMForTest(config.ProviderOpenAI, "").Configure(ctx)
		gt.Error(t, err).Is(config.ErrMissingRequired)
	})

	t.Run("gemini requires project", func(t *testing.T) {
		_, err := config.NewLLMForTest(config.ProviderGemini, "").Configure(ctx)
		gt.Error(t, err).Is(config.ErrMissingRequired)
	})

	t.Run("openai client per role", func(t *testing.T) {
		clients, err := config.NewLLMForTest(config.ProviderOpenAI, "sk-test").Configure(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, clients.Classifier).NotNil()
		gt.Value(t, clients.Generator).NotNil()
		gt.Value(t, clients.Metadata).NotNil()
	})
}

func TestEmbeddingConfigure(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown provider", func(t *testing.T) {
		_, err := config.NewEmbeddingForTest("word2vec", "", "").Configure(ctx, nil, nil)
		gt.Error(t, err).Is(config.ErrUnknownProvider)
	})

	t.Run("openai requires key", func(t *testing.T) {
		_, err := config.NewEmbeddingForTest(config.ProviderOpenAI, "", "").Configure(ctx, config.NewLLMForTest(config.ProviderGemini, ""), nil)
		gt.Error(t, err).Is(config.ErrMissingRequired)
	})

	t.Run("openai key falls back to llm key", func(t *testing.T) {
		svc, err := config.NewEmbeddingForTest(config.ProviderOpenAI, "", "text-embedding-3-small").
			Configure(ctx, config.NewLLMForTest(config.ProviderOpenAI, "sk-test"), nil)
		gt.NoError(t, err).Required()
		gt.Value(t, svc).NotNil()
	})

	t.Run("gollem requires llm", func(t *testing.T) {
		_, err := config.NewEmbeddingForTest(config.EmbeddingProviderGollem, "", "").Configure(ctx, nil, nil)
		gt.Error(t, err).Is(config.ErrMissingRequired)
	})
}

func TestRepositoryConfigure(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		repo, err := config.NewRepositoryForTest(config.BackendMemory).Configure(ctx)
		gt.NoError(t, err).Required()
		gt.NoError(t, repo.Close())
	})

	t.Run("firestore requires project", func(t *testing.T) {
		_, err := config.NewRepositoryForTest(config.BackendFirestore).Configure(ctx)
		gt.Error(t, err).Is(config.ErrMissingRequired)
	})

	t.Run("postgres requires dsn", func(t *testing.T) {
		_, err := config.NewRepositoryForTest(config.BackendPostgres).Configure(ctx)
		gt.Error(t, err).Is(config.ErrMissingRequired)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := config.NewRepositoryForTest("sqlite").Configure(ctx)
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})
}

func TestLoggerConfigure(t *testing.T) {
	original := logging.Default()
	t.Cleanup(func() { logging.SetDefault(original) })

	t.Run("invalid level", func(t *testing.T) {
		_, err := config.NewLoggerForTest("verbose", "console", "stdout").Configure()
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})

	t.Run("invalid format", func(t *testing.T) {
		_, err := config.NewLoggerForTest("info", "xml", "stdout").Configure()
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})

	t.Run("json to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "toolforge.log")
		closer, err := config.NewLoggerForTest("debug", "json", path).Configure()
		gt.NoError(t, err).Required()

		logging.Default().Info("written to file")
		closer()

		data, err := os.ReadFile(path)
		gt.NoError(t, err).Required()
		gt.S(t, string(data)).Contains("written to file")
	})
}
