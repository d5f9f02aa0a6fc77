package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/toolforge/pkg/utils/logging"
)

func TestNewJSONRedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, slog.LevelInfo, logging.FormatJSON)

	type credential struct {
		Model  string
		APIKey string `masq:"secret"`
	}
	logger.Info("configured", "llm", credential{Model: "gpt-4o", APIKey: "sk-very-secret"})

	out := buf.String()
	gt.S(t, out).NotContains("sk-very-secret")
	gt.S(t, out).Contains("gpt-4o")
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, slog.LevelWarn, logging.FormatJSON)

	logger.Info("hidden")
	gt.Value(t, buf.Len()).Equal(0)

	logger.Warn("shown")
	gt.S(t, buf.String()).Contains("shown")
}

func TestFromFallsBackToDefault(t *testing.T) {
	var buf bytes.Buffer
	original := logging.Default()
	t.Cleanup(func() { logging.SetDefault(original) })

	logging.SetDefault(logging.New(&buf, slog.LevelInfo, logging.FormatJSON))
	logging.From(context.Background()).Info("from default")
	gt.S(t, buf.String()).Contains("from default")

	var scoped bytes.Buffer
	ctx := logging.With(context.Background(), logging.New(&scoped, slog.LevelInfo, logging.FormatJSON))
	logging.From(ctx).Info("from context")
	gt.S(t, scoped.String()).Contains("from context")
	gt.S(t, buf.String()).NotContains("from context")
}
