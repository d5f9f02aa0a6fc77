package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/toolforge/pkg/domain/model"
	"github.com/secmon-lab/toolforge/pkg/domain/types"
	"github.com/secmon-lab/toolforge/pkg/utils/logging"
	"github.com/secmon-lab/toolforge/pkg/utils/metrics"
)

// Generator turns a classified request into a self-contained HTML artifact
// using the instruction template of its category
type Generator struct {
	llm     gollem.LLMClient
	timeout time.Duration
}

func NewGenerator(llm gollem.LLMClient, timeout time.Duration) *Generator {
	return &Generator{llm: llm, timeout: timeout}
}

// Generate returns the sanitized artifact. Every failure, including an empty
// artifact, is reported as ErrGenerationFailed.
func (g *Generator) Generate(ctx context.Context, category types.Classification, rawPrompt string) (string, error) {
	logger := logging.From(ctx)

	systemPrompt, ok := generationPrompts[category]
	if !ok {
		return "", goerr.Wrap(ErrGenerationFailed, "no generation strategy for classification",
			goerr.V(ClassificationKey, category))
	}

	raw, err := complete(ctx, g.llm, roleGenerator, g.timeout, completion{
		systemPrompt: systemPrompt,
		input:        rawPrompt,
	})
	if err != nil {
		metrics.Generations.WithLabelValues(category.String(), metrics.ResultFailure).Inc()
		return "", wrapAs(ErrGenerationFailed, err, "failed to generate artifact",
			goerr.V(ClassificationKey, category))
	}

	html := model.SanitizeArtifact(raw)
	if html == "" {
		metrics.Generations.WithLabelValues(category.String(), metrics.ResultFailure).Inc()
		return "", goerr.Wrap(ErrGenerationFailed, "model returned an empty artifact",
			goerr.V(ClassificationKey, category))
	}

	logger.Info("generated artifact", ClassificationKey, category, "bytes", len(html))
	metrics.Generations.WithLabelValues(category.String(), metrics.ResultSuccess).Inc()
	return html, nil
}
