package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/toolforge/pkg/domain/types"
	"github.com/secmon-lab/toolforge/pkg/utils/logging"
	"github.com/secmon-lab/toolforge/pkg/utils/metrics"
)

// Classifier assigns one of the five classifications to a request. The
// client is expected to be configured with temperature 0.
type Classifier struct {
	llm     gollem.LLMClient
	timeout time.Duration
}

func NewClassifier(llm gollem.LLMClient, timeout time.Duration) *Classifier {
	return &Classifier{llm: llm, timeout: timeout}
}

// Classify never fails. Call errors and unrecognized output become REJECTED.
func (c *Classifier) Classify(ctx context.Context, rawPrompt string) types.Classification {
	logger := logging.From(ctx)

	out, err := complete(ctx, c.llm, roleClassifier, c.timeout, completion{
		systemPrompt: classifySystemPrompt,
		input:        rawPrompt,
	})
	if err != nil {
		logger.Warn("classification call failed, rejecting request", "error", err)
		metrics.Classifications.WithLabelValues(types.ClassificationRejected.String()).Inc()
		return types.ClassificationRejected
	}

	result := types.NormalizeClassification(out)
	if result == types.ClassificationRejected && strings.TrimSpace(out) != types.ClassificationRejected.String() {
		logger.Warn("unexpected classification output, rejecting request", "output", out)
	}

	logger.Debug("classified prompt", "classification", result)
	metrics.Classifications.WithLabelValues(result.String()).Inc()
	return result
}
