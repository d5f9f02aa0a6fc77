package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/toolforge/pkg/domain/interfaces"
	"github.com/secmon-lab/toolforge/pkg/domain/model"
	"github.com/secmon-lab/toolforge/pkg/domain/types"
	"github.com/secmon-lab/toolforge/pkg/utils/logging"
	"github.com/secmon-lab/toolforge/pkg/utils/metrics"
)

// Review moves a tool to newStatus. Publishing embeds the stored name and
// description and writes status and vector together; if embedding fails the
// tool is left untouched. Any other status clears the vector.
func (uc *ToolUseCase) Review(ctx context.Context, id model.ToolID, newStatus string) (*model.Tool, error) {
	status, err := types.ParseToolStatus(newStatus)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidStatus, "unknown status", goerr.V(StatusKey, newStatus))
	}

	tool, err := uc.getTool(ctx, id)
	if err != nil {
		return nil, err
	}

	var vec []float32
	if status == types.ToolStatusPublished {
		vec, err = uc.embed(ctx, tool.EmbeddingText())
		if err != nil {
			metrics.Moderations.WithLabelValues(status.String(), metrics.ResultFailure).Inc()
			return nil, wrapAs(ErrModerationEmbedding, err, "publication aborted",
				goerr.V(ToolIDKey, id))
		}
	}

	updated, err := uc.repo.Tool().UpdateStatus(ctx, id, status, vec)
	if errors.Is(err, interfaces.ErrNotFound) {
		return nil, goerr.Wrap(ErrToolNotFound, "tool removed during review", goerr.V(ToolIDKey, id))
	}
	if err != nil {
		metrics.Moderations.WithLabelValues(status.String(), metrics.ResultFailure).Inc()
		return nil, goerr.Wrap(err, "failed to update tool status",
			goerr.V(ToolIDKey, id),
			goerr.V(StatusKey, status))
	}

	logging.From(ctx).Info("tool reviewed",
		ToolIDKey, id,
		"from", tool.Status,
		StatusKey, status)
	metrics.Moderations.WithLabelValues(status.String(), metrics.ResultSuccess).Inc()
	return updated, nil
}

func observeEmbedding(start time.Time) {
	metrics.LLMCallDuration.WithLabelValues(roleEmbedding).Observe(time.Since(start).Seconds())
}
