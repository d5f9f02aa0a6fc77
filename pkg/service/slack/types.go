package slack

import (
	"context"

	"github.com/secmon-lab/toolforge/pkg/domain/model"
)

// Service posts moderation notices to Slack
type Service interface {
	// NotifySubmission announces a newly submitted tool awaiting review.
	// Returns the timestamp of the posted message.
	NotifySubmission(ctx context.Context, tool *model.Tool) (string, error)
}
