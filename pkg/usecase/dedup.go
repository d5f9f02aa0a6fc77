package usecase

import (
	"context"
	"time"

	"github.com/secmon-lab/toolforge/pkg/domain/interfaces"
	"github.com/secmon-lab/toolforge/pkg/domain/types"
	"github.com/secmon-lab/toolforge/pkg/service/embedding"
	"github.com/secmon-lab/toolforge/pkg/utils/logging"
	"github.com/secmon-lab/toolforge/pkg/utils/metrics"
)

// DefaultDedupThreshold is the cosine similarity a published tool must
// exceed to be served instead of generating a new one
const DefaultDedupThreshold = 0.67

// Deduplicator looks up a published tool close enough to a new request
type Deduplicator struct {
	embedder  embedding.Service
	tools     interfaces.ToolRepository
	threshold float64
	timeout   time.Duration
}

func NewDeduplicator(embedder embedding.Service, tools interfaces.ToolRepository, threshold float64, timeout time.Duration) *Deduplicator {
	return &Deduplicator{
		embedder:  embedder,
		tools:     tools,
		threshold: threshold,
		timeout:   timeout,
	}
}

// FindMatch returns the stored artifact of the best published match. Any
// failure is logged and reported as no match.
func (d *Deduplicator) FindMatch(ctx context.Context, rawPrompt string) (string, bool) {
	logger := logging.From(ctx)

	vec, err := d.embed(ctx, rawPrompt)
	if err != nil {
		logger.Warn("dedup embedding failed, generating instead", "error", err)
		metrics.DedupLookups.WithLabelValues(metrics.ResultError).Inc()
		return "", false
	}

	match, err := d.tools.MatchTool(ctx, vec, d.threshold)
	if err != nil {
		logger.Warn("dedup lookup failed, generating instead", "error", err)
		metrics.DedupLookups.WithLabelValues(metrics.ResultError).Inc()
		return "", false
	}

	// Only published tools may be served to other users.
	if match == nil || match.Tool == nil || match.Tool.Status != types.ToolStatusPublished {
		metrics.DedupLookups.WithLabelValues(metrics.ResultMiss).Inc()
		return "", false
	}

	logger.Info("serving existing tool",
		ToolIDKey, match.Tool.ID,
		"name", match.Tool.Name,
		"similarity", match.Similarity)
	metrics.DedupLookups.WithLabelValues(metrics.ResultHit).Inc()
	return match.Tool.GeneratedHTML, true
}

func (d *Deduplicator) embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := withTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	vec, err := d.embedder.Embed(ctx, text)
	observeEmbedding(start)
	return vec, err
}
