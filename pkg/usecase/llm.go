package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/toolforge/pkg/utils/metrics"
)

// Roles label outbound calls in metrics and logs
const (
	roleClassifier = "classifier"
	roleGenerator  = "generator"
	roleMetadata   = "metadata"
	roleEmbedding  = "embedding"
)

// DefaultCallTimeout bounds every outbound model or embedding call
const DefaultCallTimeout = 30 * time.Second

type completion struct {
	systemPrompt string
	input        string
	schema       *gollem.Parameter
}

// complete runs a single-turn session and returns the concatenated text
func complete(ctx context.Context, client gollem.LLMClient, role string, timeout time.Duration, req completion) (string, error) {
	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		metrics.LLMCallDuration.WithLabelValues(role).Observe(time.Since(start).Seconds())
	}()

	var opts []gollem.SessionOption
	if req.systemPrompt != "" {
		opts = append(opts, gollem.WithSessionSystemPrompt(req.systemPrompt))
	}
	if req.schema != nil {
		opts = append(opts,
			gollem.WithSessionContentType(gollem.ContentTypeJSON),
			gollem.WithSessionResponseSchema(req.schema),
		)
	}

	session, err := client.NewSession(ctx, opts...)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create LLM session", goerr.V("role", role))
	}

	resp, err := session.Generate(ctx, []gollem.Input{gollem.Text(req.input)})
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate content", goerr.V("role", role))
	}
	if resp == nil || len(resp.Texts) == 0 {
		return "", goerr.Wrap(ErrEmptyResponse, "no text in response", goerr.V("role", role))
	}

	return strings.Join(resp.Texts, ""), nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// wrapAs keeps both sentinel and cause reachable through errors.Is
func wrapAs(sentinel, cause error, msg string, opts ...goerr.Option) error {
	return goerr.Wrap(fmt.Errorf("%w: %w", sentinel, cause), msg, opts...)
}
