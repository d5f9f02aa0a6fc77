package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/toolforge/pkg/domain/interfaces"
	"github.com/secmon-lab/toolforge/pkg/domain/model"
	"github.com/secmon-lab/toolforge/pkg/domain/model/auth"
	"github.com/secmon-lab/toolforge/pkg/domain/types"
	"github.com/secmon-lab/toolforge/pkg/service/embedding"
	"github.com/secmon-lab/toolforge/pkg/service/slack"
	"github.com/secmon-lab/toolforge/pkg/utils/async"
	"github.com/secmon-lab/toolforge/pkg/utils/logging"
)

const (
	// DefaultSearchThreshold is the minimum similarity of a gallery search hit
	DefaultSearchThreshold = 0.4
	// DefaultSearchLimit caps gallery search results
	DefaultSearchLimit = 20
)

// ToolUseCase runs the generation pipeline and manages the tool lifecycle
type ToolUseCase struct {
	repo       interfaces.Repository
	embedder   embedding.Service
	classifier *Classifier
	dedup      *Deduplicator
	generator  *Generator
	metadata   *MetadataSuggester
	notifier   slack.Service

	searchThreshold float64
	searchLimit     int
	timeout         time.Duration
}

// SubmitInput is a generated tool proposed for the gallery
type SubmitInput struct {
	Name           string
	Description    string
	Category       string
	OriginalPrompt string
	GeneratedHTML  string
}

func (in SubmitInput) complete() bool {
	for _, s := range []string{in.Name, in.Description, in.Category, in.OriginalPrompt, in.GeneratedHTML} {
		if strings.TrimSpace(s) == "" {
			return false
		}
	}
	return true
}

// GenerateTool classifies the request, serves a published near-duplicate
// when one exists, and otherwise generates a new artifact.
func (uc *ToolUseCase) GenerateTool(ctx context.Context, rawPrompt string) (*model.GenerationResult, error) {
	logger := logging.From(ctx)

	if strings.TrimSpace(rawPrompt) == "" {
		return nil, goerr.Wrap(ErrInvalidInput, "prompt is required")
	}

	classification := uc.classifier.Classify(ctx, rawPrompt)
	if classification == types.ClassificationRejected {
		return nil, goerr.Wrap(ErrRejected, "request cannot be built")
	}

	if html, found := uc.dedup.FindMatch(ctx, rawPrompt); found {
		return &model.GenerationResult{HTML: html, FromCache: true}, nil
	}

	html, err := uc.generator.Generate(ctx, classification, rawPrompt)
	if err != nil {
		return nil, err
	}

	logger.Info("tool generated", ClassificationKey, classification)
	return &model.GenerationResult{
		HTML:           html,
		Classification: classification.String(),
	}, nil
}

// SuggestMetadata proposes gallery metadata for a generated tool
func (uc *ToolUseCase) SuggestMetadata(ctx context.Context, rawPrompt, toolType string) (*model.Metadata, error) {
	if strings.TrimSpace(rawPrompt) == "" || strings.TrimSpace(toolType) == "" {
		return nil, goerr.Wrap(ErrInvalidInput, "prompt and tool type are required")
	}
	return uc.metadata.SuggestMetadata(ctx, rawPrompt, toolType)
}

// Submit stores a tool as pending review. The artifact is sanitized and the
// tool carries no embedding until it is published.
func (uc *ToolUseCase) Submit(ctx context.Context, user *auth.User, input SubmitInput) (*model.Tool, error) {
	if !input.complete() {
		return nil, goerr.Wrap(ErrInvalidInput, "missing required fields")
	}

	created, err := uc.repo.Tool().Create(ctx, &model.Tool{
		Name:           strings.TrimSpace(input.Name),
		Description:    strings.TrimSpace(input.Description),
		Category:       strings.TrimSpace(input.Category),
		OriginalPrompt: input.OriginalPrompt,
		GeneratedHTML:  model.SanitizeArtifact(input.GeneratedHTML),
		Status:         types.ToolStatusPending,
		OwnerUserID:    user.ID,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create tool", goerr.V(UserIDKey, user.ID))
	}

	logging.From(ctx).Info("tool submitted for review", ToolIDKey, created.ID, UserIDKey, user.ID)

	if uc.notifier != nil {
		tool := created
		async.Dispatch(ctx, func(ctx context.Context) error {
			if _, err := uc.notifier.NotifySubmission(ctx, tool); err != nil {
				return goerr.Wrap(err, "failed to notify submission", goerr.V(ToolIDKey, tool.ID))
			}
			return nil
		})
	}

	return created, nil
}

// Gallery lists published tools. A non-empty query switches to semantic search.
func (uc *ToolUseCase) Gallery(ctx context.Context, query string) ([]*model.ToolSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		tools, err := uc.repo.Tool().ListPublished(ctx)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list published tools")
		}
		summaries := make([]*model.ToolSummary, 0, len(tools))
		for _, t := range tools {
			summaries = append(summaries, t.Summary())
		}
		return summaries, nil
	}

	vec, err := uc.embed(ctx, query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed gallery query")
	}

	matches, err := uc.repo.Tool().SearchTools(ctx, vec, uc.searchThreshold, uc.searchLimit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to search tools")
	}

	summaries := make([]*model.ToolSummary, 0, len(matches))
	for _, m := range matches {
		s := m.Tool.Summary()
		s.Similarity = m.Similarity
		summaries = append(summaries, s)
	}
	return summaries, nil
}

// GetPublished returns a published tool. Tools in any other state are
// reported as not found.
func (uc *ToolUseCase) GetPublished(ctx context.Context, id model.ToolID) (*model.Tool, error) {
	tool, err := uc.getTool(ctx, id)
	if err != nil {
		return nil, err
	}
	if tool.Status != types.ToolStatusPublished {
		return nil, goerr.Wrap(ErrToolNotFound, "tool is not published", goerr.V(ToolIDKey, id))
	}
	return tool, nil
}

// ListSaved returns the caller's bookmarked tools, most recently saved
// first. Bookmarks of tools that were unpublished since are skipped.
func (uc *ToolUseCase) ListSaved(ctx context.Context, user *auth.User) ([]*model.ToolSummary, error) {
	saved, err := uc.repo.SavedTool().List(ctx, user.ID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list saved tools", goerr.V(UserIDKey, user.ID))
	}

	summaries := make([]*model.ToolSummary, 0, len(saved))
	for _, s := range saved {
		tool, err := uc.repo.Tool().Get(ctx, s.ToolID)
		if errors.Is(err, interfaces.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to get saved tool", goerr.V(ToolIDKey, s.ToolID))
		}
		if tool.Status != types.ToolStatusPublished {
			continue
		}
		summaries = append(summaries, tool.Summary())
	}
	return summaries, nil
}

// Save bookmarks a published tool. It returns false if it was already saved.
func (uc *ToolUseCase) Save(ctx context.Context, user *auth.User, id model.ToolID) (bool, error) {
	if _, err := uc.GetPublished(ctx, id); err != nil {
		return false, err
	}

	created, err := uc.repo.SavedTool().Save(ctx, user.ID, id)
	if errors.Is(err, interfaces.ErrNotFound) {
		return false, goerr.Wrap(ErrToolNotFound, "tool disappeared while saving", goerr.V(ToolIDKey, id))
	}
	if err != nil {
		return false, goerr.Wrap(err, "failed to save tool", goerr.V(ToolIDKey, id), goerr.V(UserIDKey, user.ID))
	}
	return created, nil
}

func (uc *ToolUseCase) Unsave(ctx context.Context, user *auth.User, id model.ToolID) error {
	if err := uc.repo.SavedTool().Unsave(ctx, user.ID, id); err != nil {
		return goerr.Wrap(err, "failed to unsave tool", goerr.V(ToolIDKey, id), goerr.V(UserIDKey, user.ID))
	}
	return nil
}

// ListPending returns the review queue, oldest first
func (uc *ToolUseCase) ListPending(ctx context.Context) ([]*model.Tool, error) {
	tools, err := uc.repo.Tool().ListPending(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list pending tools")
	}
	return tools, nil
}

func (uc *ToolUseCase) getTool(ctx context.Context, id model.ToolID) (*model.Tool, error) {
	tool, err := uc.repo.Tool().Get(ctx, id)
	if errors.Is(err, interfaces.ErrNotFound) {
		return nil, goerr.Wrap(ErrToolNotFound, "tool does not exist", goerr.V(ToolIDKey, id))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get tool", goerr.V(ToolIDKey, id))
	}
	return tool, nil
}

func (uc *ToolUseCase) embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := withTimeout(ctx, uc.timeout)
	defer cancel()

	start := time.Now()
	vec, err := uc.embedder.Embed(ctx, text)
	observeEmbedding(start)
	return vec, err
}
