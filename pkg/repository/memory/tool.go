package memory

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/toolforge/pkg/domain/model"
	"github.com/secmon-lab/toolforge/pkg/domain/types"
)

type toolRepository struct {
	mu    sync.RWMutex
	tools map[model.ToolID]*model.Tool
}

func newToolRepository() *toolRepository {
	return &toolRepository{
		tools: make(map[model.ToolID]*model.Tool),
	}
}

// copyTool creates a deep copy of a tool
func copyTool(t *model.Tool) *model.Tool {
	copied := *t
	if t.Embedding != nil {
		copied.Embedding = make([]float32, len(t.Embedding))
		copy(copied.Embedding, t.Embedding)
	}
	return &copied
}

func (r *toolRepository) Create(ctx context.Context, tool *model.Tool) (*model.Tool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	created := copyTool(tool)
	if created.ID == "" {
		created.ID = model.NewToolID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	created.UpdatedAt = now

	if _, exists := r.tools[created.ID]; exists {
		return nil, goerr.New("tool already exists", goerr.V("id", created.ID))
	}

	r.tools[created.ID] = created
	return copyTool(created), nil
}

func (r *toolRepository) Get(ctx context.Context, id model.ToolID) (*model.Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, exists := r.tools[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "tool not found", goerr.V("id", id))
	}
	return copyTool(tool), nil
}

func (r *toolRepository) listByStatus(status types.ToolStatus, newestFirst bool) []*model.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Tool, 0)
	for _, t := range r.tools {
		if t.Status == status {
			result = append(result, copyTool(t))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if newestFirst {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

func (r *toolRepository) ListPublished(ctx context.Context) ([]*model.Tool, error) {
	return r.listByStatus(types.ToolStatusPublished, true), nil
}

func (r *toolRepository) ListPending(ctx context.Context) ([]*model.Tool, error) {
	return r.listByStatus(types.ToolStatusPending, false), nil
}

func (r *toolRepository) UpdateStatus(ctx context.Context, id model.ToolID, status types.ToolStatus, embedding []float32) (*model.Tool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tool, exists := r.tools[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "tool not found", goerr.V("id", id))
	}

	updated := copyTool(tool)
	updated.Status = status
	updated.Embedding = nil
	if embedding != nil {
		updated.Embedding = make([]float32, len(embedding))
		copy(updated.Embedding, embedding)
	}
	updated.UpdatedAt = time.Now().UTC()

	r.tools[id] = updated
	return copyTool(updated), nil
}

func (r *toolRepository) MatchTool(ctx context.Context, embedding []float32, threshold float64) (*model.ToolMatch, error) {
	matches := r.search(embedding, threshold, 1)
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0], nil
}

func (r *toolRepository) SearchTools(ctx context.Context, embedding []float32, threshold float64, limit int) ([]*model.ToolMatch, error) {
	return r.search(embedding, threshold, limit), nil
}

func (r *toolRepository) search(embedding []float32, threshold float64, limit int) []*model.ToolMatch {
	r.mu.RLock()
	defer r.mu.RUnlock()

	candidates := make([]*model.ToolMatch, 0)
	for _, t := range r.tools {
		if t.Status != types.ToolStatusPublished || len(t.Embedding) == 0 {
			continue
		}
		s := cosineSimilarity(embedding, t.Embedding)
		if s <= threshold {
			continue
		}
		candidates = append(candidates, &model.ToolMatch{Tool: copyTool(t), Similarity: s})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Similarity > candidates[j].Similarity
	})

	if limit > 0 && limit < len(candidates) {
		candidates = candidates[:limit]
	}
	return candidates
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}

	return dot / denom
}
