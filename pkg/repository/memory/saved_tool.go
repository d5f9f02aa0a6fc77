package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/secmon-lab/toolforge/pkg/domain/model"
)

type savedKey struct {
	userID model.UserID
	toolID model.ToolID
}

type savedToolRepository struct {
	mu    sync.RWMutex
	saved map[savedKey]*model.SavedTool
	tools *toolRepository
}

func newSavedToolRepository(tools *toolRepository) *savedToolRepository {
	return &savedToolRepository{
		saved: make(map[savedKey]*model.SavedTool),
		tools: tools,
	}
}

func (r *savedToolRepository) Save(ctx context.Context, userID model.UserID, toolID model.ToolID) (bool, error) {
	// Foreign key semantics: the tool must exist
	if _, err := r.tools.Get(ctx, toolID); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := savedKey{userID: userID, toolID: toolID}
	if _, exists := r.saved[key]; exists {
		return false, nil
	}

	r.saved[key] = &model.SavedTool{
		UserID:    userID,
		ToolID:    toolID,
		CreatedAt: time.Now().UTC(),
	}
	return true, nil
}

func (r *savedToolRepository) Unsave(ctx context.Context, userID model.UserID, toolID model.ToolID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.saved, savedKey{userID: userID, toolID: toolID})
	return nil
}

func (r *savedToolRepository) List(ctx context.Context, userID model.UserID) ([]*model.SavedTool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.SavedTool, 0)
	for key, s := range r.saved {
		if key.userID != userID {
			continue
		}
		copied := *s
		result = append(result, &copied)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}
