package interfaces

import (
	"context"

	"github.com/secmon-lab/toolforge/pkg/domain/model"
	"github.com/secmon-lab/toolforge/pkg/domain/types"
)

// ToolRepository is the similarity store holding submitted tools
type ToolRepository interface {
	// Create persists a new tool. ID and CreatedAt are assigned when empty.
	Create(ctx context.Context, tool *model.Tool) (*model.Tool, error)

	// Get retrieves a tool by ID regardless of its status
	Get(ctx context.Context, id model.ToolID) (*model.Tool, error)

	// ListPublished returns published tools, newest first
	ListPublished(ctx context.Context) ([]*model.Tool, error)

	// ListPending returns pending tools, oldest first
	ListPending(ctx context.Context) ([]*model.Tool, error)

	// UpdateStatus sets status and embedding in a single atomic write.
	// A nil embedding clears the stored vector.
	UpdateStatus(ctx context.Context, id model.ToolID, status types.ToolStatus, embedding []float32) (*model.Tool, error)

	// MatchTool returns the single published tool most similar to embedding
	// whose cosine similarity exceeds threshold, or nil when none does.
	MatchTool(ctx context.Context, embedding []float32, threshold float64) (*model.ToolMatch, error)

	// SearchTools returns up to limit published tools whose cosine
	// similarity exceeds threshold, most similar first.
	SearchTools(ctx context.Context, embedding []float32, threshold float64, limit int) ([]*model.ToolMatch, error)
}

// SavedToolRepository stores user bookmarks
type SavedToolRepository interface {
	// Save bookmarks toolID for userID. It returns false when the bookmark
	// already exists.
	Save(ctx context.Context, userID model.UserID, toolID model.ToolID) (bool, error)

	// Unsave removes the bookmark. Removing a missing bookmark is not an error.
	Unsave(ctx context.Context, userID model.UserID, toolID model.ToolID) error

	// List returns the bookmarks of userID, most recently saved first
	List(ctx context.Context, userID model.UserID) ([]*model.SavedTool, error)
}
