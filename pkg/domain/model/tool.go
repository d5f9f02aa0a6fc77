package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/secmon-lab/toolforge/pkg/domain/types"
)

// EmbeddingDimension is the dimension of the embedding vector
// OpenAI text-embedding-3-small uses 1536 dimensions
const EmbeddingDimension = 1536

// ToolID is a UUID-based identifier for Tool
type ToolID string

// NewToolID generates a new UUID v4 ToolID
func NewToolID() ToolID {
	return ToolID(uuid.New().String())
}

func (id ToolID) String() string {
	return string(id)
}

// UserID identifies the owner of a tool or a bookmark. It is the subject of
// the bearer token.
type UserID string

func (id UserID) String() string {
	return string(id)
}

// Tool is a generated or community submitted utility
type Tool struct {
	ID             ToolID
	Name           string
	Description    string
	Category       string
	OriginalPrompt string
	GeneratedHTML  string
	Status         types.ToolStatus
	Embedding      []float32 // non-nil only while Status is published
	OwnerUserID    UserID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Summary returns the gallery projection of the tool
func (t *Tool) Summary() *ToolSummary {
	return &ToolSummary{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Category:    t.Category,
	}
}

// EmbeddingText is the text embedded when the tool is published
func (t *Tool) EmbeddingText() string {
	return fmt.Sprintf("Name: %s\nDescription: %s", t.Name, t.Description)
}

// ToolSummary is the listing view of a tool
type ToolSummary struct {
	ID          ToolID  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Similarity  float64 `json:"similarity,omitempty"`
}

// SavedTool is a bookmark of a tool by a user
type SavedTool struct {
	UserID    UserID
	ToolID    ToolID
	CreatedAt time.Time
}

// ToolMatch is a similarity store hit
type ToolMatch struct {
	Tool       *Tool
	Similarity float64
}
