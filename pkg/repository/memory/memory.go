package memory

import (
	"github.com/secmon-lab/toolforge/pkg/domain/interfaces"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = interfaces.ErrNotFound

type Memory struct {
	tool      *toolRepository
	savedTool *savedToolRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	toolRepo := newToolRepository()
	return &Memory{
		tool:      toolRepo,
		savedTool: newSavedToolRepository(toolRepo),
	}
}

func (m *Memory) Tool() interfaces.ToolRepository {
	return m.tool
}

func (m *Memory) SavedTool() interfaces.SavedToolRepository {
	return m.savedTool
}

func (m *Memory) Close() error {
	return nil
}
