package interfaces

import (
	"github.com/m-mizutani/goerr/v2"
)

// ErrNotFound is wrapped by every backend when a record does not exist
var ErrNotFound = goerr.New("not found")

// Repository defines the interface for data persistence
type Repository interface {
	Tool() ToolRepository
	SavedTool() SavedToolRepository

	Close() error
}
