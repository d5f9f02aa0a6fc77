package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// Input errors
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidStatus = errors.New("invalid tool status")

	// Pipeline errors
	ErrRejected          = errors.New("request classified as rejected")
	ErrGenerationFailed  = errors.New("tool generation failed")
	ErrMetadataFailed    = errors.New("metadata suggestion failed")
	ErrMalformedResponse = errors.New("malformed model response")
	ErrEmptyResponse     = errors.New("empty model response")

	// Moderation errors
	ErrModerationEmbedding = errors.New("failed to embed tool for publication")

	// Not found errors
	ErrToolNotFound = errors.New("tool not found")

	// Auth errors
	ErrInvalidToken = errors.New("invalid token")
)

// Context keys for error values
const (
	ToolIDKey         = "tool_id"
	UserIDKey         = "user_id"
	ClassificationKey = "classification"
	StatusKey         = "status"
)
