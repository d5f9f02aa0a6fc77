package embedding

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
)

// Service converts text into a fixed-length embedding vector
type Service interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

var (
	// ErrEmptyText is returned when there is nothing to embed
	ErrEmptyText = goerr.New("text to embed is empty")

	// ErrNoEmbedding is returned when the provider answers without a vector
	ErrNoEmbedding = goerr.New("no embedding returned")

	// ErrDimensionMismatch is returned when the provider returns a vector of unexpected length
	ErrDimensionMismatch = goerr.New("embedding dimension mismatch")
)

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

func checkDimension(vec []float32, dimension int) error {
	if dimension > 0 && len(vec) != dimension {
		return goerr.Wrap(ErrDimensionMismatch, "unexpected embedding length",
			goerr.V("expected", dimension),
			goerr.V("actual", len(vec)))
	}
	return nil
}
