package embedding

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/toolforge/pkg/domain/model"
)

// Gollem embeds text through a gollem LLM client, e.g. Gemini on Vertex AI
type Gollem struct {
	client    gollem.LLMClient
	dimension int
}

var _ Service = (*Gollem)(nil)

// NewGollem creates an embedder that delegates to the LLM client
func NewGollem(client gollem.LLMClient) *Gollem {
	return &Gollem{
		client:    client,
		dimension: model.EmbeddingDimension,
	}
}

func (e *Gollem) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, goerr.Wrap(ErrEmptyText, "cannot embed")
	}

	embeddings, err := e.client.GenerateEmbedding(ctx, e.dimension, []string{text})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate embedding")
	}
	if len(embeddings) == 0 {
		return nil, goerr.Wrap(ErrNoEmbedding, "empty embedding response")
	}

	vec := toFloat32(embeddings[0])
	if err := checkDimension(vec, e.dimension); err != nil {
		return nil, err
	}
	return vec, nil
}
