package embedding

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/secmon-lab/toolforge/pkg/domain/model"
)

const (
	// DefaultOpenAIModel is used when no model is configured
	DefaultOpenAIModel = "text-embedding-3-small"
)

// OpenAI embeds text with the OpenAI embeddings API
type OpenAI struct {
	client    openai.Client
	model     string
	dimension int
	tokens    *Truncator
}

var _ Service = (*OpenAI)(nil)

type openAIOptions struct {
	model     string
	dimension int
	baseURL   string
	maxTokens int
}

// OpenAIOption configures the OpenAI embedder
type OpenAIOption func(*openAIOptions)

// WithOpenAIModel overrides the embedding model
func WithOpenAIModel(m string) OpenAIOption {
	return func(o *openAIOptions) {
		o.model = m
	}
}

// WithOpenAIDimension overrides the requested vector length
func WithOpenAIDimension(d int) OpenAIOption {
	return func(o *openAIOptions) {
		o.dimension = d
	}
}

// WithOpenAIBaseURL points the client at an OpenAI compatible endpoint
func WithOpenAIBaseURL(u string) OpenAIOption {
	return func(o *openAIOptions) {
		o.baseURL = u
	}
}

// WithOpenAIMaxTokens sets the input token limit. Zero disables truncation.
func WithOpenAIMaxTokens(n int) OpenAIOption {
	return func(o *openAIOptions) {
		o.maxTokens = n
	}
}

// NewOpenAI creates an embedder backed by the OpenAI API
func NewOpenAI(apiKey string, opts ...OpenAIOption) (*OpenAI, error) {
	if apiKey == "" {
		return nil, goerr.New("OpenAI API key is required for embedding")
	}

	options := openAIOptions{
		model:     DefaultOpenAIModel,
		dimension: model.EmbeddingDimension,
		maxTokens: DefaultMaxTokens,
	}
	for _, opt := range opts {
		opt(&options)
	}

	clientOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if options.baseURL != "" {
		base := options.baseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		clientOpts = append(clientOpts, option.WithBaseURL(base))
	}

	e := &OpenAI{
		client:    openai.NewClient(clientOpts...),
		model:     options.model,
		dimension: options.dimension,
	}
	if options.maxTokens > 0 {
		e.tokens = NewTruncator(options.maxTokens)
	}
	return e, nil
}

// Model returns the embedding model name
func (e *OpenAI) Model() string {
	return e.model
}

// Embed generates an embedding for a single text
func (e *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, goerr.Wrap(ErrEmptyText, "cannot embed")
	}
	if e.tokens != nil {
		text = e.tokens.Truncate(ctx, text)
	}

	params := openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(e.model),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfString: openai.String(text),
		},
	}
	if e.dimension > 0 {
		params.Dimensions = openai.Int(int64(e.dimension))
	}

	resp, err := e.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate embedding", goerr.V("model", e.model))
	}
	if len(resp.Data) == 0 {
		return nil, goerr.Wrap(ErrNoEmbedding, "empty embedding response", goerr.V("model", e.model))
	}

	vec := toFloat32(resp.Data[0].Embedding)
	if err := checkDimension(vec, e.dimension); err != nil {
		return nil, err
	}
	return vec, nil
}
