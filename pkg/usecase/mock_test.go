package usecase_test

import (
	"context"
	"errors"
	"sync"

	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/toolforge/pkg/domain/model"
)

// mockLLMSession is a mock gollem Session for testing
type mockLLMSession struct {
	generateFn func(ctx context.Context, input []gollem.Input) (*gollem.Response, error)
}

func (s *mockLLMSession) Generate(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (*gollem.Response, error) {
	if s.generateFn != nil {
		return s.generateFn(ctx, input)
	}
	return &gollem.Response{Texts: []string{""}}, nil
}

func (s *mockLLMSession) Stream(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (<-chan *gollem.Response, error) {
	return nil, nil
}

func (s *mockLLMSession) GenerateContent(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
	return s.Generate(ctx, input)
}

func (s *mockLLMSession) GenerateStream(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error) {
	return s.Stream(ctx, input)
}

func (s *mockLLMSession) History() (*gollem.History, error) {
	return nil, nil
}

func (s *mockLLMSession) AppendHistory(*gollem.History) error {
	return nil
}

func (s *mockLLMSession) CountToken(ctx context.Context, input ...gollem.Input) (int, error) {
	return 0, nil
}

var _ gollem.Session = (*mockLLMSession)(nil)

// mockLLMClient is a mock gollem LLMClient for testing
type mockLLMClient struct {
	newSessionFn func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error)
}

func (c *mockLLMClient) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	if c.newSessionFn != nil {
		return c.newSessionFn(ctx, options...)
	}
	return &mockLLMSession{}, nil
}

func (c *mockLLMClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	return nil, nil
}

// replyLLM answers every prompt with reply and records the inputs it saw
type replyLLM struct {
	mockLLMClient
	mu     sync.Mutex
	inputs []string
}

func newReplyLLM(reply string, err error) *replyLLM {
	c := &replyLLM{}
	c.newSessionFn = func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
		return &mockLLMSession{
			generateFn: func(ctx context.Context, input []gollem.Input) (*gollem.Response, error) {
				c.mu.Lock()
				for _, in := range input {
					if text, ok := in.(gollem.Text); ok {
						c.inputs = append(c.inputs, string(text))
					}
				}
				c.mu.Unlock()
				if err != nil {
					return nil, err
				}
				return &gollem.Response{Texts: []string{reply}}, nil
			},
		}, nil
	}
	return c
}

func (c *replyLLM) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.inputs)
}

// failingLLM fails on session creation
func failingLLM() *mockLLMClient {
	return &mockLLMClient{
		newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
			return nil, errors.New("model unavailable")
		},
	}
}

// mockEmbedder returns a fixed vector per text, or a default unit vector
type mockEmbedder struct {
	mu      sync.Mutex
	vectors map[string][]float32
	err     error
	calls   int
}

func newMockEmbedder() *mockEmbedder {
	return &mockEmbedder{vectors: map[string][]float32{}}
}

func (e *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	if v, ok := e.vectors[text]; ok {
		return v, nil
	}
	return axis(model.EmbeddingDimension - 1), nil
}

// axis returns the unit vector along dimension i
func axis(i int) []float32 {
	v := make([]float32, model.EmbeddingDimension)
	v[i] = 1
	return v
}
