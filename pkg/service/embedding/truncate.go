package embedding

import (
	"context"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"github.com/secmon-lab/toolforge/pkg/utils/logging"
)

const (
	// DefaultMaxTokens is the input limit of the OpenAI embedding models
	DefaultMaxTokens = 8191

	tokenEncoding = "cl100k_base"
)

// Truncator cuts text down to a token limit. The encoding is loaded on
// first use. If it cannot be loaded, text passes through unchanged.
type Truncator struct {
	maxTokens int

	once sync.Once
	enc  *tiktoken.Tiktoken
}

func NewTruncator(maxTokens int) *Truncator {
	return &Truncator{maxTokens: maxTokens}
}

func (t *Truncator) load(ctx context.Context) {
	t.once.Do(func() {
		enc, err := tiktoken.GetEncoding(tokenEncoding)
		if err != nil {
			logging.From(ctx).Warn("tiktoken encoding unavailable, embedding input is not truncated",
				"encoding", tokenEncoding,
				"error", err)
			return
		}
		t.enc = enc
	})
}

// Truncate returns text limited to maxTokens tokens
func (t *Truncator) Truncate(ctx context.Context, text string) string {
	t.load(ctx)
	if t.enc == nil {
		return text
	}

	tokens := t.enc.Encode(text, nil, nil)
	if len(tokens) <= t.maxTokens {
		return text
	}

	logging.From(ctx).Debug("truncating embedding input",
		"tokens", len(tokens),
		"max_tokens", t.maxTokens)
	return t.enc.Decode(tokens[:t.maxTokens])
}

// Available reports whether the encoding could be loaded
func (t *Truncator) Available(ctx context.Context) bool {
	t.load(ctx)
	return t.enc != nil
}
