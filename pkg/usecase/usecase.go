package usecase

import (
	"time"

	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/toolforge/pkg/domain/interfaces"
	"github.com/secmon-lab/toolforge/pkg/service/embedding"
	"github.com/secmon-lab/toolforge/pkg/service/slack"
)

type UseCases struct {
	repo     interfaces.Repository
	embedder embedding.Service

	classifierLLM gollem.LLMClient
	generatorLLM  gollem.LLMClient
	metadataLLM   gollem.LLMClient
	notifier      slack.Service

	dedupThreshold  float64
	searchThreshold float64
	searchLimit     int
	timeout         time.Duration

	Tool *ToolUseCase
	Auth AuthUseCaseInterface
}

type Option func(*UseCases)

// WithLLM uses the same client for every model role
func WithLLM(client gollem.LLMClient) Option {
	return func(uc *UseCases) {
		uc.classifierLLM = client
		uc.generatorLLM = client
		uc.metadataLLM = client
	}
}

// WithClassifierLLM sets the client used for classification (temperature 0)
func WithClassifierLLM(client gollem.LLMClient) Option {
	return func(uc *UseCases) {
		uc.classifierLLM = client
	}
}

// WithGeneratorLLM sets the client used for artifact generation
func WithGeneratorLLM(client gollem.LLMClient) Option {
	return func(uc *UseCases) {
		uc.generatorLLM = client
	}
}

// WithMetadataLLM sets the client used for metadata suggestion (temperature 0.2)
func WithMetadataLLM(client gollem.LLMClient) Option {
	return func(uc *UseCases) {
		uc.metadataLLM = client
	}
}

func WithSlack(svc slack.Service) Option {
	return func(uc *UseCases) {
		uc.notifier = svc
	}
}

func WithAuth(auth AuthUseCaseInterface) Option {
	return func(uc *UseCases) {
		uc.Auth = auth
	}
}

func WithDedupThreshold(t float64) Option {
	return func(uc *UseCases) {
		uc.dedupThreshold = t
	}
}

func WithSearch(threshold float64, limit int) Option {
	return func(uc *UseCases) {
		uc.searchThreshold = threshold
		uc.searchLimit = limit
	}
}

// WithCallTimeout bounds each outbound model and embedding call
func WithCallTimeout(d time.Duration) Option {
	return func(uc *UseCases) {
		uc.timeout = d
	}
}

func New(repo interfaces.Repository, embedder embedding.Service, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:            repo,
		embedder:        embedder,
		dedupThreshold:  DefaultDedupThreshold,
		searchThreshold: DefaultSearchThreshold,
		searchLimit:     DefaultSearchLimit,
		timeout:         DefaultCallTimeout,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Tool = &ToolUseCase{
		repo:            repo,
		embedder:        embedder,
		classifier:      NewClassifier(uc.classifierLLM, uc.timeout),
		dedup:           NewDeduplicator(embedder, repo.Tool(), uc.dedupThreshold, uc.timeout),
		generator:       NewGenerator(uc.generatorLLM, uc.timeout),
		metadata:        NewMetadataSuggester(uc.metadataLLM, uc.timeout),
		notifier:        uc.notifier,
		searchThreshold: uc.searchThreshold,
		searchLimit:     uc.searchLimit,
		timeout:         uc.timeout,
	}

	return uc
}
