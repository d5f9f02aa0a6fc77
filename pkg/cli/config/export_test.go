package config

import "time"

// NewSlackForTest creates a Slack config for testing purposes
func NewSlackForTest(botToken, channelID, reviewURL string) *Slack {
	return &Slack{
		botToken:  botToken,
		channelID: channelID,
		reviewURL: reviewURL,
	}
}

// NewAuthForTest creates an Auth config for testing purposes
func NewAuthForTest(jwtSecret, jwksURL, noAuthUID string) *Auth {
	return &Auth{
		jwtSecret: jwtSecret,
		jwksURL:   jwksURL,
		noAuthUID: noAuthUID,
	}
}

// NewLLMForTest creates an LLM config for testing purposes
func NewLLMForTest(provider, openaiAPIKey string) *LLM {
	return &LLM{
		provider:     provider,
		openaiAPIKey: openaiAPIKey,
		openaiModel:  "gpt-4o",
	}
}

// NewEmbeddingForTest creates an Embedding config for testing purposes
func NewEmbeddingForTest(provider, apiKey, model string) *Embedding {
	return &Embedding{
		provider: provider,
		apiKey:   apiKey,
		model:    model,
	}
}

// NewPipelineForTest creates a Pipeline config for testing purposes
func NewPipelineForTest(path string, llmTimeout time.Duration) *Pipeline {
	return &Pipeline{
		path:       path,
		llmTimeout: llmTimeout,
	}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend string) *Repository {
	return &Repository{backend: backend}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{
		level:  level,
		format: format,
		output: output,
	}
}
