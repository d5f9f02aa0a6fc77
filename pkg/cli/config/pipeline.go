package config

import (
	"bytes"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/toolforge/pkg/usecase"
	"github.com/urfave/cli/v3"
)

const maxSearchLimit = 100

// Pipeline locates the TOML file tuning the generation pipeline
type Pipeline struct {
	path       string
	llmTimeout time.Duration
}

// PipelineConfig is the content of the pipeline TOML file
type PipelineConfig struct {
	Similarity SimilarityConfig `toml:"similarity"`
	LLM        LLMConfig        `toml:"llm"`
}

type SimilarityConfig struct {
	DedupThreshold  float64 `toml:"dedup_threshold"`
	SearchThreshold float64 `toml:"search_threshold"`
	SearchLimit     int     `toml:"search_limit"`
}

type LLMConfig struct {
	Timeout string `toml:"timeout"`

	timeout time.Duration
}

// CallTimeout is the parsed per-call timeout
func (x LLMConfig) CallTimeout() time.Duration {
	return x.timeout
}

// DefaultPipelineConfig returns the settings used when no file is given
func DefaultPipelineConfig() *PipelineConfig {
	return &PipelineConfig{
		Similarity: SimilarityConfig{
			DedupThreshold:  usecase.DefaultDedupThreshold,
			SearchThreshold: usecase.DefaultSearchThreshold,
			SearchLimit:     usecase.DefaultSearchLimit,
		},
		LLM: LLMConfig{
			Timeout: usecase.DefaultCallTimeout.String(),
			timeout: usecase.DefaultCallTimeout,
		},
	}
}

func (x *Pipeline) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Pipeline configuration file (TOML)",
			Category:    "Pipeline",
			Sources:     cli.EnvVars("TOOLFORGE_CONFIG"),
			Destination: &x.path,
		},
		&cli.DurationFlag{
			Name:        "llm-timeout",
			Usage:       "Timeout of each model or embedding call; overrides [llm] timeout",
			Category:    "Pipeline",
			Sources:     cli.EnvVars("TOOLFORGE_LLM_TIMEOUT"),
			Destination: &x.llmTimeout,
		},
	}
}

func (x Pipeline) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("config", x.path),
		slog.Duration("llm-timeout", x.llmTimeout),
	)
}

// Load reads and validates the pipeline file. Keys absent from the file keep
// their defaults.
func (x *Pipeline) Load() (*PipelineConfig, error) {
	cfg := DefaultPipelineConfig()

	if x.path != "" {
		raw, err := os.ReadFile(x.path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "pipeline config does not exist", goerr.V(ConfigPathKey, x.path))
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read pipeline config", goerr.V(ConfigPathKey, x.path))
		}

		dec := toml.NewDecoder(bytes.NewReader(raw)).DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse pipeline config",
				goerr.V(ConfigPathKey, x.path),
				goerr.V("reason", err.Error()))
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid pipeline config", goerr.V(ConfigPathKey, x.path))
	}

	if x.llmTimeout > 0 {
		cfg.LLM.timeout = x.llmTimeout
		cfg.LLM.Timeout = x.llmTimeout.String()
	}

	return cfg, nil
}

func (c *PipelineConfig) validate() error {
	thresholds := []struct {
		field string
		value float64
	}{
		{"similarity.dedup_threshold", c.Similarity.DedupThreshold},
		{"similarity.search_threshold", c.Similarity.SearchThreshold},
	}
	for _, th := range thresholds {
		if th.value <= 0 || th.value > 1 {
			return goerr.Wrap(ErrInvalidConfig, "threshold must be in (0, 1]",
				goerr.V(FieldKey, th.field),
				goerr.V(ValueKey, th.value))
		}
	}

	if c.Similarity.SearchLimit < 1 || c.Similarity.SearchLimit > maxSearchLimit {
		return goerr.Wrap(ErrInvalidConfig, "search limit must be between 1 and 100",
			goerr.V(FieldKey, "similarity.search_limit"),
			goerr.V(ValueKey, c.Similarity.SearchLimit))
	}

	timeout, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return goerr.Wrap(ErrInvalidConfig, "llm timeout is not a duration",
			goerr.V(FieldKey, "llm.timeout"),
			goerr.V(ValueKey, c.LLM.Timeout))
	}
	if timeout < 0 {
		return goerr.Wrap(ErrInvalidConfig, "llm timeout must not be negative",
			goerr.V(FieldKey, "llm.timeout"),
			goerr.V(ValueKey, c.LLM.Timeout))
	}
	c.LLM.timeout = timeout

	return nil
}

// Options converts the settings to use case options
func (c *PipelineConfig) Options() []usecase.Option {
	return []usecase.Option{
		usecase.WithDedupThreshold(c.Similarity.DedupThreshold),
		usecase.WithSearch(c.Similarity.SearchThreshold, c.Similarity.SearchLimit),
		usecase.WithCallTimeout(c.LLM.timeout),
	}
}
