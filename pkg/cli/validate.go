package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/toolforge/pkg/cli/config"
	"github.com/secmon-lab/toolforge/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var pipelineCfg config.Pipeline

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the pipeline configuration file",
		Flags:   pipelineCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := pipelineCfg.Load()
			if err != nil {
				return goerr.Wrap(err, "configuration validation failed")
			}

			logging.Default().Info("Configuration validation passed",
				"dedup_threshold", cfg.Similarity.DedupThreshold,
				"search_threshold", cfg.Similarity.SearchThreshold,
				"search_limit", cfg.Similarity.SearchLimit,
				"llm_timeout", cfg.LLM.CallTimeout(),
			)
			return nil
		},
	}
}
