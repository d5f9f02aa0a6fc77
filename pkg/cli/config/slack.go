package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/toolforge/pkg/service/slack"
	"github.com/urfave/cli/v3"
)

// Slack configures the moderation notice. It is optional.
type Slack struct {
	botToken  string
	channelID string
	reviewURL string
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token for moderation notices",
			Category:    "Slack",
			Destination: &x.botToken,
			Sources:     cli.EnvVars("TOOLFORGE_SLACK_BOT_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "slack-channel-id",
			Usage:       "Slack channel ID receiving moderation notices",
			Category:    "Slack",
			Destination: &x.channelID,
			Sources:     cli.EnvVars("TOOLFORGE_SLACK_CHANNEL_ID"),
		},
		&cli.StringFlag{
			Name:        "slack-review-url",
			Usage:       "Link to the admin review queue included in notices",
			Category:    "Slack",
			Destination: &x.reviewURL,
			Sources:     cli.EnvVars("TOOLFORGE_SLACK_REVIEW_URL"),
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bot-token.len", len(x.botToken)),
		slog.String("channel-id", x.channelID),
		slog.String("review-url", x.reviewURL),
	)
}

// IsConfigured reports whether a token was given
func (x *Slack) IsConfigured() bool {
	return x.botToken != ""
}

// Configure returns the notice service, or nil when Slack is not configured
func (x *Slack) Configure() (slack.Service, error) {
	if !x.IsConfigured() {
		return nil, nil
	}
	if x.channelID == "" {
		return nil, goerr.Wrap(ErrMissingRequired, "slack-channel-id is required with slack-bot-token",
			goerr.V(FlagKey, "slack-channel-id"))
	}

	var opts []slack.Option
	if x.reviewURL != "" {
		opts = append(opts, slack.WithReviewURL(x.reviewURL))
	}

	svc, err := slack.New(x.botToken, x.channelID, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize slack service")
	}
	return svc, nil
}
