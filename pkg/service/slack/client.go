package slack

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/toolforge/pkg/domain/model"
	"github.com/slack-go/slack"
)

// maxSectionTextBytes is Slack's limit for a section block text
const maxSectionTextBytes = 3000

// client implements Service interface
type client struct {
	api       *slack.Client
	channelID string
	reviewURL string
}

var _ Service = (*client)(nil)

// Option is a functional option for client configuration
type Option func(*client, *[]slack.Option)

// WithReviewURL adds a link to the admin review page to each notice
func WithReviewURL(u string) Option {
	return func(c *client, _ *[]slack.Option) {
		c.reviewURL = strings.TrimRight(u, "/")
	}
}

// WithAPIURL overrides the Slack API endpoint
func WithAPIURL(u string) Option {
	return func(_ *client, opts *[]slack.Option) {
		*opts = append(*opts, slack.OptionAPIURL(u))
	}
}

// New creates a new Slack service posting to the moderation channel
func New(token, channelID string, opts ...Option) (Service, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}
	if channelID == "" {
		return nil, goerr.New("Slack moderation channel is required")
	}

	c := &client{channelID: channelID}
	var apiOpts []slack.Option
	for _, opt := range opts {
		opt(c, &apiOpts)
	}
	c.api = slack.New(token, apiOpts...)

	return c, nil
}

// SubmissionText is the plain text form of a submission notice
func SubmissionText(tool *model.Tool) string {
	return fmt.Sprintf("New tool submitted for review: %s (%s)", tool.Name, tool.Category)
}

func (c *client) NotifySubmission(ctx context.Context, tool *model.Tool) (string, error) {
	text := SubmissionText(tool)

	_, ts, err := c.api.PostMessageContext(ctx, c.channelID,
		slack.MsgOptionText(text, false),
		slack.MsgOptionBlocks(c.submissionBlocks(tool, text)...),
	)
	if err != nil {
		return "", goerr.Wrap(err, "failed to post submission notice",
			goerr.V("channelID", c.channelID),
			goerr.V("toolID", tool.ID))
	}
	return ts, nil
}

func (c *client) submissionBlocks(tool *model.Tool, text string) []slack.Block {
	blocks := []slack.Block{
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, "*"+escape(text)+"*", false, false), nil, nil),
	}

	if tool.Description != "" {
		desc := truncateToMaxBytes(escape(tool.Description), maxSectionTextBytes)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, desc, false, false), nil, nil))
	}

	elements := []slack.MixedElement{
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("Submitted by `%s` • ID `%s`", tool.OwnerUserID, tool.ID), false, false),
	}
	if c.reviewURL != "" {
		elements = append(elements, slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("<%s|Open review queue>", c.reviewURL), false, false))
	}
	blocks = append(blocks, slack.NewContextBlock("", elements...))

	return blocks
}

// escape neutralizes Slack mrkdwn control characters in user supplied text
func escape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}

// truncateToMaxBytes cuts s to at most maxBytes without splitting a UTF-8 rune
func truncateToMaxBytes(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	const ellipsis = "…"
	limit := maxBytes - len(ellipsis)
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit] + ellipsis
}
