package config

import "github.com/urfave/cli/v3"

// Slack holds the optional release notification configuration
type Slack struct {
	WebhookURL string
}

// Flags returns CLI flags for Slack configuration
func (c *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-webhook-url",
			Usage:       "Incoming webhook for release announcements (disabled when empty)",
			Destination: &c.WebhookURL,
			Sources:     cli.EnvVars("COGRELEASE_SLACK_WEBHOOK_URL"),
		},
	}
}
