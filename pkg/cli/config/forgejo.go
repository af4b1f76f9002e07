package config

import "github.com/urfave/cli/v3"

// Forgejo holds forge API configuration
type Forgejo struct {
	Token     string
	ServerURL string
}

// Flags returns CLI flags for Forgejo configuration
func (c *Forgejo) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "forgejo-token",
			Usage:       "API token used to create the release",
			Destination: &c.Token,
			Sources:     cli.EnvVars("FORGEJO_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "forgejo-server-url",
			Usage:       "Forgejo base URL (falls back to the runner's server URL)",
			Destination: &c.ServerURL,
			Sources:     cli.EnvVars("FORGEJO_SERVER_URL"),
		},
	}
}
