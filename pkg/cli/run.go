package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/cogrelease/pkg/cli/config"
	"github.com/m-mizutani/cogrelease/pkg/domain/interfaces"
	"github.com/m-mizutani/cogrelease/pkg/infra/actions"
	"github.com/m-mizutani/cogrelease/pkg/infra/cog"
	"github.com/m-mizutani/cogrelease/pkg/infra/forgejo"
	"github.com/m-mizutani/cogrelease/pkg/infra/git"
	slacknotify "github.com/m-mizutani/cogrelease/pkg/infra/slack"
	"github.com/m-mizutani/cogrelease/pkg/usecase"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdRun() *cli.Command {
	var (
		actionCfg  config.Action
		forgejoCfg config.Forgejo
		slackCfg   config.Slack
	)

	flags := append(actionCfg.Flags(), forgejoCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:    "run",
		Aliases: []string{"r"},
		Usage:   "Run the release pipeline once",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			inputs := actionCfg.Resolve()

			logger.Info("starting cogrelease",
				slog.String("remote", inputs.Coordinates.Remote),
				slog.String("owner", inputs.Coordinates.Owner),
				slog.String("repo", inputs.Coordinates.Repo),
				slog.String("working_dir", inputs.WorkingDir),
			)

			newForgejo := func(baseURL, token string) interfaces.ForgejoClient {
				return forgejo.New(baseURL, token)
			}

			opts := []usecase.Option{
				usecase.WithForgejo(newForgejo, forgejoCfg.Token, forgejoCfg.ServerURL, actionCfg.ServerURL),
			}
			if slackCfg.WebhookURL != "" {
				opts = append(opts, usecase.WithNotifier(slacknotify.New(slackCfg.WebhookURL)))
			}

			uc := usecase.NewRelease(
				cog.New(),
				git.New(inputs.WorkingDir),
				actions.NewOutputWriter(actionCfg.OutputFile),
				opts...,
			)

			if err := uc.Run(ctx, inputs); err != nil {
				return goerr.Wrap(err, "release pipeline failed")
			}

			return nil
		},
	}
}
