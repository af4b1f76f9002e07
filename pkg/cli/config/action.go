package config

import (
	"strings"

	"github.com/m-mizutani/cogrelease/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

// Action holds the action inputs and the runner environment values they
// default from. Input env sources follow the runner's INPUT_* convention so
// the binary can be dropped into a composite action step as-is.
type Action struct {
	WorkingDir               string
	DryRun                   bool
	DryRunOnNonDefaultBranch bool
	BumpArgs                 string
	ChangelogArgs            string
	Remote                   string
	Owner                    string
	Repo                     string
	CreateForgejoRelease     bool
	UpdateCogConfig          bool

	ServerURL       string
	Repository      string
	RepositoryOwner string
	HeadRef         string
	BaseRef         string
	OutputFile      string
}

// Flags returns CLI flags for action configuration
func (c *Action) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "working-directory",
			Usage:       "Directory where cog commands run",
			Value:       ".",
			Destination: &c.WorkingDir,
			Sources:     cli.EnvVars("INPUT_WORKING-DIRECTORY"),
		},
		&cli.BoolFlag{
			Name:        "dry-run",
			Usage:       "Simulate the release on the default branch",
			Destination: &c.DryRun,
			Sources:     cli.EnvVars("INPUT_DRY-RUN"),
		},
		&cli.BoolFlag{
			Name:        "dry-run-on-non-default-branch",
			Usage:       "Force dry-run when not on the default branch",
			Value:       true,
			Destination: &c.DryRunOnNonDefaultBranch,
			Sources:     cli.EnvVars("INPUT_DRY-RUN-ON-NON-DEFAULT-BRANCH"),
		},
		&cli.StringFlag{
			Name:        "cog-bump-args",
			Usage:       "Extra arguments passed to cog bump",
			Destination: &c.BumpArgs,
			Sources:     cli.EnvVars("INPUT_COG_BUMP_ARGS"),
		},
		&cli.StringFlag{
			Name:        "cog-changelog-args",
			Usage:       "Extra arguments passed to cog changelog",
			Destination: &c.ChangelogArgs,
			Sources:     cli.EnvVars("INPUT_COG_CHANGELOG_ARGS"),
		},
		&cli.StringFlag{
			Name:        "remote",
			Usage:       "Forge host for changelog links (defaults to the server URL host)",
			Destination: &c.Remote,
			Sources:     cli.EnvVars("INPUT_REMOTE"),
		},
		&cli.StringFlag{
			Name:        "owner",
			Usage:       "Repository owner (defaults to the runner environment)",
			Destination: &c.Owner,
			Sources:     cli.EnvVars("INPUT_OWNER"),
		},
		&cli.StringFlag{
			Name:        "repo",
			Usage:       "Repository name (defaults to the runner environment)",
			Destination: &c.Repo,
			Sources:     cli.EnvVars("INPUT_REPO"),
		},
		&cli.BoolFlag{
			Name:        "create-forgejo-release",
			Usage:       "Create a Forgejo release after a successful bump",
			Value:       true,
			Destination: &c.CreateForgejoRelease,
			Sources:     cli.EnvVars("INPUT_CREATE-FORGEJO-RELEASE"),
		},
		&cli.BoolFlag{
			Name:        "update-cog-toml",
			Usage:       "Write missing changelog coordinates into cog.toml",
			Value:       true,
			Destination: &c.UpdateCogConfig,
			Sources:     cli.EnvVars("INPUT_UPDATE_COG_TOML"),
		},
		&cli.StringFlag{
			Name:        "server-url",
			Usage:       "Forge base URL provided by the runner",
			Destination: &c.ServerURL,
			Sources:     cli.EnvVars("GITHUB_SERVER_URL"),
		},
		&cli.StringFlag{
			Name:        "repository",
			Usage:       "owner/repo value provided by the runner",
			Destination: &c.Repository,
			Sources:     cli.EnvVars("GITHUB_REPOSITORY"),
		},
		&cli.StringFlag{
			Name:        "repository-owner",
			Usage:       "Repository owner provided by the runner",
			Destination: &c.RepositoryOwner,
			Sources:     cli.EnvVars("GITHUB_REPOSITORY_OWNER"),
		},
		&cli.StringFlag{
			Name:        "head-ref",
			Usage:       "Head ref provided by the runner",
			Destination: &c.HeadRef,
			Sources:     cli.EnvVars("GITHUB_HEAD_REF"),
		},
		&cli.StringFlag{
			Name:        "base-ref",
			Usage:       "Base ref provided by the runner",
			Destination: &c.BaseRef,
			Sources:     cli.EnvVars("GITHUB_BASE_REF"),
		},
		&cli.StringFlag{
			Name:        "output-file",
			Usage:       "Path of the runner's step output file",
			Destination: &c.OutputFile,
			Sources:     cli.EnvVars("GITHUB_OUTPUT"),
		},
	}
}

// Resolve builds the immutable pipeline inputs, backfilling empty
// coordinates from the runner environment values. Empty results are valid
// and propagate as empty.
func (c *Action) Resolve() *model.Inputs {
	coords := model.Coordinates{
		Remote: c.Remote,
		Owner:  c.Owner,
		Repo:   c.Repo,
	}
	if coords.Remote == "" {
		coords.Remote = hostOf(c.ServerURL)
	}
	if coords.Owner == "" {
		coords.Owner = c.RepositoryOwner
	}
	if coords.Repo == "" {
		coords.Repo = repoNameOf(c.Repository)
	}

	return &model.Inputs{
		WorkingDir:               c.WorkingDir,
		ExplicitDryRun:           c.DryRun,
		DryRunOnNonDefaultBranch: c.DryRunOnNonDefaultBranch,
		BumpArgs:                 c.BumpArgs,
		ChangelogArgs:            c.ChangelogArgs,
		CreateRelease:            c.CreateForgejoRelease,
		UpdateCogConfig:          c.UpdateCogConfig,
		Coordinates:              coords,
		HeadRef:                  c.HeadRef,
		BaseRef:                  c.BaseRef,
	}
}

// hostOf strips the scheme from a base URL, keeping everything after "://"
func hostOf(serverURL string) string {
	if i := strings.Index(serverURL, "://"); i >= 0 {
		return serverURL[i+len("://"):]
	}
	return serverURL
}

// repoNameOf extracts the repository name from an "owner/repo" value
func repoNameOf(repository string) string {
	if i := strings.Index(repository, "/"); i >= 0 {
		return repository[i+1:]
	}
	return repository
}
