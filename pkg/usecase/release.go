package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/cogrelease/pkg/domain/interfaces"
	"github.com/m-mizutani/cogrelease/pkg/domain/model"
	"github.com/m-mizutani/cogrelease/pkg/domain/types"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// commitMessage is used when the synchronizer pushes a cog.toml correction
const commitMessage = "chore: update cog.toml with remote/owner/repo [skip ci]"

// Release orchestrates one release run. It is the single place deciding
// which step failures abort the pipeline (only config synchronization) and
// which are logged and replaced by a benign default.
type Release struct {
	cog     interfaces.CogClient
	git     interfaces.GitClient
	outputs interfaces.OutputWriter

	newForgejo        interfaces.ForgejoClientFactory
	token             string
	serverURL         string // explicit override
	fallbackServerURL string // forge-provided default
	notifier          interfaces.Notifier
	configPath        string // overrides the working-dir cog.toml, for tests
}

// Option is a functional option for Release configuration
type Option func(*Release)

// WithForgejo sets the release publisher's credentials and server URLs
func WithForgejo(factory interfaces.ForgejoClientFactory, token, serverURL, fallbackServerURL string) Option {
	return func(r *Release) {
		r.newForgejo = factory
		r.token = token
		r.serverURL = serverURL
		r.fallbackServerURL = fallbackServerURL
	}
}

// WithNotifier sets an optional release announcement channel
func WithNotifier(notifier interfaces.Notifier) Option {
	return func(r *Release) {
		r.notifier = notifier
	}
}

// WithCogConfigPath overrides the cog.toml location
func WithCogConfigPath(path string) Option {
	return func(r *Release) {
		r.configPath = path
	}
}

// NewRelease creates the release pipeline use case
func NewRelease(cogClient interfaces.CogClient, gitClient interfaces.GitClient, outputs interfaces.OutputWriter, opts ...Option) *Release {
	r := &Release{
		cog:     cogClient,
		git:     gitClient,
		outputs: outputs,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run executes the pipeline strictly top to bottom: coordinate outputs,
// dry-run decision, config synchronization, version bump, changelog
// generation, release publication. It returns an error only for the
// pipeline-fatal config synchronization path.
func (uc *Release) Run(ctx context.Context, inputs *model.Inputs) error {
	logger := ctxlog.From(ctx)
	coords := inputs.Coordinates

	logger.Info("starting release pipeline",
		"remote", coords.Remote,
		"owner", coords.Owner,
		"repo", coords.Repo,
		"working_dir", inputs.WorkingDir,
	)

	uc.setOutput(ctx, "remote", coords.Remote)
	uc.setOutput(ctx, "owner", coords.Owner)
	uc.setOutput(ctx, "repo", coords.Repo)

	dryRun := DecideDryRun(inputs)
	if dryRun.Enabled() {
		logger.Info("dry-run enabled", "section", "dry-run", "on_default_branch", inputs.OnDefaultBranch())
	} else {
		logger.Info("dry-run disabled", "section", "dry-run")
	}
	uc.setOutput(ctx, "dry_run_arg", dryRun.Arg())

	if inputs.UpdateCogConfig {
		if err := uc.syncConfig(ctx, inputs); err != nil {
			return goerr.Wrap(err, "cog configuration setup failed")
		}
	}

	versions := model.VersionPair{
		Previous: uc.queryVersion(ctx, inputs.WorkingDir),
	}
	uc.setOutput(ctx, "previous_version", versions.Previous)

	uc.bump(ctx, inputs, dryRun)

	versions.Current = uc.queryVersion(ctx, inputs.WorkingDir)
	uc.setOutput(ctx, "current_version", versions.Current)

	changelog := uc.generateChangelog(ctx, inputs, versions.Current)
	uc.setOutput(ctx, "changelog", changelog)

	if inputs.CreateRelease && versions.Current != "" {
		if release := uc.publishRelease(ctx, coords, versions.Current, changelog); release != nil {
			if encoded, err := json.Marshal(release); err != nil {
				logger.Warn("failed to encode release record", "error", err)
			} else {
				uc.setOutput(ctx, "forgejo_release_output", string(encoded))
			}
			uc.notify(ctx, coords, release)
		}
	} else if versions.Current == "" {
		logger.Info("no version available, skipping release creation", "section", "release")
	} else {
		logger.Info("release creation disabled, skipping", "section", "release")
	}

	logger.Info("release pipeline completed",
		"previous_version", versions.Previous,
		"current_version", versions.Current,
	)
	return nil
}

func (uc *Release) cogConfigPath(inputs *model.Inputs) string {
	if uc.configPath != "" {
		return uc.configPath
	}
	return filepath.Join(inputs.WorkingDir, types.CogConfigFile)
}

// syncConfig ensures cog.toml declares the repository coordinates and
// commits a correction when one was written. A missing or malformed
// cog.toml is pipeline-fatal; a failing commit or push is not, since it
// usually means a concurrent run already pushed the same fix.
func (uc *Release) syncConfig(ctx context.Context, inputs *model.Inputs) error {
	logger := ctxlog.From(ctx)
	coords := inputs.Coordinates
	path := uc.cogConfigPath(inputs)

	changed, err := SyncCogConfig(path, &coords.Remote, &coords.Repo, &coords.Owner)
	if err != nil {
		return err
	}

	if !changed {
		logger.Info("all changelog configuration values already exist in cog.toml", "section", "cog-config")
		return nil
	}

	logger.Info("added missing changelog configuration values to cog.toml", "section", "cog-config")

	if err := uc.git.Stage(ctx, types.CogConfigFile); err != nil {
		return goerr.Wrap(err, "failed to stage cog.toml")
	}

	staged, err := uc.git.HasStagedChanges(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to inspect staged changes")
	}
	if !staged {
		logger.Info("no changes to cog.toml", "section", "cog-config")
		return nil
	}

	if err := uc.git.Commit(ctx, commitMessage); err != nil {
		logger.Info("no changes to commit or push failed", "section", "cog-config", "error", err)
		return nil
	}
	if err := uc.git.Push(ctx); err != nil {
		logger.Info("no changes to commit or push failed", "section", "cog-config", "error", err)
		return nil
	}

	logger.Info("committed and pushed cog.toml changes", "section", "cog-config")
	return nil
}

// queryVersion asks cog for the current version. A failing query means "no
// version" rather than an error.
func (uc *Release) queryVersion(ctx context.Context, dir string) string {
	logger := ctxlog.From(ctx)

	version, err := uc.cog.GetVersion(ctx, dir)
	if err != nil {
		logger.Warn("failed to query current version", "section", "version", "error", err)
		return ""
	}

	logger.Info("current version", "section", "version", "version", version)
	return version
}

// bump runs `cog bump` in non-strict mode: a non-zero exit is an expected
// "nothing to release" outcome and never aborts the pipeline. Repository
// status and diff are logged afterwards for operator diagnostics.
func (uc *Release) bump(ctx context.Context, inputs *model.Inputs, dryRun model.DryRun) bool {
	logger := ctxlog.From(ctx)

	var args []string
	if extra := strings.TrimSpace(inputs.BumpArgs); extra != "" {
		args = append(args, strings.Fields(extra)...)
	}
	if dryRun.Enabled() {
		args = append(args, dryRun.Arg())
	}
	args = append(args, "--auto", "--skip-ci")

	logger.Info("running version bump", "section", "bump", "args", args)

	output, err := uc.cog.Bump(ctx, inputs.WorkingDir, args)
	succeeded := err == nil
	if succeeded {
		logger.Info("version bump successful", "section", "bump", slog.String("output", output))
	} else {
		logger.Warn("version bump returned non-zero exit code", "section", "bump", "error", err)
	}

	if status, err := uc.git.Status(ctx); err == nil && status != "" {
		logger.Info("git status", "section", "bump", slog.String("output", status))
	}
	if diff, err := uc.git.Diff(ctx); err == nil && diff != "" {
		logger.Info("git diff", "section", "bump", slog.String("output", diff))
	}

	return succeeded
}

// generateChangelog runs `cog changelog` scoped to the bumped tag.
// Generation failure yields an empty body rather than blocking release
// creation.
func (uc *Release) generateChangelog(ctx context.Context, inputs *model.Inputs, version string) string {
	logger := ctxlog.From(ctx)
	coords := inputs.Coordinates

	var args []string
	if extra := strings.TrimSpace(inputs.ChangelogArgs); extra != "" {
		args = append(args, strings.Fields(extra)...)
	}
	if coords.Complete() {
		args = append(args, "--remote", coords.Remote, "--owner", coords.Owner, "--repository", coords.Repo)
	}
	if version != "" {
		tag := ReadTagPrefix(uc.cogConfigPath(inputs)) + version
		args = append(args, "--at", tag)
	}

	logger.Info("generating changelog", "section", "changelog", "args", args)

	changelog, err := uc.cog.Changelog(ctx, inputs.WorkingDir, args)
	if err != nil {
		logger.Error("failed to generate changelog", "section", "changelog", "error", err)
		return ""
	}

	logger.Info("changelog generated successfully", "section", "changelog")
	return changelog
}

// publishRelease creates the forge release. Every unmet precondition and
// any API failure is logged and converted to a nil result; none of them
// abort the run.
func (uc *Release) publishRelease(ctx context.Context, coords model.Coordinates, version, changelog string) *model.Release {
	logger := ctxlog.From(ctx)

	if uc.token == "" {
		logger.Error("forgejo token is not set", "section", "release")
		return nil
	}

	serverURL := uc.serverURL
	if serverURL == "" {
		serverURL = uc.fallbackServerURL
	}
	if serverURL == "" {
		logger.Error("no forgejo server URL available", "section", "release")
		return nil
	}
	serverURL = NormalizeServerURL(serverURL)

	if uc.newForgejo == nil {
		logger.Error("forgejo client is not configured", "section", "release")
		return nil
	}

	logger.Info("creating forgejo release",
		"section", "release",
		"owner", coords.Owner,
		"repo", coords.Repo,
		"version", version,
	)

	client := uc.newForgejo(serverURL, uc.token)
	release, err := client.CreateRelease(ctx, coords.Owner, coords.Repo, &model.CreateReleaseRequest{
		TagName: version,
		Name:    version,
		Body:    changelog,
	})
	if err != nil {
		logger.Error("failed to create forgejo release", "section", "release", "error", err)
		return nil
	}

	logger.Info("forgejo release created successfully", "section", "release", "url", release.HTMLURL)
	return release
}

func (uc *Release) notify(ctx context.Context, coords model.Coordinates, release *model.Release) {
	if uc.notifier == nil {
		return
	}

	logger := ctxlog.From(ctx)
	if err := uc.notifier.NotifyRelease(ctx, coords, release); err != nil {
		logger.Warn("failed to send release notification", "section", "release", "error", err)
	}
}

func (uc *Release) setOutput(ctx context.Context, name, value string) {
	if err := uc.outputs.Set(name, value); err != nil {
		ctxlog.From(ctx).Warn("failed to write action output", "name", name, "error", err)
	}
}

// NormalizeServerURL ensures the server URL carries a scheme, defaulting to
// HTTPS when none is given.
func NormalizeServerURL(serverURL string) string {
	if strings.HasPrefix(serverURL, "http://") || strings.HasPrefix(serverURL, "https://") {
		return serverURL
	}
	return "https://" + serverURL
}
