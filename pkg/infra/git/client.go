package git

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/m-mizutani/cogrelease/pkg/domain/interfaces"
	"github.com/m-mizutani/cogrelease/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

type client struct {
	dir string
}

// New creates a GitClient running commands in dir. An empty dir means the
// process working directory.
func New(dir string) interfaces.GitClient {
	return &client{dir: dir}
}

func (c *client) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = c.dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return stdout.String(), goerr.Wrap(types.ErrCommandFailed, "git command failed",
			goerr.V("args", args),
			goerr.V("stderr", strings.TrimSpace(stderr.String())),
			goerr.V("cause", err.Error()),
		)
	}

	return stdout.String(), nil
}

// Stage adds paths to the index
func (c *client) Stage(ctx context.Context, paths ...string) error {
	_, err := c.run(ctx, append([]string{"add"}, paths...)...)
	return err
}

// HasStagedChanges reports whether the index differs from HEAD. The quiet
// diff exits non-zero exactly when a difference exists, so an exit error is
// the positive case, not a failure.
func (c *client) HasStagedChanges(ctx context.Context) (bool, error) {
	cmd := exec.CommandContext(ctx, "git", "diff", "--cached", "--quiet")
	cmd.Dir = c.dir

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return true, nil
		}
		return false, goerr.Wrap(err, "failed to run git diff --cached")
	}

	return false, nil
}

// Commit records staged changes with the given message
func (c *client) Commit(ctx context.Context, message string) error {
	_, err := c.run(ctx, "commit", "-m", message)
	return err
}

// Push pushes HEAD to origin
func (c *client) Push(ctx context.Context) error {
	_, err := c.run(ctx, "push", "origin", "HEAD")
	return err
}

// Status returns `git status` output
func (c *client) Status(ctx context.Context) (string, error) {
	return c.run(ctx, "status")
}

// Diff returns `git diff` output
func (c *client) Diff(ctx context.Context) (string, error) {
	return c.run(ctx, "diff")
}
