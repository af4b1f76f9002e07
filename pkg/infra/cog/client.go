package cog

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/m-mizutani/cogrelease/pkg/domain/interfaces"
	"github.com/m-mizutani/cogrelease/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

type client struct {
	bin string
}

// New creates a client that shells out to the cocogitto CLI
func New() interfaces.CogClient {
	return &client{bin: "cog"}
}

// run executes a cog subcommand in dir and returns trimmed stdout. A
// non-zero exit is wrapped as types.ErrCommandFailed with stderr attached;
// stdout captured so far is still returned.
func (c *client) run(ctx context.Context, dir string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, c.bin, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return strings.TrimSpace(stdout.String()), goerr.Wrap(types.ErrCommandFailed, "cog command failed",
			goerr.V("args", args),
			goerr.V("stderr", strings.TrimSpace(stderr.String())),
			goerr.V("cause", err.Error()),
		)
	}

	return strings.TrimSpace(stdout.String()), nil
}

// GetVersion returns the current version via `cog get-version`
func (c *client) GetVersion(ctx context.Context, dir string) (string, error) {
	return c.run(ctx, dir, []string{"get-version"})
}

// Bump runs `cog bump` with the given arguments
func (c *client) Bump(ctx context.Context, dir string, args []string) (string, error) {
	return c.run(ctx, dir, append([]string{"bump"}, args...))
}

// Changelog runs `cog changelog` with the given arguments
func (c *client) Changelog(ctx context.Context, dir string, args []string) (string, error) {
	return c.run(ctx, dir, append([]string{"changelog"}, args...))
}
