package interfaces

import "context"

// CogClient defines operations against the cocogitto CLI. The bump and
// changelog algorithms themselves are opaque; only the invocation contract
// matters here.
type CogClient interface {
	// GetVersion returns the current version known to cog (read-only query)
	GetVersion(ctx context.Context, dir string) (string, error)

	// Bump runs `cog bump` with the given arguments and returns its stdout.
	// Output is returned even when the command exits non-zero.
	Bump(ctx context.Context, dir string, args []string) (string, error)

	// Changelog runs `cog changelog` with the given arguments and returns
	// the generated changelog body
	Changelog(ctx context.Context, dir string, args []string) (string, error)
}
