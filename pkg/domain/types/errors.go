package types

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrConfigNotFound indicates cog.toml is missing. This is the only
	// pipeline-fatal error: later steps cannot paper over a repository
	// that is not set up for cocogitto.
	ErrConfigNotFound = goerr.New("cog.toml not found")

	// ErrCommandFailed indicates an external tool exited non-zero. The
	// orchestrator decides per step whether this aborts the run.
	ErrCommandFailed = goerr.New("external command failed")
)
