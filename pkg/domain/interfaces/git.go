package interfaces

import "context"

// GitClient is a narrow capability interface over the git CLI so the
// orchestration logic can be tested against a fake implementation.
type GitClient interface {
	// Stage adds the given paths to the index
	Stage(ctx context.Context, paths ...string) error

	// HasStagedChanges reports whether the index differs from HEAD.
	// `git diff --cached --quiet` exits non-zero when there IS a
	// difference; that exit code maps to true here.
	HasStagedChanges(ctx context.Context) (bool, error)

	// Commit records the staged changes with the given message
	Commit(ctx context.Context, message string) error

	// Push pushes the current HEAD to origin
	Push(ctx context.Context) error

	// Status returns `git status` output for diagnostics
	Status(ctx context.Context) (string, error)

	// Diff returns `git diff` output for diagnostics
	Diff(ctx context.Context) (string, error)
}
