package usecase

import "github.com/m-mizutani/cogrelease/pkg/domain/model"

// DecideDryRun evaluates the two dry-run triggers against the branch state.
// The explicit flag takes precedence: when set it fires only on the default
// branch, and it suppresses the non-default-branch trigger entirely. The
// non-default-branch trigger protects feature branches from accidental
// publishing.
func DecideDryRun(inputs *model.Inputs) model.DryRun {
	switch {
	case inputs.ExplicitDryRun:
		return model.DryRun(inputs.OnDefaultBranch())
	case inputs.DryRunOnNonDefaultBranch:
		return model.DryRun(!inputs.OnDefaultBranch())
	default:
		return model.DryRun(false)
	}
}
