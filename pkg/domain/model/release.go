package model

// Coordinates identifies a repository on the forge. Any field may be empty;
// emptiness propagates rather than failing resolution.
type Coordinates struct {
	Remote string // Forge host, e.g. "codeberg.org"
	Owner  string // Repository owner
	Repo   string // Repository name
}

// Complete reports whether all three coordinate fields are non-empty.
// Partial coordinates are considered useless for changelog generation and
// are omitted rather than sent malformed.
func (c Coordinates) Complete() bool {
	return c.Remote != "" && c.Owner != "" && c.Repo != ""
}

// Inputs is the fully resolved action configuration. Built once at startup
// and never mutated afterwards.
type Inputs struct {
	WorkingDir               string
	ExplicitDryRun           bool
	DryRunOnNonDefaultBranch bool
	BumpArgs                 string
	ChangelogArgs            string
	CreateRelease            bool
	UpdateCogConfig          bool
	Coordinates              Coordinates

	// HeadRef and BaseRef come from the runner environment; the run is
	// considered to be on the default branch when they are equal.
	HeadRef string
	BaseRef string
}

// OnDefaultBranch reports whether this run targets the default branch.
func (i *Inputs) OnDefaultBranch() bool {
	return i.HeadRef == i.BaseRef
}

// DryRun is the outcome of the dry-run decision, computed once per run.
type DryRun bool

// Enabled reports whether the pipeline runs in dry-run mode.
func (d DryRun) Enabled() bool {
	return bool(d)
}

// Arg returns the decision as a command line token ready to splice into a
// cog invocation: "--dry-run" when enabled, empty string otherwise.
func (d DryRun) Arg() string {
	if d {
		return "--dry-run"
	}
	return ""
}

// VersionPair holds the version reported by cog before and after the bump.
// Either side may be empty when the query failed; that is not fatal.
type VersionPair struct {
	Previous string
	Current  string
}

// Release is the release record created on the forge. Serialized as the
// forgejo_release_output action output.
type Release struct {
	TagName string `json:"tag_name"`
	Name    string `json:"name"`
	Body    string `json:"body"`
	HTMLURL string `json:"html_url"`
	ID      int64  `json:"id"`
}

// CreateReleaseRequest is the payload for the forge's create-release API.
type CreateReleaseRequest struct {
	TagName string `json:"tag_name"`
	Name    string `json:"name"`
	Body    string `json:"body"`
}
