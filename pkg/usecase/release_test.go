package usecase_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"slices"
	"testing"

	"github.com/m-mizutani/cogrelease/pkg/domain/interfaces"
	"github.com/m-mizutani/cogrelease/pkg/domain/model"
	"github.com/m-mizutani/cogrelease/pkg/domain/types"
	"github.com/m-mizutani/cogrelease/pkg/usecase"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/gt"
)

// MockCogClient is a mock implementation of CogClient
type MockCogClient struct {
	getVersionFunc func(ctx context.Context, dir string) (string, error)
	bumpFunc       func(ctx context.Context, dir string, args []string) (string, error)
	changelogFunc  func(ctx context.Context, dir string, args []string) (string, error)

	bumpCalls      [][]string
	changelogCalls [][]string
}

func (m *MockCogClient) GetVersion(ctx context.Context, dir string) (string, error) {
	if m.getVersionFunc != nil {
		return m.getVersionFunc(ctx, dir)
	}
	return "", errors.New("mock not configured")
}

func (m *MockCogClient) Bump(ctx context.Context, dir string, args []string) (string, error) {
	m.bumpCalls = append(m.bumpCalls, args)
	if m.bumpFunc != nil {
		return m.bumpFunc(ctx, dir, args)
	}
	return "", nil
}

func (m *MockCogClient) Changelog(ctx context.Context, dir string, args []string) (string, error) {
	m.changelogCalls = append(m.changelogCalls, args)
	if m.changelogFunc != nil {
		return m.changelogFunc(ctx, dir, args)
	}
	return "", nil
}

// MockGitClient is a mock implementation of GitClient
type MockGitClient struct {
	hasStagedChanges bool
	commitErr        error
	pushErr          error

	stagedPaths []string
	commits     []string
	pushed      int
}

func (m *MockGitClient) Stage(ctx context.Context, paths ...string) error {
	m.stagedPaths = append(m.stagedPaths, paths...)
	return nil
}

func (m *MockGitClient) HasStagedChanges(ctx context.Context) (bool, error) {
	return m.hasStagedChanges, nil
}

func (m *MockGitClient) Commit(ctx context.Context, message string) error {
	if m.commitErr != nil {
		return m.commitErr
	}
	m.commits = append(m.commits, message)
	return nil
}

func (m *MockGitClient) Push(ctx context.Context) error {
	if m.pushErr != nil {
		return m.pushErr
	}
	m.pushed++
	return nil
}

func (m *MockGitClient) Status(ctx context.Context) (string, error) {
	return "", nil
}

func (m *MockGitClient) Diff(ctx context.Context) (string, error) {
	return "", nil
}

// MockForgejoClient is a mock implementation of ForgejoClient
type MockForgejoClient struct {
	createFunc func(ctx context.Context, owner, repo string, req *model.CreateReleaseRequest) (*model.Release, error)
	calls      []*model.CreateReleaseRequest
}

func (m *MockForgejoClient) CreateRelease(ctx context.Context, owner, repo string, req *model.CreateReleaseRequest) (*model.Release, error) {
	m.calls = append(m.calls, req)
	if m.createFunc != nil {
		return m.createFunc(ctx, owner, repo, req)
	}
	return &model.Release{
		TagName: req.TagName,
		Name:    req.Name,
		Body:    req.Body,
		HTMLURL: "https://git.example.com/acme/proj/releases/tag/" + req.TagName,
		ID:      42,
	}, nil
}

// MockNotifier is a mock implementation of Notifier
type MockNotifier struct {
	err   error
	calls []*model.Release
}

func (m *MockNotifier) NotifyRelease(ctx context.Context, coords model.Coordinates, release *model.Release) error {
	m.calls = append(m.calls, release)
	return m.err
}

// MemoryOutput records emitted action outputs
type MemoryOutput struct {
	values map[string]string
}

func NewMemoryOutput() *MemoryOutput {
	return &MemoryOutput{values: map[string]string{}}
}

func (m *MemoryOutput) Set(name, value string) error {
	m.values[name] = value
	return nil
}

func testInputs() *model.Inputs {
	return &model.Inputs{
		WorkingDir:    ".",
		CreateRelease: true,
		Coordinates: model.Coordinates{
			Remote: "git.example.com",
			Owner:  "acme",
			Repo:   "proj",
		},
		HeadRef: "main",
		BaseRef: "main",
	}
}

func newPipeline(cogClient *MockCogClient, gitClient *MockGitClient, forgejoClient *MockForgejoClient, outputs *MemoryOutput, token string) *usecase.Release {
	factory := func(baseURL, token string) interfaces.ForgejoClient {
		return forgejoClient
	}
	return usecase.NewRelease(cogClient, gitClient, outputs,
		usecase.WithForgejo(factory, token, "https://git.example.com", ""),
	)
}

func TestRelease_BumpFailureIsNonFatal(t *testing.T) {
	ctx := context.Background()

	cogClient := &MockCogClient{
		getVersionFunc: func(ctx context.Context, dir string) (string, error) {
			return "1.2.3", nil
		},
		bumpFunc: func(ctx context.Context, dir string, args []string) (string, error) {
			return "", errors.New("exit status 1")
		},
		changelogFunc: func(ctx context.Context, dir string, args []string) (string, error) {
			return "## 1.2.3", nil
		},
	}
	forgejoClient := &MockForgejoClient{}
	outputs := NewMemoryOutput()

	uc := newPipeline(cogClient, &MockGitClient{}, forgejoClient, outputs, "secret")

	gt.NoError(t, uc.Run(ctx, testInputs()))

	// The pipeline continued past the failed bump
	gt.Value(t, outputs.values["previous_version"]).Equal("1.2.3")
	gt.Value(t, outputs.values["current_version"]).Equal("1.2.3")
	gt.Value(t, len(forgejoClient.calls)).Equal(1)
	gt.Value(t, forgejoClient.calls[0].TagName).Equal("1.2.3")

	var record model.Release
	gt.NoError(t, json.Unmarshal([]byte(outputs.values["forgejo_release_output"]), &record))
	gt.Value(t, record.TagName).Equal("1.2.3")
	gt.Value(t, record.ID).Equal(int64(42))
}

func TestRelease_NoVersionSkipsPublish(t *testing.T) {
	ctx := context.Background()

	cogClient := &MockCogClient{
		getVersionFunc: func(ctx context.Context, dir string) (string, error) {
			return "", errors.New("no tag yet")
		},
	}
	forgejoClient := &MockForgejoClient{}
	outputs := NewMemoryOutput()

	uc := newPipeline(cogClient, &MockGitClient{}, forgejoClient, outputs, "secret")

	gt.NoError(t, uc.Run(ctx, testInputs()))
	gt.Value(t, len(forgejoClient.calls)).Equal(0)
	gt.Value(t, outputs.values["current_version"]).Equal("")

	_, exists := outputs.values["forgejo_release_output"]
	gt.Value(t, exists).Equal(false)
}

func TestRelease_ChangelogFailureYieldsEmptyBody(t *testing.T) {
	ctx := context.Background()

	cogClient := &MockCogClient{
		getVersionFunc: func(ctx context.Context, dir string) (string, error) {
			return "2.0.0", nil
		},
		changelogFunc: func(ctx context.Context, dir string, args []string) (string, error) {
			return "", errors.New("exit status 1")
		},
	}
	forgejoClient := &MockForgejoClient{}
	outputs := NewMemoryOutput()

	uc := newPipeline(cogClient, &MockGitClient{}, forgejoClient, outputs, "secret")

	gt.NoError(t, uc.Run(ctx, testInputs()))
	gt.Value(t, outputs.values["changelog"]).Equal("")

	// Release creation still happens, with an empty body
	gt.Value(t, len(forgejoClient.calls)).Equal(1)
	gt.Value(t, forgejoClient.calls[0].Body).Equal("")
}

func TestRelease_MissingTokenSkipsPublish(t *testing.T) {
	ctx := context.Background()

	cogClient := &MockCogClient{
		getVersionFunc: func(ctx context.Context, dir string) (string, error) {
			return "1.0.0", nil
		},
	}
	forgejoClient := &MockForgejoClient{}
	outputs := NewMemoryOutput()

	uc := newPipeline(cogClient, &MockGitClient{}, forgejoClient, outputs, "")

	gt.NoError(t, uc.Run(ctx, testInputs()))
	gt.Value(t, len(forgejoClient.calls)).Equal(0)

	_, exists := outputs.values["forgejo_release_output"]
	gt.Value(t, exists).Equal(false)
}

func TestRelease_PublishErrorIsSwallowed(t *testing.T) {
	ctx := context.Background()

	cogClient := &MockCogClient{
		getVersionFunc: func(ctx context.Context, dir string) (string, error) {
			return "1.0.0", nil
		},
	}
	forgejoClient := &MockForgejoClient{
		createFunc: func(ctx context.Context, owner, repo string, req *model.CreateReleaseRequest) (*model.Release, error) {
			return nil, errors.New("connection refused")
		},
	}
	outputs := NewMemoryOutput()

	uc := newPipeline(cogClient, &MockGitClient{}, forgejoClient, outputs, "secret")

	gt.NoError(t, uc.Run(ctx, testInputs()))
	gt.Value(t, len(forgejoClient.calls)).Equal(1)

	_, exists := outputs.values["forgejo_release_output"]
	gt.Value(t, exists).Equal(false)
}

func TestRelease_ConfigSyncFailureIsFatal(t *testing.T) {
	ctx := context.Background()

	cogClient := &MockCogClient{
		getVersionFunc: func(ctx context.Context, dir string) (string, error) {
			return "1.0.0", nil
		},
	}
	forgejoClient := &MockForgejoClient{}

	inputs := testInputs()
	inputs.UpdateCogConfig = true
	inputs.WorkingDir = t.TempDir() // no cog.toml here

	uc := newPipeline(cogClient, &MockGitClient{}, forgejoClient, NewMemoryOutput(), "secret")

	err := uc.Run(ctx, inputs)
	gt.Error(t, err)
	gt.Value(t, errors.Is(err, types.ErrConfigNotFound)).Equal(true)

	// Nothing past the failed synchronization runs
	gt.Value(t, len(cogClient.bumpCalls)).Equal(0)
	gt.Value(t, len(forgejoClient.calls)).Equal(0)
}

func TestRelease_DryRunArgumentPassedToBump(t *testing.T) {
	ctx := context.Background()

	cogClient := &MockCogClient{
		getVersionFunc: func(ctx context.Context, dir string) (string, error) {
			return "1.0.0", nil
		},
	}
	outputs := NewMemoryOutput()

	inputs := testInputs()
	inputs.ExplicitDryRun = true
	inputs.BumpArgs = "  --build-number 7  "

	uc := newPipeline(cogClient, &MockGitClient{}, &MockForgejoClient{}, outputs, "secret")

	gt.NoError(t, uc.Run(ctx, inputs))
	gt.Value(t, outputs.values["dry_run_arg"]).Equal("--dry-run")

	gt.Value(t, len(cogClient.bumpCalls)).Equal(1)
	gt.Value(t, cogClient.bumpCalls[0]).Equal([]string{"--build-number", "7", "--dry-run", "--auto", "--skip-ci"})
}

func TestRelease_ChangelogScopedToTag(t *testing.T) {
	ctx := context.Background()

	cogClient := &MockCogClient{
		getVersionFunc: func(ctx context.Context, dir string) (string, error) {
			return "3.1.4", nil
		},
		changelogFunc: func(ctx context.Context, dir string, args []string) (string, error) {
			return "changelog body", nil
		},
	}
	outputs := NewMemoryOutput()

	configPath := writeCogToml(t, `tag_prefix = "v"`)

	factory := func(baseURL, token string) interfaces.ForgejoClient {
		return &MockForgejoClient{}
	}
	uc := usecase.NewRelease(cogClient, &MockGitClient{}, outputs,
		usecase.WithForgejo(factory, "secret", "https://git.example.com", ""),
		usecase.WithCogConfigPath(configPath),
	)

	gt.NoError(t, uc.Run(ctx, testInputs()))

	gt.Value(t, len(cogClient.changelogCalls)).Equal(1)
	args := cogClient.changelogCalls[0]
	gt.Value(t, args).Equal([]string{
		"--remote", "git.example.com",
		"--owner", "acme",
		"--repository", "proj",
		"--at", "v3.1.4",
	})
}

func TestRelease_PartialCoordinatesOmitted(t *testing.T) {
	ctx := context.Background()

	cogClient := &MockCogClient{
		getVersionFunc: func(ctx context.Context, dir string) (string, error) {
			return "1.0.0", nil
		},
	}
	outputs := NewMemoryOutput()

	inputs := testInputs()
	inputs.Coordinates.Remote = ""

	uc := newPipeline(cogClient, &MockGitClient{}, &MockForgejoClient{}, outputs, "secret")

	gt.NoError(t, uc.Run(ctx, inputs))

	args := cogClient.changelogCalls[0]
	gt.Value(t, slices.Contains(args, "--remote")).Equal(false)
	gt.Value(t, slices.Contains(args, "--owner")).Equal(false)
	gt.Value(t, slices.Contains(args, "--at")).Equal(true)
}

func TestRelease_ConfigSyncCommitsChanges(t *testing.T) {
	ctx := context.Background()

	cogClient := &MockCogClient{
		getVersionFunc: func(ctx context.Context, dir string) (string, error) {
			return "1.0.0", nil
		},
	}
	gitClient := &MockGitClient{hasStagedChanges: true}

	configPath := writeCogToml(t, `
[changelog]
path = "CHANGELOG.md"
`)

	inputs := testInputs()
	inputs.UpdateCogConfig = true

	factory := func(baseURL, token string) interfaces.ForgejoClient {
		return &MockForgejoClient{}
	}
	uc := usecase.NewRelease(cogClient, gitClient, NewMemoryOutput(),
		usecase.WithForgejo(factory, "secret", "https://git.example.com", ""),
		usecase.WithCogConfigPath(configPath),
	)

	gt.NoError(t, uc.Run(ctx, inputs))

	gt.Value(t, gitClient.stagedPaths).Equal([]string{"cog.toml"})
	gt.Value(t, len(gitClient.commits)).Equal(1)
	gt.String(t, gitClient.commits[0]).Contains("[skip ci]")
	gt.Value(t, gitClient.pushed).Equal(1)
}

func TestRelease_ConfigSyncPushFailureIsNonFatal(t *testing.T) {
	ctx := context.Background()

	cogClient := &MockCogClient{
		getVersionFunc: func(ctx context.Context, dir string) (string, error) {
			return "1.0.0", nil
		},
	}
	gitClient := &MockGitClient{
		hasStagedChanges: true,
		pushErr:          errors.New("remote rejected"),
	}

	configPath := writeCogToml(t, `
[changelog]
path = "CHANGELOG.md"
`)

	inputs := testInputs()
	inputs.UpdateCogConfig = true

	factory := func(baseURL, token string) interfaces.ForgejoClient {
		return &MockForgejoClient{}
	}
	uc := usecase.NewRelease(cogClient, gitClient, NewMemoryOutput(),
		usecase.WithForgejo(factory, "secret", "https://git.example.com", ""),
		usecase.WithCogConfigPath(configPath),
	)

	// Push failure is "someone else already pushed", not a pipeline error
	gt.NoError(t, uc.Run(ctx, inputs))
	gt.Value(t, len(cogClient.bumpCalls)).Equal(1)
}

func TestRelease_CoordinateOutputsEmitted(t *testing.T) {
	ctx := context.Background()

	cogClient := &MockCogClient{
		getVersionFunc: func(ctx context.Context, dir string) (string, error) {
			return "1.0.0", nil
		},
	}
	outputs := NewMemoryOutput()

	uc := newPipeline(cogClient, &MockGitClient{}, &MockForgejoClient{}, outputs, "secret")

	gt.NoError(t, uc.Run(ctx, testInputs()))
	gt.Value(t, outputs.values["remote"]).Equal("git.example.com")
	gt.Value(t, outputs.values["owner"]).Equal("acme")
	gt.Value(t, outputs.values["repo"]).Equal("proj")
	gt.Value(t, outputs.values["dry_run_arg"]).Equal("")
}

func TestRelease_CreationDisabledIsLogged(t *testing.T) {
	var logBuf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuf, nil))
	ctx := ctxlog.With(context.Background(), logger)

	cogClient := &MockCogClient{
		getVersionFunc: func(ctx context.Context, dir string) (string, error) {
			return "1.0.0", nil
		},
	}
	forgejoClient := &MockForgejoClient{}
	outputs := NewMemoryOutput()

	inputs := testInputs()
	inputs.CreateRelease = false

	uc := newPipeline(cogClient, &MockGitClient{}, forgejoClient, outputs, "secret")

	gt.NoError(t, uc.Run(ctx, inputs))
	gt.Value(t, len(forgejoClient.calls)).Equal(0)
	gt.String(t, logBuf.String()).Contains("release creation disabled")

	_, exists := outputs.values["forgejo_release_output"]
	gt.Value(t, exists).Equal(false)
}

func TestRelease_NotifierCalledOnSuccess(t *testing.T) {
	ctx := context.Background()

	cogClient := &MockCogClient{
		getVersionFunc: func(ctx context.Context, dir string) (string, error) {
			return "1.0.0", nil
		},
	}
	forgejoClient := &MockForgejoClient{}
	notifier := &MockNotifier{}

	factory := func(baseURL, token string) interfaces.ForgejoClient {
		return forgejoClient
	}
	uc := usecase.NewRelease(cogClient, &MockGitClient{}, NewMemoryOutput(),
		usecase.WithForgejo(factory, "secret", "https://git.example.com", ""),
		usecase.WithNotifier(notifier),
	)

	gt.NoError(t, uc.Run(ctx, testInputs()))
	gt.Value(t, len(notifier.calls)).Equal(1)
	gt.Value(t, notifier.calls[0].TagName).Equal("1.0.0")
}

func TestRelease_NotifierFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()

	cogClient := &MockCogClient{
		getVersionFunc: func(ctx context.Context, dir string) (string, error) {
			return "1.0.0", nil
		},
	}
	forgejoClient := &MockForgejoClient{}
	notifier := &MockNotifier{err: errors.New("webhook unreachable")}
	outputs := NewMemoryOutput()

	factory := func(baseURL, token string) interfaces.ForgejoClient {
		return forgejoClient
	}
	uc := usecase.NewRelease(cogClient, &MockGitClient{}, outputs,
		usecase.WithForgejo(factory, "secret", "https://git.example.com", ""),
		usecase.WithNotifier(notifier),
	)

	// A failing notification never fails the run; the release output stays
	gt.NoError(t, uc.Run(ctx, testInputs()))
	gt.Value(t, len(notifier.calls)).Equal(1)

	_, exists := outputs.values["forgejo_release_output"]
	gt.Value(t, exists).Equal(true)
}

func TestNormalizeServerURL(t *testing.T) {
	gt.Value(t, usecase.NormalizeServerURL("git.example.com")).Equal("https://git.example.com")
	gt.Value(t, usecase.NormalizeServerURL("https://git.example.com")).Equal("https://git.example.com")
	gt.Value(t, usecase.NormalizeServerURL("http://git.example.com")).Equal("http://git.example.com")
}
