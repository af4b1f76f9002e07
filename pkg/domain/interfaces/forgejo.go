package interfaces

import (
	"context"

	"github.com/m-mizutani/cogrelease/pkg/domain/model"
)

// ForgejoClient defines the one forge API operation the pipeline needs
type ForgejoClient interface {
	// CreateRelease creates a release for owner/repo and returns the
	// resulting record
	CreateRelease(ctx context.Context, owner, repo string, req *model.CreateReleaseRequest) (*model.Release, error)
}

// ForgejoClientFactory builds a ForgejoClient once the server URL and token
// have been resolved. Injected so the pipeline can be tested without a
// network.
type ForgejoClientFactory func(baseURL, token string) ForgejoClient
