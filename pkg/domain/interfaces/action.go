package interfaces

import (
	"context"

	"github.com/m-mizutani/cogrelease/pkg/domain/model"
)

// OutputWriter emits named action outputs for downstream workflow steps
type OutputWriter interface {
	Set(name, value string) error
}

// Notifier announces a created release to an external channel
type Notifier interface {
	NotifyRelease(ctx context.Context, coords model.Coordinates, release *model.Release) error
}
