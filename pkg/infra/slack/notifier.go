package slack

import (
	"context"
	"fmt"

	"github.com/m-mizutani/cogrelease/pkg/domain/interfaces"
	"github.com/m-mizutani/cogrelease/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	slackgo "github.com/slack-go/slack"
)

type notifier struct {
	webhookURL string
}

// New creates a Notifier posting release announcements to a Slack incoming
// webhook
func New(webhookURL string) interfaces.Notifier {
	return &notifier{webhookURL: webhookURL}
}

// NotifyRelease posts a short announcement for the created release
func (n *notifier) NotifyRelease(ctx context.Context, coords model.Coordinates, release *model.Release) error {
	msg := &slackgo.WebhookMessage{
		Text: fmt.Sprintf("Released %s/%s %s: %s", coords.Owner, coords.Repo, release.TagName, release.HTMLURL),
	}

	if err := slackgo.PostWebhookContext(ctx, n.webhookURL, msg); err != nil {
		return goerr.Wrap(err, "failed to post release notification",
			goerr.V("owner", coords.Owner),
			goerr.V("repo", coords.Repo),
			goerr.V("tag", release.TagName),
		)
	}

	return nil
}
