package notify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"

	"github.com/digione/xnatsync/pkg/domain/interfaces"
)

// Slack posts ready folders to an incoming webhook
type Slack struct {
	webhookURL string
	httpClient *http.Client
}

var _ interfaces.Notifier = (*Slack)(nil)

// NewSlack creates a notifier posting to webhookURL
func NewSlack(webhookURL string, httpClient *http.Client) *Slack {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Slack{webhookURL: webhookURL, httpClient: httpClient}
}

func (s *Slack) Publish(ctx context.Context, queue, folder string) error {
	text := fmt.Sprintf("New XNAT data is ready for `%s`: `%s`", queue, folder)
	msg := &slack.WebhookMessage{
		Text: text,
		Blocks: &slack.Blocks{
			BlockSet: []slack.Block{
				slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil),
				slack.NewContextBlock("",
					slack.NewTextBlockObject(slack.MarkdownType, "queue: "+queue, false, false),
				),
			},
		},
	}

	if err := slack.PostWebhookCustomHTTPContext(ctx, s.webhookURL, s.httpClient, msg); err != nil {
		return goerr.Wrap(err, "failed to post to Slack webhook", goerr.V("folder", folder), goerr.V("queue", queue))
	}
	return nil
}
