package config

import (
	"github.com/urfave/cli/v3"

	"github.com/digione/xnatsync/pkg/domain/interfaces"
	"github.com/digione/xnatsync/pkg/infra/notify"
)

// Notify holds where ready staging folders are announced
type Notify struct {
	Queue           string
	SlackWebhookURL string `masq:"secret"`
}

// Flags returns CLI flags for notification configuration
func (c *Notify) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "notify-queue",
			Usage:       "Name of the downstream processing queue",
			Value:       "segmentation",
			Destination: &c.Queue,
			Sources:     cli.EnvVars("XNATSYNC_NOTIFY_QUEUE"),
		},
		&cli.StringFlag{
			Name:        "slack-webhook-url",
			Usage:       "Slack incoming webhook URL",
			Destination: &c.SlackWebhookURL,
			Sources:     cli.EnvVars("XNATSYNC_SLACK_WEBHOOK_URL"),
		},
	}
}

// NewNotifier returns a notifier logging every ready folder, and posting it to Slack when a
// webhook is configured
func (c *Notify) NewNotifier() interfaces.Notifier {
	n := notify.Multi{notify.Log{}}
	if c.SlackWebhookURL != "" {
		n = append(n, notify.NewSlack(c.SlackWebhookURL, nil))
	}
	return n
}
