package notify

import (
	"context"
	"errors"

	"github.com/m-mizutani/ctxlog"

	"github.com/digione/xnatsync/pkg/domain/interfaces"
)

// Log writes published folders to the context logger. It is used when no other channel is configured.
type Log struct{}

var _ interfaces.Notifier = Log{}

func (Log) Publish(ctx context.Context, queue, folder string) error {
	ctxlog.From(ctx).Info("Staging folder is ready", "queue", queue, "folder", folder)
	return nil
}

// Multi publishes to every notifier and joins their errors
type Multi []interfaces.Notifier

var _ interfaces.Notifier = Multi{}

func (m Multi) Publish(ctx context.Context, queue, folder string) error {
	var errs []error
	for _, n := range m {
		if err := n.Publish(ctx, queue, folder); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
