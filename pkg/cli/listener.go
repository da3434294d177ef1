package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"

	"github.com/digione/xnatsync/pkg/cli/config"
	"github.com/digione/xnatsync/pkg/usecase"
)

// listenerConfig gathers every flag needed to build a Listener
type listenerConfig struct {
	xnat    config.XNAT
	storage config.Storage
	policy  config.Policy
	gcp     config.GoogleCloud
	notify  config.Notify
	archive config.Archive
}

func (c *listenerConfig) Flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, c.xnat.Flags()...)
	flags = append(flags, c.storage.Flags()...)
	flags = append(flags, c.policy.Flags()...)
	flags = append(flags, c.gcp.Flags()...)
	flags = append(flags, c.notify.Flags()...)
	flags = append(flags, c.archive.Flags()...)
	return flags
}

// build creates the Listener. The returned function releases cloud clients.
func (c *listenerConfig) build(ctx context.Context, fs afero.Fs, opts ...usecase.ListenerOption) (*usecase.Listener, func(), error) {
	if err := c.policy.Load(); err != nil {
		return nil, nil, err
	}

	client, err := c.xnat.NewClient()
	if err != nil {
		return nil, nil, err
	}

	syncOpts := append([]usecase.SyncOption{
		usecase.WithFs(fs),
		usecase.WithDataDir(c.storage.DataDir),
	}, c.policy.SyncOptions()...)
	syncUC := usecase.NewSync(client, syncOpts...)

	ledger, closeLedger, err := c.storage.NewLedger(ctx, fs, &c.gcp)
	if err != nil {
		return nil, nil, err
	}

	listenerOpts := []usecase.ListenerOption{
		usecase.WithNotifier(c.notify.NewNotifier()),
		usecase.WithQueue(c.notify.Queue),
		usecase.WithRetryIncomplete(c.policy.RetryIncomplete),
	}

	closeArchiver := func() {}
	archiver, err := c.archive.NewArchiver(ctx, fs, &c.gcp)
	if err != nil {
		closeLedger()
		return nil, nil, goerr.Wrap(err, "failed to set up archive")
	}
	if archiver != nil {
		listenerOpts = append(listenerOpts, usecase.WithArchiver(archiver))
		closeArchiver = func() { _ = archiver.Close() }
	}

	listener := usecase.NewListener(syncUC, ledger, append(listenerOpts, opts...)...)
	return listener, func() {
		closeArchiver()
		closeLedger()
	}, nil
}
