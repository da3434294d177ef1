package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"

	"github.com/digione/xnatsync/pkg/cli/config"
	controller "github.com/digione/xnatsync/pkg/controller/http"
	"github.com/digione/xnatsync/pkg/usecase"
)

func cmdWatch() *cli.Command {
	var (
		cfg       listenerConfig
		serverCfg config.Server
		sentryCfg config.Sentry
		interval  time.Duration
	)

	flags := append(cfg.Flags(), serverCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)
	flags = append(flags, &cli.DurationFlag{
		Name:        "interval",
		Usage:       "Time between two passes",
		Value:       60 * time.Second,
		Destination: &interval,
		Sources:     cli.EnvVars("XNATSYNC_INTERVAL"),
	})

	return &cli.Command{
		Name:    "watch",
		Aliases: []string{"w"},
		Usage:   "Poll XNAT periodically and sync new experiments",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)
			if interval <= 0 {
				return goerr.New("interval must be positive", goerr.V("interval", interval))
			}

			reporter, err := sentryCfg.NewReporter()
			if err != nil {
				return err
			}
			defer reporter.Flush(2 * time.Second)

			listener, closer, err := cfg.build(ctx, afero.NewOsFs(), usecase.WithErrorHook(reporter.Capture))
			if err != nil {
				return err
			}
			defer closer()

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Info("Starting xnatsync watcher",
				slog.String("xnat", cfg.xnat.URL),
				slog.Duration("interval", interval),
				slog.Any("policy", cfg.policy),
			)

			var server *controller.Server
			if serverCfg.Enabled() {
				server, err = controller.NewServer(ctx, listener, controller.WithAddr(serverCfg.Addr))
				if err != nil {
					return goerr.Wrap(err, "failed to create HTTP server")
				}

				go func() {
					logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
					if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						logger.Error("HTTP server error", slog.Any("error", err))
					}
				}()
			}

			if err := listener.Watch(ctx, interval); err != nil {
				return err
			}

			if server != nil {
				shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}
			}

			logger.Info("Shutdown complete")
			return nil
		},
	}
}
