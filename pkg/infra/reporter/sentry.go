package reporter

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/digione/xnatsync/pkg/domain/types"
)

// Sentry sends failed passes to Sentry. A zero value or one created with an empty DSN does nothing.
type Sentry struct {
	enabled bool
}

// Option customizes the Sentry client
type Option func(*sentry.ClientOptions)

// WithBeforeSend sets a hook called with every event before it is sent
func WithBeforeSend(hook func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event) Option {
	return func(o *sentry.ClientOptions) {
		o.BeforeSend = hook
	}
}

// New initializes the Sentry SDK. An empty dsn disables reporting.
func New(dsn, env string, opts ...Option) (*Sentry, error) {
	if dsn == "" {
		return &Sentry{}, nil
	}

	clientOpts := sentry.ClientOptions{
		Dsn:         dsn,
		Environment: env,
		Release:     types.Version,
	}
	for _, opt := range opts {
		opt(&clientOpts)
	}

	if err := sentry.Init(clientOpts); err != nil {
		return nil, goerr.Wrap(err, "failed to initialize Sentry", goerr.V("env", env))
	}

	return &Sentry{enabled: true}, nil
}

// Capture reports err with the values attached to it by goerr
func (s *Sentry) Capture(ctx context.Context, err error) {
	if s == nil || !s.enabled || err == nil {
		return
	}

	hub := sentry.CurrentHub().Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		if e := goerr.Unwrap(err); e != nil && len(e.Values()) > 0 {
			values := sentry.Context{}
			for k, v := range e.Values() {
				values[k] = v
			}
			scope.SetContext("goerr", values)
		}
	})
	evID := hub.CaptureException(err)
	if evID != nil {
		ctxlog.From(ctx).Info("Reported error to Sentry", "event_id", *evID)
	}
}

// Flush waits for buffered events
func (s *Sentry) Flush(timeout time.Duration) {
	if s == nil || !s.enabled {
		return
	}
	sentry.Flush(timeout)
}
