package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/digione/xnatsync/pkg/domain/interfaces"
	"github.com/digione/xnatsync/pkg/domain/model"
	"github.com/digione/xnatsync/pkg/domain/types"
	"github.com/digione/xnatsync/pkg/utils/async"
)

// Listener runs passes one at a time, records examined labels in the ledger and hands ready
// staging folders to the downstream consumer.
type Listener struct {
	syncUC   interfaces.SyncUseCase
	ledger   interfaces.LedgerStore
	notifier interfaces.Notifier
	archiver interfaces.Archiver

	queue           string
	retryIncomplete bool
	onError         func(ctx context.Context, err error)

	running sync.Mutex

	reportMu sync.RWMutex
	last     *model.PassReport
}

var _ interfaces.ListenerUseCase = (*Listener)(nil)

// ListenerOption is a functional option for Listener
type ListenerOption func(*Listener)

// WithNotifier sets where ready folders are published
func WithNotifier(notifier interfaces.Notifier) ListenerOption {
	return func(l *Listener) {
		l.notifier = notifier
	}
}

// WithArchiver sets where ready folders are archived before being published
func WithArchiver(archiver interfaces.Archiver) ListenerOption {
	return func(l *Listener) {
		l.archiver = archiver
	}
}

// WithQueue sets the name of the downstream queue
func WithQueue(queue string) ListenerOption {
	return func(l *Listener) {
		l.queue = queue
	}
}

// WithRetryIncomplete records only downloaded experiments in the ledger, so incomplete and
// failed ones are examined again in the next pass
func WithRetryIncomplete(retry bool) ListenerOption {
	return func(l *Listener) {
		l.retryIncomplete = retry
	}
}

// WithErrorHook sets a function called with the error of every failed pass
func WithErrorHook(hook func(ctx context.Context, err error)) ListenerOption {
	return func(l *Listener) {
		l.onError = hook
	}
}

// NewListener creates a Listener
func NewListener(syncUC interfaces.SyncUseCase, ledger interfaces.LedgerStore, opts ...ListenerOption) *Listener {
	l := &Listener{
		syncUC: syncUC,
		ledger: ledger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// RunOnce performs a pass. It fails with ErrTagPassInProgress if another pass is running.
func (l *Listener) RunOnce(ctx context.Context) (*model.PassReport, error) {
	if !l.running.TryLock() {
		return nil, goerr.New("another pass is in progress", goerr.T(types.ErrTagPassInProgress))
	}
	defer l.running.Unlock()

	return l.runLocked(ctx)
}

// Trigger starts a pass in the background. The returned channel is closed when it finishes.
func (l *Listener) Trigger(ctx context.Context) (<-chan struct{}, error) {
	if !l.running.TryLock() {
		return nil, goerr.New("another pass is in progress", goerr.T(types.ErrTagPassInProgress))
	}

	return async.Dispatch(ctx, func(ctx context.Context) error {
		defer l.running.Unlock()
		_, err := l.runLocked(ctx)
		return err
	}), nil
}

// Watch runs a pass immediately and then every interval until ctx is done. A failed pass is
// logged and does not stop the loop.
func (l *Listener) Watch(ctx context.Context, interval time.Duration) error {
	logger := ctxlog.From(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		logger.Info("Checking XNAT for new data")
		if _, err := l.RunOnce(ctx); err != nil {
			logger.Error("Pass failed", "error", err)
		}

		if ctx.Err() != nil {
			logger.Info("Stopped watching XNAT")
			return nil
		}

		select {
		case <-ctx.Done():
			logger.Info("Stopped watching XNAT")
			return nil
		case <-ticker.C:
		}
	}
}

// LastReport returns the report of the latest finished pass
func (l *Listener) LastReport() *model.PassReport {
	l.reportMu.RLock()
	defer l.reportMu.RUnlock()
	return l.last
}

func (l *Listener) setLastReport(report *model.PassReport) {
	l.reportMu.Lock()
	defer l.reportMu.Unlock()
	l.last = report
}

// runLocked stores a report for failed passes too, but returns only the error to the caller
func (l *Listener) runLocked(ctx context.Context) (*model.PassReport, error) {
	report, err := l.pass(ctx)
	if err != nil {
		l.setLastReport(&model.PassReport{Error: err.Error()})
		if l.onError != nil {
			l.onError(ctx, err)
		}
		return nil, err
	}
	l.setLastReport(report)
	return report, nil
}

func (l *Listener) pass(ctx context.Context) (*model.PassReport, error) {
	logger := ctxlog.From(ctx)

	processed, err := l.ledger.Load(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load ledger")
	}

	pass, err := l.syncUC.Run(ctx, processed)
	if err != nil {
		return nil, err
	}

	ctx = ctxlog.With(ctx, logger.With("pass_id", pass.ID))
	logger = ctxlog.From(ctx)

	report := &model.PassReport{
		Pass:     pass,
		Recorded: []string{},
		Notified: []string{},
	}

	var candidates []string
	if l.retryIncomplete {
		candidates = pass.Downloaded()
	} else {
		candidates = pass.Examined()
	}
	for _, label := range candidates {
		if processed.Has(label) {
			continue
		}
		logger.Info("Found new data", "label", label)
		report.Recorded = append(report.Recorded, label)
	}

	if len(report.Recorded) == 0 {
		logger.Info("Could not find new data")
		return report, nil
	}

	if err := l.ledger.Append(ctx, report.Recorded); err != nil {
		return nil, goerr.Wrap(err, "failed to update ledger", goerr.V("labels", report.Recorded))
	}
	logger.Info("Updated the ledger", "recorded", len(report.Recorded))

	report.Notified = l.handOver(ctx, pass, model.NewLabelSet(report.Recorded...))
	return report, nil
}

// handOver archives and publishes every downloaded folder among recorded labels. Failures are
// logged and never fail the pass.
func (l *Listener) handOver(ctx context.Context, pass *model.PassResult, recorded model.LabelSet) []string {
	logger := ctxlog.From(ctx)
	notified := []string{}

	for _, r := range pass.Results {
		if r.Outcome != model.OutcomeDownloaded || !recorded.Has(r.Label) {
			continue
		}

		if l.archiver != nil {
			if err := l.archiver.Archive(ctx, r.Label, r.Folder); err != nil {
				logger.Error("Failed to archive staging folder", "error", err, "label", r.Label)
			}
		}

		if l.notifier == nil {
			continue
		}
		if err := l.notifier.Publish(ctx, l.queue, r.Folder); err != nil {
			logger.Error("Failed to publish staging folder", "error", err, "label", r.Label, "queue", l.queue)
			continue
		}
		notified = append(notified, r.Label)
	}

	return notified
}
