package interfaces

import (
	"context"

	"github.com/digione/xnatsync/pkg/domain/model"
)

// SyncUseCase runs the crawl-filter-download sequence once
type SyncUseCase interface {
	// Run examines every experiment not in skip and returns what happened to each of them
	Run(ctx context.Context, skip model.LabelSet) (*model.PassResult, error)
}

// ListenerUseCase wraps passes with ledger bookkeeping and downstream notification
type ListenerUseCase interface {
	// RunOnce performs a single pass
	RunOnce(ctx context.Context) (*model.PassReport, error)

	// Trigger starts a pass in the background; the channel is closed when it has finished
	Trigger(ctx context.Context) (<-chan struct{}, error)

	// LastReport returns the report of the latest finished pass, or nil before the first one
	LastReport() *model.PassReport
}
