package interfaces

import (
	"context"

	"github.com/digione/xnatsync/pkg/domain/model"
)

// LedgerStore persists labels of experiments already handled. It only grows.
type LedgerStore interface {
	Load(ctx context.Context) (model.LabelSet, error)
	Append(ctx context.Context, labels []string) error
}
