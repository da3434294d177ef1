package interfaces

import "context"

// Notifier hands a ready staging folder to the downstream consumer
type Notifier interface {
	Publish(ctx context.Context, queue, folder string) error
}

// Archiver copies a ready staging folder to long-term storage
type Archiver interface {
	Archive(ctx context.Context, label, folder string) error
}
