package worker

import (
	"context"
)

// Worker is a long-running stream consumer
type Worker interface {
	// Start blocks until the worker stops or ctx is done
	Start(ctx context.Context) error

	Stop() error

	Name() string
}
