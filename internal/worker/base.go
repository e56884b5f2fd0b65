package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// BaseWorker carries what every stream consumer needs besides its loop: the
// name the manager reports, the consumer group it reads as, a logger tagged
// with the worker name and a stop signal.
type BaseWorker struct {
	name     string
	group    string
	logger   *zap.Logger
	stop     chan struct{}
	stopOnce sync.Once
}

func NewBaseWorker(name, group string, logger *zap.Logger) *BaseWorker {
	return &BaseWorker{
		name:   name,
		group:  group,
		logger: logger.With(zap.String("worker", name)),
		stop:   make(chan struct{}),
	}
}

func (w *BaseWorker) Name() string          { return w.name }
func (w *BaseWorker) ConsumerGroup() string { return w.group }
func (w *BaseWorker) Logger() *zap.Logger   { return w.logger }

// Stop closes the stop channel once; later calls are no-ops.
func (w *BaseWorker) Stop() error {
	w.stopOnce.Do(func() {
		w.logger.Info("Stopping worker")
		close(w.stop)
	})
	return nil
}

// StopChan is closed by Stop.
func (w *BaseWorker) StopChan() <-chan struct{} {
	return w.stop
}

func (w *BaseWorker) IsStopped() bool {
	select {
	case <-w.stop:
		return true
	default:
		return false
	}
}

// Sleep waits for d. It returns false early when ctx is done or the worker
// is stopped, so loops can bail out of backoff waits.
func (w *BaseWorker) Sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	case <-w.stop:
		return false
	}
}
