package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultShutdownTimeout bounds how long Stop waits for workers to return.
// A detection pass in flight may take up to the detector pass timeout.
const DefaultShutdownTimeout = 2 * time.Minute

// WorkerManager runs a fixed set of workers. Register everything before
// Start; Done closes once every started worker has returned.
type WorkerManager struct {
	mu              sync.Mutex
	workers         []Worker
	started         bool
	done            chan struct{}
	shutdownTimeout time.Duration
	logger          *zap.Logger
}

func NewWorkerManager(shutdownTimeout time.Duration, logger *zap.Logger) *WorkerManager {
	if shutdownTimeout <= 0 {
		shutdownTimeout = DefaultShutdownTimeout
	}
	return &WorkerManager{
		done:            make(chan struct{}),
		shutdownTimeout: shutdownTimeout,
		logger:          logger,
	}
}

func (m *WorkerManager) Register(w Worker) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.workers = append(m.workers, w)
	m.logger.Info("Worker registered", zap.String("name", w.Name()))
}

// Start runs each worker in its own goroutine and returns immediately.
// A worker that returns an error while ctx is still live is logged; the
// others keep running.
func (m *WorkerManager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return fmt.Errorf("workers already started")
	}
	if len(m.workers) == 0 {
		return fmt.Errorf("no workers registered")
	}
	m.started = true

	m.logger.Info("Starting workers", zap.Int("count", len(m.workers)))

	var wg sync.WaitGroup
	for _, w := range m.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.run(ctx, w)
		}()
	}

	go func() {
		wg.Wait()
		close(m.done)
	}()
	return nil
}

func (m *WorkerManager) run(ctx context.Context, w Worker) {
	logger := m.logger.With(zap.String("name", w.Name()))
	logger.Info("Starting worker")

	started := time.Now()
	err := w.Start(ctx)
	switch {
	case err != nil && ctx.Err() == nil:
		logger.Error("Worker failed", zap.Duration("uptime", time.Since(started)), zap.Error(err))
	default:
		logger.Info("Worker exited", zap.Duration("uptime", time.Since(started)))
	}
}

// Done is closed after Start once every worker has returned, whether
// stopped or failed.
func (m *WorkerManager) Done() <-chan struct{} {
	return m.done
}

// Stop signals every worker and waits for them up to the shutdown timeout.
func (m *WorkerManager) Stop() error {
	m.mu.Lock()
	workers := append([]Worker(nil), m.workers...)
	started := m.started
	m.mu.Unlock()

	m.logger.Info("Stopping workers", zap.Int("count", len(workers)))
	for _, w := range workers {
		if err := w.Stop(); err != nil {
			m.logger.Error("Failed to stop worker", zap.String("name", w.Name()), zap.Error(err))
		}
	}
	if !started {
		return nil
	}

	timer := time.NewTimer(m.shutdownTimeout)
	defer timer.Stop()

	select {
	case <-m.done:
		m.logger.Info("All workers stopped gracefully")
		return nil
	case <-timer.C:
		m.logger.Warn("Workers shutdown timed out, a pass may have been cut short",
			zap.Duration("timeout", m.shutdownTimeout))
		return fmt.Errorf("workers shutdown timed out after %v", m.shutdownTimeout)
	}
}
