package worker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/parking-occupancy/internal/worker"
)

// loopWorker runs until stopped, like the stream workers do.
type loopWorker struct {
	*worker.BaseWorker
	started chan struct{}
}

func newLoopWorker(name string) *loopWorker {
	return &loopWorker{
		BaseWorker: worker.NewBaseWorker(name, "group", zap.NewNop()),
		started:    make(chan struct{}),
	}
}

func (w *loopWorker) Start(ctx context.Context) error {
	close(w.started)
	select {
	case <-w.StopChan():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// stuckWorker ignores Stop.
type stuckWorker struct {
	*worker.BaseWorker
	release chan struct{}
}

func (w *stuckWorker) Start(ctx context.Context) error {
	<-w.release
	return nil
}

func TestWorkerManager_StartStop(t *testing.T) {
	manager := worker.NewWorkerManager(time.Second, zap.NewNop())
	first := newLoopWorker("first")
	second := newLoopWorker("second")
	manager.Register(first)
	manager.Register(second)

	require.NoError(t, manager.Start(context.Background()))
	<-first.started
	<-second.started

	assert.NoError(t, manager.Stop())
	assert.True(t, first.IsStopped())
	assert.True(t, second.IsStopped())
}

func TestWorkerManager_NoWorkers(t *testing.T) {
	manager := worker.NewWorkerManager(time.Second, zap.NewNop())

	assert.Error(t, manager.Start(context.Background()))
}

func TestWorkerManager_ShutdownTimeout(t *testing.T) {
	manager := worker.NewWorkerManager(50*time.Millisecond, zap.NewNop())
	stuck := &stuckWorker{
		BaseWorker: worker.NewBaseWorker("stuck", "group", zap.NewNop()),
		release:    make(chan struct{}),
	}
	defer close(stuck.release)
	manager.Register(stuck)

	require.NoError(t, manager.Start(context.Background()))

	assert.Error(t, manager.Stop())
}

func TestWorkerManager_StartTwice(t *testing.T) {
	manager := worker.NewWorkerManager(time.Second, zap.NewNop())
	w := newLoopWorker("only")
	manager.Register(w)

	require.NoError(t, manager.Start(context.Background()))
	<-w.started
	assert.Error(t, manager.Start(context.Background()))
	assert.NoError(t, manager.Stop())
}

// failingWorker returns at once, like a worker that cannot create its
// consumer group.
type failingWorker struct {
	*worker.BaseWorker
}

func (w *failingWorker) Start(ctx context.Context) error {
	return errors.New("NOAUTH")
}

func TestWorkerManager_DoneWhenWorkersFail(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	manager := worker.NewWorkerManager(time.Second, zap.New(core))
	manager.Register(&failingWorker{BaseWorker: worker.NewBaseWorker("broken", "group", zap.NewNop())})

	require.NoError(t, manager.Start(context.Background()))

	select {
	case <-manager.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("manager must report done once its workers returned")
	}

	failed := logs.FilterMessage("Worker failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, "broken", failed[0].ContextMap()["name"])
	assert.NoError(t, manager.Stop())
}

func TestWorkerManager_StopBeforeStart(t *testing.T) {
	manager := worker.NewWorkerManager(time.Second, zap.NewNop())
	w := newLoopWorker("idle")
	manager.Register(w)

	assert.NoError(t, manager.Stop())
	assert.True(t, w.IsStopped())
}

func TestBaseWorker(t *testing.T) {
	w := worker.NewBaseWorker("sector-image", "sector-image-workers", zap.NewNop())

	assert.Equal(t, "sector-image", w.Name())
	assert.Equal(t, "sector-image-workers", w.ConsumerGroup())
	assert.False(t, w.IsStopped())

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
	assert.True(t, w.IsStopped())

	select {
	case <-w.StopChan():
	default:
		t.Fatal("stop channel must be closed")
	}
}

func TestBaseWorker_Sleep(t *testing.T) {
	t.Run("elapses", func(t *testing.T) {
		w := worker.NewBaseWorker("w", "g", zap.NewNop())
		assert.True(t, w.Sleep(context.Background(), time.Millisecond))
	})

	t.Run("stop interrupts", func(t *testing.T) {
		w := worker.NewBaseWorker("w", "g", zap.NewNop())
		require.NoError(t, w.Stop())

		start := time.Now()
		assert.False(t, w.Sleep(context.Background(), time.Minute))
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("context interrupts", func(t *testing.T) {
		w := worker.NewBaseWorker("w", "g", zap.NewNop())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		assert.False(t, w.Sleep(ctx, time.Minute))
	})
}

func TestBaseWorker_LoggerCarriesName(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	w := worker.NewBaseWorker("sector-image", "g", zap.New(core))

	require.NoError(t, w.Stop())

	entries := logs.FilterMessage("Stopping worker").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "sector-image", entries[0].ContextMap()["worker"])
}
