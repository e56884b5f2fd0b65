package occupancy

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/parking-occupancy/internal/domain"
	"github.com/parking-occupancy/internal/usecase/dto"
)

// MockStreamRepository is a mock of StreamRepository
type MockStreamRepository struct {
	mock.Mock
}

func (m *MockStreamRepository) ConsumeBatch(ctx context.Context, stream, group, consumer string, maxCount int) ([]domain.StreamMessage, error) {
	args := m.Called(ctx, stream, group, consumer, maxCount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StreamMessage), args.Error(1)
}

func (m *MockStreamRepository) ClaimPending(ctx context.Context, stream, group, consumer string, minIdle time.Duration, start string, count int) ([]domain.StreamMessage, string, error) {
	args := m.Called(ctx, stream, group, consumer, minIdle, start, count)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]domain.StreamMessage), args.String(1), args.Error(2)
}

func (m *MockStreamRepository) AckMessage(ctx context.Context, stream, group, messageID string) error {
	args := m.Called(ctx, stream, group, messageID)
	return args.Error(0)
}

func (m *MockStreamRepository) AckMessages(ctx context.Context, stream, group string, messageIDs []string) error {
	args := m.Called(ctx, stream, group, messageIDs)
	return args.Error(0)
}

func (m *MockStreamRepository) CreateConsumerGroup(ctx context.Context, stream, group string) error {
	args := m.Called(ctx, stream, group)
	return args.Error(0)
}

func (m *MockStreamRepository) PublishToStream(ctx context.Context, stream string, data interface{}) error {
	args := m.Called(ctx, stream, data)
	return args.Error(0)
}

// MockCalibrator is a mock of Calibrator
type MockCalibrator struct {
	mock.Mock
}

func (m *MockCalibrator) Calibrate(ctx context.Context, sectorID uuid.UUID, imagePath string) (*dto.CalibrationResult, error) {
	args := m.Called(ctx, sectorID, imagePath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CalibrationResult), args.Error(1)
}

func (m *MockCalibrator) CalibrateImage(ctx context.Context, imageID uuid.UUID) (*dto.CalibrationResult, error) {
	args := m.Called(ctx, imageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CalibrationResult), args.Error(1)
}

// MockReconciler is a mock of Reconciler
type MockReconciler struct {
	mock.Mock
}

func (m *MockReconciler) Reconcile(ctx context.Context, sectorID uuid.UUID, imagePath string) (*dto.ReconciliationResult, error) {
	args := m.Called(ctx, sectorID, imagePath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReconciliationResult), args.Error(1)
}

func (m *MockReconciler) ReconcileImage(ctx context.Context, imageID uuid.UUID) (*dto.ReconciliationResult, error) {
	args := m.Called(ctx, imageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReconciliationResult), args.Error(1)
}

func (m *MockReconciler) ReconcileLatest(ctx context.Context, sectorID uuid.UUID) (*dto.ReconciliationResult, error) {
	args := m.Called(ctx, sectorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReconciliationResult), args.Error(1)
}

const testGroup = "test-group"

func newTestWorker(maxRetries int) (*SectorImageWorker, *MockStreamRepository, *MockCalibrator, *MockReconciler) {
	return newTestWorkerWithLogger(maxRetries, zap.NewNop())
}

func newTestWorkerWithLogger(maxRetries int, logger *zap.Logger) (*SectorImageWorker, *MockStreamRepository, *MockCalibrator, *MockReconciler) {
	stream := &MockStreamRepository{}
	calibrator := &MockCalibrator{}
	reconciler := &MockReconciler{}
	w := NewSectorImageWorker(stream, calibrator, reconciler, Options{
		ConsumerGroup: testGroup,
		MaxRetries:    maxRetries,
		RetryBackoff:  time.Millisecond,
		Concurrency:   2,
		ClaimMinIdle:  time.Minute,
	}, logger)
	return w, stream, calibrator, reconciler
}

func message(t *testing.T, id string, event domain.SectorImageEvent) domain.StreamMessage {
	t.Helper()
	data, err := json.Marshal(event)
	require.NoError(t, err)
	return domain.StreamMessage{ID: id, Data: string(data)}
}

func ackedIDs(ids ...string) interface{} {
	return mock.MatchedBy(func(got []string) bool {
		if len(got) != len(ids) {
			return false
		}
		seen := make(map[string]bool, len(got))
		for _, id := range got {
			seen[id] = true
		}
		for _, id := range ids {
			if !seen[id] {
				return false
			}
		}
		return true
	})
}

func TestSectorImageWorker_Name(t *testing.T) {
	w, _, _, _ := newTestWorker(3)
	assert.Equal(t, "sector-image", w.Name())
}

func TestSectorImageWorker_Stop(t *testing.T) {
	w, _, _, _ := newTestWorker(3)

	// Stop should not error even if not started
	assert.NoError(t, w.Stop())
	// Calling stop multiple times should be safe
	assert.NoError(t, w.Stop())
}

func TestSectorImageWorker_ContextCancellation(t *testing.T) {
	w, stream, _, _ := newTestWorker(3)

	stream.On("CreateConsumerGroup", mock.Anything, domain.StreamSectorImage, testGroup).Return(nil)
	stream.On("ClaimPending", mock.Anything, domain.StreamSectorImage, testGroup, mock.AnythingOfType("string"), time.Minute, claimStart, maxBatchSize).
		Return([]domain.StreamMessage{}, claimStart, nil).Once()
	stream.On("ConsumeBatch", mock.Anything, domain.StreamSectorImage, testGroup, mock.AnythingOfType("string"), maxBatchSize).
		Return([]domain.StreamMessage{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Start(ctx)
	}()

	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.Equal(t, context.Canceled, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Worker did not stop on context cancellation")
	}

	stream.AssertExpectations(t)
}

func TestSectorImageWorker_ConsumerGroupFailure(t *testing.T) {
	w, stream, _, _ := newTestWorker(3)
	stream.On("CreateConsumerGroup", mock.Anything, domain.StreamSectorImage, testGroup).Return(errors.New("NOAUTH"))

	err := w.Start(context.Background())

	assert.Error(t, err)
}

func TestSectorImageWorker_ProcessBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("dispatches by purpose and acks everything", func(t *testing.T) {
		w, stream, calibrator, reconciler := newTestWorker(3)
		sectorA := uuid.New()
		sectorB := uuid.New()
		imageID := uuid.New()

		messages := []domain.StreamMessage{
			message(t, "1-0", domain.SectorImageEvent{SectorID: sectorA, ImagePath: "a/1.jpg", Purpose: domain.PurposeCalibrate}),
			message(t, "1-1", domain.SectorImageEvent{SectorID: sectorA, ImagePath: "a/2.jpg"}),
			message(t, "1-2", domain.SectorImageEvent{SectorID: sectorB, ImageID: &imageID, Purpose: domain.PurposeReconcile}),
			{ID: "1-3", Data: "{not json"},
		}

		stream.On("ConsumeBatch", mock.Anything, domain.StreamSectorImage, testGroup, mock.AnythingOfType("string"), maxBatchSize).
			Return(messages, nil)
		stream.On("AckMessage", mock.Anything, domain.StreamSectorImage, testGroup, "1-3").Return(nil)
		calibrator.On("Calibrate", mock.Anything, sectorA, "a/1.jpg").Return(&dto.CalibrationResult{SectorID: sectorA}, nil)
		reconciler.On("Reconcile", mock.Anything, sectorA, "a/2.jpg").Return(&dto.ReconciliationResult{SectorID: sectorA}, nil)
		reconciler.On("ReconcileImage", mock.Anything, imageID).Return(&dto.ReconciliationResult{SectorID: sectorB}, nil)
		stream.On("AckMessages", mock.Anything, domain.StreamSectorImage, testGroup, ackedIDs("1-0", "1-1", "1-2")).Return(nil)

		n, err := w.processBatch(ctx)

		require.NoError(t, err)
		assert.Equal(t, 4, n)
		stream.AssertExpectations(t)
		calibrator.AssertExpectations(t)
		reconciler.AssertExpectations(t)
	})

	t.Run("same sector runs in stream order", func(t *testing.T) {
		w, stream, calibrator, reconciler := newTestWorker(3)
		sectorID := uuid.New()

		var calls []string
		messages := []domain.StreamMessage{
			message(t, "2-0", domain.SectorImageEvent{SectorID: sectorID, Purpose: domain.PurposeCalibrate}),
			message(t, "2-1", domain.SectorImageEvent{SectorID: sectorID, Purpose: domain.PurposeReconcile}),
		}

		stream.On("ConsumeBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(messages, nil)
		calibrator.On("Calibrate", mock.Anything, sectorID, "").
			Run(func(mock.Arguments) { calls = append(calls, "calibrate") }).
			Return(&dto.CalibrationResult{}, nil)
		reconciler.On("ReconcileLatest", mock.Anything, sectorID).
			Run(func(mock.Arguments) { calls = append(calls, "reconcile") }).
			Return(&dto.ReconciliationResult{}, nil)
		stream.On("AckMessages", mock.Anything, mock.Anything, mock.Anything, []string{"2-0", "2-1"}).Return(nil)

		_, err := w.processBatch(ctx)

		require.NoError(t, err)
		assert.Equal(t, []string{"calibrate", "reconcile"}, calls)
		stream.AssertExpectations(t)
	})

	t.Run("transient failure is retried", func(t *testing.T) {
		w, stream, _, reconciler := newTestWorker(3)
		sectorID := uuid.New()

		stream.On("ConsumeBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return([]domain.StreamMessage{message(t, "3-0", domain.SectorImageEvent{SectorID: sectorID})}, nil)
		reconciler.On("ReconcileLatest", mock.Anything, sectorID).
			Return(nil, domain.ErrDetectionFailed).Twice()
		reconciler.On("ReconcileLatest", mock.Anything, sectorID).
			Return(&dto.ReconciliationResult{}, nil).Once()
		stream.On("AckMessages", mock.Anything, mock.Anything, mock.Anything, []string{"3-0"}).Return(nil)

		_, err := w.processBatch(ctx)

		require.NoError(t, err)
		reconciler.AssertNumberOfCalls(t, "ReconcileLatest", 3)
		stream.AssertExpectations(t)
	})

	t.Run("message is dropped after max retries", func(t *testing.T) {
		w, stream, _, reconciler := newTestWorker(2)
		sectorID := uuid.New()

		stream.On("ConsumeBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return([]domain.StreamMessage{message(t, "4-0", domain.SectorImageEvent{SectorID: sectorID})}, nil)
		reconciler.On("ReconcileLatest", mock.Anything, sectorID).Return(nil, domain.ErrDetectionFailed)
		stream.On("AckMessages", mock.Anything, mock.Anything, mock.Anything, []string{"4-0"}).Return(nil)

		_, err := w.processBatch(ctx)

		require.NoError(t, err)
		reconciler.AssertNumberOfCalls(t, "ReconcileLatest", 2)
		stream.AssertExpectations(t)
	})

	t.Run("permanent failure is not retried", func(t *testing.T) {
		w, stream, _, reconciler := newTestWorker(3)
		sectorID := uuid.New()

		stream.On("ConsumeBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return([]domain.StreamMessage{message(t, "5-0", domain.SectorImageEvent{SectorID: sectorID})}, nil)
		reconciler.On("ReconcileLatest", mock.Anything, sectorID).Return(nil, domain.ErrSectorNotFound)
		stream.On("AckMessages", mock.Anything, mock.Anything, mock.Anything, []string{"5-0"}).Return(nil)

		_, err := w.processBatch(ctx)

		require.NoError(t, err)
		reconciler.AssertNumberOfCalls(t, "ReconcileLatest", 1)
	})

	t.Run("failed ack of an unparseable message is logged", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		w, stream, _, _ := newTestWorkerWithLogger(3, zap.New(core))

		stream.On("ConsumeBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return([]domain.StreamMessage{{ID: "6-0", Data: ""}}, nil)
		stream.On("AckMessage", mock.Anything, domain.StreamSectorImage, testGroup, "6-0").Return(errors.New("connection reset"))

		n, err := w.processBatch(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, n)
		failed := logs.FilterMessage("Failed to ack unparseable message").All()
		require.Len(t, failed, 1)
		assert.Equal(t, "6-0", failed[0].ContextMap()["message_id"])
		assert.Equal(t, "connection reset", failed[0].ContextMap()["error"])
		stream.AssertNotCalled(t, "AckMessages", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("empty stream", func(t *testing.T) {
		w, stream, _, _ := newTestWorker(3)
		stream.On("ConsumeBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return([]domain.StreamMessage{}, nil)

		n, err := w.processBatch(ctx)

		require.NoError(t, err)
		assert.Zero(t, n)
		stream.AssertNotCalled(t, "AckMessages", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("read error", func(t *testing.T) {
		w, stream, _, _ := newTestWorker(3)
		stream.On("ConsumeBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.New("connection reset"))

		_, err := w.processBatch(ctx)

		assert.Error(t, err)
	})
}

func TestSectorImageWorker_ReclaimPending(t *testing.T) {
	ctx := context.Background()

	t.Run("claimed entries are run and acked", func(t *testing.T) {
		w, stream, calibrator, reconciler := newTestWorker(3)
		sectorA := uuid.New()
		sectorB := uuid.New()

		first := []domain.StreamMessage{
			message(t, "7-0", domain.SectorImageEvent{SectorID: sectorA, ImagePath: "a.jpg", Purpose: domain.PurposeCalibrate}),
		}
		second := []domain.StreamMessage{
			message(t, "7-1", domain.SectorImageEvent{SectorID: sectorB}),
		}

		stream.On("ClaimPending", mock.Anything, domain.StreamSectorImage, testGroup, mock.AnythingOfType("string"), time.Minute, claimStart, maxBatchSize).
			Return(first, "7-1", nil).Once()
		stream.On("ClaimPending", mock.Anything, domain.StreamSectorImage, testGroup, mock.AnythingOfType("string"), time.Minute, "7-1", maxBatchSize).
			Return(second, claimStart, nil).Once()
		calibrator.On("Calibrate", mock.Anything, sectorA, "a.jpg").Return(&dto.CalibrationResult{SectorID: sectorA}, nil)
		reconciler.On("ReconcileLatest", mock.Anything, sectorB).Return(&dto.ReconciliationResult{SectorID: sectorB}, nil)
		stream.On("AckMessages", mock.Anything, domain.StreamSectorImage, testGroup, []string{"7-0"}).Return(nil)
		stream.On("AckMessages", mock.Anything, domain.StreamSectorImage, testGroup, []string{"7-1"}).Return(nil)

		n := w.reclaimPending(ctx)

		assert.Equal(t, 2, n)
		stream.AssertExpectations(t)
		calibrator.AssertExpectations(t)
		reconciler.AssertExpectations(t)
	})

	t.Run("claim error stops the scan", func(t *testing.T) {
		w, stream, _, _ := newTestWorker(3)
		stream.On("ClaimPending", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, claimStart, mock.Anything).
			Return(nil, "", errors.New("NOGROUP")).Once()

		n := w.reclaimPending(ctx)

		assert.Zero(t, n)
		stream.AssertNumberOfCalls(t, "ClaimPending", 1)
	})

	t.Run("startup reclaims before reading new entries", func(t *testing.T) {
		w, stream, _, reconciler := newTestWorker(3)
		sectorID := uuid.New()

		var order []string
		stream.On("CreateConsumerGroup", mock.Anything, domain.StreamSectorImage, testGroup).Return(nil)
		stream.On("ClaimPending", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, claimStart, mock.Anything).
			Run(func(mock.Arguments) { order = append(order, "claim") }).
			Return([]domain.StreamMessage{message(t, "8-0", domain.SectorImageEvent{SectorID: sectorID})}, claimStart, nil).Once()
		reconciler.On("ReconcileLatest", mock.Anything, sectorID).Return(&dto.ReconciliationResult{}, nil)
		stream.On("AckMessages", mock.Anything, mock.Anything, mock.Anything, []string{"8-0"}).Return(nil)

		runCtx, cancel := context.WithCancel(ctx)
		stream.On("ConsumeBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Run(func(mock.Arguments) {
				order = append(order, "read")
				cancel()
			}).
			Return([]domain.StreamMessage{}, nil)

		err := w.Start(runCtx)

		assert.ErrorIs(t, err, context.Canceled)
		require.NotEmpty(t, order)
		assert.Equal(t, "claim", order[0])
		stream.AssertCalled(t, "AckMessages", mock.Anything, domain.StreamSectorImage, testGroup, []string{"8-0"})
	})
}

func TestSectorImageWorker_RunDispatch(t *testing.T) {
	ctx := context.Background()
	sectorID := uuid.New()
	imageID := uuid.New()

	t.Run("reconcile by path", func(t *testing.T) {
		w, _, _, reconciler := newTestWorker(1)
		reconciler.On("Reconcile", mock.Anything, sectorID, "p.jpg").Return(&dto.ReconciliationResult{}, nil)

		require.NoError(t, w.run(ctx, &domain.SectorImageEvent{SectorID: sectorID, ImagePath: "p.jpg"}))
		reconciler.AssertNotCalled(t, "ReconcileLatest", mock.Anything, mock.Anything)
	})

	t.Run("reconcile from latest image", func(t *testing.T) {
		w, _, _, reconciler := newTestWorker(1)
		reconciler.On("ReconcileLatest", mock.Anything, sectorID).Return(&dto.ReconciliationResult{}, nil)

		require.NoError(t, w.run(ctx, &domain.SectorImageEvent{SectorID: sectorID}))
		reconciler.AssertNotCalled(t, "Reconcile", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("calibrate by image record", func(t *testing.T) {
		w, _, calibrator, _ := newTestWorker(1)
		calibrator.On("CalibrateImage", mock.Anything, imageID).Return(&dto.CalibrationResult{}, nil)

		require.NoError(t, w.run(ctx, &domain.SectorImageEvent{SectorID: sectorID, ImageID: &imageID, Purpose: domain.PurposeCalibrate}))
		calibrator.AssertExpectations(t)
	})

	t.Run("unknown purpose is permanent", func(t *testing.T) {
		w, _, _, _ := newTestWorker(1)

		err := w.run(ctx, &domain.SectorImageEvent{SectorID: sectorID, Purpose: "resize"})

		require.Error(t, err)
		assert.True(t, isPermanent(err))
	})
}

func TestParseMessage(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr bool
	}{
		{name: "valid", data: `{"sector_id":"` + uuid.NewString() + `","image_path":"x.jpg"}`},
		{name: "empty data", data: "", wantErr: true},
		{name: "invalid json", data: "{", wantErr: true},
		{name: "no sector and no image", data: `{"image_path":"x.jpg"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseMessage(domain.StreamMessage{ID: "1-0", Data: tt.data})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
