package occupancy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/parking-occupancy/internal/domain"
	"github.com/parking-occupancy/internal/domain/repository"
	"github.com/parking-occupancy/internal/usecase/dto"
	"github.com/parking-occupancy/internal/worker"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	maxBatchSize        = 20                     // messages per read
	emptyQueueSleep     = 100 * time.Millisecond // pause when the stream is empty
	defaultClaimMinIdle = 5 * time.Minute
	claimStart          = "0-0"
)

// Calibrator runs calibration passes.
type Calibrator interface {
	Calibrate(ctx context.Context, sectorID uuid.UUID, imagePath string) (*dto.CalibrationResult, error)
	CalibrateImage(ctx context.Context, imageID uuid.UUID) (*dto.CalibrationResult, error)
}

// Reconciler runs reconciliation passes.
type Reconciler interface {
	Reconcile(ctx context.Context, sectorID uuid.UUID, imagePath string) (*dto.ReconciliationResult, error)
	ReconcileImage(ctx context.Context, imageID uuid.UUID) (*dto.ReconciliationResult, error)
	ReconcileLatest(ctx context.Context, sectorID uuid.UUID) (*dto.ReconciliationResult, error)
}

// Options tune retries and parallelism of the worker.
type Options struct {
	ConsumerGroup string
	MaxRetries    int
	RetryBackoff  time.Duration
	Concurrency   int
	// ClaimMinIdle is how long an entry must sit unacked in another
	// consumer's pending list before this worker takes it over.
	ClaimMinIdle time.Duration
}

// SectorImageWorker consumes sector image events and runs the requested pass.
// Events of one sector are handled in stream order; different sectors run in
// parallel up to Options.Concurrency.
type SectorImageWorker struct {
	*worker.BaseWorker
	streamRepo   repository.StreamRepository
	calibrator   Calibrator
	reconciler   Reconciler
	consumerName string
	opts         Options
}

type job struct {
	messageID string
	event     *domain.SectorImageEvent
}

func NewSectorImageWorker(
	streamRepo repository.StreamRepository,
	calibrator Calibrator,
	reconciler Reconciler,
	opts Options,
	logger *zap.Logger,
) *SectorImageWorker {
	hostname, _ := os.Hostname()
	consumerName := fmt.Sprintf("%s-%d", hostname, os.Getpid())

	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.ClaimMinIdle <= 0 {
		opts.ClaimMinIdle = defaultClaimMinIdle
	}

	return &SectorImageWorker{
		BaseWorker:   worker.NewBaseWorker("sector-image", opts.ConsumerGroup, logger),
		streamRepo:   streamRepo,
		calibrator:   calibrator,
		reconciler:   reconciler,
		consumerName: consumerName,
		opts:         opts,
	}
}

// Start runs the consume loop until Stop is called or ctx is done.
func (w *SectorImageWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting SectorImageWorker",
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.consumerName),
		zap.Int("max_batch_size", maxBatchSize),
		zap.Int("concurrency", w.opts.Concurrency))

	if err := w.streamRepo.CreateConsumerGroup(ctx, domain.StreamSectorImage, w.ConsumerGroup()); err != nil {
		logger.Error("Failed to create consumer group", zap.Error(err))
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	// Entries a crashed consumer read but never acked are only redelivered
	// through XAUTOCLAIM.
	w.reclaimPending(ctx)
	lastClaim := time.Now()

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil

		case <-ctx.Done():
			logger.Info("Context cancelled")
			return ctx.Err()

		default:
			if time.Since(lastClaim) >= w.opts.ClaimMinIdle {
				w.reclaimPending(ctx)
				lastClaim = time.Now()
			}

			processed, err := w.processBatch(ctx)
			if err != nil {
				logger.Error("Failed to process batch", zap.Error(err))
				w.Sleep(ctx, time.Second)
				continue
			}

			if processed == 0 {
				w.Sleep(ctx, emptyQueueSleep)
			}
		}
	}
}

// reclaimPending walks the group's pending list and runs every entry that has
// been idle for at least ClaimMinIdle. It returns the number of entries taken.
func (w *SectorImageWorker) reclaimPending(ctx context.Context) int {
	logger := w.Logger()

	total := 0
	cursor := claimStart
	for ctx.Err() == nil {
		messages, next, err := w.streamRepo.ClaimPending(
			ctx,
			domain.StreamSectorImage,
			w.ConsumerGroup(),
			w.consumerName,
			w.opts.ClaimMinIdle,
			cursor,
			maxBatchSize,
		)
		if err != nil {
			logger.Error("Failed to reclaim pending messages", zap.Error(err))
			break
		}

		if len(messages) > 0 {
			total += len(messages)
			w.process(ctx, messages)
		}
		if next == "" || next == claimStart {
			break
		}
		cursor = next
	}

	if total > 0 {
		logger.Info("Reclaimed pending messages", zap.Int("count", total))
	}
	return total
}

// processBatch reads one batch of new messages and runs it. It returns the
// number of messages read.
func (w *SectorImageWorker) processBatch(ctx context.Context) (int, error) {
	messages, err := w.streamRepo.ConsumeBatch(
		ctx,
		domain.StreamSectorImage,
		w.ConsumerGroup(),
		w.consumerName,
		maxBatchSize,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to consume batch: %w", err)
	}
	if len(messages) == 0 {
		return 0, nil
	}

	w.process(ctx, messages)
	return len(messages), nil
}

// process runs a batch and acks every finished message.
func (w *SectorImageWorker) process(ctx context.Context, messages []domain.StreamMessage) {
	logger := w.Logger()
	logger.Debug("Processing batch", zap.Int("message_count", len(messages)))

	// Group by sector, keeping stream order inside each group.
	groups := make(map[uuid.UUID][]job)
	order := make([]uuid.UUID, 0)
	for _, msg := range messages {
		event, err := parseMessage(msg)
		if err != nil {
			logger.Warn("Failed to parse message, skipping",
				zap.String("message_id", msg.ID),
				zap.Error(err))
			// Ack broken messages so they do not get stuck
			if err := w.streamRepo.AckMessage(ctx, domain.StreamSectorImage, w.ConsumerGroup(), msg.ID); err != nil {
				logger.Error("Failed to ack unparseable message",
					zap.String("message_id", msg.ID),
					zap.Error(err))
			}
			continue
		}
		if _, ok := groups[event.SectorID]; !ok {
			order = append(order, event.SectorID)
		}
		groups[event.SectorID] = append(groups[event.SectorID], job{messageID: msg.ID, event: event})
	}

	var (
		mu    sync.Mutex
		acked = make([]string, 0, len(messages))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.opts.Concurrency)
	for _, sectorID := range order {
		jobs := groups[sectorID]
		g.Go(func() error {
			for _, j := range jobs {
				if !w.handle(gctx, j) {
					return nil
				}
				mu.Lock()
				acked = append(acked, j.messageID)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(acked) > 0 {
		if err := w.streamRepo.AckMessages(ctx, domain.StreamSectorImage, w.ConsumerGroup(), acked); err != nil {
			logger.Error("Failed to ack messages", zap.Error(err))
		}
	}

	logger.Info("Batch processed",
		zap.Int("messages", len(messages)),
		zap.Int("acked", len(acked)))
}

// handle runs one event with retries. It reports whether the message is done
// and may be acked: succeeded, failed permanently, or out of retries. An
// interrupted run leaves the message pending.
func (w *SectorImageWorker) handle(ctx context.Context, j job) bool {
	logger := w.Logger().With(
		zap.String("message_id", j.messageID),
		zap.String("sector_id", j.event.SectorID.String()),
		zap.String("purpose", string(j.event.EffectivePurpose())),
	)

	var err error
	for attempt := 1; attempt <= w.opts.MaxRetries; attempt++ {
		err = w.run(ctx, j.event)
		if err == nil {
			return true
		}
		if ctx.Err() != nil {
			logger.Warn("Pass interrupted, message left pending", zap.Error(err))
			return false
		}
		if isPermanent(err) {
			logger.Warn("Pass rejected, dropping message", zap.Error(err))
			return true
		}

		logger.Warn("Pass failed",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", w.opts.MaxRetries),
			zap.Error(err))

		if attempt < w.opts.MaxRetries && !w.Sleep(ctx, w.opts.RetryBackoff*time.Duration(attempt)) {
			return false
		}
	}

	logger.Error("Pass failed after retries, dropping message", zap.Error(err))
	return true
}

func (w *SectorImageWorker) run(ctx context.Context, event *domain.SectorImageEvent) error {
	switch event.EffectivePurpose() {
	case domain.PurposeCalibrate:
		var err error
		if event.ImageID != nil {
			_, err = w.calibrator.CalibrateImage(ctx, *event.ImageID)
		} else {
			_, err = w.calibrator.Calibrate(ctx, event.SectorID, event.ImagePath)
		}
		return err

	case domain.PurposeReconcile:
		var err error
		switch {
		case event.ImageID != nil:
			_, err = w.reconciler.ReconcileImage(ctx, *event.ImageID)
		case !event.HasImageSource():
			_, err = w.reconciler.ReconcileLatest(ctx, event.SectorID)
		default:
			_, err = w.reconciler.Reconcile(ctx, event.SectorID, event.ImagePath)
		}
		return err

	default:
		return fmt.Errorf("%w: %q", errUnknownPurpose, event.Purpose)
	}
}

var errUnknownPurpose = errors.New("unknown image purpose")

func isPermanent(err error) bool {
	return errors.Is(err, domain.ErrSectorNotFound) ||
		errors.Is(err, domain.ErrImageNotFound) ||
		errors.Is(err, domain.ErrNoImage) ||
		errors.Is(err, errUnknownPurpose)
}

func parseMessage(msg domain.StreamMessage) (*domain.SectorImageEvent, error) {
	if msg.Data == "" {
		return nil, fmt.Errorf("missing or invalid 'data' field")
	}

	var event domain.SectorImageEvent
	if err := json.Unmarshal([]byte(msg.Data), &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if event.SectorID == uuid.Nil && event.ImageID == nil {
		return nil, fmt.Errorf("event names neither a sector nor an image")
	}

	return &event, nil
}
