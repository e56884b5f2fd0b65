package redis

import (
	"context"
	"fmt"

	"github.com/parking-occupancy/internal/domain"
	"github.com/parking-occupancy/internal/domain/repository"
	"go.uber.org/zap"
)

type occupancyPublisher struct {
	streams repository.StreamRepository
	stream  string
	logger  *zap.Logger
}

// NewOccupancyPublisher publishes occupancy changes to domain.StreamSpotOccupancy.
func NewOccupancyPublisher(streams repository.StreamRepository, logger *zap.Logger) repository.EventPublisher {
	return &occupancyPublisher{
		streams: streams,
		stream:  domain.StreamSpotOccupancy,
		logger:  logger,
	}
}

// PublishOccupancyChanges writes one stream entry per change and stops at the
// first failure.
func (p *occupancyPublisher) PublishOccupancyChanges(ctx context.Context, changes []domain.OccupancyChangedEvent) error {
	for i := range changes {
		if err := p.streams.PublishToStream(ctx, p.stream, &changes[i]); err != nil {
			return fmt.Errorf("publish change %d/%d for spot %s: %w", i+1, len(changes), changes[i].SpotID, err)
		}
	}

	if len(changes) > 0 {
		p.logger.Debug("Occupancy changes published",
			zap.String("stream", p.stream),
			zap.Int("count", len(changes)))
	}
	return nil
}
