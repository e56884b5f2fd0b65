package usecase

import (
	"context"
	"errors"

	"github.com/parking-occupancy/internal/domain"
	"github.com/parking-occupancy/internal/domain/repository"
)

// FanOutPublisher delivers occupancy changes to every sink. A failing sink
// does not stop the others; their errors are joined.
type FanOutPublisher struct {
	sinks []repository.EventPublisher
}

var _ repository.EventPublisher = (*FanOutPublisher)(nil)

func NewFanOutPublisher(sinks ...repository.EventPublisher) *FanOutPublisher {
	active := make([]repository.EventPublisher, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			active = append(active, s)
		}
	}
	return &FanOutPublisher{sinks: active}
}

func (p *FanOutPublisher) PublishOccupancyChanges(ctx context.Context, changes []domain.OccupancyChangedEvent) error {
	if len(changes) == 0 {
		return nil
	}

	var errs []error
	for _, sink := range p.sinks {
		if err := sink.PublishOccupancyChanges(ctx, changes); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
