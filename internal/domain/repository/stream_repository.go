package repository

import (
	"context"
	"time"

	"github.com/parking-occupancy/internal/domain"
)

// StreamRepository works with Redis Streams.
type StreamRepository interface {
	// ConsumeBatch reads up to maxCount new messages without blocking for long.
	ConsumeBatch(ctx context.Context, stream, group, consumer string, maxCount int) ([]domain.StreamMessage, error)

	// ClaimPending moves entries idle for at least minIdle to consumer,
	// scanning the pending list from start. The returned cursor is "0-0"
	// when the scan is complete.
	ClaimPending(ctx context.Context, stream, group, consumer string, minIdle time.Duration, start string, count int) ([]domain.StreamMessage, string, error)

	// AckMessage acknowledges a processed message.
	AckMessage(ctx context.Context, stream, group, messageID string) error

	// AckMessages acknowledges several messages at once.
	AckMessages(ctx context.Context, stream, group string, messageIDs []string) error

	// CreateConsumerGroup creates the consumer group, ignoring BUSYGROUP.
	CreateConsumerGroup(ctx context.Context, stream, group string) error

	// PublishToStream publishes data as JSON under the "data" field.
	PublishToStream(ctx context.Context, stream string, data interface{}) error
}
