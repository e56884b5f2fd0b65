package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/parking-occupancy/internal/domain/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const lockPollInterval = 100 * time.Millisecond

// Deletes the key only while it still holds our token.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type sectorLocker struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewSectorLocker serializes sector passes across worker processes. The TTL
// bounds how long a crashed holder keeps the sector.
func NewSectorLocker(client *redis.Client, ttl time.Duration, logger *zap.Logger) repository.SectorLocker {
	return &sectorLocker{client: client, ttl: ttl, logger: logger}
}

func sectorLockKey(sectorID uuid.UUID) string {
	return fmt.Sprintf("lock:sector:%s", sectorID)
}

func (l *sectorLocker) Lock(ctx context.Context, sectorID uuid.UUID) (func(), error) {
	key := sectorLockKey(sectorID)
	token := uuid.NewString()

	ticker := time.NewTicker(lockPollInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire sector lock: %w", err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("acquire sector lock: %w", ctx.Err())
		case <-ticker.C:
		}
	}

	unlock := func() {
		// Release even when the caller's context is already cancelled.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := unlockScript.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil {
			l.logger.Warn("Failed to release sector lock",
				zap.String("sector_id", sectorID.String()),
				zap.Error(err))
		}
	}
	return unlock, nil
}
