package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/parking-occupancy/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	clientName  = "parking-occupancy"
	dialTimeout = 5 * time.Second
)

// Redis is the connection shared by the occupancy cache, the sector image
// streams and the sector lock. Binaries open it once and hand Client() to the
// stream and lock repositories.
type Redis struct {
	client *redis.Client
	addr   string
	logger *zap.Logger
}

// NewRedis connects and pings, so a service with an unreachable Redis fails
// at startup instead of on its first pass.
func NewRedis(cfg *config.RedisConfig, logger *zap.Logger) (*Redis, error) {
	r := &Redis{
		client: redis.NewClient(&redis.Options{
			Addr:        cfg.Addr(),
			Password:    cfg.Password,
			DB:          cfg.DB,
			ClientName:  clientName,
			DialTimeout: dialTimeout,
		}),
		addr:   cfg.Addr(),
		logger: logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	if err := r.Health(ctx); err != nil {
		if cerr := r.client.Close(); cerr != nil {
			logger.Warn("Failed to close Redis client", zap.Error(cerr))
		}
		return nil, err
	}

	logger.Info("Redis connected", zap.String("addr", r.addr), zap.Int("db", cfg.DB))
	return r, nil
}

// NewRedisFromClient wraps a client the caller already configured.
func NewRedisFromClient(client *redis.Client, logger *zap.Logger) *Redis {
	return &Redis{client: client, addr: client.Options().Addr, logger: logger}
}

// Health satisfies the health handler's checker.
func (r *Redis) Health(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis %s unreachable: %w", r.addr, err)
	}
	return nil
}

func (r *Redis) Client() *redis.Client {
	return r.client
}

func (r *Redis) Close() error {
	r.logger.Info("Closing Redis connection", zap.String("addr", r.addr))
	return r.client.Close()
}
