package redis_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	redisRepo "github.com/parking-occupancy/internal/repository/redis"
)

func TestSectorLocker_SerializesSameSector(t *testing.T) {
	client := getTestRedisClient(t)
	defer client.Close()

	locker := redisRepo.NewSectorLocker(client, 5*time.Second, zap.NewNop())
	sectorID := uuid.New()
	ctx := context.Background()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(ctx, sectorID)
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			atomic.AddInt32(&inside, -1)
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
}

func TestSectorLocker_DifferentSectorsDoNotBlock(t *testing.T) {
	client := getTestRedisClient(t)
	defer client.Close()

	locker := redisRepo.NewSectorLocker(client, 5*time.Second, zap.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	unlockA, err := locker.Lock(ctx, uuid.New())
	require.NoError(t, err)
	defer unlockA()

	unlockB, err := locker.Lock(ctx, uuid.New())
	require.NoError(t, err)
	unlockB()
}

func TestSectorLocker_ContextCancelled(t *testing.T) {
	client := getTestRedisClient(t)
	defer client.Close()

	locker := redisRepo.NewSectorLocker(client, 5*time.Second, zap.NewNop())
	sectorID := uuid.New()

	unlock, err := locker.Lock(context.Background(), sectorID)
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()

	_, err = locker.Lock(ctx, sectorID)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
