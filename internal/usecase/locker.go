package usecase

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/parking-occupancy/internal/domain/repository"
)

// KeyedMutex is an in-process SectorLocker. Each sector gets its own
// one-slot semaphore, dropped once nobody holds or waits for it.
type KeyedMutex struct {
	mu    sync.Mutex
	slots map[uuid.UUID]*keyedSlot
}

type keyedSlot struct {
	ch   chan struct{}
	refs int
}

var _ repository.SectorLocker = (*KeyedMutex)(nil)

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{slots: make(map[uuid.UUID]*keyedSlot)}
}

func (k *KeyedMutex) Lock(ctx context.Context, sectorID uuid.UUID) (func(), error) {
	slot := k.acquireSlot(sectorID)

	select {
	case slot.ch <- struct{}{}:
	case <-ctx.Done():
		k.releaseSlot(sectorID, slot)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-slot.ch
			k.releaseSlot(sectorID, slot)
		})
	}, nil
}

func (k *KeyedMutex) acquireSlot(sectorID uuid.UUID) *keyedSlot {
	k.mu.Lock()
	defer k.mu.Unlock()

	slot, ok := k.slots[sectorID]
	if !ok {
		slot = &keyedSlot{ch: make(chan struct{}, 1)}
		k.slots[sectorID] = slot
	}
	slot.refs++
	return slot
}

func (k *KeyedMutex) releaseSlot(sectorID uuid.UUID, slot *keyedSlot) {
	k.mu.Lock()
	defer k.mu.Unlock()

	slot.refs--
	if slot.refs == 0 {
		delete(k.slots, sectorID)
	}
}

// held returns the number of sectors with a holder or waiter.
func (k *KeyedMutex) held() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.slots)
}
