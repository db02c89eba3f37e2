// SPDX-License-Identifier: Apache-2.0

package service

import (
	"sync"

	"github.com/noa10/mataresit-app-sub003/models"
)

// statusBroadcaster fans status transitions out to subscribers. Channels are
// buffered and writes never block: a subscriber that stops draining misses
// transitions rather than stalling the engine.
type statusBroadcaster struct {
	mu     sync.Mutex
	subs   map[int]chan models.SyncStatus
	nextID int
}

func newStatusBroadcaster() *statusBroadcaster {
	return &statusBroadcaster{subs: make(map[int]chan models.SyncStatus)}
}

func (b *statusBroadcaster) subscribe() (<-chan models.SyncStatus, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan models.SyncStatus, 8)
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub)
			}
		})
	}
	return ch, cancel
}

func (b *statusBroadcaster) publish(status models.SyncStatus) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subs {
		select {
		case sub <- status:
		default:
		}
	}
}
