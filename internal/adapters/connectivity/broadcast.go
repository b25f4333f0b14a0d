// Package connectivity holds ConnectivityMonitor implementations.
package connectivity

import (
	"sync"

	"github.com/example/watchful/internal/ports/secondary"
)

// broadcaster tracks the current state and fans changes out to
// subscribers. Each subscriber channel holds one value; a slow subscriber
// sees the latest state, not every intermediate one.
type broadcaster struct {
	mu          sync.Mutex
	current     secondary.Connectivity
	subscribers map[int]chan secondary.Connectivity
	nextID      int
}

func newBroadcaster(initial secondary.Connectivity) *broadcaster {
	return &broadcaster{
		current:     initial,
		subscribers: make(map[int]chan secondary.Connectivity),
	}
}

func (b *broadcaster) Current() secondary.Connectivity {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

func (b *broadcaster) Subscribe() (<-chan secondary.Connectivity, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan secondary.Connectivity, 1)
	b.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subscribers, id)
		})
	}
}

// set records a state and notifies subscribers. Returns false when the
// state did not change.
func (b *broadcaster) set(state secondary.Connectivity) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if state == b.current {
		return false
	}
	b.current = state
	for _, ch := range b.subscribers {
		select {
		case <-ch:
		default:
		}
		ch <- state
	}
	return true
}
