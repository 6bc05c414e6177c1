package service

import (
	"sync"

	"thermostat_bridge/internal/models"
)

// Publisher receives state snapshots. Implementations must not block.
type Publisher interface {
	Publish(st models.ThermostatState)
}

// PublisherFunc adapts a plain function to Publisher.
type PublisherFunc func(st models.ThermostatState)

func (f PublisherFunc) Publish(st models.ThermostatState) { f(st) }

// Broadcaster fans a snapshot out to every subscriber.
type Broadcaster struct {
	mu   sync.RWMutex
	next int
	subs map[int]Publisher
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]Publisher)}
}

// Subscribe registers p and returns a func that removes it.
func (b *Broadcaster) Subscribe(p Publisher) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	b.subs[id] = p
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

func (b *Broadcaster) Publish(st models.ThermostatState) {
	b.mu.RLock()
	subs := make([]Publisher, 0, len(b.subs))
	for _, p := range b.subs {
		subs = append(subs, p)
	}
	b.mu.RUnlock()
	for _, p := range subs {
		p.Publish(st)
	}
}
