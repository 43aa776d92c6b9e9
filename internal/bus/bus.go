// Package bus holds the shared product-list broadcast state. Every
// directory adapter writes its results here after a successful operation;
// listing views and the SSE stream only read or subscribe, never mutate.
// The bus is a display cache, not a source of truth: when two mutations are
// in flight, the last one to complete wins.
package bus

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/vitrineshop/catalog_api/internal/models"
)

// Snapshot is the state delivered to subscribers: the last known product
// list and whether a listing is currently in flight.
type Snapshot struct {
	Products []models.Product `json:"products"`
	Loading  bool             `json:"loading"`
}

// Subscriber receives snapshots on a buffered channel. A subscriber that
// falls behind loses intermediate snapshots, never blocks the writers.
type Subscriber struct {
	ID     string
	Events chan Snapshot
}

// Bus fans snapshot updates out to subscribers and keeps the current state
// readable at any time.
type Bus struct {
	mu       sync.RWMutex
	products []models.Product
	loading  bool
	subs     map[string]*Subscriber
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{
		subs: make(map[string]*Subscriber),
	}
}

// Subscribe registers a listener under the given id.
func (b *Bus) Subscribe(id string) *Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := &Subscriber{
		ID:     id,
		Events: make(chan Snapshot, 16),
	}
	b.subs[id] = s
	log.Debug().Str("subscriber_id", id).Int("total", len(b.subs)).Msg("bus subscriber added")
	return s
}

// Unsubscribe removes a listener and closes its channel.
func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if s, ok := b.subs[id]; ok {
		close(s.Events)
		delete(b.subs, id)
		log.Debug().Str("subscriber_id", id).Int("total", len(b.subs)).Msg("bus subscriber removed")
	}
}

// Current returns the latest snapshot.
func (b *Bus) Current() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Snapshot{
		Products: append([]models.Product(nil), b.products...),
		Loading:  b.loading,
	}
}

// SetLoading updates the loading flag and notifies subscribers.
func (b *Bus) SetLoading(loading bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loading = loading
	b.broadcastLocked()
}

// Publish replaces the cached list with a freshly fetched one.
func (b *Bus) Publish(products []models.Product) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.products = append([]models.Product(nil), products...)
	b.broadcastLocked()
}

// ApplyCreate appends one record to the cached list without a refetch.
func (b *Bus) ApplyCreate(p models.Product) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.products = append(b.products, p)
	b.broadcastLocked()
}

// ApplyUpdate replaces the matching record in place. A record the cache has
// never seen is ignored: the next full publish will pick it up.
func (b *Bus) ApplyUpdate(p models.Product) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.products {
		if b.products[i].ID == p.ID {
			b.products[i] = p
			b.broadcastLocked()
			return
		}
	}
}

// ApplyDelete removes the matching record from the cached list.
func (b *Bus) ApplyDelete(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.products {
		if b.products[i].ID == id {
			b.products = append(b.products[:i], b.products[i+1:]...)
			b.broadcastLocked()
			return
		}
	}
}

// Clear resets the cached list to empty.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.products = nil
	b.loading = false
	b.broadcastLocked()
}

// SubscriberCount returns the number of active listeners.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// broadcastLocked sends the current snapshot to every subscriber without
// blocking. Must be called with the write lock held.
func (b *Bus) broadcastLocked() {
	snap := Snapshot{
		Products: append([]models.Product(nil), b.products...),
		Loading:  b.loading,
	}
	for _, s := range b.subs {
		select {
		case s.Events <- snap:
		default:
			log.Warn().Str("subscriber_id", s.ID).Msg("bus subscriber buffer full, dropping snapshot")
		}
	}
}
