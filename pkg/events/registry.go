package events

import (
	"sync"
	"sync/atomic"
	"time"
)

// DefaultCapacity is the per-subscriber buffer size. A subscriber that falls
// this far behind starts losing its oldest pending events.
const DefaultCapacity = 256

// Registry maps user ids to their multicast channels. There is at most one
// UserChannel per user at any time; creation is atomic with respect to
// concurrent lookups. Entries are kept after the last session disconnects
// unless an eviction grace period is configured.
type Registry struct {
	mu       sync.Mutex
	users    map[int64]*UserChannel
	capacity int
	grace    time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

// NewRegistry creates a registry whose subscriber buffers hold capacity
// events. If evictGrace is positive, a janitor removes channels that have had
// zero subscribers for at least that long; zero disables eviction.
func NewRegistry(capacity int, evictGrace time.Duration) *Registry {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	r := &Registry{
		users:    make(map[int64]*UserChannel),
		capacity: capacity,
		grace:    evictGrace,
		stop:     make(chan struct{}),
	}
	if evictGrace > 0 {
		go r.janitor()
	}
	return r
}

// GetOrCreate returns the user's channel, creating it if absent.
func (r *Registry) GetOrCreate(userID int64) *UserChannel {
	r.mu.Lock()
	defer r.mu.Unlock()
	uc, ok := r.users[userID]
	if !ok {
		uc = &UserChannel{
			userID:   userID,
			capacity: r.capacity,
			reg:      r,
			subs:     make(map[*Subscriber]struct{}),
			idleAt:   time.Now(),
		}
		r.users[userID] = uc
	}
	return uc
}

// Lookup returns the user's channel without creating one. Publishing to a
// user with no channel is a no-op, so absence is not an error.
func (r *Registry) Lookup(userID int64) (*UserChannel, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	uc, ok := r.users[userID]
	return uc, ok
}

// Subscribe attaches a new subscriber to the user's channel, creating the
// channel if needed.
func (r *Registry) Subscribe(userID int64) *Subscriber {
	return r.GetOrCreate(userID).Subscribe()
}

// Stats returns the number of registered users and attached subscribers.
func (r *Registry) Stats() (users, subscribers int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users = len(r.users)
	for _, uc := range r.users {
		uc.mu.Lock()
		subscribers += len(uc.subs)
		uc.mu.Unlock()
	}
	return users, subscribers
}

// Close stops the eviction janitor. Channels themselves need no teardown.
func (r *Registry) Close() {
	r.stopOnce.Do(func() { close(r.stop) })
}

func (r *Registry) janitor() {
	interval := r.grace / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.evictIdle(time.Now())
		}
	}
}

func (r *Registry) evictIdle(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, uc := range r.users {
		uc.mu.Lock()
		if len(uc.subs) == 0 && now.Sub(uc.idleAt) >= r.grace {
			uc.evicted = true
			delete(r.users, id)
		}
		uc.mu.Unlock()
	}
}

// UserChannel is the multicast channel for one user. Every active session of
// that user holds a Subscriber attached to it.
type UserChannel struct {
	userID   int64
	capacity int
	reg      *Registry

	mu      sync.Mutex
	subs    map[*Subscriber]struct{}
	evicted bool
	idleAt  time.Time
}

// Subscribe attaches a new subscriber. Only events published after this call
// are delivered; there is no retroactive delivery.
//
// The janitor may evict this channel between the lookup that produced it and
// the attach, which would leave the subscriber on an entry Lookup can no
// longer find. Subscribe detects that under the channel lock and re-resolves
// through the registry, so the returned subscriber is always reachable by
// Publish.
func (uc *UserChannel) Subscribe() *Subscriber {
	for {
		uc.mu.Lock()
		if !uc.evicted {
			sub := &Subscriber{
				ch: make(chan Event, uc.capacity),
				uc: uc,
			}
			uc.subs[sub] = struct{}{}
			uc.idleAt = time.Time{}
			uc.mu.Unlock()
			return sub
		}
		uc.mu.Unlock()
		uc = uc.reg.GetOrCreate(uc.userID)
	}
}

// Publish fans the event out to every attached subscriber. A full subscriber
// buffer loses its oldest pending event instead of blocking the caller, so
// one slow consumer cannot stall delivery to the rest.
func (uc *UserChannel) Publish(ev Event) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	for sub := range uc.subs {
		select {
		case sub.ch <- ev:
			continue
		default:
		}
		// Buffer full: shed the oldest event and retry once. The second
		// send can only fail if a consumer raced us, in which case there
		// is room next time; the event is counted dropped either way.
		select {
		case <-sub.ch:
			sub.dropped.Add(1)
		default:
		}
		select {
		case sub.ch <- ev:
		default:
			sub.dropped.Add(1)
		}
	}
}

func (uc *UserChannel) unsubscribe(sub *Subscriber) {
	uc.mu.Lock()
	delete(uc.subs, sub)
	if len(uc.subs) == 0 {
		uc.idleAt = time.Now()
	}
	uc.mu.Unlock()
}

// Subscriber is one session's receive handle into a user's channel.
type Subscriber struct {
	ch      chan Event
	uc      *UserChannel
	dropped atomic.Int64
	closed  sync.Once
}

// C is the stream of delivered events, in publish order minus any shed under
// backpressure.
func (s *Subscriber) C() <-chan Event { return s.ch }

// TakeGap reports whether events were dropped since the last call and resets
// the counter. Sessions use it to emit a resync marker.
func (s *Subscriber) TakeGap() bool {
	return s.dropped.Swap(0) > 0
}

// Close detaches the subscriber from its channel. Other subscribers of the
// same user keep receiving. Safe to call more than once.
func (s *Subscriber) Close() {
	s.closed.Do(func() { s.uc.unsubscribe(s) })
}
