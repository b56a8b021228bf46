package live

import (
	"context"
	"sync"
)

// Fetcher loads the present state of a resource. It returns an error
// wrapping entities.ErrNotFound when the resource does not exist.
type Fetcher[T any] func(ctx context.Context, id string) (T, error)

// entry is the state kept for one watched resource. A new entry is pending
// until its seed fetch returns; publishes that arrive meanwhile are kept.
type entry[T any] struct {
	subscribers map[string]struct{}
	current     T
	// version grows with every publish; 0 means nothing is known yet
	version uint64
	// changed is closed and replaced on publish
	changed chan struct{}
	// ready is closed once the seed fetch has returned
	ready chan struct{}
	// failed marks an entry whose seed fetch failed before any publish
	failed bool
}

func newEntry[T any]() *entry[T] {
	return &entry[T]{
		subscribers: make(map[string]struct{}),
		changed:     make(chan struct{}),
		ready:       make(chan struct{}),
	}
}

func (e *entry[T]) seeded() bool {
	select {
	case <-e.ready:
		return true
	default:
		return false
	}
}

// Registry tracks, per resource id, the connected stream sessions and the
// latest published snapshot. An entry lives exactly as long as it has at
// least one subscriber.
type Registry[T any] struct {
	mu      sync.Mutex
	entries map[string]*entry[T]
	fetch   Fetcher[T]
}

// NewRegistry creates a registry that seeds new entries with fetch
func NewRegistry[T any](fetch Fetcher[T]) *Registry[T] {
	return &Registry[T]{
		entries: make(map[string]*entry[T]),
		fetch:   fetch,
	}
}

// Subscribe registers connID under id and returns the snapshot to send first
// together with its version. The first subscriber of an id seeds the entry
// from the fetcher; a fetch error leaves no entry behind unless a publish
// arrived during the fetch, in which case the published snapshot wins.
// Concurrent first subscribers share one fetch.
func (r *Registry[T]) Subscribe(ctx context.Context, id, connID string) (T, uint64, error) {
	for {
		r.mu.Lock()
		e, ok := r.entries[id]
		if !ok {
			e = newEntry[T]()
			e.subscribers[connID] = struct{}{}
			r.entries[id] = e
			r.mu.Unlock()
			return r.seed(ctx, id, connID, e)
		}
		e.subscribers[connID] = struct{}{}
		r.mu.Unlock()

		select {
		case <-e.ready:
		case <-ctx.Done():
			r.mu.Lock()
			r.removeLocked(id, e, connID)
			r.mu.Unlock()
			var zero T
			return zero, 0, ctx.Err()
		}

		r.mu.Lock()
		if e.failed {
			// the seeding session failed; try again with a fresh entry
			r.mu.Unlock()
			continue
		}
		current, version := e.current, e.version
		r.mu.Unlock()
		return current, version, nil
	}
}

// seed fetches the initial snapshot of a pending entry owned by connID
func (r *Registry[T]) seed(ctx context.Context, id, connID string, e *entry[T]) (T, uint64, error) {
	snapshot, err := r.fetch(ctx, id)

	r.mu.Lock()
	defer r.mu.Unlock()
	defer close(e.ready)

	if err != nil {
		if e.version == 0 {
			e.failed = true
			if r.entries[id] == e {
				delete(r.entries, id)
				close(e.changed)
			}
		} else {
			r.removeLocked(id, e, connID)
		}
		var zero T
		return zero, 0, err
	}
	if e.version == 0 {
		e.current = snapshot
		e.version = 1
	}
	return e.current, e.version, nil
}

// removeLocked drops connID from e and tears e down when it empties
func (r *Registry[T]) removeLocked(id string, e *entry[T], connID string) {
	delete(e.subscribers, connID)
	if len(e.subscribers) == 0 && r.entries[id] == e {
		delete(r.entries, id)
		close(e.changed)
	}
}

// Unsubscribe removes connID from id. The entry is dropped with its last
// subscriber. Unknown ids and connections are ignored.
func (r *Registry[T]) Unsubscribe(id, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[id]; ok {
		r.removeLocked(id, e, connID)
	}
}

// Publish replaces the current snapshot of id and wakes its sessions. It
// reports false, and stores nothing, when id has no subscribers. A publish
// during the seed fetch is kept in place of the fetched snapshot.
func (r *Registry[T]) Publish(id string, snapshot T) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return false
	}
	e.current = snapshot
	e.version++
	close(e.changed)
	e.changed = make(chan struct{})
	return true
}

// Peek returns the current snapshot of id and its version. ok is false once
// the entry has been torn down and while its seed is still being fetched.
func (r *Registry[T]) Peek(id string) (current T, version uint64, ok bool) {
	current, version, _, ok = r.watch(id)
	return current, version, ok
}

// watch is Peek plus the channel closed on the next publish
func (r *Registry[T]) watch(id string) (T, uint64, <-chan struct{}, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok || !e.seeded() {
		var zero T
		return zero, 0, nil, false
	}
	return e.current, e.version, e.changed, true
}

// Subscribers returns the number of sessions watching id
func (r *Registry[T]) Subscribers(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[id]; ok {
		return len(e.subscribers)
	}
	return 0
}

// Len returns the number of watched resources
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Connections returns the number of sessions across all resources
func (r *Registry[T]) Connections() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, e := range r.entries {
		n += len(e.subscribers)
	}
	return n
}
