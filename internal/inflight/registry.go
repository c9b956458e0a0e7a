// Package inflight deduplicates concurrent work by caller-supplied
// fingerprint. It is the only state shared across requests; everything else
// in the pipeline is request-scoped.
package inflight

import (
	"fmt"
	"sync"
	"time"
)

// DefaultTTL guards against entries leaked by crashed owners. Entries older
// than this are swept on the next access; there is no background timer.
const DefaultTTL = 5 * time.Minute

// Conflict reports that the same fingerprint is already being worked on.
// It carries the age of the original request so callers can tell a fresh
// duplicate from a stuck one.
type Conflict struct {
	Key       string
	Owner     string
	HeldSince time.Time
	Age       time.Duration
}

func (c *Conflict) Error() string {
	return fmt.Sprintf("inflight: %q already in progress for %s (owner %s)", c.Key, c.Age.Round(time.Second), c.Owner)
}

type entry struct {
	owner     string
	startTime time.Time
}

// Registry tracks in-progress fingerprints. Acquisition is atomic: the
// check and the insert happen under one lock, so two callers can never both
// own a key.
type Registry struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Registry{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// TryAcquire claims key for owner. On success it returns nil; if another
// owner holds the key it returns a *Conflict. Stale entries are swept
// opportunistically before the check.
func (r *Registry) TryAcquire(key, owner string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweepLocked(now)

	if e, ok := r.entries[key]; ok {
		return &Conflict{
			Key:       key,
			Owner:     e.owner,
			HeldSince: e.startTime,
			Age:       now.Sub(e.startTime),
		}
	}
	r.entries[key] = entry{owner: owner, startTime: now}
	return nil
}

// Release frees key for the next acquirer. Releasing an unheld key is a
// no-op.
func (r *Registry) Release(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, key)
}

// Len reports the number of live entries, sweeping stale ones first.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked(r.now())
	return len(r.entries)
}

func (r *Registry) sweepLocked(now time.Time) {
	for k, e := range r.entries {
		if now.Sub(e.startTime) > r.ttl {
			delete(r.entries, k)
		}
	}
}
