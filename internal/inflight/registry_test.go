package inflight

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestTryAcquireConflictAndRelease(t *testing.T) {
	r := NewRegistry(time.Minute)

	if err := r.TryAcquire("user1:site1", "req-a"); err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	err := r.TryAcquire("user1:site1", "req-b")
	var c *Conflict
	if !errors.As(err, &c) {
		t.Fatalf("expected Conflict, got %v", err)
	}
	if c.Owner != "req-a" {
		t.Fatalf("owner = %q", c.Owner)
	}
	if c.HeldSince.IsZero() {
		t.Fatalf("conflict must carry heldSince")
	}

	r.Release("user1:site1")
	if err := r.TryAcquire("user1:site1", "req-c"); err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
}

func TestSweepOnAccess(t *testing.T) {
	r := NewRegistry(time.Minute)
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return clock }

	if err := r.TryAcquire("k", "stale-owner"); err != nil {
		t.Fatalf("acquire: %v", err)
	}

	// Within TTL the entry still blocks.
	clock = clock.Add(30 * time.Second)
	if err := r.TryAcquire("k", "other"); err == nil {
		t.Fatalf("expected conflict inside ttl")
	}

	// Past TTL the next access sweeps it without any timer.
	clock = clock.Add(2 * time.Minute)
	if err := r.TryAcquire("k", "other"); err != nil {
		t.Fatalf("expected stale entry swept: %v", err)
	}
	if r.Len() != 1 {
		t.Fatalf("len = %d", r.Len())
	}
}

func TestAcquireIsAtomicUnderConcurrency(t *testing.T) {
	r := NewRegistry(time.Minute)

	const n = 64
	var wg sync.WaitGroup
	wins := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if err := r.TryAcquire("same-key", "owner"); err == nil {
				wins <- "won"
			}
		}(i)
	}
	wg.Wait()
	close(wins)

	won := 0
	for range wins {
		won++
	}
	if won != 1 {
		t.Fatalf("exactly one acquirer must win, got %d", won)
	}
}
