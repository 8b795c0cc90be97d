package domain

import (
	"sync"
	"testing"
	"time"
)

func TestIDGeneratorSameMillisecond(t *testing.T) {
	fixed := time.UnixMilli(1_700_000_000_000)
	g := &IDGenerator{now: func() time.Time { return fixed }}

	first := g.Next()
	second := g.Next()
	if first != fixed.UnixMilli() {
		t.Fatalf("expected first id to equal clock reading, got %d", first)
	}
	if second != first+1 {
		t.Fatalf("expected ids to increment within one tick, got %d then %d", first, second)
	}
}

func TestIDGeneratorObserve(t *testing.T) {
	fixed := time.UnixMilli(1000)
	g := &IDGenerator{now: func() time.Time { return fixed }}
	g.Observe(5000)
	g.Observe(10)
	if got := g.Next(); got != 5001 {
		t.Fatalf("expected id above observed floor, got %d", got)
	}
}

func TestIDGeneratorConcurrentUnique(t *testing.T) {
	g := NewIDGenerator()
	const n = 500
	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- g.Next()
		}()
	}
	wg.Wait()
	close(ids)
	seen := make(map[int64]struct{}, n)
	for id := range ids {
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = struct{}{}
	}
}
