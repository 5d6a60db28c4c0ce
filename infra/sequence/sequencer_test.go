package sequence

import (
	"sync"
	"testing"
)

func TestNextIsMonotonic(t *testing.T) {
	s := New(0)
	if got := s.Next(); got != 1 {
		t.Fatalf("first Next = %d, want 1", got)
	}
	if got := s.Next(); got != 2 {
		t.Fatalf("second Next = %d, want 2", got)
	}
	if got := s.Current(); got != 2 {
		t.Fatalf("Current = %d, want 2", got)
	}
}

func TestResetResumes(t *testing.T) {
	s := New(0)
	s.Reset(100)
	if got := s.Next(); got != 101 {
		t.Fatalf("Next after Reset(100) = %d, want 101", got)
	}
}

func TestConcurrentNextNoDuplicates(t *testing.T) {
	s := New(0)
	const workers = 8
	const perWorker = 10000

	results := make([][]uint64, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			ids := make([]uint64, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				ids = append(ids, s.Next())
			}
			results[w] = ids
		}(w)
	}
	wg.Wait()

	seen := make(map[uint64]bool, workers*perWorker)
	for _, ids := range results {
		for _, id := range ids {
			if seen[id] {
				t.Fatalf("duplicate id %d", id)
			}
			seen[id] = true
		}
	}
	if len(seen) != workers*perWorker {
		t.Fatalf("got %d unique ids, want %d", len(seen), workers*perWorker)
	}
}
