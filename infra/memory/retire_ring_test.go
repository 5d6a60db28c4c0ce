package memory

import (
	"sync"
	"testing"
)

func TestRingFIFO(t *testing.T) {
	r := NewRetireRing(8)
	for i := 0; i < 5; i++ {
		if !r.Enqueue(i) {
			t.Fatalf("enqueue %d failed", i)
		}
	}
	for i := 0; i < 5; i++ {
		if got := r.Dequeue(); got != i {
			t.Fatalf("dequeue = %v, want %d", got, i)
		}
	}
	if got := r.Dequeue(); got != nil {
		t.Fatalf("empty ring returned %v", got)
	}
}

func TestRingFullRejects(t *testing.T) {
	r := NewRetireRing(4)
	for i := 0; i < 4; i++ {
		if !r.Enqueue(i) {
			t.Fatalf("enqueue %d failed before full", i)
		}
	}
	if r.Enqueue(99) {
		t.Fatal("enqueue into full ring must fail")
	}
	r.Dequeue()
	if !r.Enqueue(99) {
		t.Fatal("enqueue after dequeue must succeed")
	}
}

func TestRingWrapAround(t *testing.T) {
	r := NewRetireRing(4)
	for round := 0; round < 10; round++ {
		for i := 0; i < 3; i++ {
			if !r.Enqueue(round*10 + i) {
				t.Fatalf("round %d enqueue %d failed", round, i)
			}
		}
		for i := 0; i < 3; i++ {
			want := round*10 + i
			if got := r.Dequeue(); got != want {
				t.Fatalf("round %d dequeue = %v, want %d", round, got, want)
			}
		}
	}
}

func TestRingSPSC(t *testing.T) {
	r := NewRetireRing(1 << 10)
	const n = 100000

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		next := 0
		for next < n {
			v := r.Dequeue()
			if v == nil {
				continue
			}
			if v != next {
				t.Errorf("dequeued %v, want %d", v, next)
				return
			}
			next++
		}
	}()

	for i := 0; i < n; {
		if r.Enqueue(i) {
			i++
		}
	}
	wg.Wait()
}
