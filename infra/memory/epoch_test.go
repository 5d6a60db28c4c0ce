package memory

import "testing"

type obj struct{ id int }

func newObjPool() *Pool[obj] {
	return NewPool(func() *obj { return new(obj) })
}

func TestReclaimWithNoReaders(t *testing.T) {
	pool := newObjPool()
	ring := NewRetireRing(8)

	ring.Enqueue(&obj{id: 1})
	ring.Enqueue(&obj{id: 2})

	AdvanceEpochAndReclaim(ring, pool)
	if ring.Dequeue() != nil {
		t.Fatal("ring should be drained with no readers")
	}
}

func TestReclaimBlockedByActiveReader(t *testing.T) {
	pool := newObjPool()
	ring := NewRetireRing(8)
	reader := &ReaderEpoch{}
	reader.Exit()

	ring.Enqueue(&obj{id: 1})

	reader.Enter()
	AdvanceEpochAndReclaim(ring, pool, reader)
	if ring.Dequeue() == nil {
		t.Fatal("object must stay retired while a reader is inside a section")
	}

	// After the reader leaves, the next pass reclaims.
	ring.Enqueue(&obj{id: 2})
	reader.Exit()
	AdvanceEpochAndReclaim(ring, pool, reader)
	if ring.Dequeue() != nil {
		t.Fatal("ring should be drained once the reader exited")
	}
}

func TestPoolRoundtrip(t *testing.T) {
	pool := newObjPool()

	o := pool.Get()
	o.id = 42
	pool.Put(o)

	// PutAny accepts the pool's own type and nothing else.
	pool.PutAny(pool.Get())

	defer func() {
		if recover() == nil {
			t.Fatal("PutAny with wrong type must panic")
		}
	}()
	pool.PutAny("not an obj")
}
