package orderbook

// PriceLevel is a FIFO queue of resting orders at a single price.
// TotalQty tracks the sum of remaining quantities; the book adjusts it
// on every partial fill so the level aggregate is always exact.
type PriceLevel struct {
	Price int64

	head *Order
	tail *Order

	TotalQty   int64
	OrderCount int
}

func (p *PriceLevel) Enqueue(o *Order) {
	if p.head == nil {
		p.head = o
		p.tail = o
	} else {
		p.tail.next = o
		o.prev = p.tail
		p.tail = o
	}
	p.TotalQty += o.Remaining()
	p.OrderCount++
}

// PopHead removes and returns the oldest order. The caller must have
// already accounted for any fills against TotalQty; PopHead only
// subtracts what is still remaining.
func (p *PriceLevel) PopHead() *Order {
	o := p.head
	if o == nil {
		return nil
	}

	p.head = o.next
	if p.head != nil {
		p.head.prev = nil
	} else {
		p.tail = nil
	}

	o.next = nil
	o.prev = nil

	p.TotalQty -= o.Remaining()
	p.OrderCount--

	return o
}

// Remove unlinks an order in place without disturbing its siblings.
// Used by cancellation; FIFO order of the rest of the queue is kept.
func (p *PriceLevel) Remove(o *Order) {
	if o.prev != nil {
		o.prev.next = o.next
	} else {
		p.head = o.next
	}
	if o.next != nil {
		o.next.prev = o.prev
	} else {
		p.tail = o.prev
	}
	o.next = nil
	o.prev = nil

	p.TotalQty -= o.Remaining()
	p.OrderCount--
}

func (p *PriceLevel) Empty() bool {
	return p.head == nil
}

// Head returns the order with time priority at this level.
func (p *PriceLevel) Head() *Order {
	return p.head
}
