package orderbook

type Side int
type Kind int
type Status int

const (
	Bid Side = iota
	Ask
)

const (
	Limit Kind = iota
	Market
	IOC
	FOK
	PostOnly
)

// Order lifecycle:
//
//	New -> (Resting <-> PartiallyFilled) -> Filled
//	New/Resting/PartiallyFilled -> Cancelled
//
// Filled and Cancelled are terminal. A terminal order is never present
// in a price level.
const (
	StatusNew Status = iota
	StatusResting
	StatusPartiallyFilled
	StatusFilled
	StatusCancelled
)

func (s Side) String() string {
	if s == Bid {
		return "bid"
	}
	return "ask"
}

func (k Kind) String() string {
	switch k {
	case Limit:
		return "limit"
	case Market:
		return "market"
	case IOC:
		return "ioc"
	case FOK:
		return "fok"
	case PostOnly:
		return "post-only"
	default:
		return "unknown"
	}
}

func (s Status) String() string {
	switch s {
	case StatusNew:
		return "new"
	case StatusResting:
		return "resting"
	case StatusPartiallyFilled:
		return "partial"
	case StatusFilled:
		return "filled"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Order is a pure domain entity. Identity fields (ID, User, Symbol,
// Side, Kind, Price) never change after submission; only Filled and
// Status are mutated, and only by the book.
//
// Price and Qty are integer ticks/lots. Price is meaningless for
// Market orders and normalized to 0 on submit.
type Order struct {
	ID     uint64
	User   uint64
	Symbol string

	Price  int64
	Qty    int64
	Filled int64

	Side   Side
	Kind   Kind
	Status Status

	next *Order
	prev *Order
}

func (o *Order) Remaining() int64 {
	return o.Qty - o.Filled
}

// Terminal reports whether the order has left the book for good.
func (o *Order) Terminal() bool {
	return o.Status == StatusFilled || o.Status == StatusCancelled
}

// Next allows read-only traversal of a price level queue.
func (o *Order) Next() *Order {
	return o.next
}
