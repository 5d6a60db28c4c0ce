package orderbook

import "errors"

var (
	// ErrInvalidQty rejects non-positive quantities before any index
	// mutation; the book is unchanged when it is returned.
	ErrInvalidQty = errors.New("orderbook: quantity must be positive")

	// ErrInvalidPrice rejects non-positive limit prices. Market orders
	// carry no price and are exempt.
	ErrInvalidPrice = errors.New("orderbook: limit price must be positive")

	// ErrBookCrossed reports an internal consistency failure: best bid
	// still >= best ask after a completed matching pass. Unreachable
	// under correct locking; callers must treat it as fatal.
	ErrBookCrossed = errors.New("orderbook: book crossed after match pass")
)

// Validate applies the admission rules shared by the book and the
// service layer, which checks them before logging an intent.
func Validate(kind Kind, price, qty int64) error {
	if qty <= 0 {
		return ErrInvalidQty
	}
	if kind != Market && price <= 0 {
		return ErrInvalidPrice
	}
	return nil
}
