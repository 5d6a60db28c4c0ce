// Package memory provides the primitives for object reuse and safe
// reclamation: a typed pool, a retire ring for terminal orders, and
// global epoch tracking. Retired orders only return to the pool once
// every registered snapshot reader has left its read section, so a
// reader assembling a depth view never observes a recycled order.
//
// The package is dependency-free and knows nothing about the book.
package memory
