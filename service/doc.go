// Package service coordinates the domain book with the infrastructure
// around it: sequencing, write-ahead logging, the trade outbox, the
// lookup cache, and object reclamation. OrderService is the only write
// entry point into the engine; its mutex is the exclusive-access
// region the book's correctness depends on.
package service
