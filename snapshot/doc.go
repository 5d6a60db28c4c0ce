// Package snapshot persists and restores point-in-time views of the
// book, and provides the reader epoch adapter that keeps snapshot
// assembly safe against order-object recycling. Snapshots bound WAL
// growth: once a snapshot at seq S is on disk, entry-WAL segments at
// or below S can be dropped.
package snapshot
