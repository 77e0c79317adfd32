// Package pager exposes server-paginated collections as lazy sequences.
//
// Pages are fetched on demand, cached and never evicted. A Sequence is meant to be
// used by a single goroutine at a time.
package pager
