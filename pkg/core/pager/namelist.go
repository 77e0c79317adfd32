package pager

import (
	"context"

	"github.com/oneconcern/datahub/pkg/core/status"
	"github.com/oneconcern/datahub/pkg/errors"
)

// LookupFunc fetches a single item by name. It returns status.ErrResourceNotExist when no item has that name.
type LookupFunc[T any] func(ctx context.Context, name string) (T, error)

// NameList is a Sequence which may also be addressed by name.
//
// Names are indexed from the pages fetched so far. A name not yet seen is fetched
// with the lookup function when available, or else by walking the remaining pages.
type NameList[T any] struct {
	*Sequence[T]
	nameOf func(T) string
	lookup LookupFunc[T]
	index  map[string]int
}

// NewNameList builds an associative view over a sequence
func NewNameList[T any](seq *Sequence[T], nameOf func(T) string, lookup LookupFunc[T]) *NameList[T] {
	n := &NameList[T]{
		Sequence: seq,
		nameOf:   nameOf,
		lookup:   lookup,
		index:    make(map[string]int),
	}
	for offset, items := range seq.pages {
		n.indexPage(offset, items)
	}
	previous := seq.onPage
	seq.onPage = func(offset int, items []T) {
		if previous != nil {
			previous(offset, items)
		}
		n.indexPage(offset, items)
	}
	return n
}

func (n *NameList[T]) indexPage(offset int, items []T) {
	for i, item := range items {
		n.index[n.nameOf(item)] = offset + i
	}
}

// ByName retrieves an item by its name
func (n *NameList[T]) ByName(ctx context.Context, name string) (T, error) {
	var zero T
	if idx, ok := n.index[name]; ok {
		return n.Get(ctx, idx)
	}
	if n.lookup != nil {
		return n.lookup(ctx, name)
	}

	it := n.Iter()
	for it.Next(ctx) {
		if n.nameOf(it.Item()) == name {
			return it.Item(), nil
		}
	}
	if err := it.Err(); err != nil {
		return zero, err
	}
	return zero, status.ErrResourceNotExist.WrapMessage("%q", name)
}

// Has an item with this name?
func (n *NameList[T]) Has(ctx context.Context, name string) (bool, error) {
	_, err := n.ByName(ctx, name)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, status.ErrResourceNotExist):
		return false, nil
	default:
		return false, err
	}
}

// Names of all the items in the list, in sequence order
func (n *NameList[T]) Names(ctx context.Context) ([]string, error) {
	var names []string
	err := n.ForEach(ctx, func(item T) error {
		names = append(names, n.nameOf(item))
		return nil
	})
	return names, err
}
