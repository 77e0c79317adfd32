package pager

import (
	"context"

	"go.uber.org/zap"

	"github.com/oneconcern/datahub/pkg/core/status"
)

// DefaultPageSize used when listing remote collections
const DefaultPageSize = 128

// FetchFunc retrieves at most limit items starting at offset, and reports the total count of the remote collection
type FetchFunc[T any] func(ctx context.Context, offset, limit int) ([]T, int, error)

// Sequence is a lazy, randomly-indexable view over a paginated remote collection
type Sequence[T any] struct {
	settings
	fetch  FetchFunc[T]
	pages  map[int][]T
	total  int
	known  bool
	onPage func(offset int, items []T)
}

// New sequence over a paginated collection
func New[T any](fetch FetchFunc[T], opts ...Option) *Sequence[T] {
	if fetch == nil {
		panic("dev error: pager requires a fetch function")
	}
	s := &Sequence[T]{
		settings: defaultSettings(),
		fetch:    fetch,
		pages:    make(map[int][]T),
	}
	for _, apply := range opts {
		apply(&s.settings)
	}
	return s
}

// Static sequence over items known in advance
func Static[T any](items []T) *Sequence[T] {
	s := New(func(_ context.Context, offset, limit int) ([]T, int, error) {
		if offset >= len(items) {
			return nil, len(items), nil
		}
		end := offset + limit
		if end > len(items) {
			end = len(items)
		}
		return items[offset:end], len(items), nil
	}, PageSize(len(items)))
	return s
}

// PageSize of this sequence
func (s *Sequence[T]) PageSize() int {
	return s.pageSize
}

// Len of the remote collection. This fetches the first page if no page has been retrieved yet.
func (s *Sequence[T]) Len(ctx context.Context) (int, error) {
	if !s.known {
		if _, err := s.page(ctx, 0); err != nil {
			return 0, err
		}
	}
	return s.total, nil
}

// Get the item at some index, fetching the page holding it if needed
func (s *Sequence[T]) Get(ctx context.Context, index int) (T, error) {
	var zero T
	if index < 0 || (s.known && index >= s.total) {
		return zero, s.outOfRange(index)
	}

	offset := (index / s.pageSize) * s.pageSize
	items, err := s.page(ctx, offset)
	if err != nil {
		return zero, err
	}
	pos := index - offset
	if index >= s.total || pos >= len(items) {
		return zero, s.outOfRange(index)
	}
	return items[pos], nil
}

// Iter returns a new iterator over the sequence, starting at the first item.
//
// Pages already fetched are not fetched again.
func (s *Sequence[T]) Iter() *Iterator[T] {
	return &Iterator[T]{seq: s}
}

// ForEach applies fn to every item of the sequence in order, stopping on the first error
func (s *Sequence[T]) ForEach(ctx context.Context, fn func(T) error) error {
	it := s.Iter()
	for it.Next(ctx) {
		if err := fn(it.Item()); err != nil {
			return err
		}
	}
	return it.Err()
}

// All items of the remote collection
func (s *Sequence[T]) All(ctx context.Context) ([]T, error) {
	var all []T
	err := s.ForEach(ctx, func(item T) error {
		all = append(all, item)
		return nil
	})
	return all, err
}

func (s *Sequence[T]) outOfRange(index int) error {
	return status.ErrIndexOutOfRange.WrapMessage("index %d, length %d", index, s.total)
}

// page at offset, from cache or from the server
func (s *Sequence[T]) page(ctx context.Context, offset int) ([]T, error) {
	if items, ok := s.pages[offset]; ok {
		return items, nil
	}
	items, total, err := s.fetch(ctx, offset, s.pageSize)
	if err != nil {
		return nil, err
	}
	s.l.Debug("fetched page", zap.Int("offset", offset), zap.Int("count", len(items)), zap.Int("total", total))

	if s.known && total != s.total {
		return nil, status.ErrSequenceMutated.WrapMessage("total was %d, page at offset %d reports %d", s.total, offset, total)
	}
	if len(items) > s.pageSize {
		items = items[:s.pageSize]
	}

	// a short page before the end of the collection is completed from the next offset
	for n := len(items); n < s.pageSize && offset+n < total; n = len(items) {
		if n == 0 {
			return nil, status.ErrUnexpectedResponse.WrapMessage("empty page at offset %d, total is %d", offset, total)
		}
		more, again, err := s.fetch(ctx, offset+n, s.pageSize-n)
		if err != nil {
			return nil, err
		}
		if again != total {
			return nil, status.ErrSequenceMutated.WrapMessage("total was %d, page at offset %d reports %d", total, offset+n, again)
		}
		if len(more) == 0 {
			return nil, status.ErrUnexpectedResponse.WrapMessage("empty page at offset %d, total is %d", offset+n, total)
		}
		if len(more) > s.pageSize-n {
			more = more[:s.pageSize-n]
		}
		items = append(items[:n:n], more...)
	}
	s.total = total
	s.known = true
	s.pages[offset] = items
	if s.onPage != nil {
		s.onPage(offset, items)
	}
	return items, nil
}

// Iterator walks a sequence page by page
type Iterator[T any] struct {
	seq  *Sequence[T]
	idx  int
	cur  T
	err  error
	done bool
}

// Next advances the iterator. It returns false when the sequence is exhausted or an error occurred.
func (it *Iterator[T]) Next(ctx context.Context) bool {
	if it.done || it.err != nil {
		return false
	}
	s := it.seq
	if s.known && it.idx >= s.total {
		it.done = true
		return false
	}

	offset := (it.idx / s.pageSize) * s.pageSize
	items, err := s.page(ctx, offset)
	if err != nil {
		it.err = err
		return false
	}
	pos := it.idx - offset
	if pos >= len(items) {
		it.done = true
		return false
	}
	it.cur = items[pos]
	it.idx++
	return true
}

// Item at the current position of the iterator
func (it *Iterator[T]) Item() T {
	return it.cur
}

// Index of the current item
func (it *Iterator[T]) Index() int {
	return it.idx - 1
}

// Err returns the error which interrupted the iteration, if any
func (it *Iterator[T]) Err() error {
	return it.err
}
