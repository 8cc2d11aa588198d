package cloud

import "context"

// Iterator flattens a marker-paginated PageSource into a single lazy
// sequence. It is an explicit cursor: Next fetches pages on demand, Item
// returns the current element, Err reports a fetch failure.
//
// An Iterator is single-use. It performs no caching and no deduplication;
// each fresh Iterator over the same source starts again at the first page
// and re-fetches everything, and inconsistencies in the backend's
// pagination under concurrent mutation pass through unmodified. It is not
// safe for concurrent use.
type Iterator[T any] struct {
	src    PageSource[T]
	buf    []T
	pos    int
	marker string
	more   bool
	err    error
	done   bool
}

// NewIterator returns an iterator positioned before the first item of the
// source. No page is fetched until the first call to Next.
func NewIterator[T any](src PageSource[T]) *Iterator[T] {
	// more=true forces the initial fetch with an empty marker.
	return &Iterator[T]{src: src, more: true}
}

// Next advances to the next item, fetching the next page from the source
// when the current one is exhausted. It returns false when the sequence
// ends or a fetch fails; check Err to distinguish.
func (it *Iterator[T]) Next(ctx context.Context) bool {
	if it.done {
		return false
	}
	for it.pos >= len(it.buf) {
		if !it.more {
			it.done = true
			return false
		}
		page, err := it.src.ListPage(ctx, it.marker)
		if err != nil {
			it.err = err
			it.done = true
			return false
		}
		it.buf = page.Data
		it.pos = 0
		it.marker = page.Marker
		it.more = page.IsTruncated
	}
	it.pos++
	return true
}

// Item returns the item the iterator is currently positioned on. It is only
// valid after a call to Next that returned true.
func (it *Iterator[T]) Item() T {
	return it.buf[it.pos-1]
}

// Err returns the fetch error that ended the iteration, if any. Items
// yielded before the failure were delivered normally.
func (it *Iterator[T]) Err() error {
	return it.err
}

// CollectAll drains a fresh iterator over the source and returns every item
// in page order.
func CollectAll[T any](ctx context.Context, src PageSource[T]) ([]T, error) {
	var out []T
	it := NewIterator(src)
	for it.Next(ctx) {
		out = append(out, it.Item())
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
