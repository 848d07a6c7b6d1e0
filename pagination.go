package xsession

import "context"

// fetchPage loads one page: the items, the cursor for the following page,
// and an error. An empty next cursor ends the sequence. So does a page with
// no items: Twitter keeps minting fresh bottom cursors past the end of a
// timeline, and an items-only stop keeps that tail from looping forever.
type fetchPage[T any] func(ctx context.Context, cursor string) ([]T, string, error)

// Iterator lazily walks a cursored collection. Nothing is fetched until the
// first Next call, and each page is fetched at most once, in order. Cursors
// are internal; iteration is forward-only and restarting means constructing
// a new iterator. Elements already yielded stay valid after a later failure.
//
// An Iterator is not safe for concurrent use.
type Iterator[T any] struct {
	fetch  fetchPage[T]
	buf    []T
	cursor string
	cur    T
	limit  int
	count  int
	done   bool
	err    error
}

// newIterator wraps a page fetcher. limit bounds the number of elements
// yielded; zero means unbounded.
func newIterator[T any](limit int, fetch fetchPage[T]) *Iterator[T] {
	return &Iterator[T]{fetch: fetch, limit: limit}
}

// failedIterator yields nothing and reports err. Used when the walk is
// invalid before the first fetch.
func failedIterator[T any](err error) *Iterator[T] {
	return &Iterator[T]{err: err}
}

// Next advances to the next element, fetching a page when the buffer runs
// dry. It returns false when the sequence ends or a fetch fails; Err
// distinguishes the two. The sequence ends on an empty next cursor, a
// cursor equal to the one just used, or a page without items.
func (it *Iterator[T]) Next(ctx context.Context) bool {
	if it.err != nil {
		return false
	}
	if it.limit > 0 && it.count >= it.limit {
		return false
	}
	if len(it.buf) == 0 {
		if it.done {
			return false
		}
		items, next, err := it.fetch(ctx, it.cursor)
		if err != nil {
			it.err = err
			return false
		}
		// A page with no items or no fresh cursor ends the walk.
		if next == "" || next == it.cursor || len(items) == 0 {
			it.done = true
		}
		it.cursor = next
		if len(items) == 0 {
			return false
		}
		it.buf = items
	}
	it.cur = it.buf[0]
	it.buf = it.buf[1:]
	it.count++
	return true
}

// Value returns the element produced by the last successful Next.
func (it *Iterator[T]) Value() T {
	return it.cur
}

// Err returns the first error encountered during iteration, if any.
func (it *Iterator[T]) Err() error {
	return it.err
}

// Collect drains the iterator. On failure the elements fetched before the
// error are returned alongside it.
func (it *Iterator[T]) Collect(ctx context.Context) ([]T, error) {
	var out []T
	for it.Next(ctx) {
		out = append(out, it.Value())
	}
	return out, it.err
}
