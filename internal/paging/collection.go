// Package paging keeps an ordered, incrementally loaded collection of items
// fetched page by page from a single data source.
package paging

import (
	"context"
	"slices"
	"sync"
)

// Fetcher requests one page. hasNext is the server's "more pages" flag.
type Fetcher[T any] func(ctx context.Context, page, perPage int) (items []T, hasNext bool, err error)

// Collection is safe for concurrent use. Fetches run outside the lock, a
// generation counter discards responses that belong to a source replaced by Reset.
type Collection[T any, K comparable] struct {
	perPage int
	key     func(T) K

	mu         sync.Mutex
	fetch      Fetcher[T]
	items      []T
	cursor     int
	exhausted  bool
	fetching   bool
	generation uint64
}

func New[T any, K comparable](perPage int, key func(T) K, fetch Fetcher[T]) *Collection[T, K] {
	return &Collection[T, K]{
		perPage: perPage,
		key:     key,
		fetch:   fetch,
		cursor:  1,
	}
}

// Reset drops every item and rewinds the cursor before loading the first page of
// fetch. A nil fetch keeps the current source.
func (c *Collection[T, K]) Reset(ctx context.Context, fetch Fetcher[T]) (bool, error) {
	c.mu.Lock()
	if fetch != nil {
		c.fetch = fetch
	}
	c.items = nil
	c.cursor = 1
	c.exhausted = false
	c.fetching = false
	c.generation++
	c.mu.Unlock()

	return c.LoadNext(ctx)
}

// LoadNext fetches the page at the cursor. It reports whether a page was applied.
// While a fetch is in flight or after the server reported the last page it does
// nothing. On failure the state is left untouched so calling it again re-requests
// the same page.
func (c *Collection[T, K]) LoadNext(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if c.fetching || c.exhausted || c.fetch == nil {
		c.mu.Unlock()
		return false, nil
	}
	c.fetching = true
	generation := c.generation
	page := c.cursor
	fetch := c.fetch
	c.mu.Unlock()

	items, hasNext, err := fetch(ctx, page, c.perPage)

	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation {
		return false, nil
	}
	c.fetching = false

	if err != nil {
		return false, err
	}

	if page == 1 {
		c.items = slices.Clone(items)
	} else {
		c.items = append(c.items, items...)
	}
	c.exhausted = !hasNext
	c.cursor++

	return true, nil
}

// Append inserts item at the head of the collection.
func (c *Collection[T, K]) Append(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = slices.Insert(c.items, 0, item)
}

// Patch replaces the item identified by id with update(item). It reports whether
// the item was present.
func (c *Collection[T, K]) Patch(id K, update func(T) T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.index(id)
	if i < 0 {
		return false
	}
	c.items[i] = update(c.items[i])
	return true
}

// Remove drops the item identified by id. It reports whether the item was present.
func (c *Collection[T, K]) Remove(id K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.index(id)
	if i < 0 {
		return false
	}
	c.items = slices.Delete(c.items, i, i+1)
	return true
}

func (c *Collection[T, K]) Get(id K) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	i := c.index(id)
	if i < 0 {
		return zero, false
	}
	return c.items[i], true
}

// Items returns a copy of the collection in display order.
func (c *Collection[T, K]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()

	return slices.Clone(c.items)
}

func (c *Collection[T, K]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.items)
}

// Cursor is the page number the next LoadNext requests.
func (c *Collection[T, K]) Cursor() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cursor
}

func (c *Collection[T, K]) Exhausted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.exhausted
}

func (c *Collection[T, K]) Fetching() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.fetching
}

func (c *Collection[T, K]) PerPage() int {
	return c.perPage
}

func (c *Collection[T, K]) index(id K) int {
	return slices.IndexFunc(c.items, func(item T) bool {
		return c.key(item) == id
	})
}
