package store

import (
	"container/list"
	"context"
	"sync"
)

// Cached is a read-through Store that keeps up to capacity items from Get
// in an LRU cache. Writes through Cached invalidate or refresh the cached
// copy; writes that bypass it are not seen until the entry is evicted.
type Cached[T any] struct {
	next Store[T]

	mu       sync.Mutex
	capacity int
	entries  map[string]*list.Element
	recency  *list.List
}

// NewCached wraps next with an LRU cache of the given capacity.
func NewCached[T any](next Store[T], capacity int) (*Cached[T], error) {
	if capacity <= 0 {
		return nil, ErrCapacityNotValid
	}
	return &Cached[T]{
		next:     next,
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		recency:  list.New(),
	}, nil
}

// Len returns the number of cached items.
func (c *Cached[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recency.Len()
}

// Ping delegates to the wrapped store.
func (c *Cached[T]) Ping(ctx context.Context) error {
	return Ping(c.next)(ctx)
}

func (c *Cached[T]) Get(ctx context.Context, id string) (Item[T], error) {
	if item, ok := c.lookup(id); ok {
		return item, nil
	}
	item, err := c.next.Get(ctx, id)
	if err != nil {
		return Item[T]{}, err
	}
	c.put(item)
	return item, nil
}

func (c *Cached[T]) List(ctx context.Context) ([]Item[T], error) {
	return c.next.List(ctx)
}

func (c *Cached[T]) Create(ctx context.Context, data T) (Item[T], error) {
	item, err := c.next.Create(ctx, data)
	if err != nil {
		return Item[T]{}, err
	}
	c.put(item)
	return item, nil
}

func (c *Cached[T]) Update(ctx context.Context, id string, data T) (Item[T], error) {
	item, err := c.next.Update(ctx, id, data)
	if err != nil {
		c.remove(id)
		return Item[T]{}, err
	}
	c.put(item)
	return item, nil
}

func (c *Cached[T]) Delete(ctx context.Context, id string) error {
	c.remove(id)
	return c.next.Delete(ctx, id)
}

func (c *Cached[T]) lookup(id string) (Item[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.entries[id]
	if !ok {
		return Item[T]{}, false
	}
	c.recency.MoveToFront(elem)
	return elem.Value.(Item[T]), true
}

func (c *Cached[T]) put(item Item[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.entries[item.ID]; ok {
		elem.Value = item
		c.recency.MoveToFront(elem)
		return
	}
	c.entries[item.ID] = c.recency.PushFront(item)
	if c.recency.Len() > c.capacity {
		oldest := c.recency.Back()
		c.recency.Remove(oldest)
		delete(c.entries, oldest.Value.(Item[T]).ID)
	}
}

func (c *Cached[T]) remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.entries[id]; ok {
		c.recency.Remove(elem)
		delete(c.entries, id)
	}
}
