package store

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-process Store. Data is lost on restart.
type Memory[T any] struct {
	mu    sync.RWMutex
	items map[string]Item[T]
	order []string
}

// NewMemory creates an empty in-memory store.
func NewMemory[T any]() *Memory[T] {
	return &Memory[T]{items: make(map[string]Item[T])}
}

func (m *Memory[T]) Get(_ context.Context, id string) (Item[T], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.items[id]
	if !ok {
		return Item[T]{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return item, nil
}

func (m *Memory[T]) List(_ context.Context) ([]Item[T], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Item[T], 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.items[id])
	}
	return out, nil
}

func (m *Memory[T]) Create(_ context.Context, data T) (Item[T], error) {
	ts := now()
	item := Item[T]{ID: newID(), Data: data, CreatedAt: ts, UpdatedAt: ts}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.ID] = item
	m.order = append(m.order, item.ID)
	return item, nil
}

func (m *Memory[T]) Update(_ context.Context, id string, data T) (Item[T], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return Item[T]{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	item.Data = data
	item.UpdatedAt = now()
	m.items[id] = item
	return item, nil
}

func (m *Memory[T]) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(m.items, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}
