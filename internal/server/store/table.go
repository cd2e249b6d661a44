// Package store holds the in-memory collections behind the development
// backend. Records get sequential server-assigned IDs and are listed in
// insertion order.
package store

import (
	"slices"
	"sync"

	"github.com/villaresmetals/console/internal/common"
)

// Table is a concurrency-safe collection of T keyed by integer ID.
type Table[T any] struct {
	setID func(*T, int)

	mu     sync.RWMutex
	items  map[int]T
	order  []int
	nextID int
}

func NewTable[T any](setID func(*T, int)) *Table[T] {
	return &Table[T]{
		setID:  setID,
		items:  make(map[int]T),
		nextID: 1,
	}
}

// List returns every record in insertion order.
func (t *Table[T]) List() []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]T, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.items[id])
	}
	return out
}

// Find returns the first record for which match is true.
func (t *Table[T]) Find(match func(T) bool) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, id := range t.order {
		if v := t.items[id]; match(v) {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func (t *Table[T]) Get(id int) (T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.items[id]
	if !ok {
		var zero T
		return zero, common.ErrNotFound
	}
	return v, nil
}

// Create assigns the next ID to v, ignoring any ID it carries.
func (t *Table[T]) Create(v T) T {
	v, _ = t.Insert(v, nil)
	return v
}

// Insert is Create guarded by check, evaluated under the write lock.
func (t *Table[T]) Insert(v T, check func(existing []T) error) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if check != nil {
		existing := make([]T, 0, len(t.order))
		for _, id := range t.order {
			existing = append(existing, t.items[id])
		}
		if err := check(existing); err != nil {
			var zero T
			return zero, err
		}
	}
	id := t.nextID
	t.nextID++
	t.setID(&v, id)
	t.items[id] = v
	t.order = append(t.order, id)
	return v, nil
}

// Update replaces record id with v. The stored record keeps id whatever v
// carries.
func (t *Table[T]) Update(id int, v T) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.items[id]; !ok {
		var zero T
		return zero, common.ErrNotFound
	}
	t.setID(&v, id)
	t.items[id] = v
	return v, nil
}

func (t *Table[T]) Delete(id int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.items[id]; !ok {
		return common.ErrNotFound
	}
	delete(t.items, id)
	t.order = slices.DeleteFunc(t.order, func(x int) bool { return x == id })
	return nil
}

func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.items)
}
