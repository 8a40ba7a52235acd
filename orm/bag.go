package orm

import (
	"fmt"
	"strings"
)

// Bag is a one-to-many collection on an entity.
//
// A bag filled by an outer-join fetch stays uninitialized until the
// whole result set has been read. Reading an uninitialized bag that has
// a lazy loader runs the loader, which issues a query on the session
// the entity was loaded from.
type Bag[E any] struct {
	items       []E
	initialized bool
	load        func() ([]E, error)
}

// Add appends e without changing the initialization state.
func (b *Bag[E]) Add(e E) {
	b.items = append(b.items, e)
}

// Append moves the items of other into b.
func (b *Bag[E]) Append(other *Bag[E]) {
	b.items = append(b.items, other.items...)
}

// Lazy arms load as the loader used when the bag is read before it is initialized.
func (b *Bag[E]) Lazy(load func() ([]E, error)) {
	b.load = load
	b.initialized = false
}

// Initialize marks the current items as the complete collection.
func (b *Bag[E]) Initialize() {
	b.initialized = true
	b.load = nil
}

// Set replaces the items and marks the bag initialized.
func (b *Bag[E]) Set(items []E) {
	b.items = items
	b.Initialize()
}

// Initialized reports whether the bag holds the complete collection.
func (b *Bag[E]) Initialized() bool { return b.initialized }

// Items returns the collection, running the lazy loader first if needed.
func (b *Bag[E]) Items() ([]E, error) {
	if !b.initialized && b.load != nil {
		items, err := b.load()
		if err != nil {
			return nil, fmt.Errorf("orm: lazy load: %w", err)
		}
		b.Set(items)
	}
	return b.items, nil
}

// Len returns the number of items currently held, without loading.
func (b *Bag[E]) Len() int { return len(b.items) }

func (b *Bag[E]) String() string {
	items, err := b.Items()
	if err != nil {
		return "[" + err.Error() + "]"
	}
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = fmt.Sprint(it)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
