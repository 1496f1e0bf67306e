package storage

import "github.com/chazu/wsc/workshop"

// collectionNames name the physical slot that backs each class's extended
// collection.
var collectionNames = [...]string{
	workshop.Global: "_extendedGlobalCollection",
	workshop.Player: "_extendedPlayerCollection",
}

// OverflowEntry is one variable packed into an extended collection.
type OverflowEntry struct {
	Name  string `cbor:"1,keyasint"`
	Index int    `cbor:"2,keyasint"`
}

// overflowCollection packs variables into an array held by a single
// physical slot. Indices are never reclaimed.
type overflowCollection struct {
	class    workshop.Class
	capacity int

	slot    workshop.Variable
	hasSlot bool

	entries []OverflowEntry
	used    map[int]bool
}

func newOverflowCollection(class workshop.Class, limits Limits) *overflowCollection {
	return &overflowCollection{
		class:    class,
		capacity: limits.MaxArrayLength,
		used:     make(map[int]bool),
	}
}

// nextFreeIndex returns the lowest unused index.
func (c *overflowCollection) nextFreeIndex() (int, bool) {
	for i := 0; i < c.capacity; i++ {
		if !c.used[i] {
			return i, true
		}
	}
	return 0, false
}

func (c *overflowCollection) take(index int, name string) {
	c.used[index] = true
	c.entries = append(c.entries, OverflowEntry{Name: name, Index: index})
}
