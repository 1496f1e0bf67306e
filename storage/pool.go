package storage

import (
	"strconv"
	"strings"

	"github.com/chazu/wsc/workshop"
)

// ---------------------------------------------------------------------------
// Slot pool: the physical variables of one persistence class
// ---------------------------------------------------------------------------

// slotPool tracks the physical variables and reservations of one class.
type slotPool struct {
	class    workshop.Class
	capacity int
	nameMax  int

	slots    []workshop.Variable // allocation order
	occupied map[int]bool
	names    map[string]bool

	// reservedIDs maps a reserved id to the symbol it is held for, or nil
	// for an anonymous reservation.
	reservedIDs   map[int]Symbol
	reservedNames map[string]bool
}

func newSlotPool(class workshop.Class, limits Limits) *slotPool {
	return &slotPool{
		class:         class,
		capacity:      limits.PoolCapacity,
		nameMax:       limits.MaxNameLength,
		occupied:      make(map[int]bool),
		names:         make(map[string]bool),
		reservedIDs:   make(map[int]Symbol),
		reservedNames: make(map[string]bool),
	}
}

func (p *slotPool) inRange(id int) bool {
	return id >= 0 && id < p.capacity
}

func (p *slotPool) reserved(id int) bool {
	_, ok := p.reservedIDs[id]
	return ok
}

// available reports whether id can be granted to owner. A reservation held
// for owner itself does not block it.
func (p *slotPool) available(id int, owner Symbol) bool {
	if p.occupied[id] {
		return false
	}
	held, ok := p.reservedIDs[id]
	return !ok || (owner != nil && held == owner)
}

// nextFreeID returns the lowest id that is neither occupied nor reserved.
func (p *slotPool) nextFreeID() (int, bool) {
	for i := 0; i < p.capacity; i++ {
		if !p.occupied[i] && !p.reserved(i) {
			return i, true
		}
	}
	return 0, false
}

// free returns the number of ids still grantable by a scan.
func (p *slotPool) free() int {
	n := 0
	for i := 0; i < p.capacity; i++ {
		if !p.occupied[i] && !p.reserved(i) {
			n++
		}
	}
	return n
}

// take records a slot at id under the deduplicated form of name.
func (p *slotPool) take(id int, name string) workshop.Variable {
	v := workshop.Variable{Class: p.class, ID: id, Name: p.workshopName(name)}
	p.slots = append(p.slots, v)
	p.occupied[id] = true
	p.names[v.Name] = true
	delete(p.reservedIDs, id)
	return v
}

func (p *slotPool) nameTaken(name string) bool {
	return p.names[name] || p.reservedNames[name]
}

// workshopName converts a source name into a valid workshop variable name
// that no slot or reservation in this pool uses yet.
func (p *slotPool) workshopName(name string) string {
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r == ' ':
			sb.WriteByte('_')
		case validNameRune(r):
			sb.WriteRune(r)
		}
	}
	base := sb.String()
	if base == "" {
		base = "var"
	}
	if len(base) > p.nameMax {
		base = base[:p.nameMax]
	}
	if !p.nameTaken(base) {
		return base
	}
	for n := 0; ; n++ {
		candidate := suffixed(base, n, p.nameMax)
		if !p.nameTaken(candidate) {
			return candidate
		}
	}
}

func suffixed(base string, n, max int) string {
	suffix := "_" + strconv.Itoa(n)
	keep := max - len(suffix)
	if keep < 0 {
		keep = 0
	}
	if keep < len(base) {
		base = base[:keep]
	}
	return base + suffix
}

func validNameRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
