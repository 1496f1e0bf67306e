package ledger

import (
	"fmt"

	"github.com/chazu/wsc/storage"
	"github.com/chazu/wsc/workshop"
)

// ChangeKind classifies a difference between two layouts.
type ChangeKind uint8

const (
	Added ChangeKind = iota
	Removed
	Moved
)

// Change is one variable whose placement differs between two layouts.
// Variables are matched by class, collection and name; extended entries
// that share a name are matched in the order they were assigned.
type Change struct {
	Kind     ChangeKind
	Class    workshop.Class
	Extended bool
	Name     string
	From, To int // id or extended index; From unused for Added, To for Removed
}

func (c Change) String() string {
	where := c.Class.String()
	if c.Extended {
		where = "extended " + where
	}
	switch c.Kind {
	case Added:
		return fmt.Sprintf("added %s %s at %d", where, c.Name, c.To)
	case Removed:
		return fmt.Sprintf("removed %s %s from %d", where, c.Name, c.From)
	}
	return fmt.Sprintf("moved %s %s from %d to %d", where, c.Name, c.From, c.To)
}

// Diff lists what changed from prev to next: moved and added variables in
// the order next assigned them, then removed variables in prev's order.
func Diff(prev, next *storage.Layout) []Change {
	var changes []Change
	for _, c := range workshop.Classes {
		changes = append(changes, diffPlaces(c, false, slotPlaces(prev.Slots(c)), slotPlaces(next.Slots(c)))...)
		changes = append(changes, diffPlaces(c, true, entryPlaces(prev.Extended(c)), entryPlaces(next.Extended(c)))...)
	}
	return changes
}

type place struct {
	name string
	at   int
}

func slotPlaces(slots []storage.Slot) []place {
	out := make([]place, len(slots))
	for i, s := range slots {
		out[i] = place{s.Name, s.ID}
	}
	return out
}

func entryPlaces(entries []storage.OverflowEntry) []place {
	out := make([]place, len(entries))
	for i, e := range entries {
		out[i] = place{e.Name, e.Index}
	}
	return out
}

// occurrence keys a place by its name and how many earlier places in the
// same list share that name, so repeated names pair up in order.
type occurrence struct {
	name string
	n    int
}

func occurrences(places []place) []occurrence {
	seen := make(map[string]int, len(places))
	out := make([]occurrence, len(places))
	for i, p := range places {
		out[i] = occurrence{p.name, seen[p.name]}
		seen[p.name]++
	}
	return out
}

func diffPlaces(class workshop.Class, extended bool, prev, next []place) []Change {
	prevKeys, nextKeys := occurrences(prev), occurrences(next)
	before := make(map[occurrence]int, len(prev))
	for i, p := range prev {
		before[prevKeys[i]] = p.at
	}
	after := make(map[occurrence]bool, len(next))

	var changes []Change
	for i, p := range next {
		after[nextKeys[i]] = true
		from, ok := before[nextKeys[i]]
		switch {
		case !ok:
			changes = append(changes, Change{Kind: Added, Class: class, Extended: extended, Name: p.name, To: p.at})
		case from != p.at:
			changes = append(changes, Change{Kind: Moved, Class: class, Extended: extended, Name: p.name, From: from, To: p.at})
		}
	}
	for i, p := range prev {
		if !after[prevKeys[i]] {
			changes = append(changes, Change{Kind: Removed, Class: class, Extended: extended, Name: p.name, From: p.at})
		}
	}
	return changes
}
