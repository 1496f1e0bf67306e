package storage

import (
	"crypto/sha256"
	"fmt"
	"strconv"
	"strings"

	"github.com/fxamacker/cbor/v2"

	"github.com/chazu/wsc/workshop"
)

// ---------------------------------------------------------------------------
// Layout: a snapshot of everything an allocator assigned
// ---------------------------------------------------------------------------

// Slot is one assigned physical variable.
type Slot struct {
	ID   int    `cbor:"1,keyasint"`
	Name string `cbor:"2,keyasint"`
}

// Layout records the variables of a compilation unit in allocation order.
type Layout struct {
	PoolCapacity   int             `cbor:"1,keyasint"`
	MaxArrayLength int             `cbor:"2,keyasint"`
	Global         []Slot          `cbor:"3,keyasint,omitempty"`
	Player         []Slot          `cbor:"4,keyasint,omitempty"`
	ExtendedGlobal []OverflowEntry `cbor:"5,keyasint,omitempty"`
	ExtendedPlayer []OverflowEntry `cbor:"6,keyasint,omitempty"`
}

// Layout snapshots the allocator's current assignments.
func (a *Allocator) Layout() *Layout {
	l := &Layout{
		PoolCapacity:   a.limits.PoolCapacity,
		MaxArrayLength: a.limits.MaxArrayLength,
	}
	for _, c := range workshop.Classes {
		var slots []Slot
		for _, v := range a.pools[c].slots {
			slots = append(slots, Slot{ID: v.ID, Name: v.Name})
		}
		entries := append([]OverflowEntry(nil), a.overflow[c].entries...)
		if c == workshop.Global {
			l.Global, l.ExtendedGlobal = slots, entries
		} else {
			l.Player, l.ExtendedPlayer = slots, entries
		}
	}
	return l
}

// Slots returns the physical variables of class.
func (l *Layout) Slots(class workshop.Class) []Slot {
	if class == workshop.Global {
		return l.Global
	}
	return l.Player
}

// Extended returns the extended collection entries of class.
func (l *Layout) Extended(class workshop.Class) []OverflowEntry {
	if class == workshop.Global {
		return l.ExtendedGlobal
	}
	return l.ExtendedPlayer
}

// full lists the collections that reached their limit.
func (l *Layout) full() []string {
	var names []string
	for _, c := range workshop.Classes {
		if len(l.Slots(c)) >= l.PoolCapacity {
			names = append(names, c.String())
		}
	}
	for _, c := range workshop.Classes {
		if len(l.Extended(c)) >= l.MaxArrayLength {
			names = append(names, "ext. "+c.String())
		}
	}
	return names
}

// Render writes the workshop variables block, followed by comments naming
// the variables packed into extended collections.
func (l *Layout) Render() string {
	w := workshop.NewWriter("    ")

	if full := l.full(); len(full) > 0 {
		w.Line(fmt.Sprintf("// The %s variable collection reached the variable limit. Only a maximum of %d variables and %d extended variables can be assigned.",
			strings.Join(full, ", "), l.PoolCapacity, l.MaxArrayLength))
		w.Blank()
	}

	if len(l.Global) > 0 || len(l.Player) > 0 {
		w.Line("variables")
		w.Line("{")
		w.Indent()
		for _, c := range workshop.Classes {
			slots := l.Slots(c)
			if len(slots) == 0 {
				continue
			}
			w.Line(c.String() + ":")
			w.Indent()
			for _, s := range slots {
				w.Line(strconv.Itoa(s.ID) + ": " + s.Name)
			}
			w.Outdent()
		}
		w.Outdent()
		w.Line("}")
	}

	if len(l.ExtendedGlobal) > 0 || len(l.ExtendedPlayer) > 0 {
		w.Blank()
		w.Line("// Extended collection variables:")
		for _, c := range workshop.Classes {
			for _, e := range l.Extended(c) {
				w.Line(fmt.Sprintf("// %s [%d]: %s", c, e.Index, e.Name))
			}
		}
	}
	return w.String()
}

// cborEncMode encodes canonically so equal layouts produce equal bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("storage: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// MarshalLayout serializes a Layout to CBOR bytes.
func MarshalLayout(l *Layout) ([]byte, error) {
	return cborEncMode.Marshal(l)
}

// UnmarshalLayout deserializes a Layout from CBOR bytes.
func UnmarshalLayout(data []byte) (*Layout, error) {
	var l Layout
	if err := cbor.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("storage: unmarshal layout: %w", err)
	}
	return &l, nil
}

// Fingerprint is the SHA-256 of the layout's canonical encoding. Recompiling
// unchanged source yields the same fingerprint.
func (l *Layout) Fingerprint() ([32]byte, error) {
	data, err := MarshalLayout(l)
	if err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(data), nil
}
