// Package storage decides where every variable of a compilation unit lives
// in the target VM, and emits the reads and writes that reach it.
//
// An Allocator owns the two physical slot pools (global and player) and
// their extended collections. Bindings produced by the allocator are
// registered in a Table and resolved by the lowering code, which never
// allocates storage itself.
package storage

import (
	"errors"
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/chazu/wsc/diag"
	"github.com/chazu/wsc/workshop"
)

var log = commonlog.GetLogger("wsc.storage")

// Allocator assigns physical slots and extended-collection indices for one
// compilation unit. Results depend only on the order of calls. An Allocator
// is not safe for concurrent use.
type Allocator struct {
	limits   Limits
	pools    [len(workshop.Classes)]*slotPool
	overflow [len(workshop.Classes)]*overflowCollection

	builder *arrayBuilder
	frames  []*Frame
}

// NewAllocator creates an allocator for the given target limits. Zero
// limits take their defaults.
func NewAllocator(limits Limits) *Allocator {
	limits = limits.withDefaults()
	a := &Allocator{limits: limits}
	for _, c := range workshop.Classes {
		a.pools[c] = newSlotPool(c, limits)
		a.overflow[c] = newOverflowCollection(c, limits)
	}
	return a
}

// Limits returns the limits the allocator enforces.
func (a *Allocator) Limits() Limits { return a.limits }

// ---------------------------------------------------------------------------
// Reservations
// ---------------------------------------------------------------------------

// Reserve marks id unavailable in class.
func (a *Allocator) Reserve(id int, class workshop.Class) error {
	return a.reserve(id, class, nil, diag.Span{})
}

func (a *Allocator) reserve(id int, class workshop.Class, owner Symbol, span diag.Span) error {
	p := a.pools[class]
	if !p.inRange(id) {
		return newError(ErrIDOutOfRange, span,
			fmt.Sprintf("the id %d is outside the %s collection (0-%d)", id, class, p.capacity-1))
	}
	if p.reserved(id) {
		return newError(ErrDuplicateReservation, span,
			fmt.Sprintf("the id %d is already reserved in the %s collection", id, class))
	}
	if p.occupied[id] {
		return newError(ErrIDCollision, span,
			fmt.Sprintf("the id %d is already in use in the %s collection", id, class))
	}
	p.reservedIDs[id] = owner
	return nil
}

// ReserveName keeps name from being used as a variable name in class.
func (a *Allocator) ReserveName(name string, class workshop.Class) {
	a.pools[class].reservedNames[name] = true
}

// ReservePinned reserves the pinned id of every declaration on its behalf,
// so that scan-based allocation never hands those ids out. Run it over all
// declarations of the unit before allocating any of them.
func (a *Allocator) ReservePinned(decls []*Declaration, ctx workshop.Class) error {
	var errs []error
	for _, d := range decls {
		if !d.Pinned || d.Constant || d.Overflow {
			continue
		}
		if err := a.reserve(d.ID, d.Persistence.Resolve(ctx), d, d.Span); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ---------------------------------------------------------------------------
// Allocation
// ---------------------------------------------------------------------------

// AllocatePhysical assigns the lowest free id in class to a new variable.
func (a *Allocator) AllocatePhysical(name string, class workshop.Class) (*DirectBinding, error) {
	v, err := a.assign(name, class)
	if err != nil {
		return nil, err
	}
	return &DirectBinding{location{alloc: a, variable: v}}, nil
}

// AllocatePhysicalAt assigns exactly id in class to a new variable.
func (a *Allocator) AllocatePhysicalAt(name string, class workshop.Class, id int) (*DirectBinding, error) {
	v, err := a.assignAt(name, class, id, nil)
	if err != nil {
		return nil, err
	}
	return &DirectBinding{location{alloc: a, variable: v}}, nil
}

// assign takes the lowest id that is neither occupied nor reserved.
func (a *Allocator) assign(name string, class workshop.Class) (workshop.Variable, error) {
	p := a.pools[class]
	id, ok := p.nextFreeID()
	if !ok {
		return workshop.Variable{}, newError(ErrPoolExhausted, diag.Span{},
			fmt.Sprintf("ran out of %s variables assigning %q (%d available); mark variables as extended or split the script",
				class, name, p.capacity))
	}
	return a.record(p, id, name), nil
}

// assignAt takes id, which must be free or reserved for owner.
func (a *Allocator) assignAt(name string, class workshop.Class, id int, owner Symbol) (workshop.Variable, error) {
	p := a.pools[class]
	if !p.inRange(id) {
		return workshop.Variable{}, newError(ErrIDOutOfRange, diag.Span{},
			fmt.Sprintf("the id %d of %q is outside the %s collection (0-%d)", id, name, class, p.capacity-1))
	}
	if !p.available(id, owner) {
		what := "in use"
		if !p.occupied[id] {
			what = "reserved"
		}
		return workshop.Variable{}, newError(ErrIDCollision, diag.Span{},
			fmt.Sprintf("cannot assign %q to id %d: the id is already %s in the %s collection", name, id, what, class))
	}
	return a.record(p, id, name), nil
}

func (a *Allocator) record(p *slotPool, id int, name string) workshop.Variable {
	v := p.take(id, name)
	log.Debugf("assigned %s variable %d: %s", p.class, v.ID, v.Name)
	if p.free() == 0 {
		log.Warningf("%s variable collection is full", p.class)
	}
	return v
}

// collection returns the slot backing the extended collection of class,
// assigning it on first use.
func (a *Allocator) collection(class workshop.Class) (workshop.Variable, error) {
	c := a.overflow[class]
	if c.hasSlot {
		return c.slot, nil
	}
	v, err := a.assign(collectionNames[class], class)
	if err != nil {
		return workshop.Variable{}, err
	}
	c.slot, c.hasSlot = v, true
	return v, nil
}

// AllocateOverflow packs a new variable into the extended collection of
// class at the lowest unused index.
func (a *Allocator) AllocateOverflow(name string, class workshop.Class) (*OverflowBinding, error) {
	c := a.overflow[class]
	index, ok := c.nextFreeIndex()
	if !ok {
		return nil, newError(ErrOverflowExhausted, diag.Span{},
			fmt.Sprintf("the extended %s collection is full assigning %q (%d entries); split the script",
				class, name, c.capacity))
	}
	slot, err := a.collection(class)
	if err != nil {
		return nil, err
	}
	c.take(index, name)
	log.Debugf("assigned extended %s variable [%d]: %s", class, index, name)
	return &OverflowBinding{
		location: location{alloc: a, variable: slot, index: []workshop.Element{workshop.Num(float64(index))}},
		entry:    OverflowEntry{Name: name, Index: index},
	}, nil
}

// AllocateForDeclaration picks the storage for decl when it is lowered
// under a rule of class ctx.
func (a *Allocator) AllocateForDeclaration(decl *Declaration, ctx workshop.Class) (Binding, error) {
	if decl.Constant {
		if decl.Value == nil {
			return nil, newError(ErrMissingValue, decl.Span,
				fmt.Sprintf("constant reference %q has no value", decl.Name))
		}
		return &InlineBinding{Value: decl.Value}, nil
	}

	class := decl.Persistence.Resolve(ctx)

	var b Binding
	switch {
	case decl.Overflow:
		if decl.Pinned {
			log.Warningf("ignoring id %d of extended variable %s", decl.ID, decl.Name)
		}
		ob, err := a.AllocateOverflow(decl.Name, class)
		if err != nil {
			return nil, at(err, decl.Span)
		}
		ob.span = decl.Span
		b = ob
	case decl.Pinned:
		v, err := a.assignAt(decl.Name, class, decl.ID, decl)
		if err != nil {
			return nil, at(err, decl.Span)
		}
		b = &DirectBinding{location{alloc: a, variable: v, span: decl.Span}}
	default:
		db, err := a.AllocatePhysical(decl.Name, class)
		if err != nil {
			return nil, at(err, decl.Span)
		}
		db.span = decl.Span
		b = db
	}

	if decl.Recursive {
		return newStackBinding(b, decl), nil
	}
	return b, nil
}

// ---------------------------------------------------------------------------
// Frame accounting
// ---------------------------------------------------------------------------

// CheckFrames reports every stack frame that was entered but never left.
func (a *Allocator) CheckFrames() error {
	var errs []error
	for _, f := range a.frames {
		if f.exits == 0 {
			errs = append(errs, newError(ErrUnpairedFrame, f.span,
				fmt.Sprintf("stack frame of %q is entered but never left", f.stack.name)))
		}
	}
	return errors.Join(errs...)
}
