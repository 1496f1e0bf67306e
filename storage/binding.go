package storage

import (
	"fmt"

	"github.com/chazu/wsc/diag"
	"github.com/chazu/wsc/workshop"
)

// ---------------------------------------------------------------------------
// Bindings: where a source variable lives and how to reach it
// ---------------------------------------------------------------------------

// Binding is the read/write handle lowering uses for a variable. The set of
// implementations is closed: *DirectBinding, *OverflowBinding,
// *StackBinding, *InlineBinding and *TargetBinding.
//
// actor selects the player for player variables; nil means Event Player.
// index is applied after the binding's own index chain.
type Binding interface {
	Read(actor workshop.Element) workshop.Element
	Write(value, actor workshop.Element, index ...workshop.Element) ([]workshop.Element, error)
	Modify(op workshop.Operation, value, actor workshop.Element, index ...workshop.Element) ([]workshop.Element, error)
	binding() // marker method
}

// location is a physical variable plus a fixed index chain into it. span
// is the declaration the variable was assigned for, if any.
type location struct {
	alloc    *Allocator
	variable workshop.Variable
	index    []workshop.Element
	span     diag.Span
}

func (l location) read(actor workshop.Element) workshop.Element {
	return workshop.Index(workshop.GetVariable(l.variable, actor), l.index...)
}

func (l location) write(value, actor workshop.Element, index []workshop.Element) ([]workshop.Element, error) {
	actions, err := l.alloc.setVariable(value, actor, l.variable, chain(l.index, index))
	return actions, at(err, l.span)
}

func (l location) modify(op workshop.Operation, value, actor workshop.Element, index []workshop.Element) ([]workshop.Element, error) {
	actions, err := l.alloc.modifyVariable(op, value, actor, l.variable, chain(l.index, index))
	return actions, at(err, l.span)
}

func (l location) child(index []workshop.Element) location {
	return location{alloc: l.alloc, variable: l.variable, index: chain(l.index, index), span: l.span}
}

// chain concatenates index chains without aliasing either.
func chain(base, more []workshop.Element) []workshop.Element {
	if len(more) == 0 {
		return base
	}
	out := make([]workshop.Element, 0, len(base)+len(more))
	out = append(out, base...)
	return append(out, more...)
}

// DirectBinding is a physical variable, optionally indexed.
type DirectBinding struct {
	location
}

func (b *DirectBinding) binding() {}

// Variable returns the physical slot.
func (b *DirectBinding) Variable() workshop.Variable { return b.variable }

// Index returns the binding's fixed index chain.
func (b *DirectBinding) Index() []workshop.Element { return b.index }

func (b *DirectBinding) Read(actor workshop.Element) workshop.Element { return b.read(actor) }

func (b *DirectBinding) Write(value, actor workshop.Element, index ...workshop.Element) ([]workshop.Element, error) {
	return b.write(value, actor, index)
}

func (b *DirectBinding) Modify(op workshop.Operation, value, actor workshop.Element, index ...workshop.Element) ([]workshop.Element, error) {
	return b.modify(op, value, actor, index)
}

// Child addresses an element of the variable.
func (b *DirectBinding) Child(index ...workshop.Element) *DirectBinding {
	return &DirectBinding{b.child(index)}
}

// OverflowBinding is an entry of an extended collection. Its index chain
// always starts with the entry's index.
type OverflowBinding struct {
	location
	entry OverflowEntry
}

func (b *OverflowBinding) binding() {}

// Collection returns the physical slot holding the extended collection.
func (b *OverflowBinding) Collection() workshop.Variable { return b.variable }

// Entry returns the entry's name and index in the collection.
func (b *OverflowBinding) Entry() OverflowEntry { return b.entry }

func (b *OverflowBinding) Read(actor workshop.Element) workshop.Element { return b.read(actor) }

func (b *OverflowBinding) Write(value, actor workshop.Element, index ...workshop.Element) ([]workshop.Element, error) {
	return b.write(value, actor, index)
}

func (b *OverflowBinding) Modify(op workshop.Operation, value, actor workshop.Element, index ...workshop.Element) ([]workshop.Element, error) {
	return b.modify(op, value, actor, index)
}

// Child addresses an element of the entry.
func (b *OverflowBinding) Child(index ...workshop.Element) *OverflowBinding {
	return &OverflowBinding{location: b.child(index), entry: b.entry}
}

// InlineBinding stands for an expression that never needed storage, such
// as a folded constant. It cannot be written.
type InlineBinding struct {
	Value workshop.Element
}

func (b *InlineBinding) binding() {}

func (b *InlineBinding) Read(workshop.Element) workshop.Element { return b.Value }

func (b *InlineBinding) Write(workshop.Element, workshop.Element, ...workshop.Element) ([]workshop.Element, error) {
	return nil, newError(ErrNotSettable, diag.Span{}, fmt.Sprintf("cannot write to inline value %s", b.Value))
}

func (b *InlineBinding) Modify(workshop.Operation, workshop.Element, workshop.Element, ...workshop.Element) ([]workshop.Element, error) {
	return nil, newError(ErrNotSettable, diag.Span{}, fmt.Sprintf("cannot modify inline value %s", b.Value))
}

// Child indexes into the value.
func (b *InlineBinding) Child(index ...workshop.Element) *InlineBinding {
	return &InlineBinding{Value: workshop.Index(b.Value, index...)}
}

// TargetBinding addresses another binding on a fixed player, such as a
// field read through a player expression. The actor passed to its methods
// is ignored.
type TargetBinding struct {
	inner Binding
	actor workshop.Element
}

// Target pins b to actor.
func Target(b Binding, actor workshop.Element) *TargetBinding {
	if t, ok := b.(*TargetBinding); ok {
		b = t.inner
	}
	return &TargetBinding{inner: b, actor: actor}
}

func (b *TargetBinding) binding() {}

// Inner returns the unpinned binding.
func (b *TargetBinding) Inner() Binding { return b.inner }

// Actor returns the player the binding is pinned to.
func (b *TargetBinding) Actor() workshop.Element { return b.actor }

func (b *TargetBinding) Read(workshop.Element) workshop.Element { return b.inner.Read(b.actor) }

func (b *TargetBinding) Write(value, _ workshop.Element, index ...workshop.Element) ([]workshop.Element, error) {
	return b.inner.Write(value, b.actor, index...)
}

func (b *TargetBinding) Modify(op workshop.Operation, value, _ workshop.Element, index ...workshop.Element) ([]workshop.Element, error) {
	return b.inner.Modify(op, value, b.actor, index...)
}

// Child addresses an element on the same player.
func (b *TargetBinding) Child(index ...workshop.Element) *TargetBinding {
	return &TargetBinding{inner: ChildOf(b.inner, index...), actor: b.actor}
}

// ChildOf addresses an element of whatever b holds.
func ChildOf(b Binding, index ...workshop.Element) Binding {
	switch b := b.(type) {
	case *DirectBinding:
		return b.Child(index...)
	case *OverflowBinding:
		return b.Child(index...)
	case *StackBinding:
		return b.Child(index...)
	case *InlineBinding:
		return b.Child(index...)
	case *TargetBinding:
		return b.Child(index...)
	}
	panic(fmt.Sprintf("storage: unknown binding %T", b))
}

// Describe renders where b lives, for listings and debugging.
func Describe(b Binding) string {
	switch b := b.(type) {
	case *DirectBinding:
		return fmt.Sprintf("%s %d: %s%s", b.variable.Class, b.variable.ID, b.variable.Name, describeIndex(b.index))
	case *OverflowBinding:
		return fmt.Sprintf("extended %s [%d]: %s%s", b.variable.Class, b.entry.Index, b.entry.Name, describeIndex(b.index[1:]))
	case *StackBinding:
		return "stack of " + Describe(b.inner) + describeIndex(b.path)
	case *InlineBinding:
		return "inline " + b.Value.String()
	case *TargetBinding:
		return Describe(b.inner) + " of " + b.actor.String()
	}
	panic(fmt.Sprintf("storage: unknown binding %T", b))
}

func describeIndex(index []workshop.Element) string {
	s := ""
	for _, i := range index {
		s += "[" + i.String() + "]"
	}
	return s
}
