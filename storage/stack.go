package storage

import (
	"github.com/chazu/wsc/diag"
	"github.com/chazu/wsc/workshop"
)

// ---------------------------------------------------------------------------
// Stack emulation for recursive functions
// ---------------------------------------------------------------------------

// StackBinding keeps one value per active call of a recursive function.
// The wrapped variable holds an array whose last element belongs to the
// running call. Reads and writes address that element; Enter pushes a new
// one and Frame.Leave pops it.
//
// The stack starts as 0, not an empty array, so Reset must run before the
// first Enter.
type StackBinding struct {
	inner Binding
	path  []workshop.Element // index into the running call's element
	name  string
	span  diag.Span
	alloc *Allocator
}

func newStackBinding(inner Binding, decl *Declaration) *StackBinding {
	s := &StackBinding{inner: inner, name: decl.Name, span: decl.Span}
	switch b := inner.(type) {
	case *DirectBinding:
		s.alloc = b.alloc
	case *OverflowBinding:
		s.alloc = b.alloc
	}
	return s
}

func (s *StackBinding) binding() {}

// Inner returns the binding holding the whole stack.
func (s *StackBinding) Inner() Binding { return s.inner }

// top is the index of the running call's element.
func (s *StackBinding) top(actor workshop.Element) workshop.Element {
	return workshop.Subtract(workshop.CountOf(s.inner.Read(actor)), workshop.Num(1))
}

// frame is the index chain from the stack to the addressed value.
func (s *StackBinding) frame(actor workshop.Element, index []workshop.Element) []workshop.Element {
	return chain(chain([]workshop.Element{s.top(actor)}, s.path), index)
}

func (s *StackBinding) Read(actor workshop.Element) workshop.Element {
	return workshop.Index(workshop.LastOf(s.inner.Read(actor)), s.path...)
}

func (s *StackBinding) Write(value, actor workshop.Element, index ...workshop.Element) ([]workshop.Element, error) {
	return s.inner.Write(value, actor, s.frame(actor, index)...)
}

func (s *StackBinding) Modify(op workshop.Operation, value, actor workshop.Element, index ...workshop.Element) ([]workshop.Element, error) {
	return s.inner.Modify(op, value, actor, s.frame(actor, index)...)
}

// Child addresses an element of the running call's value. The child shares
// the parent's stack, so Enter and Reset on either act on the whole stack.
func (s *StackBinding) Child(index ...workshop.Element) *StackBinding {
	c := *s
	c.path = chain(s.path, index)
	return &c
}

// Reset empties the stack.
func (s *StackBinding) Reset(actor workshop.Element) ([]workshop.Element, error) {
	return s.inner.Write(workshop.EmptyArray(), actor)
}

// Enter pushes value as the new running call's element. The returned frame
// must be left on every exit path of the call.
func (s *StackBinding) Enter(value, actor workshop.Element) (*Frame, []workshop.Element, error) {
	// Wrapped so that an array value is pushed as one element instead of
	// being concatenated.
	actions, err := s.inner.Modify(workshop.OpAppendToArray, workshop.Array(value), actor)
	if err != nil {
		return nil, nil, err
	}
	f := &Frame{stack: s, actor: actor, span: s.span}
	if s.alloc != nil {
		s.alloc.frames = append(s.alloc.frames, f)
	}
	return f, actions, nil
}

// Frame is one Enter of a StackBinding.
type Frame struct {
	stack *StackBinding
	actor workshop.Element
	span  diag.Span
	exits int
}

// Leave pops the frame's element. Call it once for each exit path.
func (f *Frame) Leave() ([]workshop.Element, error) {
	actions, err := f.stack.inner.Modify(workshop.OpRemoveFromArrayByIndex, f.stack.top(f.actor), f.actor)
	if err != nil {
		return nil, err
	}
	f.exits++
	return actions, nil
}

// Exits returns how many exit paths have left the frame.
func (f *Frame) Exits() int { return f.exits }
