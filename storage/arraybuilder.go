package storage

import "github.com/chazu/wsc/workshop"

// ---------------------------------------------------------------------------
// Array builder: writes more than one index deep
// ---------------------------------------------------------------------------

// The workshop can only set a variable or one element of it. Deeper writes
// copy the innermost array into a constructor variable, change it there,
// then rebuild each enclosing level back up to the root. The store holds
// the finished inner level while its parent is loaded.
type arrayBuilder struct {
	constructor workshop.Variable
	store       *OverflowBinding
}

const (
	arrayBuilderName      = "_arrayBuilder"
	arrayBuilderStoreName = "_arrayBuilderStore"
)

// arrayBuilder returns the helper variables, assigning them the first time
// a nested write is lowered.
func (a *Allocator) arrayBuilder() (*arrayBuilder, error) {
	if a.builder != nil {
		return a.builder, nil
	}
	constructor, err := a.assign(arrayBuilderName, workshop.Global)
	if err != nil {
		return nil, err
	}
	store, err := a.AllocateOverflow(arrayBuilderStoreName, workshop.Global)
	if err != nil {
		return nil, err
	}
	a.builder = &arrayBuilder{constructor: constructor, store: store}
	return a.builder, nil
}

// setVariable emits the actions storing value at v[index...].
func (a *Allocator) setVariable(value, actor workshop.Element, v workshop.Variable, index []workshop.Element) ([]workshop.Element, error) {
	switch len(index) {
	case 0:
		return []workshop.Element{workshop.SetVariable(v, actor, nil, value)}, nil
	case 1:
		return []workshop.Element{workshop.SetVariable(v, actor, index[0], value)}, nil
	}
	return a.nested(v, actor, index, func(c workshop.Variable, last workshop.Element) workshop.Element {
		return workshop.SetVariable(c, nil, last, value)
	})
}

// modifyVariable emits the actions applying op with value at v[index...].
func (a *Allocator) modifyVariable(op workshop.Operation, value, actor workshop.Element, v workshop.Variable, index []workshop.Element) ([]workshop.Element, error) {
	switch len(index) {
	case 0:
		return []workshop.Element{workshop.ModifyVariable(v, actor, nil, op, value)}, nil
	case 1:
		return []workshop.Element{workshop.ModifyVariable(v, actor, index[0], op, value)}, nil
	}
	return a.nested(v, actor, index, func(c workshop.Variable, last workshop.Element) workshop.Element {
		return workshop.ModifyVariable(c, nil, last, op, value)
	})
}

// nested lowers a write at least two indices deep. apply emits the write
// into the innermost array once it has been copied into c. Errors carry no
// span; the calling location adds its declaration's.
func (a *Allocator) nested(v workshop.Variable, actor workshop.Element, index []workshop.Element,
	apply func(c workshop.Variable, last workshop.Element) workshop.Element) ([]workshop.Element, error) {
	b, err := a.arrayBuilder()
	if err != nil {
		return nil, err
	}
	c := b.constructor
	root := workshop.GetVariable(v, actor)
	last := len(index) - 1

	actions := []workshop.Element{
		workshop.SetVariable(c, nil, nil, workshop.Index(root, index[:last]...)),
		apply(c, index[last]),
	}
	for i := last - 1; i >= 1; i-- {
		park, err := b.store.Write(workshop.GetVariable(c, nil), nil)
		if err != nil {
			return nil, err
		}
		actions = append(actions, park...)
		actions = append(actions,
			workshop.SetVariable(c, nil, nil, workshop.Index(root, index[:i]...)),
			workshop.SetVariable(c, nil, index[i], b.store.Read(nil)),
		)
	}
	return append(actions, workshop.SetVariable(v, actor, index[0], workshop.GetVariable(c, nil))), nil
}
