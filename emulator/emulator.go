// Package emulator executes workshop variable actions in memory. It covers
// the subset of the workshop the storage layer emits, which is enough to
// check that emitted reads observe emitted writes.
package emulator

import (
	"fmt"
	"math"

	"github.com/chazu/wsc/workshop"
)

// Value is a workshop value: float64, []Value, or nil for an unset
// variable.
type Value interface{}

// Machine holds the state of every global and player variable.
type Machine struct {
	globals map[int]Value
	players map[string]map[int]Value // actor -> id -> value
}

// New creates a machine with every variable unset.
func New() *Machine {
	return &Machine{
		globals: make(map[int]Value),
		players: make(map[string]map[int]Value),
	}
}

// Global returns the value of a global variable.
func (m *Machine) Global(id int) Value {
	return m.globals[id]
}

// Player returns the value of actor's player variable.
func (m *Machine) Player(actor string, id int) Value {
	return m.players[actor][id]
}

// Run executes actions in order.
func (m *Machine) Run(actions []workshop.Element) error {
	for i, a := range actions {
		if err := m.Exec(a); err != nil {
			return fmt.Errorf("action %d (%s): %w", i, a, err)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Actions
// ---------------------------------------------------------------------------

// Exec executes one action.
func (m *Machine) Exec(action workshop.Element) error {
	c, ok := action.(*workshop.Call)
	if !ok {
		return fmt.Errorf("not an action: %s", action)
	}

	switch c.Name {
	case workshop.SetGlobalVariable:
		return m.set(nil, c.Arg(0), nil, c.Arg(1))
	case workshop.SetGlobalVariableAtIndex:
		return m.set(nil, c.Arg(0), c.Arg(1), c.Arg(2))
	case workshop.SetPlayerVariable:
		return m.set(c.Arg(0), c.Arg(1), nil, c.Arg(2))
	case workshop.SetPlayerVariableAtIndex:
		return m.set(c.Arg(0), c.Arg(1), c.Arg(2), c.Arg(3))
	case workshop.ModifyGlobalVariable:
		return m.modify(nil, c.Arg(0), nil, c.Arg(1), c.Arg(2))
	case workshop.ModifyGlobalVariableAtIndex:
		return m.modify(nil, c.Arg(0), c.Arg(1), c.Arg(2), c.Arg(3))
	case workshop.ModifyPlayerVariable:
		return m.modify(c.Arg(0), c.Arg(1), nil, c.Arg(2), c.Arg(3))
	case workshop.ModifyPlayerVariableAtIndex:
		return m.modify(c.Arg(0), c.Arg(1), c.Arg(2), c.Arg(3), c.Arg(4))
	}
	return fmt.Errorf("unsupported action %q", c.Name)
}

// cell returns the variable map and id an action targets.
func (m *Machine) cell(actor, variable workshop.Element) (map[int]Value, int, error) {
	v, ok := variable.(workshop.Variable)
	if !ok {
		return nil, 0, fmt.Errorf("expected a variable, got %v", variable)
	}
	if actor == nil {
		return m.globals, v.ID, nil
	}
	key := actor.String()
	vars, ok := m.players[key]
	if !ok {
		vars = make(map[int]Value)
		m.players[key] = vars
	}
	return vars, v.ID, nil
}

func (m *Machine) set(actor, variable, index, value workshop.Element) error {
	vars, id, err := m.cell(actor, variable)
	if err != nil {
		return err
	}
	val, err := m.Eval(value)
	if err != nil {
		return err
	}
	if index == nil {
		vars[id] = val
		return nil
	}
	i, err := m.index(index)
	if err != nil {
		return err
	}
	vars[id] = setAt(vars[id], i, val)
	return nil
}

func (m *Machine) modify(actor, variable, index, opElem, value workshop.Element) error {
	vars, id, err := m.cell(actor, variable)
	if err != nil {
		return err
	}
	op, ok := opElem.(workshop.Operation)
	if !ok {
		return fmt.Errorf("expected an operation, got %v", opElem)
	}
	val, err := m.Eval(value)
	if err != nil {
		return err
	}
	if index == nil {
		vars[id] = apply(op, vars[id], val)
		return nil
	}
	i, err := m.index(index)
	if err != nil {
		return err
	}
	vars[id] = setAt(vars[id], i, apply(op, at(vars[id], i), val))
	return nil
}

func (m *Machine) index(e workshop.Element) (int, error) {
	v, err := m.Eval(e)
	if err != nil {
		return 0, err
	}
	i := int(num(v))
	if i < 0 {
		return 0, fmt.Errorf("negative index %d", i)
	}
	return i, nil
}

// ---------------------------------------------------------------------------
// Values
// ---------------------------------------------------------------------------

// Eval evaluates a value element.
func (m *Machine) Eval(e workshop.Element) (Value, error) {
	switch e := e.(type) {
	case workshop.Number:
		return float64(e), nil
	case *workshop.Call:
		return m.call(e)
	}
	return nil, fmt.Errorf("cannot evaluate %v", e)
}

func (m *Machine) call(c *workshop.Call) (Value, error) {
	switch c.Name {
	case workshop.GlobalVariableValue:
		vars, id, err := m.cell(nil, c.Arg(0))
		if err != nil {
			return nil, err
		}
		return read(vars[id]), nil
	case workshop.PlayerVariableValue:
		vars, id, err := m.cell(c.Arg(0), c.Arg(1))
		if err != nil {
			return nil, err
		}
		return read(vars[id]), nil
	}

	args := make([]Value, len(c.Args))
	for i, a := range c.Args {
		v, err := m.Eval(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	if len(args) < arity[c.Name] {
		return nil, fmt.Errorf("%s takes %d arguments, got %d", c.Name, arity[c.Name], len(args))
	}

	switch c.Name {
	case workshop.ValueInArrayValue:
		return at(args[0], int(num(args[1]))), nil
	case workshop.CountOfValue:
		if arr, ok := args[0].([]Value); ok {
			return float64(len(arr)), nil
		}
		return 0.0, nil
	case workshop.LastOfValue:
		if arr, ok := args[0].([]Value); ok && len(arr) > 0 {
			return arr[len(arr)-1], nil
		}
		return 0.0, nil
	case workshop.EmptyArrayValue:
		return []Value{}, nil
	case workshop.ArrayValue:
		return append([]Value{}, args...), nil
	case workshop.AddValue:
		return num(args[0]) + num(args[1]), nil
	case workshop.SubtractValue:
		return num(args[0]) - num(args[1]), nil
	case workshop.AppendToArrayValue:
		return appendValues(args[0], args[1]), nil
	case workshop.ArraySliceValue:
		return slice(args[0], int(num(args[1])), int(num(args[2]))), nil
	}
	return nil, fmt.Errorf("unsupported value %q", c.Name)
}

var arity = map[string]int{
	workshop.ValueInArrayValue:  2,
	workshop.CountOfValue:       1,
	workshop.LastOfValue:        1,
	workshop.AddValue:           2,
	workshop.SubtractValue:      2,
	workshop.AppendToArrayValue: 2,
	workshop.ArraySliceValue:    3,
}

func read(v Value) Value {
	if v == nil {
		return 0.0
	}
	return v
}

func num(v Value) float64 {
	if f, ok := v.(float64); ok {
		return f
	}
	return 0
}

// spread returns the elements of v. A non-array, including an unset
// variable, is a one-element array.
func spread(v Value) []Value {
	if arr, ok := v.([]Value); ok {
		return append([]Value{}, arr...)
	}
	return []Value{read(v)}
}

// at reads v[i]; out of range reads as 0.
func at(v Value, i int) Value {
	arr := spread(v)
	if i < 0 || i >= len(arr) {
		return 0.0
	}
	return arr[i]
}

// setAt returns a copy of v with element i replaced, padding with 0.
func setAt(v Value, i int, val Value) Value {
	out := spread(v)
	for len(out) <= i {
		out = append(out, 0.0)
	}
	out[i] = val
	return out
}

// appendValues concatenates the elements of a and b. Appending to 0 keeps
// the 0, so a stack must be reset to the empty array before its first push.
func appendValues(a, b Value) Value {
	return append(spread(a), spread(b)...)
}

func slice(v Value, start, count int) Value {
	arr, _ := v.([]Value)
	if start < 0 {
		start = 0
	}
	if start > len(arr) {
		start = len(arr)
	}
	end := start + count
	if end > len(arr) || count < 0 {
		end = len(arr)
	}
	return append([]Value{}, arr[start:end]...)
}

func apply(op workshop.Operation, cur, val Value) Value {
	switch op {
	case workshop.OpAdd:
		return num(cur) + num(val)
	case workshop.OpSubtract:
		return num(cur) - num(val)
	case workshop.OpMultiply:
		return num(cur) * num(val)
	case workshop.OpDivide:
		if num(val) == 0 {
			return 0.0
		}
		return num(cur) / num(val)
	case workshop.OpModulo:
		if num(val) == 0 {
			return 0.0
		}
		return math.Mod(num(cur), num(val))
	case workshop.OpRaiseToPower:
		return math.Pow(num(cur), num(val))
	case workshop.OpMin:
		return math.Min(num(cur), num(val))
	case workshop.OpMax:
		return math.Max(num(cur), num(val))
	case workshop.OpAppendToArray:
		return appendValues(cur, val)
	case workshop.OpRemoveFromArrayByIndex:
		arr := spread(cur)
		i := int(num(val))
		if i < 0 || i >= len(arr) {
			return arr
		}
		return append(arr[:i], arr[i+1:]...)
	case workshop.OpRemoveFromArrayByValue:
		arr := spread(cur)
		for i, e := range arr {
			if Equal(e, val) {
				return append(arr[:i], arr[i+1:]...)
			}
		}
		return arr
	}
	return cur
}

// Equal compares workshop values. Unset equals 0.
func Equal(a, b Value) bool {
	a, b = read(a), read(b)
	if x, ok := a.([]Value); ok {
		y, ok := b.([]Value)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	}
	if _, ok := b.([]Value); ok {
		return false
	}
	return num(a) == num(b)
}
