// Package workshop models the elements of the target rule VM: values,
// actions, variables and operators, plus their text rendering.
package workshop

import (
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Elements: the expression tree emitted for the target VM
// ---------------------------------------------------------------------------

// Element is a value or action in the workshop tree.
type Element interface {
	String() string
	element() // marker method
}

// Number is a numeric literal.
type Number float64

func (n Number) element() {}

func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

// Call is a named workshop function applied to arguments. Both values
// (Global Variable, Count Of, ...) and actions (Set Global Variable, ...)
// are calls; the name determines which.
type Call struct {
	Name string
	Args []Element
}

func (c *Call) element() {}

func (c *Call) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	var sb strings.Builder
	sb.WriteString(c.Name)
	sb.WriteByte('(')
	for i, arg := range c.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(arg.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// Arg returns the i'th argument, or nil if out of range.
func (c *Call) Arg(i int) Element {
	if i < 0 || i >= len(c.Args) {
		return nil
	}
	return c.Args[i]
}

// Num creates a number literal.
func Num(v float64) Number { return Number(v) }

// Part creates a call to the named workshop function.
func Part(name string, args ...Element) *Call {
	return &Call{Name: name, Args: args}
}

// ---------------------------------------------------------------------------
// Value constructors
// ---------------------------------------------------------------------------

// Names of the values the storage layer emits.
const (
	GlobalVariableValue = "Global Variable"
	PlayerVariableValue = "Player Variable"
	ValueInArrayValue   = "Value In Array"
	CountOfValue        = "Count Of"
	LastOfValue         = "Last Of"
	EmptyArrayValue     = "Empty Array"
	ArrayValue          = "Array"
	AddValue            = "Add"
	SubtractValue       = "Subtract"
	AppendToArrayValue  = "Append To Array"
	ArraySliceValue     = "Array Slice"
	EventPlayerValue    = "Event Player"
)

// ValueInArray indexes array by index.
func ValueInArray(array, index Element) *Call {
	return Part(ValueInArrayValue, array, index)
}

// CountOf returns the number of elements in array.
func CountOf(array Element) *Call { return Part(CountOfValue, array) }

// LastOf returns the last element of array.
func LastOf(array Element) *Call { return Part(LastOfValue, array) }

// EmptyArray is the empty array literal.
func EmptyArray() *Call { return Part(EmptyArrayValue) }

// Array builds an array from its elements.
func Array(elems ...Element) *Call { return Part(ArrayValue, elems...) }

// Add returns a + b, folding numeric literals.
func Add(a, b Element) Element {
	if x, ok := a.(Number); ok {
		if y, ok := b.(Number); ok {
			return x + y
		}
	}
	return Part(AddValue, a, b)
}

// Subtract returns a - b, folding numeric literals.
func Subtract(a, b Element) Element {
	if x, ok := a.(Number); ok {
		if y, ok := b.(Number); ok {
			return x - y
		}
	}
	return Part(SubtractValue, a, b)
}

// AppendToArray concatenates b onto a.
func AppendToArray(a, b Element) *Call { return Part(AppendToArrayValue, a, b) }

// ArraySlice returns count elements of array starting at start.
func ArraySlice(array, start, count Element) *Call {
	return Part(ArraySliceValue, array, start, count)
}

// EventPlayer is the player that triggered the running rule.
func EventPlayer() *Call { return Part(EventPlayerValue) }

// Index applies a chain of indices to root: root[i0][i1]...
func Index(root Element, index ...Element) Element {
	e := root
	for _, i := range index {
		e = ValueInArray(e, i)
	}
	return e
}
