package workshop

import "fmt"

// Operation is the operator tag of a Modify Variable action.
type Operation uint8

const (
	OpAdd Operation = iota
	OpSubtract
	OpMultiply
	OpDivide
	OpModulo
	OpRaiseToPower
	OpMin
	OpMax
	OpAppendToArray
	OpRemoveFromArrayByValue
	OpRemoveFromArrayByIndex
)

var operationNames = [...]string{
	OpAdd:                    "Add",
	OpSubtract:               "Subtract",
	OpMultiply:               "Multiply",
	OpDivide:                 "Divide",
	OpModulo:                 "Modulo",
	OpRaiseToPower:           "Raise To Power",
	OpMin:                    "Min",
	OpMax:                    "Max",
	OpAppendToArray:          "Append To Array",
	OpRemoveFromArrayByValue: "Remove From Array By Value",
	OpRemoveFromArrayByIndex: "Remove From Array By Index",
}

func (op Operation) element() {}

func (op Operation) String() string {
	if int(op) < len(operationNames) {
		return operationNames[op]
	}
	return fmt.Sprintf("Operation(%d)", op)
}

// Action names emitted by the storage layer.
const (
	SetGlobalVariable           = "Set Global Variable"
	SetPlayerVariable           = "Set Player Variable"
	SetGlobalVariableAtIndex    = "Set Global Variable At Index"
	SetPlayerVariableAtIndex    = "Set Player Variable At Index"
	ModifyGlobalVariable        = "Modify Global Variable"
	ModifyPlayerVariable        = "Modify Player Variable"
	ModifyGlobalVariableAtIndex = "Modify Global Variable At Index"
	ModifyPlayerVariableAtIndex = "Modify Player Variable At Index"
)

// SetVariable emits the action that stores value into v, or into v[index]
// when index is non-nil.
func SetVariable(v Variable, actor, index, value Element) *Call {
	switch {
	case v.Class == Global && index == nil:
		return Part(SetGlobalVariable, v, value)
	case v.Class == Global:
		return Part(SetGlobalVariableAtIndex, v, index, value)
	}
	if actor == nil {
		actor = EventPlayer()
	}
	if index == nil {
		return Part(SetPlayerVariable, actor, v, value)
	}
	return Part(SetPlayerVariableAtIndex, actor, v, index, value)
}

// ModifyVariable emits the action that applies op with value to v, or to
// v[index] when index is non-nil.
func ModifyVariable(v Variable, actor, index Element, op Operation, value Element) *Call {
	switch {
	case v.Class == Global && index == nil:
		return Part(ModifyGlobalVariable, v, op, value)
	case v.Class == Global:
		return Part(ModifyGlobalVariableAtIndex, v, index, op, value)
	}
	if actor == nil {
		actor = EventPlayer()
	}
	if index == nil {
		return Part(ModifyPlayerVariable, actor, v, op, value)
	}
	return Part(ModifyPlayerVariableAtIndex, actor, v, index, op, value)
}
