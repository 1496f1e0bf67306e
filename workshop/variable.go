package workshop

import "fmt"

// Class is the persistence class of a variable: shared across the whole
// game or replicated per player.
type Class uint8

const (
	Global Class = iota // shared
	Player              // per actor
)

var classNames = [...]string{
	Global: "global",
	Player: "player",
}

func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return fmt.Sprintf("Class(%d)", c)
}

// ParseClass parses "global" or "player".
func ParseClass(s string) (Class, error) {
	switch s {
	case "global", "shared":
		return Global, nil
	case "player", "peractor", "per-actor":
		return Player, nil
	}
	return 0, fmt.Errorf("unknown variable class %q", s)
}

// Classes lists both persistence classes in output order.
var Classes = [...]Class{Global, Player}

// Variable is one physical workshop variable slot. As an Element it renders
// as the variable's name, which is how the workshop refers to it in
// Set/Modify actions.
type Variable struct {
	Class Class
	ID    int
	Name  string
}

func (v Variable) element() {}

func (v Variable) String() string { return v.Name }

// GetVariable reads v. A player variable is read from actor, defaulting to
// Event Player.
func GetVariable(v Variable, actor Element) *Call {
	if v.Class == Global {
		return Part(GlobalVariableValue, v)
	}
	if actor == nil {
		actor = EventPlayer()
	}
	return Part(PlayerVariableValue, actor, v)
}
