package storage

import (
	"fmt"

	"github.com/chazu/wsc/diag"
	"github.com/chazu/wsc/workshop"
)

// Persistence is a declaration's preferred variable class.
type Persistence uint8

const (
	// Contextual resolves to the class of the rule the declaration is
	// lowered under.
	Contextual Persistence = iota
	Shared
	PerActor
)

var persistenceNames = [...]string{
	Contextual: "contextual",
	Shared:     "global",
	PerActor:   "player",
}

func (p Persistence) String() string {
	if int(p) < len(persistenceNames) {
		return persistenceNames[p]
	}
	return fmt.Sprintf("Persistence(%d)", p)
}

// ParsePersistence parses "global", "player" or "contextual"; the empty
// string is contextual.
func ParsePersistence(s string) (Persistence, error) {
	switch s {
	case "", "contextual", "dynamic":
		return Contextual, nil
	case "global", "shared":
		return Shared, nil
	case "player", "peractor", "per-actor":
		return PerActor, nil
	}
	return 0, fmt.Errorf("unknown persistence %q", s)
}

// Resolve returns the class a declaration with this persistence lives in
// when lowered under ctx.
func (p Persistence) Resolve(ctx workshop.Class) workshop.Class {
	switch p {
	case Shared:
		return workshop.Global
	case PerActor:
		return workshop.Player
	}
	return ctx
}

// Symbol identifies a source-level variable in a binding table.
// Implementations must be comparable; pointers are the usual choice.
type Symbol interface {
	SymbolName() string
}

// Declaration is a variable declaration handed over by the resolver.
type Declaration struct {
	Name        string
	Persistence Persistence

	// ID is the user-pinned physical id; honored only when Pinned.
	ID     int
	Pinned bool

	// Overflow places the variable in the extended collection.
	Overflow bool

	// Constant marks a reference to an already-computed expression that
	// needs no storage. Value holds that expression.
	Constant bool
	Value    workshop.Element

	// Recursive variables get one stack frame per active call.
	Recursive bool

	Span diag.Span
}

// SymbolName implements Symbol.
func (d *Declaration) SymbolName() string { return d.Name }
