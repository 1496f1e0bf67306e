package storage

import (
	"fmt"

	"github.com/chazu/wsc/diag"
	"github.com/chazu/wsc/workshop"
)

// ---------------------------------------------------------------------------
// Binding table: lexical scopes mapping symbols to bindings
// ---------------------------------------------------------------------------

// scopeNode is one lexical scope. parent is an index into the arena, -1 at
// the root.
type scopeNode struct {
	parent   int
	bindings map[Symbol]Binding
}

// arena holds every scope of a table tree. Dropping the tree drops the
// arena with it.
type arena struct {
	nodes []scopeNode
}

// Table is a handle to one scope of a binding tree.
type Table struct {
	arena *arena
	index int
}

// NewTable creates the root scope of a new tree.
func NewTable() *Table {
	a := &arena{nodes: []scopeNode{{parent: -1, bindings: make(map[Symbol]Binding)}}}
	return &Table{arena: a}
}

// Child creates a scope nested in t.
func (t *Table) Child() *Table {
	t.arena.nodes = append(t.arena.nodes, scopeNode{parent: t.index, bindings: make(map[Symbol]Binding)})
	return &Table{arena: t.arena, index: len(t.arena.nodes) - 1}
}

// Parent returns the enclosing scope, or nil at the root.
func (t *Table) Parent() *Table {
	p := t.arena.nodes[t.index].parent
	if p < 0 {
		return nil
	}
	return &Table{arena: t.arena, index: p}
}

// Add binds sym in this scope. Shadowing an outer binding is allowed;
// binding the same symbol twice in one scope is not.
func (t *Table) Add(sym Symbol, b Binding) error {
	node := &t.arena.nodes[t.index]
	if _, ok := node.bindings[sym]; ok {
		return newError(ErrDuplicateBinding, spanOf(sym),
			fmt.Sprintf("%s was already added to this scope", sym.SymbolName()))
	}
	node.bindings[sym] = b
	return nil
}

// Lookup finds the nearest binding of sym.
func (t *Table) Lookup(sym Symbol) (Binding, bool) {
	for i := t.index; i >= 0; i = t.arena.nodes[i].parent {
		if b, ok := t.arena.nodes[i].bindings[sym]; ok {
			return b, true
		}
	}
	return nil, false
}

// Resolve finds the nearest binding of sym, walking outward through
// enclosing scopes.
func (t *Table) Resolve(sym Symbol) (Binding, error) {
	if b, ok := t.Lookup(sym); ok {
		return b, nil
	}
	return nil, newError(ErrUnboundSymbol, spanOf(sym),
		fmt.Sprintf("the variable %s is not assigned to an index", sym.SymbolName()))
}

// Declare allocates storage for decl and binds it in this scope.
func (t *Table) Declare(alloc *Allocator, decl *Declaration, ctx workshop.Class) (Binding, error) {
	if _, ok := t.arena.nodes[t.index].bindings[decl]; ok {
		return nil, newError(ErrDuplicateBinding, decl.Span,
			fmt.Sprintf("%s was already added to this scope", decl.Name))
	}
	b, err := alloc.AllocateForDeclaration(decl, ctx)
	if err != nil {
		return nil, err
	}
	if err := t.Add(decl, b); err != nil {
		return nil, err
	}
	return b, nil
}

func spanOf(sym Symbol) diag.Span {
	if d, ok := sym.(*Declaration); ok {
		return d.Span
	}
	return diag.Span{}
}
