package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chazu/wsc/diag"
	"github.com/chazu/wsc/manifest"
	"github.com/chazu/wsc/storage"
	"github.com/chazu/wsc/workshop"
)

// bound is a declaration and the storage it received.
type bound struct {
	entry   manifest.Entry
	binding storage.Binding
}

// unit is the result of allocating one compilation unit.
type unit struct {
	alloc    *storage.Allocator
	root     *storage.Table
	scopes   map[string]*storage.Table
	bindings []bound
	diags    diag.List
}

// compile allocates storage for every entry under rules of class ctx.
// Declarations pinned to an id are reserved before anything is allocated,
// so their ids never depend on file order.
func compile(cfg *manifest.Config, entries []manifest.Entry, ctx workshop.Class) *unit {
	u := &unit{
		alloc:  storage.NewAllocator(cfg.Limits()),
		root:   storage.NewTable(),
		scopes: make(map[string]*storage.Table),
	}
	u.scopes[""] = u.root

	u.diags.Add(cfg.Apply(u.alloc))
	u.diags.Add(u.alloc.ReservePinned(manifest.Declarations(entries), ctx))

	for _, e := range entries {
		if e.Decl.Overflow && e.Decl.Pinned {
			u.diags.Warnf(e.Decl.Span, "%s is extended; its id %d is ignored", e.Decl.Name, e.Decl.ID)
		}
		b, err := u.scope(e.Scope).Declare(u.alloc, e.Decl, ctx)
		if err != nil {
			u.diags.Add(err)
			continue
		}
		u.bindings = append(u.bindings, bound{entry: e, binding: b})
	}

	u.diags.Add(u.alloc.CheckFrames())
	return u
}

// scope returns the table for path, creating it and its parents.
func (u *unit) scope(path []string) *storage.Table {
	key := strings.Join(path, ".")
	if t, ok := u.scopes[key]; ok {
		return t
	}
	t := u.scope(path[:len(path)-1]).Child()
	u.scopes[key] = t
	return t
}

// listing renders every binding as a comment, grouped by scope.
func (u *unit) listing() string {
	if len(u.bindings) == 0 {
		return ""
	}
	sorted := append([]bound(nil), u.bindings...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].entry.ScopeKey() < sorted[j].entry.ScopeKey()
	})

	w := workshop.NewWriter("    ")
	w.Line("// Bindings:")
	for _, b := range sorted {
		name := b.entry.Decl.Name
		if key := b.entry.ScopeKey(); key != "" {
			name = key + "." + name
		}
		w.Line(fmt.Sprintf("// %s -> %s", name, storage.Describe(b.binding)))
	}
	return w.String()
}

// frames renders the actions that reset the stack of every recursive
// variable and push and pop one frame, as a lowered function would emit
// them at initialization, on entry and on return.
func (u *unit) frames() (string, error) {
	w := workshop.NewWriter("    ")
	for _, b := range u.bindings {
		s, ok := b.binding.(*storage.StackBinding)
		if !ok {
			continue
		}
		reset, err := s.Reset(nil)
		if err != nil {
			return "", err
		}
		f, enter, err := s.Enter(workshop.Num(0), nil)
		if err != nil {
			return "", err
		}
		leave, err := f.Leave()
		if err != nil {
			return "", err
		}
		w.Line("// " + b.entry.Decl.Name + " frame:")
		w.Indent()
		w.Actions(reset)
		w.Actions(enter)
		w.Actions(leave)
		w.Outdent()
	}
	return w.String(), u.alloc.CheckFrames()
}
