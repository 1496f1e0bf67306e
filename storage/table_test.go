package storage

import (
	"errors"
	"testing"

	"github.com/chazu/wsc/diag"
	"github.com/chazu/wsc/workshop"
)

func TestTable_ShadowingAndSiblings(t *testing.T) {
	a := NewAllocator(Limits{})
	x := &Declaration{Name: "x"}
	root := NewTable()
	outer, err := root.Declare(a, x, workshop.Global)
	if err != nil {
		t.Fatal(err)
	}

	child := root.Child()
	shadow := mustPhysical(t, a, "x", workshop.Global)
	if err := child.Add(x, shadow); err != nil {
		t.Fatalf("shadowing in a child scope: %v", err)
	}
	sibling := root.Child()

	got, err := child.Resolve(x)
	if err != nil || got != Binding(shadow) {
		t.Errorf("child resolves to %v, %v; want the shadowing binding", got, err)
	}
	got, err = sibling.Resolve(x)
	if err != nil || got != outer {
		t.Errorf("sibling resolves to %v, %v; want the outer binding", got, err)
	}
	got, err = root.Resolve(x)
	if err != nil || got != outer {
		t.Errorf("root resolves to %v, %v; want the outer binding", got, err)
	}

	grandchild := child.Child()
	if got, ok := grandchild.Lookup(x); !ok || got != Binding(shadow) {
		t.Errorf("grandchild lookup = %v, %v", got, ok)
	}
	if p := grandchild.Parent(); p == nil || p.index != child.index {
		t.Errorf("grandchild parent = %v", p)
	}
	if root.Parent() != nil {
		t.Error("root has a parent")
	}
}

func TestTable_DuplicateBinding(t *testing.T) {
	a := NewAllocator(Limits{})
	span := diag.Span{Start: diag.Position{Line: 2, Column: 5}}
	x := &Declaration{Name: "x", Span: span}
	tbl := NewTable()
	if _, err := tbl.Declare(a, x, workshop.Global); err != nil {
		t.Fatal(err)
	}

	_, err := tbl.Declare(a, x, workshop.Global)
	if !errors.Is(err, ErrDuplicateBinding) {
		t.Fatalf("err = %v, want ErrDuplicateBinding", err)
	}
	if n := len(a.Layout().Global); n != 1 {
		t.Errorf("rejected declaration still allocated: %d slots", n)
	}

	err = tbl.Add(x, &InlineBinding{Value: workshop.Num(1)})
	var e *Error
	if !errors.As(err, &e) || !e.Internal() || e.Span != span {
		t.Errorf("Add err = %#v", err)
	}
}

func TestTable_Unbound(t *testing.T) {
	tbl := NewTable().Child()
	_, err := tbl.Resolve(&Declaration{Name: "ghost"})
	if !errors.Is(err, ErrUnboundSymbol) {
		t.Fatalf("err = %v, want ErrUnboundSymbol", err)
	}
	var l diag.List
	l.Add(err)
	want := "internal compiler error: the variable ghost is not assigned to an index"
	if got := l.Strings(); len(got) != 1 || got[0] != want {
		t.Errorf("diagnostics = %q, want %q", got, want)
	}
}

func TestTable_DistinctSymbolsSameName(t *testing.T) {
	a := NewAllocator(Limits{})
	tbl := NewTable()
	first := &Declaration{Name: "i"}
	second := &Declaration{Name: "i"}
	b1, err := tbl.Declare(a, first, workshop.Global)
	if err != nil {
		t.Fatal(err)
	}
	b2, err := tbl.Declare(a, second, workshop.Global)
	if err != nil {
		t.Fatal(err)
	}
	v1 := b1.(*DirectBinding).Variable()
	v2 := b2.(*DirectBinding).Variable()
	if v1.ID == v2.ID || v1.Name == v2.Name {
		t.Errorf("symbols share storage: %v, %v", v1, v2)
	}
}
