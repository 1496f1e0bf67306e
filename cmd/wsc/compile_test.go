package main

import (
	"strings"
	"testing"

	"github.com/chazu/wsc/manifest"
	"github.com/chazu/wsc/storage"
	"github.com/chazu/wsc/workshop"
)

func entry(decl *storage.Declaration, scope ...string) manifest.Entry {
	return manifest.Entry{Decl: decl, Scope: scope}
}

func TestCompile_PinnedIDsIgnoreFileOrder(t *testing.T) {
	entries := []manifest.Entry{
		entry(&storage.Declaration{Name: "a"}),
		entry(&storage.Declaration{Name: "b"}),
		entry(&storage.Declaration{Name: "c", ID: 1, Pinned: true}),
	}
	u := compile(&manifest.Config{}, entries, workshop.Global)
	if u.diags.HasErrors() {
		t.Fatalf("diagnostics: %v", u.diags.Strings())
	}

	want := map[string]int{"a": 0, "b": 2, "c": 1}
	for _, s := range u.alloc.Layout().Global {
		if want[s.Name] != s.ID {
			t.Errorf("%s got id %d, want %d", s.Name, s.ID, want[s.Name])
		}
	}
}

func TestCompile_Scopes(t *testing.T) {
	outer := &storage.Declaration{Name: "i"}
	inner := &storage.Declaration{Name: "i"}
	other := &storage.Declaration{Name: "j"}
	entries := []manifest.Entry{
		entry(outer),
		entry(inner, "loop", "body"),
		entry(other, "loop"),
	}
	u := compile(&manifest.Config{}, entries, workshop.Player)
	if u.diags.HasErrors() {
		t.Fatalf("diagnostics: %v", u.diags.Strings())
	}

	body := u.scopes["loop.body"]
	if body == nil || body.Parent() == nil {
		t.Fatal("nested scope was not created under its parent")
	}
	if _, err := body.Resolve(other); err != nil {
		t.Errorf("inner scope cannot see its parent: %v", err)
	}
	if _, err := u.root.Resolve(inner); err == nil {
		t.Error("root scope sees an inner declaration")
	}

	want := strings.Join([]string{
		"// Bindings:",
		"// i -> player 0: i",
		"// loop.j -> player 2: j",
		"// loop.body.i -> player 1: i_0",
		"",
	}, "\n")
	if got := u.listing(); got != want {
		t.Errorf("listing =\n%s\nwant\n%s", got, want)
	}
}

func TestCompile_Diagnostics(t *testing.T) {
	seven := 7
	cfg := &manifest.Config{
		Target:  manifest.Target{PoolCapacity: 2},
		Reserve: []manifest.Reservation{{Class: "global", ID: &seven}},
	}
	entries := []manifest.Entry{
		entry(&storage.Declaration{Name: "a"}),
		entry(&storage.Declaration{Name: "b"}),
		entry(&storage.Declaration{Name: "c"}),
		entry(&storage.Declaration{Name: "d", Overflow: true, Pinned: true, ID: 1, Persistence: storage.PerActor}),
	}
	u := compile(cfg, entries, workshop.Global)
	if !u.diags.HasErrors() {
		t.Fatal("expected errors")
	}

	got := strings.Join(u.diags.Strings(), "\n")
	for _, want := range []string{
		"the id 7 is outside the global collection",
		"ran out of global variables assigning \"c\"",
		"warning: d is extended; its id 1 is ignored",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("diagnostics %q do not mention %q", got, want)
		}
	}
	if len(u.bindings) != 3 {
		t.Errorf("bound %d declarations, want 3", len(u.bindings))
	}
}

func TestFrames(t *testing.T) {
	entries := []manifest.Entry{
		entry(&storage.Declaration{Name: "n", Recursive: true}),
		entry(&storage.Declaration{Name: "x"}),
	}
	u := compile(&manifest.Config{}, entries, workshop.Global)
	out, err := u.frames()
	if err != nil {
		t.Fatalf("frames: %v", err)
	}
	want := strings.Join([]string{
		"// n frame:",
		"    Set Global Variable(n, Empty Array);",
		"    Modify Global Variable(n, Append To Array, Array(0));",
		"    Modify Global Variable(n, Remove From Array By Index, Subtract(Count Of(Global Variable(n)), 1));",
		"",
	}, "\n")
	if out != want {
		t.Errorf("frames =\n%s\nwant\n%s", out, want)
	}
}

func TestUnitName(t *testing.T) {
	if got := unitName(&manifest.Config{Project: manifest.Project{Name: "mode"}}, []string{"x.decl.toml"}); got != "mode" {
		t.Errorf("unitName = %q, want mode", got)
	}
	if got := unitName(&manifest.Config{}, []string{"dir/main.decl.toml"}); got != "main" {
		t.Errorf("unitName = %q, want main", got)
	}
}
