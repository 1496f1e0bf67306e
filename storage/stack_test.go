package storage

import (
	"errors"
	"testing"

	"github.com/chazu/wsc/emulator"
	"github.com/chazu/wsc/workshop"
)

func recursive(t *testing.T, a *Allocator, decl *Declaration) *StackBinding {
	t.Helper()
	decl.Recursive = true
	b, err := a.AllocateForDeclaration(decl, workshop.Global)
	if err != nil {
		t.Fatal(err)
	}
	return b.(*StackBinding)
}

func TestStackBinding_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		decl *Declaration
	}{
		{"global", &Declaration{Name: "n"}},
		{"player", &Declaration{Name: "n", Persistence: PerActor}},
		{"extended", &Declaration{Name: "n", Overflow: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAllocator(Limits{})
			s := recursive(t, a, tt.decl)
			m := emulator.New()

			w, err := s.Reset(nil)
			exec(t, m, w, err)
			outer, w, err := s.Enter(workshop.Num(0), nil)
			exec(t, m, w, err)
			w, err = s.Write(workshop.Num(5), nil)
			exec(t, m, w, err)
			if got := value(t, m, s.Read(nil)); !emulator.Equal(got, 5.0) {
				t.Fatalf("outer read = %v, want 5", got)
			}

			inner, w, err := s.Enter(workshop.Num(0), nil)
			exec(t, m, w, err)
			w, err = s.Write(workshop.Num(9), nil)
			exec(t, m, w, err)
			if got := value(t, m, s.Read(nil)); !emulator.Equal(got, 9.0) {
				t.Fatalf("inner read = %v, want 9", got)
			}

			w, err = inner.Leave()
			exec(t, m, w, err)
			if got := value(t, m, s.Read(nil)); !emulator.Equal(got, 5.0) {
				t.Fatalf("read after leave = %v, want 5", got)
			}

			w, err = outer.Leave()
			exec(t, m, w, err)
			if got := value(t, m, s.Inner().Read(nil)); !emulator.Equal(got, []emulator.Value{}) {
				t.Errorf("stack after final leave = %v, want empty", got)
			}
			if err := a.CheckFrames(); err != nil {
				t.Errorf("CheckFrames: %v", err)
			}
		})
	}
}

func TestStackBinding_ModifyAndIndex(t *testing.T) {
	a := NewAllocator(Limits{})
	s := recursive(t, a, &Declaration{Name: "acc"})
	m := emulator.New()

	w, err := s.Reset(nil)
	exec(t, m, w, err)
	_, w, err = s.Enter(workshop.Array(workshop.Num(1), workshop.Num(2)), nil)
	exec(t, m, w, err)
	if got := value(t, m, s.Read(nil)); !emulator.Equal(got, nums(1, 2)) {
		t.Fatalf("array value pushed as %v", got)
	}

	w, err = s.Modify(workshop.OpAdd, workshop.Num(10), nil, workshop.Num(1))
	exec(t, m, w, err)
	w, err = s.Modify(workshop.OpAppendToArray, workshop.Num(3), nil)
	exec(t, m, w, err)
	if got := value(t, m, s.Read(nil)); !emulator.Equal(got, nums(1, 12, 3)) {
		t.Errorf("top = %v, want [1 12 3]", got)
	}
	if got := value(t, m, workshop.CountOf(s.Inner().Read(nil))); !emulator.Equal(got, 1.0) {
		t.Errorf("frames = %v, want 1", got)
	}
}

func TestStackBinding_PerActor(t *testing.T) {
	a := NewAllocator(Limits{})
	s := recursive(t, a, &Declaration{Name: "depth", Persistence: PerActor})
	host := workshop.Part("Host Player")
	m := emulator.New()

	w, err := s.Reset(host)
	exec(t, m, w, err)
	w, err = s.Reset(nil)
	exec(t, m, w, err)
	_, w, err = s.Enter(workshop.Num(1), host)
	exec(t, m, w, err)
	_, w, err = s.Enter(workshop.Num(2), host)
	exec(t, m, w, err)
	_, w, err = s.Enter(workshop.Num(3), nil)
	exec(t, m, w, err)

	if got := value(t, m, workshop.CountOf(s.Inner().Read(host))); !emulator.Equal(got, 2.0) {
		t.Errorf("host frames = %v, want 2", got)
	}
	if got := value(t, m, s.Read(nil)); !emulator.Equal(got, 3.0) {
		t.Errorf("event player top = %v, want 3", got)
	}
}

func TestStackBinding_EnterWithoutReset(t *testing.T) {
	a := NewAllocator(Limits{})
	s := recursive(t, a, &Declaration{Name: "n"})
	m := emulator.New()

	// The zero the variable starts with stays at the bottom of the stack.
	_, w, err := s.Enter(workshop.Num(4), nil)
	exec(t, m, w, err)
	if got := value(t, m, s.Inner().Read(nil)); !emulator.Equal(got, nums(0, 4)) {
		t.Errorf("stack = %v, want [0 4]", got)
	}
	if got := value(t, m, s.Read(nil)); !emulator.Equal(got, 4.0) {
		t.Errorf("top = %v, want 4", got)
	}
}

func TestStackBinding_Child(t *testing.T) {
	for _, tt := range []struct {
		name string
		decl *Declaration
	}{
		{"global", &Declaration{Name: "pair"}},
		{"extended", &Declaration{Name: "pair", Overflow: true}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAllocator(Limits{})
			s := recursive(t, a, tt.decl)
			second := s.Child(workshop.Num(1))
			m := emulator.New()

			w, err := s.Reset(nil)
			exec(t, m, w, err)
			outer, w, err := s.Enter(workshop.Array(workshop.Num(1), workshop.Num(2)), nil)
			exec(t, m, w, err)
			inner, w, err := s.Enter(workshop.Array(workshop.Num(3), workshop.Num(4)), nil)
			exec(t, m, w, err)

			if got := value(t, m, second.Read(nil)); !emulator.Equal(got, 4.0) {
				t.Fatalf("inner [1] = %v, want 4", got)
			}
			w, err = second.Write(workshop.Num(40), nil)
			exec(t, m, w, err)
			w, err = second.Modify(workshop.OpAdd, workshop.Num(2), nil)
			exec(t, m, w, err)
			if got := value(t, m, s.Read(nil)); !emulator.Equal(got, nums(3, 42)) {
				t.Errorf("inner frame = %v, want [3 42]", got)
			}

			w, err = inner.Leave()
			exec(t, m, w, err)
			if got := value(t, m, second.Read(nil)); !emulator.Equal(got, 2.0) {
				t.Errorf("outer [1] after leave = %v, want 2", got)
			}
			w, err = outer.Leave()
			exec(t, m, w, err)
			if err := a.CheckFrames(); err != nil {
				t.Errorf("CheckFrames: %v", err)
			}
		})
	}
}

func TestStackBinding_Reset(t *testing.T) {
	a := NewAllocator(Limits{})
	s := recursive(t, a, &Declaration{Name: "n"})
	m := emulator.New()

	_, w, err := s.Enter(workshop.Num(4), nil)
	exec(t, m, w, err)
	w, err = s.Reset(nil)
	exec(t, m, w, err)
	if got := value(t, m, workshop.CountOf(s.Inner().Read(nil))); !emulator.Equal(got, 0.0) {
		t.Errorf("frames after reset = %v", got)
	}
}

func TestCheckFrames(t *testing.T) {
	a := NewAllocator(Limits{})
	s := recursive(t, a, &Declaration{Name: "fib"})
	t2 := recursive(t, a, &Declaration{Name: "walk"})

	f, _, err := s.Enter(workshop.Num(0), nil)
	if err != nil {
		t.Fatal(err)
	}
	g, _, err := t2.Enter(workshop.Num(0), nil)
	if err != nil {
		t.Fatal(err)
	}

	// Two exit paths.
	for i := 0; i < 2; i++ {
		if _, err := f.Leave(); err != nil {
			t.Fatal(err)
		}
	}
	if f.Exits() != 2 {
		t.Errorf("exits = %d, want 2", f.Exits())
	}

	err = a.CheckFrames()
	if !errors.Is(err, ErrUnpairedFrame) {
		t.Fatalf("err = %v, want ErrUnpairedFrame", err)
	}
	var e *Error
	if !errors.As(err, &e) || !e.Internal() {
		t.Errorf("unpaired frame should be internal: %v", err)
	}

	if _, err := g.Leave(); err != nil {
		t.Fatal(err)
	}
	if err := a.CheckFrames(); err != nil {
		t.Errorf("CheckFrames after leaving: %v", err)
	}
}
