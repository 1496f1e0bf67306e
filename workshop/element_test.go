package workshop

import "testing"

func TestCallString(t *testing.T) {
	v := Variable{Class: Global, ID: 0, Name: "score"}
	tests := []struct {
		elem Element
		want string
	}{
		{Num(3), "3"},
		{Num(1.5), "1.5"},
		{EmptyArray(), "Empty Array"},
		{GetVariable(v, nil), "Global Variable(score)"},
		{ValueInArray(GetVariable(v, nil), Num(2)), "Value In Array(Global Variable(score), 2)"},
		{SetVariable(v, nil, nil, Num(4)), "Set Global Variable(score, 4)"},
		{ModifyVariable(v, nil, Num(1), OpAppendToArray, Num(4)), "Modify Global Variable At Index(score, 1, Append To Array, 4)"},
	}
	for _, tt := range tests {
		if got := tt.elem.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestPlayerVariableDefaultsToEventPlayer(t *testing.T) {
	v := Variable{Class: Player, ID: 3, Name: "hp"}
	if got := GetVariable(v, nil).String(); got != "Player Variable(Event Player, hp)" {
		t.Errorf("GetVariable = %q", got)
	}
	if got := SetVariable(v, nil, Num(0), Num(1)).String(); got != "Set Player Variable At Index(Event Player, hp, 0, 1)" {
		t.Errorf("SetVariable = %q", got)
	}
}

func TestArithmeticFolding(t *testing.T) {
	if got := Subtract(Num(5), Num(1)); got != Num(4) {
		t.Errorf("Subtract folded = %v, want 4", got)
	}
	if got := Add(Num(2), Num(3)); got != Num(5) {
		t.Errorf("Add folded = %v, want 5", got)
	}
	c := Subtract(CountOf(EmptyArray()), Num(1))
	if got := c.String(); got != "Subtract(Count Of(Empty Array), 1)" {
		t.Errorf("Subtract = %q", got)
	}
}

func TestIndexChain(t *testing.T) {
	root := Part("Global Variable", Variable{Name: "a"})
	got := Index(root, Num(1), Num(2)).String()
	want := "Value In Array(Value In Array(Global Variable(a), 1), 2)"
	if got != want {
		t.Errorf("Index = %q, want %q", got, want)
	}
	if Index(root) != root {
		t.Error("Index with no chain should return root")
	}
}

func TestParseClass(t *testing.T) {
	for in, want := range map[string]Class{"global": Global, "player": Player, "shared": Global} {
		got, err := ParseClass(in)
		if err != nil || got != want {
			t.Errorf("ParseClass(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseClass("team"); err == nil {
		t.Error("expected error for unknown class")
	}
}

func TestWriter(t *testing.T) {
	w := NewWriter("    ")
	w.Line("variables")
	w.Line("{")
	w.Indent()
	w.Line("global:")
	w.Outdent()
	w.Line("}")
	want := "variables\n{\n    global:\n}\n"
	if w.String() != want {
		t.Errorf("Writer = %q, want %q", w.String(), want)
	}
}
