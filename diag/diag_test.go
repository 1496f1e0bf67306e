package diag

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

type spannedErr struct {
	span     Span
	internal bool
}

func (e *spannedErr) Error() string { return "boom" }
func (e *spannedErr) Location() Span { return e.span }
func (e *spannedErr) Internal() bool { return e.internal }

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{Span: Span{Start: Position{Line: 3, Column: 7}}, Message: "bad id"}
	if got := d.String(); got != "line 3, column 7: bad id" {
		t.Errorf("String() = %q", got)
	}

	d = Diagnostic{Severity: Warning, Message: "unused"}
	if got := d.String(); got != "warning: unused" {
		t.Errorf("String() = %q", got)
	}

	d = Diagnostic{Span: Span{File: "a.del", Start: Position{Line: 1, Column: 1}}, Message: "x", Internal: true}
	if got := d.String(); got != "a.del: line 1, column 1: internal compiler error: x" {
		t.Errorf("String() = %q", got)
	}
}

func TestListAddUsesErrorLocation(t *testing.T) {
	var l List
	span := Span{Start: Position{Line: 10, Column: 2}}
	l.Add(fmt.Errorf("wrapped: %w", &spannedErr{span: span, internal: true}))
	l.Add(nil)
	l.Add(errors.New("plain"))

	items := l.Items()
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Span != span || !items[0].Internal {
		t.Errorf("first item = %+v", items[0])
	}
	if !items[1].Span.IsZero() || items[1].Internal {
		t.Errorf("second item = %+v", items[1])
	}
	if !l.HasErrors() {
		t.Error("HasErrors = false")
	}
}

func TestWarningsAreNotErrors(t *testing.T) {
	var l List
	l.Warnf(Span{}, "id %d ignored", 4)
	if l.HasErrors() {
		t.Error("warning counted as error")
	}
	if s := l.Strings(); len(s) != 1 || !strings.Contains(s[0], "id 4 ignored") {
		t.Errorf("Strings = %v", s)
	}
}

func TestListAddSplitsJoinedErrors(t *testing.T) {
	var l List
	l.Add(errors.Join(errors.New("one"), errors.New("two")))
	if got := l.Strings(); len(got) != 2 || got[0] != "one" || got[1] != "two" {
		t.Errorf("Strings = %v", got)
	}
}
