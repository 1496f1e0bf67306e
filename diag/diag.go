// Package diag carries source positions and the diagnostics reported for a
// compilation unit.
package diag

import (
	"errors"
	"fmt"
	"strings"
)

// Position represents a source location.
type Position struct {
	Line   int // 1-based line number
	Column int // 1-based column number
}

// Span represents a range in source code.
type Span struct {
	File  string
	Start Position
	End   Position
}

// IsZero reports whether the span carries no location.
func (s Span) IsZero() bool {
	return s.Start.Line == 0 && s.File == ""
}

func (s Span) String() string {
	loc := fmt.Sprintf("line %d, column %d", s.Start.Line, s.Start.Column)
	if s.File != "" {
		return s.File + ": " + loc
	}
	return loc
}

// Severity of a diagnostic.
type Severity uint8

const (
	Error Severity = iota
	Warning
)

// Diagnostic is one message reported against a span.
type Diagnostic struct {
	Severity Severity
	Span     Span
	Message  string
	Internal bool // an upstream compiler bug rather than a problem in the source
}

func (d Diagnostic) String() string {
	var sb strings.Builder
	if d.Severity == Warning {
		sb.WriteString("warning: ")
	}
	if !d.Span.IsZero() {
		sb.WriteString(d.Span.String())
		sb.WriteString(": ")
	}
	if d.Internal {
		sb.WriteString("internal compiler error: ")
	}
	sb.WriteString(d.Message)
	return sb.String()
}

// Located is implemented by errors that know where they happened.
type Located interface {
	Location() Span
}

// Internal is implemented by errors that indicate a compiler bug.
type Internal interface {
	Internal() bool
}

// List accumulates the diagnostics of one compilation unit.
type List struct {
	items []Diagnostic
}

// Errorf records an error at span.
func (l *List) Errorf(span Span, format string, args ...interface{}) {
	l.items = append(l.items, Diagnostic{Severity: Error, Span: span, Message: fmt.Sprintf(format, args...)})
}

// Warnf records a warning at span.
func (l *List) Warnf(span Span, format string, args ...interface{}) {
	l.items = append(l.items, Diagnostic{Severity: Warning, Span: span, Message: fmt.Sprintf(format, args...)})
}

// Add records err as an error diagnostic. Location and internal status are
// taken from err when it provides them. Errors joined with errors.Join are
// recorded one by one.
func (l *List) Add(err error) {
	if err == nil {
		return
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			l.Add(e)
		}
		return
	}
	d := Diagnostic{Severity: Error, Message: err.Error()}
	var loc Located
	if errors.As(err, &loc) {
		d.Span = loc.Location()
	}
	var in Internal
	if errors.As(err, &in) {
		d.Internal = in.Internal()
	}
	l.items = append(l.items, d)
}

// Items returns the recorded diagnostics in report order.
func (l *List) Items() []Diagnostic { return l.items }

// HasErrors reports whether any error (not warning) was recorded.
func (l *List) HasErrors() bool {
	for _, d := range l.items {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Strings renders every diagnostic.
func (l *List) Strings() []string {
	out := make([]string, len(l.items))
	for i, d := range l.items {
		out[i] = d.String()
	}
	return out
}
