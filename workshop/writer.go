package workshop

import "strings"

// Writer accumulates indented workshop text.
type Writer struct {
	sb     strings.Builder
	indent int
	tab    string
}

// NewWriter creates a writer indenting with tab.
func NewWriter(tab string) *Writer {
	return &Writer{tab: tab}
}

// Indent increases the indentation level.
func (w *Writer) Indent() { w.indent++ }

// Outdent decreases the indentation level.
func (w *Writer) Outdent() {
	if w.indent > 0 {
		w.indent--
	}
}

// Line writes one indented line.
func (w *Writer) Line(s string) {
	for i := 0; i < w.indent; i++ {
		w.sb.WriteString(w.tab)
	}
	w.sb.WriteString(s)
	w.sb.WriteByte('\n')
}

// Blank writes an empty line.
func (w *Writer) Blank() { w.sb.WriteByte('\n') }

// Actions writes each action as a statement.
func (w *Writer) Actions(actions []Element) {
	for _, a := range actions {
		w.Line(a.String() + ";")
	}
}

func (w *Writer) String() string { return w.sb.String() }
