package manifest

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/chazu/wsc/diag"
	"github.com/chazu/wsc/storage"
	"github.com/chazu/wsc/workshop"
)

// declFile is the on-disk form of a declaration file.
type declFile struct {
	Variables []variableEntry `toml:"variable"`
}

type variableEntry struct {
	Name        string   `toml:"name"`
	Persistence string   `toml:"persistence"`
	ID          *int     `toml:"id"`
	Extended    bool     `toml:"extended"`
	Recursive   bool     `toml:"recursive"`
	Constant    bool     `toml:"constant"`
	Value       *float64 `toml:"value"`
	Scope       string   `toml:"scope"`
	Line        int      `toml:"line"`
}

// Entry is one declaration together with the scope it is declared in.
type Entry struct {
	Decl *storage.Declaration

	// Scope is the path of nested scopes from the root, empty for the
	// root scope. "main.loop" in the file becomes ["main", "loop"].
	Scope []string
}

// ScopeKey returns the dotted form of the entry's scope.
func (e Entry) ScopeKey() string { return strings.Join(e.Scope, ".") }

// LoadDeclarations reads a declaration file. Every entry is checked; the
// returned error joins all problems found.
func LoadDeclarations(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	var f declFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	var (
		entries []Entry
		errs    []error
	)
	for i, v := range f.Variables {
		e, err := v.entry(path, i)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		entries = append(entries, e)
	}
	return entries, errors.Join(errs...)
}

func (v variableEntry) entry(path string, i int) (Entry, error) {
	span := diag.Span{File: path, Start: diag.Position{Line: v.Line, Column: 1}}
	fail := func(format string, args ...interface{}) (Entry, error) {
		msg := fmt.Sprintf(format, args...)
		if v.Line > 0 {
			return Entry{}, fmt.Errorf("%s: %s", span, msg)
		}
		return Entry{}, fmt.Errorf("%s: variable %d: %s", path, i+1, msg)
	}

	if v.Name == "" {
		return fail("missing name")
	}
	p, err := storage.ParsePersistence(v.Persistence)
	if err != nil {
		return fail("%v", err)
	}
	if v.Constant && v.Value == nil {
		return fail("constant %s has no value", v.Name)
	}
	if v.Value != nil && !v.Constant {
		return fail("%s has a value but is not constant", v.Name)
	}

	d := &storage.Declaration{
		Name:        v.Name,
		Persistence: p,
		Overflow:    v.Extended,
		Constant:    v.Constant,
		Recursive:   v.Recursive,
	}
	if v.Line > 0 {
		d.Span = span
	}
	if v.ID != nil {
		d.ID, d.Pinned = *v.ID, true
	}
	if v.Value != nil {
		d.Value = workshop.Num(*v.Value)
	}

	e := Entry{Decl: d}
	if v.Scope != "" {
		e.Scope = strings.Split(v.Scope, ".")
	}
	return e, nil
}

// Declarations returns the declarations of entries in file order.
func Declarations(entries []Entry) []*storage.Declaration {
	out := make([]*storage.Declaration, len(entries))
	for i, e := range entries {
		out[i] = e.Decl
	}
	return out
}
