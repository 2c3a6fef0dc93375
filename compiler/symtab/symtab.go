package symtab

import (
	"fmt"

	"tlog.app/go/errors"
	"tlog.app/go/loc"
	"tlog.app/go/tlog"
)

type (
	Kind int

	Scope int

	Entry struct {
		Name  string
		Type  string
		Kind  Kind
		Index int
	}

	// Table resolves names for one class compile.
	// It must not be shared between compile passes.
	Table struct {
		class map[string]Entry
		sub   map[string]Entry

		counts [numKinds]int

		subroutine string
		inSub      bool
	}

	StructuralError struct {
		Err   error
		Name  string
		Scope Scope
	}
)

const (
	Static Kind = iota
	Field
	Argument
	Var

	numKinds
)

const (
	ClassScope Scope = iota
	SubroutineScope
)

var (
	ErrRedefinition = errors.New("redefinition")
	ErrNotFound     = errors.New("not found")
	ErrNoSubroutine = errors.New("no active subroutine")
)

func New() *Table {
	return &Table{
		class: make(map[string]Entry),
		sub:   make(map[string]Entry),
	}
}

func (t *Table) Define(name, typ string, kind Kind) (e Entry, err error) {
	if kind < 0 || kind >= numKinds {
		return Entry{}, errors.New("bad kind: %v", kind)
	}

	scope := kind.Scope()
	m := t.class

	if scope == SubroutineScope {
		if !t.inSub {
			return Entry{}, NewStructuralError(ErrNoSubroutine, name, scope)
		}

		m = t.sub
	}

	if _, ok := m[name]; ok {
		return Entry{}, NewStructuralError(ErrRedefinition, name, scope)
	}

	e = Entry{
		Name:  name,
		Type:  typ,
		Kind:  kind,
		Index: t.counts[kind],
	}

	t.counts[kind]++
	m[name] = e

	tlog.V("symbols").Printw("define", "name", name, "type", typ, "kind", kind, "index", e.Index, "sub", t.subroutine, "from", loc.Callers(1, 3))

	return e, nil
}

// Lookup searches the subroutine scope first, so locals and arguments
// shadow class variables of the same name.
func (t *Table) Lookup(name string) (Entry, error) {
	if e, ok := t.sub[name]; ok {
		return e, nil
	}

	if e, ok := t.class[name]; ok {
		return e, nil
	}

	scope := ClassScope
	if t.inSub {
		scope = SubroutineScope
	}

	return Entry{}, NewStructuralError(ErrNotFound, name, scope)
}

func (t *Table) EnterSubroutine(name string) {
	t.clearSub()

	t.subroutine = name
	t.inSub = true

	tlog.V("symbols").Printw("enter subroutine", "name", name)
}

func (t *Table) LeaveSubroutine() {
	tlog.V("symbols").Printw("leave subroutine", "name", t.subroutine, "args", t.counts[Argument], "vars", t.counts[Var])

	t.clearSub()

	t.subroutine = ""
	t.inSub = false
}

// Subroutine is the name passed to the last EnterSubroutine,
// or empty outside of a subroutine.
func (t *Table) Subroutine() string { return t.subroutine }

func (t *Table) Count(kind Kind) int {
	if kind < 0 || kind >= numKinds {
		return 0
	}

	return t.counts[kind]
}

func (t *Table) FieldCount() int { return t.counts[Field] }
func (t *Table) LocalCount() int { return t.counts[Var] }

func (t *Table) clearSub() {
	clear(t.sub)

	t.counts[Argument] = 0
	t.counts[Var] = 0
}

func (k Kind) Scope() Scope {
	if k == Argument || k == Var {
		return SubroutineScope
	}

	return ClassScope
}

func (k Kind) String() string {
	switch k {
	case Static:
		return "static"
	case Field:
		return "field"
	case Argument:
		return "argument"
	case Var:
		return "var"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (s Scope) String() string {
	switch s {
	case ClassScope:
		return "class"
	case SubroutineScope:
		return "subroutine"
	default:
		return fmt.Sprintf("Scope(%d)", int(s))
	}
}

func NewStructuralError(err error, name string, scope Scope) *StructuralError {
	return &StructuralError{
		Err:   err,
		Name:  name,
		Scope: scope,
	}
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%v: %q in %v scope", e.Err, e.Name, e.Scope)
}

func (e *StructuralError) Unwrap() error { return e.Err }
