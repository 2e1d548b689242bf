// Package term implements the tagged term model and substitution described
// by the engine's data model: logic variables, the Nil/Cons list spine,
// ground atoms, fixed-arity sequences, unordered records, and the
// substitution that binds variables to terms.
//
// This is a generalization of the teacher repo's Term/Pair/Substitution
// (the teacher's core.go): the same walk/Clone/Bind shape, widened from a
// single cons-pair encoding into the six-case tagged sum the spec requires
// (Var, Nil, Cons, Atom, Seq, Record), plus occurs-check and a
// constraint-aware unify (see unify.go).
package term

import (
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
)

// VarID is the opaque unique identifier of a logic variable.
type VarID string

// varCounter is the process-wide monotone allocator backing fresh Var ids.
// It is the only mutable global in the package and is reset only through
// ResetCounterForTests.
var varCounter int64

// ResetCounterForTests rewinds the global Var-id counter to zero. It exists
// purely so tests can assert on deterministic ids; production code must
// never call it concurrently with live allocation.
func ResetCounterForTests() {
	atomic.StoreInt64(&varCounter, 0)
}

// Term is any value in the logic universe.
type Term interface {
	// String renders a debug representation.
	String() string
	// isTerm is unexported to keep Term a closed sum within this package.
	isTerm()
}

// Var is an opaque, globally unique logic variable.
type Var struct {
	ID   VarID
	Name string // optional debug prefix, not part of identity
}

func (Var) isTerm() {}

// String renders "_name_<n>" if named, else "_<n>".
func (v Var) String() string {
	if v.Name != "" {
		return fmt.Sprintf("_%s_%s", v.Name, v.ID)
	}
	return fmt.Sprintf("_%s", v.ID)
}

// NewVar allocates a fresh Var with an optional debug name (first element of
// name, if given).
func NewVar(name ...string) *Var {
	id := atomic.AddInt64(&varCounter, 1)
	n := ""
	if len(name) > 0 {
		n = name[0]
	}
	return &Var{ID: VarID(fmt.Sprintf("%d", id)), Name: n}
}

// nilTerm is the unique empty logic list.
type nilTerm struct{}

func (nilTerm) isTerm()        {}
func (nilTerm) String() string { return "()" }

// Nil is the empty logic list.
var Nil Term = nilTerm{}

// IsNil reports whether t is the Nil term.
func IsNil(t Term) bool {
	_, ok := t.(nilTerm)
	return ok
}

// Cons is a logic-list cell.
type Cons struct {
	Head Term
	Tail Term
}

func (Cons) isTerm() {}

func (c Cons) String() string {
	return fmt.Sprintf("(%s . %s)", c.Head.String(), c.Tail.String())
}

// NewCons builds a Cons cell.
func NewCons(head, tail Term) Cons { return Cons{Head: head, Tail: tail} }

// List builds a proper Nil-terminated logic list from the given terms.
func List(items ...Term) Term {
	result := Nil
	for i := len(items) - 1; i >= 0; i-- {
		result = NewCons(items[i], result)
	}
	return result
}

// Atom is any ground scalar value: integer, float, string, bool, nil, or an
// opaque host value. Two atoms are equal iff their underlying values compare
// equal with ==; atoms wrapping non-comparable host values must only be
// compared by identity (pointer atoms), which == still satisfies.
type Atom struct {
	Value interface{}
}

func (Atom) isTerm() {}

func (a Atom) String() string {
	if a.Value == nil {
		return "null"
	}
	return fmt.Sprintf("%v", a.Value)
}

// NewAtom wraps a host value as a ground Atom term.
func NewAtom(v interface{}) Atom { return Atom{Value: v} }

// Seq is a fixed-arity, ordered sequence of terms, unified element-wise.
type Seq struct {
	Items []Term
}

func (Seq) isTerm() {}

func (s Seq) String() string {
	parts := make([]string, len(s.Items))
	for i, it := range s.Items {
		parts[i] = it.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// NewSeq builds a Seq from the given terms.
func NewSeq(items ...Term) Seq { return Seq{Items: items} }

// Record is an unordered string-keyed mapping of terms, unified by matching
// key sets then unifying per key.
type Record struct {
	Fields map[string]Term
}

func (Record) isTerm() {}

func (r Record) String() string {
	keys := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %s", k, r.Fields[k].String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// NewRecord builds a Record from the given fields. The map is not copied;
// callers must treat it as owned by the returned Record from this point on.
func NewRecord(fields map[string]Term) Record { return Record{Fields: fields} }

// IsVar reports whether t is a *Var.
func IsVar(t Term) bool {
	_, ok := t.(*Var)
	return ok
}
