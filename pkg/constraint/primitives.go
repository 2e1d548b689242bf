package constraint

import (
	"github.com/gitrdm/logikflow/pkg/term"
)

// Neq suspends until both operands are ground, then fails the branch if
// they are equal. It also fails immediately, without waiting, if both sides
// walk to the very same Var (§4.7: "neqo fails immediately if both sides
// are the same Var" — that case can never become unequal).
func Neq(a, b term.Term) Goal {
	checker := func(vals []term.Term, s *Subst) (*Subst, term.CheckResult) {
		wa, wb := vals[0], vals[1]
		if av, ok := wa.(*term.Var); ok {
			if bv, ok := wb.(*term.Var); ok && av.ID == bv.ID {
				return nil, term.Failed
			}
		}
		if term.IsVar(wa) || term.IsVar(wb) {
			return s, term.Deferred
		}
		if unified := term.Unify(wa, wb, s); !term.IsFailure(unified) {
			return nil, term.Failed
		}
		return s, term.Succeeded
	}
	return Suspendable([]term.Term{a, b}, checker, 0)
}

// occurs reports whether needle appears anywhere within haystack's already
// walked structure, descending through Cons/Seq/Record.
func occurs(needle, haystack term.Term, s *Subst) bool {
	h := term.Walk(haystack, s)
	if termsIdentical(needle, h) {
		return true
	}
	switch x := h.(type) {
	case term.Cons:
		return occurs(needle, x.Head, s) || occurs(needle, x.Tail, s)
	case term.Seq:
		for _, it := range x.Items {
			if occurs(needle, it, s) {
				return true
			}
		}
		return false
	case term.Record:
		for _, it := range x.Fields {
			if occurs(needle, it, s) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func termsIdentical(a, b term.Term) bool {
	av, aok := a.(*term.Var)
	bv, bok := b.(*term.Var)
	if aok && bok {
		return av.ID == bv.ID
	}
	if aok != bok {
		return false
	}
	if aAtom, ok := a.(term.Atom); ok {
		if bAtom, ok := b.(term.Atom); ok {
			return aAtom.Value == bAtom.Value
		}
	}
	return false
}

// Absento constrains absent to never occur, at any depth, within term.
// Ground-checked eagerly when possible; suspends on term's unbound parts
// otherwise.
func Absento(absent, haystack term.Term) Goal {
	checker := func(vals []term.Term, s *Subst) (*Subst, term.CheckResult) {
		if occurs(absent, vals[1], s) {
			return nil, term.Failed
		}
		if groundDeep(vals[1], s) {
			return s, term.Succeeded
		}
		return s, term.Deferred
	}
	return Suspendable([]term.Term{absent, haystack}, checker, 0)
}

func groundDeep(t term.Term, s *Subst) bool {
	w := term.Walk(t, s)
	switch x := w.(type) {
	case *term.Var:
		return false
	case term.Cons:
		return groundDeep(x.Head, s) && groundDeep(x.Tail, s)
	case term.Seq:
		for _, it := range x.Items {
			if !groundDeep(it, s) {
				return false
			}
		}
		return true
	case term.Record:
		for _, it := range x.Fields {
			if !groundDeep(it, s) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// TypeKind names the host Go kind a Typeo constraint checks for.
type TypeKind int

const (
	SymbolType TypeKind = iota
	NumberType
	BoolType
)

// Typeo suspends until t is ground, then checks it matches kind.
func Typeo(t term.Term, kind TypeKind) Goal {
	checker := func(vals []term.Term, s *Subst) (*Subst, term.CheckResult) {
		a, ok := vals[0].(term.Atom)
		if !ok {
			return nil, term.Failed
		}
		matches := false
		switch kind {
		case SymbolType:
			_, matches = a.Value.(string)
		case NumberType:
			switch a.Value.(type) {
			case int, int64, float64:
				matches = true
			}
		case BoolType:
			_, matches = a.Value.(bool)
		}
		if !matches {
			return nil, term.Failed
		}
		return s, term.Succeeded
	}
	return Suspendable([]term.Term{t}, checker, 1)
}

// Groundo succeeds iff t is fully ground (no Var remains at any depth),
// suspending until that can be decided.
func Groundo(t term.Term) Goal {
	checker := func(vals []term.Term, s *Subst) (*Subst, term.CheckResult) {
		if groundDeep(vals[0], s) {
			return s, term.Succeeded
		}
		return s, term.Deferred
	}
	return Suspendable([]term.Term{t}, checker, 0)
}
