package relation

import (
	"github.com/gitrdm/logikflow/pkg/constraint"
	"github.com/gitrdm/logikflow/pkg/goal"
	"github.com/gitrdm/logikflow/pkg/term"
)

// numOf walks t and reports its numeric value as a float64, preserving
// whether the original atom was an int so arithmetic goals can hand back an
// int result when every operand was an int (matching the teacher's
// fd_arith.go preference for exact integer results over float drift).
func numOf(t term.Term, s *term.Subst) (value float64, isInt bool, ok bool) {
	a, ok := term.Walk(t, s).(term.Atom)
	if !ok {
		return 0, false, false
	}
	switch v := a.Value.(type) {
	case int:
		return float64(v), true, true
	case int64:
		return float64(v), true, true
	case float64:
		return v, false, true
	default:
		return 0, false, false
	}
}

func numAtom(v float64, isInt bool) term.Atom {
	if isInt {
		return term.NewAtom(int(v))
	}
	return term.NewAtom(v)
}

// aritho builds a three-argument CLP(FD)-style arithmetic relation: given
// op(a,b)=c it suspends until two of {a,b,c} are ground, computes the third
// from forward (a,b -> c) or either inverse (a,c -> b / b,c -> a), and fails
// if the relation doesn't hold once all three happen to be ground at once.
// This is exactly the grounding-driven multi-mode arithmetic the teacher's
// fd_arith.go/relational_arithmetic.go implement, recast over
// constraint.Suspendable instead of an eager ConstraintStore.
func aritho(a, b, c term.Term, forward func(x, y float64) float64, inverseB func(x, z float64) float64, inverseA func(y, z float64) float64) Goal {
	checker := func(vals []term.Term, s *constraint.Subst) (*constraint.Subst, term.CheckResult) {
		av, aInt, aOK := numOf(vals[0], s)
		bv, bInt, bOK := numOf(vals[1], s)
		cv, cInt, cOK := numOf(vals[2], s)

		switch {
		case aOK && bOK:
			want := forward(av, bv)
			isInt := aInt && bInt
			if cOK {
				if cv == want {
					return s, term.Succeeded
				}
				return nil, term.Failed
			}
			result := term.Unify(vals[2], numAtom(want, isInt), s)
			if term.IsFailure(result) {
				return nil, term.Failed
			}
			return result, term.Succeeded
		case aOK && cOK:
			want := inverseB(av, cv)
			result := term.Unify(vals[1], numAtom(want, aInt && cInt), s)
			if term.IsFailure(result) {
				return nil, term.Failed
			}
			return result, term.Succeeded
		case bOK && cOK:
			want := inverseA(bv, cv)
			result := term.Unify(vals[0], numAtom(want, bInt && cInt), s)
			if term.IsFailure(result) {
				return nil, term.Failed
			}
			return result, term.Succeeded
		default:
			return s, term.Deferred
		}
	}
	return constraint.Suspendable([]term.Term{a, b, c}, checker, 2)
}

// Pluso relates a + b == c, any one of the three determinable from the
// other two.
func Pluso(a, b, c term.Term) Goal {
	return aritho(a, b, c,
		func(x, y float64) float64 { return x + y },
		func(x, z float64) float64 { return z - x },
		func(y, z float64) float64 { return z - y },
	)
}

// Minuso relates a - b == c.
func Minuso(a, b, c term.Term) Goal {
	return aritho(a, b, c,
		func(x, y float64) float64 { return x - y },
		func(x, z float64) float64 { return x - z },
		func(y, z float64) float64 { return z + y },
	)
}

// Multo relates a * b == c.
func Multo(a, b, c term.Term) Goal {
	return aritho(a, b, c,
		func(x, y float64) float64 { return x * y },
		func(x, z float64) float64 {
			if x == 0 {
				return 0
			}
			return z / x
		},
		func(y, z float64) float64 {
			if y == 0 {
				return 0
			}
			return z / y
		},
	)
}

// Dividebyo relates a / b == c. Division by a ground zero fails the branch
// immediately rather than suspending forever.
func Dividebyo(a, b, c term.Term) Goal {
	checker := func(vals []term.Term, s *constraint.Subst) (*constraint.Subst, term.CheckResult) {
		bv, _, bOK := numOf(vals[1], s)
		if bOK && bv == 0 {
			return nil, term.Failed
		}
		return nil, term.Deferred
	}
	return goal.And(
		constraint.Suspendable([]term.Term{b}, checker, 1),
		aritho(a, b, c,
			func(x, y float64) float64 { return x / y },
			func(x, z float64) float64 {
				if z == 0 {
					return 0
				}
				return x / z
			},
			func(y, z float64) float64 { return z * y },
		),
	)
}

// compareo builds a binary numeric comparison as a Suspendable constraint:
// it waits for both sides to be ground, then decides succeed/fail, never
// binding anything.
func compareo(a, b term.Term, ok func(x, y float64) bool) Goal {
	checker := func(vals []term.Term, s *constraint.Subst) (*constraint.Subst, term.CheckResult) {
		av, _, aOK := numOf(vals[0], s)
		bv, _, bOK := numOf(vals[1], s)
		if !aOK || !bOK {
			return s, term.Deferred
		}
		if ok(av, bv) {
			return s, term.Succeeded
		}
		return nil, term.Failed
	}
	return constraint.Suspendable([]term.Term{a, b}, checker, 2)
}

// Gto relates a > b.
func Gto(a, b term.Term) Goal { return compareo(a, b, func(x, y float64) bool { return x > y }) }

// Gteo relates a >= b.
func Gteo(a, b term.Term) Goal { return compareo(a, b, func(x, y float64) bool { return x >= y }) }

// Lto relates a < b.
func Lto(a, b term.Term) Goal { return compareo(a, b, func(x, y float64) bool { return x < y }) }

// Lteo relates a <= b.
func Lteo(a, b term.Term) Goal { return compareo(a, b, func(x, y float64) bool { return x <= y }) }

// Neqo is numeric disequality; it delegates to package constraint's general
// structural Neq, which already covers numbers.
func Neqo(a, b term.Term) Goal { return constraint.Neq(a, b) }
