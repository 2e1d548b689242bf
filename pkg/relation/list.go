// Package relation implements the relational primitives of §4.7: list
// relations, CLP-style arithmetic and comparisons, pure-function lifting,
// and structural object extraction. These are regular goals built entirely
// out of package goal's combinators and package constraint's suspension
// mechanism — nothing here is special-cased by the core engine.
//
// Grounded in the teacher's list_ops.go (Rembero/SameLengtho/reversoCore)
// and relational_arithmetic.go/fd_arith.go (grounding-driven arithmetic
// modes), generalized from the teacher's single Pair-based list encoding to
// accept both the Nil/Cons spine and fixed-arity Seq encodings per §3's
// invariant that an implementer accepting both must make every list
// operation handle either.
package relation

import (
	"context"

	"github.com/gitrdm/logikflow/pkg/goal"
	"github.com/gitrdm/logikflow/pkg/term"
)

// headTail peels one element off t, whichever of the two list encodings it
// is walked to: a Cons yields (Head, Tail); a non-empty Seq yields (Items[0],
// a Seq of the remaining items); Nil and an empty Seq both report !ok.
func headTail(t term.Term, s *term.Subst) (head, tail term.Term, ok bool) {
	w := term.Walk(t, s)
	switch x := w.(type) {
	case term.Cons:
		return x.Head, x.Tail, true
	case term.Seq:
		if len(x.Items) == 0 {
			return nil, nil, false
		}
		return x.Items[0], term.Seq{Items: x.Items[1:]}, true
	default:
		return nil, nil, false
	}
}

// isEmptyList reports whether t walks to Nil or an empty Seq.
func isEmptyList(t term.Term, s *term.Subst) bool {
	w := term.Walk(t, s)
	if term.IsNil(w) {
		return true
	}
	if seq, ok := w.(term.Seq); ok {
		return len(seq.Items) == 0
	}
	return false
}

// emptyGoal succeeds, unifying list with Nil, iff list is (or can be unified
// with) the empty list in either encoding.
func emptyGoal(list term.Term) Goal {
	return func(ctx context.Context, in Stream) Stream {
		return perElement(in, func(s *Subst) Stream {
			if isEmptyList(list, s) {
				return oneOf(s)
			}
			result := term.Unify(list, term.Nil, s)
			if term.IsFailure(result) {
				return emptyOf()
			}
			return oneOf(result)
		})
	}
}

// Membero relates x to each element of list in turn, one solution per
// element. Works against either list encoding and recurses into the tail so
// a partially-bound spine still enumerates.
func Membero(x, list term.Term) Goal {
	return goal.Or(
		memberHeadGoal(x, list),
		memberTailGoal(x, list),
	)
}

func memberHeadGoal(x, list term.Term) Goal {
	return func(ctx context.Context, in Stream) Stream {
		return perElement(in, func(s *Subst) Stream {
			head, _, ok := headTail(list, s)
			if !ok {
				return emptyOf()
			}
			return goal.Eq(x, head)(ctx, oneOf(s))
		})
	}
}

func memberTailGoal(x, list term.Term) Goal {
	return func(ctx context.Context, in Stream) Stream {
		return perElement(in, func(s *Subst) Stream {
			_, tail, ok := headTail(list, s)
			if !ok {
				return emptyOf()
			}
			return Membero(x, tail)(ctx, oneOf(s))
		})
	}
}

// Appendo relates xs ++ ys == zs, working in any mode standard miniKanren
// append supports (forward, and backward when zs is ground).
func Appendo(xs, ys, zs term.Term) Goal {
	return goal.Or(
		goal.And(emptyGoal(xs), goal.Eq(ys, zs)),
		goal.Fresh(func(head, xtail, ztail *term.Var) goal.Goal {
			return goal.And(
				goal.Eq(xs, term.NewCons(head, xtail)),
				goal.Eq(zs, term.NewCons(head, ztail)),
				Appendo(xtail, ys, ztail),
			)
		}),
	)
}

// Lengtho relates list to its length n.
func Lengtho(list, n term.Term) Goal {
	return goal.Or(
		goal.And(emptyGoal(list), goal.Eq(n, term.NewAtom(0))),
		goal.Fresh(func(head, tail, nMinus1 *term.Var) goal.Goal {
			return goal.And(
				goal.Eq(list, term.NewCons(head, tail)),
				Lengtho(tail, nMinus1),
				plusOneGoal(nMinus1, n),
			)
		}),
	)
}

// plusOneGoal relates n == a+1 when either side is a ground int; if neither
// is, it fails the branch rather than suspending. It is a tiny local
// specialization used only by Lengtho, which runs it after the recursive
// call has bound a.
func plusOneGoal(a, n term.Term) Goal {
	return func(ctx context.Context, in Stream) Stream {
		return perElement(in, func(s *Subst) Stream {
			if av, ok := term.Walk(a, s).(term.Atom); ok {
				if i, ok := av.Value.(int); ok {
					result := term.Unify(n, term.NewAtom(i+1), s)
					if term.IsFailure(result) {
						return emptyOf()
					}
					return oneOf(result)
				}
			}
			if nv, ok := term.Walk(n, s).(term.Atom); ok {
				if i, ok := nv.Value.(int); ok {
					result := term.Unify(a, term.NewAtom(i-1), s)
					if term.IsFailure(result) {
						return emptyOf()
					}
					return oneOf(result)
				}
			}
			return emptyOf()
		})
	}
}

// Firsto unifies x with list's first element.
func Firsto(list, x term.Term) Goal {
	return func(ctx context.Context, in Stream) Stream {
		return perElement(in, func(s *Subst) Stream {
			head, _, ok := headTail(list, s)
			if !ok {
				return emptyOf()
			}
			result := term.Unify(x, head, s)
			if term.IsFailure(result) {
				return emptyOf()
			}
			return oneOf(result)
		})
	}
}

// Resto unifies rest with list's tail.
func Resto(list, rest term.Term) Goal {
	return func(ctx context.Context, in Stream) Stream {
		return perElement(in, func(s *Subst) Stream {
			_, tail, ok := headTail(list, s)
			if !ok {
				return emptyOf()
			}
			result := term.Unify(rest, tail, s)
			if term.IsFailure(result) {
				return emptyOf()
			}
			return oneOf(result)
		})
	}
}

// RemoveFirsto relates element, inputList, outputList where outputList is
// inputList with the first occurrence of element removed.
func RemoveFirsto(element, inputList, outputList term.Term) Goal {
	return goal.Or(
		goal.Fresh(func(rest *term.Var) goal.Goal {
			return goal.And(
				goal.Eq(inputList, term.NewCons(element, rest)),
				goal.Eq(outputList, rest),
			)
		}),
		goal.Fresh(func(head, tail, recOut *term.Var) goal.Goal {
			return goal.And(
				goal.Eq(inputList, term.NewCons(head, tail)),
				Neqo(head, element),
				goal.Eq(outputList, term.NewCons(head, recOut)),
				RemoveFirsto(element, tail, recOut),
			)
		}),
	)
}

// Mapo relates ys to the element-wise application of rel to xs, i.e. it
// holds iff rel(x_i, y_i) holds for every i.
func Mapo(rel func(x, y term.Term) Goal, xs, ys term.Term) Goal {
	return goal.Or(
		goal.And(emptyGoal(xs), emptyGoal(ys)),
		goal.Fresh(func(xh, xt, yh, yt *term.Var) goal.Goal {
			return goal.And(
				goal.Eq(xs, term.NewCons(xh, xt)),
				goal.Eq(ys, term.NewCons(yh, yt)),
				rel(xh, yh),
				Mapo(rel, xt, yt),
			)
		}),
	)
}

// collectGroundList walks list to a Go slice of its (ground) elements,
// reporting !ok if list isn't fully ground yet.
func collectGroundList(list term.Term, s *term.Subst) ([]term.Term, bool) {
	var out []term.Term
	cur := list
	for {
		if isEmptyList(cur, s) {
			return out, true
		}
		h, t, ok := headTail(cur, s)
		if !ok {
			return nil, false
		}
		wh := term.Walk(h, s)
		if term.IsVar(wh) {
			return nil, false
		}
		out = append(out, wh)
		cur = t
	}
}

// AllDistincto succeeds iff every ground element of list is pairwise
// distinct by structural equality. A list that isn't fully ground yet passes
// through unchanged, since distinctness can't be decided early.
func AllDistincto(list term.Term) Goal {
	return func(ctx context.Context, in Stream) Stream {
		return perElement(in, func(s *Subst) Stream {
			items, ok := collectGroundList(list, s)
			if !ok {
				return oneOf(s)
			}
			seen := map[string]bool{}
			for _, it := range items {
				k := it.String()
				if seen[k] {
					return emptyOf()
				}
				seen[k] = true
			}
			return oneOf(s)
		})
	}
}

// Permuteo relates perm to a permutation of list (list must be ground;
// every permutation is produced as a separate solution).
func Permuteo(list, perm term.Term) Goal {
	return func(ctx context.Context, in Stream) Stream {
		return perElement(in, func(s *Subst) Stream {
			items, ok := collectGroundList(list, s)
			if !ok {
				return emptyOf()
			}
			branches := make([]goal.Goal, 0, factorial(len(items)))
			for _, p := range permutations(items) {
				branches = append(branches, goal.Eq(perm, term.List(p...)))
			}
			return goal.Or(branches...)(ctx, oneOf(s))
		})
	}
}

func factorial(n int) int {
	if n <= 1 {
		return 1
	}
	return n * factorial(n-1)
}

func permutations(items []term.Term) [][]term.Term {
	if len(items) <= 1 {
		return [][]term.Term{append([]term.Term(nil), items...)}
	}
	var out [][]term.Term
	for i := range items {
		rest := make([]term.Term, 0, len(items)-1)
		rest = append(rest, items[:i]...)
		rest = append(rest, items[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]term.Term{items[i]}, p...))
		}
	}
	return out
}
