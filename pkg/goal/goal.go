// Package goal implements the goal calculus (§4.4): the core combinators
// that compose into a pipeline of lazy, streaming goals over substitutions.
// A Goal is, literally, Stream<Subst> -> Stream<Subst>; composition wires
// one goal's output stream into the next (conjunction) or broadcasts the
// input to several and merges their outputs (disjunction).
//
// Grounded in the teacher's control_flow.go/core.go (Conj/Disj/Ifa/Ifte),
// generalized from the teacher's channel-based Stream/ConstraintStore pair
// onto the generic stream.Observable[*term.Subst] transport (package
// stream) and the tagged term.Subst model (package term), and wired to
// emit group metadata (package group, §4.9) the way every wrapper in the
// teacher's control-flow layer threads a ConstraintStore through.
package goal

import (
	"context"
	"reflect"
	"strconv"

	"github.com/gitrdm/logikflow/pkg/group"
	"github.com/gitrdm/logikflow/pkg/stream"
	"github.com/gitrdm/logikflow/pkg/term"
	"github.com/pkg/errors"
)

// Subst is a convenience alias for the substitution type goals operate on.
type Subst = term.Subst

// Stream is the substitution stream every Goal consumes and produces.
type Stream = stream.Observable[*Subst]

// Goal transforms a stream of substitutions into another stream of
// substitutions: each input Subst is a candidate world; each output Subst is
// one way of satisfying the goal starting from that world.
type Goal func(ctx context.Context, in Stream) Stream

// streamOf builds a one-shot input stream carrying a single Subst, the
// standard way a per-Subst combinator (Ifte, EitherOr, Not, Once, Fresh) hands
// a candidate world to an inner goal.
func streamOf(s *Subst) Stream {
	return stream.Of(s)
}

// runToCompletion subscribes g to a singleton stream wrapping s and blocks
// until it completes or errors, returning every Subst it emitted along the
// way. It is the synchronization point every per-Subst combinator needs:
// the inner goal must be driven to completion before the combinator can
// decide what to do next.
func runToCompletion(ctx context.Context, g Goal, s *Subst) ([]*Subst, error) {
	out := g(ctx, streamOf(s))
	var results []*Subst
	var runErr error
	done := make(chan struct{})
	out.Subscribe(ctx, stream.Observer[*Subst]{
		Next:     func(v *Subst) { results = append(results, v) },
		Error:    func(err error) { runErr = err; close(done) },
		Complete: func() { close(done) },
	})
	<-done
	return results, runErr
}

// Eq unifies x and y against every incoming Subst, emitting the unified
// result iff unification succeeds.
func Eq(x, y term.Term) Goal {
	return func(ctx context.Context, in Stream) Stream {
		return stream.New(func(ctx context.Context, obs stream.Observer[*Subst]) {
			in.Subscribe(ctx, stream.Observer[*Subst]{
				Next: func(s *Subst) {
					result := term.Unify(x, y, s)
					if term.IsFailure(result) {
						return
					}
					obs.Next(withGoalGroup(result, "eq", -1, nil))
				},
				Error:    obs.Error,
				Complete: obs.Complete,
			})
		})
	}
}

// withGoalGroup enriches s with an updated group.Context for the given
// wrapper kind. It is how every combinator propagates §4.9's metadata; core
// goals never read the metadata back, they only thread it forward.
func withGoalGroup(s *Subst, kind string, branchIndex int, refs []group.GoalRef) *Subst {
	self := group.GoalRef{Kind: kind}
	all := refs
	if all == nil {
		all = []group.GoalRef{self}
	}
	ctx := group.Of(s).Enter(kind, branchIndex, all, all)
	return group.Attach(s, ctx)
}

// Fresh allocates fresh logic variables and delegates to f. The arity of f
// (via reflection) determines how many variables are allocated; f must be a
// func(*term.Var, ..., *term.Var) Goal. Allocation happens once, when Fresh
// is called to build the goal — not per incoming Subst — matching the
// reference behavior documented in spec §4.4 and §9: ids are process-unique
// even if the same Fresh-built goal is reused across multiple runs. f itself
// is called with those same variables for each incoming Subst, so a relation
// that recurses through Fresh is only expanded as far as its input drives it.
func Fresh(f interface{}) Goal {
	fv := reflect.ValueOf(f)
	ft := fv.Type()
	if ft.Kind() != reflect.Func {
		panic(errors.New("goal.Fresh: argument must be a function"))
	}
	if ft.NumOut() != 1 {
		panic(errors.New("goal.Fresh: function must return exactly one Goal"))
	}
	n := ft.NumIn()
	args := make([]reflect.Value, n)
	for i := 0; i < n; i++ {
		args[i] = reflect.ValueOf(term.NewVar())
	}
	return perSubst(func(ctx context.Context, s *Subst) Stream {
		g, ok := fv.Call(args)[0].Interface().(Goal)
		if !ok {
			panic(errors.New("goal.Fresh: function must return a Goal"))
		}
		return g(ctx, streamOf(s))
	})
}

// memberRefs builds one GoalRef per conjunct/disjunct, labeled by position,
// the set And/Or record as their conj/all goal peers (§4.9). Core goals have
// no intrinsic name to offer here; the label exists so external relations
// can at least count and distinguish peers, not to name them precisely.
func memberRefs(kind string, n int) []group.GoalRef {
	refs := make([]group.GoalRef, n)
	for i := range refs {
		refs[i] = group.GoalRef{Kind: kind, Label: strconv.Itoa(i)}
	}
	return refs
}

// And left-folds its goals: each goal consumes the output stream of the
// previous one. And() is the identity goal; And(g) behaves exactly like g.
// Every emitted Subst is re-enriched with a fresh group (§4.9): one "and"
// path step, and the conjunction's members recorded as conj/all peers.
func And(goals ...Goal) Goal {
	refs := memberRefs("and-member", len(goals))
	return func(ctx context.Context, in Stream) Stream {
		cur := in
		for _, g := range goals {
			cur = g(ctx, cur)
		}
		return stream.Map(cur, func(s *Subst) *Subst {
			return withGoalGroup(s, "and", -1, refs)
		})
	}
}

// Or multicasts the input via Share(1) (subscribed once) and merges the
// outputs of every clause. It completes once every clause has completed.
// Each branch's output is re-enriched with a fresh group (§4.9): one "or"
// path step carrying that branch's index, and every clause recorded as
// conj/all peers.
func Or(goals ...Goal) Goal {
	refs := memberRefs("or-clause", len(goals))
	return func(ctx context.Context, in Stream) Stream {
		if len(goals) == 0 {
			return stream.Empty[*Subst]()
		}
		shared := stream.Share(in, 1)
		branches := make([]Stream, len(goals))
		for i, g := range goals {
			branch := g(ctx, shared)
			idx := i
			branches[i] = stream.Map(branch, func(s *Subst) *Subst {
				return withGoalGroup(s, "or", idx, refs)
			})
		}
		return stream.MergeAll(branches)
	}
}

// Conde is Or of And(clause...) per clause, the standard miniKanren
// disjunction-of-conjunctions shape.
func Conde(clauses ...[]Goal) Goal {
	goals := make([]Goal, len(clauses))
	for i, c := range clauses {
		goals[i] = And(c...)
	}
	return Or(goals...)
}

// Ifte runs ifGoal for each input Subst; if it produces any output, thenGoal
// runs over each of those outputs; otherwise elseGoal runs over the
// *original* input Subst (not ifGoal's, necessarily empty, output).
func Ifte(ifGoal, thenGoal, elseGoal Goal) Goal {
	return perSubst(func(ctx context.Context, s *Subst) Stream {
		results, err := runToCompletion(ctx, ifGoal, s)
		if err != nil {
			return errStream(err)
		}
		if len(results) == 0 {
			return elseGoal(ctx, streamOf(s))
		}
		branches := make([]Stream, len(results))
		for i, r := range results {
			branches[i] = thenGoal(ctx, streamOf(r))
		}
		return stream.MergeAll(branches)
	})
}

// EitherOr runs a per input Subst; if it produced any output, only those are
// emitted; otherwise b runs over the original Subst.
func EitherOr(a, b Goal) Goal {
	return perSubst(func(ctx context.Context, s *Subst) Stream {
		results, err := runToCompletion(ctx, a, s)
		if err != nil {
			return errStream(err)
		}
		if len(results) > 0 {
			return stream.From(results)
		}
		return b(ctx, streamOf(s))
	})
}

// Once is g followed by Take(1), but applied per incoming Subst so it caps
// the result count contributed by *each* input, matching invariant §8.6.
func Once(g Goal) Goal {
	return perSubst(func(ctx context.Context, s *Subst) Stream {
		return stream.Take(g(ctx, streamOf(s)), 1)
	})
}

// isTrivialCarrier reports whether result differs from orig only by a
// suspended-constraint attachment (§4.4's "suspended-constraint carrier"
// rule): no new bindings were introduced and a suspend was added.
func isTrivialCarrier(orig, result *Subst) bool {
	return len(term.NewlyBoundVars(orig, result)) == 0 && len(result.Suspends()) > len(orig.Suspends())
}

// Not succeeds (emitting the original Subst unchanged) iff g does NOT
// succeed on it, where a suspended-constraint-only output does not count as
// a success (§4.4). This makes Not safe in the presence of deferred
// constraints: a goal that merely suspends without deciding anything is
// treated as not having succeeded yet.
func Not(g Goal) Goal {
	return perSubst(func(ctx context.Context, s *Subst) Stream {
		results, err := runToCompletion(ctx, g, s)
		if err != nil {
			return errStream(err)
		}
		for _, r := range results {
			if !isTrivialCarrier(s, r) {
				return stream.Empty[*Subst]()
			}
		}
		return streamOf(s)
	})
}

// perSubst lifts a per-Subst Stream-producing function into a Goal: each
// incoming Subst gets its own inner subscription, and the results are
// merged (order between input Substs' contributions is not guaranteed,
// matching §4.4's disjunction ordering note; order *within* one input's
// contribution is preserved).
func perSubst(fn func(ctx context.Context, s *Subst) Stream) Goal {
	return func(ctx context.Context, in Stream) Stream {
		return stream.FlatMap(in, func(s *Subst) Stream {
			return fn(ctx, s)
		})
	}
}

func errStream(err error) Stream {
	return stream.New(func(ctx context.Context, obs stream.Observer[*Subst]) {
		obs.Error(err)
	})
}
