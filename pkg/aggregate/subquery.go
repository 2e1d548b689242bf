package aggregate

import (
	"context"

	"github.com/gitrdm/logikflow/pkg/stream"
	"github.com/gitrdm/logikflow/pkg/term"
	"github.com/samber/lo"
)

// Aggregator reduces the collected extract values from one Subquery run
// into the single term unified against bind.
type Aggregator func(collected []term.Term, s *Subst) term.Term

// runSubgoal drives g to completion over a singleton stream wrapping s,
// collecting every output it emits; cancellation of the returned context
// tears the inner subscription down, discarding any partial buffer (§4.6).
func runSubgoal(ctx context.Context, g Goal, s *Subst) ([]*Subst, error) {
	sctx, cancel := context.WithCancel(ctx)
	defer cancel()

	out := g(sctx, stream.Of(s))
	var results []*Subst
	var runErr error
	done := make(chan struct{})
	out.Subscribe(sctx, stream.Observer[*Subst]{
		Next:     func(v *Subst) { results = append(results, v) },
		Error:    func(err error) { runErr = err; close(done) },
		Complete: func() { close(done) },
	})
	<-done
	return results, runErr
}

// Subquery runs g to completion for every incoming Subst s, extracts
// walk(extract, s_i) from each of its outputs, reduces the collected values
// with aggregator, and unifies bind against the result. Emits iff that
// unification succeeds.
func Subquery(g Goal, extract, bind term.Term, aggregator Aggregator) Goal {
	return func(ctx context.Context, in Stream) Stream {
		return stream.FlatMap(in, func(s *Subst) Stream {
			return stream.New(func(ctx context.Context, obs stream.Observer[*Subst]) {
				outs, err := runSubgoal(ctx, g, s)
				if err != nil {
					obs.Error(err)
					return
				}
				collected := lo.Map(outs, func(o *Subst, _ int) term.Term { return term.Walk(extract, o) })
				agg := aggregator(collected, s)
				result := term.Unify(bind, agg, s)
				if !term.IsFailure(result) {
					obs.Next(result)
				}
				obs.Complete()
			})
		})
	}
}

func listAggregator(collected []term.Term, _ *Subst) term.Term {
	return term.List(collected...)
}

// Collecto collects every value membero/etc. binds to v while running g,
// and unifies out with the resulting logic list.
func Collecto(v term.Term, g Goal, out term.Term) Goal {
	return Subquery(g, v, out, listAggregator)
}

// CollectDistincto is Collecto's dedup-by-canonical-form counterpart: later
// duplicates among g's solutions for v are dropped before out is unified.
func CollectDistincto(v term.Term, g Goal, out term.Term) Goal {
	return Subquery(g, v, out, func(collected []term.Term, s *Subst) term.Term {
		return term.List(DedupByCanonical(collected, s)...)
	})
}

// Counto unifies out with the number of solutions g has for v.
func Counto(v term.Term, g Goal, out term.Term) Goal {
	return Subquery(g, v, out, func(collected []term.Term, _ *Subst) term.Term {
		return term.NewAtom(len(collected))
	})
}

// CountDistincto unifies out with the number of distinct (by canonical
// form) solutions g has for v.
func CountDistincto(v term.Term, g Goal, out term.Term) Goal {
	return Subquery(g, v, out, func(collected []term.Term, s *Subst) term.Term {
		return term.NewAtom(len(DedupByCanonical(collected, s)))
	})
}

// CountValueo unifies n with the count of g's solutions for v that equal
// walk(target, s) by canonical form.
func CountValueo(v term.Term, g Goal, target, n term.Term) Goal {
	return func(ctx context.Context, in Stream) Stream {
		return stream.FlatMap(in, func(s *Subst) Stream {
			return stream.New(func(ctx context.Context, obs stream.Observer[*Subst]) {
				outs, err := runSubgoal(ctx, g, s)
				if err != nil {
					obs.Error(err)
					return
				}
				targetKey := CanonicalKey(target, s)
				count := 0
				for _, o := range outs {
					if CanonicalKey(v, o) == targetKey {
						count++
					}
				}
				result := term.Unify(n, term.NewAtom(count), s)
				if !term.IsFailure(result) {
					obs.Next(result)
				}
				obs.Complete()
			})
		})
	}
}

// groupAggMode selects GroupByCollecto vs GroupByCounto.
type groupAggMode int

const (
	GroupAggCollect groupAggMode = iota
	GroupAggCount
)

// GroupByo runs g to completion, groups its outputs by CanonicalKey(walk(
// keyVar, o)), and emits one Subst per group against the original s, each
// extended with keyVar bound to the group key and outAgg bound to either
// the collected logic list of valueVar (GroupAggCollect) or the group's
// member count (GroupAggCount).
func GroupByo(keyVar, valueVar term.Term, g Goal, outAgg term.Term, mode groupAggMode) Goal {
	return func(ctx context.Context, in Stream) Stream {
		return stream.FlatMap(in, func(s *Subst) Stream {
			return stream.New(func(ctx context.Context, obs stream.Observer[*Subst]) {
				outs, err := runSubgoal(ctx, g, s)
				if err != nil {
					obs.Error(err)
					return
				}
				groups := map[string][]term.Term{}
				keyVal := map[string]term.Term{}
				for _, o := range outs {
					k := CanonicalKey(keyVar, o)
					keyVal[k] = term.Walk(keyVar, o)
					groups[k] = append(groups[k], term.Walk(valueVar, o))
				}
				for _, k := range sortKeys(groups) {
					var agg term.Term
					if mode == GroupAggCount {
						agg = term.NewAtom(len(groups[k]))
					} else {
						agg = term.List(groups[k]...)
					}
					result := term.Unify(keyVar, keyVal[k], s)
					if term.IsFailure(result) {
						continue
					}
					result = term.Unify(outAgg, agg, result)
					if term.IsFailure(result) {
						continue
					}
					obs.Next(result)
				}
				obs.Complete()
			})
		})
	}
}
