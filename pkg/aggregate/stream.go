package aggregate

import (
	"context"
	"sort"

	"github.com/gitrdm/logikflow/pkg/goal"
	"github.com/gitrdm/logikflow/pkg/stream"
	"github.com/gitrdm/logikflow/pkg/term"
	"github.com/samber/lo"
)

// Subst, Stream and Goal are aliases (not new types) onto package goal's,
// so values built by goal.Eq/goal.And/etc. pass directly into every
// aggregator in this package with no conversion.
type Subst = term.Subst
type Stream = stream.Observable[*Subst]
type Goal = goal.Goal

// buffered runs the whole upstream to completion and hands the collected
// Substs to fn, which decides what (if anything) to emit. Every aggregator
// in this file shares this shape: §4.5 requires them to consume the entire
// upstream before emitting.
func buffered(fn func(ctx context.Context, all []*Subst, obs stream.Observer[*Subst])) Goal {
	return func(ctx context.Context, in Stream) Stream {
		return stream.New(func(ctx context.Context, obs stream.Observer[*Subst]) {
			var all []*Subst
			in.Subscribe(ctx, stream.Observer[*Subst]{
				Next:  func(s *Subst) { all = append(all, s) },
				Error: obs.Error,
				Complete: func() {
					fn(ctx, all, obs)
					obs.Complete()
				},
			})
		})
	}
}

// CollectStreamo folds walk(v, s) over every incoming Subst into a logic
// list unified with out. If drop is false, it emits once against the last
// seen Subst (or Empty if the upstream produced nothing); if drop is true,
// it emits once against a fresh empty Subst, discarding whatever bindings
// the upstream carried.
func CollectStreamo(v, out term.Term, drop bool) Goal {
	return buffered(func(ctx context.Context, all []*Subst, obs stream.Observer[*Subst]) {
		base := term.Empty()
		if !drop && len(all) > 0 {
			base = all[len(all)-1]
		}
		items := make([]term.Term, len(all))
		for i, s := range all {
			items[i] = term.Walk(v, s)
		}
		result := term.Unify(out, term.List(items...), base)
		if !term.IsFailure(result) {
			obs.Next(result)
		}
	})
}

// groupMode selects what group_by_*_streamo aggregates per group.
type groupMode int

const (
	ModeCollect groupMode = iota
	ModeCollectDistinct
	ModeCount
)

// GroupByStreamo groups incoming Substs by CanonicalKey(walk(key,s)) and, per
// group, aggregates walk(value,s) across members (or counts members, for
// ModeCount). If drop is false, it emits one Subst per *input* Subst in the
// group, each extended with key and out bound to the group's shared
// aggregate. If drop is true, it emits one fresh Subst per group, carrying
// only those two bindings.
func GroupByStreamo(key, value, out term.Term, mode groupMode, drop bool) Goal {
	return buffered(func(ctx context.Context, all []*Subst, obs stream.Observer[*Subst]) {
		keyOf := make([]string, len(all))
		keyTerm := make(map[string]term.Term, len(all))
		members := map[string][]*Subst{}
		for i, s := range all {
			k := CanonicalKey(key, s)
			keyOf[i] = k
			keyTerm[k] = term.Walk(key, s)
			members[k] = append(members[k], s)
		}

		emit := func(s *Subst, k string) {
			aggregate := aggregateGroup(members[k], value, mode)
			result := term.Unify(key, keyTerm[k], s)
			if term.IsFailure(result) {
				return
			}
			result = term.Unify(out, aggregate, result)
			if term.IsFailure(result) {
				return
			}
			obs.Next(result)
		}

		if drop {
			for _, k := range sortKeys(members) {
				emit(term.Empty(), k)
			}
			return
		}
		for i, s := range all {
			emit(s, keyOf[i])
		}
	})
}

func aggregateGroup(members []*Subst, value term.Term, mode groupMode) term.Term {
	if mode == ModeCount {
		return term.NewAtom(len(members))
	}
	items := lo.Map(members, func(s *Subst, _ int) term.Term { return term.Walk(value, s) })
	if mode == ModeCollectDistinct {
		items = DedupByCanonical(items, term.Empty())
	}
	return term.List(items...)
}

// Comparator orders two walked terms; used by SortByStreamo. Return value is
// negative if a < b, zero if they are equal, positive if a > b.
type Comparator func(a, b term.Term) int

// NumericComparator compares two walked terms as float64 via toFloat; a term
// that is not a numeric atom compares as equal to anything.
func NumericComparator(a, b term.Term) int {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	switch {
	case aok && bok && af < bf:
		return -1
	case aok && bok && af > bf:
		return 1
	default:
		return 0
	}
}

func toFloat(t term.Term) (float64, bool) {
	a, ok := t.(term.Atom)
	if !ok {
		return 0, false
	}
	switch v := a.Value.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

// SortByStreamo buffers the whole upstream, sorts by walk(v, s) using cmp
// (ascending per Comparator's convention; pass a flipped cmp for
// descending), and emits the original Substs in that order.
func SortByStreamo(v term.Term, cmp Comparator) Goal {
	return buffered(func(ctx context.Context, all []*Subst, obs stream.Observer[*Subst]) {
		sorted := append([]*Subst(nil), all...)
		sort.SliceStable(sorted, func(i, j int) bool {
			return cmp(term.Walk(v, sorted[i]), term.Walk(v, sorted[j])) < 0
		})
		for _, s := range sorted {
			obs.Next(s)
		}
	})
}

// TakeStreamo forwards the first n Substs, then cancels the upstream
// subscription and completes.
func TakeStreamo(n int) Goal {
	return func(ctx context.Context, in Stream) Stream {
		return stream.Take(in, n)
	}
}

// extremumMode selects Maxo vs Mino.
type extremumMode int

const (
	ModeMax extremumMode = iota
	ModeMin
)

// extremumo buffers the whole upstream, finds the numeric extremum of
// walk(v, s), and emits every Subst tied for it, in original arrival order.
func extremumo(v term.Term, mode extremumMode) Goal {
	return buffered(func(ctx context.Context, all []*Subst, obs stream.Observer[*Subst]) {
		var best float64
		found := false
		for _, s := range all {
			f, ok := toFloat(term.Walk(v, s))
			if !ok {
				continue
			}
			if !found || (mode == ModeMax && f > best) || (mode == ModeMin && f < best) {
				best = f
				found = true
			}
		}
		if !found {
			return
		}
		for _, s := range all {
			f, ok := toFloat(term.Walk(v, s))
			if ok && f == best {
				obs.Next(s)
			}
		}
	})
}

// Maxo emits every Subst whose walk(v, s) attains the maximum numeric value
// seen across the whole upstream.
func Maxo(v term.Term) Goal { return extremumo(v, ModeMax) }

// Mino emits every Subst whose walk(v, s) attains the minimum numeric value
// seen across the whole upstream.
func Mino(v term.Term) Goal { return extremumo(v, ModeMin) }
