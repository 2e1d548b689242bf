package term

// CheckResult is the tri-state outcome a suspended-constraint Checker may
// return: Succeeded (with an updated Subst), Failed (prune the branch), or
// Deferred (not enough information yet — keep waiting).
type CheckResult int

const (
	// Succeeded means the checker has definitively decided the constraint
	// holds; the Subst returned with it carries the (possibly further-bound)
	// result.
	Succeeded CheckResult = iota
	// Failed means the checker has definitively decided the constraint is
	// violated; the whole branch must be pruned.
	Failed
	// Deferred means the checker could not yet decide; it must be retried
	// when more of its watched variables become bound.
	Deferred
)

// Checker is a suspended constraint's re-entrant decision function. vals is
// Vars walked through the current Subst at invocation time.
type Checker func(vals []Term, s *Subst) (*Subst, CheckResult)

// Suspend is a deferred checker keyed on the variables it watches. It is
// re-evaluated whenever any watched variable becomes bound.
type Suspend struct {
	ID      string
	Vars    []Term
	Watch   map[VarID]struct{}
	Checker Checker
}

// isWatching reports whether any of ids is in sp's watch set.
func (sp *Suspend) isWatching(ids []VarID) bool {
	for _, id := range ids {
		if _, ok := sp.Watch[id]; ok {
			return true
		}
	}
	return false
}

// watchedUnbound recomputes the watch set as "every currently unbound var
// among sp.Vars", used both at creation and to prune already-bound vars
// after a wake-up that returned Deferred.
func watchedUnbound(vars []Term, s *Subst) map[VarID]struct{} {
	watch := map[VarID]struct{}{}
	for _, t := range vars {
		w := Walk(t, s)
		if v, ok := w.(*Var); ok {
			watch[v.ID] = struct{}{}
		}
	}
	return watch
}

// termEqual is strict structural equality (not unification): used to decide
// baseUnify cases 2/3/5/6.
func termEqual(a, b Term) bool {
	switch x := a.(type) {
	case *Var:
		y, ok := b.(*Var)
		return ok && x.ID == y.ID
	case nilTerm:
		_, ok := b.(nilTerm)
		return ok
	case Atom:
		y, ok := b.(Atom)
		return ok && x.Value == y.Value
	case Cons:
		y, ok := b.(Cons)
		return ok && termEqual(x.Head, y.Head) && termEqual(x.Tail, y.Tail)
	case Seq:
		y, ok := b.(Seq)
		if !ok || len(x.Items) != len(y.Items) {
			return false
		}
		for i := range x.Items {
			if !termEqual(x.Items[i], y.Items[i]) {
				return false
			}
		}
		return true
	case Record:
		y, ok := b.(Record)
		if !ok || len(x.Fields) != len(y.Fields) {
			return false
		}
		for k, v := range x.Fields {
			yv, ok := y.Fields[k]
			if !ok || !termEqual(v, yv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// failed is the failure marker threaded through baseUnify: the nil *Subst.
// "Failure" and "the empty substitution" are never confused, because
// Empty() returns a valid, non-nil Subst with zero bindings.
var failed *Subst = nil

// IsFailure reports whether s represents unification failure.
func IsFailure(s *Subst) bool { return s == failed }

// baseUnify implements §4.2's ten-case unification, with no constraint
// wake-up (see Unify for the constraint-aware wrapper unify.go composes).
func baseUnify(u, v Term, s *Subst) *Subst {
	if IsFailure(s) {
		return failed
	}
	if termEqual(u, v) {
		return s
	}

	wu := Walk(u, s)
	wv := Walk(v, s)
	if termEqual(wu, wv) {
		return s
	}

	if vv, ok := wu.(*Var); ok {
		cp, ok := s.extend(vv, wv)
		if !ok {
			return failed
		}
		return cp
	}
	if vv, ok := wv.(*Var); ok {
		cp, ok := s.extend(vv, wu)
		if !ok {
			return failed
		}
		return cp
	}

	switch a := wu.(type) {
	case Atom:
		b, ok := wv.(Atom)
		if !ok || a.Value != b.Value {
			return failed
		}
		return s
	case nilTerm:
		if _, ok := wv.(nilTerm); ok {
			return s
		}
		return failed
	case Cons:
		b, ok := wv.(Cons)
		if !ok {
			return failed
		}
		s2 := baseUnify(a.Head, b.Head, s)
		if IsFailure(s2) {
			return failed
		}
		return baseUnify(a.Tail, b.Tail, s2)
	case Seq:
		b, ok := wv.(Seq)
		if !ok || len(a.Items) != len(b.Items) {
			return failed
		}
		cur := s
		for i := range a.Items {
			cur = baseUnify(a.Items[i], b.Items[i], cur)
			if IsFailure(cur) {
				return failed
			}
		}
		return cur
	case Record:
		b, ok := wv.(Record)
		if !ok || len(a.Fields) != len(b.Fields) {
			return failed
		}
		cur := s
		for k, av := range a.Fields {
			bv, ok := b.Fields[k]
			if !ok {
				return failed
			}
			cur = baseUnify(av, bv, cur)
			if IsFailure(cur) {
				return failed
			}
		}
		return cur
	default:
		return failed
	}
}

// Unify is the constraint-aware entry point: it runs baseUnify, and on
// success wakes every suspended constraint that watches a variable newly
// bound by this unification (§4.2, §4.3). If any wake-up fails, the whole
// unify fails.
func Unify(u, v Term, s *Subst) *Subst {
	result := baseUnify(u, v, s)
	if IsFailure(result) {
		return failed
	}
	newlyBound := NewlyBoundVars(s, result)
	if len(newlyBound) == 0 {
		return result
	}
	return wakeUpSuspends(result, newlyBound)
}

// wakeUpSuspends runs every suspend whose watch set intersects newlyBound,
// threading the Subst through each resumed checker in list order (a fixed,
// deterministic order, per §4.3's implementation latitude). A checker that
// fails aborts the whole wake-up pass with failure. A checker that
// succeeds updates the running Subst and drops its own suspend from the
// list. A checker that defers has its watch set pruned to currently-unbound
// vars and is kept.
func wakeUpSuspends(s *Subst, newlyBound []VarID) *Subst {
	pending := s.Suspends()
	if len(pending) == 0 {
		return s
	}

	cur := s
	kept := make([]*Suspend, 0, len(pending))
	for _, sp := range pending {
		if !sp.isWatching(newlyBound) {
			kept = append(kept, sp)
			continue
		}
		vals := make([]Term, len(sp.Vars))
		for i, t := range sp.Vars {
			vals[i] = Walk(t, cur)
		}
		next, result := sp.Checker(vals, cur)
		switch result {
		case Failed:
			return failed
		case Succeeded:
			if next != nil {
				cur = next
			}
		case Deferred:
			resumed := *sp
			if next != nil {
				cur = next
			}
			resumed.Watch = watchedUnbound(sp.Vars, cur)
			kept = append(kept, &resumed)
		}
	}
	return cur.WithSuspends(kept)
}
