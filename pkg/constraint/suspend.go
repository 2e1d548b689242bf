// Package constraint implements the suspended-constraint mechanism (§4.3):
// goals whose final success/failure can't be decided until some of their
// arguments are ground defer themselves, attach a watcher to the
// substitution, and are re-invoked whenever a watched variable becomes
// bound. It is the mechanism CLP-style arithmetic (package relation) and
// reification build on.
//
// Grounded in the teacher's constraints.go/constraint_store.go
// (ConstraintResult: Satisfied/Violated/Pending, and the occurs-based
// Absento/Neq constraints), generalized onto term.Suspend/CheckResult
// (which already encode the same three-way outcome) and recast as goals
// over stream.Observable[*term.Subst] instead of eager ConstraintStore
// mutation.
package constraint

import (
	"context"

	"github.com/gitrdm/logikflow/pkg/goal"
	"github.com/gitrdm/logikflow/pkg/group"
	"github.com/gitrdm/logikflow/pkg/stream"
	"github.com/gitrdm/logikflow/pkg/term"
)

// Subst, Stream and Goal are aliases onto package goal's, so every
// Suspendable-built goal composes directly with And/Or/Conde without a
// conversion at the call site.
type Subst = term.Subst
type Stream = stream.Observable[*Subst]
type Goal = goal.Goal

var idCounter int

func nextSuspendID() string {
	idCounter++
	return term.NewVar().String() + "#suspend"
}

// Suspendable builds a goal that, for every incoming Subst: walks every term
// in vars, counts how many are ground (non-Var), and if the count is at
// least minGrounded invokes checker. Checker may report Succeeded (the
// returned Subst is emitted), Failed (the Subst is dropped), or Deferred
// (insufficient information — a Suspend is attached watching every
// currently-unbound var in vars, and the Subst is still emitted so the
// branch survives to be retried on the next bind).
func Suspendable(vars []term.Term, checker term.Checker, minGrounded int) Goal {
	return func(ctx context.Context, in Stream) Stream {
		return stream.New(func(ctx context.Context, obs stream.Observer[*Subst]) {
			in.Subscribe(ctx, stream.Observer[*Subst]{
				Next: func(s *Subst) {
					result := evalOrSuspend(s, vars, checker, minGrounded)
					if result == nil {
						return
					}
					obs.Next(result)
				},
				Error:    obs.Error,
				Complete: obs.Complete,
			})
		})
	}
}

func evalOrSuspend(s *Subst, vars []term.Term, checker term.Checker, minGrounded int) *Subst {
	walked := make([]term.Term, len(vars))
	grounded := 0
	for i, v := range vars {
		w := term.Walk(v, s)
		walked[i] = w
		if !term.IsVar(w) {
			grounded++
		}
	}

	if grounded >= minGrounded {
		next, result := checker(walked, s)
		switch result {
		case term.Succeeded:
			if next == nil {
				next = s
			}
			return withSuspendGroup(next)
		case term.Failed:
			return nil
		case term.Deferred:
			// fall through to suspension below, using next if the checker
			// already made partial progress before deciding to defer.
			if next != nil {
				s = next
			}
		}
	}

	sp := &term.Suspend{
		ID:      nextSuspendID(),
		Vars:    vars,
		Watch:   watchedUnbound(vars, s),
		Checker: checker,
	}
	return withSuspendGroup(s.AddSuspend(sp))
}

func watchedUnbound(vars []term.Term, s *Subst) map[term.VarID]struct{} {
	watch := map[term.VarID]struct{}{}
	for _, t := range vars {
		w := term.Walk(t, s)
		if v, ok := w.(*term.Var); ok {
			watch[v.ID] = struct{}{}
		}
	}
	return watch
}

func withSuspendGroup(s *Subst) *Subst {
	self := group.GoalRef{Kind: "suspend"}
	ctx := group.Of(s).Enter("suspend", -1, []group.GoalRef{self}, []group.GoalRef{self})
	return group.Attach(s, ctx)
}
