// Package group implements the per-Subst group metadata described in §4.9:
// a unique group id, a path of steps, and the conjunctive/full goal sets
// reachable through a composition wrapper. Core goals (package goal) only
// ever propagate this metadata; they never read or branch on it themselves.
// It exists purely so external, black-box relation goals (§6) can detect
// their peers within the same conjunctive/disjunctive grouping and trigger
// cross-goal optimizations the core is deliberately agnostic to.
package group

import (
	"sync/atomic"

	"github.com/gitrdm/logikflow/pkg/term"
	"github.com/google/uuid"
)

// idCounter backs GroupID allocation: identity is a cheap monotone integer
// for fast comparisons, not a uuid.
var idCounter uint64

// runMarker is a process-run-scoped tag, stamped once from a uuid when the
// package is initialised. Nothing in this package reads it; Context has no
// debug-string method that includes it.
var runMarker = uuid.New().String()[:8]

// GoalRef names a goal for group-membership introspection. It is a plain
// label, not a pointer identity, so relation goals can match on it without
// holding a reference to the goal value itself.
type GoalRef struct {
	Kind  string // "eq", "and", "or", "membero", ...
	Label string // optional caller-supplied disambiguator
}

// Step is one hop in a Context's path: which wrapper produced it and the
// index of the branch taken, for disjunctive wrappers.
type Step struct {
	Kind        string
	BranchIndex int
}

// Context is the group metadata attached to an emitted Subst.
type Context struct {
	GroupID   uint64
	Path      []Step
	ConjGoals []GoalRef
	AllGoals  []GoalRef
}

// Root is the empty group context a query starts with.
func Root() *Context {
	return &Context{}
}

func nextID() uint64 { return atomic.AddUint64(&idCounter, 1) }

// Enter returns a new Context describing entry into a wrapper of the given
// kind, with conj/all goal sets merged in. branchIndex is -1 for
// non-branching wrappers (and, primitives) and the clause index for
// disjunctive branches.
func (c *Context) Enter(kind string, branchIndex int, conjGoals, allGoals []GoalRef) *Context {
	if c == nil {
		c = Root()
	}
	path := append(append([]Step(nil), c.Path...), Step{Kind: kind, BranchIndex: branchIndex})
	return &Context{
		GroupID:   nextID(),
		Path:      path,
		ConjGoals: mergeRefs(c.ConjGoals, conjGoals),
		AllGoals:  mergeRefs(c.AllGoals, allGoals),
	}
}

func mergeRefs(a, b []GoalRef) []GoalRef {
	out := make([]GoalRef, 0, len(a)+len(b))
	seen := map[GoalRef]bool{}
	for _, r := range append(append([]GoalRef(nil), a...), b...) {
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	return out
}

// Of reads the Context attached to s, defaulting to Root if none yet.
func Of(s *term.Subst) *Context {
	if s == nil {
		return Root()
	}
	if c, ok := s.GroupRef().(*Context); ok && c != nil {
		return c
	}
	return Root()
}

// Attach returns s extended with the given Context.
func Attach(s *term.Subst, c *Context) *term.Subst {
	return s.WithGroupRef(c)
}

// Peers returns the other goal refs in the same conjunctive group as self,
// i.e. ConjGoals minus self's own Kind/Label pair, used by external
// relations that want to see what else runs alongside them.
func (c *Context) Peers(self GoalRef) []GoalRef {
	out := make([]GoalRef, 0, len(c.ConjGoals))
	for _, r := range c.ConjGoals {
		if r != self {
			out = append(out, r)
		}
	}
	return out
}
