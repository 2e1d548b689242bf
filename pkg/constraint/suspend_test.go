package constraint

import (
	"context"
	"testing"

	"github.com/gitrdm/logikflow/pkg/stream"
	"github.com/gitrdm/logikflow/pkg/term"
	"github.com/stretchr/testify/require"
)

func runOne(t *testing.T, g Goal, s *Subst) []*Subst {
	t.Helper()
	out := g(context.Background(), stream.Of(s))
	var results []*Subst
	done := make(chan struct{})
	out.Subscribe(context.Background(), stream.Observer[*Subst]{
		Next:     func(v *Subst) { results = append(results, v) },
		Complete: func() { close(done) },
		Error:    func(error) { close(done) },
	})
	<-done
	return results
}

func TestNeqSuspendsThenDecides(t *testing.T) {
	term.ResetCounterForTests()
	x := term.NewVar("x")
	y := term.NewVar("y")

	results := runOne(t, Neq(x, y), term.Empty())
	require.Len(t, results, 1)
	require.NotEmpty(t, results[0].Suspends())

	bound := term.Unify(x, term.NewAtom(1), results[0])
	bound = term.Unify(y, term.NewAtom(2), bound)
	require.False(t, term.IsFailure(bound))
	require.Empty(t, bound.Suspends())
}

func TestNeqFailsWhenBoundEqual(t *testing.T) {
	term.ResetCounterForTests()
	x := term.NewVar("x")
	y := term.NewVar("y")
	s0 := term.Unify(x, term.NewAtom(1), term.Empty())
	s0 = term.Unify(y, term.NewAtom(1), s0)

	results := runOne(t, Neq(x, y), s0)
	require.Empty(t, results)
}

func TestNeqSameVarFailsImmediately(t *testing.T) {
	term.ResetCounterForTests()
	x := term.NewVar("x")
	results := runOne(t, Neq(x, x), term.Empty())
	require.Empty(t, results)
}

func TestAbsentoDetectsOccurrence(t *testing.T) {
	term.ResetCounterForTests()
	results := runOne(t, Absento(term.NewAtom("bad"), term.List(term.NewAtom("good"), term.NewAtom("bad"))), term.Empty())
	require.Empty(t, results)
}

func TestAbsentoSucceedsWhenGroundAndAbsent(t *testing.T) {
	term.ResetCounterForTests()
	results := runOne(t, Absento(term.NewAtom("bad"), term.List(term.NewAtom("good"))), term.Empty())
	require.Len(t, results, 1)
}
