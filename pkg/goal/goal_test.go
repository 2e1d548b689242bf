package goal

import (
	"context"
	"testing"
	"time"

	"github.com/gitrdm/logikflow/pkg/stream"
	"github.com/gitrdm/logikflow/pkg/term"
	"github.com/stretchr/testify/require"
)

func walkedInt(t *testing.T, tm term.Term, s *term.Subst) int {
	t.Helper()
	w := term.Walk(tm, s)
	a, ok := w.(term.Atom)
	require.True(t, ok, "expected atom, got %v", w)
	n, ok := a.Value.(int)
	require.True(t, ok, "expected int atom, got %v", a.Value)
	return n
}

func TestEqWalk(t *testing.T) {
	term.ResetCounterForTests()
	x := term.NewVar("x")
	res := Run(context.Background(), Eq(x, term.NewAtom(42)), RunOptions{})
	require.True(t, res.Completed)
	require.Len(t, res.Results, 1)
	require.Equal(t, 42, walkedInt(t, x, res.Results[0]))
}

func TestAndIdentity(t *testing.T) {
	term.ResetCounterForTests()
	x := term.NewVar("x")
	g := Eq(x, term.NewAtom(1))
	plain := Run(context.Background(), g, RunOptions{})
	wrapped := Run(context.Background(), And(g), RunOptions{})
	require.Equal(t, len(plain.Results), len(wrapped.Results))
	require.Equal(t, len(Run(context.Background(), And(), RunOptions{}).Results), 1)
}

func TestOrSymmetricSet(t *testing.T) {
	term.ResetCounterForTests()
	x := term.NewVar("x")
	g1 := Or(Eq(x, term.NewAtom(1)), Eq(x, term.NewAtom(2)))
	g2 := Or(Eq(x, term.NewAtom(2)), Eq(x, term.NewAtom(1)))
	r1 := Run(context.Background(), g1, RunOptions{})
	r2 := Run(context.Background(), g2, RunOptions{})

	vals1 := map[int]bool{}
	for _, s := range r1.Results {
		vals1[walkedInt(t, x, s)] = true
	}
	vals2 := map[int]bool{}
	for _, s := range r2.Results {
		vals2[walkedInt(t, x, s)] = true
	}
	require.Equal(t, vals1, vals2)
	require.Equal(t, map[int]bool{1: true, 2: true}, vals1)
}

func TestOrTakeOneYieldsExactlyOne(t *testing.T) {
	term.ResetCounterForTests()
	x := term.NewVar("x")
	g := Or(Eq(x, term.NewAtom(1)), Eq(x, term.NewAtom(2)))
	res := Run(context.Background(), g, RunOptions{MaxResults: 1})
	require.Len(t, res.Results, 1)
}

func TestOnceEmitsAtMostOnePerInput(t *testing.T) {
	term.ResetCounterForTests()
	x := term.NewVar("x")
	g := Once(Or(Eq(x, term.NewAtom(1)), Eq(x, term.NewAtom(2))))
	res := Run(context.Background(), g, RunOptions{})
	require.Len(t, res.Results, 1)
}

func TestNotWithoutSuspension(t *testing.T) {
	term.ResetCounterForTests()
	x := term.NewVar("x")
	g := And(Eq(x, term.NewAtom(5)), Not(Eq(x, term.NewAtom(10))))
	res := Run(context.Background(), g, RunOptions{})
	require.Len(t, res.Results, 1)
	require.Equal(t, 5, walkedInt(t, x, res.Results[0]))

	g2 := And(Eq(x, term.NewAtom(5)), Not(Eq(x, term.NewAtom(5))))
	res2 := Run(context.Background(), g2, RunOptions{})
	require.Empty(t, res2.Results)
}

func TestIfteCommitsToFirstBranch(t *testing.T) {
	term.ResetCounterForTests()
	x := term.NewVar("x")
	q := term.NewVar("q")
	cond := Or(Eq(x, term.NewAtom(1)), Eq(x, term.NewAtom(2)))
	g := Ifte(cond, Eq(q, term.NewAtom("then")), Eq(q, term.NewAtom("else")))
	res := Run(context.Background(), g, RunOptions{})
	require.NotEmpty(t, res.Results)
	for _, s := range res.Results {
		w := term.Walk(q, s)
		require.Equal(t, "then", w.(term.Atom).Value)
	}
}

func TestIfteElseRunsOnOriginal(t *testing.T) {
	term.ResetCounterForTests()
	q := term.NewVar("q")
	g := Ifte(Eq(term.NewAtom(1), term.NewAtom(2)), Eq(q, term.NewAtom("then")), Eq(q, term.NewAtom("else")))
	res := Run(context.Background(), g, RunOptions{})
	require.Len(t, res.Results, 1)
	require.Equal(t, "else", term.Walk(q, res.Results[0]).(term.Atom).Value)
}

func TestTimeoutSurfacesError(t *testing.T) {
	never := func(ctx context.Context, in Stream) Stream {
		return stream_never()
	}
	res := Run(context.Background(), never, RunOptions{Timeout: 10 * time.Millisecond})
	require.False(t, res.Completed)
	require.Error(t, res.Err)
}

// stream_never returns a Stream that never emits or completes until
// cancelled, used to exercise Timeout's cancellation path.
func stream_never() Stream {
	return stream.New(func(ctx context.Context, obs stream.Observer[*term.Subst]) {
		<-ctx.Done()
	})
}
