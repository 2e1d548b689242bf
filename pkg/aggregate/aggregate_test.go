package aggregate

import (
	"context"
	"testing"

	"github.com/gitrdm/logikflow/pkg/goal"
	"github.com/gitrdm/logikflow/pkg/term"
	"github.com/stretchr/testify/require"
)

func intAtom(n int) term.Term { return term.NewAtom(n) }

func membero(x term.Term, items []term.Term) Goal {
	branches := make([]goal.Goal, len(items))
	for i, it := range items {
		branches[i] = goal.Eq(x, it)
	}
	return goal.Or(branches...)
}

func TestCollectStreamoRoundTrip(t *testing.T) {
	term.ResetCounterForTests()
	v := term.NewVar("v")
	out := term.NewVar("out")

	g := goal.And(membero(v, []term.Term{intAtom(1), intAtom(2), intAtom(3)}), CollectStreamo(v, out, true))
	res := goal.Run(context.Background(), g, goal.RunOptions{})
	require.True(t, res.Completed)
	require.Len(t, res.Results, 1)

	listed := term.Walk(out, res.Results[0])
	got := flattenInts(t, listed)
	require.ElementsMatch(t, []int{1, 2, 3}, got)
}

func flattenInts(t *testing.T, lst term.Term) []int {
	t.Helper()
	var out []int
	cur := lst
	for {
		if term.IsNil(cur) {
			return out
		}
		c, ok := cur.(term.Cons)
		require.True(t, ok)
		a, ok := c.Head.(term.Atom)
		require.True(t, ok)
		out = append(out, a.Value.(int))
		cur = c.Tail
	}
}

func TestGroupByCountStreamoDrop(t *testing.T) {
	term.ResetCounterForTests()
	key := term.NewVar("key")
	val := term.NewVar("val")
	out := term.NewVar("out")

	rows := goal.Or(
		goal.And(goal.Eq(key, term.NewAtom("a")), goal.Eq(val, term.NewAtom(1))),
		goal.And(goal.Eq(key, term.NewAtom("a")), goal.Eq(val, term.NewAtom(2))),
		goal.And(goal.Eq(key, term.NewAtom("b")), goal.Eq(val, term.NewAtom(3))),
	)
	g := goal.And(rows, GroupByStreamo(key, val, out, ModeCount, true))
	res := goal.Run(context.Background(), g, goal.RunOptions{})
	require.True(t, res.Completed)
	require.Len(t, res.Results, 2)

	counts := map[string]int{}
	for _, s := range res.Results {
		k := term.Walk(key, s).(term.Atom).Value.(string)
		c := term.Walk(out, s).(term.Atom).Value.(int)
		counts[k] = c
	}
	require.Equal(t, map[string]int{"a": 2, "b": 1}, counts)
}

func TestMaxoTiesAllEmit(t *testing.T) {
	term.ResetCounterForTests()
	v := term.NewVar("v")
	g := goal.And(membero(v, []term.Term{intAtom(1), intAtom(5), intAtom(5), intAtom(3)}), Maxo(v))
	res := goal.Run(context.Background(), g, goal.RunOptions{})
	require.Len(t, res.Results, 2)
	for _, s := range res.Results {
		require.Equal(t, 5, term.Walk(v, s).(term.Atom).Value.(int))
	}
}

func TestCollectoMatchesCollectStreamo(t *testing.T) {
	term.ResetCounterForTests()
	v := term.NewVar("v")
	xs := term.NewVar("xs")
	sub := membero(v, []term.Term{intAtom(1), intAtom(2), intAtom(3)})
	g := Collecto(v, sub, xs)
	res := goal.Run(context.Background(), g, goal.RunOptions{})
	require.Len(t, res.Results, 1)
	require.ElementsMatch(t, []int{1, 2, 3}, flattenInts(t, term.Walk(xs, res.Results[0])))
}

func TestCountoCountsSolutions(t *testing.T) {
	term.ResetCounterForTests()
	v := term.NewVar("v")
	n := term.NewVar("n")
	g := Counto(v, membero(v, []term.Term{intAtom(1), intAtom(2), intAtom(3)}), n)
	res := goal.Run(context.Background(), g, goal.RunOptions{})
	require.Len(t, res.Results, 1)
	require.Equal(t, 3, term.Walk(n, res.Results[0]).(term.Atom).Value.(int))
}
