package relation

import (
	"context"
	"testing"

	"github.com/gitrdm/logikflow/pkg/goal"
	"github.com/gitrdm/logikflow/pkg/term"
	"github.com/stretchr/testify/require"
)

func atom(n int) term.Term { return term.NewAtom(n) }

func run(t *testing.T, g Goal) goal.Result {
	t.Helper()
	return goal.Run(context.Background(), g, goal.RunOptions{})
}

func TestMemberoEnumeratesEachElement(t *testing.T) {
	term.ResetCounterForTests()
	x := term.NewVar("x")
	list := term.List(atom(1), atom(2), atom(3))

	res := run(t, Membero(x, list))
	require.True(t, res.Completed)
	var got []int
	for _, s := range res.Results {
		got = append(got, term.Walk(x, s).(term.Atom).Value.(int))
	}
	require.ElementsMatch(t, []int{1, 2, 3}, got)
}

func TestMemberoOverSeqEncoding(t *testing.T) {
	term.ResetCounterForTests()
	x := term.NewVar("x")
	list := term.Seq{Items: []term.Term{atom(1), atom(2)}}

	res := run(t, Membero(x, list))
	require.Len(t, res.Results, 2)
}

func TestAppendoForwardConcatenates(t *testing.T) {
	term.ResetCounterForTests()
	zs := term.NewVar("zs")
	g := Appendo(term.List(atom(1), atom(2)), term.List(atom(3)), zs)

	res := run(t, g)
	require.Len(t, res.Results, 1)
	got := flattenAtoms(t, term.Walk(zs, res.Results[0]))
	require.Equal(t, []int{1, 2, 3}, got)
}

func TestAppendoBackwardSplitsEveryWay(t *testing.T) {
	term.ResetCounterForTests()
	xs := term.NewVar("xs")
	ys := term.NewVar("ys")
	g := Appendo(xs, ys, term.List(atom(1), atom(2)))

	res := run(t, g)
	require.Len(t, res.Results, 3)
}

func flattenAtoms(t *testing.T, lst term.Term) []int {
	t.Helper()
	var out []int
	cur := lst
	for {
		if term.IsNil(cur) {
			return out
		}
		c, ok := cur.(term.Cons)
		require.True(t, ok)
		out = append(out, c.Head.(term.Atom).Value.(int))
		cur = c.Tail
	}
}

func TestLengthoComputesLength(t *testing.T) {
	term.ResetCounterForTests()
	n := term.NewVar("n")
	res := run(t, Lengtho(term.List(atom(1), atom(2), atom(3)), n))
	require.Len(t, res.Results, 1)
	require.Equal(t, 3, term.Walk(n, res.Results[0]).(term.Atom).Value.(int))
}

func TestFirstoAndResto(t *testing.T) {
	term.ResetCounterForTests()
	h := term.NewVar("h")
	rest := term.NewVar("rest")
	list := term.List(atom(1), atom(2), atom(3))

	res := run(t, goal.And(Firsto(list, h), Resto(list, rest)))
	require.Len(t, res.Results, 1)
	require.Equal(t, 1, term.Walk(h, res.Results[0]).(term.Atom).Value.(int))
	require.Equal(t, []int{2, 3}, flattenAtoms(t, term.Walk(rest, res.Results[0])))
}

func TestRemoveFirstoRemovesOneOccurrence(t *testing.T) {
	term.ResetCounterForTests()
	out := term.NewVar("out")
	res := run(t, RemoveFirsto(atom(2), term.List(atom(1), atom(2), atom(2)), out))
	require.Len(t, res.Results, 1)
	require.Equal(t, []int{1, 2}, flattenAtoms(t, term.Walk(out, res.Results[0])))
}

func TestAllDistinctoFailsOnDuplicate(t *testing.T) {
	term.ResetCounterForTests()
	res := run(t, AllDistincto(term.List(atom(1), atom(2), atom(1))))
	require.Empty(t, res.Results)
}

func TestAllDistinctoSucceedsWhenUnique(t *testing.T) {
	term.ResetCounterForTests()
	res := run(t, AllDistincto(term.List(atom(1), atom(2), atom(3))))
	require.Len(t, res.Results, 1)
}

func TestPermuteoEnumeratesAllOrders(t *testing.T) {
	term.ResetCounterForTests()
	perm := term.NewVar("perm")
	res := run(t, Permuteo(term.List(atom(1), atom(2), atom(3)), perm))
	require.Len(t, res.Results, 6)
}

func TestPlusoForwardAndBothInverses(t *testing.T) {
	term.ResetCounterForTests()
	c := term.NewVar("c")
	res := run(t, Pluso(atom(2), atom(3), c))
	require.Len(t, res.Results, 1)
	require.Equal(t, 5, term.Walk(c, res.Results[0]).(term.Atom).Value.(int))

	term.ResetCounterForTests()
	b := term.NewVar("b")
	res = run(t, Pluso(atom(2), b, atom(5)))
	require.Len(t, res.Results, 1)
	require.Equal(t, 3, term.Walk(b, res.Results[0]).(term.Atom).Value.(int))

	term.ResetCounterForTests()
	a := term.NewVar("a")
	res = run(t, Pluso(a, atom(3), atom(5)))
	require.Len(t, res.Results, 1)
	require.Equal(t, 2, term.Walk(a, res.Results[0]).(term.Atom).Value.(int))
}

func TestMultoDivideboyoRoundTrip(t *testing.T) {
	term.ResetCounterForTests()
	c := term.NewVar("c")
	res := run(t, Multo(atom(4), atom(5), c))
	require.Len(t, res.Results, 1)
	require.Equal(t, 20, term.Walk(c, res.Results[0]).(term.Atom).Value.(int))

	term.ResetCounterForTests()
	q := term.NewVar("q")
	res = run(t, Dividebyo(atom(20), atom(5), q))
	require.Len(t, res.Results, 1)
	require.Equal(t, 4, term.Walk(q, res.Results[0]).(term.Atom).Value.(int))
}

func TestDivideboyoFailsOnZeroDivisor(t *testing.T) {
	term.ResetCounterForTests()
	c := term.NewVar("c")
	res := run(t, Dividebyo(atom(4), atom(0), c))
	require.Empty(t, res.Results)
}

func TestGtoSuspendsThenDecides(t *testing.T) {
	term.ResetCounterForTests()
	a := term.NewVar("a")
	g := goal.And(Gto(a, atom(3)), goal.Eq(a, atom(5)))
	res := run(t, g)
	require.Len(t, res.Results, 1)

	term.ResetCounterForTests()
	a2 := term.NewVar("a2")
	g2 := goal.And(Gto(a2, atom(3)), goal.Eq(a2, atom(1)))
	res2 := run(t, g2)
	require.Empty(t, res2.Results)
}

func TestNeqoFailsOnEqualGroundValues(t *testing.T) {
	term.ResetCounterForTests()
	res := run(t, Neqo(atom(1), atom(1)))
	require.Empty(t, res.Results)
}

func TestExtractMatchesNestedPattern(t *testing.T) {
	term.ResetCounterForTests()
	inner := term.NewRecord(map[string]term.Term{"city": term.NewAtom("nyc")})
	outer := term.NewRecord(map[string]term.Term{"address": inner, "age": term.NewAtom(30)})
	city := term.NewVar("city")

	mapping := Mapping{
		"address": term.NewRecord(map[string]term.Term{"city": city}),
		"age":     term.NewAtom(30),
	}
	res := run(t, Extract(outer, mapping))
	require.Len(t, res.Results, 1)
	require.Equal(t, "nyc", term.Walk(city, res.Results[0]).(term.Atom).Value.(string))
}

func TestExtractFailsOnLiteralMismatch(t *testing.T) {
	term.ResetCounterForTests()
	obj := term.NewRecord(map[string]term.Term{"age": term.NewAtom(30)})
	res := run(t, Extract(obj, Mapping{"age": term.NewAtom(31)}))
	require.Empty(t, res.Results)
}

func TestExtractEachEmitsOnePerMatchingElement(t *testing.T) {
	term.ResetCounterForTests()
	a := term.NewRecord(map[string]term.Term{"n": term.NewAtom(1), "kind": term.NewAtom("even")})
	b := term.NewRecord(map[string]term.Term{"n": term.NewAtom(2), "kind": term.NewAtom("even")})
	c := term.NewRecord(map[string]term.Term{"n": term.NewAtom(3), "kind": term.NewAtom("odd")})
	n := term.NewVar("n")

	mapping := Mapping{"n": n, "kind": term.NewAtom("even")}
	res := run(t, ExtractEach(term.List(a, b, c), mapping))
	require.Len(t, res.Results, 2)
	var got []int
	for _, s := range res.Results {
		got = append(got, term.Walk(n, s).(term.Atom).Value.(int))
	}
	require.ElementsMatch(t, []int{1, 2}, got)
}

func TestLiftCallsPureFunctionOnceGround(t *testing.T) {
	term.ResetCounterForTests()
	out := term.NewVar("out")
	upper := func(args []interface{}) (interface{}, error) {
		return len(args[0].(string)), nil
	}
	res := run(t, Lift(upper, []term.Term{term.NewAtom("hello")}, out))
	require.Len(t, res.Results, 1)
	require.Equal(t, 5, term.Walk(out, res.Results[0]).(term.Atom).Value.(int))
}
