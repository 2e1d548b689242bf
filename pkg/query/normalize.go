package query

import "github.com/gitrdm/logikflow/pkg/term"

// Record is one projected query result: attribute name to its deep-
// normalized value.
type Record map[string]interface{}

// normalize walks t to a fixpoint and converts it to a plain Go value: a
// Nil/Cons spine or a Seq both become []interface{}; a Record becomes
// map[string]interface{} keyed the same way; an Atom unwraps to its raw
// value; an unbound Var normalizes to its printable name, since a query
// result can legitimately still contain free variables (e.g. `select('*')`
// on a conjunction that never constrained every proxy attribute).
//
// This is the single normalization point spec §9's Open Question about
// list-encoding inconsistency resolves to: two logically equal lists built
// with different encodings normalize to the same []interface{} here,
// regardless of which encoding a relation happened to emit.
func normalize(t term.Term, s *term.Subst) interface{} {
	w := term.Walk(t, s)
	if term.IsNil(w) {
		return []interface{}{}
	}
	switch x := w.(type) {
	case *term.Var:
		return x.String()
	case term.Atom:
		return x.Value
	case term.Cons:
		items := []interface{}{normalize(x.Head, s)}
		tail := normalize(x.Tail, s)
		if tailSlice, ok := tail.([]interface{}); ok {
			return append(items, tailSlice...)
		}
		// improper list: surface the dangling tail as a final element.
		return append(items, tail)
	case term.Seq:
		items := make([]interface{}, len(x.Items))
		for i, it := range x.Items {
			items[i] = normalize(it, s)
		}
		return items
	case term.Record:
		out := make(map[string]interface{}, len(x.Fields))
		for k, v := range x.Fields {
			out[k] = normalize(v, s)
		}
		return out
	default:
		return w
	}
}
