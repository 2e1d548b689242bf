// Package aggregate implements the stream-level and subgoal aggregation
// operators of §4.5/§4.6: folds, grouping, sorting, and extrema over the
// whole upstream, plus per-Subst subgoal collection (Subquery and its
// specializations).
//
// Grounded in the teacher's sum.go/count.go/minmax.go (the same
// grounded-before-emitting shape: buffer the whole stream, then decide),
// generalized onto term.Subst/goal.Goal. Grouping and dedup-by-canonical-
// form key plain Go maps by CanonicalKey; github.com/samber/lo's Map
// collects per-group and per-subgoal values (grounded in
// other_examples/samber-ro, which layers Rx-style operators directly on lo).
package aggregate

import (
	"encoding/json"
	"sort"

	"github.com/gitrdm/logikflow/pkg/term"
)

// canonicalValue converts a walked Term into a plain Go value whose JSON
// encoding is order-independent for Records (encoding/json always emits
// map[string]any keys sorted lexicographically) and order-preserving for
// lists/sequences, giving the "JSON-canonical-form" keying scheme §4.5
// specifies groups/dedup must agree with.
func canonicalValue(t term.Term, s *term.Subst) interface{} {
	w := term.Walk(t, s)
	switch x := w.(type) {
	case *term.Var:
		return map[string]interface{}{"$var": string(x.ID)}
	case term.Atom:
		return x.Value
	case term.Cons:
		items, tail := flattenList(x)
		out := make([]interface{}, 0, len(items)+1)
		for _, it := range items {
			out = append(out, canonicalValue(it, s))
		}
		if !term.IsNil(tail) {
			out = append(out, map[string]interface{}{"$tail": canonicalValue(tail, s)})
		}
		return out
	case term.Seq:
		out := make([]interface{}, len(x.Items))
		for i, it := range x.Items {
			out[i] = canonicalValue(it, s)
		}
		return out
	case term.Record:
		out := make(map[string]interface{}, len(x.Fields))
		for k, v := range x.Fields {
			out[k] = canonicalValue(v, s)
		}
		return out
	default:
		if term.IsNil(w) {
			return []interface{}{}
		}
		return nil
	}
}

func flattenList(c term.Cons) ([]term.Term, term.Term) {
	items := []term.Term{c.Head}
	cur := c.Tail
	for {
		if cc, ok := cur.(term.Cons); ok {
			items = append(items, cc.Head)
			cur = cc.Tail
			continue
		}
		return items, cur
	}
}

// CanonicalKey returns the canonical string form of a walked term used to
// key group partitions and dedup sets.
func CanonicalKey(t term.Term, s *term.Subst) string {
	b, err := json.Marshal(canonicalValue(t, s))
	if err != nil {
		// Host atoms that can't round-trip through JSON (functions,
		// channels) still need a deterministic key; fall back to the
		// term's String() form, which is always defined.
		return term.Walk(t, s).String()
	}
	return string(b)
}

// DedupByCanonical returns items with later duplicates (by CanonicalKey)
// removed, preserving first-seen order.
func DedupByCanonical(items []term.Term, s *term.Subst) []term.Term {
	seen := map[string]bool{}
	out := make([]term.Term, 0, len(items))
	for _, it := range items {
		k := CanonicalKey(it, s)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, it)
	}
	return out
}

// sortKeys returns the map's keys in sorted order, used anywhere a
// deterministic iteration over canonical groups is needed. Generic over the
// map's value slice type since callers group either term.Term values
// (GroupByo) or whole *term.Subst members (GroupByStreamo).
func sortKeys[V any](m map[string][]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
