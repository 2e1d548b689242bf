package relation

import (
	"context"

	"github.com/gitrdm/logikflow/pkg/stream"
	"github.com/gitrdm/logikflow/pkg/term"
)

// Lift turns a pure Go function into a goal relating its arguments to its
// result: once every argument is ground, fn is called and the result is
// unified against out. Lift never runs fn until all of args is ground, and
// never suspends waiting for them to become so — a lifted goal that is
// handed unbound arguments simply fails that branch, since fn has no
// relational meaning to offer in the other direction.
func Lift(fn func(args []interface{}) (interface{}, error), args []term.Term, out term.Term) Goal {
	return func(ctx context.Context, in Stream) Stream {
		return perElement(in, func(s *Subst) Stream {
			vals := make([]interface{}, len(args))
			for i, a := range args {
				w := term.Walk(a, s)
				atom, ok := w.(term.Atom)
				if !ok {
					return emptyOf()
				}
				vals[i] = atom.Value
			}
			result, err := fn(vals)
			if err != nil {
				return emptyOf()
			}
			unified := term.Unify(out, term.NewAtom(result), s)
			if term.IsFailure(unified) {
				return emptyOf()
			}
			return oneOf(unified)
		})
	}
}

// Mapping names, for each field of an object pattern, a sub-pattern to
// match that field's value against: a *term.Var unifies directly with the
// field; a term.Record or term.Seq recurses structurally, field by field or
// element by element; anything else (an Atom) requires equality.
type Mapping = map[string]term.Term

// Extract walks obj and mapping together: for each (key, subPattern) pair,
// obj's field named key is matched against subPattern per matchPattern's
// rules. A failure anywhere (obj isn't a Record, a field is missing, a
// literal doesn't match, a nested shape doesn't line up) drops the Subst.
func Extract(obj term.Term, mapping Mapping) Goal {
	return func(ctx context.Context, in Stream) Stream {
		return perElement(in, func(s *Subst) Stream {
			result, ok := matchObject(obj, mapping, s)
			if !ok {
				return emptyOf()
			}
			return oneOf(result)
		})
	}
}

func matchObject(obj term.Term, mapping Mapping, s *term.Subst) (*term.Subst, bool) {
	rec, ok := term.Walk(obj, s).(term.Record)
	if !ok {
		return nil, false
	}
	cur := s
	for key, subPattern := range mapping {
		fieldVal, ok := rec.Fields[key]
		if !ok {
			return nil, false
		}
		next, ok := matchPattern(subPattern, fieldVal, cur)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// matchPattern matches one sub-pattern against one value term, recursing
// into Record/Seq shapes and otherwise delegating to unification (which
// covers both Var-binds-to-value and literal-requires-equality).
func matchPattern(pattern, value term.Term, s *term.Subst) (*term.Subst, bool) {
	switch p := pattern.(type) {
	case term.Record:
		return matchObject(value, p.Fields, s)
	case term.Seq:
		w, ok := term.Walk(value, s).(term.Seq)
		if !ok || len(w.Items) != len(p.Items) {
			return nil, false
		}
		cur := s
		for i, subPattern := range p.Items {
			next, ok := matchPattern(subPattern, w.Items[i], cur)
			if !ok {
				return nil, false
			}
			cur = next
		}
		return cur, true
	default:
		result := term.Unify(pattern, value, s)
		if term.IsFailure(result) {
			return nil, false
		}
		return result, true
	}
}

// ExtractEach iterates a ground Nil/Cons- or Seq-encoded list of Records,
// matching mapping against each element independently: one emission per
// element that fully unifies, not one combined emission for the whole
// array. Fails the whole branch only if arr itself isn't ground enough to
// enumerate; individual elements that don't match are simply skipped.
func ExtractEach(arr term.Term, mapping Mapping) Goal {
	return func(ctx context.Context, in Stream) Stream {
		return perElement(in, func(s *Subst) Stream {
			items, ok := collectGroundList(arr, s)
			if !ok {
				return emptyOf()
			}
			var results []*Subst
			for _, it := range items {
				if result, ok := matchObject(it, mapping, s); ok {
					results = append(results, result)
				}
			}
			return stream.From(results)
		})
	}
}
