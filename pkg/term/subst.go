package term

// Subst is an immutable, persistent substitution from Var ids to Terms,
// plus the metadata every emitted Subst carries alongside its bindings:
// the suspended-constraint list (§4.3) and an opaque group-context
// reference (§4.9, populated by package group). Every mutating operation
// returns a new Subst; nothing in this package ever mutates a Subst that
// has already been handed to a caller.
type Subst struct {
	bindings map[VarID]Term
	suspends []*Suspend
	groupRef any
}

// Empty is the substitution seeded into a query pipeline at its start.
func Empty() *Subst {
	return &Subst{}
}

// Lookup returns the term directly bound to v, or nil if v is unbound.
func (s *Subst) Lookup(id VarID) (Term, bool) {
	if s == nil || s.bindings == nil {
		return nil, false
	}
	t, ok := s.bindings[id]
	return t, ok
}

// Len reports the number of bindings (not counting suspends/group metadata).
func (s *Subst) Len() int {
	if s == nil {
		return 0
	}
	return len(s.bindings)
}

// Suspends returns the substitution's current suspended-constraint list.
// Callers must not mutate the returned slice.
func (s *Subst) Suspends() []*Suspend {
	if s == nil {
		return nil
	}
	return s.suspends
}

// GroupRef returns the opaque group-context value attached by package group,
// or nil if none has been attached yet.
func (s *Subst) GroupRef() any {
	if s == nil {
		return nil
	}
	return s.groupRef
}

// WithGroupRef returns a copy of s carrying the given group-context value.
func (s *Subst) WithGroupRef(ref any) *Subst {
	cp := s.shallowCopy()
	cp.groupRef = ref
	return cp
}

// WithSuspends returns a copy of s with its suspended-constraint list
// replaced wholesale. Used by the wake-up pass (unify.go) to install the
// post-wake-up suspend list.
func (s *Subst) WithSuspends(suspends []*Suspend) *Subst {
	cp := s.shallowCopy()
	cp.suspends = suspends
	return cp
}

// AddSuspend returns a copy of s with one additional suspended constraint.
func (s *Subst) AddSuspend(sp *Suspend) *Subst {
	cp := s.shallowCopy()
	cp.suspends = append(append([]*Suspend(nil), s.Suspends()...), sp)
	return cp
}

func (s *Subst) shallowCopy() *Subst {
	if s == nil {
		return &Subst{}
	}
	return &Subst{bindings: s.bindings, suspends: s.suspends, groupRef: s.groupRef}
}

// extend returns a new Subst binding v to val, after an occurs-check that
// walks val through s. Returns (nil, false) if v occurs within val (the
// occurs-check fails) — the caller treats that as unification failure.
func (s *Subst) extend(v *Var, val Term) (*Subst, bool) {
	walked := Walk(val, s)
	if occursIn(v, walked, s) {
		return nil, false
	}
	newBindings := make(map[VarID]Term, len(s.bindingsOrEmpty())+1)
	for k, vv := range s.bindingsOrEmpty() {
		newBindings[k] = vv
	}
	newBindings[v.ID] = val
	cp := s.shallowCopy()
	cp.bindings = newBindings
	return cp, true
}

func (s *Subst) bindingsOrEmpty() map[VarID]Term {
	if s == nil {
		return nil
	}
	return s.bindings
}

// occursIn reports whether v appears anywhere within the (already-walked)
// structure of t. Composite children are walked lazily as they're visited so
// the check follows binding chains inside lists/sequences/records too.
func occursIn(v *Var, t Term, s *Subst) bool {
	switch x := t.(type) {
	case *Var:
		return x.ID == v.ID
	case Cons:
		return occursIn(v, Walk(x.Head, s), s) || occursIn(v, Walk(x.Tail, s), s)
	case Seq:
		for _, it := range x.Items {
			if occursIn(v, Walk(it, s), s) {
				return true
			}
		}
		return false
	case Record:
		for _, it := range x.Fields {
			if occursIn(v, Walk(it, s), s) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Walk resolves u through s: it iteratively chases variable bindings (never
// recursing on a var chain, so long chains can't blow the stack) and, once
// it lands on a non-var term, structurally walks composite children so the
// returned term is fully resolved at every level.
func Walk(u Term, s *Subst) Term {
	cur := u
	for {
		v, ok := cur.(*Var)
		if !ok {
			break
		}
		bound, found := s.Lookup(v.ID)
		if !found {
			break
		}
		cur = bound
	}

	switch x := cur.(type) {
	case Cons:
		return Cons{Head: Walk(x.Head, s), Tail: Walk(x.Tail, s)}
	case Seq:
		items := make([]Term, len(x.Items))
		for i, it := range x.Items {
			items[i] = Walk(it, s)
		}
		return Seq{Items: items}
	case Record:
		fields := make(map[string]Term, len(x.Fields))
		for k, it := range x.Fields {
			fields[k] = Walk(it, s)
		}
		return Record{Fields: fields}
	default:
		return cur
	}
}

// NewlyBoundVars returns the Var ids present in next's bindings but not in
// prev's — the set unify must check against watched suspends to decide
// which to wake.
func NewlyBoundVars(prev, next *Subst) []VarID {
	var out []VarID
	nb := next.bindingsOrEmpty()
	for id := range nb {
		if _, existed := prev.Lookup(id); !existed {
			out = append(out, id)
		}
	}
	return out
}
