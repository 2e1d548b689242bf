package query

import (
	"sort"

	"github.com/gitrdm/logikflow/pkg/term"
)

// Proxy lazily allocates a logic Var per attribute name and memoizes it, so
// that two `.Where` callbacks referencing the same name by string see the
// identical Var and therefore get unified through the query rather than
// treated as unrelated fresh variables (§4.8).
type Proxy struct {
	vars map[string]*term.Var
}

func newProxy() *Proxy {
	return &Proxy{vars: map[string]*term.Var{}}
}

// Var returns the Var bound to name, allocating it on first access.
func (p *Proxy) Var(name string) *term.Var {
	if v, ok := p.vars[name]; ok {
		return v
	}
	v := term.NewVar(name)
	p.vars[name] = v
	return v
}

// Names returns every attribute name the proxy has allocated a Var for, in
// a stable (sorted) order.
func (p *Proxy) Names() []string {
	names := make([]string, 0, len(p.vars))
	for n := range p.vars {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// All returns the name->Var bindings backing select('*') and deep
// normalization.
func (p *Proxy) All() map[string]*term.Var {
	out := make(map[string]*term.Var, len(p.vars))
	for k, v := range p.vars {
		out[k] = v
	}
	return out
}
