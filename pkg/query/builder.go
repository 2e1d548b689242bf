// Package query implements the query façade (§4.8): a builder that
// accumulates goals against a shared Proxy of lazily-allocated logic
// variables, then executes them and projects each solution into a plain
// Record.
//
// Grounded in the teacher's example programs (cmd/example, examples/) which
// wire a handful of relations together and print results; generalized here
// into a reusable builder instead of one-off main() functions, with
// projection, limiting and timeout lifted from spec §4.8/§6.
package query

import (
	"context"
	"time"

	"github.com/gitrdm/logikflow/pkg/goal"
	"github.com/gitrdm/logikflow/pkg/term"
	"github.com/pkg/errors"
)

// ErrNoSelection is returned by Run/Iterate when the builder was never told
// what to project.
var ErrNoSelection = errors.New("query: no select() call configured")

type selectMode int

const (
	selectNone selectMode = iota
	selectAll
	selectFunc
	selectVar
)

// Builder accumulates goals and a projection, then drives them to
// completion (or streams them) against a single empty Subst.
type Builder struct {
	proxy      *Proxy
	goals      []goal.Goal
	limit      int
	timeout    time.Duration
	mode       selectMode
	projectFn  func(p *Proxy) map[string]term.Term
	projectVar term.Term
}

// New starts an empty query builder.
func New() *Builder {
	return &Builder{proxy: newProxy()}
}

// Proxy exposes the builder's logic-variable proxy directly, for callers
// that need to reference an attribute Var outside a Where/Select callback
// (e.g. to build a SelectVar projection after the fact).
func (b *Builder) Proxy() *Proxy { return b.proxy }

// Where accumulates one goal built from the builder's Proxy. Multiple Where
// calls conjoin (§4.8: "accumulate one or more goals").
func (b *Builder) Where(fn func(p *Proxy) goal.Goal) *Builder {
	b.goals = append(b.goals, fn(b.proxy))
	return b
}

// SelectAll projects every Var the Proxy has allocated by the time results
// are projected — select('*'). Each Where callback runs when Where is
// called, so SelectAll may come before or after the Where calls.
func (b *Builder) SelectAll() *Builder {
	b.mode = selectAll
	return b
}

// SelectFunc installs a caller-supplied projection of name -> term built
// from the Proxy — select(fn).
func (b *Builder) SelectFunc(fn func(p *Proxy) map[string]term.Term) *Builder {
	b.mode = selectFunc
	b.projectFn = fn
	return b
}

// SelectVar projects a single raw term — select(rawVar). Each result comes
// back as a Record with one key, "value".
func (b *Builder) SelectVar(v term.Term) *Builder {
	b.mode = selectVar
	b.projectVar = v
	return b
}

// Limit caps the number of results Run/Iterate will produce; n <= 0 means
// unbounded.
func (b *Builder) Limit(n int) *Builder {
	b.limit = n
	return b
}

// Timeout bounds how long Run/Iterate will wait for the goal chain to
// finish; zero means no deadline.
func (b *Builder) Timeout(d time.Duration) *Builder {
	b.timeout = d
	return b
}

func (b *Builder) goal() goal.Goal {
	return goal.And(b.goals...)
}

func (b *Builder) project(s *term.Subst) (Record, error) {
	switch b.mode {
	case selectAll:
		out := Record{}
		for name, v := range b.proxy.All() {
			out[name] = normalize(v, s)
		}
		return out, nil
	case selectFunc:
		fields := b.projectFn(b.proxy)
		out := Record{}
		for name, v := range fields {
			out[name] = normalize(v, s)
		}
		return out, nil
	case selectVar:
		return Record{"value": normalize(b.projectVar, s)}, nil
	default:
		return nil, ErrNoSelection
	}
}

// Result is Run's outcome: every projected Record, whether the goal chain
// completed naturally, and (if not) the terminal error.
type Result struct {
	Records   []Record
	Completed bool
	Err       error
}

// Run composes the accumulated goals under And, feeds a single empty Subst,
// drives the chain to completion, and projects every output into a Record
// (§4.8's execution recipe).
func (b *Builder) Run(ctx context.Context) Result {
	logger().Debug().Int("goals", len(b.goals)).Int("limit", b.limit).Msg("query run")
	r := goal.Run(ctx, b.goal(), goal.RunOptions{MaxResults: b.limit, Timeout: b.timeout})
	records := make([]Record, 0, len(r.Results))
	for _, s := range r.Results {
		rec, err := b.project(s)
		if err != nil {
			return Result{Err: err}
		}
		records = append(records, rec)
	}
	if r.Err != nil {
		logger().Debug().Err(r.Err).Msg("query run terminated with error")
	}
	return Result{Records: records, Completed: r.Completed, Err: r.Err}
}
