package query

import (
	"context"

	"github.com/gitrdm/logikflow/pkg/goal"
	"github.com/gitrdm/logikflow/pkg/stream"
	"github.com/gitrdm/logikflow/pkg/term"
)

// takeLimit caps a goal's output stream at n results and cancels the
// upstream subscription once the cap is reached (§5: "take(n) ... MUST
// cancel upstream when the cap is reached").
func takeLimit(n int) goal.Goal {
	return func(ctx context.Context, in goal.Stream) goal.Stream {
		return stream.Take(in, n)
	}
}

// Iterator supports the façade's async iteration mode: pulling one Record
// at a time and propagating cancellation upstream if the consumer stops
// early (§4.8).
type Iterator struct {
	ctx    context.Context
	cancel context.CancelFunc
	b      *Builder
	ch     chan iterItem
}

type iterItem struct {
	s   *term.Subst
	err error
}

// Iterate starts the goal chain against a background subscription and
// returns an Iterator the caller pulls from. Cancelling the returned
// context, or calling Iterator.Close, tears the subscription down
// immediately.
func (b *Builder) Iterate(ctx context.Context) *Iterator {
	ictx, cancel := context.WithCancel(ctx)
	it := &Iterator{ctx: ictx, cancel: cancel, b: b, ch: make(chan iterItem)}

	g := b.goal()
	if b.timeout > 0 {
		g = goal.Timeout(g, b.timeout)
	}
	if b.limit > 0 {
		g = goal.And(g, takeLimit(b.limit))
	}
	out := g(ictx, stream.Of(term.Empty()))
	go out.Subscribe(ictx, stream.Observer[*term.Subst]{
		Next: func(s *term.Subst) {
			select {
			case it.ch <- iterItem{s: s}:
			case <-ictx.Done():
			}
		},
		Error: func(err error) {
			select {
			case it.ch <- iterItem{err: err}:
			case <-ictx.Done():
			}
			close(it.ch)
		},
		Complete: func() { close(it.ch) },
	})
	return it
}

// Next blocks for the next Record. ok is false once the stream has
// completed (or been cancelled) with no error; err is non-nil on a terminal
// stream error.
func (it *Iterator) Next() (rec Record, ok bool, err error) {
	if it.ctx.Err() != nil {
		return nil, false, nil
	}
	select {
	case item, open := <-it.ch:
		if !open {
			return nil, false, nil
		}
		if item.err != nil {
			return nil, false, item.err
		}
		rec, err = it.b.project(item.s)
		if err != nil {
			return nil, false, err
		}
		return rec, true, nil
	case <-it.ctx.Done():
		return nil, false, nil
	}
}

// Close cancels the subscription driving this iterator, unsubscribing
// upstream immediately — the hook a consumer that "breaks the loop early"
// is expected to call (§4.8).
func (it *Iterator) Close() {
	it.cancel()
}
