package goal

import (
	"context"
	"time"

	"github.com/gitrdm/logikflow/pkg/stream"
	"github.com/gitrdm/logikflow/pkg/term"
	"github.com/pkg/errors"
)

// ErrTimeout is returned/wrapped when a goal run is aborted by Timeout.
var ErrTimeout = errors.New("goal: timed out")

// Timeout wraps g: if it does not complete within d, the subscription is
// cancelled and an error surfaces on the output stream (§4.4, §7).
func Timeout(g Goal, d time.Duration) Goal {
	return func(ctx context.Context, in Stream) Stream {
		return stream.New(func(ctx context.Context, obs stream.Observer[*Subst]) {
			tctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()

			done := make(chan struct{})
			var sub *stream.Subscription
			sub = g(tctx, in).Subscribe(tctx, stream.Observer[*Subst]{
				Next:  obs.Next,
				Error: func(err error) { obs.Error(err); close(done) },
				Complete: func() {
					obs.Complete()
					close(done)
				},
			})

			select {
			case <-done:
			case <-tctx.Done():
				if tctx.Err() == context.DeadlineExceeded {
					sub.Unsubscribe()
					obs.Error(errors.Wrap(ErrTimeout, "goal.Timeout"))
				}
			}
		})
	}
}

// Result is what Run returns: the collected results, whether the goal
// completed naturally, and the terminal error if it did not (§4.4, §7).
type Result struct {
	Results   []*Subst
	Completed bool
	Err       error
}

// RunOptions configures Run.
type RunOptions struct {
	MaxResults int           // 0 means unlimited
	Timeout    time.Duration // 0 means no timeout
}

// Run drives g from a single empty Subst, collecting results (respecting
// MaxResults and an optional Timeout), and returns a tagged Result
// distinguishing natural completion from timeout/error (§4.4, §7).
func Run(ctx context.Context, g Goal, opts RunOptions) Result {
	applied := g
	if opts.Timeout > 0 {
		applied = Timeout(g, opts.Timeout)
	}

	out := applied(ctx, streamOf(term.Empty()))
	if opts.MaxResults > 0 {
		out = stream.Take(out, opts.MaxResults)
	}

	var res Result
	done := make(chan struct{})
	out.Subscribe(ctx, stream.Observer[*Subst]{
		Next: func(s *Subst) { res.Results = append(res.Results, s) },
		Error: func(err error) {
			res.Err = err
			res.Completed = false
			close(done)
		},
		Complete: func() {
			res.Completed = true
			close(done)
		},
	})
	<-done
	return res
}
