// Package stream implements the cold, cancellable, single-producer
// observable transport used as the core engine's dataflow substrate.
//
// An Observable[T] does nothing until Subscribe is called; Subscribe starts
// the producer synchronously and may deliver values and complete before it
// returns. The returned Subscription's Unsubscribe both stops further
// delivery to the observer and propagates cancellation upstream on a
// best-effort basis.
//
// The shape mirrors github.com/samber/ro's Subscription/Teardown split:
// a Subscription accumulates Teardown closures and runs them exactly once,
// in LIFO order, when cancelled.
package stream

import (
	"context"
	"sync"
)

// Observer receives values, a terminal error, or a terminal completion from
// an Observable. Exactly one of Error or Complete is invoked at most once,
// and never after either has fired. Next is never invoked concurrently with
// itself or with Error/Complete for the same subscription.
type Observer[T any] struct {
	Next     func(T)
	Error    func(error)
	Complete func()
}

// Teardown is a cleanup closure run when a Subscription is cancelled.
type Teardown func()

// Subscription represents one in-flight Subscribe call.
type Subscription struct {
	mu         sync.Mutex
	closed     bool
	teardowns  []Teardown
	cancelFunc context.CancelFunc
}

func newSubscription(cancel context.CancelFunc) *Subscription {
	return &Subscription{cancelFunc: cancel}
}

// Add registers a Teardown to run on Unsubscribe. If the subscription is
// already closed, the Teardown runs immediately.
func (s *Subscription) Add(td Teardown) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		td()
		return
	}
	s.teardowns = append(s.teardowns, td)
	s.mu.Unlock()
}

// IsClosed reports whether Unsubscribe has already run.
func (s *Subscription) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Unsubscribe prevents further delivery to the observer and propagates
// cancellation upstream. Safe to call more than once; only the first call
// has effect.
func (s *Subscription) Unsubscribe() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	tds := s.teardowns
	s.teardowns = nil
	s.mu.Unlock()

	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	for i := len(tds) - 1; i >= 0; i-- {
		tds[i]()
	}
}

// Producer is the function an Observable wraps: given a context (cancelled
// on Unsubscribe) and an Observer, it drives production and returns once it
// has either delivered a terminal signal or is ready to be torn down
// asynchronously via ctx.Done.
type Producer[T any] func(ctx context.Context, obs Observer[T])

// Observable is a cold producer of a sequence of values of type T.
type Observable[T any] struct {
	produce Producer[T]
}

// New builds an Observable from a raw Producer.
func New[T any](p Producer[T]) Observable[T] {
	return Observable[T]{produce: p}
}

// Subscribe starts the producer against a derived, cancellable context and
// returns a Subscription. Delivery to obs after Unsubscribe is a no-op.
func (o Observable[T]) Subscribe(ctx context.Context, obs Observer[T]) *Subscription {
	cctx, cancel := context.WithCancel(ctx)
	sub := newSubscription(cancel)

	guarded := Observer[T]{
		Next: func(v T) {
			if sub.IsClosed() {
				return
			}
			if obs.Next != nil {
				obs.Next(v)
			}
		},
		Error: func(err error) {
			if sub.IsClosed() {
				return
			}
			sub.Unsubscribe()
			if obs.Error != nil {
				obs.Error(err)
			}
		},
		Complete: func() {
			if sub.IsClosed() {
				return
			}
			sub.Unsubscribe()
			if obs.Complete != nil {
				obs.Complete()
			}
		},
	}

	if o.produce != nil {
		o.produce(cctx, guarded)
	}
	return sub
}
