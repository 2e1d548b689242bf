package stream

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Map transforms every value with fn. Lazy: fn is invoked only as values
// arrive from the upstream subscription.
func Map[T, U any](src Observable[T], fn func(T) U) Observable[U] {
	return New(func(ctx context.Context, obs Observer[U]) {
		src.Subscribe(ctx, Observer[T]{
			Next:     func(v T) { obs.Next(fn(v)) },
			Error:    obs.Error,
			Complete: obs.Complete,
		})
	})
}

// Filter forwards only values for which pred returns true.
func Filter[T any](src Observable[T], pred func(T) bool) Observable[T] {
	return New(func(ctx context.Context, obs Observer[T]) {
		src.Subscribe(ctx, Observer[T]{
			Next: func(v T) {
				if pred(v) {
					obs.Next(v)
				}
			},
			Error:    obs.Error,
			Complete: obs.Complete,
		})
	})
}

// FlatMap subscribes to fn(v) for every upstream value concurrently (via an
// errgroup) and merges their outputs. Completion of the result waits until
// the source has completed AND every inner Observable it spawned has
// completed. Cancelling the result cancels the source and every live inner
// subscription.
func FlatMap[T, U any](src Observable[T], fn func(T) Observable[U]) Observable[U] {
	return New(func(ctx context.Context, obs Observer[U]) {
		var mu sync.Mutex
		var outErr error
		errOnce := sync.Once{}

		g, gctx := errgroup.WithContext(ctx)
		sourceDone := make(chan struct{})

		reportErr := func(err error) {
			errOnce.Do(func() {
				mu.Lock()
				outErr = err
				mu.Unlock()
			})
		}

		src.Subscribe(gctx, Observer[T]{
			Next: func(v T) {
				inner := fn(v)
				g.Go(func() error {
					done := make(chan struct{})
					inner.Subscribe(gctx, Observer[U]{
						Next: func(u U) {
							mu.Lock()
							defer mu.Unlock()
							obs.Next(u)
						},
						Error: func(err error) {
							reportErr(err)
							close(done)
						},
						Complete: func() { close(done) },
					})
					<-done
					return nil
				})
			},
			Error: func(err error) {
				reportErr(err)
				close(sourceDone)
			},
			Complete: func() { close(sourceDone) },
		})

		<-sourceDone
		_ = g.Wait()

		mu.Lock()
		err := outErr
		mu.Unlock()
		if err != nil {
			obs.Error(err)
			return
		}
		obs.Complete()
	})
}

// Merge interleaves values from both inputs and completes once both have
// completed (or errors as soon as either errors).
func Merge[T any](a, b Observable[T]) Observable[T] {
	return New(func(ctx context.Context, obs Observer[T]) {
		var mu sync.Mutex
		remaining := 2
		done := make(chan struct{})
		errOnce := sync.Once{}

		finishOne := func() {
			mu.Lock()
			remaining--
			r := remaining
			mu.Unlock()
			if r == 0 {
				close(done)
			}
		}

		onErr := func(err error) {
			errOnce.Do(func() {
				obs.Error(err)
				close(done)
			})
		}

		a.Subscribe(ctx, Observer[T]{
			Next:     func(v T) { mu.Lock(); defer mu.Unlock(); obs.Next(v) },
			Error:    onErr,
			Complete: finishOne,
		})
		b.Subscribe(ctx, Observer[T]{
			Next:     func(v T) { mu.Lock(); defer mu.Unlock(); obs.Next(v) },
			Error:    onErr,
			Complete: finishOne,
		})
		<-done
		obs.Complete()
	})
}

// MergeAll merges a slice of Observables of the same type.
func MergeAll[T any](obs []Observable[T]) Observable[T] {
	switch len(obs) {
	case 0:
		return Empty[T]()
	case 1:
		return obs[0]
	}
	result := obs[0]
	for _, o := range obs[1:] {
		result = Merge(result, o)
	}
	return result
}

// Take forwards at most n values, then completes and cancels upstream.
func Take[T any](src Observable[T], n int) Observable[T] {
	return New(func(ctx context.Context, obs Observer[T]) {
		if n <= 0 {
			obs.Complete()
			return
		}
		count := 0
		// The upstream gets its own cancellable context, so the cap can cancel
		// it even while a synchronous source is still inside Subscribe.
		uctx, cancel := context.WithCancel(ctx)
		src.Subscribe(uctx, Observer[T]{
			Next: func(v T) {
				if count >= n {
					return
				}
				count++
				obs.Next(v)
				if count >= n {
					cancel()
					obs.Complete()
				}
			},
			Error:    obs.Error,
			Complete: obs.Complete,
		})
	})
}

// Reduce folds the entire upstream into a single value emitted on
// completion.
func Reduce[T, A any](src Observable[T], fn func(A, T) A, init A) Observable[A] {
	return New(func(ctx context.Context, obs Observer[A]) {
		acc := init
		src.Subscribe(ctx, Observer[T]{
			Next:  func(v T) { acc = fn(acc, v) },
			Error: obs.Error,
			Complete: func() {
				obs.Next(acc)
				obs.Complete()
			},
		})
	})
}

// ToSlice collects the entire upstream into a slice emitted on completion.
func ToSlice[T any](src Observable[T]) Observable[[]T] {
	return Reduce(src, func(acc []T, v T) []T { return append(acc, v) }, []T(nil))
}

// shareState is the shared multicast core behind Share.
type shareState[T any] struct {
	mu          sync.Mutex
	subscribers map[int]Observer[T]
	nextID      int
	buffer      []T
	bufferSize  int
	upstreamSub *Subscription
	completed   bool
	erred       error
	parent      Observable[T]
}

// Share multicasts src to any number of subscribers over one upstream
// subscription. Late subscribers receive up to the last bufferSize items
// (default 0, meaning none). Reference-counted: the upstream subscription
// is cancelled when the last subscriber leaves.
func Share[T any](src Observable[T], bufferSize ...int) Observable[T] {
	size := 0
	if len(bufferSize) > 0 {
		size = bufferSize[0]
	}
	state := &shareState[T]{
		subscribers: map[int]Observer[T]{},
		bufferSize:  size,
		parent:      src,
	}

	return New(func(ctx context.Context, obs Observer[T]) {
		state.mu.Lock()
		id := state.nextID
		state.nextID++
		state.subscribers[id] = obs
		startUpstream := len(state.subscribers) == 1 && state.upstreamSub == nil && !state.completed && state.erred == nil
		buffered := append([]T(nil), state.buffer...)
		completed := state.completed
		erred := state.erred
		state.mu.Unlock()

		for _, v := range buffered {
			obs.Next(v)
		}
		if erred != nil {
			obs.Error(erred)
			return
		}
		if completed {
			obs.Complete()
			return
		}

		if startUpstream {
			state.upstreamSub = src.Subscribe(context.Background(), Observer[T]{
				Next: func(v T) {
					state.mu.Lock()
					if state.bufferSize > 0 {
						state.buffer = append(state.buffer, v)
						if len(state.buffer) > state.bufferSize {
							state.buffer = state.buffer[len(state.buffer)-state.bufferSize:]
						}
					}
					subs := make([]Observer[T], 0, len(state.subscribers))
					for _, s := range state.subscribers {
						subs = append(subs, s)
					}
					state.mu.Unlock()
					for _, s := range subs {
						s.Next(v)
					}
				},
				Error: func(err error) {
					state.mu.Lock()
					state.erred = err
					subs := make([]Observer[T], 0, len(state.subscribers))
					for _, s := range state.subscribers {
						subs = append(subs, s)
					}
					state.subscribers = map[int]Observer[T]{}
					state.mu.Unlock()
					for _, s := range subs {
						s.Error(err)
					}
				},
				Complete: func() {
					state.mu.Lock()
					state.completed = true
					subs := make([]Observer[T], 0, len(state.subscribers))
					for _, s := range state.subscribers {
						subs = append(subs, s)
					}
					state.subscribers = map[int]Observer[T]{}
					state.mu.Unlock()
					for _, s := range subs {
						s.Complete()
					}
				},
			})
		}

		// Register the teardown: leaving the multicast drops this
		// subscriber and, if it was the last one, cancels upstream.
		cctx, cancel := context.WithCancel(ctx)
		go func() {
			<-cctx.Done()
			state.mu.Lock()
			delete(state.subscribers, id)
			empty := len(state.subscribers) == 0
			up := state.upstreamSub
			state.mu.Unlock()
			if empty && up != nil {
				up.Unsubscribe()
			}
		}()
		_ = cancel
	})
}

// Pipe composes operators left to right: Pipe(src, op1, op2) == op2(op1(src)).
func Pipe[T any](src Observable[T], ops ...func(Observable[T]) Observable[T]) Observable[T] {
	cur := src
	for _, op := range ops {
		cur = op(cur)
	}
	return cur
}
