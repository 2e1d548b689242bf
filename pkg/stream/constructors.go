package stream

import "context"

// Of builds an Observable that synchronously emits the given values and
// completes.
func Of[T any](values ...T) Observable[T] {
	return From(values)
}

// From builds an Observable that synchronously emits every element of arr
// and completes.
func From[T any](arr []T) Observable[T] {
	return New(func(ctx context.Context, obs Observer[T]) {
		for _, v := range arr {
			select {
			case <-ctx.Done():
				return
			default:
			}
			obs.Next(v)
		}
		obs.Complete()
	})
}

// Empty builds an Observable that completes immediately without emitting.
func Empty[T any]() Observable[T] {
	return New(func(ctx context.Context, obs Observer[T]) {
		obs.Complete()
	})
}

// Future is the minimal promise-like contract FromPromise adapts. It mirrors
// the shape a context.Context-based future exposes in the rest of the pack.
type Future[T any] interface {
	// Await blocks until the future resolves or ctx is cancelled.
	Await(ctx context.Context) (T, error)
}

// FromPromise builds an Observable that emits the future's single resolved
// value and completes, or errors if it rejects or the subscription is
// cancelled first.
func FromPromise[T any](f Future[T]) Observable[T] {
	return New(func(ctx context.Context, obs Observer[T]) {
		v, err := f.Await(ctx)
		if err != nil {
			obs.Error(err)
			return
		}
		obs.Next(v)
		obs.Complete()
	})
}

// AsyncSequence is a pull-based source of values, used to bridge generator-
// like producers (e.g. a database cursor) into the Observable contract.
// Next returns (zero, false) to signal natural end of sequence.
type AsyncSequence[T any] interface {
	Next(ctx context.Context) (T, bool, error)
}

// FromAsyncSequence drains seq into an Observable, emitting each value as it
// arrives and completing when Next reports no more values.
func FromAsyncSequence[T any](seq AsyncSequence[T]) Observable[T] {
	return New(func(ctx context.Context, obs Observer[T]) {
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			v, ok, err := seq.Next(ctx)
			if err != nil {
				obs.Error(err)
				return
			}
			if !ok {
				obs.Complete()
				return
			}
			obs.Next(v)
		}
	})
}
