package stream

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func collect[T any](t *testing.T, o Observable[T]) ([]T, bool, error) {
	t.Helper()
	var got []T
	var completed bool
	var failure error
	o.Subscribe(context.Background(), Observer[T]{
		Next:     func(v T) { got = append(got, v) },
		Error:    func(err error) { failure = err },
		Complete: func() { completed = true },
	})
	return got, completed, failure
}

func TestOfEmitsInOrderThenCompletes(t *testing.T) {
	got, completed, err := collect(t, Of(1, 2, 3))
	require.NoError(t, err)
	require.True(t, completed)
	require.Equal(t, []int{1, 2, 3}, got)
}

func TestMap(t *testing.T) {
	doubled := Map(Of(1, 2, 3), func(v int) int { return v * 2 })
	got, completed, err := collect(t, doubled)
	require.NoError(t, err)
	require.True(t, completed)
	require.Equal(t, []int{2, 4, 6}, got)
}

func TestFilter(t *testing.T) {
	evens := Filter(Of(1, 2, 3, 4, 5), func(v int) bool { return v%2 == 0 })
	got, _, err := collect(t, evens)
	require.NoError(t, err)
	require.Equal(t, []int{2, 4}, got)
}

func TestTakeCancelsUpstream(t *testing.T) {
	var cancelled atomic.Bool
	infinite := New(func(ctx context.Context, obs Observer[int]) {
		go func() {
			i := 0
			for {
				select {
				case <-ctx.Done():
					cancelled.Store(true)
					return
				default:
				}
				obs.Next(i)
				i++
			}
		}()
	})

	// The producer runs on its own goroutine, so wait for Take to finish
	// before reading what it delivered.
	var mu sync.Mutex
	var got []int
	var err error
	done := make(chan struct{})
	Take(infinite, 3).Subscribe(context.Background(), Observer[int]{
		Next:     func(v int) { mu.Lock(); got = append(got, v); mu.Unlock() },
		Error:    func(e error) { err = e; close(done) },
		Complete: func() { close(done) },
	})
	<-done
	require.NoError(t, err)
	mu.Lock()
	require.Len(t, got, 3)
	mu.Unlock()
	require.Eventually(t, cancelled.Load, time.Second, time.Millisecond)
}

func TestMergeCompletesAfterBoth(t *testing.T) {
	merged := Merge(Of(1, 2), Of(3, 4))
	got, completed, err := collect(t, merged)
	require.NoError(t, err)
	require.True(t, completed)
	require.ElementsMatch(t, []int{1, 2, 3, 4}, got)
}

func TestReduce(t *testing.T) {
	sum := Reduce(Of(1, 2, 3, 4), func(acc, v int) int { return acc + v }, 0)
	got, _, err := collect(t, sum)
	require.NoError(t, err)
	require.Equal(t, []int{10}, got)
}

func TestShareMulticastsOneUpstream(t *testing.T) {
	var produced int
	src := New(func(ctx context.Context, obs Observer[int]) {
		produced++
		obs.Next(1)
		obs.Next(2)
		obs.Complete()
	})
	shared := Share(src, 0)

	got1, _, err1 := collect(t, shared)
	require.NoError(t, err1)
	require.Equal(t, []int{1, 2}, got1)
	_, completed2, err2 := collect(t, shared)
	require.NoError(t, err2)
	require.True(t, completed2)
	require.Equal(t, 1, produced)
}

func TestFlatMapMergesInnerObservables(t *testing.T) {
	src := Of(1, 2, 3)
	out := FlatMap(src, func(v int) Observable[int] { return Of(v, v*10) })
	got, completed, err := collect(t, out)
	require.NoError(t, err)
	require.True(t, completed)
	require.ElementsMatch(t, []int{1, 10, 2, 20, 3, 30}, got)
}

func TestCancellationClosure(t *testing.T) {
	var nextAfterUnsubscribe bool
	var emit func(int)
	src := New(func(ctx context.Context, obs Observer[int]) {
		emit = obs.Next
	})
	sub := src.Subscribe(context.Background(), Observer[int]{
		Next: func(v int) { nextAfterUnsubscribe = true },
	})
	sub.Unsubscribe()
	emit(1)
	require.True(t, sub.IsClosed())
	require.False(t, nextAfterUnsubscribe)
}

func TestErrorIsTerminal(t *testing.T) {
	boom := errors.New("boom")
	src := New(func(ctx context.Context, obs Observer[int]) {
		obs.Next(1)
		obs.Error(boom)
		obs.Next(2)
	})
	got, completed, err := collect(t, src)
	require.ErrorIs(t, err, boom)
	require.False(t, completed)
	require.Equal(t, []int{1}, got)
}
