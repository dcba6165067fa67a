package broadcast_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storefront/pkg/broadcast"
)

func receive[T any](t *testing.T, sub broadcast.Subscriber[T]) (T, bool) {
	t.Helper()
	select {
	case msg, ok := <-sub.Receive():
		return msg.Data, ok
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		var zero T
		return zero, false
	}
}

func TestMemoryBroadcaster_Broadcast(t *testing.T) {
	t.Parallel()

	b := broadcast.NewMemoryBroadcaster[string](4)
	defer b.Close()
	ctx := context.Background()

	sub1 := b.Subscribe(ctx)
	sub2 := b.Subscribe(ctx)
	assert.Equal(t, 2, b.Len())

	dropped, err := b.Broadcast(ctx, broadcast.Message[string]{Data: "hello"})
	require.NoError(t, err)
	assert.Zero(t, dropped)

	for _, sub := range []broadcast.Subscriber[string]{sub1, sub2} {
		got, ok := receive(t, sub)
		require.True(t, ok)
		assert.Equal(t, "hello", got)
	}
}

func TestMemoryBroadcaster_SlowSubscriberKeepsSubscription(t *testing.T) {
	t.Parallel()

	b := broadcast.NewMemoryBroadcaster[int](1)
	defer b.Close()
	ctx := context.Background()
	sub := b.Subscribe(ctx)

	dropped, err := b.Broadcast(ctx, broadcast.Message[int]{Data: 1})
	require.NoError(t, err)
	assert.Zero(t, dropped)
	dropped, err = b.Broadcast(ctx, broadcast.Message[int]{Data: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, dropped)

	got, ok := receive(t, sub)
	require.True(t, ok)
	assert.Equal(t, 1, got)
	assert.Equal(t, 1, b.Len(), "a full buffer drops the message, not the subscriber")

	_, err = b.Broadcast(ctx, broadcast.Message[int]{Data: 3})
	require.NoError(t, err)
	got, ok = receive(t, sub)
	require.True(t, ok)
	assert.Equal(t, 3, got)
}

func TestMemoryBroadcaster_SubscriptionEnds(t *testing.T) {
	t.Parallel()

	t.Run("context cancel", func(t *testing.T) {
		b := broadcast.NewMemoryBroadcaster[string](1)
		defer b.Close()

		ctx, cancel := context.WithCancel(context.Background())
		sub := b.Subscribe(ctx)
		cancel()

		_, ok := receive(t, sub)
		assert.False(t, ok)
		assert.Eventually(t, func() bool { return b.Len() == 0 }, time.Second, 10*time.Millisecond)
	})

	t.Run("close is idempotent", func(t *testing.T) {
		b := broadcast.NewMemoryBroadcaster[string](1)
		defer b.Close()

		sub := b.Subscribe(context.Background())
		require.NoError(t, sub.Close())
		require.NoError(t, sub.Close())

		_, ok := receive(t, sub)
		assert.False(t, ok)
		assert.Zero(t, b.Len())
	})

	t.Run("broadcaster close", func(t *testing.T) {
		b := broadcast.NewMemoryBroadcaster[string](1)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		sub := b.Subscribe(ctx)

		require.NoError(t, b.Close())
		require.NoError(t, b.Close())

		_, ok := receive(t, sub)
		assert.False(t, ok)

		_, err := b.Broadcast(ctx, broadcast.Message[string]{Data: "late"})
		assert.ErrorIs(t, err, broadcast.ErrClosed)

		late := b.Subscribe(ctx)
		_, ok = receive(t, late)
		assert.False(t, ok)
		assert.NoError(t, late.Close())
	})
}

func TestMemoryBroadcaster_ConcurrentUse(t *testing.T) {
	t.Parallel()

	b := broadcast.NewMemoryBroadcaster[int](8)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			sub := b.Subscribe(ctx)
			time.Sleep(time.Millisecond)
			_ = sub.Close()
		}()
		go func() {
			defer wg.Done()
			_, _ = b.Broadcast(ctx, broadcast.Message[int]{Data: i})
		}()
	}
	wg.Wait()
	require.NoError(t, b.Close())
	assert.Zero(t, b.Len())
}
