package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, sub Feed) (Notification, bool) {
	t.Helper()
	select {
	case msg, ok := <-sub.Receive():
		return msg.Data, ok
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for notification")
		return Notification{}, false
	}
}

func TestBroadcastDeliverer_Deliver(t *testing.T) {
	d := NewBroadcastDeliverer(4)
	defer d.Close()
	ctx := context.Background()

	sub1 := d.Subscribe(ctx, "user-1")
	sub2 := d.Subscribe(ctx, "user-1")
	other := d.Subscribe(ctx, "user-2")
	assert.Equal(t, 2, d.Subscribers("user-1"))

	require.NoError(t, d.Deliver(ctx, Notification{ID: "n1", UserID: "user-1", Title: "Order shipped"}))

	n, ok := receive(t, sub1)
	require.True(t, ok)
	assert.Equal(t, "n1", n.ID)

	n, ok = receive(t, sub2)
	require.True(t, ok)
	assert.Equal(t, "n1", n.ID)

	select {
	case <-other.Receive():
		t.Fatal("user-2 must not receive user-1 notifications")
	default:
	}
}

func TestBroadcastDeliverer_NoSubscribers(t *testing.T) {
	d := NewBroadcastDeliverer(1)
	defer d.Close()

	assert.NoError(t, d.Deliver(context.Background(), Notification{ID: "n1", UserID: "nobody"}))
	assert.Equal(t, 0, d.Subscribers("nobody"))
}

func TestBroadcastDeliverer_SlowConsumerDrops(t *testing.T) {
	d := NewBroadcastDeliverer(1)
	defer d.Close()
	ctx := context.Background()

	sub := d.Subscribe(ctx, "user-1")
	require.NoError(t, d.Deliver(ctx, Notification{ID: "n1", UserID: "user-1"}))
	require.NoError(t, d.Deliver(ctx, Notification{ID: "n2", UserID: "user-1"}))

	n, ok := receive(t, sub)
	require.True(t, ok)
	assert.Equal(t, "n1", n.ID)

	select {
	case extra := <-sub.Receive():
		t.Fatalf("expected n2 to be dropped, got %s", extra.Data.ID)
	default:
	}
}

func TestBroadcastDeliverer_ContextCancelUnsubscribes(t *testing.T) {
	d := NewBroadcastDeliverer(1)
	defer d.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sub := d.Subscribe(ctx, "user-1")
	cancel()

	_, ok := receive(t, sub)
	assert.False(t, ok, "channel should be closed after cancel")
	assert.Eventually(t, func() bool { return d.Subscribers("user-1") == 0 }, time.Second, 10*time.Millisecond)
}

func TestBroadcastDeliverer_CloseIsIdempotent(t *testing.T) {
	d := NewBroadcastDeliverer(1)
	sub := d.Subscribe(context.Background(), "user-1")

	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())

	_, ok := receive(t, sub)
	assert.False(t, ok)
	assert.NoError(t, d.Close())
}

func TestBroadcastDeliverer_LRUEviction(t *testing.T) {
	d := NewBroadcastDeliverer(1, WithMaxFeeds(2))
	defer d.Close()
	ctx := context.Background()

	sub1 := d.Subscribe(ctx, "user-1")
	sub2 := d.Subscribe(ctx, "user-2")
	sub3 := d.Subscribe(ctx, "user-3")

	_, ok := receive(t, sub1)
	assert.False(t, ok, "least recently used feed should be evicted and closed")

	require.NoError(t, d.Deliver(ctx, Notification{ID: "n2", UserID: "user-2"}))
	n, ok := receive(t, sub2)
	require.True(t, ok)
	assert.Equal(t, "n2", n.ID)

	require.NoError(t, d.Deliver(ctx, Notification{ID: "n3", UserID: "user-3"}))
	n, ok = receive(t, sub3)
	require.True(t, ok)
	assert.Equal(t, "n3", n.ID)
}

func TestBroadcastDeliverer_ClosedDelivererReturnsClosedSubscriptions(t *testing.T) {
	d := NewBroadcastDeliverer(1)
	ctx := context.Background()

	sub := d.Subscribe(ctx, "user-1")
	require.NoError(t, d.Close())

	_, ok := receive(t, sub)
	assert.False(t, ok)
}

func TestBroadcastDeliverer_SubscribeAfterClose(t *testing.T) {
	d := NewBroadcastDeliverer(1)
	require.NoError(t, d.Close())

	sub := d.Subscribe(context.Background(), "user-1")
	_, ok := receive(t, sub)
	assert.False(t, ok)
	assert.Zero(t, d.Subscribers("user-1"))
}

func TestBroadcastDeliverer_SlowSubscriberStaysSubscribed(t *testing.T) {
	d := NewBroadcastDeliverer(1)
	defer d.Close()
	ctx := context.Background()

	sub := d.Subscribe(ctx, "user-1")
	require.NoError(t, d.Deliver(ctx, Notification{ID: "n1", UserID: "user-1"}))
	require.NoError(t, d.Deliver(ctx, Notification{ID: "n2", UserID: "user-1"}))
	_, _ = receive(t, sub)

	require.NoError(t, d.Deliver(ctx, Notification{ID: "n3", UserID: "user-1"}))
	n, ok := receive(t, sub)
	require.True(t, ok)
	assert.Equal(t, "n3", n.ID)
	assert.Equal(t, 1, d.Subscribers("user-1"))
}
