package broadcast

import (
	"context"
	"sync"
)

// Message wraps data of type T.
type Message[T any] struct {
	Data T
}

// Subscriber receives messages from a Broadcaster.
type Subscriber[T any] interface {
	// Receive returns the delivery channel. It is closed when the
	// subscription ends.
	Receive() <-chan Message[T]
	// Close ends the subscription. Safe to call multiple times.
	Close() error
}

// Broadcaster sends each message to every live subscriber.
type Broadcaster[T any] interface {
	// Subscribe adds a subscriber that lives until ctx is done or it is closed.
	Subscribe(ctx context.Context) Subscriber[T]
	// Broadcast delivers msg without blocking and reports how many
	// subscribers missed it because their buffer was full.
	Broadcast(ctx context.Context, msg Message[T]) (dropped int, err error)
	// Len returns the number of live subscribers.
	Len() int
	// Close ends every subscription. Later calls are no-ops.
	Close() error
}

type subscriber[T any] struct {
	ch     chan Message[T]
	done   chan struct{}
	owner  *MemoryBroadcaster[T]
	closed bool
	mu     sync.RWMutex
}

func newSubscriber[T any](owner *MemoryBroadcaster[T], bufferSize int) *subscriber[T] {
	return &subscriber[T]{
		ch:    make(chan Message[T], bufferSize),
		done:  make(chan struct{}),
		owner: owner,
	}
}

func (s *subscriber[T]) Receive() <-chan Message[T] {
	return s.ch
}

func (s *subscriber[T]) Close() error {
	if s.owner != nil {
		s.owner.unsubscribe(s)
		return nil
	}
	s.shutdown()
	return nil
}

func (s *subscriber[T]) shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
	close(s.done)
}

// send reports false when the message could not be queued.
func (s *subscriber[T]) send(msg Message[T]) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return true
	}
	select {
	case s.ch <- msg:
		return true
	default:
		return false
	}
}
