package notifyclient

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/storefront/pkg/logger"
	"github.com/dmitrymomot/storefront/pkg/notifications"
)

// Event names a listener channel and fixes its payload type.
type Event[T any] struct {
	name string
}

// NewEvent declares an event. The registry itself accepts any name, so new
// events need no registry changes.
func NewEvent[T any](name string) Event[T] {
	return Event[T]{name: name}
}

// Name returns the registry key of the event.
func (e Event[T]) Name() string {
	return e.name
}

var (
	// NotificationEvent fires once per notification shown to the user.
	NotificationEvent = NewEvent[notifications.Notification]("notification")
	// UnreadCountEvent fires with the new counter value after every change.
	UnreadCountEvent = NewEvent[int]("unreadCount")
)

// Registry maps event names to ordered listener lists.
type Registry struct {
	mu        sync.Mutex
	listeners map[string][]*listener
	logger    *slog.Logger
}

type listener struct {
	fn func(any)
}

// NewRegistry creates an empty registry. A nil logger uses slog.Default.
func NewRegistry(log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		listeners: make(map[string][]*listener),
		logger:    log,
	}
}

// AddEventListener appends fn to the listeners of name. The returned
// function removes exactly this registration and may be called repeatedly.
func (r *Registry) AddEventListener(name string, fn func(any)) func() {
	l := &listener{fn: fn}

	r.mu.Lock()
	r.listeners[name] = append(r.listeners[name], l)
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { r.remove(name, l) })
	}
}

func (r *Registry) remove(name string, target *listener) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.listeners[name]
	for i, l := range list {
		if l == target {
			// Copy so an in-flight fan-out keeps iterating its own snapshot.
			next := make([]*listener, 0, len(list)-1)
			next = append(next, list[:i]...)
			next = append(next, list[i+1:]...)
			if len(next) == 0 {
				delete(r.listeners, name)
			} else {
				r.listeners[name] = next
			}
			return
		}
	}
}

// NotifyListeners calls every listener of name in registration order.
// A panicking listener is logged and skipped.
func (r *Registry) NotifyListeners(name string, data any) {
	r.mu.Lock()
	snapshot := r.listeners[name]
	r.mu.Unlock()

	for _, l := range snapshot {
		r.invoke(name, l, data)
	}
}

// Len returns the number of listeners registered for name.
func (r *Registry) Len(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.listeners[name])
}

func (r *Registry) invoke(name string, l *listener, data any) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.LogAttrs(context.Background(), slog.LevelError, "Listener panicked",
				logger.Event(name),
				logger.Error(fmt.Errorf("%v", rec)),
			)
		}
	}()
	l.fn(data)
}

// Subscribe registers a typed listener.
func Subscribe[T any](r *Registry, e Event[T], fn func(T)) func() {
	return r.AddEventListener(e.name, func(data any) {
		v, ok := data.(T)
		if !ok {
			r.logger.LogAttrs(context.Background(), slog.LevelWarn, "Listener payload type mismatch",
				logger.Event(e.name),
				slog.String("payload_type", fmt.Sprintf("%T", data)),
			)
			return
		}
		fn(v)
	})
}

// Publish notifies the listeners of a typed event.
func Publish[T any](r *Registry, e Event[T], v T) {
	r.NotifyListeners(e.name, v)
}
