package notifications

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStorage is an in-memory implementation of the Storage interface.
// Suitable for development and testing.
type MemoryStorage struct {
	notifications map[string][]Notification // userID -> notifications
	mu            sync.RWMutex
}

// NewMemoryStorage creates a new in-memory notification storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		notifications: make(map[string][]Notification),
	}
}

func (s *MemoryStorage) Create(ctx context.Context, notif Notification) error {
	if notif.ID == "" {
		return ErrMissingID
	}
	if notif.UserID == "" {
		return ErrMissingUserID
	}
	if notif.CreatedAt.IsZero() {
		notif.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications[notif.UserID] = append(s.notifications[notif.UserID], notif)
	return nil
}

func (s *MemoryStorage) Get(ctx context.Context, userID, notifID string) (*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, n := range s.notifications[userID] {
		if n.ID == notifID {
			// Return a copy to prevent external mutation of stored data
			notif := n
			return &notif, nil
		}
	}
	return nil, ErrNotificationNotFound
}

func (s *MemoryStorage) List(ctx context.Context, userID string, opts ListOptions) ([]Notification, int, error) {
	opts = opts.Normalize()

	s.mu.RLock()
	var filtered []Notification
	for _, n := range s.notifications[userID] {
		if opts.Matches(n) {
			filtered = append(filtered, n)
		}
	}
	s.mu.RUnlock()

	// Newest first; insertion order breaks ties so equal timestamps stay stable.
	slices.SortStableFunc(filtered, func(a, b Notification) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	total := len(filtered)
	start := opts.Offset()
	if start >= total {
		return []Notification{}, total, nil
	}
	end := min(start+opts.Limit, total)
	return filtered[start:end], total, nil
}

func (s *MemoryStorage) MarkRead(ctx context.Context, userID, notifID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.notifications[userID]
	for i := range list {
		if list[i].ID == notifID {
			if !list[i].Read {
				list[i].MarkAsRead()
			}
			return nil
		}
	}
	return ErrNotificationNotFound
}

func (s *MemoryStorage) MarkAllRead(ctx context.Context, userID, notifType string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	list := s.notifications[userID]
	for i := range list {
		if list[i].Read || (notifType != "" && list[i].Type != notifType) {
			continue
		}
		list[i].MarkAsRead()
		changed++
	}
	return changed, nil
}

func (s *MemoryStorage) Delete(ctx context.Context, userID, notifID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.notifications[userID]
	idx := slices.IndexFunc(list, func(n Notification) bool { return n.ID == notifID })
	if idx < 0 {
		return ErrNotificationNotFound
	}
	s.notifications[userID] = slices.Delete(list, idx, idx+1)
	return nil
}

func (s *MemoryStorage) CountUnread(ctx context.Context, userID, notifType string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.notifications[userID] {
		if !n.Read && (notifType == "" || n.Type == notifType) {
			count++
		}
	}
	return count, nil
}
