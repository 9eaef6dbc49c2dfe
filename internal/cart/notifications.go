package cart

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

// Notification is a user-visible message raised by a cart operation.
type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	Message   string           `json:"message"`
	LineID    string           `json:"lineId,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}

// Notifier receives surfaced messages.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

const defaultQueueCapacity = 50

// NotificationQueue buffers notifications until the UI drains them. When full,
// the oldest entry is dropped.
type NotificationQueue struct {
	mu       sync.Mutex
	items    []Notification
	capacity int
}

func NewNotificationQueue(capacity int) *NotificationQueue {
	if capacity <= 0 {
		capacity = defaultQueueCapacity
	}
	return &NotificationQueue{capacity: capacity}
}

func (q *NotificationQueue) Notify(_ context.Context, n Notification) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) >= q.capacity {
		q.items = q.items[1:]
	}
	q.items = append(q.items, n)
}

// Drain returns all queued notifications in arrival order and empties the queue.
func (q *NotificationQueue) Drain() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	if out == nil {
		out = []Notification{}
	}
	return out
}

// Len reports the number of queued notifications.
func (q *NotificationQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

type discardNotifier struct{}

func (discardNotifier) Notify(context.Context, Notification) {}
