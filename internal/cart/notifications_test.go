package cart

import (
	"context"
	"fmt"
	"testing"
)

func TestNotificationQueueDrainsInOrder(t *testing.T) {
	t.Parallel()

	q := NewNotificationQueue(0)
	q.Notify(context.Background(), Notification{Type: NotificationInfo, Message: "one"})
	q.Notify(context.Background(), Notification{Type: NotificationWarning, Message: "two"})

	out := q.Drain()
	if len(out) != 2 || out[0].Message != "one" || out[1].Message != "two" {
		t.Fatalf("unexpected drain %+v", out)
	}
	if out[0].ID == "" || out[0].CreatedAt.IsZero() {
		t.Fatalf("notify should stamp id and time: %+v", out[0])
	}
	if q.Len() != 0 || len(q.Drain()) != 0 {
		t.Fatalf("queue should be empty after drain")
	}
}

func TestNotificationQueueDropsOldest(t *testing.T) {
	t.Parallel()

	q := NewNotificationQueue(3)
	for i := 0; i < 5; i++ {
		q.Notify(context.Background(), Notification{Message: fmt.Sprintf("m%d", i)})
	}

	out := q.Drain()
	if len(out) != 3 || out[0].Message != "m2" || out[2].Message != "m4" {
		t.Fatalf("expected newest three, got %+v", out)
	}
}
