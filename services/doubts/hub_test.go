package doubts

import (
	"testing"
	"time"
)

func TestHubBroadcastReachesAllSubscribers(t *testing.T) {
	hub := NewHub()
	a := hub.Subscribe()
	b := hub.Subscribe()
	defer hub.Unsubscribe(a)
	defer hub.Unsubscribe(b)

	hub.Broadcast(Notification{DoubtID: 1, Message: "stuck on factoring"})

	for _, ch := range []chan Notification{a, b} {
		select {
		case n := <-ch:
			if n.DoubtID != 1 {
				t.Fatalf("got doubt id %d, want 1", n.DoubtID)
			}
		case <-time.After(time.Second):
			t.Fatal("subscriber never received the notification")
		}
	}
}

func TestHubDropsWhenSubscriberIsFull(t *testing.T) {
	hub := NewHub()
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	// Overflow the buffer; Broadcast must never block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			hub.Broadcast(Notification{DoubtID: uint(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked on a full subscriber")
	}

	if got := len(ch); got > cap(ch) {
		t.Fatalf("buffered %d events, cap is %d", got, cap(ch))
	}
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub()
	ch := hub.Subscribe()

	if hub.SubscriberCount() != 1 {
		t.Fatalf("got %d subscribers, want 1", hub.SubscriberCount())
	}

	hub.Unsubscribe(ch)

	if hub.SubscriberCount() != 0 {
		t.Fatalf("got %d subscribers after unsubscribe, want 0", hub.SubscriberCount())
	}
	if _, open := <-ch; open {
		t.Fatal("channel still open after unsubscribe")
	}

	// Double unsubscribe must not panic on the closed channel.
	hub.Unsubscribe(ch)

	// Broadcasting with no subscribers is a no-op.
	hub.Broadcast(Notification{DoubtID: 2})
}
