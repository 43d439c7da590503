package doubts

import (
	"sync"
	"time"
)

// Notification is the payload broadcast when a student raises a doubt.
type Notification struct {
	DoubtID       uint      `json:"doubt_id"`
	ChapterNodeID uint      `json:"chapter_node_id"`
	StudentID     uint      `json:"student_id"`
	StudentName   string    `json:"student_name"`
	Message       string    `json:"message"`
	CreatedAt     time.Time `json:"created_at"`
}

// Hub fans doubt notifications out to connected admin streams. Delivery is
// fire-and-forget and at-most-once: a slow or disconnected subscriber simply
// misses the event, the next full fetch recovers the state.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[chan Notification]struct{}
}

// NewHub creates an empty notification hub
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[chan Notification]struct{}),
	}
}

// Subscribe registers a new listener and returns its channel. The caller must
// Unsubscribe when the stream closes.
func (h *Hub) Subscribe() chan Notification {
	ch := make(chan Notification, 8)
	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener and closes its channel.
func (h *Hub) Unsubscribe(ch chan Notification) {
	h.mu.Lock()
	if _, ok := h.subscribers[ch]; ok {
		delete(h.subscribers, ch)
		close(ch)
	}
	h.mu.Unlock()
}

// Broadcast delivers a notification to every current subscriber without
// blocking. Full buffers drop the event for that subscriber.
func (h *Hub) Broadcast(n Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subscribers {
		select {
		case ch <- n:
		default:
		}
	}
}

// SubscriberCount returns the number of connected listeners
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
