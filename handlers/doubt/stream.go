package doubt

import (
	"bufio"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sreevasthav1710/study10/utils/sse"
)

// Stream handles GET /api/v1/admin/doubts/stream (admin only): an SSE feed of
// doubt-created events for the tutor dashboard. Delivery is at-most-once with
// no backfill; a reconnecting client does a full fetch to catch up.
func (h *DoubtHandler) Stream(c *fiber.Ctx) error {
	hub := h.doubtService.Hub()

	// Set SSE headers
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("Transfer-Encoding", "chunked")
	c.Set("X-Accel-Buffering", "no") // Disable nginx buffering

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		// The Fiber context is not valid inside the stream goroutine.
		events := hub.Subscribe()
		defer hub.Unsubscribe(events)

		if err := sse.Send(w, sse.Event{Event: "connected", Data: "ok"}); err != nil {
			return
		}

		keepAlive := time.NewTicker(30 * time.Second)
		defer keepAlive.Stop()

		for {
			select {
			case n, ok := <-events:
				if !ok {
					return
				}
				if err := sse.Send(w, sse.Event{Event: "doubt_created", Data: n}); err != nil {
					// Client went away; hub drops further events for us.
					return
				}
			case <-keepAlive.C:
				if err := sse.SendKeepAlive(w); err != nil {
					return
				}
			}
		}
	})

	return nil
}
