package handler

import (
	"bufio"
	"time"

	"github.com/gofiber/fiber/v2"

	"docstore/internal/events"
	"docstore/internal/http/middleware"
)

// StreamEvents sends the caller's document events as server-sent events.
// A comment line every keepAlive keeps proxies from closing idle streams and
// detects disconnected clients.
//
// @Summary  Document event stream
// @Tags     events
// @Produce  text/event-stream
// @Param    token query string false "access token, for EventSource clients"
// @Success  200
// @Security BearerAuth
// @Router   /events [get]
func StreamEvents(hub *events.Hub, keepAlive time.Duration) fiber.Handler {
	if keepAlive <= 0 {
		keepAlive = 15 * time.Second
	}
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, "text/event-stream")
		c.Set(fiber.HeaderCacheControl, "no-cache")
		c.Set(fiber.HeaderConnection, "keep-alive")
		c.Set("X-Accel-Buffering", "no")

		client := hub.Subscribe(middleware.UserID(c))
		c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
			defer hub.Unsubscribe(client)

			if err := events.WriteComment(w, "connected"); err != nil || w.Flush() != nil {
				return
			}
			ticker := time.NewTicker(keepAlive)
			defer ticker.Stop()

			for {
				select {
				case ev, ok := <-client.Events():
					if !ok {
						return
					}
					if err := events.WriteSSE(w, ev); err != nil {
						return
					}
				case <-ticker.C:
					if err := events.WriteComment(w, "ping"); err != nil {
						return
					}
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		})
		return nil
	}
}
