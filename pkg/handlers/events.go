package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"chatd/pkg/events"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

// EventsHandler exposes the push stream: SSE on /events, websocket on /ws.
// Both bind one connection to the caller's multicast channel for the life of
// the connection.
type EventsHandler struct {
	registry  *events.Registry
	listener  *events.Listener
	heartbeat time.Duration
}

func NewEvents(registry *events.Registry, listener *events.Listener, heartbeat time.Duration) *EventsHandler {
	if heartbeat <= 0 {
		heartbeat = events.DefaultHeartbeat
	}
	return &EventsHandler{registry: registry, listener: listener, heartbeat: heartbeat}
}

// Subscribe streams events as server-sent events. Auth middleware runs
// before this, so user_id is always set; the stream is strictly
// server-to-client.
func (h *EventsHandler) Subscribe(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(int64)
	if userID <= 0 {
		return c.Status(401).JSON(fiber.Map{"error": "missing identity"})
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	registry := h.registry
	heartbeat := h.heartbeat
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		sub := registry.Subscribe(userID)
		defer sub.Close()

		log.Printf("[EVENTS] user %d subscribed (sse)", userID)
		// A write only fails once the client is gone; the heartbeat
		// bounds how long a dead connection can linger.
		if err := events.Stream(sub, heartbeat, &sseSink{w: w}, nil); err != nil {
			log.Printf("[EVENTS] user %d disconnected: %v", userID, err)
		}
	}))
	return nil
}

// SubscribeWS is the websocket flavor of the push stream. Inbound frames are
// read and discarded; the client closing the socket tears the session down.
func (h *EventsHandler) SubscribeWS() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals("user_id").(int64)
		if userID <= 0 {
			conn.Close()
			return
		}

		sub := h.registry.Subscribe(userID)
		defer sub.Close()

		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		log.Printf("[EVENTS] user %d subscribed (ws)", userID)
		if err := events.Stream(sub, h.heartbeat, &wsSink{conn: conn}, done); err != nil {
			log.Printf("[EVENTS] user %d disconnected: %v", userID, err)
		}
		conn.Close()
		<-done
	})
}

// Status reports registry occupancy and listener health, for operators.
func (h *EventsHandler) Status(c *fiber.Ctx) error {
	users, subscribers := h.registry.Stats()
	return c.JSON(fiber.Map{
		"users":       users,
		"subscribers": subscribers,
		"listener_up": h.listener.Healthy(),
	})
}

// sseSink frames events per the SSE wire format. Heartbeats are comment
// lines, which EventSource clients ignore but proxies count as traffic.
type sseSink struct {
	w *bufio.Writer
}

func (s *sseSink) WriteFrame(name string, data []byte) error {
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", name, data); err != nil {
		return err
	}
	return s.w.Flush()
}

func (s *sseSink) WriteHeartbeat() error {
	if _, err := s.w.WriteString(": keep-alive\n\n"); err != nil {
		return err
	}
	return s.w.Flush()
}

type wsFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type wsSink struct {
	conn *websocket.Conn
}

func (s *wsSink) WriteFrame(name string, data []byte) error {
	payload, err := json.Marshal(wsFrame{Event: name, Data: data})
	if err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, payload)
}

func (s *wsSink) WriteHeartbeat() error {
	return s.conn.WriteMessage(websocket.PingMessage, nil)
}
