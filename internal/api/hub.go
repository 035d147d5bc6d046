package api

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"stockgame/internal/actions"
	"stockgame/internal/events"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second

	sendBuffer   = 256
	maxFrameSize = 4096
)

// Compile-time check to ensure Hub can sit on the event bus
var _ events.Sink = (*Hub)(nil)

// Hub maintains active WebSocket connections and broadcasts events to them
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
}

// Client is one websocket connection. Its ID doubles as the session for
// per-connection perks and rate limits.
type Client struct {
	ID   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
	}
}

func newClient(hub *Hub, conn *websocket.Conn, backlog int) *Client {
	return &Client{
		ID:   uuid.NewString(),
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBuffer+backlog),
	}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()
	log.Info().Str("client", client.ID).Msg("client connected")
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		log.Info().Str("client", client.ID).Msg("client disconnected")
	}
}

// Count returns the number of connected clients
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish sends ev to every client. A client whose buffer is full is
// disconnected rather than silently missing events.
func (h *Hub) Publish(_ context.Context, ev events.Event) error {
	data, err := encodeEvent(ev)
	if err != nil {
		return err
	}

	var slow []*Client
	h.mu.RLock()
	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		log.Warn().Str("client", client.ID).Int64("seq", ev.Seq).Msg("client too slow, dropping")
		h.Unregister(client)
	}
	return nil
}

// CloseAll disconnects every client. Write pumps send a close frame.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
	}
}

// enqueue queues a frame for the write pump before the client is registered
func (c *Client) enqueue(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ReadPump answers every action frame with exactly one ack until the
// connection drops.
func (c *Client) ReadPump(handler *actions.Handler, limiter *RateLimiter) {
	defer func() {
		c.hub.Unregister(c)
		handler.Forget(c.ID)
		limiter.Forget(c.ID)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("client", c.ID).Msg("read failed")
			}
			return
		}

		reply := c.handle(handler, limiter, msg)
		data, err := json.Marshal(reply)
		if err != nil {
			log.Error().Err(err).Str("client", c.ID).Msg("encode reply")
			continue
		}
		if !c.reply(data) {
			return
		}
	}
}

func (c *Client) handle(handler *actions.Handler, limiter *RateLimiter, msg []byte) Reply {
	var req Request
	if err := json.Unmarshal(msg, &req); err != nil || req.Event == "" {
		return Reply{Type: TypeAck, ID: req.ID, Event: req.Event, Data: actions.Failure(MsgInvalidRequest)}
	}
	reply := Reply{Type: TypeAck, ID: req.ID, Event: req.Event}

	if !limiter.Allow(c.ID) {
		reply.Data = actions.Failure(MsgTooManyRequests)
		return reply
	}

	resp, err := handler.Handle(context.Background(), c.ID, req.Event, req.Data)
	if err != nil {
		log.Debug().Err(err).Str("client", c.ID).Str("event", req.Event).Msg("action rejected")
	}
	reply.Data = resp
	return reply
}

// reply queues an ack. A client whose buffer is full is disconnected like a
// slow broadcast reader. It reports false once the client is gone.
func (c *Client) reply(data []byte) bool {
	c.hub.mu.RLock()
	if !c.hub.clients[c] {
		c.hub.mu.RUnlock()
		return false
	}
	select {
	case c.send <- data:
		c.hub.mu.RUnlock()
		return true
	default:
	}
	c.hub.mu.RUnlock()

	log.Warn().Str("client", c.ID).Msg("reply buffer full, dropping client")
	c.hub.Unregister(c)
	return false
}
