package api

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"

	chat "github.com/example/terminal-chat/domain/chat"
	"github.com/example/terminal-chat/modules/broker"
)

// Rate limiting constants for message-bearing events.
const (
	eventsPerSecond = 10
	burstSize       = 20
)

// wsSink adapts one WebSocket connection into a broker.Sink. Writes are
// serialized; broadcasts arrive from peer goroutines while the read loop
// may be replying on the same socket.
type wsSink struct {
	mu sync.Mutex
	c  *websocket.Conn
}

func (s *wsSink) Send(ev chat.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.WriteJSON(ev)
}

// rateLimiter implements a simple token bucket.
type rateLimiter struct {
	mu         sync.Mutex
	tokens     int
	maxTokens  int
	refillRate int // tokens per second
	lastRefill time.Time
}

func newRateLimiter(maxTokens, refillRate int) *rateLimiter {
	return &rateLimiter{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

func (r *rateLimiter) allow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(r.lastRefill)
	tokensToAdd := int(elapsed.Seconds()) * r.refillRate
	if tokensToAdd > 0 {
		r.tokens += tokensToAdd
		if r.tokens > r.maxTokens {
			r.tokens = r.maxTokens
		}
		r.lastRefill = now
	}

	if r.tokens > 0 {
		r.tokens--
		return true
	}
	return false
}

// handleWebSocket runs one connection's read loop. Events from the same
// connection reach the router strictly in receipt order; the loop blocks
// while an event is being handled.
func (m *Module) handleWebSocket(c *websocket.Conn) {
	connID := uuid.New().String()
	sink := &wsSink{c: c}
	conn := broker.NewConnection(connID, sink)
	limiter := newRateLimiter(burstSize, eventsPerSecond)
	router := m.broker.Router()

	defer func() {
		router.Disconnect(conn)
		_ = c.Close()
		log.Printf("[api] WebSocket client disconnected: %s", connID)
	}()

	log.Printf("[api] WebSocket client connected: %s", connID)

	for {
		_, msgBytes, err := c.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[api] Read error from %s: %v", connID, err)
			}
			break
		}

		var ev chat.Event
		if err := json.Unmarshal(msgBytes, &ev); err != nil {
			_ = sink.Send(chat.Event{Type: chat.EventError, Error: "invalid event format"})
			continue
		}

		if ev.Type == chat.EventChatMessage || ev.Type == chat.EventSendFile {
			if !limiter.allow() {
				_ = sink.Send(chat.Event{Type: chat.EventError, Error: "rate limit exceeded, slow down"})
				continue
			}
		}

		router.HandleEvent(context.Background(), conn, ev)
	}
}
