// internal/server/handlers/websocket.go

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"

	"socialpulse/internal/domain/content"
)

// Subscriber is the part of a NATS connection the stream needs
type Subscriber interface {
	Subscribe(subj string, cb nats.MsgHandler) (*nats.Subscription, error)
}

var _ Subscriber = (*nats.Conn)(nil)

// WebSocketClient represents a connected WebSocket client
type WebSocketClient struct {
	id                string
	conn              *websocket.Conn
	send              chan []byte
	done              chan struct{}
	closeOnce         sync.Once
	service           PulseService
	mu                sync.Mutex
	natsSubscriptions []*nats.Subscription
}

// WebSocketConfig contains configuration for WebSocket connections
type WebSocketConfig struct {
	// Time allowed to write a message to the peer
	WriteWait time.Duration

	// Time allowed to read the next pong message from the peer
	PongWait time.Duration

	// Send pings to peer with this period
	PingPeriod time.Duration

	// Maximum message size allowed from peer
	MaxMessageSize int64
}

// DefaultWebSocketConfig returns the default WebSocket configuration
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     (60 * time.Second * 9) / 10,
		MaxMessageSize: 64 * 1024,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// origins are enforced by the CORS middleware
		return true
	},
}

// PulseWebSocketHandler streams pulse events published on subjects to the
// client. The current pulse is sent as a snapshot on connect; the client
// may send {"type":"refresh"} to force a new aggregation.
func PulseWebSocketHandler(sub Subscriber, subjects []string, service PulseService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sub == nil {
			respondWithError(w, http.StatusServiceUnavailable, "Event stream unavailable", nil)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("Failed to upgrade to WebSocket: %v", err)
			return
		}

		client := &WebSocketClient{
			id:      uuid.New().String(),
			conn:    conn,
			send:    make(chan []byte, 256),
			done:    make(chan struct{}),
			service: service,
		}

		go client.writePump()
		go client.readPump()

		if err := client.subscribe(sub, subjects); err != nil {
			log.Printf("Failed to subscribe to pulse events: %v", err)
			client.closeConnection()
			return
		}

		client.sendJSON(map[string]interface{}{
			"type":      "welcome",
			"client_id": client.id,
			"subjects":  subjects,
			"time":      time.Now(),
		})

		log.Printf("New WebSocket connection %s for pulse events", client.id)

		client.sendSnapshot(r.Context())
	}
}

// readPump reads client commands until the connection closes
func (c *WebSocketClient) readPump() {
	config := DefaultWebSocketConfig()

	defer c.closeConnection()

	c.conn.SetReadLimit(config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(config.PongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		c.processIncomingMessage(message)
	}
}

// writePump pumps queued messages to the WebSocket connection
func (c *WebSocketClient) writePump() {
	config := DefaultWebSocketConfig()
	ticker := time.NewTicker(config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.closeConnection()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// processIncomingMessage handles a client command
func (c *WebSocketClient) processIncomingMessage(message []byte) {
	var msg struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Printf("Failed to parse WebSocket message: %v", err)
		return
	}

	switch msg.Type {
	case "refresh":
		// the fresh pulse comes back through the event subscription
		if _, err := c.service.Refresh(context.Background()); err != nil {
			c.sendError(err)
		}

	case "snapshot":
		c.sendSnapshot(context.Background())

	case "":
		log.Printf("Missing message type")

	default:
		log.Printf("Unknown message type: %s", msg.Type)
	}
}

// subscribe forwards every event on subjects to the client
func (c *WebSocketClient) subscribe(sub Subscriber, subjects []string) error {
	for _, subject := range subjects {
		s, err := sub.Subscribe(subject, func(msg *nats.Msg) {
			c.queue(msg.Data)
		})
		if err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
		}
		if s != nil {
			c.mu.Lock()
			c.natsSubscriptions = append(c.natsSubscriptions, s)
			c.mu.Unlock()
		}
	}
	return nil
}

// sendSnapshot sends the current pulse
func (c *WebSocketClient) sendSnapshot(ctx context.Context) {
	if c.service == nil {
		return
	}

	result, err := c.service.Pulse(ctx)
	if err != nil {
		c.sendError(err)
		if !errors.Is(err, content.ErrNoProfile) {
			return
		}
	}

	c.sendJSON(map[string]interface{}{
		"type": "snapshot",
		"data": result,
	})
}

func (c *WebSocketClient) sendError(err error) {
	c.sendJSON(map[string]interface{}{
		"type":  "error",
		"error": err.Error(),
	})
}

func (c *WebSocketClient) sendJSON(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("Failed to marshal WebSocket message: %v", err)
		return
	}
	c.queue(data)
}

// queue drops the message when the client is gone or too slow
func (c *WebSocketClient) queue(data []byte) {
	select {
	case <-c.done:
	case c.send <- data:
	default:
		log.Printf("WebSocket client %s is too slow, dropping message", c.id)
	}
}

// closeConnection unsubscribes and closes the connection once
func (c *WebSocketClient) closeConnection() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		for _, sub := range c.natsSubscriptions {
			sub.Unsubscribe()
		}
		c.natsSubscriptions = nil
		c.mu.Unlock()

		close(c.done)
		c.conn.Close()

		log.Printf("WebSocket connection %s closed", c.id)
	})
}
