package live

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/nepal-lottery/lottery-backend/internal/config"
)

const (
	EventDigitUpserted = "digit_result.upserted"
	EventDigitDeleted  = "digit_result.deleted"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 300 * time.Second
	pingPeriod   = 60 * time.Second
	sendBuffer   = 16
	maxReadBytes = 512
)

// Event is one message pushed to every subscriber of the live feed.
type Event struct {
	Type string    `json:"type"`
	Data any       `json:"data"`
	At   time.Time `json:"at"`
}

// Client is a single websocket subscriber.
type Client struct {
	ID     string
	Conn   *websocket.Conn
	Send   chan []byte
	closed bool
	mu     sync.Mutex
}

// SafeSend queues message unless the client is closed or its buffer is full.
func (c *Client) SafeSend(message []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.Send <- message:
		return true
	default:
		return false
	}
}

// SafeClose closes Send at most once.
func (c *Client) SafeClose() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		close(c.Send)
		c.closed = true
	}
}

// Hub fans events out to every connected client. Subscribers only listen;
// anything they send is discarded.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	quit       chan struct{}
	stopOnce   sync.Once
	mu         sync.RWMutex
}

// NewHub creates a Hub and starts its event loop.
func NewHub() *Hub {
	h := &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		quit:       make(chan struct{}),
	}
	go h.Run()
	return h
}

// Run is the hub's event loop. It returns after Stop.
func (h *Hub) Run() {
	log := config.GetLogger().WithField("module", "live")
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c.ID] = c
			h.mu.Unlock()
			log.WithField("client", c.ID).Debug("client registered")

		case c := <-h.unregister:
			h.mu.Lock()
			if registered, ok := h.clients[c.ID]; ok {
				registered.SafeClose()
				delete(h.clients, c.ID)
			}
			h.mu.Unlock()
			log.WithField("client", c.ID).Debug("client unregistered")

		case msg := <-h.broadcast:
			h.mu.RLock()
			for _, c := range h.clients {
				if !c.SafeSend(msg) {
					log.WithField("client", c.ID).Warn("dropping live event, client buffer full or closed")
				}
			}
			h.mu.RUnlock()

		case <-h.quit:
			h.mu.Lock()
			for id, c := range h.clients {
				c.SafeClose()
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Stop ends the event loop and closes every client.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })
}

// ClientCount is the number of registered clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues an event for every client. It never blocks the caller;
// when the queue is full the event is dropped and logged.
func (h *Hub) Broadcast(eventType string, data any) {
	msg, err := json.Marshal(Event{Type: eventType, Data: data, At: time.Now().UTC()})
	if err != nil {
		config.LogError("live", "Broadcast", "marshal event", eventType, err)
		return
	}
	select {
	case h.broadcast <- msg:
	case <-h.quit:
	default:
		config.GetLogger().WithField("type", eventType).Warn("live broadcast queue full, event dropped")
	}
}

// Serve registers conn and starts its pumps. It returns immediately.
func (h *Hub) Serve(conn *websocket.Conn) *Client {
	c := &Client{
		ID:   uuid.New().String(),
		Conn: conn,
		Send: make(chan []byte, sendBuffer),
	}
	select {
	case h.register <- c:
	case <-h.quit:
		_ = conn.Close()
		return c
	}
	go h.readPump(c)
	go c.writePump()
	return c
}

// readPump only exists to process pongs and notice disconnects.
func (h *Hub) readPump(c *Client) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.quit:
		}
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxReadBytes)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				config.GetLogger().WithField("client", c.ID).Warnf("live socket closed: %v", err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				config.GetLogger().WithField("client", c.ID).Debugf("live write failed: %v", err)
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
