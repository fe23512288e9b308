package broadcast

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/example/anon-chat-hub/modules/chat"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/contrib/websocket"
)

const (
	writeWait = 10 * time.Second

	// PongWait is how long a connection may stay silent before the reader
	// gives up on it. Pings go out well inside that window.
	PongWait   = 60 * time.Second
	pingPeriod = (PongWait * 9) / 10

	// DefaultSendBuffer is the per-client outbound queue length.
	DefaultSendBuffer = 256
)

// ErrHubStopped is returned when registering with a hub that has shut down.
var ErrHubStopped = errors.New("hub stopped")

// Conn is the part of a WebSocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Client is a connection registered with the hub.
type Client struct {
	ID   string
	conn Conn
	send chan []byte
	done chan struct{}
}

// NewClient wraps conn with an outbound queue of the given length.
func NewClient(id string, conn Conn, buffer int) *Client {
	if buffer <= 0 {
		buffer = DefaultSendBuffer
	}
	return &Client{
		ID:   id,
		conn: conn,
		send: make(chan []byte, buffer),
		done: make(chan struct{}),
	}
}

// Done is closed once the client's write pump has exited.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// WritePump drains the outbound queue onto the connection until the hub
// closes the queue or a write fails. The connection is closed on exit so the
// reader unblocks and the session ends.
func (c *Client) WritePump(logger types.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
		close(c.done)
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				logger.Debug("Write failed", "clientID", c.ID, "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Debug("Ping failed", "clientID", c.ID, "error", err)
				return
			}
		}
	}
}

type audience int

const (
	toOne audience = iota
	toAllExcept
	toAll
)

type outbound struct {
	audience audience
	connID   string
	event    string
	data     []byte
}

// Hub fans encoded frames out to registered clients. All client
// bookkeeping happens on the Run goroutine; enqueueing never blocks on a
// slow client.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan outbound
	done       chan struct{}
	count      atomic.Int64
	dropped    atomic.Uint64
	stopOnce   sync.Once
	logger     types.Logger
}

var _ chat.Emitter = (*Hub)(nil)

// NewHub creates a new Hub.
func NewHub(logger types.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan outbound, 256),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run starts the hub's main loop and returns when ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("Hub shutting down", "clients", len(h.clients))
			h.closeAllClients()
			h.stopOnce.Do(func() { close(h.done) })
			return
		case client := <-h.register:
			h.handleRegister(client)
		case client := <-h.unregister:
			h.handleUnregister(client)
		case msg := <-h.broadcast:
			h.handleBroadcast(msg)
		}
	}
}

// Wait blocks until the hub has stopped.
func (h *Hub) Wait() {
	<-h.done
}

func (h *Hub) closeAllClients() {
	for id, client := range h.clients {
		close(client.send)
		delete(h.clients, id)
	}
	h.count.Store(0)
}

func (h *Hub) handleRegister(client *Client) {
	if old, ok := h.clients[client.ID]; ok {
		close(old.send)
	}
	h.clients[client.ID] = client
	h.count.Store(int64(len(h.clients)))
	h.logger.Debug("Client registered", "clientID", client.ID)
}

func (h *Hub) handleUnregister(client *Client) {
	current, ok := h.clients[client.ID]
	if !ok || current != client {
		return
	}
	delete(h.clients, client.ID)
	close(client.send)
	h.count.Store(int64(len(h.clients)))
	h.logger.Debug("Client unregistered", "clientID", client.ID)
}

func (h *Hub) handleBroadcast(msg outbound) {
	switch msg.audience {
	case toOne:
		if client, ok := h.clients[msg.connID]; ok {
			h.enqueue(client, msg)
		}
	case toAllExcept, toAll:
		for id, client := range h.clients {
			if msg.audience == toAllExcept && id == msg.connID {
				continue
			}
			h.enqueue(client, msg)
		}
	}
}

func (h *Hub) enqueue(client *Client, msg outbound) {
	select {
	case client.send <- msg.data:
	default:
		h.dropped.Add(1)
		h.logger.Warn("Client send buffer full, dropping frame", "clientID", client.ID, "event", msg.event)
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) error {
	select {
	case h.register <- client:
		return nil
	case <-h.done:
		return ErrHubStopped
	}
}

// Unregister removes a client from the hub and closes its queue.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// EmitTo sends event to a single connection.
func (h *Hub) EmitTo(connID, event string, payload any) {
	h.emit(outbound{audience: toOne, connID: connID, event: event}, payload)
}

// EmitExcept sends event to every connection but connID.
func (h *Hub) EmitExcept(connID, event string, payload any) {
	h.emit(outbound{audience: toAllExcept, connID: connID, event: event}, payload)
}

// EmitAll sends event to every connection.
func (h *Hub) EmitAll(event string, payload any) {
	h.emit(outbound{audience: toAll, event: event}, payload)
}

func (h *Hub) emit(msg outbound, payload any) {
	data, err := chat.EncodeFrame(msg.event, payload)
	if err != nil {
		h.logger.Error("Failed to encode frame", "event", msg.event, "error", err)
		return
	}
	msg.data = data

	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}

// ClientCount returns the number of registered clients.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// DroppedFrames returns how many frames were discarded for slow clients.
func (h *Hub) DroppedFrames() uint64 {
	return h.dropped.Load()
}
