package api

import (
	"errors"
	"time"

	domain "github.com/example/anon-chat-hub/domain/chat"
	"github.com/example/anon-chat-hub/modules/broadcast"
	"github.com/example/anon-chat-hub/modules/chat"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxFrameSize bounds a single inbound WebSocket frame.
const maxFrameSize = 64 * 1024

// setupRoutes configures all HTTP routes.
func (m *APIModule) setupRoutes(app *fiber.App) {
	app.Get("/health", m.healthHandler)

	// WebSocket endpoint
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(m.handleWebSocket, websocket.Config{
		Origins:         m.cfg.AllowedOrigins,
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
	}))

	api := app.Group("/api/v1")
	api.Get("/users", m.listUsers)
	api.Get("/chat", m.listMessages)
	api.Get("/stats", m.getStats)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(m.stats.Registry(), promhttp.HandlerOpts{})))
}

// healthHandler handles GET /health.
func (m *APIModule) healthHandler(c *fiber.Ctx) error {
	participants, messages := m.room.Counts()
	return c.JSON(HealthResponse{
		Status: "healthy",
		Details: map[string]any{
			"module":            "api",
			"connected_clients": m.hub.ClientCount(),
			"participants":      participants,
			"messages":          messages,
		},
	})
}

// listUsers handles GET /api/v1/users.
func (m *APIModule) listUsers(c *fiber.Ctx) error {
	users, err := m.chatAdapter.ListParticipants(c.UserContext())
	if err != nil {
		m.logger.Error("Failed to list participants", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "list_failed",
			Message: "Failed to list participants",
		})
	}
	if users == nil {
		users = []domain.Participant{}
	}
	return c.JSON(UsersResponse{Users: users})
}

// listMessages handles GET /api/v1/chat.
func (m *APIModule) listMessages(c *fiber.Ctx) error {
	messages, err := m.chatAdapter.ListMessages(c.UserContext())
	if err != nil {
		m.logger.Error("Failed to list messages", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "list_failed",
			Message: "Failed to list messages",
		})
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return c.JSON(ChatResponse{Messages: messages})
}

// getStats handles GET /api/v1/stats.
func (m *APIModule) getStats(c *fiber.Ctx) error {
	return c.JSON(StatsResponse{
		Totals:           m.stats.Snapshot(),
		ConnectedClients: m.hub.ClientCount(),
		DroppedFrames:    m.hub.DroppedFrames(),
	})
}

// handleWebSocket handles WebSocket connections at /ws.
func (m *APIModule) handleWebSocket(c *websocket.Conn) {
	connID := m.newConnID()
	logger := m.logger.With("connID", connID)

	client := broadcast.NewClient(connID, c, m.cfg.SendBuffer)
	if err := m.hub.Register(client); err != nil {
		logger.Warn("Rejecting connection", "error", err)
		return
	}
	go client.WritePump(logger)

	session := m.room.Connect(connID)
	defer func() {
		session.Disconnect()
		m.hub.Unregister(client)
		<-client.Done()
		logger.Debug("WebSocket client disconnected")
	}()

	logger.Debug("WebSocket client connected", "remote", c.RemoteAddr().String())

	c.SetReadLimit(maxFrameSize)
	_ = c.SetReadDeadline(time.Now().Add(broadcast.PongWait))
	c.SetPongHandler(func(string) error {
		return c.SetReadDeadline(time.Now().Add(broadcast.PongWait))
	})

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("Read error", "error", err)
			}
			return
		}

		_ = c.SetReadDeadline(time.Now().Add(broadcast.PongWait))
		if err := session.Handle(data); err != nil {
			switch {
			case errors.Is(err, chat.ErrMalformedFrame), errors.Is(err, chat.ErrMalformedPayload):
				logger.Warn("Dropping malformed frame", "error", err)
			case errors.Is(err, chat.ErrUnknownEvent):
				logger.Debug("Ignoring unknown event", "error", err)
			case errors.Is(err, chat.ErrSessionClosed):
				return
			default:
				logger.Error("Failed to handle frame", "error", err)
			}
		}
	}
}
