package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"slices"
	"strings"
	"time"

	"github.com/example/anon-chat-hub/modules/broadcast"
	"github.com/example/anon-chat-hub/modules/chat"
	"github.com/example/anon-chat-hub/modules/stats"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	nanoid "github.com/jaevor/go-nanoid"
)

const connIDLength = 21

// Config holds the HTTP front-end settings.
type Config struct {
	Addr           string
	AllowedOrigins []string
	SendBuffer     int
}

// APIModule is the HTTP API module with WebSocket support.
type APIModule struct {
	app         *fiber.App
	cfg         Config
	chatAdapter chat.ChatPort
	room        *chat.Room
	hub         *broadcast.Hub
	stats       *stats.StatsModule
	newConnID   func() string
	logger      types.Logger
}

// Compile-time interface checks.
var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// NewModule creates a new APIModule.
func NewModule(cfg Config, logger types.Logger) (*APIModule, error) {
	newConnID, err := nanoid.Standard(connIDLength)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection id generator: %w", err)
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = broadcast.DefaultSendBuffer
	}
	return &APIModule{
		cfg:       cfg,
		newConnID: newConnID,
		logger:    logger,
	}, nil
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"chat"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "chat":
		m.chatAdapter = chat.NewChatAdapter(container)
	}
}

// SetHub sets the broadcast hub (called from main.go).
func (m *APIModule) SetHub(hub *broadcast.Hub) {
	m.hub = hub
}

// SetRoom sets the chat room WebSocket sessions bind to.
func (m *APIModule) SetRoom(room *chat.Room) {
	m.room = room
}

// SetStats sets the stats module backing /api/v1/stats and /metrics.
func (m *APIModule) SetStats(s *stats.StatsModule) {
	m.stats = s
}

// Start builds the Fiber app and starts listening.
func (m *APIModule) Start(_ context.Context) error {
	if err := m.checkDependencies(); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", m.cfg.Addr)
	if err != nil {
		return fmt.Errorf("HTTP server failed to listen on %s: %w", m.cfg.Addr, err)
	}

	m.app = m.newApp()
	go func() {
		if err := m.app.Listener(ln); err != nil {
			m.logger.Error("HTTP server error", "error", err)
		}
	}()

	m.logger.Info("HTTP server started", "addr", ln.Addr().String(), "origins", strings.Join(m.cfg.AllowedOrigins, ","))
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(ctx context.Context) error {
	if m.app == nil {
		return nil
	}
	m.logger.Info("Shutting down HTTP server")
	if err := m.app.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// Health returns the health status.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	details := map[string]any{"addr": m.cfg.Addr}
	if m.hub != nil {
		details["connected_clients"] = m.hub.ClientCount()
	}
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: details,
	}
}

func (m *APIModule) checkDependencies() error {
	var errs []error
	if m.chatAdapter == nil {
		errs = append(errs, errors.New("chat adapter dependency not set"))
	}
	if m.room == nil {
		errs = append(errs, errors.New("chat room dependency not set"))
	}
	if m.hub == nil {
		errs = append(errs, errors.New("broadcast hub dependency not set"))
	}
	if m.stats == nil {
		errs = append(errs, errors.New("stats dependency not set"))
	}
	return errors.Join(errs...)
}

// newApp builds the Fiber app with middleware and routes.
func (m *APIModule) newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "anon-chat-hub",
		DisableStartupMessage: true,
		ErrorHandler:          m.errorHandler,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          60 * time.Second,
		IdleTimeout:           120 * time.Second,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${method} ${path} ${status} - ${latency}\n",
		Next: func(c *fiber.Ctx) bool {
			return c.Get(fiber.HeaderUpgrade) == "websocket"
		},
	}))
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(m.cfg.AllowedOrigins, ","),
		AllowMethods:     "GET,OPTIONS",
		AllowCredentials: !slices.Contains(m.cfg.AllowedOrigins, "*"),
	}))

	m.setupRoutes(app)
	return app
}

// errorHandler handles errors globally.
func (m *APIModule) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	if code >= fiber.StatusInternalServerError {
		m.logger.Error("HTTP error", "code", code, "path", c.Path(), "error", err)
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}
