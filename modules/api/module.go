package api

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/go-monolith/mono"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/terminal-chat/modules/auth"
	"github.com/example/terminal-chat/modules/broker"
	"github.com/example/terminal-chat/modules/registry"
	"github.com/example/terminal-chat/modules/store"
)

// Module is the HTTP and WebSocket transport: the session store and token
// issuer contracts over REST, plus the /ws event channel.
type Module struct {
	app      *fiber.App
	store    *store.Module
	auth     *auth.Module
	broker   *broker.Module
	registry *registry.Module
	port     string
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a new api module. The port comes from PORT, defaulting
// to 3001.
func NewModule(storeModule *store.Module, authModule *auth.Module, brokerModule *broker.Module, registryModule *registry.Module) *Module {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}
	return &Module{
		store:    storeModule,
		auth:     authModule,
		broker:   brokerModule,
		registry: registryModule,
		port:     port,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "api"
}

// newApp builds the Fiber application with all routes attached.
func (m *Module) newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          60 * time.Second,
		IdleTimeout:           120 * time.Second,
	})

	app.Use(recover.New())
	app.Use(loggerMiddleware())

	m.setupRoutes(app)
	return app
}

// Start initializes the Fiber server.
func (m *Module) Start(_ context.Context) error {
	m.app = m.newApp()

	go func() {
		if err := m.app.Listen(":" + m.port); err != nil {
			log.Printf("[api] HTTP server error: %v", err)
		}
	}()

	log.Printf("[api] HTTP server started on :%s", m.port)
	return nil
}

// Stop shuts down the Fiber server.
func (m *Module) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	log.Println("[api] Shutting down HTTP server...")
	return m.app.Shutdown()
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port":         m.port,
			"active_rooms": m.registry.Registry().RoomCount(),
		},
	}
}

// setupRoutes configures the HTTP contract and the WebSocket endpoint.
func (m *Module) setupRoutes(app *fiber.App) {
	app.Get("/health", m.healthHandler)

	app.Post("/chatrooms", m.createRoom)
	app.Get("/chatrooms", m.listRooms)
	app.Get("/chatrooms/:room/messages", m.roomMessages)

	app.Get("/auth/tokens/:username", m.mintToken)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(m.handleWebSocket))
}

// errorHandler converts Fiber errors into the API error shape.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{Message: message})
}

// loggerMiddleware returns a Fiber middleware for request logging.
func loggerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get("Upgrade") == "websocket" {
			return c.Next()
		}
		err := c.Next()
		log.Printf("[api] %s %s %d", c.Method(), c.Path(), c.Response().StatusCode())
		return err
	}
}
