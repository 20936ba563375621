// Package web provides the HTTP surface of the bridge: the health endpoints
// polled by the external monitor and the telephony media-stream WebSocket.
package web

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const (
	ServiceName = "voice-bridge"
	Version     = "0.3.0"
)

// MediaStreamPath is the fixed path the telephony provider connects to.
const MediaStreamPath = "/media-stream"

// Server is the bridge HTTP server.
type Server struct {
	app     *fiber.App
	port    string
	started time.Time
}

// NewServer creates the fiber app. handler runs one accepted telephony
// connection; it is invoked on the connection's own goroutine and blocks for
// the lifetime of the call.
func NewServer(port string, handler func(*websocket.Conn)) *Server {
	s := &Server{
		port:    port,
		started: time.Now(),
	}

	app := fiber.New(fiber.Config{
		AppName:               ServiceName,
		DisableStartupMessage: true,
	})

	app.Get("/", s.handleRoot)
	app.Get("/health", s.handleHealth)

	// WebSocket upgrade middleware
	app.Use(MediaStreamPath, func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get(MediaStreamPath, websocket.New(handler))

	s.app = app
	return s
}

// Start starts the server and blocks until shutdown.
func (s *Server) Start() error {
	return s.app.Listen(":" + s.port)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) handleRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": ServiceName,
		"version": Version,
	})
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"ok":             true,
		"service":        ServiceName,
		"version":        Version,
		"uptime_seconds": int64(time.Since(s.started).Seconds()),
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	})
}
