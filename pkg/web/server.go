// Package web provides a small live dashboard for the perception loop:
// a JSON status snapshot plus a websocket stream of loop events.
package web

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/avishur/go-fixate/pkg/control"
)

const eventBuffer = 200

// Server exposes the loop's state over HTTP and websocket. It
// implements control.Emitter; Emit never blocks the tick.
type Server struct {
	app *fiber.App
	log *slog.Logger

	mu     sync.RWMutex
	last   control.Event
	recent []control.Event

	events *hub
}

// NewServer builds the dashboard server.
func NewServer(logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		log:    logger,
		recent: make([]control.Event, 0, eventBuffer),
		events: newHub(),
	}

	app := fiber.New(fiber.Config{
		AppName:               "fixate dashboard",
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/events", s.handleEvents)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/events", websocket.New(func(conn *websocket.Conn) {
		newClient(conn).run(s.events)
	}))

	s.app = app
	return s
}

// Emit implements control.Emitter: store the event and broadcast it.
func (s *Server) Emit(e control.Event) {
	s.mu.Lock()
	s.last = e
	s.recent = append(s.recent, e)
	if len(s.recent) > eventBuffer {
		s.recent = s.recent[1:]
	}
	s.mu.Unlock()

	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	s.events.broadcast(data)
}

// Listen serves on addr. Blocks until Shutdown.
func (s *Server) Listen(addr string) error {
	s.log.Info("dashboard listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) handleStatus(c *fiber.Ctx) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return c.JSON(s.last)
}

func (s *Server) handleEvents(c *fiber.Ctx) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return c.JSON(s.recent)
}
