package api

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/catalog/pkg/store"
)

// Locator resolves an entry to its live position and highlights it.
// Satisfied by the capture engine; nil when the server runs detached
// from a live source.
type Locator interface {
	ScrollTo(ctx context.Context, entryID string)
}

// Server is the API server for browsing and managing captured sessions
type Server struct {
	config  Config
	storer  store.Store
	locator Locator
	logger  *zap.Logger
	app     *fiber.App
}

// NewServer creates a new API server.
// The storer is injected to allow sharing with other components
// (e.g., the watch engine when serving alongside a live capture).
func NewServer(config Config, storer store.Store, locator Locator, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:  config,
		storer:  storer,
		locator: locator,
		logger:  logger,
		app:     app,
	}

	app.Get("/ping", s.handlePing)
	app.Get("/sessions", s.handleListSessions)
	app.Get("/sessions/:id", s.handleGetSession)
	app.Get("/sessions/:id/export", s.handleExportSession)
	app.Post("/sessions/:id/locate/:entry", s.handleLocateEntry)
	app.Delete("/sessions", s.handleClearSessions)

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
