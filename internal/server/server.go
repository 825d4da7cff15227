package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"claimpilot/internal/model"
	"claimpilot/internal/storage"
	"claimpilot/internal/store"
)

// ClaimProcessor runs the adjudication pipeline for one claim.
type ClaimProcessor interface {
	Run(ctx context.Context, claim model.Claim) (*model.ClaimDecision, error)
}

// Server is the claim-submission HTTP boundary.
type Server struct {
	app        *fiber.App
	processor  ClaimProcessor
	store      store.Store
	archiver   storage.Archiver // nil when archival is disabled
	uploadsDir string
	log        *slog.Logger
	addr       string
}

// New builds the fiber app with middleware and routes. archiver may be nil.
func New(cfg model.ServerConfig, processor ClaimProcessor, st store.Store, archiver storage.Archiver, reg prometheus.Registerer, log *slog.Logger) (*Server, error) {
	if log == nil {
		log = slog.Default()
	}

	app := fiber.New(fiber.Config{
		AppName:               "claimpilot",
		BodyLimit:             cfg.BodyLimit,
		DisableStartupMessage: true,
	})

	s := &Server{
		app:        app,
		processor:  processor,
		store:      st,
		archiver:   archiver,
		uploadsDir: cfg.UploadsDir,
		log:        log,
		addr:       fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
	}

	app.Use(RequestID())
	app.Use(RequestLogger(log))

	if reg != nil {
		pm, err := NewHTTPMetrics(reg)
		if err != nil {
			return nil, fmt.Errorf("register http metrics: %w", err)
		}
		app.Use(pm.Handler())
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}

	s.registerRoutes()
	return s, nil
}

// Listen blocks serving HTTP until shutdown.
func (s *Server) Listen() error {
	s.log.Info("http server listening", "addr", s.addr)
	return s.app.Listen(s.addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}
