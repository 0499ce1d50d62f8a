// Package web serves the video processing HTTP API.
package web

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-centroid/internal/log"
	"github.com/teslashibe/go-centroid/internal/metrics"
	"github.com/teslashibe/go-centroid/pkg/hub"
	"github.com/teslashibe/go-centroid/pkg/jobs"
	"github.com/teslashibe/go-centroid/pkg/video"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// Config holds server settings.
type Config struct {
	VideoDir   string
	ResultsDir string

	// Debug enables request logging.
	Debug bool
}

// Server is the HTTP API server.
type Server struct {
	app     *fiber.App
	config  Config
	jobs    *jobs.Manager
	thumbs  video.Thumbnailer
	metrics *metrics.Collector
	events  *hub.Hub
}

// NewServer wires the routes. events may be nil to disable /ws/jobs.
func NewServer(cfg Config, mgr *jobs.Manager, thumbs video.Thumbnailer, m *metrics.Collector, events *hub.Hub) *Server {
	s := &Server{
		config:  cfg,
		jobs:    mgr,
		thumbs:  thumbs,
		metrics: m,
		events:  events,
	}

	app := fiber.New(fiber.Config{
		AppName:               "centroid-server",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(cors.New())
	if cfg.Debug {
		app.Use(logger.New())
	}

	app.Get("/videos", s.handleListVideos)
	app.Get("/thumbnail/:filename", s.handleThumbnail)
	app.Post("/process/:filename", s.handleProcess)
	app.Get("/process/:jobId/status", s.handleJobStatus)
	app.Get("/jobs", s.handleListJobs)
	app.Static("/results", cfg.ResultsDir)

	app.Get("/health", s.handleHealth)
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	if events != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		app.Get("/ws/jobs", websocket.New(s.handleJobsWS))
	}

	s.app = app
	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	log.Info("http server listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.app.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("web: shutdown: %w", err)
	}
	return nil
}
