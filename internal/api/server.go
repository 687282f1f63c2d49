// Package api serves stored interview results over HTTP. It is read-only.
package api

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"interview-screening-bot/internal/logger"
	"interview-screening-bot/internal/metrics"
	"interview-screening-bot/internal/storage"
)

// SessionCounter reports how many interviews are in progress.
type SessionCounter interface {
	ActiveSessions() int
}

// Options wires a Server. Store is required.
type Options struct {
	Store    storage.Gateway
	Metrics  *metrics.Metrics
	Sessions SessionCounter
	// Token enables bearer authentication on /api/v1 when non-empty.
	Token             string
	RequestsPerMinute int
	Logger            *zap.Logger
}

type Server struct {
	app      *fiber.App
	store    storage.Gateway
	metrics  *metrics.Metrics
	sessions SessionCounter
	logger   *zap.Logger
}

func NewServer(opts Options) (*Server, error) {
	if opts.Store == nil {
		return nil, errors.New("api: store is required")
	}
	l := logger.OrNop(opts.Logger)

	s := &Server{
		store:    opts.Store,
		metrics:  opts.Metrics,
		sessions: opts.Sessions,
		logger:   l,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "interview-bot",
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			if code >= fiber.StatusInternalServerError {
				l.Error("api request failed", zap.String("path", c.Path()), zap.Error(err))
			}
			return failure(c, code, err.Error())
		},
	})
	s.app.Use(recover.New())
	s.app.Use(requestLogger(l))

	s.app.Get("/health", s.health)

	v1 := s.app.Group("/api/v1", rateLimiter(opts.RequestsPerMinute))
	if opts.Token != "" {
		v1.Use(bearerAuth(opts.Token))
	}
	v1.Get("/candidates", s.listCandidates)
	v1.Get("/candidates/:id", s.getCandidate)
	v1.Get("/candidates/:id/report", s.getReport)
	v1.Get("/metrics", s.getMetrics)

	return s, nil
}

// App exposes the fiber application, mainly for app.Test.
func (s *Server) App() *fiber.App { return s.app }

// Listen serves on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.logger.Info("api listening", zap.String("addr", addr))
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
