package api

import (
	"bytes"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"interview-screening-bot/internal/metrics"
	"interview-screening-bot/internal/storage"
)

type metricsView struct {
	metrics.Snapshot
	ActiveSessions int `json:"active_sessions"`
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) listCandidates(c *fiber.Ctx) error {
	f, err := storage.ParseFilter(c.Query("filter"))
	if err != nil {
		return failure(c, fiber.StatusBadRequest, err.Error())
	}
	candidates, err := s.store.Query(c.UserContext(), f)
	if err != nil {
		return err
	}
	if candidates == nil {
		candidates = []storage.Candidate{}
	}
	return success(c, candidates)
}

func (s *Server) getCandidate(c *fiber.Ctx) error {
	record, err := s.record(c)
	if err != nil {
		return err
	}
	return success(c, record)
}

func (s *Server) getReport(c *fiber.Ctx) error {
	record, err := s.record(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	opts := storage.ReportOptions{Filter: storage.FilterAll, Generated: time.Now(), Detailed: true}
	if err := storage.WriteReport(&buf, []storage.Record{*record}, opts); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.Send(buf.Bytes())
}

func (s *Server) getMetrics(c *fiber.Ctx) error {
	view := metricsView{}
	if s.metrics != nil {
		view.Snapshot = s.metrics.GetSnapshot()
	}
	if s.sessions != nil {
		view.ActiveSessions = s.sessions.ActiveSessions()
	}
	return success(c, view)
}

func (s *Server) record(c *fiber.Ctx) (*storage.Record, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid candidate id")
	}
	ctx := c.UserContext()
	candidate, err := s.store.Find(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fiber.NewError(fiber.StatusNotFound, "candidate not found")
	}
	if err != nil {
		return nil, err
	}
	responses, err := s.store.Responses(ctx, id)
	if err != nil {
		return nil, err
	}
	return &storage.Record{Candidate: *candidate, Responses: responses}, nil
}
