package api

import (
	"context"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/catalog/pkg/catalog"
	"github.com/papercomputeco/catalog/pkg/export"
)

// ErrorResponse is the uniform error body for all endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SessionSummary is the list-view shape of a session.
type SessionSummary struct {
	SessionID  string `json:"session_id"`
	Title      string `json:"title"`
	CreatedAt  int64  `json:"createdAt"`
	UpdatedAt  int64  `json:"updatedAt"`
	EntryCount int    `json:"entry_count"`
}

// SessionResponse is the detail-view shape of a session.
type SessionResponse struct {
	SessionID string          `json:"session_id"`
	Title     string          `json:"title"`
	CreatedAt int64           `json:"createdAt"`
	UpdatedAt int64           `json:"updatedAt"`
	Entries   []catalog.Entry `json:"entries"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleListSessions returns all sessions, most recently active first.
func (s *Server) handleListSessions(c *fiber.Ctx) error {
	snap, err := s.storer.Load(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to load sessions"})
	}

	summaries := make([]SessionSummary, 0, len(snap))
	for id, sess := range snap {
		summaries = append(summaries, SessionSummary{
			SessionID:  id,
			Title:      sess.Title,
			CreatedAt:  sess.CreatedAt,
			UpdatedAt:  sess.UpdatedAt,
			EntryCount: len(sess.Entries),
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].UpdatedAt != summaries[j].UpdatedAt {
			return summaries[i].UpdatedAt > summaries[j].UpdatedAt
		}
		return summaries[i].SessionID < summaries[j].SessionID
	})

	return c.JSON(map[string]any{
		"count":    len(summaries),
		"sessions": summaries,
	})
}

// handleGetSession returns a single session with its entries.
func (s *Server) handleGetSession(c *fiber.Ctx) error {
	id := c.Params("id")

	snap, err := s.storer.Load(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to load sessions"})
	}

	sess, ok := snap[id]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "session not found"})
	}

	return c.JSON(SessionResponse{
		SessionID: id,
		Title:     sess.Title,
		CreatedAt: sess.CreatedAt,
		UpdatedAt: sess.UpdatedAt,
		Entries:   sess.Entries,
	})
}

// handleExportSession renders a session in the requested format.
// Query params: format (json|markdown|text, default json) and ids
// (comma-separated entry ids; empty means all).
func (s *Server) handleExportSession(c *fiber.Ctx) error {
	id := c.Params("id")

	format, err := export.ParseFormat(c.Query("format", string(export.FormatJSON)))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	var ids []string
	if raw := c.Query("ids"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				ids = append(ids, part)
			}
		}
	}

	snap, err := s.storer.Load(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to load sessions"})
	}

	sess, ok := snap[id]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "session not found"})
	}

	rendered, err := export.Render(id, sess, ids, format)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to render session"})
	}

	switch format {
	case export.FormatJSON:
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	case export.FormatMarkdown:
		c.Set(fiber.HeaderContentType, "text/markdown; charset=utf-8")
	default:
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	}
	return c.SendString(rendered)
}

// handleLocateEntry asks the live engine to scroll to and highlight an
// entry. Returns 202 immediately; the scroll is best-effort and may
// involve a settle-delay retry, so it runs detached from the request.
func (s *Server) handleLocateEntry(c *fiber.Ctx) error {
	if s.locator == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Error: "no live source attached"})
	}

	entryID := c.Params("entry")
	sessionID := c.Params("id")

	snap, err := s.storer.Load(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to load sessions"})
	}
	sess, ok := snap[sessionID]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "session not found"})
	}
	if sess.Find(entryID) == nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "entry not found"})
	}

	s.logger.Debug("locate requested",
		zap.String("session", sessionID),
		zap.String("entry", entryID),
	)
	go s.locator.ScrollTo(context.Background(), entryID)

	return c.SendStatus(fiber.StatusAccepted)
}

// handleClearSessions wipes the whole snapshot.
func (s *Server) handleClearSessions(c *fiber.Ctx) error {
	if err := s.storer.Clear(c.Context()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to clear sessions"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
