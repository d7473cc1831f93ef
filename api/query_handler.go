package api

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/secondbrainhq/secondbrain/pkg/brain"
)

type queryRequest struct {
	Query string `json:"query"`
}

type queryResponse struct {
	// Card is the best-matching content summary, or null when the
	// caller has nothing indexed yet.
	Card *brain.Summary `json:"card"`
}

// handleQuery answers a semantic question against the caller's indexed
// content.
func (s *Server) handleQuery(c *fiber.Ctx) error {
	if s.queries == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(messageResponse{Message: "semantic query is not configured"})
	}

	var req queryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(messageResponse{Message: "invalid request body"})
	}
	if req.Query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(messageResponse{Message: "query is required"})
	}

	card, err := s.queries.Query(c.Context(), req.Query, callerID(c))
	if err != nil {
		s.logger.Error("running semantic query", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(messageResponse{Message: "failed to run query"})
	}

	return c.JSON(queryResponse{Card: card})
}
