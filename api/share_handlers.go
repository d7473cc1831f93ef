package api

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/secondbrainhq/secondbrain/pkg/storage"
)

type shareRequest struct {
	// Share toggles sharing on or off. A pointer so an omitted field is
	// distinguishable from false.
	Share *bool `json:"share"`
}

type shareLinkResponse struct {
	Link string `json:"link"`
}

// handleShare enables or disables the caller's public share link.
func (s *Server) handleShare(c *fiber.Ctx) error {
	var req shareRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(messageResponse{Message: "invalid request body"})
	}
	if req.Share == nil {
		return c.Status(fiber.StatusBadRequest).JSON(messageResponse{Message: "share is required"})
	}

	userID := callerID(c)

	if !*req.Share {
		if err := s.shares.Disable(c.Context(), userID); err != nil {
			s.logger.Error("disabling share link", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(messageResponse{Message: "failed to disable sharing"})
		}
		return c.JSON(messageResponse{Message: "sharing disabled"})
	}

	hash, err := s.shares.Enable(c.Context(), userID)
	if err != nil {
		s.logger.Error("enabling share link", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(messageResponse{Message: "failed to enable sharing"})
	}

	base := strings.TrimSuffix(s.config.FrontendOrigin, "/")
	return c.JSON(shareLinkResponse{Link: fmt.Sprintf("%s/brain/%s", base, hash)})
}

// handleResolveShare serves a shared brain to anonymous readers.
func (s *Server) handleResolveShare(c *fiber.Ctx) error {
	hash := c.Params("hash")

	resolved, err := s.shares.Resolve(c.Context(), hash)
	if err != nil {
		if storage.IsNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(messageResponse{Message: "share link not found"})
		}
		s.logger.Error("resolving share link", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(messageResponse{Message: "failed to resolve share link"})
	}

	return c.JSON(resolved)
}
