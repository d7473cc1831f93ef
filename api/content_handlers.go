package api

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/secondbrainhq/secondbrain/pkg/brain"
	"github.com/secondbrainhq/secondbrain/pkg/storage"
	"github.com/secondbrainhq/secondbrain/pkg/utils"
	"github.com/secondbrainhq/secondbrain/pkg/vector"
)

type createContentRequest struct {
	Title       string   `json:"title"`
	Link        string   `json:"link"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

type contentMutationResponse struct {
	Message string `json:"message"`
	ID      string `json:"_id"`
}

type listContentResponse struct {
	Contents []brain.Content `json:"contents"`
}

type deleteContentRequest struct {
	ID string `json:"id"`
}

// handleCreateContent persists a new content item and kicks off
// best-effort indexing. The store write alone decides success.
func (s *Server) handleCreateContent(c *fiber.Ctx) error {
	var req createContentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(messageResponse{Message: "invalid request body"})
	}

	contentType := brain.ContentType(req.Type)
	if req.Title == "" || req.Link == "" || !contentType.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(messageResponse{Message: "title, link, and a valid type are required"})
	}

	content, err := s.storer.CreateContent(c.Context(), brain.Content{
		Title:       req.Title,
		Link:        req.Link,
		Type:        contentType,
		Description: req.Description,
		Tags:        req.Tags,
		UserID:      callerID(c),
	})
	if err != nil {
		s.logger.Error("creating content", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(messageResponse{Message: "failed to create content"})
	}

	s.indexContent(content)

	return c.JSON(contentMutationResponse{Message: "content added", ID: content.ID})
}

// handleListContent returns all of the caller's content.
func (s *Server) handleListContent(c *fiber.Ctx) error {
	contents, err := s.storer.ListContent(c.Context(), callerID(c))
	if err != nil {
		s.logger.Error("listing content", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(messageResponse{Message: "failed to list content"})
	}

	return c.JSON(listContentResponse{Contents: contents})
}

// handleDeleteContent removes a content item owned by the caller and
// best-effort drops its vector record.
func (s *Server) handleDeleteContent(c *fiber.Ctx) error {
	var req deleteContentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(messageResponse{Message: "invalid request body"})
	}
	if req.ID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(messageResponse{Message: "id is required"})
	}

	userID := callerID(c)
	if err := s.storer.DeleteContent(c.Context(), req.ID, userID); err != nil {
		if storage.IsNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(messageResponse{Message: "content not found"})
		}
		s.logger.Error("deleting content", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(messageResponse{Message: "failed to delete content"})
	}

	s.deindexContent(req.ID)

	return c.JSON(contentMutationResponse{Message: "content deleted", ID: req.ID})
}

// indexContent embeds a content item and upserts it into the vector
// index in a detached goroutine. Failures are logged, never surfaced:
// the content row is already the source of truth.
func (s *Server) indexContent(content brain.Content) {
	if s.embedder == nil || s.vectors == nil {
		return
	}

	s.indexing.Add(1)
	go func() {
		defer s.indexing.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.config.indexTimeout())
		defer cancel()

		embedding, err := s.embedder.Embed(ctx, content.CombinedText())
		if err != nil {
			s.logger.Warn("embedding content",
				zap.String("content_id", content.ID),
				zap.Error(err),
			)
			return
		}

		err = s.vectors.Upsert(ctx, vector.Document{
			ID:        content.ID,
			Embedding: embedding,
			Text:      content.CombinedText(),
			Meta: vector.Metadata{
				Title:       content.Title,
				Description: content.Description,
				Type:        string(content.Type),
				Link:        content.Link,
				UserID:      content.UserID,
			},
		})
		if err != nil {
			s.logger.Warn("indexing content",
				zap.String("content_id", content.ID),
				zap.Error(err),
			)
			return
		}

		s.logger.Debug("indexed content",
			zap.String("content_id", content.ID),
			zap.String("title", utils.Truncate(content.Title, 48)),
		)
	}()
}

// deindexContent best-effort removes a content item's vector record.
func (s *Server) deindexContent(contentID string) {
	if s.vectors == nil {
		return
	}

	s.indexing.Add(1)
	go func() {
		defer s.indexing.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.config.indexTimeout())
		defer cancel()

		if err := s.vectors.Delete(ctx, []string{contentID}); err != nil {
			s.logger.Warn("removing content from vector index",
				zap.String("content_id", contentID),
				zap.Error(err),
			)
		}
	}()
}
