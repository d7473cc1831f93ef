package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/secondbrainhq/secondbrain/pkg/auth"
	"github.com/secondbrainhq/secondbrain/pkg/brain"
	"github.com/secondbrainhq/secondbrain/pkg/storage"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// handleSignup registers a new account.
func (s *Server) handleSignup(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(messageResponse{Message: "invalid request body"})
	}

	if err := auth.ValidateUsername(req.Username); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(messageResponse{Message: err.Error()})
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(messageResponse{Message: err.Error()})
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("hashing password", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(messageResponse{Message: "failed to create user"})
	}

	user, err := s.storer.CreateUser(c.Context(), brain.User{
		Username:     req.Username,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, storage.ErrUsernameTaken) {
			return c.Status(fiber.StatusConflict).JSON(messageResponse{Message: "username already exists"})
		}
		s.logger.Error("creating user", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(messageResponse{Message: "failed to create user"})
	}

	s.logger.Info("user signed up",
		zap.String("user_id", user.ID),
		zap.String("username", user.Username),
	)

	return c.JSON(messageResponse{Message: "signed up"})
}

// handleSignin verifies credentials and issues a token.
func (s *Server) handleSignin(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(messageResponse{Message: "invalid request body"})
	}
	if req.Username == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(messageResponse{Message: "username and password are required"})
	}

	user, err := s.storer.GetUserByName(c.Context(), req.Username)
	if err != nil {
		if storage.IsNotFound(err) {
			return c.Status(fiber.StatusForbidden).JSON(messageResponse{Message: "incorrect credentials"})
		}
		s.logger.Error("looking up user", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(messageResponse{Message: "failed to sign in"})
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return c.Status(fiber.StatusForbidden).JSON(messageResponse{Message: "incorrect credentials"})
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.logger.Error("issuing token", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(messageResponse{Message: "failed to sign in"})
	}

	return c.JSON(tokenResponse{Token: token})
}
