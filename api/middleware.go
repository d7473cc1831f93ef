package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/secondbrainhq/secondbrain/pkg/auth"
)

// localUserID is the fiber locals key the auth middleware stashes the
// verified caller id under.
const localUserID = "userID"

// messageResponse is the envelope for acknowledgements and errors.
type messageResponse struct {
	Message string `json:"message"`
}

// requireAuth verifies the Authorization header and stashes the caller
// id in locals. The header may carry the raw token or a "Bearer "
// prefix.
func (s *Server) requireAuth(c *fiber.Ctx) error {
	token, err := auth.ParseBearer(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(messageResponse{Message: "missing authorization token"})
	}

	userID, err := s.tokens.Verify(token)
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(messageResponse{Message: "invalid or expired token"})
	}

	c.Locals(localUserID, userID)
	return c.Next()
}

// callerID returns the user id the auth middleware stored for this
// request.
func callerID(c *fiber.Ctx) string {
	id, _ := c.Locals(localUserID).(string)
	return id
}
