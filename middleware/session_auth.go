// middleware/session_auth.go
package middleware

import (
	"context"
	"errors"
	"log"
	"strings"

	"token-claim-service/models"
	"token-claim-service/services"

	"github.com/gofiber/fiber/v2"
)

const (
	LocalUserID    = "user_id"
	LocalSessionID = "session_id"
)

// SessionValidator resolves a session token. services.SessionService satisfies it.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (*models.Session, error)
}

// SessionAuthMiddleware requires "Authorization: Bearer <token>" and attaches the
// session's user and session ids to the request.
func SessionAuthMiddleware(sessions SessionValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if authHeader == "" || token == authHeader {
			log.Printf("🚫 [SESSION_AUTH] missing bearer token for %s", c.Path())
			return unauthorized(c)
		}
		return authenticate(c, sessions, token)
	}
}

// StreamAuthMiddleware validates `token` from the query string, for EventSource
// clients that cannot set headers.
func StreamAuthMiddleware(sessions SessionValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := strings.TrimSpace(c.Query("token"))
		if token == "" {
			log.Printf("🚫 [STREAM_AUTH] missing token query param for %s", c.Path())
			return unauthorized(c)
		}
		return authenticate(c, sessions, token)
	}
}

func authenticate(c *fiber.Ctx, sessions SessionValidator, token string) error {
	sess, err := sessions.Validate(c.UserContext(), token)
	if err != nil && !errors.Is(err, services.ErrNotAuthenticated) {
		log.Printf("❌ [SESSION_AUTH] session lookup failed for %s: %v", c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":  "session lookup failed",
			"notice": services.FailureNotice(err),
		})
	}
	if err != nil {
		log.Printf("❌ [SESSION_AUTH] rejected token (prefix: %.10s...) for %s: %v", token, c.Path(), err)
		return unauthorized(c)
	}
	c.Locals(LocalUserID, sess.UserID)
	c.Locals(LocalSessionID, sess.ID)
	return c.Next()
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error":  "not authenticated",
		"notice": services.FailureNotice(services.ErrNotAuthenticated),
	})
}

// UserID returns the authenticated user id, or "" outside a secured route.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}

// SessionID returns the authenticated session id, or "".
func SessionID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalSessionID).(string)
	return id
}
