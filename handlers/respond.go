// handlers/respond.go
package handlers

import (
	"errors"
	"log"

	"token-claim-service/services"

	"github.com/gofiber/fiber/v2"
)

// respondError maps a service error to its HTTP status and a user-facing notice.
func respondError(c *fiber.Ctx, err error) error {
	notice := services.FailureNotice(err)
	body := fiber.Map{"error": err.Error(), "notice": notice}

	var claimed *services.AlreadyClaimedError
	var verr *services.VerificationError
	var serr *services.StoreError

	status := fiber.StatusInternalServerError
	switch {
	case errors.As(err, &claimed):
		status = fiber.StatusConflict
		body["next_claim_at"] = claimed.NextClaimAt
		body["time_remaining_ms"] = claimed.Remaining.Milliseconds()
	case errors.Is(err, services.ErrAlreadyClaimed), errors.Is(err, services.ErrAlreadyCompleted):
		status = fiber.StatusConflict
	case errors.Is(err, services.ErrNotAuthenticated):
		status = fiber.StatusUnauthorized
	case errors.Is(err, services.ErrUnknownTask):
		status = fiber.StatusNotFound
	case errors.As(err, &verr):
		status = fiber.StatusBadRequest
		body["code"] = verr.Code
	case errors.As(err, &serr):
		log.Printf("❌ [API] %s %s: %v", c.Method(), c.Path(), err)
		body["error"] = "database error"
	default:
		log.Printf("❌ [API] %s %s: %v", c.Method(), c.Path(), err)
		body["error"] = "internal error"
	}
	return c.Status(status).JSON(body)
}
