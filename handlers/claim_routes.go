// handlers/claim_routes.go
package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"

	"token-claim-service/middleware"
	"token-claim-service/services"

	"github.com/gofiber/fiber/v2"
)

func setupClaimRoutes(app *fiber.App, secured fiber.Router, d Deps) {
	secured.Get("/claim/status", func(c *fiber.Ctx) error {
		status, err := d.Claims.Status(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(status)
	})

	// The store decides; the countdown a client shows is never trusted here.
	secured.Post("/claim", rateLimit(d.ClaimRateLimit), func(c *fiber.Ctx) error {
		outcome, err := d.Claims.AttemptClaim(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return respondError(c, err)
		}
		d.States.ApplyUser(outcome.User)

		return c.JSON(fiber.Map{
			"claim":         outcome.Record,
			"total_claimed": outcome.User.TotalClaimed,
			"last_claim":    outcome.User.LastClaim,
			"claim_status":  outcome.Status,
			"notice":        services.ClaimedNotice(outcome.Record.Amount, outcome.User.TotalClaimed),
		})
	})

	secured.Get("/claim/history", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "20"))
		records, err := d.Claims.History(c.UserContext(), middleware.UserID(c), limit)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(records)
	})

	// Countdown stream: one `status` event per tick of the session's state.
	app.Get("/claim/stream", middleware.StreamAuthMiddleware(d.Sessions), func(c *fiber.Ctx) error {
		userID := middleware.UserID(c)
		sessionID := middleware.SessionID(c)

		state, err := sessionState(c.UserContext(), d, sessionID, userID)
		if err != nil {
			return respondError(c, err)
		}
		updates, unsubscribe := state.Subscribe()
		_, initial := state.Snapshot()

		c.Set("Content-Type", "text/event-stream")
		c.Set("Cache-Control", "no-cache")
		c.Set("Connection", "keep-alive")
		c.Set("X-Accel-Buffering", "no") // nginx

		c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
			defer unsubscribe()

			if err := writeStatusEvent(w, initial); err != nil {
				return
			}
			for status := range updates {
				if err := writeStatusEvent(w, status); err != nil {
					// client disconnected
					log.Printf("[SSE] session %s stream closed: %v", sessionID, err)
					return
				}
			}
		})
		return nil
	})
}

// sessionState returns the open state of a session, rebuilding it from the
// store when it is gone (after a restart).
func sessionState(ctx context.Context, d Deps, sessionID, userID string) (*services.SessionState, error) {
	if state, ok := d.States.Get(sessionID); ok {
		return state, nil
	}
	profile, err := d.Users.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return d.States.Open(sessionID, profile.User), nil
}

func writeStatusEvent(w *bufio.Writer, status services.ClaimStatus) error {
	payload, err := json.Marshal(status)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: status\ndata: %s\n\n", payload); err != nil {
		return err
	}
	return w.Flush()
}
