// handlers/auth_routes.go
package handlers

import (
	"time"

	"token-claim-service/middleware"
	"token-claim-service/services"

	"github.com/gofiber/fiber/v2"
)

func setupAuthRoutes(app *fiber.App, secured fiber.Router, d Deps) {
	// 🔓 Public: World ID proof → session token
	app.Post("/auth/verify", rateLimit(d.VerifyRateLimit), func(c *fiber.Ctx) error {
		var bundle services.ProofBundle
		if err := c.BodyParser(&bundle); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":  "invalid request body",
				"notice": services.FailureNotice(&services.VerificationError{Code: "invalid_request"}),
			})
		}

		res, err := d.Auth.Login(c.UserContext(), bundle, services.ClientMeta{
			IPAddress: c.IP(),
			UserAgent: c.Get(fiber.HeaderUserAgent),
		})
		if err != nil {
			return respondError(c, err)
		}

		d.States.Open(res.Session.ID, res.Profile.User)

		return c.JSON(fiber.Map{
			"token":      res.Token,
			"expires_at": res.Session.ExpiresAt,
			"profile":    res.Profile,
			"notice":     services.VerifiedNotice(),
		})
	})

	// 🔐 Secured
	secured.Post("/auth/logout", func(c *fiber.Ctx) error {
		sessionID := middleware.SessionID(c)
		if err := d.Auth.Logout(c.UserContext(), sessionID); err != nil {
			return respondError(c, err)
		}
		d.States.Close(sessionID)
		return c.JSON(fiber.Map{"message": "logged out"})
	})

	secured.Get("/auth/logs", func(c *fiber.Ctx) error {
		logs, err := d.Auth.RecentAuthLogs(c.UserContext(), middleware.UserID(c), 30*24*time.Hour)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(logs)
	})

	secured.Get("/me", func(c *fiber.Ctx) error {
		profile, err := d.Users.Profile(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return respondError(c, err)
		}
		d.States.Open(middleware.SessionID(c), profile.User)
		return c.JSON(profile)
	})
}
