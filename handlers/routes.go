// handlers/routes.go
package handlers

import (
	"time"

	"token-claim-service/middleware"
	"token-claim-service/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// Deps are the services the HTTP layer calls into.
type Deps struct {
	Auth     *services.AuthService
	Users    *services.UserService
	Claims   *services.ClaimService
	Tasks    *services.TaskService
	Sessions *services.SessionService
	States   *services.SessionStates

	// requests per minute per client IP, 0 disables the limit
	VerifyRateLimit int
	ClaimRateLimit  int
}

// SetupRoutes registers every route. Secured routes live under /s and need a
// bearer session token.
func SetupRoutes(app *fiber.App, d Deps) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "sessions": d.States.Len()})
	})

	secured := app.Group("/s", middleware.SessionAuthMiddleware(d.Sessions))

	setupAuthRoutes(app, secured, d)
	setupClaimRoutes(app, secured, d)
	setupTaskRoutes(app, secured, d)
}

func rateLimit(perMinute int) fiber.Handler {
	if perMinute <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:        perMinute,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "too many requests",
				"notice": services.Notice{
					Title:       "Slow Down",
					Description: "Too many attempts, please wait a minute.",
					Variant:     "destructive",
				},
			})
		},
	})
}
