// handlers/task_routes.go
package handlers

import (
	"token-claim-service/middleware"
	"token-claim-service/services"

	"github.com/gofiber/fiber/v2"
)

func setupTaskRoutes(app *fiber.App, secured fiber.Router, d Deps) {
	// 🔓 Public registry
	app.Get("/tasks", func(c *fiber.Ctx) error {
		return c.JSON(d.Tasks.Registry.All())
	})

	secured.Get("/tasks", func(c *fiber.Ctx) error {
		views, err := d.Tasks.ListForUser(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(views)
	})

	secured.Post("/tasks/reset", func(c *fiber.Ctx) error {
		userID := middleware.UserID(c)
		cleared, err := d.Tasks.ResetTasks(c.UserContext(), userID)
		if err != nil {
			return respondError(c, err)
		}
		views, err := d.Tasks.ListForUser(c.UserContext(), userID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{
			"cleared": cleared,
			"tasks":   views,
			"notice":  services.TasksResetNotice(cleared),
		})
	})

	secured.Post("/tasks/:id/complete", func(c *fiber.Ctx) error {
		outcome, err := d.Tasks.AttemptCompleteTask(c.UserContext(), middleware.UserID(c), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		d.States.ApplyUser(outcome.User)

		return c.JSON(fiber.Map{
			"task":          outcome.Task,
			"completed_at":  outcome.Completion.CompletedAt,
			"credited":      outcome.Credited,
			"total_claimed": outcome.User.TotalClaimed,
			"notice":        services.TaskCompletedNotice(outcome.Task.Title, outcome.Credited),
		})
	})
}
