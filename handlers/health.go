package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jkemta/soutenance-api/database"
)

func HandleCheckHealth(store *database.GORMStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := store.HealthCheck(); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
