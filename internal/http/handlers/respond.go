package handlers

import "github.com/gofiber/fiber/v2"

// fail writes the uniform JSON error envelope used across the API.
func fail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// failFields writes a field-level validation error map.
func failFields(c *fiber.Ctx, fields map[string]string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fields})
}
