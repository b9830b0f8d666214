package handlers

import (
	"storefront/internal/services"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CategoryHandler struct {
	Catalog *services.CatalogService
}

// GET /api/categories
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	cats, err := h.Catalog.ListCategories()
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "could not load categories")
	}
	return c.JSON(cats)
}

// GET /api/categories/:slug
func (h *CategoryHandler) Detail(c *fiber.Ctx) error {
	slug, ok := validate.Slug(c.Params("slug"))
	if !ok {
		return fail(c, fiber.StatusNotFound, "category not found")
	}
	cat, err := h.Catalog.CategoryBySlug(slug)
	if err != nil {
		return fail(c, fiber.StatusNotFound, "category not found")
	}
	return c.JSON(cat)
}
