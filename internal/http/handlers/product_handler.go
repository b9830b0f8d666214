package handlers

import (
	applog "storefront/internal/log"
	"storefront/internal/repos"
	"storefront/internal/services"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	Catalog *services.CatalogService
	Reviews *services.ReviewService
}

// GET /api/products?category=<id>&featured=1&page=&page_size=
func (h *ProductHandler) List(c *fiber.Ctx) error {
	f := repos.ProductFilter{Featured: c.QueryBool("featured")}
	if cat := c.Query("category"); cat != "" {
		id, ok := validate.ID(cat)
		if !ok {
			return fail(c, fiber.StatusBadRequest, "invalid category")
		}
		f.CategoryID = id
	}
	products, err := h.Catalog.ListProducts(f, c.QueryInt("page", 1), c.QueryInt("page_size", 12))
	if err != nil {
		applog.Error(c, "products.list.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not load products")
	}
	return c.JSON(products)
}

// GET /api/products/featured
func (h *ProductHandler) Featured(c *fiber.Ctx) error {
	products, err := h.Catalog.ListProducts(repos.ProductFilter{Featured: true}, 1, 12)
	if err != nil {
		applog.Error(c, "products.featured.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not load products")
	}
	return c.JSON(products)
}

// GET /api/products/search?q=
func (h *ProductHandler) Search(c *fiber.Ctx) error {
	q, ok := validate.Q(c.Query("q"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "q"})
		return fail(c, fiber.StatusBadRequest, "invalid search query")
	}
	products, err := h.Catalog.ListProducts(repos.ProductFilter{Query: q}, c.QueryInt("page", 1), c.QueryInt("page_size", 12))
	if err != nil {
		applog.Error(c, "products.search.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "search failed")
	}
	return c.JSON(products)
}

// GET /api/products/:slug
func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	slug, ok := validate.Slug(c.Params("slug"))
	if !ok {
		return fail(c, fiber.StatusNotFound, "product not found")
	}
	p, variants, err := h.Catalog.ProductBySlug(slug)
	if err != nil || !p.Active {
		return fail(c, fiber.StatusNotFound, "product not found")
	}
	return c.JSON(fiber.Map{"product": p, "variants": variants})
}

// GET /api/products/:slug/reviews
func (h *ProductHandler) ListReviews(c *fiber.Ctx) error {
	slug, ok := validate.Slug(c.Params("slug"))
	if !ok {
		return fail(c, fiber.StatusNotFound, "product not found")
	}
	p, _, err := h.Catalog.ProductBySlug(slug)
	if err != nil {
		return fail(c, fiber.StatusNotFound, "product not found")
	}
	reviews, err := h.Reviews.ListForProduct(p.ID)
	if err != nil {
		applog.Error(c, "reviews.list.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not load reviews")
	}
	return c.JSON(reviews)
}

type reviewReq struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// POST /api/products/:slug/reviews (authenticated)
func (h *ProductHandler) AddReview(c *fiber.Ctx) error {
	slug, ok := validate.Slug(c.Params("slug"))
	if !ok {
		return fail(c, fiber.StatusNotFound, "product not found")
	}
	var req reviewReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "malformed request body")
	}
	if !validate.Rating(req.Rating) {
		return failFields(c, map[string]string{"rating": "must be between 1 and 5"})
	}
	comment, ok := validate.Line(req.Comment, 2000)
	if !ok {
		return failFields(c, map[string]string{"comment": "too long"})
	}

	p, _, err := h.Catalog.ProductBySlug(slug)
	if err != nil {
		return fail(c, fiber.StatusNotFound, "product not found")
	}
	rev, err := h.Reviews.Add(currentUser(c), p.ID, req.Rating, comment)
	if err != nil {
		if err == services.ErrAlreadyReviewed {
			return fail(c, fiber.StatusConflict, "you already reviewed this product")
		}
		applog.Error(c, "reviews.add.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not save review")
	}
	applog.Audit(c, "reviews.add", map[string]any{"product_id": p.ID, "rating": req.Rating})
	return c.Status(fiber.StatusCreated).JSON(rev)
}
