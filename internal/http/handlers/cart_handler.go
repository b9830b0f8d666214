package handlers

import (
	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CartHandler struct {
	Cart *services.CartService
}

// GET /api/orders/cart
func (h *CartHandler) View(c *fiber.Ctx) error {
	cv, err := h.Cart.View(currentUser(c).ID)
	if err != nil {
		applog.Error(c, "cart.view.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not load cart")
	}
	return c.JSON(cv)
}

type addToCartReq struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

// POST /api/orders/cart/add
func (h *CartHandler) Add(c *fiber.Ctx) error {
	var req addToCartReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "malformed request body")
	}
	pid, ok := validate.ID(req.ProductID)
	if !ok {
		return failFields(c, map[string]string{"product_id": "required"})
	}
	if req.VariantID != "" {
		if _, ok := validate.ID(req.VariantID); !ok {
			return failFields(c, map[string]string{"variant_id": "invalid"})
		}
	}
	qty, ok := validate.Qty(req.Quantity)
	if !ok {
		return failFields(c, map[string]string{"quantity": "must be non-negative"})
	}
	if qty == 0 {
		qty = 1
	}

	u := currentUser(c)
	if err := h.Cart.Add(u.ID, pid, req.VariantID, qty); err != nil {
		if err == services.ErrProductUnavailable {
			return fail(c, fiber.StatusBadRequest, "product not found or inactive")
		}
		if err == services.ErrNotEnoughStock {
			return fail(c, fiber.StatusBadRequest, err.Error())
		}
		applog.Error(c, "cart.add.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not add to cart")
	}
	applog.Info(c, "cart.add", map[string]any{"product_id": pid, "qty": qty})
	return h.View(c)
}

type updateItemReq struct {
	Quantity *int `json:"quantity"`
}

// PATCH /api/orders/cart/items/:id — quantity 0 removes the line.
func (h *CartHandler) UpdateItem(c *fiber.Ctx) error {
	itemID, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, fiber.StatusNotFound, "cart item not found")
	}
	var req updateItemReq
	if err := c.BodyParser(&req); err != nil || req.Quantity == nil {
		return failFields(c, map[string]string{"quantity": "required"})
	}
	qty, ok := validate.Qty(*req.Quantity)
	if !ok {
		return failFields(c, map[string]string{"quantity": "must be non-negative"})
	}

	if err := h.Cart.SetQuantity(currentUser(c).ID, itemID, qty); err != nil {
		if err == services.ErrCartItemNotFound {
			return fail(c, fiber.StatusNotFound, "cart item not found")
		}
		applog.Error(c, "cart.update.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not update cart")
	}
	return h.View(c)
}

// DELETE /api/orders/cart/items/:id
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	itemID, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, fiber.StatusNotFound, "cart item not found")
	}
	if err := h.Cart.Remove(currentUser(c).ID, itemID); err != nil {
		if err == services.ErrCartItemNotFound {
			return fail(c, fiber.StatusNotFound, "cart item not found")
		}
		applog.Error(c, "cart.remove.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not update cart")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// POST /api/orders/cart/clear
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	if err := h.Cart.Clear(currentUser(c).ID); err != nil {
		applog.Error(c, "cart.clear.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not clear cart")
	}
	return c.JSON(fiber.Map{"message": "cart cleared"})
}
