package handlers

import (
	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CheckoutHandler struct {
	Cart    *services.CartService
	Pricing *services.PricingService
}

// GET /api/orders/shipping-methods
// Only methods the current cart qualifies for are returned.
func (h *CheckoutHandler) ShippingMethods(c *fiber.Ctx) error {
	cv, err := h.Cart.View(currentUser(c).ID)
	if err != nil {
		applog.Error(c, "checkout.shipping.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not load shipping methods")
	}
	methods, err := h.Pricing.OfferedMethods(cv.Subtotal, cv.TotalWeight)
	if err != nil {
		applog.Error(c, "checkout.shipping.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not load shipping methods")
	}
	type offered struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		Description     string `json:"description,omitempty"`
		Cost            string `json:"cost"`
		MinDeliveryDays int    `json:"min_delivery_days"`
		MaxDeliveryDays int    `json:"max_delivery_days"`
	}
	out := make([]offered, 0, len(methods))
	for _, m := range methods {
		out = append(out, offered{
			ID:              m.ID,
			Name:            m.Name,
			Description:     m.Description,
			Cost:            m.Cost(cv.TotalWeight).StringFixed(2),
			MinDeliveryDays: m.MinDeliveryDays,
			MaxDeliveryDays: m.MaxDeliveryDays,
		})
	}
	return c.JSON(fiber.Map{"shipping_methods": out})
}

type applyDiscountReq struct {
	Code string `json:"code"`
}

// POST /api/orders/discounts/apply
// Checks the code against the current cart and reports the would-be savings.
// Nothing is consumed until an order is placed.
func (h *CheckoutHandler) ApplyDiscount(c *fiber.Ctx) error {
	var req applyDiscountReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "malformed request body")
	}
	code, ok := validate.DiscountCode(req.Code)
	if !ok {
		return failFields(c, map[string]string{"code": "required"})
	}

	u := currentUser(c)
	cv, err := h.Cart.View(u.ID)
	if err != nil {
		applog.Error(c, "checkout.discount.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not validate discount")
	}
	d, err := h.Pricing.ValidateDiscount(code, u.ID, cv.Subtotal)
	if err != nil {
		switch err {
		case services.ErrDiscountNotFound, services.ErrDiscountInactive,
			services.ErrDiscountNotValid, services.ErrBelowMinimum,
			services.ErrUsageLimitReached, services.ErrUserLimitReached:
			applog.Info(c, "checkout.discount.rejected", map[string]any{"code": code, "reason": err.Error()})
			return fail(c, fiber.StatusBadRequest, err.Error())
		}
		applog.Error(c, "checkout.discount.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not validate discount")
	}

	amount := d.Amount(cv.Subtotal)
	return c.JSON(fiber.Map{
		"valid":           true,
		"code":            d.Code,
		"type":            d.Type,
		"discount_amount": amount.StringFixed(2),
		"new_total":       cv.Subtotal.Sub(amount).StringFixed(2),
	})
}

// GET /api/orders/checkout/calculate?shipping_method=..&discount=..
// Pure quote over the current cart. Repeated calls return the same breakdown.
func (h *CheckoutHandler) Calculate(c *fiber.Ctx) error {
	u := currentUser(c)
	methodID := c.Query("shipping_method")
	code := c.Query("discount")
	if code != "" {
		normalized, ok := validate.DiscountCode(code)
		if !ok {
			return fail(c, fiber.StatusBadRequest, "invalid discount code")
		}
		code = normalized
	}

	q, err := h.Pricing.QuoteCart(u.ID, methodID, code)
	if err != nil {
		switch err {
		case services.ErrShippingUnavailable,
			services.ErrDiscountNotFound, services.ErrDiscountInactive,
			services.ErrDiscountNotValid, services.ErrBelowMinimum,
			services.ErrUsageLimitReached, services.ErrUserLimitReached:
			return fail(c, fiber.StatusBadRequest, err.Error())
		}
		applog.Error(c, "checkout.calculate.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not calculate totals")
	}
	if q.CartItems == 0 {
		return fail(c, fiber.StatusBadRequest, "cart is empty")
	}
	return c.JSON(q)
}
