package handlers

import (
	"errors"

	applog "storefront/internal/log"
	"storefront/internal/repos"
	"storefront/internal/services"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type OrderHandler struct {
	Orders *services.OrderService
}

type orderAddressReq struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type createOrderReq struct {
	Billing          orderAddressReq `json:"billing_address"`
	Shipping         orderAddressReq `json:"shipping_address"`
	ShippingMethodID string          `json:"shipping_method_id"`
	DiscountCode     string          `json:"discount_code"`
	CustomerNotes    string          `json:"customer_notes"`
}

func validateAddress(prefix string, a orderAddressReq, fields map[string]string) {
	if _, ok := validate.Name(a.FirstName); !ok {
		fields[prefix+".first_name"] = "required"
	}
	if _, ok := validate.Name(a.LastName); !ok {
		fields[prefix+".last_name"] = "required"
	}
	if v, ok := validate.Line(a.Line1, 200); !ok || v == "" {
		fields[prefix+".line1"] = "required"
	}
	if v, ok := validate.Line(a.City, 100); !ok || v == "" {
		fields[prefix+".city"] = "required"
	}
	if _, ok := validate.PostalCode(a.PostalCode); !ok {
		fields[prefix+".postal_code"] = "invalid"
	}
	if v, ok := validate.Line(a.Country, 100); !ok || v == "" {
		fields[prefix+".country"] = "required"
	}
}

func toOrderAddress(a orderAddressReq) services.OrderAddress {
	return services.OrderAddress{
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		Email:      a.Email,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

// POST /api/orders
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var req createOrderReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "malformed request body")
	}

	fields := map[string]string{}
	validateAddress("billing_address", req.Billing, fields)
	validateAddress("shipping_address", req.Shipping, fields)
	if _, ok := validate.ID(req.ShippingMethodID); !ok {
		fields["shipping_method_id"] = "required"
	}
	if req.DiscountCode != "" {
		code, ok := validate.DiscountCode(req.DiscountCode)
		if !ok {
			fields["discount_code"] = "invalid"
		} else {
			req.DiscountCode = code
		}
	}
	if len(fields) > 0 {
		return failFields(c, fields)
	}

	u := currentUser(c)
	o, err := h.Orders.Place(u.ID, services.PlaceOrderInput{
		Billing:          toOrderAddress(req.Billing),
		Shipping:         toOrderAddress(req.Shipping),
		ShippingMethodID: req.ShippingMethodID,
		DiscountCode:     req.DiscountCode,
		CustomerNotes:    req.CustomerNotes,
	})
	if err != nil {
		switch {
		case err == services.ErrCartEmpty:
			return fail(c, fiber.StatusBadRequest, "cart is empty")
		case err == services.ErrShippingUnavailable:
			return fail(c, fiber.StatusBadRequest, err.Error())
		case err == services.ErrDiscountNotFound, err == services.ErrDiscountInactive,
			err == services.ErrDiscountNotValid, err == services.ErrBelowMinimum,
			err == services.ErrUsageLimitReached, err == services.ErrUserLimitReached:
			return fail(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, repos.ErrStockShort):
			return fail(c, fiber.StatusConflict, err.Error())
		case errors.Is(err, repos.ErrDiscountExhausted):
			return fail(c, fiber.StatusConflict, "discount usage limit reached")
		case errors.Is(err, repos.ErrDiscountUserExhausted):
			return fail(c, fiber.StatusConflict, "discount already used the maximum number of times")
		}
		applog.Error(c, "order.create.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not place order")
	}

	applog.Audit(c, "order.created", map[string]any{"order_number": o.OrderNumber, "total": o.TotalAmount.StringFixed(2)})
	return c.Status(fiber.StatusCreated).JSON(o)
}

// GET /api/orders
func (h *OrderHandler) List(c *fiber.Ctx) error {
	orders, err := h.Orders.ListForUser(currentUser(c).ID)
	if err != nil {
		applog.Error(c, "order.list.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not load orders")
	}
	return c.JSON(fiber.Map{"orders": orders})
}

// GET /api/orders/:number — owner or admin only; others see 404.
func (h *OrderHandler) Detail(c *fiber.Ctx) error {
	o, items, payments, err := h.Orders.Get(currentUser(c), c.Params("number"))
	if err != nil {
		if err == services.ErrOrderNotFound {
			return fail(c, fiber.StatusNotFound, "order not found")
		}
		applog.Error(c, "order.detail.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not load order")
	}
	return c.JSON(fiber.Map{"order": o, "items": items, "payments": payments})
}

// POST /api/orders/:number/cancel
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	number := c.Params("number")
	if err := h.Orders.Cancel(currentUser(c), number); err != nil {
		switch err {
		case services.ErrOrderNotFound:
			return fail(c, fiber.StatusNotFound, "order not found")
		case services.ErrCannotCancel:
			return fail(c, fiber.StatusConflict, "order can no longer be cancelled")
		}
		applog.Error(c, "order.cancel.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not cancel order")
	}
	applog.Audit(c, "order.cancelled", map[string]any{"order_number": number})
	return c.JSON(fiber.Map{"message": "order cancelled"})
}

type payOrderReq struct {
	Method       string `json:"method"`
	CardLastFour string `json:"card_last_four"`
	CardBrand    string `json:"card_brand"`
}

// POST /api/orders/:number/pay
func (h *OrderHandler) Pay(c *fiber.Ctx) error {
	var req payOrderReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "malformed request body")
	}
	if req.Method == "" {
		req.Method = "credit_card"
	}

	number := c.Params("number")
	p, err := h.Orders.Pay(currentUser(c), number, req.Method, req.CardLastFour, req.CardBrand)
	if err != nil {
		switch err {
		case services.ErrOrderNotFound:
			return fail(c, fiber.StatusNotFound, "order not found")
		case services.ErrPaymentNotAllowed:
			return fail(c, fiber.StatusConflict, "order is not awaiting payment")
		}
		applog.Error(c, "order.pay.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not record payment")
	}
	applog.Audit(c, "order.paid", map[string]any{"order_number": number, "amount": p.Amount.StringFixed(2)})
	return c.Status(fiber.StatusCreated).JSON(p)
}
