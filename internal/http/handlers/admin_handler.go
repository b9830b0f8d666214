package handlers

import (
	"errors"
	"time"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/repos"
	"storefront/internal/services"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdminHandler groups the store-management endpoints. All of them sit behind
// RequireAdmin.
type AdminHandler struct {
	Products  *repos.ProductRepo
	Discounts *repos.DiscountRepo
	Shipping  *repos.ShippingRepo
	Orders    *repos.OrderRepo
	OrderSvc  *services.OrderService
}

// ---------- Orders ----------

// GET /api/admin/orders
func (h *AdminHandler) ListOrders(c *fiber.Ctx) error {
	orders, err := h.Orders.ListLatest(100)
	if err != nil {
		applog.Error(c, "admin.orders.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not load orders")
	}
	return c.JSON(fiber.Map{"orders": orders})
}

type transitionReq struct {
	Status         string `json:"status"`
	TrackingNumber string `json:"tracking_number"`
}

// POST /api/admin/orders/:number/status
func (h *AdminHandler) TransitionOrder(c *fiber.Ctx) error {
	var req transitionReq
	if err := c.BodyParser(&req); err != nil || req.Status == "" {
		return failFields(c, map[string]string{"status": "required"})
	}

	number := c.Params("number")
	o, err := h.OrderSvc.Transition(number, req.Status, req.TrackingNumber)
	if err != nil {
		switch {
		case err == services.ErrOrderNotFound:
			return fail(c, fiber.StatusNotFound, "order not found")
		case errors.Is(err, services.ErrBadTransition):
			return fail(c, fiber.StatusConflict, err.Error())
		}
		applog.Error(c, "admin.transition.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not update order")
	}
	applog.Audit(c, "admin.order.status", map[string]any{"order_number": number, "status": req.Status})
	return c.JSON(o)
}

// POST /api/admin/orders/:number/refund
func (h *AdminHandler) RefundOrder(c *fiber.Ctx) error {
	number := c.Params("number")
	if err := h.OrderSvc.Refund(number); err != nil {
		switch {
		case err == services.ErrOrderNotFound:
			return fail(c, fiber.StatusNotFound, "order not found")
		case err == services.ErrNotRefundable:
			return fail(c, fiber.StatusConflict, "order has no refundable payment")
		case errors.Is(err, services.ErrBadTransition):
			return fail(c, fiber.StatusConflict, err.Error())
		}
		applog.Error(c, "admin.refund.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not refund order")
	}
	applog.Audit(c, "admin.order.refunded", map[string]any{"order_number": number})
	return c.JSON(fiber.Map{"message": "order refunded"})
}

// ---------- Products ----------

type productReq struct {
	CategoryID        string `json:"category_id"`
	Name              string `json:"name"`
	Slug              string `json:"slug"`
	SKU               string `json:"sku"`
	Description       string `json:"description"`
	Price             string `json:"price"`
	SalePrice         string `json:"sale_price"`
	Weight            string `json:"weight"`
	StockQty          int    `json:"stock_qty"`
	LowStockThreshold int    `json:"low_stock_threshold"`
	Featured          bool   `json:"featured"`
	Active            *bool  `json:"active"`
}

func (req *productReq) toProduct(id string) (domain.Product, map[string]string) {
	fields := map[string]string{}

	if _, ok := validate.ID(req.CategoryID); !ok {
		fields["category_id"] = "required"
	}
	if _, ok := validate.Name(req.Name); !ok {
		fields["name"] = "required"
	}
	slug, ok := validate.Slug(req.Slug)
	if !ok {
		fields["slug"] = "lower-case letters, digits and hyphens"
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		fields["price"] = "must be a non-negative amount"
	}
	var salePrice decimal.NullDecimal
	if req.SalePrice != "" {
		sp, err := decimal.NewFromString(req.SalePrice)
		if err != nil || sp.IsNegative() {
			fields["sale_price"] = "must be a non-negative amount"
		}
		salePrice = decimal.NullDecimal{Decimal: sp, Valid: true}
	}
	weight := decimal.Zero
	if req.Weight != "" {
		w, err := decimal.NewFromString(req.Weight)
		if err != nil || w.IsNegative() {
			fields["weight"] = "must be a non-negative weight in kg"
		}
		weight = w
	}
	if req.StockQty < 0 {
		fields["stock_qty"] = "must be non-negative"
	}
	if len(fields) > 0 {
		return domain.Product{}, fields
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	return domain.Product{
		ID:                id,
		CategoryID:        req.CategoryID,
		Name:              req.Name,
		Slug:              slug,
		SKU:               req.SKU,
		Description:       req.Description,
		Price:             price,
		SalePrice:         salePrice,
		Weight:            weight,
		StockQty:          req.StockQty,
		LowStockThreshold: req.LowStockThreshold,
		Featured:          req.Featured,
		Active:            active,
	}, nil
}

// POST /api/admin/products
func (h *AdminHandler) CreateProduct(c *fiber.Ctx) error {
	var req productReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "malformed request body")
	}
	p, fields := req.toProduct(uuid.NewString())
	if fields != nil {
		return failFields(c, fields)
	}
	if err := h.Products.Create(&p); err != nil {
		applog.Error(c, "admin.product.create.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not create product")
	}
	applog.Audit(c, "admin.product.created", map[string]any{"product_id": p.ID, "slug": p.Slug})
	return c.Status(fiber.StatusCreated).JSON(p)
}

// PUT /api/admin/products/:id
func (h *AdminHandler) UpdateProduct(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, fiber.StatusNotFound, "product not found")
	}
	var req productReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "malformed request body")
	}
	p, fields := req.toProduct(id)
	if fields != nil {
		return failFields(c, fields)
	}
	if err := h.Products.Update(&p); err != nil {
		return fail(c, fiber.StatusNotFound, "product not found")
	}
	applog.Audit(c, "admin.product.updated", map[string]any{"product_id": id})
	return c.JSON(p)
}

// DELETE /api/admin/products/:id — soft delete, the product just goes inactive.
func (h *AdminHandler) DeactivateProduct(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, fiber.StatusNotFound, "product not found")
	}
	if err := h.Products.SetActive(id, false); err != nil {
		applog.Error(c, "admin.product.deactivate.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not deactivate product")
	}
	applog.Audit(c, "admin.product.deactivated", map[string]any{"product_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}

type setStockReq struct {
	VariantID string `json:"variant_id"`
	StockQty  *int   `json:"stock_qty"`
}

// POST /api/admin/products/:id/stock
func (h *AdminHandler) SetStock(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, fiber.StatusNotFound, "product not found")
	}
	var req setStockReq
	if err := c.BodyParser(&req); err != nil || req.StockQty == nil || *req.StockQty < 0 {
		return failFields(c, map[string]string{"stock_qty": "must be non-negative"})
	}
	if err := h.Products.SetStock(id, req.VariantID, *req.StockQty); err != nil {
		applog.Error(c, "admin.stock.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not update stock")
	}
	applog.Audit(c, "admin.stock.set", map[string]any{"product_id": id, "variant_id": req.VariantID, "qty": *req.StockQty})
	return c.JSON(fiber.Map{"message": "stock updated"})
}

// ---------- Discounts ----------

// GET /api/admin/discounts
func (h *AdminHandler) ListDiscounts(c *fiber.Ctx) error {
	ds, err := h.Discounts.List()
	if err != nil {
		applog.Error(c, "admin.discounts.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not load discounts")
	}
	return c.JSON(fiber.Map{"discounts": ds})
}

type discountReq struct {
	Code              string `json:"code"`
	Name              string `json:"name"`
	Description       string `json:"description"`
	Type              string `json:"type"`
	Value             string `json:"value"`
	UsageLimit        int    `json:"usage_limit"`
	UsageLimitPerUser int    `json:"usage_limit_per_user"`
	MinOrderAmount    string `json:"min_order_amount"`
	MaxAmount         string `json:"max_amount"`
	Active            *bool  `json:"active"`
	ValidFrom         string `json:"valid_from"`
	ValidUntil        string `json:"valid_until"`
}

// POST /api/admin/discounts
func (h *AdminHandler) CreateDiscount(c *fiber.Ctx) error {
	var req discountReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "malformed request body")
	}

	fields := map[string]string{}
	code, ok := validate.DiscountCode(req.Code)
	if !ok {
		fields["code"] = "2-50 letters, digits, underscore or hyphen"
	}
	if _, ok := validate.Name(req.Name); !ok {
		fields["name"] = "required"
	}
	switch req.Type {
	case domain.DiscountPercentage, domain.DiscountFixedAmount, domain.DiscountFreeShipping:
	default:
		fields["type"] = "must be percentage, fixed_amount or free_shipping"
	}
	value := decimal.Zero
	if req.Type != domain.DiscountFreeShipping {
		v, err := decimal.NewFromString(req.Value)
		if err != nil || !v.IsPositive() {
			fields["value"] = "must be a positive amount"
		}
		value = v
	}
	if req.Type == domain.DiscountPercentage && value.GreaterThan(decimal.NewFromInt(100)) {
		fields["value"] = "percentage cannot exceed 100"
	}
	minOrder := decimal.Zero
	if req.MinOrderAmount != "" {
		m, err := decimal.NewFromString(req.MinOrderAmount)
		if err != nil || m.IsNegative() {
			fields["min_order_amount"] = "must be a non-negative amount"
		}
		minOrder = m
	}
	var maxAmount decimal.NullDecimal
	if req.MaxAmount != "" {
		m, err := decimal.NewFromString(req.MaxAmount)
		if err != nil || !m.IsPositive() {
			fields["max_amount"] = "must be a positive amount"
		}
		maxAmount = decimal.NullDecimal{Decimal: m, Valid: true}
	}
	if req.ValidFrom == "" {
		fields["valid_from"] = "required (RFC3339)"
	} else if _, err := time.Parse(time.RFC3339, req.ValidFrom); err != nil {
		fields["valid_from"] = "must be an RFC3339 timestamp"
	}
	if req.ValidUntil != "" {
		if _, err := time.Parse(time.RFC3339, req.ValidUntil); err != nil {
			fields["valid_until"] = "must be an RFC3339 timestamp"
		}
	}
	if len(fields) > 0 {
		return failFields(c, fields)
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	d := domain.Discount{
		ID:                uuid.NewString(),
		Code:              code,
		Name:              req.Name,
		Description:       req.Description,
		Type:              req.Type,
		Value:             value,
		UsageLimit:        req.UsageLimit,
		UsageLimitPerUser: req.UsageLimitPerUser,
		MinOrderAmount:    minOrder,
		MaxAmount:         maxAmount,
		Active:            active,
		ValidFrom:         req.ValidFrom,
		ValidUntil:        req.ValidUntil,
	}
	if err := h.Discounts.Create(&d); err != nil {
		applog.Error(c, "admin.discount.create.fail", err, nil)
		return fail(c, fiber.StatusConflict, "discount code already exists")
	}
	applog.Audit(c, "admin.discount.created", map[string]any{"code": d.Code, "type": d.Type})
	return c.Status(fiber.StatusCreated).JSON(d)
}

// ---------- Shipping methods ----------

type shippingMethodReq struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	BaseCost        string `json:"base_cost"`
	CostPerKg       string `json:"cost_per_kg"`
	MinDeliveryDays int    `json:"min_delivery_days"`
	MaxDeliveryDays int    `json:"max_delivery_days"`
	MinOrderAmount  string `json:"min_order_amount"`
	MaxWeight       string `json:"max_weight"`
	Active          *bool  `json:"active"`
}

// POST /api/admin/shipping-methods
func (h *AdminHandler) CreateShippingMethod(c *fiber.Ctx) error {
	var req shippingMethodReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "malformed request body")
	}

	fields := map[string]string{}
	if _, ok := validate.Name(req.Name); !ok {
		fields["name"] = "required"
	}
	baseCost, err := decimal.NewFromString(req.BaseCost)
	if err != nil || baseCost.IsNegative() {
		fields["base_cost"] = "must be a non-negative amount"
	}
	costPerKg := decimal.Zero
	if req.CostPerKg != "" {
		ckg, err := decimal.NewFromString(req.CostPerKg)
		if err != nil || ckg.IsNegative() {
			fields["cost_per_kg"] = "must be a non-negative amount"
		}
		costPerKg = ckg
	}
	minOrder := decimal.Zero
	if req.MinOrderAmount != "" {
		m, err := decimal.NewFromString(req.MinOrderAmount)
		if err != nil || m.IsNegative() {
			fields["min_order_amount"] = "must be a non-negative amount"
		}
		minOrder = m
	}
	var maxWeight decimal.NullDecimal
	if req.MaxWeight != "" {
		m, err := decimal.NewFromString(req.MaxWeight)
		if err != nil || !m.IsPositive() {
			fields["max_weight"] = "must be a positive weight in kg"
		}
		maxWeight = decimal.NullDecimal{Decimal: m, Valid: true}
	}
	if len(fields) > 0 {
		return failFields(c, fields)
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	m := domain.ShippingMethod{
		ID:              uuid.NewString(),
		Name:            req.Name,
		Description:     req.Description,
		BaseCost:        baseCost,
		CostPerKg:       costPerKg,
		MinDeliveryDays: req.MinDeliveryDays,
		MaxDeliveryDays: req.MaxDeliveryDays,
		Active:          active,
		MinOrderAmount:  minOrder,
		MaxWeight:       maxWeight,
	}
	if err := h.Shipping.Create(&m); err != nil {
		applog.Error(c, "admin.shipping.create.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not create shipping method")
	}
	applog.Audit(c, "admin.shipping.created", map[string]any{"shipping_method_id": m.ID, "name": m.Name})
	return c.Status(fiber.StatusCreated).JSON(m)
}

// GET /api/admin/shipping-methods
func (h *AdminHandler) ListShippingMethods(c *fiber.Ctx) error {
	ms, err := h.Shipping.List()
	if err != nil {
		applog.Error(c, "admin.shipping.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not load shipping methods")
	}
	return c.JSON(fiber.Map{"shipping_methods": ms})
}
