package handlers

import (
	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AuthHandler struct {
	Auth  *services.AuthService
	Users interface {
		ListAddresses(userID string) ([]domain.Address, error)
		AddAddress(a *domain.Address) error
		UpdateAddress(a *domain.Address) (bool, error)
		DeleteAddress(userID, addressID string) (bool, error)
	}
}

type registerReq struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// POST /api/accounts/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "malformed request body")
	}

	errs := map[string]string{}
	email, ok := validate.Email(req.Email)
	if !ok {
		errs["email"] = "invalid email address"
	}
	if !validate.Password(req.Password) {
		errs["password"] = "password must be 8-64 chars with upper, lower and digit"
	}
	first, ok := validate.Name(req.FirstName)
	if !ok {
		errs["first_name"] = "required, max 50 chars"
	}
	last, ok := validate.Name(req.LastName)
	if !ok {
		errs["last_name"] = "required, max 50 chars"
	}
	if len(errs) > 0 {
		applog.Security(c, "validation.fail", map[string]any{"op": "register"})
		return failFields(c, errs)
	}

	u, err := h.Auth.Register(email, req.Password, first, last, req.Phone)
	if err != nil {
		if err == services.ErrEmailTaken {
			return failFields(c, map[string]string{"email": "already registered"})
		}
		applog.Error(c, "auth.register.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not create account")
	}
	applog.Audit(c, "auth.register", map[string]any{"user_id": u.ID})
	return c.Status(fiber.StatusCreated).JSON(u)
}

type tokenReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/accounts/token
func (h *AuthHandler) Token(c *fiber.Ctx) error {
	var req tokenReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "malformed request body")
	}
	if _, ok := validate.Email(req.Email); !ok {
		applog.Security(c, "auth.login.fail", map[string]any{"reason": "bad_format"})
		return fail(c, fiber.StatusUnauthorized, "invalid email or password")
	}

	token, u, err := h.Auth.Login(req.Email, req.Password)
	if err != nil {
		if err == services.ErrAccountLocked {
			applog.Security(c, "auth.login.locked", map[string]any{"email": req.Email})
			return fail(c, fiber.StatusTooManyRequests, "account temporarily locked, try again later")
		}
		applog.Security(c, "auth.login.fail", map[string]any{"email": req.Email})
		return fail(c, fiber.StatusUnauthorized, "invalid email or password")
	}
	applog.Audit(c, "auth.login.success", map[string]any{"user_id": u.ID})
	return c.JSON(fiber.Map{"access": token, "user": u})
}

// GET /api/accounts/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return c.JSON(currentUser(c))
}

// GET /api/accounts/addresses
func (h *AuthHandler) ListAddresses(c *fiber.Ctx) error {
	u := currentUser(c)
	addrs, err := h.Users.ListAddresses(u.ID)
	if err != nil {
		applog.Error(c, "addresses.list.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not load addresses")
	}
	return c.JSON(addrs)
}

type addressReq struct {
	Kind       string `json:"kind"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	IsDefault  bool   `json:"is_default"`
}

// POST /api/accounts/addresses
func (h *AuthHandler) AddAddress(c *fiber.Ctx) error {
	var req addressReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "malformed request body")
	}
	if req.Kind != "billing" && req.Kind != "shipping" {
		return failFields(c, map[string]string{"kind": "must be billing or shipping"})
	}
	postal, ok := validate.PostalCode(req.PostalCode)
	if !ok {
		return failFields(c, map[string]string{"postal_code": "invalid postal code"})
	}
	line1, ok := validate.Line(req.Line1, 255)
	if !ok || line1 == "" {
		return failFields(c, map[string]string{"line1": "required, max 255 chars"})
	}

	u := currentUser(c)
	a := &domain.Address{
		ID:         uuid.NewString(),
		UserID:     u.ID,
		Kind:       req.Kind,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Line1:      line1,
		Line2:      req.Line2,
		City:       req.City,
		State:      req.State,
		PostalCode: postal,
		Country:    req.Country,
		IsDefault:  req.IsDefault,
	}
	if err := h.Users.AddAddress(a); err != nil {
		applog.Error(c, "addresses.add.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not save address")
	}
	return c.Status(fiber.StatusCreated).JSON(a)
}

// PUT /api/accounts/addresses/:id
func (h *AuthHandler) UpdateAddress(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid address id")
	}
	var req addressReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "malformed request body")
	}
	if req.Kind != "billing" && req.Kind != "shipping" {
		return failFields(c, map[string]string{"kind": "must be billing or shipping"})
	}
	postal, ok := validate.PostalCode(req.PostalCode)
	if !ok {
		return failFields(c, map[string]string{"postal_code": "invalid postal code"})
	}
	line1, ok := validate.Line(req.Line1, 255)
	if !ok || line1 == "" {
		return failFields(c, map[string]string{"line1": "required, max 255 chars"})
	}

	u := currentUser(c)
	a := &domain.Address{
		ID:         id,
		UserID:     u.ID,
		Kind:       req.Kind,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Line1:      line1,
		Line2:      req.Line2,
		City:       req.City,
		State:      req.State,
		PostalCode: postal,
		Country:    req.Country,
		IsDefault:  req.IsDefault,
	}
	updated, err := h.Users.UpdateAddress(a)
	if err != nil {
		applog.Error(c, "addresses.update.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not update address")
	}
	if !updated {
		return fail(c, fiber.StatusNotFound, "address not found")
	}
	return c.JSON(a)
}

// DELETE /api/accounts/addresses/:id
func (h *AuthHandler) DeleteAddress(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid address id")
	}
	u := currentUser(c)
	removed, err := h.Users.DeleteAddress(u.ID, id)
	if err != nil {
		applog.Error(c, "addresses.delete.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not delete address")
	}
	if !removed {
		return fail(c, fiber.StatusNotFound, "address not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
