package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"storefront/internal/config"
	"storefront/internal/http/handlers"
	"storefront/internal/repos"
	"storefront/internal/services"
)

// newTestApp wires the full JSON API against an in-memory database, mirroring
// the route table the server binary registers.
func newTestApp(t *testing.T) (*fiber.App, *sqlx.DB) {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	cfg := config.Config{TaxRate: decimal.NewFromFloat(0.08)}
	authSvc := services.NewAuthService(repos.NewUserRepo(db), "test-secret", time.Hour)
	deps := handlers.NewDeps(db, cfg, authSvc)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
		},
	})
	requireUser := handlers.RequireUser(authSvc)
	requireAdmin := handlers.RequireAdmin(authSvc)

	accounts := app.Group("/api/accounts")
	accounts.Post("/register", deps.AuthHandler.Register)
	accounts.Post("/token", deps.AuthHandler.Token)
	accounts.Get("/me", requireUser, deps.AuthHandler.Me)
	accounts.Get("/addresses", requireUser, deps.AuthHandler.ListAddresses)
	accounts.Post("/addresses", requireUser, deps.AuthHandler.AddAddress)
	accounts.Put("/addresses/:id", requireUser, deps.AuthHandler.UpdateAddress)
	accounts.Delete("/addresses/:id", requireUser, deps.AuthHandler.DeleteAddress)

	app.Get("/api/categories", deps.CategoryHandler.List)
	app.Get("/api/categories/:slug", deps.CategoryHandler.Detail)

	products := app.Group("/api/products")
	products.Get("/", deps.ProductHandler.List)
	products.Get("/featured", deps.ProductHandler.Featured)
	products.Get("/search", deps.ProductHandler.Search)
	products.Get("/:slug", deps.ProductHandler.Detail)
	products.Get("/:slug/reviews", deps.ProductHandler.ListReviews)
	products.Post("/:slug/reviews", requireUser, deps.ProductHandler.AddReview)

	orders := app.Group("/api/orders", requireUser)
	orders.Get("/cart", deps.CartHandler.View)
	orders.Post("/cart/add", deps.CartHandler.Add)
	orders.Patch("/cart/items/:id", deps.CartHandler.UpdateItem)
	orders.Delete("/cart/items/:id", deps.CartHandler.RemoveItem)
	orders.Post("/cart/clear", deps.CartHandler.Clear)
	orders.Get("/shipping-methods", deps.CheckoutHandler.ShippingMethods)
	orders.Post("/discounts/apply", deps.CheckoutHandler.ApplyDiscount)
	orders.Get("/checkout/calculate", deps.CheckoutHandler.Calculate)
	orders.Post("/", deps.OrderHandler.Create)
	orders.Get("/", deps.OrderHandler.List)
	orders.Get("/:number", deps.OrderHandler.Detail)
	orders.Post("/:number/cancel", deps.OrderHandler.Cancel)
	orders.Post("/:number/pay", deps.OrderHandler.Pay)

	admin := app.Group("/api/admin", requireAdmin)
	admin.Get("/orders", deps.AdminHandler.ListOrders)
	admin.Post("/orders/:number/status", deps.AdminHandler.TransitionOrder)
	admin.Post("/orders/:number/refund", deps.AdminHandler.RefundOrder)
	admin.Post("/products", deps.AdminHandler.CreateProduct)
	admin.Put("/products/:id", deps.AdminHandler.UpdateProduct)
	admin.Delete("/products/:id", deps.AdminHandler.DeactivateProduct)
	admin.Post("/products/:id/stock", deps.AdminHandler.SetStock)
	admin.Get("/discounts", deps.AdminHandler.ListDiscounts)
	admin.Post("/discounts", deps.AdminHandler.CreateDiscount)
	admin.Get("/shipping-methods", deps.AdminHandler.ListShippingMethods)
	admin.Post("/shipping-methods", deps.AdminHandler.CreateShippingMethod)

	return app, db
}

func jsonReq(t *testing.T, method, path string, body any, token string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

// registerAndLogin creates an account through the API and returns its token.
func registerAndLogin(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	resp, err := app.Test(jsonReq(t, "POST", "/api/accounts/register", fiber.Map{
		"email": email, "password": "Sup3rSecret", "first_name": "Test", "last_name": "User",
	}, ""))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: status %d", email, resp.StatusCode)
	}
	return login(t, app, email, "Sup3rSecret")
}

func login(t *testing.T, app *fiber.App, email, password string) string {
	t.Helper()
	resp, err := app.Test(jsonReq(t, "POST", "/api/accounts/token", fiber.Map{
		"email": email, "password": password,
	}, ""))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: status %d", email, resp.StatusCode)
	}
	var body struct {
		Access string `json:"access"`
	}
	decode(t, resp, &body)
	if body.Access == "" {
		t.Fatal("no access token in response")
	}
	return body.Access
}

// fillCartAPI puts n laptop stands into the caller's cart.
func fillCartAPI(t *testing.T, app *fiber.App, token string, n int) {
	t.Helper()
	resp, err := app.Test(jsonReq(t, "POST", "/api/orders/cart/add", fiber.Map{
		"product_id": "prod-stand", "quantity": n,
	}, token))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cart add: status %d", resp.StatusCode)
	}
}

func placeOrderAPI(t *testing.T, app *fiber.App, token, discountCode string) string {
	t.Helper()
	addr := fiber.Map{
		"first_name": "Test", "last_name": "User",
		"line1": "1 Test Street", "city": "Testville",
		"postal_code": "12345", "country": "US",
	}
	body := fiber.Map{
		"billing_address":    addr,
		"shipping_address":   addr,
		"shipping_method_id": "ship-standard",
	}
	if discountCode != "" {
		body["discount_code"] = discountCode
	}
	resp, err := app.Test(jsonReq(t, "POST", "/api/orders/", body, token))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("place order: status %d", resp.StatusCode)
	}
	var o struct {
		OrderNumber string `json:"order_number"`
	}
	decode(t, resp, &o)
	if o.OrderNumber == "" {
		t.Fatal("no order number returned")
	}
	return o.OrderNumber
}
