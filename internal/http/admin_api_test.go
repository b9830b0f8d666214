package handlers_test

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func adminToken(t *testing.T, app *fiber.App) string {
	t.Helper()
	return login(t, app, "admin@storefront.test", "Admin123!")
}

func TestAdminEndpointsRejectNonAdmins(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(jsonReq(t, "GET", "/api/admin/orders", nil, ""))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want 401", resp.StatusCode)
	}

	userToken := registerAndLogin(t, app, "pleb@example.test")
	resp, err = app.Test(jsonReq(t, "GET", "/api/admin/orders", nil, userToken))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("user token: status = %d, want 403", resp.StatusCode)
	}
}

func TestAdminOrderTransitions(t *testing.T) {
	app, _ := newTestApp(t)
	buyer := registerAndLogin(t, app, "transit@example.test")
	fillCartAPI(t, app, buyer, 1)
	number := placeOrderAPI(t, app, buyer, "")

	admin := adminToken(t, app)

	// pending -> shipped skips paid/processing and must be refused.
	resp, err := app.Test(jsonReq(t, "POST", "/api/admin/orders/"+number+"/status",
		fiber.Map{"status": "shipped"}, admin))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("skip transition: status = %d, want 409", resp.StatusCode)
	}

	// Walk the lifecycle properly.
	if _, err := app.Test(jsonReq(t, "POST", "/api/orders/"+number+"/pay",
		fiber.Map{"method": "credit_card"}, buyer)); err != nil {
		t.Fatal(err)
	}
	for _, status := range []string{"processing", "shipped", "delivered"} {
		body := fiber.Map{"status": status}
		if status == "shipped" {
			body["tracking_number"] = "TRK-9"
		}
		resp, err = app.Test(jsonReq(t, "POST", "/api/admin/orders/"+number+"/status", body, admin))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("transition to %s: status = %d", status, resp.StatusCode)
		}
	}

	// Delivered never goes back to pending.
	resp, err = app.Test(jsonReq(t, "POST", "/api/admin/orders/"+number+"/status",
		fiber.Map{"status": "pending"}, admin))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("delivered->pending: status = %d, want 409", resp.StatusCode)
	}

	// Delivered orders with a completed payment can still be refunded.
	resp, err = app.Test(jsonReq(t, "POST", "/api/admin/orders/"+number+"/refund", nil, admin))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("refund: status = %d", resp.StatusCode)
	}
}

func TestAdminProductManagement(t *testing.T) {
	app, _ := newTestApp(t)
	admin := adminToken(t, app)

	resp, err := app.Test(jsonReq(t, "POST", "/api/admin/products", fiber.Map{
		"category_id": "cat-audio",
		"name":        "USB Microphone",
		"slug":        "usb-microphone",
		"sku":         "MIC-500",
		"price":       "79.00",
		"weight":      "0.60",
		"stock_qty":   10,
	}, admin))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create product: status = %d", resp.StatusCode)
	}
	var created struct {
		ID string `json:"id"`
	}
	decode(t, resp, &created)

	// Bad price is a field error.
	resp, err = app.Test(jsonReq(t, "POST", "/api/admin/products", fiber.Map{
		"category_id": "cat-audio", "name": "Broken", "slug": "broken", "sku": "X-1", "price": "not-money",
	}, admin))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad price: status = %d, want 400", resp.StatusCode)
	}

	resp, err = app.Test(jsonReq(t, "POST", "/api/admin/products/"+created.ID+"/stock",
		fiber.Map{"stock_qty": 42}, admin))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set stock: status = %d", resp.StatusCode)
	}

	resp, err = app.Test(jsonReq(t, "DELETE", "/api/admin/products/"+created.ID, nil, admin))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("deactivate: status = %d, want 204", resp.StatusCode)
	}

	// Deactivated products vanish from the public catalog.
	resp, err = app.Test(jsonReq(t, "GET", "/api/products/usb-microphone", nil, ""))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("inactive product visible: status = %d", resp.StatusCode)
	}
}

func TestAdminCreateDiscountAndShipping(t *testing.T) {
	app, _ := newTestApp(t)
	admin := adminToken(t, app)

	resp, err := app.Test(jsonReq(t, "POST", "/api/admin/discounts", fiber.Map{
		"code":       "spring20",
		"name":       "Spring sale",
		"type":       "percentage",
		"value":      "20",
		"max_amount": "15",
		"valid_from": "2026-01-01T00:00:00Z",
	}, admin))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create discount: status = %d", resp.StatusCode)
	}
	var d struct {
		Code string `json:"code"`
	}
	decode(t, resp, &d)
	if d.Code != "SPRING20" {
		t.Errorf("code = %s, want normalized SPRING20", d.Code)
	}

	// 100+ percent is nonsense.
	resp, err = app.Test(jsonReq(t, "POST", "/api/admin/discounts", fiber.Map{
		"code": "OVER", "name": "Too much", "type": "percentage", "value": "150",
		"valid_from": "2026-01-01T00:00:00Z",
	}, admin))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("150%%: status = %d, want 400", resp.StatusCode)
	}

	// A window that does not parse must be refused, not stored.
	resp, err = app.Test(jsonReq(t, "POST", "/api/admin/discounts", fiber.Map{
		"code": "BADDATE", "name": "Broken window", "type": "percentage", "value": "10",
		"valid_from": "next tuesday",
	}, admin))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad valid_from: status = %d, want 400", resp.StatusCode)
	}
	var fieldErrs struct {
		Errors map[string]string `json:"errors"`
	}
	decode(t, resp, &fieldErrs)
	if fieldErrs.Errors["valid_from"] == "" {
		t.Errorf("errors = %v, want a valid_from entry", fieldErrs.Errors)
	}

	resp, err = app.Test(jsonReq(t, "POST", "/api/admin/shipping-methods", fiber.Map{
		"name":              "Economy",
		"base_cost":         "3.00",
		"cost_per_kg":       "1.50",
		"min_delivery_days": 5,
		"max_delivery_days": 10,
	}, admin))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create shipping method: status = %d", resp.StatusCode)
	}
}

// Admins see deactivated shipping methods; shoppers never do.
func TestAdminShippingListIncludesInactive(t *testing.T) {
	app, _ := newTestApp(t)
	admin := adminToken(t, app)

	resp, err := app.Test(jsonReq(t, "POST", "/api/admin/shipping-methods", fiber.Map{
		"name":        "Retired Courier",
		"base_cost":   "4.00",
		"cost_per_kg": "1.00",
		"active":      false,
	}, admin))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create inactive method: status = %d", resp.StatusCode)
	}

	resp, err = app.Test(jsonReq(t, "GET", "/api/admin/shipping-methods", nil, admin))
	if err != nil {
		t.Fatal(err)
	}
	var listing struct {
		Methods []struct {
			Name   string `json:"name"`
			Active bool   `json:"active"`
		} `json:"shipping_methods"`
	}
	decode(t, resp, &listing)
	found := false
	for _, m := range listing.Methods {
		if m.Name == "Retired Courier" {
			found = true
			if m.Active {
				t.Error("method stored as active, want inactive")
			}
		}
	}
	if !found {
		t.Fatalf("inactive method missing from admin listing: %+v", listing.Methods)
	}

	buyer := registerAndLogin(t, app, "shipper@example.test")
	fillCartAPI(t, app, buyer, 1)
	resp, err = app.Test(jsonReq(t, "GET", "/api/orders/shipping-methods", nil, buyer))
	if err != nil {
		t.Fatal(err)
	}
	var offered struct {
		Methods []struct {
			Name string `json:"name"`
		} `json:"shipping_methods"`
	}
	decode(t, resp, &offered)
	for _, m := range offered.Methods {
		if m.Name == "Retired Courier" {
			t.Error("inactive method offered at checkout")
		}
	}
}
