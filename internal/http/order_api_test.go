package handlers_test

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestCatalogBrowsing(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(jsonReq(t, "GET", "/api/products/", nil, ""))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list products: status = %d", resp.StatusCode)
	}

	resp, err = app.Test(jsonReq(t, "GET", "/api/products/mechanical-keyboard", nil, ""))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("product detail: status = %d", resp.StatusCode)
	}
	var detail struct {
		Product struct {
			SKU string `json:"sku"`
		} `json:"product"`
		Variants []struct {
			Name string `json:"name"`
		} `json:"variants"`
	}
	decode(t, resp, &detail)
	if detail.Product.SKU != "KB-001" {
		t.Errorf("sku = %q, want KB-001", detail.Product.SKU)
	}
	if len(detail.Variants) != 2 {
		t.Errorf("variants = %d, want 2", len(detail.Variants))
	}

	resp, err = app.Test(jsonReq(t, "GET", "/api/products/no-such-slug", nil, ""))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown slug: status = %d, want 404", resp.StatusCode)
	}
}

func TestCartRequiresAuth(t *testing.T) {
	app, _ := newTestApp(t)
	resp, err := app.Test(jsonReq(t, "GET", "/api/orders/cart", nil, ""))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestCheckoutCalculateOverAPI(t *testing.T) {
	app, _ := newTestApp(t)
	token := registerAndLogin(t, app, "calc@example.test")

	// Empty cart cannot be priced.
	resp, err := app.Test(jsonReq(t, "GET", "/api/orders/checkout/calculate?shipping_method=ship-standard", nil, token))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty cart: status = %d, want 400", resp.StatusCode)
	}

	fillCartAPI(t, app, token, 2) // 79.80, 2.60 kg

	resp, err = app.Test(jsonReq(t, "GET", "/api/orders/checkout/calculate?shipping_method=ship-standard&discount=welcome10", nil, token))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("calculate: status = %d", resp.StatusCode)
	}
	var q struct {
		Subtotal       string `json:"subtotal"`
		ShippingCost   string `json:"shipping_cost"`
		TaxAmount      string `json:"tax_amount"`
		DiscountAmount string `json:"discount_amount"`
		Total          string `json:"total"`
	}
	decode(t, resp, &q)
	if q.Subtotal != "79.8" && q.Subtotal != "79.80" {
		t.Errorf("subtotal = %s", q.Subtotal)
	}
	if q.Total != "88.4" && q.Total != "88.40" {
		t.Errorf("total = %s, want 88.40", q.Total)
	}
}

func TestApplyDiscountOverAPI(t *testing.T) {
	app, _ := newTestApp(t)
	token := registerAndLogin(t, app, "disc@example.test")
	fillCartAPI(t, app, token, 2) // 79.80

	resp, err := app.Test(jsonReq(t, "POST", "/api/orders/discounts/apply", fiber.Map{"code": "welcome10"}, token))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("apply: status = %d", resp.StatusCode)
	}
	var body struct {
		Valid          bool   `json:"valid"`
		Code           string `json:"code"`
		DiscountAmount string `json:"discount_amount"`
		NewTotal       string `json:"new_total"`
	}
	decode(t, resp, &body)
	if !body.Valid || body.Code != "WELCOME10" {
		t.Errorf("body = %+v", body)
	}
	if body.DiscountAmount != "7.98" {
		t.Errorf("discount_amount = %s, want 7.98", body.DiscountAmount)
	}
	if body.NewTotal != "71.82" {
		t.Errorf("new_total = %s, want 71.82", body.NewTotal)
	}

	// SAVE15 needs a 50.00 subtotal; shrink the cart below it.
	resp, err = app.Test(jsonReq(t, "POST", "/api/orders/cart/clear", nil, token))
	if err != nil {
		t.Fatal(err)
	}
	fillCartAPI(t, app, token, 1) // 39.90
	resp, err = app.Test(jsonReq(t, "POST", "/api/orders/discounts/apply", fiber.Map{"code": "SAVE15"}, token))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("below minimum: status = %d, want 400", resp.StatusCode)
	}
}

func TestShippingMethodsFilteredForCart(t *testing.T) {
	app, _ := newTestApp(t)
	token := registerAndLogin(t, app, "ship@example.test")
	fillCartAPI(t, app, token, 2) // 79.80, below freight's 200 minimum

	resp, err := app.Test(jsonReq(t, "GET", "/api/orders/shipping-methods", nil, token))
	if err != nil {
		t.Fatal(err)
	}
	var body struct {
		ShippingMethods []struct {
			ID   string `json:"id"`
			Cost string `json:"cost"`
		} `json:"shipping_methods"`
	}
	decode(t, resp, &body)
	ids := map[string]string{}
	for _, m := range body.ShippingMethods {
		ids[m.ID] = m.Cost
	}
	if _, ok := ids["ship-freight"]; ok {
		t.Error("freight offered below its order minimum")
	}
	if cost := ids["ship-standard"]; cost != "10.20" {
		t.Errorf("standard cost = %s, want 10.20", cost)
	}
}

func TestOrderLifecycleOverAPI(t *testing.T) {
	app, _ := newTestApp(t)
	token := registerAndLogin(t, app, "buyer@example.test")
	fillCartAPI(t, app, token, 2)

	number := placeOrderAPI(t, app, token, "WELCOME10")

	// The order shows up in the owner's history and detail view.
	resp, err := app.Test(jsonReq(t, "GET", "/api/orders/"+number, nil, token))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("detail: status = %d", resp.StatusCode)
	}
	var detail struct {
		Order struct {
			Status       string `json:"status"`
			DiscountCode string `json:"discount_code"`
		} `json:"order"`
		Items []struct {
			Quantity int `json:"quantity"`
		} `json:"items"`
	}
	decode(t, resp, &detail)
	if detail.Order.Status != "pending" {
		t.Errorf("status = %s, want pending", detail.Order.Status)
	}
	if detail.Order.DiscountCode != "WELCOME10" {
		t.Errorf("discount code = %s", detail.Order.DiscountCode)
	}
	if len(detail.Items) != 1 || detail.Items[0].Quantity != 2 {
		t.Errorf("items = %+v", detail.Items)
	}

	// Another customer cannot see it.
	otherToken := registerAndLogin(t, app, "other@example.test")
	resp, err = app.Test(jsonReq(t, "GET", "/api/orders/"+number, nil, otherToken))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("foreign order: status = %d, want 404", resp.StatusCode)
	}

	// Pay, then cancellation is still possible before fulfillment.
	resp, err = app.Test(jsonReq(t, "POST", "/api/orders/"+number+"/pay", fiber.Map{
		"method": "credit_card", "card_last_four": "4242", "card_brand": "visa",
	}, token))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("pay: status = %d", resp.StatusCode)
	}
	resp, err = app.Test(jsonReq(t, "POST", "/api/orders/"+number+"/cancel", nil, token))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cancel: status = %d", resp.StatusCode)
	}
}

func TestReviewsOverAPI(t *testing.T) {
	app, _ := newTestApp(t)
	token := registerAndLogin(t, app, "reviewer@example.test")

	resp, err := app.Test(jsonReq(t, "POST", "/api/products/laptop-stand/reviews", fiber.Map{
		"rating": 5, "comment": "Sturdy and adjustable.",
	}, token))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add review: status = %d", resp.StatusCode)
	}

	// One review per customer per product.
	resp, err = app.Test(jsonReq(t, "POST", "/api/products/laptop-stand/reviews", fiber.Map{
		"rating": 4, "comment": "Changed my mind.",
	}, token))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate review: status = %d, want 409", resp.StatusCode)
	}

	resp, err = app.Test(jsonReq(t, "GET", "/api/products/laptop-stand/reviews", nil, ""))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list reviews: status = %d", resp.StatusCode)
	}
}
