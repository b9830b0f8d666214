package services_test

import (
	"testing"

	"github.com/google/uuid"

	"storefront/internal/repos"
	"storefront/internal/services"
)

func TestCartAddChecksStock(t *testing.T) {
	db := openTestDB(t)
	u := newTestUser(t, db)
	cartSvc := services.NewCartService(repos.NewCartRepo(db), repos.NewProductRepo(db))

	if _, err := db.Exec(`UPDATE products SET stock_qty=1 WHERE id='prod-webcam'`); err != nil {
		t.Fatal(err)
	}
	if err := cartSvc.Add(u.ID, "prod-webcam", "", 2); err != services.ErrNotEnoughStock {
		t.Fatalf("got %v, want ErrNotEnoughStock", err)
	}
	if err := cartSvc.Add(u.ID, "prod-webcam", "", 1); err != nil {
		t.Fatalf("add within stock: %v", err)
	}

	// Variant lines check the variant's own stock.
	if _, err := db.Exec(`UPDATE product_variants SET stock_qty=0 WHERE id='var-kb-red'`); err != nil {
		t.Fatal(err)
	}
	if err := cartSvc.Add(u.ID, "prod-keyboard", "var-kb-red", 1); err != services.ErrNotEnoughStock {
		t.Fatalf("variant: got %v, want ErrNotEnoughStock", err)
	}
}

func TestCartAddCapturesCurrentPrice(t *testing.T) {
	db := openTestDB(t)
	u := newTestUser(t, db)
	cartSvc := services.NewCartService(repos.NewCartRepo(db), repos.NewProductRepo(db))

	// Headphones are on sale at 129.00.
	if err := cartSvc.Add(u.ID, "prod-headphones", "", 1); err != nil {
		t.Fatal(err)
	}
	// Red switch variant overrides the keyboard price with 94.00.
	if err := cartSvc.Add(u.ID, "prod-keyboard", "var-kb-red", 1); err != nil {
		t.Fatal(err)
	}

	view, err := cartSvc.View(u.ID)
	if err != nil {
		t.Fatal(err)
	}
	prices := map[string]string{}
	for _, it := range view.Items {
		prices[it.ProductID] = it.UnitPrice.StringFixed(2)
	}
	if prices["prod-headphones"] != "129.00" {
		t.Errorf("headphones price = %s, want sale price 129.00", prices["prod-headphones"])
	}
	if prices["prod-keyboard"] != "94.00" {
		t.Errorf("keyboard variant price = %s, want 94.00", prices["prod-keyboard"])
	}

	// Later price changes do not reprice existing lines.
	if _, err := db.Exec(`UPDATE products SET sale_price='99.00' WHERE id='prod-headphones'`); err != nil {
		t.Fatal(err)
	}
	view, err = cartSvc.View(u.ID)
	if err != nil {
		t.Fatal(err)
	}
	for _, it := range view.Items {
		if it.ProductID == "prod-headphones" && it.UnitPrice.StringFixed(2) != "129.00" {
			t.Errorf("line repriced to %s after catalog change", it.UnitPrice.StringFixed(2))
		}
	}
}

func TestCartAddMergesDuplicateLines(t *testing.T) {
	db := openTestDB(t)
	u := newTestUser(t, db)
	cartSvc := services.NewCartService(repos.NewCartRepo(db), repos.NewProductRepo(db))

	if err := cartSvc.Add(u.ID, "prod-stand", "", 1); err != nil {
		t.Fatal(err)
	}
	if err := cartSvc.Add(u.ID, "prod-stand", "", 2); err != nil {
		t.Fatal(err)
	}

	view, err := cartSvc.View(u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(view.Items) != 1 {
		t.Fatalf("lines = %d, want 1 merged line", len(view.Items))
	}
	if view.Items[0].Quantity != 3 {
		t.Fatalf("quantity = %d, want 3", view.Items[0].Quantity)
	}
}

func TestCartSetQuantityZeroRemovesLine(t *testing.T) {
	db := openTestDB(t)
	u := newTestUser(t, db)
	cartSvc := services.NewCartService(repos.NewCartRepo(db), repos.NewProductRepo(db))

	if err := cartSvc.Add(u.ID, "prod-stand", "", 2); err != nil {
		t.Fatal(err)
	}
	view, err := cartSvc.View(u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if err := cartSvc.SetQuantity(u.ID, view.Items[0].ID, 0); err != nil {
		t.Fatalf("set quantity 0: %v", err)
	}

	view, err = cartSvc.View(u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(view.Items) != 0 {
		t.Fatalf("line not removed, %d remain", len(view.Items))
	}
}

func TestCartRejectsUnknownItemsAndProducts(t *testing.T) {
	db := openTestDB(t)
	u := newTestUser(t, db)
	cartSvc := services.NewCartService(repos.NewCartRepo(db), repos.NewProductRepo(db))

	if err := cartSvc.Add(u.ID, "no-such-product", "", 1); err != services.ErrProductUnavailable {
		t.Fatalf("got %v, want ErrProductUnavailable", err)
	}
	// Variant belonging to a different product is refused.
	if err := cartSvc.Add(u.ID, "prod-stand", "var-kb-red", 1); err != services.ErrProductUnavailable {
		t.Fatalf("got %v, want ErrProductUnavailable", err)
	}
	if err := cartSvc.SetQuantity(u.ID, uuid.NewString(), 2); err != services.ErrCartItemNotFound {
		t.Fatalf("got %v, want ErrCartItemNotFound", err)
	}
}

func TestCartViewTotals(t *testing.T) {
	db := openTestDB(t)
	u := newTestUser(t, db)
	cartSvc := services.NewCartService(repos.NewCartRepo(db), repos.NewProductRepo(db))

	if err := cartSvc.Add(u.ID, "prod-stand", "", 2); err != nil { // 39.90 x2, 1.30 kg each
		t.Fatal(err)
	}
	if err := cartSvc.Add(u.ID, "prod-webcam", "", 1); err != nil { // 99.50, 0.20 kg
		t.Fatal(err)
	}

	view, err := cartSvc.View(u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if view.TotalItems != 3 {
		t.Errorf("total items = %d, want 3", view.TotalItems)
	}
	if view.Subtotal.StringFixed(2) != "179.30" {
		t.Errorf("subtotal = %s, want 179.30", view.Subtotal.StringFixed(2))
	}
	if view.TotalWeight.StringFixed(2) != "2.80" {
		t.Errorf("weight = %s, want 2.80", view.TotalWeight.StringFixed(2))
	}
}
