package domain

import "github.com/shopspring/decimal"

type Cart struct {
	ID        string `db:"id" json:"id"`
	UserID    string `db:"user_id" json:"-"`
	CreatedAt string `db:"created_at" json:"created_at"`
	UpdatedAt string `db:"updated_at" json:"updated_at,omitempty"`
}

// CartItem captures the unit price at add time; later product price changes
// do not reprice lines already in the cart.
type CartItem struct {
	ID        string          `db:"id" json:"id"`
	CartID    string          `db:"cart_id" json:"-"`
	ProductID string          `db:"product_id" json:"product_id"`
	VariantID string          `db:"variant_id" json:"variant_id,omitempty"` // empty for simple products
	Quantity  int             `db:"quantity" json:"quantity"`
	UnitPrice decimal.Decimal `db:"unit_price" json:"unit_price"`
	CreatedAt string          `db:"created_at" json:"created_at"`

	// Joined product columns for views.
	ProductName string          `db:"product_name" json:"product_name"`
	ProductSKU  string          `db:"product_sku" json:"product_sku"`
	VariantName string          `db:"variant_name" json:"variant_name,omitempty"`
	Weight      decimal.Decimal `db:"weight" json:"weight"`
}

func (it *CartItem) TotalPrice() decimal.Decimal {
	return it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// CartView bundles a cart's lines with its derived totals. Totals are always
// computed, never stored.
type CartView struct {
	Items       []CartItem      `json:"items"`
	TotalItems  int             `json:"total_items"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	TotalWeight decimal.Decimal `json:"total_weight"`
}
