package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DiscountPercentage   = "percentage"
	DiscountFixedAmount  = "fixed_amount"
	DiscountFreeShipping = "free_shipping"
)

type Discount struct {
	ID          string `db:"id" json:"id"`
	Code        string `db:"code" json:"code"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description,omitempty"`

	Type  string          `db:"type" json:"type"`
	Value decimal.Decimal `db:"value" json:"value"` // percent points or fixed amount

	UsageLimit        int `db:"usage_limit" json:"usage_limit,omitempty"` // 0 = unlimited
	UsageLimitPerUser int `db:"usage_limit_per_user" json:"usage_limit_per_user"`
	UsedCount         int `db:"used_count" json:"used_count"`

	MinOrderAmount decimal.Decimal     `db:"min_order_amount" json:"min_order_amount"`
	MaxAmount      decimal.NullDecimal `db:"max_amount" json:"max_amount,omitempty"`

	Active     bool   `db:"active" json:"active"`
	ValidFrom  string `db:"valid_from" json:"valid_from"`
	ValidUntil string `db:"valid_until" json:"valid_until,omitempty"` // empty = no expiry

	CreatedAt string `db:"created_at" json:"created_at"`
}

func (d *Discount) WithinWindow(now time.Time) bool {
	from, err := time.Parse(time.RFC3339, d.ValidFrom)
	if err != nil || from.After(now) {
		return false
	}
	if d.ValidUntil != "" {
		until, err := time.Parse(time.RFC3339, d.ValidUntil)
		if err != nil || until.Before(now) {
			return false
		}
	}
	return true
}

// Amount computes the subtotal reduction for this discount. Free shipping
// discounts reduce shipping cost instead and always return zero here.
// Percentage discounts are clamped to MaxAmount when set; fixed amounts never
// push the subtotal below zero.
func (d *Discount) Amount(subtotal decimal.Decimal) decimal.Decimal {
	var amount decimal.Decimal
	switch d.Type {
	case DiscountPercentage:
		amount = subtotal.Mul(d.Value).Div(decimal.NewFromInt(100))
	case DiscountFixedAmount:
		amount = d.Value
		if amount.GreaterThan(subtotal) {
			amount = subtotal
		}
	default:
		return decimal.Zero
	}
	if d.MaxAmount.Valid && amount.GreaterThan(d.MaxAmount.Decimal) {
		amount = d.MaxAmount.Decimal
	}
	return amount.Round(2)
}

type ShippingMethod struct {
	ID          string `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description,omitempty"`

	BaseCost  decimal.Decimal `db:"base_cost" json:"base_cost"`
	CostPerKg decimal.Decimal `db:"cost_per_kg" json:"cost_per_kg"`

	MinDeliveryDays int `db:"min_delivery_days" json:"min_delivery_days"`
	MaxDeliveryDays int `db:"max_delivery_days" json:"max_delivery_days"`

	Active         bool                `db:"active" json:"active"`
	MinOrderAmount decimal.Decimal     `db:"min_order_amount" json:"min_order_amount"`
	MaxWeight      decimal.NullDecimal `db:"max_weight" json:"max_weight,omitempty"`

	CreatedAt string `db:"created_at" json:"created_at"`
}

// Cost = base + per-kg rate times total weight.
func (m *ShippingMethod) Cost(weight decimal.Decimal) decimal.Decimal {
	return m.BaseCost.Add(m.CostPerKg.Mul(weight)).Round(2)
}

// AvailableFor gates a method by order subtotal and total weight. Ineligible
// methods are filtered out of the offered set, never an error.
func (m *ShippingMethod) AvailableFor(subtotal, weight decimal.Decimal) bool {
	if !m.Active {
		return false
	}
	if subtotal.LessThan(m.MinOrderAmount) {
		return false
	}
	if m.MaxWeight.Valid && weight.GreaterThan(m.MaxWeight.Decimal) {
		return false
	}
	return true
}
