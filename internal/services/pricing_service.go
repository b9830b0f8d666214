package services

import (
	"database/sql"
	"errors"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repos"

	"github.com/shopspring/decimal"
)

// Discount rejections, in validation order. Each one is a user-facing reason;
// the first failing check wins and nothing is partially applied.
var (
	ErrDiscountNotFound  = errors.New("invalid discount code")
	ErrDiscountInactive  = errors.New("discount code is not active")
	ErrDiscountNotValid  = errors.New("discount code is not valid yet or has expired")
	ErrBelowMinimum      = errors.New("order subtotal is below the discount minimum")
	ErrUsageLimitReached = errors.New("discount usage limit reached")
	ErrUserLimitReached  = errors.New("discount already used the maximum number of times")
)

var ErrShippingUnavailable = errors.New("shipping method not available for this order")

type PricingService struct {
	Carts     *repos.CartRepo
	Discounts *repos.DiscountRepo
	Shipping  *repos.ShippingRepo
	TaxRate   decimal.Decimal

	// Now is swappable for tests; defaults to time.Now.
	Now func() time.Time
}

func NewPricingService(carts *repos.CartRepo, discounts *repos.DiscountRepo, shipping *repos.ShippingRepo, taxRate decimal.Decimal) *PricingService {
	return &PricingService{Carts: carts, Discounts: discounts, Shipping: shipping, TaxRate: taxRate, Now: time.Now}
}

// Quote is the structured pricing breakdown. Producing one has no side
// effects: usage counters move only when an order is placed.
type Quote struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	ShippingCost   decimal.Decimal `json:"shipping_cost"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Total          decimal.Decimal `json:"total"`
	CartItems      int             `json:"cart_items"`
	DiscountCode   string          `json:"discount_code,omitempty"`
	ShippingMethod string          `json:"shipping_method,omitempty"`
}

// ValidateDiscount runs the eligibility checks in their fixed order:
// existence, active flag, validity window, minimum subtotal, global usage
// limit, per-customer usage limit.
func (s *PricingService) ValidateDiscount(code, userID string, subtotal decimal.Decimal) (domain.Discount, error) {
	d, err := s.Discounts.ByCode(code)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Discount{}, ErrDiscountNotFound
		}
		return domain.Discount{}, err
	}
	if !d.Active {
		return domain.Discount{}, ErrDiscountInactive
	}
	if !d.WithinWindow(s.Now().UTC()) {
		return domain.Discount{}, ErrDiscountNotValid
	}
	if subtotal.LessThan(d.MinOrderAmount) {
		return domain.Discount{}, ErrBelowMinimum
	}
	if d.UsageLimit > 0 && d.UsedCount >= d.UsageLimit {
		return domain.Discount{}, ErrUsageLimitReached
	}
	if userID != "" && d.UsageLimitPerUser > 0 {
		used, err := s.Discounts.RedemptionsByUser(d.ID, userID)
		if err != nil {
			return domain.Discount{}, err
		}
		if used >= d.UsageLimitPerUser {
			return domain.Discount{}, ErrUserLimitReached
		}
	}
	return d, nil
}

// OfferedMethods returns the shipping methods eligible for the given subtotal
// and weight. Ineligible methods are filtered out, never an error.
func (s *PricingService) OfferedMethods(subtotal, weight decimal.Decimal) ([]domain.ShippingMethod, error) {
	all, err := s.Shipping.ListActive()
	if err != nil {
		return nil, err
	}
	offered := make([]domain.ShippingMethod, 0, len(all))
	for _, m := range all {
		if m.AvailableFor(subtotal, weight) {
			offered = append(offered, m)
		}
	}
	return offered, nil
}

// QuoteCart prices the user's cart with an optional discount code and chosen
// shipping method. Pure calculation; calling it any number of times changes
// nothing.
func (s *PricingService) QuoteCart(userID, shippingMethodID, discountCode string) (Quote, error) {
	cartID, err := s.Carts.EnsureCart(userID)
	if err != nil {
		return Quote{}, err
	}
	items, err := s.Carts.Items(cartID)
	if err != nil {
		return Quote{}, err
	}

	subtotal := decimal.Zero
	weight := decimal.Zero
	count := 0
	for _, it := range items {
		subtotal = subtotal.Add(it.TotalPrice())
		weight = weight.Add(it.Weight.Mul(decimal.NewFromInt(int64(it.Quantity))))
		count += it.Quantity
	}

	q := Quote{Subtotal: subtotal.Round(2), CartItems: count}

	if shippingMethodID != "" {
		m, err := s.Shipping.Get(shippingMethodID)
		if err != nil {
			if err == sql.ErrNoRows {
				return Quote{}, ErrShippingUnavailable
			}
			return Quote{}, err
		}
		if !m.AvailableFor(q.Subtotal, weight) {
			return Quote{}, ErrShippingUnavailable
		}
		q.ShippingCost = m.Cost(weight)
		q.ShippingMethod = m.Name
	}

	q.TaxAmount = q.Subtotal.Mul(s.TaxRate).Round(2)

	if discountCode != "" {
		d, err := s.ValidateDiscount(discountCode, userID, q.Subtotal)
		if err != nil {
			return Quote{}, err
		}
		q.DiscountCode = d.Code
		if d.Type == domain.DiscountFreeShipping {
			// Zeroes the shipping line; the subtotal is untouched.
			q.ShippingCost = decimal.Zero
		} else {
			q.DiscountAmount = d.Amount(q.Subtotal)
		}
	}

	q.Total = q.Subtotal.Add(q.ShippingCost).Add(q.TaxAmount).Sub(q.DiscountAmount)
	return q, nil
}
