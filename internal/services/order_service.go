package services

import (
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repos"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrCartEmpty         = errors.New("cart is empty")
	ErrOrderNotFound     = errors.New("order not found")
	ErrCannotCancel      = errors.New("order cannot be cancelled")
	ErrBadTransition     = errors.New("illegal status transition")
	ErrNotRefundable     = errors.New("order has no refundable payment")
	ErrPaymentNotAllowed = errors.New("order is not awaiting payment")
)

// OrderAddress carries the snapshot fields for one side (billing or shipping)
// of an order.
type OrderAddress struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email,omitempty"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type PlaceOrderInput struct {
	Billing          OrderAddress
	Shipping         OrderAddress
	ShippingMethodID string
	DiscountCode     string
	CustomerNotes    string
}

type OrderService struct {
	Carts   *repos.CartRepo
	Orders  *repos.OrderRepo
	Pricing *PricingService

	// NewNumber is swappable for tests; defaults to newOrderNumber.
	NewNumber func(time.Time) string
}

func NewOrderService(carts *repos.CartRepo, orders *repos.OrderRepo, pricing *PricingService) *OrderService {
	return &OrderService{Carts: carts, Orders: orders, Pricing: pricing, NewNumber: newOrderNumber}
}

// Place turns the user's cart into an order. Totals are always recomputed
// server-side; the discount counter moves in the same transaction as the
// order insert.
func (s *OrderService) Place(userID string, in PlaceOrderInput) (*domain.Order, error) {
	cartID, err := s.Carts.EnsureCart(userID)
	if err != nil {
		return nil, err
	}
	items, err := s.Carts.Items(cartID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrCartEmpty
	}

	quote, err := s.Pricing.QuoteCart(userID, in.ShippingMethodID, in.DiscountCode)
	if err != nil {
		return nil, err
	}

	var disc *domain.Discount
	if in.DiscountCode != "" {
		d, err := s.Pricing.Discounts.ByCode(in.DiscountCode)
		if err != nil {
			return nil, ErrDiscountNotFound
		}
		disc = &d
	}

	now := time.Now().UTC()
	o := &domain.Order{
		ID:          uuid.NewString(),
		OrderNumber: s.NewNumber(now),
		UserID:      userID,

		BillingFirstName: in.Billing.FirstName,
		BillingLastName:  in.Billing.LastName,
		BillingEmail:     in.Billing.Email,
		BillingLine1:     in.Billing.Line1,
		BillingLine2:     in.Billing.Line2,
		BillingCity:      in.Billing.City,
		BillingState:     in.Billing.State,
		BillingPostal:    in.Billing.PostalCode,
		BillingCountry:   in.Billing.Country,

		ShippingFirstName: in.Shipping.FirstName,
		ShippingLastName:  in.Shipping.LastName,
		ShippingLine1:     in.Shipping.Line1,
		ShippingLine2:     in.Shipping.Line2,
		ShippingCity:      in.Shipping.City,
		ShippingState:     in.Shipping.State,
		ShippingPostal:    in.Shipping.PostalCode,
		ShippingCountry:   in.Shipping.Country,

		Subtotal:       quote.Subtotal,
		ShippingCost:   quote.ShippingCost,
		TaxAmount:      quote.TaxAmount,
		DiscountAmount: quote.DiscountAmount,
		TotalAmount:    quote.Total,
		DiscountCode:   quote.DiscountCode,

		Status:         domain.OrderPending,
		ShippingStatus: domain.ShippingPending,
		ShippingMethod: quote.ShippingMethod,
		CustomerNotes:  in.CustomerNotes,
		CreatedAt:      now.Format(time.RFC3339),
	}

	orderItems := make([]domain.OrderItem, 0, len(items))
	for _, it := range items {
		orderItems = append(orderItems, domain.OrderItem{
			OrderID:     o.ID,
			ProductID:   it.ProductID,
			VariantID:   it.VariantID,
			ProductName: it.ProductName,
			ProductSKU:  it.ProductSKU,
			VariantName: it.VariantName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}

	// The random suffix can collide for orders placed the same second; the
	// transaction rolls back on the UNIQUE index, so draw a new number and retry.
	for attempt := 0; ; attempt++ {
		err := s.Orders.Place(o, orderItems, disc, cartID)
		if err == nil {
			return o, nil
		}
		if attempt < 3 && strings.Contains(err.Error(), "orders.order_number") {
			o.OrderNumber = s.NewNumber(time.Now().UTC())
			continue
		}
		return nil, err
	}
}

func newOrderNumber(now time.Time) string {
	return fmt.Sprintf("ORD-%s-%s-%04d", now.Format("20060102"), now.Format("150405"), rand.Intn(9000)+1000)
}

// Get returns an order visible to the given user: the owner, or any admin.
func (s *OrderService) Get(user *domain.User, orderNumber string) (domain.Order, []domain.OrderItem, []domain.Payment, error) {
	o, items, err := s.Orders.ByNumber(orderNumber)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Order{}, nil, nil, ErrOrderNotFound
		}
		return domain.Order{}, nil, nil, err
	}
	if o.UserID != user.ID && user.Role != "ADMIN" {
		return domain.Order{}, nil, nil, ErrOrderNotFound
	}
	payments, err := s.Orders.PaymentsFor(o.ID)
	if err != nil {
		return domain.Order{}, nil, nil, err
	}
	return o, items, payments, nil
}

func (s *OrderService) ListForUser(userID string) ([]domain.Order, error) {
	return s.Orders.ListByUser(userID, 100)
}

// Cancel is allowed only while the order is pending/paid and fulfillment has
// not started.
func (s *OrderService) Cancel(user *domain.User, orderNumber string) error {
	o, _, err := s.Orders.ByNumber(orderNumber)
	if err != nil || (o.UserID != user.ID && user.Role != "ADMIN") {
		return ErrOrderNotFound
	}
	if !o.CanBeCancelled() {
		return ErrCannotCancel
	}
	return s.Orders.UpdateStatus(o.ID, domain.OrderCancelled, o.ShippingStatus, "")
}

// Transition moves an order along its status lifecycle (admin operation).
// Shipping status follows the order status where that mapping is unambiguous.
func (s *OrderService) Transition(orderNumber, to, tracking string) (domain.Order, error) {
	o, _, err := s.Orders.ByNumber(orderNumber)
	if err != nil {
		return domain.Order{}, ErrOrderNotFound
	}
	if !domain.AllowedTransition(o.Status, to) {
		return domain.Order{}, fmt.Errorf("%w: %s -> %s", ErrBadTransition, o.Status, to)
	}

	shippingStatus := o.ShippingStatus
	switch to {
	case domain.OrderProcessing:
		shippingStatus = domain.ShippingPreparing
	case domain.OrderShipped:
		shippingStatus = domain.ShippingShipped
	case domain.OrderDelivered:
		shippingStatus = domain.ShippingDelivered
	case domain.OrderRefunded:
		shippingStatus = domain.ShippingReturned
	}
	if err := s.Orders.UpdateStatus(o.ID, to, shippingStatus, tracking); err != nil {
		return domain.Order{}, err
	}
	o2, _, err := s.Orders.ByNumber(orderNumber)
	return o2, err
}

// Pay records a completed payment and moves the order pending -> paid.
func (s *OrderService) Pay(user *domain.User, orderNumber, method, cardLastFour, cardBrand string) (*domain.Payment, error) {
	o, _, err := s.Orders.ByNumber(orderNumber)
	if err != nil || o.UserID != user.ID {
		return nil, ErrOrderNotFound
	}
	if o.Status != domain.OrderPending {
		return nil, ErrPaymentNotAllowed
	}

	p := &domain.Payment{
		ID:           uuid.NewString(),
		OrderID:      o.ID,
		Method:       method,
		Amount:       o.TotalAmount,
		Currency:     "USD",
		Status:       domain.PaymentCompleted,
		CardLastFour: cardLastFour,
		CardBrand:    cardBrand,
		RefundAmount: decimal.Zero,
		ProcessedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.Orders.AddPayment(p); err != nil {
		return nil, err
	}
	if err := s.Orders.UpdateStatus(o.ID, domain.OrderPaid, o.ShippingStatus, ""); err != nil {
		return nil, err
	}
	return p, nil
}

// Refund refunds the order's completed payment in full and moves the order to
// refunded, when the transition table allows it.
func (s *OrderService) Refund(orderNumber string) error {
	o, _, err := s.Orders.ByNumber(orderNumber)
	if err != nil {
		return ErrOrderNotFound
	}
	if !domain.AllowedTransition(o.Status, domain.OrderRefunded) {
		return fmt.Errorf("%w: %s -> %s", ErrBadTransition, o.Status, domain.OrderRefunded)
	}
	payments, err := s.Orders.PaymentsFor(o.ID)
	if err != nil {
		return err
	}
	var refundable *domain.Payment
	for i := range payments {
		if payments[i].CanBeRefunded() {
			refundable = &payments[i]
			break
		}
	}
	if refundable == nil {
		return ErrNotRefundable
	}
	if err := s.Orders.MarkPaymentRefunded(refundable.ID, refundable.Amount.String()); err != nil {
		return err
	}
	return s.Orders.UpdateStatus(o.ID, domain.OrderRefunded, domain.ShippingReturned, "")
}
