package domain

import "github.com/shopspring/decimal"

// Order status lifecycle. Forward transitions are linear; cancel and refund
// branch off per the guards in AllowedTransition.
const (
	OrderPending    = "pending"
	OrderPaid       = "paid"
	OrderProcessing = "processing"
	OrderShipped    = "shipped"
	OrderDelivered  = "delivered"
	OrderCancelled  = "cancelled"
	OrderRefunded   = "refunded"
)

const (
	ShippingPending   = "pending"
	ShippingPreparing = "preparing"
	ShippingShipped   = "shipped"
	ShippingInTransit = "in_transit"
	ShippingDelivered = "delivered"
	ShippingReturned  = "returned"
)

var orderTransitions = map[string][]string{
	OrderPending:    {OrderPaid, OrderCancelled},
	OrderPaid:       {OrderProcessing, OrderCancelled, OrderRefunded},
	OrderProcessing: {OrderShipped, OrderRefunded},
	OrderShipped:    {OrderDelivered, OrderRefunded},
	OrderDelivered:  {OrderRefunded},
	OrderCancelled:  {},
	OrderRefunded:   {},
}

// AllowedTransition reports whether an order may move from one status to
// another. Terminal states are one-directional: nothing ever returns to
// pending.
func AllowedTransition(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Order struct {
	ID          string `db:"id" json:"id"`
	OrderNumber string `db:"order_number" json:"order_number"`
	UserID      string `db:"user_id" json:"-"`

	BillingFirstName string `db:"billing_first_name" json:"billing_first_name"`
	BillingLastName  string `db:"billing_last_name" json:"billing_last_name"`
	BillingEmail     string `db:"billing_email" json:"billing_email"`
	BillingLine1     string `db:"billing_line1" json:"billing_line1"`
	BillingLine2     string `db:"billing_line2" json:"billing_line2,omitempty"`
	BillingCity      string `db:"billing_city" json:"billing_city"`
	BillingState     string `db:"billing_state" json:"billing_state"`
	BillingPostal    string `db:"billing_postal" json:"billing_postal"`
	BillingCountry   string `db:"billing_country" json:"billing_country"`

	ShippingFirstName string `db:"shipping_first_name" json:"shipping_first_name"`
	ShippingLastName  string `db:"shipping_last_name" json:"shipping_last_name"`
	ShippingLine1     string `db:"shipping_line1" json:"shipping_line1"`
	ShippingLine2     string `db:"shipping_line2" json:"shipping_line2,omitempty"`
	ShippingCity      string `db:"shipping_city" json:"shipping_city"`
	ShippingState     string `db:"shipping_state" json:"shipping_state"`
	ShippingPostal    string `db:"shipping_postal" json:"shipping_postal"`
	ShippingCountry   string `db:"shipping_country" json:"shipping_country"`

	Subtotal       decimal.Decimal `db:"subtotal" json:"subtotal"`
	ShippingCost   decimal.Decimal `db:"shipping_cost" json:"shipping_cost"`
	TaxAmount      decimal.Decimal `db:"tax_amount" json:"tax_amount"`
	DiscountAmount decimal.Decimal `db:"discount_amount" json:"discount_amount"`
	TotalAmount    decimal.Decimal `db:"total_amount" json:"total_amount"`
	DiscountCode   string          `db:"discount_code" json:"discount_code,omitempty"`

	Status         string `db:"status" json:"status"`
	ShippingStatus string `db:"shipping_status" json:"shipping_status"`
	ShippingMethod string `db:"shipping_method" json:"shipping_method"`
	TrackingNumber string `db:"tracking_number" json:"tracking_number,omitempty"`
	CustomerNotes  string `db:"customer_notes" json:"customer_notes,omitempty"`

	CreatedAt   string `db:"created_at" json:"created_at"`
	UpdatedAt   string `db:"updated_at" json:"updated_at,omitempty"`
	ShippedAt   string `db:"shipped_at" json:"shipped_at,omitempty"`
	DeliveredAt string `db:"delivered_at" json:"delivered_at,omitempty"`
}

// CanBeCancelled: only before fulfillment starts.
func (o *Order) CanBeCancelled() bool {
	return (o.Status == OrderPending || o.Status == OrderPaid) && o.ShippingStatus == ShippingPending
}

func (o *Order) IsPaid() bool {
	return o.Status != OrderPending && o.Status != OrderCancelled
}

type OrderItem struct {
	OrderID     string          `db:"order_id" json:"-"`
	ProductID   string          `db:"product_id" json:"product_id"`
	VariantID   string          `db:"variant_id" json:"variant_id,omitempty"`
	ProductName string          `db:"product_name" json:"product_name"`
	ProductSKU  string          `db:"product_sku" json:"product_sku"`
	VariantName string          `db:"variant_name" json:"variant_name,omitempty"`
	Quantity    int             `db:"quantity" json:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unit_price"`
	TotalPrice  decimal.Decimal `db:"total_price" json:"total_price"`
}

const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
	PaymentRefunded  = "refunded"
)

type Payment struct {
	ID           string          `db:"id" json:"id"`
	OrderID      string          `db:"order_id" json:"-"`
	Method       string          `db:"method" json:"method"` // credit_card | paypal | bank_transfer | cash_on_delivery
	Amount       decimal.Decimal `db:"amount" json:"amount"`
	Currency     string          `db:"currency" json:"currency"`
	Status       string          `db:"status" json:"status"`
	CardLastFour string          `db:"card_last_four" json:"card_last_four,omitempty"`
	CardBrand    string          `db:"card_brand" json:"card_brand,omitempty"`
	RefundAmount decimal.Decimal `db:"refund_amount" json:"refund_amount"`
	CreatedAt    string          `db:"created_at" json:"created_at"`
	ProcessedAt  string          `db:"processed_at" json:"processed_at,omitempty"`
}

func (p *Payment) CanBeRefunded() bool {
	return p.Status == PaymentCompleted && p.RefundAmount.LessThan(p.Amount)
}
