package repos

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"

	"github.com/jmoiron/sqlx"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

var (
	ErrStockShort            = errors.New("insufficient stock")
	ErrDiscountExhausted     = errors.New("discount usage limit reached")
	ErrDiscountUserExhausted = errors.New("discount per-customer limit reached")
)

const orderCols = `id,order_number,user_id,
  billing_first_name,billing_last_name,billing_email,billing_line1,billing_line2,
  billing_city,billing_state,billing_postal,billing_country,
  shipping_first_name,shipping_last_name,shipping_line1,shipping_line2,
  shipping_city,shipping_state,shipping_postal,shipping_country,
  subtotal,shipping_cost,tax_amount,discount_amount,total_amount,discount_code,
  status,shipping_status,shipping_method,tracking_number,customer_notes,
  created_at,updated_at,shipped_at,delivered_at`

// Place creates the order and its items, decrements stock, redeems the
// discount (when one applies) and clears the cart, all in one transaction.
// The guarded statements make oversubscription impossible: a concurrent
// redemption or sale loses the race and rolls back.
func (r *OrderRepo) Place(o *domain.Order, items []domain.OrderItem, disc *domain.Discount, cartID string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(`
	  INSERT INTO orders(`+orderCols+`)
	  VALUES(?,?,?, ?,?,?,?,?,?,?,?,?, ?,?,?,?,?,?,?,?, ?,?,?,?,?,?, ?,?,?,?,?, ?,?,?,?)
	`, o.ID, o.OrderNumber, o.UserID,
		o.BillingFirstName, o.BillingLastName, o.BillingEmail, o.BillingLine1, o.BillingLine2,
		o.BillingCity, o.BillingState, o.BillingPostal, o.BillingCountry,
		o.ShippingFirstName, o.ShippingLastName, o.ShippingLine1, o.ShippingLine2,
		o.ShippingCity, o.ShippingState, o.ShippingPostal, o.ShippingCountry,
		o.Subtotal, o.ShippingCost, o.TaxAmount, o.DiscountAmount, o.TotalAmount, o.DiscountCode,
		o.Status, o.ShippingStatus, o.ShippingMethod, o.TrackingNumber, o.CustomerNotes,
		o.CreatedAt, "", "", "")
	if err != nil {
		return err
	}

	for _, it := range items {
		if _, err := tx.Exec(`
		  INSERT INTO order_items(order_id,product_id,variant_id,product_name,product_sku,variant_name,quantity,unit_price)
		  VALUES(?,?,?,?,?,?,?,?)
		`, o.ID, it.ProductID, it.VariantID, it.ProductName, it.ProductSKU, it.VariantName, it.Quantity, it.UnitPrice); err != nil {
			return err
		}

		// Guarded decrement: no row updated means not enough stock.
		var res sql.Result
		if it.VariantID != "" {
			res, err = tx.Exec(`UPDATE product_variants SET stock_qty = stock_qty - ? WHERE id = ? AND stock_qty >= ?`,
				it.Quantity, it.VariantID, it.Quantity)
		} else {
			res, err = tx.Exec(`UPDATE products SET stock_qty = stock_qty - ? WHERE id = ? AND stock_qty >= ?`,
				it.Quantity, it.ProductID, it.Quantity)
		}
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w for %s", ErrStockShort, it.ProductSKU)
		}
	}

	if disc != nil {
		res, err := tx.Exec(`
		  UPDATE discounts SET used_count = used_count + 1
		  WHERE id = ? AND (usage_limit = 0 OR used_count < usage_limit)
		`, disc.ID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrDiscountExhausted
		}

		// Guarded insert: the per-customer limit is re-checked here so a
		// concurrent placement cannot slip past the pre-transaction check.
		if disc.UsageLimitPerUser > 0 {
			res, err = tx.Exec(`
			  INSERT INTO discount_redemptions(discount_id,user_id,order_id)
			  SELECT ?,?,?
			  WHERE (SELECT COUNT(*) FROM discount_redemptions WHERE discount_id=? AND user_id=?) < ?
			`, disc.ID, o.UserID, o.ID, disc.ID, o.UserID, disc.UsageLimitPerUser)
			if err != nil {
				return err
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return ErrDiscountUserExhausted
			}
		} else if _, err := tx.Exec(`
		  INSERT INTO discount_redemptions(discount_id,user_id,order_id)
		  VALUES(?,?,?)`, disc.ID, o.UserID, o.ID); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(`DELETE FROM cart_items WHERE cart_id = ?`, cartID); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *OrderRepo) ByNumber(orderNumber string) (domain.Order, []domain.OrderItem, error) {
	var o domain.Order
	if err := r.db.Get(&o, `SELECT `+orderCols+` FROM orders WHERE order_number = ?`, orderNumber); err != nil {
		return domain.Order{}, nil, err
	}

	items := []domain.OrderItem{}
	if err := r.db.Select(&items, `
		SELECT order_id,product_id,variant_id,product_name,product_sku,variant_name,quantity,unit_price,
		       (quantity * CAST(unit_price AS REAL)) AS total_price
		FROM order_items
		WHERE order_id = ?
		ORDER BY product_name
	`, o.ID); err != nil {
		return domain.Order{}, nil, err
	}

	return o, items, nil
}

func (r *OrderRepo) ListByUser(userID string, limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	out := []domain.Order{}
	err := r.db.Select(&out, `
		SELECT `+orderCols+` FROM orders
		WHERE user_id = ?
		ORDER BY datetime(created_at) DESC
		LIMIT ?`, userID, limit)
	return out, err
}

func (r *OrderRepo) ListLatest(limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	out := []domain.Order{}
	err := r.db.Select(&out, `
		SELECT `+orderCols+` FROM orders
		ORDER BY datetime(created_at) DESC
		LIMIT ?`, limit)
	return out, err
}

// UpdateStatus moves an order to a new status, stamping the timestamps that
// go with shipped/delivered. Transition legality is the service's job.
func (r *OrderRepo) UpdateStatus(id, status, shippingStatus, tracking string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	shippedAt, deliveredAt := "", ""
	switch status {
	case domain.OrderShipped:
		shippedAt = now
	case domain.OrderDelivered:
		deliveredAt = now
	}
	_, err := r.db.Exec(`
		UPDATE orders SET status=?, shipping_status=?, updated_at=?,
		  tracking_number = CASE WHEN ? != '' THEN ? ELSE tracking_number END,
		  shipped_at = CASE WHEN ? != '' THEN ? ELSE shipped_at END,
		  delivered_at = CASE WHEN ? != '' THEN ? ELSE delivered_at END
		WHERE id=?
	`, status, shippingStatus, now, tracking, tracking, shippedAt, shippedAt, deliveredAt, deliveredAt, id)
	return err
}

// ---------- Payments ----------

func (r *OrderRepo) AddPayment(p *domain.Payment) error {
	_, err := r.db.Exec(`
	  INSERT INTO payments(id,order_id,method,amount,currency,status,card_last_four,card_brand,refund_amount,created_at,processed_at)
	  VALUES(?,?,?,?,?,?,?,?,?,CURRENT_TIMESTAMP,?)
	`, p.ID, p.OrderID, p.Method, p.Amount, p.Currency, p.Status, p.CardLastFour, p.CardBrand, p.RefundAmount, p.ProcessedAt)
	return err
}

func (r *OrderRepo) PaymentsFor(orderID string) ([]domain.Payment, error) {
	out := []domain.Payment{}
	err := r.db.Select(&out, `
	  SELECT id,order_id,method,amount,currency,status,card_last_four,card_brand,refund_amount,created_at,processed_at
	  FROM payments WHERE order_id = ?
	  ORDER BY datetime(created_at) DESC`, orderID)
	return out, err
}

func (r *OrderRepo) MarkPaymentRefunded(paymentID string, amount string) error {
	_, err := r.db.Exec(`UPDATE payments SET status=?, refund_amount=? WHERE id=?`,
		domain.PaymentRefunded, amount, paymentID)
	return err
}
