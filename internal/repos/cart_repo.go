package repos

import (
	"database/sql"
	"time"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

// EnsureCart returns the user's cart id, creating the cart on first use.
func (r *CartRepo) EnsureCart(userID string) (string, error) {
	var cartID string
	if err := r.db.Get(&cartID, `SELECT id FROM carts WHERE user_id = ?`, userID); err == nil {
		return cartID, nil
	}
	cartID = uuid.NewString()
	_, err := r.db.Exec(`INSERT INTO carts(id,user_id,updated_at) VALUES(?,?,?)`,
		cartID, userID, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", err
	}
	return cartID, nil
}

// UpsertItem adds a line or, when the (product,variant) pair already exists,
// sums the quantity into the existing line. The stored unit price stays the
// one captured at first add.
func (r *CartRepo) UpsertItem(cartID, productID, variantID string, qty int, price decimal.Decimal) error {
	_, err := r.db.Exec(`
		INSERT INTO cart_items(id,cart_id,product_id,variant_id,quantity,unit_price,created_at)
		VALUES(?,?,?,?,?,?,CURRENT_TIMESTAMP)
		ON CONFLICT(cart_id,product_id,variant_id) DO UPDATE
		SET quantity = quantity + excluded.quantity
	`, uuid.NewString(), cartID, productID, variantID, qty, price)
	if err != nil {
		return err
	}
	return r.touch(cartID)
}

// SetQuantity updates a line; quantity 0 removes it. Returns false when the
// line does not belong to the cart.
func (r *CartRepo) SetQuantity(cartID, itemID string, qty int) (bool, error) {
	var res sql.Result
	var err error
	if qty == 0 {
		res, err = r.db.Exec(`DELETE FROM cart_items WHERE id=? AND cart_id=?`, itemID, cartID)
	} else {
		res, err = r.db.Exec(`UPDATE cart_items SET quantity=? WHERE id=? AND cart_id=?`, qty, itemID, cartID)
	}
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return false, nil
	}
	return true, r.touch(cartID)
}

func (r *CartRepo) RemoveItem(cartID, itemID string) (bool, error) {
	return r.SetQuantity(cartID, itemID, 0)
}

func (r *CartRepo) Items(cartID string) ([]domain.CartItem, error) {
	out := []domain.CartItem{}
	err := r.db.Select(&out, `
	  SELECT ci.id, ci.cart_id, ci.product_id, ci.variant_id, ci.quantity, ci.unit_price, ci.created_at,
	         p.name AS product_name, p.sku AS product_sku, p.weight,
	         COALESCE(v.name,'') AS variant_name
	  FROM cart_items ci
	  JOIN products p ON p.id = ci.product_id
	  LEFT JOIN product_variants v ON v.id = ci.variant_id
	  WHERE ci.cart_id = ?
	  ORDER BY ci.created_at
	`, cartID)
	return out, err
}

func (r *CartRepo) Clear(cartID string) error {
	if _, err := r.db.Exec(`DELETE FROM cart_items WHERE cart_id = ?`, cartID); err != nil {
		return err
	}
	return r.touch(cartID)
}

func (r *CartRepo) touch(cartID string) error {
	_, err := r.db.Exec(`UPDATE carts SET updated_at=? WHERE id=?`, time.Now().UTC().Format(time.RFC3339), cartID)
	return err
}
