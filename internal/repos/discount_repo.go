package repos

import (
	"storefront/internal/domain"

	"github.com/jmoiron/sqlx"
)

type DiscountRepo struct{ db *sqlx.DB }

func NewDiscountRepo(db *sqlx.DB) *DiscountRepo { return &DiscountRepo{db: db} }

const discountCols = `id,code,name,description,type,value,usage_limit,usage_limit_per_user,
  used_count,min_order_amount,max_amount,active,valid_from,valid_until,created_at`

func (r *DiscountRepo) ByCode(code string) (domain.Discount, error) {
	var d domain.Discount
	err := r.db.Get(&d, `SELECT `+discountCols+` FROM discounts WHERE UPPER(code)=UPPER(?)`, code)
	return d, err
}

// RedemptionsByUser counts how many orders of this user already redeemed the
// discount.
func (r *DiscountRepo) RedemptionsByUser(discountID, userID string) (int, error) {
	var n int
	err := r.db.Get(&n, `
		SELECT COUNT(*) FROM discount_redemptions
		WHERE discount_id = ? AND user_id = ?`, discountID, userID)
	return n, err
}

func (r *DiscountRepo) List() ([]domain.Discount, error) {
	out := []domain.Discount{}
	err := r.db.Select(&out, `SELECT `+discountCols+` FROM discounts ORDER BY created_at DESC`)
	return out, err
}

func (r *DiscountRepo) Create(d *domain.Discount) error {
	_, err := r.db.Exec(`
	  INSERT INTO discounts(id,code,name,description,type,value,usage_limit,usage_limit_per_user,
	    min_order_amount,max_amount,active,valid_from,valid_until,created_at)
	  VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,CURRENT_TIMESTAMP)
	`, d.ID, d.Code, d.Name, d.Description, d.Type, d.Value, d.UsageLimit, d.UsageLimitPerUser,
		d.MinOrderAmount, d.MaxAmount, d.Active, d.ValidFrom, d.ValidUntil)
	return err
}
