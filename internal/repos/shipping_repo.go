package repos

import (
	"storefront/internal/domain"

	"github.com/jmoiron/sqlx"
)

type ShippingRepo struct{ db *sqlx.DB }

func NewShippingRepo(db *sqlx.DB) *ShippingRepo { return &ShippingRepo{db: db} }

const shippingCols = `id,name,description,base_cost,cost_per_kg,min_delivery_days,
  max_delivery_days,active,min_order_amount,max_weight,created_at`

func (r *ShippingRepo) ListActive() ([]domain.ShippingMethod, error) {
	out := []domain.ShippingMethod{}
	err := r.db.Select(&out, `
	  SELECT `+shippingCols+` FROM shipping_methods
	  WHERE active = 1
	  ORDER BY CAST(base_cost AS REAL)`)
	return out, err
}

// List returns every method, deactivated ones included, for the admin surface.
func (r *ShippingRepo) List() ([]domain.ShippingMethod, error) {
	out := []domain.ShippingMethod{}
	err := r.db.Select(&out, `
	  SELECT `+shippingCols+` FROM shipping_methods
	  ORDER BY CAST(base_cost AS REAL)`)
	return out, err
}

func (r *ShippingRepo) Get(id string) (domain.ShippingMethod, error) {
	var m domain.ShippingMethod
	err := r.db.Get(&m, `SELECT `+shippingCols+` FROM shipping_methods WHERE id=?`, id)
	return m, err
}

func (r *ShippingRepo) Create(m *domain.ShippingMethod) error {
	_, err := r.db.Exec(`
	  INSERT INTO shipping_methods(id,name,description,base_cost,cost_per_kg,min_delivery_days,
	    max_delivery_days,active,min_order_amount,max_weight,created_at)
	  VALUES(?,?,?,?,?,?,?,?,?,?,CURRENT_TIMESTAMP)
	`, m.ID, m.Name, m.Description, m.BaseCost, m.CostPerKg, m.MinDeliveryDays,
		m.MaxDeliveryDays, m.Active, m.MinOrderAmount, m.MaxWeight)
	return err
}
