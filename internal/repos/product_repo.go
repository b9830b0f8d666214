package repos

import (
	"fmt"

	"storefront/internal/domain"

	"github.com/jmoiron/sqlx"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `id,category_id,name,slug,sku,description,price,sale_price,weight,
  stock_qty,low_stock_threshold,featured,active,created_at,updated_at`

type ProductFilter struct {
	CategoryID string
	Featured   bool
	Query      string
}

func (r *ProductRepo) List(f ProductFilter, limit, offset int) ([]domain.Product, error) {
	where := `active = 1`
	args := []any{}
	if f.CategoryID != "" {
		where += ` AND category_id = ?`
		args = append(args, f.CategoryID)
	}
	if f.Featured {
		where += ` AND featured = 1`
	}
	if f.Query != "" {
		where += ` AND (LOWER(name) LIKE ? OR LOWER(description) LIKE ?)`
		q := "%" + f.Query + "%"
		args = append(args, q, q)
	}
	args = append(args, limit, offset)

	out := []domain.Product{}
	err := r.db.Select(&out, `
	  SELECT `+productCols+`
	  FROM products
	  WHERE `+where+`
	  ORDER BY created_at DESC
	  LIMIT ? OFFSET ?`, args...)
	return out, err
}

func (r *ProductRepo) BySlug(slug string) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `SELECT `+productCols+` FROM products WHERE slug=?`, slug)
	return p, err
}

func (r *ProductRepo) Get(id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `SELECT `+productCols+` FROM products WHERE id=?`, id)
	return p, err
}

const variantCols = `id,product_id,name,sku,price,stock_qty,active,created_at`

func (r *ProductRepo) Variant(id string) (domain.ProductVariant, error) {
	var v domain.ProductVariant
	err := r.db.Get(&v, `SELECT `+variantCols+` FROM product_variants WHERE id=?`, id)
	return v, err
}

func (r *ProductRepo) VariantsFor(productID string) ([]domain.ProductVariant, error) {
	out := []domain.ProductVariant{}
	err := r.db.Select(&out, `
	  SELECT `+variantCols+` FROM product_variants
	  WHERE product_id = ? AND active = 1
	  ORDER BY name`, productID)
	return out, err
}

// ---------- Admin writes ----------

func (r *ProductRepo) Create(p *domain.Product) error {
	_, err := r.db.Exec(`
	  INSERT INTO products(id,category_id,name,slug,sku,description,price,sale_price,weight,
	    stock_qty,low_stock_threshold,featured,active,created_at)
	  VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,CURRENT_TIMESTAMP)
	`, p.ID, p.CategoryID, p.Name, p.Slug, p.SKU, p.Description, p.Price, p.SalePrice, p.Weight,
		p.StockQty, p.LowStockThreshold, p.Featured, p.Active)
	return err
}

func (r *ProductRepo) Update(p *domain.Product) error {
	res, err := r.db.Exec(`
	  UPDATE products SET category_id=?, name=?, description=?, price=?, sale_price=?, weight=?,
	    stock_qty=?, low_stock_threshold=?, featured=?, active=?, updated_at=CURRENT_TIMESTAMP
	  WHERE id=?
	`, p.CategoryID, p.Name, p.Description, p.Price, p.SalePrice, p.Weight,
		p.StockQty, p.LowStockThreshold, p.Featured, p.Active, p.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("product %s not found", p.ID)
	}
	return nil
}

func (r *ProductRepo) SetActive(id string, active bool) error {
	_, err := r.db.Exec(`UPDATE products SET active=?, updated_at=CURRENT_TIMESTAMP WHERE id=?`, active, id)
	return err
}

// SetStock sets the stock level for a product or one of its variants.
func (r *ProductRepo) SetStock(productID, variantID string, qty int) error {
	if variantID != "" {
		_, err := r.db.Exec(`UPDATE product_variants SET stock_qty=? WHERE id=? AND product_id=?`, qty, variantID, productID)
		return err
	}
	_, err := r.db.Exec(`UPDATE products SET stock_qty=?, updated_at=CURRENT_TIMESTAMP WHERE id=?`, qty, productID)
	return err
}

// StockFor returns the sellable quantity for a product or variant line.
func (r *ProductRepo) StockFor(productID, variantID string) (int, error) {
	var qty int
	if variantID != "" {
		err := r.db.Get(&qty, `SELECT stock_qty FROM product_variants WHERE id=? AND product_id=?`, variantID, productID)
		return qty, err
	}
	err := r.db.Get(&qty, `SELECT stock_qty FROM products WHERE id=?`, productID)
	return qty, err
}
