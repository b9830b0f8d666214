package domain

import "github.com/shopspring/decimal"

type Category struct {
	ID          string `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Slug        string `db:"slug" json:"slug"`
	Description string `db:"description" json:"description,omitempty"`
	ParentID    string `db:"parent_id" json:"parent_id,omitempty"`
	Active      bool   `db:"active" json:"active"`
	SortOrder   int    `db:"sort_order" json:"sort_order"`
	CreatedAt   string `db:"created_at" json:"created_at"`
	UpdatedAt   string `db:"updated_at" json:"updated_at,omitempty"`
}

type Product struct {
	ID          string `db:"id" json:"id"`
	CategoryID  string `db:"category_id" json:"category_id"`
	Name        string `db:"name" json:"name"`
	Slug        string `db:"slug" json:"slug"`
	SKU         string `db:"sku" json:"sku"`
	Description string `db:"description" json:"description"`

	Price     decimal.Decimal     `db:"price" json:"price"`
	SalePrice decimal.NullDecimal `db:"sale_price" json:"sale_price,omitempty"`
	Weight    decimal.Decimal     `db:"weight" json:"weight"` // kg

	StockQty          int  `db:"stock_qty" json:"stock_qty"`
	LowStockThreshold int  `db:"low_stock_threshold" json:"low_stock_threshold"`
	Featured          bool `db:"featured" json:"featured"`
	Active            bool `db:"active" json:"active"`

	CreatedAt string `db:"created_at" json:"created_at"`
	UpdatedAt string `db:"updated_at" json:"updated_at,omitempty"`
}

// CurrentPrice is the selling price: sale price when one is set, the regular
// price otherwise.
func (p *Product) CurrentPrice() decimal.Decimal {
	if p.SalePrice.Valid {
		return p.SalePrice.Decimal
	}
	return p.Price
}

func (p *Product) InStock() bool  { return p.StockQty > 0 }
func (p *Product) LowStock() bool { return p.StockQty > 0 && p.StockQty <= p.LowStockThreshold }

type ProductVariant struct {
	ID        string              `db:"id" json:"id"`
	ProductID string              `db:"product_id" json:"product_id"`
	Name      string              `db:"name" json:"name"`
	SKU       string              `db:"sku" json:"sku"`
	Price     decimal.NullDecimal `db:"price" json:"price,omitempty"` // overrides product price when set
	StockQty  int                 `db:"stock_qty" json:"stock_qty"`
	Active    bool                `db:"active" json:"active"`
	CreatedAt string              `db:"created_at" json:"created_at"`
}

// CurrentPrice resolves the variant price, falling back to the product.
func (v *ProductVariant) CurrentPrice(p *Product) decimal.Decimal {
	if v.Price.Valid {
		return v.Price.Decimal
	}
	return p.CurrentPrice()
}

type Review struct {
	ID        string `db:"id" json:"id"`
	ProductID string `db:"product_id" json:"product_id"`
	UserID    string `db:"user_id" json:"-"`
	Author    string `db:"author" json:"author"`
	Rating    int    `db:"rating" json:"rating"` // 1..5
	Comment   string `db:"comment" json:"comment"`
	CreatedAt string `db:"created_at" json:"created_at"`
}
