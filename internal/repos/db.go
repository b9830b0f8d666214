package repos

import (
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Seed baseline data if DB is empty (catalog/shipping/discounts)
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}
	// Ensure an admin account exists (idempotent; safe to run every start)
	if err := seedAdmin(db); err != nil {
		return nil, err
	}

	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Users & addresses
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  first_name TEXT NOT NULL DEFAULT '',
  last_name TEXT NOT NULL DEFAULT '',
  phone TEXT NOT NULL DEFAULT '',
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('USER','ADMIN')),
  failed_logins INTEGER NOT NULL DEFAULT 0,
  locked_until TEXT NOT NULL DEFAULT '',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS addresses(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  kind TEXT NOT NULL CHECK (kind IN ('billing','shipping')),
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  line1 TEXT NOT NULL,
  line2 TEXT NOT NULL DEFAULT '',
  city TEXT NOT NULL,
  state TEXT NOT NULL,
  postal_code TEXT NOT NULL,
  country TEXT NOT NULL,
  is_default INTEGER NOT NULL DEFAULT 0,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_addresses_user ON addresses(user_id);

-- Catalog
CREATE TABLE IF NOT EXISTS categories(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  description TEXT NOT NULL DEFAULT '',
  parent_id TEXT NOT NULL DEFAULT '',
  active INTEGER NOT NULL DEFAULT 1,
  sort_order INTEGER NOT NULL DEFAULT 0,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT NOT NULL DEFAULT ''
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_name_nocase ON categories(LOWER(name));

CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE RESTRICT,
  name TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  sku TEXT NOT NULL UNIQUE,
  description TEXT NOT NULL DEFAULT '',
  price TEXT NOT NULL,
  sale_price TEXT,
  weight TEXT NOT NULL DEFAULT '0',
  stock_qty INTEGER NOT NULL DEFAULT 0 CHECK (stock_qty >= 0),
  low_stock_threshold INTEGER NOT NULL DEFAULT 5,
  featured INTEGER NOT NULL DEFAULT 0,
  active INTEGER NOT NULL DEFAULT 1,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category_id, active);
CREATE INDEX IF NOT EXISTS idx_products_featured ON products(featured, active);
CREATE INDEX IF NOT EXISTS idx_products_name ON products(LOWER(name));

CREATE TABLE IF NOT EXISTS product_variants(
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  sku TEXT NOT NULL UNIQUE,
  price TEXT,
  stock_qty INTEGER NOT NULL DEFAULT 0 CHECK (stock_qty >= 0),
  active INTEGER NOT NULL DEFAULT 1,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_variants_product ON product_variants(product_id);

CREATE TABLE IF NOT EXISTS reviews(
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  author TEXT NOT NULL,
  rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
  comment TEXT NOT NULL DEFAULT '',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(product_id, user_id)
);

-- Carts
CREATE TABLE IF NOT EXISTS carts(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS cart_items(
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL REFERENCES products(id) ON DELETE RESTRICT,
  variant_id TEXT NOT NULL DEFAULT '',
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  unit_price TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(cart_id, product_id, variant_id)
);

-- Shipping & discounts
CREATE TABLE IF NOT EXISTS shipping_methods(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  base_cost TEXT NOT NULL,
  cost_per_kg TEXT NOT NULL DEFAULT '0',
  min_delivery_days INTEGER NOT NULL DEFAULT 1,
  max_delivery_days INTEGER NOT NULL DEFAULT 7,
  active INTEGER NOT NULL DEFAULT 1,
  min_order_amount TEXT NOT NULL DEFAULT '0',
  max_weight TEXT,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS discounts(
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  type TEXT NOT NULL CHECK (type IN ('percentage','fixed_amount','free_shipping')),
  value TEXT NOT NULL,
  usage_limit INTEGER NOT NULL DEFAULT 0,
  usage_limit_per_user INTEGER NOT NULL DEFAULT 1,
  used_count INTEGER NOT NULL DEFAULT 0,
  min_order_amount TEXT NOT NULL DEFAULT '0',
  max_amount TEXT,
  active INTEGER NOT NULL DEFAULT 1,
  valid_from TEXT NOT NULL,
  valid_until TEXT NOT NULL DEFAULT '',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_discounts_code ON discounts(UPPER(code));

-- One row per order that redeemed a discount; backs the per-customer limit.
CREATE TABLE IF NOT EXISTS discount_redemptions(
  discount_id TEXT NOT NULL REFERENCES discounts(id) ON DELETE CASCADE,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  order_id TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY(discount_id, order_id)
);
CREATE INDEX IF NOT EXISTS idx_redemptions_user ON discount_redemptions(discount_id, user_id);

-- Orders
CREATE TABLE IF NOT EXISTS orders(
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL UNIQUE,
  user_id TEXT NOT NULL REFERENCES users(id),
  billing_first_name TEXT NOT NULL,
  billing_last_name TEXT NOT NULL,
  billing_email TEXT NOT NULL,
  billing_line1 TEXT NOT NULL,
  billing_line2 TEXT NOT NULL DEFAULT '',
  billing_city TEXT NOT NULL,
  billing_state TEXT NOT NULL,
  billing_postal TEXT NOT NULL,
  billing_country TEXT NOT NULL,
  shipping_first_name TEXT NOT NULL,
  shipping_last_name TEXT NOT NULL,
  shipping_line1 TEXT NOT NULL,
  shipping_line2 TEXT NOT NULL DEFAULT '',
  shipping_city TEXT NOT NULL,
  shipping_state TEXT NOT NULL,
  shipping_postal TEXT NOT NULL,
  shipping_country TEXT NOT NULL,
  subtotal TEXT NOT NULL,
  shipping_cost TEXT NOT NULL DEFAULT '0',
  tax_amount TEXT NOT NULL DEFAULT '0',
  discount_amount TEXT NOT NULL DEFAULT '0',
  total_amount TEXT NOT NULL,
  discount_code TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT 'pending',
  shipping_status TEXT NOT NULL DEFAULT 'pending',
  shipping_method TEXT NOT NULL DEFAULT '',
  tracking_number TEXT NOT NULL DEFAULT '',
  customer_notes TEXT NOT NULL DEFAULT '',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT NOT NULL DEFAULT '',
  shipped_at TEXT NOT NULL DEFAULT '',
  delivered_at TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id, status);
CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at);

CREATE TABLE IF NOT EXISTS order_items(
  order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL REFERENCES products(id),
  variant_id TEXT NOT NULL DEFAULT '',
  product_name TEXT NOT NULL,
  product_sku TEXT NOT NULL,
  variant_name TEXT NOT NULL DEFAULT '',
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  unit_price TEXT NOT NULL,
  PRIMARY KEY(order_id, product_id, variant_id)
);

CREATE TABLE IF NOT EXISTS payments(
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  method TEXT NOT NULL,
  amount TEXT NOT NULL,
  currency TEXT NOT NULL DEFAULT 'USD',
  status TEXT NOT NULL DEFAULT 'pending',
  card_last_four TEXT NOT NULL DEFAULT '',
  card_brand TEXT NOT NULL DEFAULT '',
  refund_amount TEXT NOT NULL DEFAULT '0',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  processed_at TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_payments_order ON payments(order_id);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM categories`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo catalog/shipping/discounts")

	tx := db.MustBegin()
	tx.MustExec(`INSERT INTO categories(id,name,slug,sort_order) VALUES
	  ('cat-electronics','Electronics','electronics',1),
	  ('cat-audio','Audio','audio',2),
	  ('cat-accessories','Accessories','accessories',3)`)

	tx.MustExec(`INSERT INTO products(id,category_id,name,slug,sku,description,price,sale_price,weight,stock_qty,featured) VALUES
	  ('prod-keyboard','cat-electronics','Mechanical Keyboard','mechanical-keyboard','KB-001','Hot-swappable 87-key board','89.00',NULL,'1.10',25,1),
	  ('prod-headphones','cat-audio','Studio Headphones','studio-headphones','HP-010','Closed-back monitoring headphones','149.00','129.00','0.45',12,1),
	  ('prod-webcam','cat-electronics','4K Webcam','4k-webcam','WC-220','4K30 webcam with autofocus','99.50',NULL,'0.20',40,0),
	  ('prod-stand','cat-accessories','Laptop Stand','laptop-stand','LS-330','Aluminium adjustable stand','39.90',NULL,'1.30',60,0)`)

	tx.MustExec(`INSERT INTO product_variants(id,product_id,name,sku,price,stock_qty) VALUES
	  ('var-kb-blue','prod-keyboard','Blue Switches','KB-001-BLU',NULL,10),
	  ('var-kb-red','prod-keyboard','Red Switches','KB-001-RED','94.00',15)`)

	tx.MustExec(`INSERT INTO shipping_methods(id,name,description,base_cost,cost_per_kg,min_delivery_days,max_delivery_days,min_order_amount,max_weight) VALUES
	  ('ship-standard','Standard','Tracked parcel','5.00','2.00',3,7,'0',NULL),
	  ('ship-express','Express','Next-day courier','15.00','3.50',1,2,'0','20.00'),
	  ('ship-freight','Freight','Heavy goods only','25.00','1.00',5,14,'200.00',NULL)`)

	tx.MustExec(`INSERT INTO discounts(id,code,name,type,value,usage_limit,usage_limit_per_user,min_order_amount,max_amount,valid_from) VALUES
	  ('disc-welcome','WELCOME10','Welcome 10%','percentage','10',0,1,'0',NULL,'2024-01-01T00:00:00Z'),
	  ('disc-save15','SAVE15','15 off','fixed_amount','15',100,2,'50',NULL,'2024-01-01T00:00:00Z'),
	  ('disc-freeship','FREESHIP','Free shipping','free_shipping','0',0,5,'25',NULL,'2024-01-01T00:00:00Z')`)

	return tx.Commit()
}

// seedAdmin ensures one ADMIN account exists (idempotent).
func seedAdmin(db *sqlx.DB) error {
	hash, err := bcrypt.GenerateFromPassword([]byte("Admin123!"), 12)
	if err != nil {
		return err
	}
	_, err = db.Exec(`
		INSERT INTO users(id,email,first_name,last_name,password_hash,role,created_at)
		VALUES('u-admin','admin@storefront.test','Store','Admin',?,'ADMIN',?)
		ON CONFLICT(email) DO NOTHING
	`, string(hash), time.Now().UTC().Format(time.RFC3339))
	return err
}
