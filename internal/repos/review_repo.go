package repos

import (
	"storefront/internal/domain"

	"github.com/jmoiron/sqlx"
)

type ReviewRepo struct{ db *sqlx.DB }

func NewReviewRepo(db *sqlx.DB) *ReviewRepo { return &ReviewRepo{db: db} }

// Create inserts a review; the (product,user) unique index rejects a second
// review of the same product by the same author.
func (r *ReviewRepo) Create(rev *domain.Review) error {
	_, err := r.db.Exec(`
	  INSERT INTO reviews(id,product_id,user_id,author,rating,comment,created_at)
	  VALUES(?,?,?,?,?,?,CURRENT_TIMESTAMP)
	`, rev.ID, rev.ProductID, rev.UserID, rev.Author, rev.Rating, rev.Comment)
	return err
}

func (r *ReviewRepo) ListByProduct(productID string, limit int) ([]domain.Review, error) {
	if limit <= 0 {
		limit = 50
	}
	out := []domain.Review{}
	err := r.db.Select(&out, `
	  SELECT id,product_id,user_id,author,rating,comment,created_at
	  FROM reviews
	  WHERE product_id = ?
	  ORDER BY datetime(created_at) DESC
	  LIMIT ?`, productID, limit)
	return out, err
}
