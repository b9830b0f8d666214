package services

import (
	"errors"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/repos"

	"github.com/google/uuid"
)

var ErrAlreadyReviewed = errors.New("product already reviewed")

type ReviewService struct {
	Reviews *repos.ReviewRepo
	Prods   *repos.ProductRepo
}

func NewReviewService(reviews *repos.ReviewRepo, prods *repos.ProductRepo) *ReviewService {
	return &ReviewService{Reviews: reviews, Prods: prods}
}

func (s *ReviewService) Add(user *domain.User, productID string, rating int, comment string) (*domain.Review, error) {
	p, err := s.Prods.Get(productID)
	if err != nil || !p.Active {
		return nil, ErrProductUnavailable
	}
	rev := &domain.Review{
		ID:        uuid.NewString(),
		ProductID: p.ID,
		UserID:    user.ID,
		Author:    user.FullName(),
		Rating:    rating,
		Comment:   comment,
	}
	if err := s.Reviews.Create(rev); err != nil {
		// One review per user per product, enforced by the unique index.
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, ErrAlreadyReviewed
		}
		return nil, err
	}
	return rev, nil
}

func (s *ReviewService) ListForProduct(productID string) ([]domain.Review, error) {
	return s.Reviews.ListByProduct(productID, 50)
}
