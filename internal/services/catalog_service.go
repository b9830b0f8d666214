package services

import (
	"storefront/internal/domain"
	"storefront/internal/repos"
)

type CatalogService struct {
	Cats  *repos.CategoryRepo
	Prods *repos.ProductRepo
}

func NewCatalogService(cats *repos.CategoryRepo, prods *repos.ProductRepo) *CatalogService {
	return &CatalogService{Cats: cats, Prods: prods}
}

func (s *CatalogService) ListCategories() ([]domain.Category, error) {
	return s.Cats.List()
}

func (s *CatalogService) CategoryBySlug(slug string) (domain.Category, error) {
	return s.Cats.BySlug(slug)
}

func (s *CatalogService) ListProducts(f repos.ProductFilter, page, pageSize int) ([]domain.Product, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 50 {
		pageSize = 12
	}
	offset := (page - 1) * pageSize
	return s.Prods.List(f, pageSize, offset)
}

// ProductBySlug returns a product with its active variants.
func (s *CatalogService) ProductBySlug(slug string) (domain.Product, []domain.ProductVariant, error) {
	p, err := s.Prods.BySlug(slug)
	if err != nil {
		return domain.Product{}, nil, err
	}
	variants, err := s.Prods.VariantsFor(p.ID)
	if err != nil {
		return domain.Product{}, nil, err
	}
	return p, variants, nil
}
