package services

import (
	"database/sql"
	"errors"

	"storefront/internal/domain"
	"storefront/internal/repos"

	"github.com/shopspring/decimal"
)

var (
	ErrProductUnavailable = errors.New("product not found or inactive")
	ErrCartItemNotFound   = errors.New("cart item not found")
	ErrNotEnoughStock     = errors.New("not enough stock for the requested quantity")
)

type CartService struct {
	Carts *repos.CartRepo
	Prods *repos.ProductRepo
}

func NewCartService(carts *repos.CartRepo, prods *repos.ProductRepo) *CartService {
	return &CartService{Carts: carts, Prods: prods}
}

// Add puts qty units of a product (or one of its variants) into the user's
// cart, capturing the current selling price on the line.
func (s *CartService) Add(userID, productID, variantID string, qty int) error {
	if qty < 1 {
		qty = 1
	}
	p, err := s.Prods.Get(productID)
	if err != nil || !p.Active {
		return ErrProductUnavailable
	}
	price := p.CurrentPrice()
	if variantID != "" {
		v, err := s.Prods.Variant(variantID)
		if err != nil || v.ProductID != productID || !v.Active {
			return ErrProductUnavailable
		}
		price = v.CurrentPrice(&p)
	}

	stock, err := s.Prods.StockFor(productID, variantID)
	if err != nil {
		return err
	}
	if qty > stock {
		return ErrNotEnoughStock
	}

	cartID, err := s.Carts.EnsureCart(userID)
	if err != nil {
		return err
	}
	return s.Carts.UpsertItem(cartID, productID, variantID, qty, price)
}

// SetQuantity updates a line's quantity; 0 removes the line.
func (s *CartService) SetQuantity(userID, itemID string, qty int) error {
	cartID, err := s.Carts.EnsureCart(userID)
	if err != nil {
		return err
	}
	ok, err := s.Carts.SetQuantity(cartID, itemID, qty)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCartItemNotFound
	}
	return nil
}

func (s *CartService) Remove(userID, itemID string) error {
	return s.SetQuantity(userID, itemID, 0)
}

func (s *CartService) Clear(userID string) error {
	cartID, err := s.Carts.EnsureCart(userID)
	if err != nil {
		return err
	}
	return s.Carts.Clear(cartID)
}

// View returns the cart lines with derived totals.
func (s *CartService) View(userID string) (domain.CartView, error) {
	cartID, err := s.Carts.EnsureCart(userID)
	if err != nil {
		return domain.CartView{}, err
	}
	items, err := s.Carts.Items(cartID)
	if err != nil && err != sql.ErrNoRows {
		return domain.CartView{}, err
	}

	view := domain.CartView{Items: items, Subtotal: decimal.Zero, TotalWeight: decimal.Zero}
	for _, it := range items {
		view.TotalItems += it.Quantity
		view.Subtotal = view.Subtotal.Add(it.TotalPrice())
		view.TotalWeight = view.TotalWeight.Add(it.Weight.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	view.Subtotal = view.Subtotal.Round(2)
	return view, nil
}
