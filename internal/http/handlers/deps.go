package handlers

import (
	"storefront/internal/config"
	"storefront/internal/repos"
	"storefront/internal/services"

	"github.com/jmoiron/sqlx"
)

type Deps struct {
	AuthHandler     *AuthHandler
	CategoryHandler *CategoryHandler
	ProductHandler  *ProductHandler
	CartHandler     *CartHandler
	CheckoutHandler *CheckoutHandler
	OrderHandler    *OrderHandler
	AdminHandler    *AdminHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, auth *services.AuthService) *Deps {
	userRepo := repos.NewUserRepo(db)
	catRepo := repos.NewCategoryRepo(db)
	prodRepo := repos.NewProductRepo(db)
	reviewRepo := repos.NewReviewRepo(db)
	cartRepo := repos.NewCartRepo(db)
	discountRepo := repos.NewDiscountRepo(db)
	shippingRepo := repos.NewShippingRepo(db)
	orderRepo := repos.NewOrderRepo(db)

	catalogSvc := services.NewCatalogService(catRepo, prodRepo)
	reviewSvc := services.NewReviewService(reviewRepo, prodRepo)
	cartSvc := services.NewCartService(cartRepo, prodRepo)
	pricingSvc := services.NewPricingService(cartRepo, discountRepo, shippingRepo, cfg.TaxRate)
	orderSvc := services.NewOrderService(cartRepo, orderRepo, pricingSvc)

	return &Deps{
		AuthHandler:     &AuthHandler{Auth: auth, Users: userRepo},
		CategoryHandler: &CategoryHandler{Catalog: catalogSvc},
		ProductHandler:  &ProductHandler{Catalog: catalogSvc, Reviews: reviewSvc},
		CartHandler:     &CartHandler{Cart: cartSvc},
		CheckoutHandler: &CheckoutHandler{Cart: cartSvc, Pricing: pricingSvc},
		OrderHandler:    &OrderHandler{Orders: orderSvc},
		AdminHandler: &AdminHandler{
			Products:  prodRepo,
			Discounts: discountRepo,
			Shipping:  shippingRepo,
			Orders:    orderRepo,
			OrderSvc:  orderSvc,
		},
	}
}
