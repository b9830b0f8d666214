package main

import (
	"io"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"storefront/internal/config"
	"storefront/internal/http/handlers"
	applog "storefront/internal/log"
	"storefront/internal/repos"
	"storefront/internal/services"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	ttl, err := time.ParseDuration(cfg.TokenTTL)
	if err != nil {
		log.Printf("[warn] bad TOKEN_TTL %q, using 24h", cfg.TokenTTL)
		ttl = 24 * time.Hour
	}

	userRepo := repos.NewUserRepo(db)
	authSvc := services.NewAuthService(userRepo, cfg.JWTSecret, ttl)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
			}
			applog.Error(c, "server.error", err, nil)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
		},
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
	}))

	deps := handlers.NewDeps(db, cfg, authSvc)
	requireUser := handlers.RequireUser(authSvc)
	requireAdmin := handlers.RequireAdmin(authSvc)

	// ---------- Accounts ----------
	accounts := app.Group("/api/accounts")
	accounts.Post("/register", deps.AuthHandler.Register)
	accounts.Post("/token", limiter.New(limiter.Config{
		Max:        10,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many attempts, try again later"})
		},
	}), deps.AuthHandler.Token)
	accounts.Get("/me", requireUser, deps.AuthHandler.Me)
	accounts.Get("/addresses", requireUser, deps.AuthHandler.ListAddresses)
	accounts.Post("/addresses", requireUser, deps.AuthHandler.AddAddress)
	accounts.Put("/addresses/:id", requireUser, deps.AuthHandler.UpdateAddress)
	accounts.Delete("/addresses/:id", requireUser, deps.AuthHandler.DeleteAddress)

	// ---------- Catalog ----------
	app.Get("/api/categories", deps.CategoryHandler.List)
	app.Get("/api/categories/:slug", deps.CategoryHandler.Detail)

	products := app.Group("/api/products")
	products.Get("/", deps.ProductHandler.List)
	products.Get("/featured", deps.ProductHandler.Featured)
	products.Get("/search", limiter.New(limiter.Config{Max: 30, Expiration: time.Minute}), deps.ProductHandler.Search)
	products.Get("/:slug", deps.ProductHandler.Detail)
	products.Get("/:slug/reviews", deps.ProductHandler.ListReviews)
	products.Post("/:slug/reviews", requireUser, deps.ProductHandler.AddReview)

	// ---------- Cart & checkout ----------
	orders := app.Group("/api/orders", requireUser)
	orders.Get("/cart", deps.CartHandler.View)
	orders.Post("/cart/add", deps.CartHandler.Add)
	orders.Patch("/cart/items/:id", deps.CartHandler.UpdateItem)
	orders.Delete("/cart/items/:id", deps.CartHandler.RemoveItem)
	orders.Post("/cart/clear", deps.CartHandler.Clear)

	orders.Get("/shipping-methods", deps.CheckoutHandler.ShippingMethods)
	orders.Post("/discounts/apply", deps.CheckoutHandler.ApplyDiscount)
	orders.Get("/checkout/calculate", deps.CheckoutHandler.Calculate)

	// ---------- Orders ----------
	orders.Post("/", deps.OrderHandler.Create)
	orders.Get("/", deps.OrderHandler.List)
	orders.Get("/:number", deps.OrderHandler.Detail)
	orders.Post("/:number/cancel", deps.OrderHandler.Cancel)
	orders.Post("/:number/pay", deps.OrderHandler.Pay)

	// ---------- Admin ----------
	admin := app.Group("/api/admin", requireAdmin)
	admin.Get("/orders", deps.AdminHandler.ListOrders)
	admin.Post("/orders/:number/status", deps.AdminHandler.TransitionOrder)
	admin.Post("/orders/:number/refund", deps.AdminHandler.RefundOrder)
	admin.Post("/products", deps.AdminHandler.CreateProduct)
	admin.Put("/products/:id", deps.AdminHandler.UpdateProduct)
	admin.Delete("/products/:id", deps.AdminHandler.DeactivateProduct)
	admin.Post("/products/:id/stock", deps.AdminHandler.SetStock)
	admin.Get("/discounts", deps.AdminHandler.ListDiscounts)
	admin.Post("/discounts", deps.AdminHandler.CreateDiscount)
	admin.Get("/shipping-methods", deps.AdminHandler.ListShippingMethods)
	admin.Post("/shipping-methods", deps.AdminHandler.CreateShippingMethod)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
