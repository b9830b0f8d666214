package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Port      string
	DBDSN     string
	JWTSecret string
	TokenTTL  string // Go duration string, e.g. "24h"
	TaxRate   decimal.Decimal
	LogFile   string
}

func Load() Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "storefront.db" // sqlite file in project root
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-only-secret"
		log.Println("[config] JWT_SECRET not set, using insecure dev default")
	}
	ttl := os.Getenv("TOKEN_TTL")
	if ttl == "" {
		ttl = "24h"
	}
	taxRate := decimal.NewFromFloat(0.08)
	if v := os.Getenv("TAX_RATE"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil && d.IsPositive() {
			taxRate = d
		} else {
			log.Printf("[config] ignoring bad TAX_RATE=%q", v)
		}
	}
	logFile := os.Getenv("LOG_FILE")

	cfg := Config{Port: port, DBDSN: dsn, JWTSecret: secret, TokenTTL: ttl, TaxRate: taxRate, LogFile: logFile}
	log.Printf("[config] PORT=%s DB_DSN=%s TOKEN_TTL=%s TAX_RATE=%s", cfg.Port, cfg.DBDSN, cfg.TokenTTL, cfg.TaxRate)
	return cfg
}
