package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	DBPath            string
	LogLevel          string
	LogFormat         string
	SiteURL           string
	StripeSecretKey   string
	StripeWebhookKey  string
	DefaultPriceID    string
	JWTSecret         string
	JWTIssuer         string
	ReconcileInterval time.Duration
	TrustProxyHeaders bool
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	port := getenv("FITCOACH_PORT", "8080")
	cfg := Config{
		Port:             port,
		DBPath:           getenv("FITCOACH_DB_PATH", "fitcoach.db"),
		LogLevel:         getenv("FITCOACH_LOG_LEVEL", "info"),
		LogFormat:        getenv("FITCOACH_LOG_FORMAT", "text"),
		SiteURL:          strings.TrimRight(firstNonEmpty(os.Getenv("FITCOACH_SITE_URL"), os.Getenv("NEXT_PUBLIC_SITE_URL"), "http://localhost:"+port), "/"),
		StripeSecretKey:  os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookKey: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		DefaultPriceID:   firstNonEmpty(os.Getenv("STRIPE_DEFAULT_PRICE_ID"), os.Getenv("NEXT_PUBLIC_STRIPE_PRICE_ID")),
		JWTSecret:        os.Getenv("IDENTITY_JWT_SECRET"),
		JWTIssuer:        os.Getenv("IDENTITY_JWT_ISSUER"),
	}

	interval, err := time.ParseDuration(getenv("FITCOACH_RECONCILE_INTERVAL", "15m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FITCOACH_RECONCILE_INTERVAL: %w", err)
	}
	if interval < 0 {
		return Config{}, fmt.Errorf("FITCOACH_RECONCILE_INTERVAL must not be negative")
	}
	cfg.ReconcileInterval = interval

	trust, err := strconv.ParseBool(getenv("FITCOACH_TRUST_PROXY_HEADERS", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FITCOACH_TRUST_PROXY_HEADERS: %w", err)
	}
	cfg.TrustProxyHeaders = trust

	if cfg.JWTSecret == "" {
		return Config{}, errors.New("IDENTITY_JWT_SECRET is required")
	}
	return cfg, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
