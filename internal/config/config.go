package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server configuration
	Port          string
	Mode          string
	PublicBaseURL string

	// Database configuration
	DatabaseURL string
	SQLitePath  string

	// Redis configuration
	RedisURL string

	// Auth
	JWTSecret string

	// Payment provider configuration
	PaymentProvider   string
	PaymentCurrency   string
	YookassaShopID    string
	YookassaSecretKey string
	YookassaAPIURL    string

	// Purchase notifications
	PurchaseWebhookURL    string
	PurchaseWebhookSecret string

	// Brevo email configuration
	BrevoAPIKey    string
	BrevoFromEmail string
	BrevoFromName  string

	// Cache and locking
	LinkCacheTTLSeconds int
	PurchaseLockSeconds int
}

var AppConfig *Config

// Payment providers
const (
	ProviderSandbox  = "sandbox"
	ProviderYookassa = "yookassa"
)

// InitConfig loads configuration into AppConfig
func InitConfig() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	AppConfig = cfg
	return nil
}

// Load reads .env (if present) and the environment
func Load() (*Config, error) {
	// A missing .env file is fine, the environment is used as is
	_ = godotenv.Load()

	cfg := &Config{
		Port:                  getEnv("PORT", "8080"),
		Mode:                  getEnv("GIN_MODE", "debug"),
		PublicBaseURL:         strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		SQLitePath:            getEnv("SQLITE_PATH", "paidlinks.db"),
		RedisURL:              getEnv("REDIS_URL", ""),
		JWTSecret:             getEnv("JWT_SECRET", ""),
		PaymentProvider:       getEnv("PAYMENT_PROVIDER", ProviderSandbox),
		PaymentCurrency:       getEnv("PAYMENT_CURRENCY", "BRL"),
		YookassaShopID:        getEnv("YOOKASSA_SHOP_ID", ""),
		YookassaSecretKey:     getEnv("YOOKASSA_SECRET_KEY", ""),
		YookassaAPIURL:        getEnv("YOOKASSA_API_URL", "https://api.yookassa.ru/v3"),
		PurchaseWebhookURL:    getEnv("PURCHASE_WEBHOOK_URL", ""),
		PurchaseWebhookSecret: getEnv("PURCHASE_WEBHOOK_SECRET", ""),
		BrevoAPIKey:           getEnv("BREVO_API_KEY", ""),
		BrevoFromEmail:        getEnv("BREVO_FROM_EMAIL", ""),
		BrevoFromName:         getEnv("BREVO_FROM_NAME", "Paid Links"),
		LinkCacheTTLSeconds:   getEnvInt("LINK_CACHE_TTL_SECONDS", 60),
		PurchaseLockSeconds:   getEnvInt("PURCHASE_LOCK_SECONDS", 30),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that have no sensible default
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errMissing("JWT_SECRET")
	}
	switch c.PaymentProvider {
	case ProviderSandbox:
	case ProviderYookassa:
		if c.YookassaShopID == "" || c.YookassaSecretKey == "" {
			return errMissing("YOOKASSA_SHOP_ID/YOOKASSA_SECRET_KEY")
		}
	default:
		return &Error{Key: "PAYMENT_PROVIDER", Reason: "must be sandbox or yookassa"}
	}
	if c.LinkCacheTTLSeconds < 0 || c.PurchaseLockSeconds <= 0 {
		return &Error{Key: "LINK_CACHE_TTL_SECONDS/PURCHASE_LOCK_SECONDS", Reason: "out of range"}
	}
	return nil
}

// Error describes an invalid configuration value
type Error struct {
	Key    string
	Reason string
}

func (e *Error) Error() string {
	return "config " + e.Key + ": " + e.Reason
}

func errMissing(key string) error {
	return &Error{Key: key, Reason: "is required"}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
