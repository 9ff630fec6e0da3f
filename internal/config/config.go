package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DatabaseURL string

	// Kafka
	KafkaBrokers string

	// API Configuration
	APIPort string
	APIHost string

	// Supplier Open API
	SupplierAPIURL    string
	SupplierAppKey    string
	SupplierAppSecret string
	SupplierTokenPath string

	// Shopify
	ShopifyShopDomain  string
	ShopifyAccessToken string
	ShopifyAPIVersion  string
	// Publication representing the online storefront sales channel
	ShopifyPublicationID string

	// Availability probing
	ProbeCountries []string
	ProbeCurrency  string
	ProbeLanguage  string

	// Pacing (milliseconds between consecutive calls)
	ProbeDelayMs  int
	MutateDelayMs int

	// Environment
	Env      string
	LogLevel string
}

func Load() (*Config, error) {
	// Load .env file
	godotenv.Load()

	return &Config{
		DatabaseURL:          getEnv("DATABASE_URL", "sqlite://dropsync.db"),
		KafkaBrokers:         getEnv("KAFKA_BROKERS", "localhost:9092"),
		APIPort:              getEnv("API_PORT", "8080"),
		APIHost:              getEnv("API_HOST", "0.0.0.0"),
		SupplierAPIURL:       getEnv("SUPPLIER_API_URL", "https://api-sg.aliexpress.com/sync"),
		SupplierAppKey:       getEnv("SUPPLIER_APP_KEY", ""),
		SupplierAppSecret:    getEnv("SUPPLIER_APP_SECRET", ""),
		SupplierTokenPath:    getEnv("SUPPLIER_TOKEN_PATH", "tokens.json"),
		ShopifyShopDomain:    getEnv("SHOPIFY_SHOP_DOMAIN", ""),
		ShopifyAccessToken:   getEnv("SHOPIFY_ACCESS_TOKEN", ""),
		ShopifyAPIVersion:    getEnv("SHOPIFY_API_VERSION", "2023-10"),
		ShopifyPublicationID: getEnv("SHOPIFY_PUBLICATION_ID", ""),
		ProbeCountries:       getEnvAsList("PROBE_COUNTRIES", "DE,FR,ES,IT,NL,PL,BE,CZ,SE,PT"),
		ProbeCurrency:        getEnv("PROBE_CURRENCY", "EUR"),
		ProbeLanguage:        getEnv("PROBE_LANGUAGE", "en"),
		ProbeDelayMs:         getEnvAsInt("PROBE_DELAY_MS", 1200),
		MutateDelayMs:        getEnvAsInt("MUTATE_DELAY_MS", 600),
		Env:                  getEnv("ENV", "development"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsList(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, strings.ToUpper(p))
		}
	}
	return out
}
