// Package config loads application configuration from environment variables.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ShopDomain   string
	ClientID     string
	ClientSecret string
	APIVersion   string
	ListenAddr   string
	TokenDBPath  string
	SecretKey    []byte // 32-byte AES-256 key for at-rest token encryption; nil when unset.
}

// HasShopifyCredentials returns true when all three Shopify secrets are
// non-empty. The HTTP adapter checks this per request rather than at startup
// so that operators see a precise configuration error instead of a crash loop.
func (c *Config) HasShopifyCredentials() bool {
	return c.ShopDomain != "" && c.ClientID != "" && c.ClientSecret != ""
}

// MissingSecrets lists the names of unset Shopify secret variables, in a
// stable order, for use in the configuration error response.
func (c *Config) MissingSecrets() []string {
	var missing []string
	if c.ShopDomain == "" {
		missing = append(missing, "CONSIGND_SHOP_DOMAIN")
	}
	if c.ClientID == "" {
		missing = append(missing, "CONSIGND_CLIENT_ID")
	}
	if c.ClientSecret == "" {
		missing = append(missing, "CONSIGND_CLIENT_SECRET")
	}
	return missing
}

// Load reads configuration from environment variables and returns a validated Config.
// Shopify secrets (CONSIGND_SHOP_DOMAIN, CONSIGND_CLIENT_ID, CONSIGND_CLIENT_SECRET)
// are optional at startup; endpoints return a configuration error until all three
// are set. Optional variables with defaults: CONSIGND_LISTEN_ADDR (127.0.0.1:8787),
// CONSIGND_API_VERSION (2025-10). CONSIGND_TOKEN_DB_PATH selects the sqlite token
// store; empty keeps the in-memory store. CONSIGND_SECRET_KEY, when set, must be
// 64 hex characters (a 32-byte AES-256 key).
func Load() (*Config, error) {
	cfg := &Config{
		ShopDomain:   os.Getenv("CONSIGND_SHOP_DOMAIN"),
		ClientID:     os.Getenv("CONSIGND_CLIENT_ID"),
		ClientSecret: os.Getenv("CONSIGND_CLIENT_SECRET"),
		APIVersion:   "2025-10",
		ListenAddr:   "127.0.0.1:8787",
		TokenDBPath:  os.Getenv("CONSIGND_TOKEN_DB_PATH"),
	}

	if v, ok := os.LookupEnv("CONSIGND_LISTEN_ADDR"); ok {
		cfg.ListenAddr = v
	}

	if v, ok := os.LookupEnv("CONSIGND_API_VERSION"); ok && v != "" {
		cfg.APIVersion = v
	}

	if v, ok := os.LookupEnv("CONSIGND_SECRET_KEY"); ok && v != "" {
		key, err := hex.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("CONSIGND_SECRET_KEY is not valid hex: %w", err)
		}
		if len(key) != 32 {
			return nil, fmt.Errorf("CONSIGND_SECRET_KEY must be 64 hex characters (32 bytes), got %d bytes", len(key))
		}
		cfg.SecretKey = key
	}

	return cfg, nil
}
