package config

import (
	"os"
	"strings"
	"time"
)

// CatalogueCacheTTL enforces retention for cached discovery catalogues.
var CatalogueCacheTTL = 5 * time.Minute

// Server captures process-level configuration.
type Server struct {
	Addr string
	// PostgresDSN selects the durable stores; empty falls back to in-memory.
	PostgresDSN string
	// RedisURL enables catalogue caching; empty disables it.
	RedisURL string
	// AdminJWTSigningKey signs and validates admin catalogue tokens.
	AdminJWTSigningKey string
	// ConnectorKeys maps connector names to bcrypt hashes of their API keys.
	ConnectorKeys map[string]string
}

// RedisConfig captures connection tuning for the catalogue cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("DSARHUB_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("ADMIN_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:               addr,
		PostgresDSN:        os.Getenv("POSTGRES_DSN"),
		RedisURL:           os.Getenv("REDIS_URL"),
		AdminJWTSigningKey: jwtSigningKey,
		ConnectorKeys:      parseConnectorKeys(os.Getenv("CONNECTOR_KEYS")),
	}
}

// Redis derives a RedisConfig with pool defaults from the server config.
func (s Server) Redis() RedisConfig {
	return RedisConfig{
		URL:          s.RedisURL,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// parseConnectorKeys reads "name:bcryptHash" pairs separated by commas.
// Malformed pairs are dropped rather than failing startup.
func parseConnectorKeys(raw string) map[string]string {
	keys := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		name, hash, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || name == "" || hash == "" {
			continue
		}
		keys[name] = hash
	}
	return keys
}
