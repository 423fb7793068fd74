package utils

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type AuthConfig struct {
	JWTSecret         string
	JWTIssuer         string
	JWTDuration       time.Duration
	AdminUser         string
	AdminPasswordHash string // bcrypt hash; empty disables admin login
}

func LoadAuthConfig() AuthConfig {
	secret := os.Getenv("MEDIASCOUT_JWT_SECRET")
	if secret == "" {
		// dev default (change for demo / production)
		secret = "dev-secret-change-me"
	}

	issuer := os.Getenv("MEDIASCOUT_JWT_ISSUER")
	if issuer == "" {
		issuer = "mediascout"
	}

	duration := 24 * time.Hour
	if ttl := os.Getenv("MEDIASCOUT_JWT_TTL_HOURS"); ttl != "" {
		if h, err := strconv.Atoi(ttl); err == nil && h > 0 {
			duration = time.Duration(h) * time.Hour
		}
	}

	return AuthConfig{
		JWTSecret:         secret,
		JWTIssuer:         issuer,
		JWTDuration:       duration,
		AdminUser:         envOr("MEDIASCOUT_ADMIN_USER", "admin"),
		AdminPasswordHash: os.Getenv("MEDIASCOUT_ADMIN_PASSWORD_HASH"),
	}
}

type ProviderConfig struct {
	Enabled    []string // provider names, fan-out order
	TMDBAPIKey string
	Timeout    time.Duration // per upstream call
}

// LoadProviderConfig reads the enabled-provider set and upstream settings.
// Enabled-ness is fixed process configuration; the registry never
// re-evaluates it per call.
func LoadProviderConfig() ProviderConfig {
	enabled := []string{"tmdb", "jikan", "openlibrary"}
	if v := os.Getenv("MEDIASCOUT_PROVIDERS"); v != "" {
		enabled = enabled[:0]
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				enabled = append(enabled, name)
			}
		}
	}

	timeout := 4 * time.Second
	if v := os.Getenv("MEDIASCOUT_PROVIDER_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			timeout = time.Duration(ms) * time.Millisecond
		}
	}

	return ProviderConfig{
		Enabled:    enabled,
		TMDBAPIKey: os.Getenv("MEDIASCOUT_TMDB_API_KEY"),
		Timeout:    timeout,
	}
}

type ServerConfig struct {
	Addr          string
	DefaultLocale string
}

func LoadServerConfig() ServerConfig {
	return ServerConfig{
		Addr:          envOr("MEDIASCOUT_ADDR", ":8080"),
		DefaultLocale: envOr("MEDIASCOUT_DEFAULT_LOCALE", "en"),
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
