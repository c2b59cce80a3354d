package app

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/hazelworks/personachat/pkg/cryptox"
	"github.com/hazelworks/personachat/pkg/jwtx"

	"github.com/joho/godotenv"
)

type Config struct {
	Issuer   string // iss claim on every token (default: chatbot-api)
	Audience string // aud claim on every token (default: chatbot-app)

	AccessSecret  string // Required: HMAC secret for access tokens
	RefreshSecret string // Required: HMAC secret for refresh tokens

	AccessTTL  time.Duration // Access token lifetime (default: 1h)
	RefreshTTL time.Duration // Refresh token lifetime (default: 7d)

	PasswordScheme cryptox.Scheme // Password hashing scheme (sha256, argon2id)

	DatabaseFile         string        // Path to SQLite database file (default: ./auth.db)
	Env                  string        // Environment (development, production)
	LogLevel             string        // Log level (debug, info, warn, error)
	LogFormat            string        // Log format (json, text)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Expired refresh row sweep interval (default: 1h)
	BlacklistSweep       time.Duration // Revocation registry sweep interval (default: 1h)
}

// LoadConfig reads configuration from the environment, loading a local .env
// file first when present.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Issuer:               getEnvOrDefault("JWT_ISSUER", "chatbot-api"),
		Audience:             getEnvOrDefault("JWT_AUDIENCE", "chatbot-app"),
		AccessSecret:         os.Getenv("JWT_SECRET"),
		RefreshSecret:        os.Getenv("JWT_REFRESH_SECRET"),
		AccessTTL:            getEnvTTLOrDefault("JWT_EXPIRES_IN", jwtx.DefaultAccessTokenTTL),
		RefreshTTL:           getEnvTTLOrDefault("REFRESH_TOKEN_EXPIRES_IN", jwtx.DefaultRefreshTokenTTL),
		DatabaseFile:         getEnvOrDefault("DATABASE_FILE", "auth.db"),
		Env:                  getEnvOrDefault("ENV", "development"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
		BlacklistSweep:       getEnvDurationOrDefault("BLACKLIST_SWEEP_INTERVAL", 1*time.Hour),
	}

	switch getEnvOrDefault("PASSWORD_SCHEME", "sha256") {
	case "argon2id":
		cfg.PasswordScheme = cryptox.SchemeArgon2id
	default:
		cfg.PasswordScheme = cryptox.SchemeSHA256
	}

	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return Config{}, errors.New("JWT_SECRET and JWT_REFRESH_SECRET must be set")
	}

	return cfg, nil
}

// Production reports whether the service runs with production cookie and
// logging behavior.
func (c Config) Production() bool { return c.Env == "production" }

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

// getEnvTTLOrDefault accepts the mobile backend's TTL shorthand ("1h", "7d",
// "900s") as well as Go duration strings.
func getEnvTTLOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if d, ok := jwtx.ParseTTL(value); ok {
		return d
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Integer minutes for backwards compatibility
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
