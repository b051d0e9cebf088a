package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// devJWTSecret is only acceptable when APP_ENV is dev or test.
const devJWTSecret = "dev-secret-change-me"

type Config struct {
	Env         string
	Port        int
	ServiceName string

	// store backend: postgres | mongo | memory
	StoreDriver  string
	DBURL        string
	MongoURI     string
	MongoDB      string
	StoreTimeout time.Duration

	JWTSecret  string
	JWTTTL     time.Duration
	BcryptCost int

	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	IdentityCacheTTL time.Duration

	MailgunDomain  string
	MailgunAPIKey  string
	MailgunSender  string
	ContactInbox   string
	NotifyTimeout  time.Duration
	NotifyCooldown time.Duration

	OTLPEndpoint string

	CORSAllowedOrigins []string
	MaxBodyBytes       int64
	AuthRateLimit      int
	AuthRateWindow     time.Duration
	APIRateLimit       int
}

func Load() Config {
	return Config{
		Env:         getEnv("APP_ENV", "dev"),
		Port:        getEnvInt("PORT", 8080),
		ServiceName: getEnv("SERVICE_NAME", "pupsorders"),

		StoreDriver:  strings.ToLower(getEnv("STORE_DRIVER", "postgres")),
		DBURL:        buildDBURL(),
		MongoURI:     getEnv("MONGO_URI", "mongodb://127.0.0.1:27017"),
		MongoDB:      getEnv("MONGO_DB", "pupsorders"),
		StoreTimeout: getEnvDuration("STORE_TIMEOUT", 3*time.Second),

		JWTSecret:  getEnv("JWT_SECRET", devJWTSecret),
		JWTTTL:     getEnvDuration("JWT_TTL", 24*time.Hour),
		BcryptCost: getEnvInt("BCRYPT_COST", 10),

		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          getEnvInt("REDIS_DB", 0),
		IdentityCacheTTL: getEnvDuration("IDENTITY_CACHE_TTL", 5*time.Minute),

		MailgunDomain:  getEnv("MAILGUN_DOMAIN", ""),
		MailgunAPIKey:  getEnv("MAILGUN_API_KEY", ""),
		MailgunSender:  getEnv("MAILGUN_SENDER", ""),
		ContactInbox:   getEnv("CONTACT_INBOX", ""),
		NotifyTimeout:  getEnvDuration("NOTIFY_TIMEOUT", 10*time.Second),
		NotifyCooldown: getEnvDuration("NOTIFY_COOLDOWN", 30*time.Second),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),
		AuthRateLimit:      getEnvInt("AUTH_RATE_LIMIT", 10),
		AuthRateWindow:     getEnvDuration("AUTH_RATE_WINDOW", time.Minute),
		APIRateLimit:       getEnvInt("API_RATE_LIMIT", 120),
	}
}

// Validate rejects settings that are unsafe to run with outside dev and test.
func (c Config) Validate() error {
	if c.Env == "dev" || c.Env == "test" {
		return nil
	}
	if c.JWTSecret == "" || c.JWTSecret == devJWTSecret {
		return fmt.Errorf("JWT_SECRET must be set to a private value when APP_ENV=%q", c.Env)
	}
	return nil
}

// MailgunEnabled reports whether every Mailgun setting needed to send is present.
func (c Config) MailgunEnabled() bool {
	return c.MailgunDomain != "" && c.MailgunAPIKey != "" && c.MailgunSender != "" && c.ContactInbox != ""
}

func buildDBURL() string {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		return v
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "pups")
	pass := getEnv("DB_PASSWORD", "pups")
	name := getEnv("DB_NAME", "pups")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

// WithTimeout derives a bounded context from parent; a nil parent means Background.
func WithTimeout(parent context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			slog.Warn("invalid int in environment, using default", "key", key, "err", err, "default", fallback)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)

		if err != nil {
			slog.Warn("invalid duration in environment, using default", "key", key, "err", err, "default", fallback)
			return fallback
		}

		return d
	}
	return fallback
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
