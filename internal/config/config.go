package config

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env  string
	Port int

	DBURL string

	// required, the process must not boot without it
	JWTSecret string
	TokenTTL  time.Duration

	CORSOrigins []string

	AdminName     string
	AdminEmail    string
	AdminPassword string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	OTLPEndpoint string
}

func Load() (Config, error) {
	// .env is optional, real deployments use plain environment variables
	_ = godotenv.Load()

	secret := os.Getenv("JWT_SECRET")

	if secret == "" {
		return Config{}, errors.New("JWT_SECRET is not defined in environment")
	}

	cfg := Config{
		Env:           getEnv("APP_ENV", "development"),
		Port:          getEnvInt("PORT", 5000),
		DBURL:         buildDBURL(),
		JWTSecret:     secret,
		TokenTTL:      24 * time.Hour,
		CORSOrigins:   splitOrigins(getEnv("CORS_ORIGIN", "*")),
		AdminName:     getEnv("DEFAULT_ADMIN_NAME", "Super Admin"),
		AdminEmail:    getEnv("DEFAULT_ADMIN_EMAIL", "admin@eventsphere.edu"),
		AdminPassword: getEnv("DEFAULT_ADMIN_PASSWORD", "Admin@1234"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		OTLPEndpoint:  os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	return cfg, nil
}

func buildDBURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "eventsphere")
	pass := getEnv("DB_PASSWORD", "eventsphere")
	name := getEnv("DB_NAME", "eventsphere")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func splitOrigins(raw string) []string {
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

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
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
			return fallback
		}

		return num
	}

	return fallback
}
