package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL   string
	HTTPPort      string
	LogLevel      string
	JWTSecret     string
	JWTTTL        time.Duration
	AdminEmail    string
	AdminPassword string
}

// Load reads .env when present and then the process environment.
func Load() Config {
	_ = godotenv.Load()
	c := Config{
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		HTTPPort:      getenv("HTTP_PORT", "8080"),
		LogLevel:      getenv("LOG_LEVEL", "info"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTTTL:        24 * time.Hour,
		AdminEmail:    getenv("ADMIN_EMAIL", "admin@cryptolab.local"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}
	if s := os.Getenv("JWT_EXPIRES_IN"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 {
			c.JWTTTL = d
		}
	}
	return c
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
