// Package config loads application configuration from environment variables.
package config

import (
	"os"
	"strconv"

	"go.uber.org/zap"
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign identity tokens
	IdentityTTLMin int    // identity token time-to-live in minutes
}

// Load reads configuration values from environment variables and
// returns a Config. Required variables are enforced by must() and a
// missing value halts the program.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		IdentityTTLMin: mustInt("IDENTITY_TOKEN_TTL_MIN"),
	}
}

func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		zap.L().Fatal("missing required env var", zap.String("key", key))
	}
	return v
}

func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		zap.L().Fatal("invalid int env var", zap.String("key", key), zap.String("value", s))
	}
	return n
}
