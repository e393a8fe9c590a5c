package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the server.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int

	AdminUsername     string
	AdminPasswordHash string

	LogLevel           slog.Level
	CORSAllowedOrigins []string

	R2 R2Config
}

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicBaseURL   string
}

// R2Enabled reports whether bracket snapshots should be uploaded.
func (c *Config) R2Enabled() bool {
	return c.R2.AccountID != ""
}

// Load reads the configuration from the environment. A .env file, if present, is loaded first.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, errors.New("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, errors.New("JWT_SECRET_KEY environment variable is not set")
	}

	portStr := getEnv("SERVER_PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	passwordHash := os.Getenv("ADMIN_PASSWORD_HASH")
	if passwordHash == "" {
		return nil, errors.New("ADMIN_PASSWORD_HASH environment variable is not set")
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL environment variable: %w", err)
	}

	r2, err := loadR2()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL:        dbURL,
		JWTSecretKey:       jwtKey,
		ServerPort:         port,
		AdminUsername:      getEnv("ADMIN_USERNAME", "admin"),
		AdminPasswordHash:  passwordHash,
		LogLevel:           level,
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		R2:                 r2,
	}

	return cfg, nil
}

type envVar struct {
	name string
	dst  *string
}

// loadR2 accepts either all R2 variables or none of them.
func loadR2() (R2Config, error) {
	var r2 R2Config
	vars := []envVar{
		{"R2_ACCOUNT_ID", &r2.AccountID},
		{"R2_ACCESS_KEY_ID", &r2.AccessKeyID},
		{"R2_SECRET_ACCESS_KEY", &r2.SecretAccessKey},
		{"R2_BUCKET_NAME", &r2.BucketName},
		{"R2_PUBLIC_BASE_URL", &r2.PublicBaseURL},
	}

	var missing []string
	for _, v := range vars {
		*v.dst = strings.TrimSpace(os.Getenv(v.name))
		if *v.dst == "" {
			missing = append(missing, v.name)
		}
	}

	if len(missing) > 0 && len(missing) < len(vars) {
		return R2Config{}, fmt.Errorf("incomplete R2 configuration, missing %s", strings.Join(missing, ", "))
	}
	return r2, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
