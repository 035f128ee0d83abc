package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config captures all runtime configuration of the movies API derived from environment variables.
type Config struct {
	Port              string
	DBURL             string
	JWTSecret         string
	TokenTTLSecs      int
	BcryptCost        int
	AutoMigrate       bool
	ReadTimeoutSecs   int
	WriteTimeoutSecs  int
	IdleTimeoutSecs   int
	DBMaxConns        int
	DBMinConns        int
	DBMaxIdleSecs     int
	DBMaxLifeSecs     int
	DBConnTimeoutSecs int
	DBStatementCache  int
}

// UploadConfig captures the configuration of the file upload service.
type UploadConfig struct {
	Port             string
	Dir              string
	MaxBytes         int64
	ReadTimeoutSecs  int
	WriteTimeoutSecs int
	IdleTimeoutSecs  int
}

// Load reads configuration from environment variables, applying defaults and validation.
// A .env file in the working directory is honoured but never overrides the real environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:              getEnv("PORT", "8080"),
		DBURL:             os.Getenv("DB_URL"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		TokenTTLSecs:      getEnvInt("TOKEN_TTL_SECS", 120),
		BcryptCost:        getEnvInt("BCRYPT_COST", 10),
		AutoMigrate:       getEnvBool("DB_AUTO_MIGRATE", true),
		ReadTimeoutSecs:   getEnvInt("SERVER_READ_TIMEOUT", 15),
		WriteTimeoutSecs:  getEnvInt("SERVER_WRITE_TIMEOUT", 15),
		IdleTimeoutSecs:   getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		DBMaxConns:        getEnvInt("DB_MAX_CONNS", 20),
		DBMinConns:        getEnvInt("DB_MIN_CONNS", 2),
		DBMaxIdleSecs:     getEnvInt("DB_MAX_CONN_IDLE_SECS", 300),
		DBMaxLifeSecs:     getEnvInt("DB_MAX_CONN_LIFETIME_SECS", 3600),
		DBConnTimeoutSecs: getEnvInt("DB_CONN_TIMEOUT_SECS", 10),
		DBStatementCache:  getEnvInt("DB_STATEMENT_CACHE_CAPACITY", 256),
	}

	if cfg.DBURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.TokenTTLSecs <= 0 {
		return Config{}, fmt.Errorf("TOKEN_TTL_SECS must be positive")
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return Config{}, fmt.Errorf("BCRYPT_COST must be between 4 and 31")
	}
	if cfg.DBMaxConns <= 0 {
		return Config{}, fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if cfg.DBMinConns < 0 {
		return Config{}, fmt.Errorf("DB_MIN_CONNS must be non-negative")
	}
	if cfg.DBMinConns > cfg.DBMaxConns {
		return Config{}, fmt.Errorf("DB_MIN_CONNS cannot exceed DB_MAX_CONNS")
	}
	if cfg.DBStatementCache < 0 {
		return Config{}, fmt.Errorf("DB_STATEMENT_CACHE_CAPACITY must be non-negative")
	}

	return cfg, nil
}

// LoadUpload reads the upload service configuration.
func LoadUpload() (UploadConfig, error) {
	_ = godotenv.Load()

	cfg := UploadConfig{
		Port:             getEnv("UPLOAD_PORT", "8081"),
		Dir:              getEnv("UPLOAD_DIR", "uploads"),
		MaxBytes:         int64(getEnvInt("UPLOAD_MAX_BYTES", 1<<20)),
		ReadTimeoutSecs:  getEnvInt("SERVER_READ_TIMEOUT", 15),
		WriteTimeoutSecs: getEnvInt("SERVER_WRITE_TIMEOUT", 15),
		IdleTimeoutSecs:  getEnvInt("SERVER_IDLE_TIMEOUT", 60),
	}

	if strings.TrimSpace(cfg.Dir) == "" {
		return UploadConfig{}, fmt.Errorf("UPLOAD_DIR must not be empty")
	}
	if cfg.MaxBytes <= 0 {
		return UploadConfig{}, fmt.Errorf("UPLOAD_MAX_BYTES must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}
