package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/mossydrift/estate-listing-backend/internal/compression"
)

const PROD_STRING = "prod"

// Storage backend names recognized in STORAGE_BACKEND.
const (
	BackendLocal = "local"
	BackendMinio = "minio"
)

// Config holds all application configuration loaded from environment.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	HTTPAddr     string
	DBDSN        string

	StorageBackend      string
	LocalStoragePath    string
	LocalStorageBaseURL string
	MinioEndpoint       string
	MinioAccessKey      string
	MinioSecretKey      string
	MinioBucket         string
	MinioUseSSL         bool
	MinioPublicURL      string

	Target compression.Target
	Limits compression.Limits
}

// Load loads configuration from .env (optional) and environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Printf("failed to load .env file: %v", err)
	}

	cfg := &Config{}

	// Application environment (default: dev)
	appEnvStr := getEnv("APP_ENV", "dev")
	cfg.IsProduction = appEnvStr == PROD_STRING

	// Production origin (default: empty)
	cfg.ProdOrigins = getEnv("PROD_ORIGINS", "")

	// HTTP listen address (default: :8080)
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")

	// Database DSN is required
	cfg.DBDSN = os.Getenv("DB_DSN")
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required")
	}

	// Storage backend (default: local disk)
	cfg.StorageBackend = getEnv("STORAGE_BACKEND", BackendLocal)
	switch cfg.StorageBackend {
	case BackendLocal:
		cfg.LocalStoragePath = getEnv("LOCAL_STORAGE_PATH", "./data/media")
		cfg.LocalStorageBaseURL = getEnv("LOCAL_STORAGE_BASE_URL", "/v1/media/files")
	case BackendMinio:
		cfg.MinioEndpoint = os.Getenv("MINIO_ENDPOINT")
		cfg.MinioAccessKey = os.Getenv("MINIO_ACCESS_KEY")
		cfg.MinioSecretKey = os.Getenv("MINIO_SECRET_KEY")
		if cfg.MinioEndpoint == "" || cfg.MinioAccessKey == "" || cfg.MinioSecretKey == "" {
			return nil, fmt.Errorf("MINIO_ENDPOINT, MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required for the minio backend")
		}
		cfg.MinioBucket = getEnv("MINIO_BUCKET", "listing-media")
		cfg.MinioPublicURL = getEnv("MINIO_PUBLIC_URL", cfg.MinioEndpoint)
		useSSL, err := getEnvAsBool("MINIO_USE_SSL", true)
		if err != nil {
			return nil, fmt.Errorf("invalid MINIO_USE_SSL: %w", err)
		}
		cfg.MinioUseSSL = useSSL
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}

	// Compression target and upload limits, tunable per deployment.
	target := compression.DefaultTarget()
	limits := compression.DefaultLimits()

	var err error
	if target.SizeBytes, err = getEnvAsInt64("COMPRESSION_TARGET_BYTES", target.SizeBytes); err != nil {
		return nil, fmt.Errorf("invalid COMPRESSION_TARGET_BYTES: %w", err)
	}
	if target.MaxRefinementAttempts, err = getEnvAsInt("COMPRESSION_MAX_REFINEMENTS", target.MaxRefinementAttempts); err != nil {
		return nil, fmt.Errorf("invalid COMPRESSION_MAX_REFINEMENTS: %w", err)
	}
	if limits.MaxFileSizeBytes, err = getEnvAsInt64("UPLOAD_MAX_FILE_BYTES", limits.MaxFileSizeBytes); err != nil {
		return nil, fmt.Errorf("invalid UPLOAD_MAX_FILE_BYTES: %w", err)
	}
	if limits.MaxFilesPerBatch, err = getEnvAsInt("UPLOAD_MAX_FILES", limits.MaxFilesPerBatch); err != nil {
		return nil, fmt.Errorf("invalid UPLOAD_MAX_FILES: %w", err)
	}

	cfg.Target = target
	cfg.Limits = limits

	return cfg, nil
}

// getEnv returns the value of the environment variable if set,
// otherwise returns the provided default value.
func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer.
// It returns the default value if the variable is not set.
func getEnvAsInt(key string, defaultValue int) (int, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid integer: %w", key, valStr, err)
	}
	return val, nil
}

// getEnvAsInt64 retrieves an environment variable as an int64.
func getEnvAsInt64(key string, defaultValue int64) (int64, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseInt(valStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid integer: %w", key, valStr, err)
	}
	return val, nil
}

// getEnvAsBool retrieves an environment variable as a boolean.
func getEnvAsBool(key string, defaultValue bool) (bool, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(valStr)
	if err != nil {
		return false, fmt.Errorf("env %s value %q is not a valid boolean: %w", key, valStr, err)
	}
	return val, nil
}
