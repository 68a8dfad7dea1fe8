package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string
	// Store backend: "postgres" (default when DATABASE_URL is set) or "memory"
	StoreBackend string
	DatabaseURL  string
	// MigrateOnStart applies pending schema migrations before serving
	MigrateOnStart bool
	CORSOrigins    string

	// Self-issued session tokens
	JWTSecret     string
	JWTIssuer     string
	JWTExpiration time.Duration

	// Optional external identity providers
	SupabaseURL     string
	SupabaseJWKSURL string // Constructed from SupabaseURL + /auth/v1/.well-known/jwks.json
	GoogleClientID  string

	// Object storage
	StorageBackend string // "minio" or "memory"
	MinIO          MinIOConfig

	// Upload policy (allow-list + size ceiling)
	Upload           UploadPolicy
	UploadPolicyFile string

	// Logging
	LogDir      string
	LogMaxFiles int

	// Tracing (disabled when endpoint is empty)
	OTLPEndpoint string
	ServiceName  string

	// Debug flags
	Debug bool
}

// MinIOConfig holds connection settings for the S3-compatible object store.
type MinIOConfig struct {
	Endpoint       string
	PublicEndpoint string
	AccessKey      string
	SecretKey      string
	Bucket         string
	Region         string
	UseSSL         bool
	URLExpiry      time.Duration
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	supabaseURL := getEnv("SUPABASE_URL", "")

	jwksURL := ""
	if supabaseURL != "" {
		jwksURL = strings.TrimRight(supabaseURL, "/") + "/auth/v1/.well-known/jwks.json"
	}

	databaseURL := getEnv("DATABASE_URL", "")

	return &Config{
		Port:           getEnv("PORT", "8080"),
		Environment:    env,
		StoreBackend:   getEnv("STORE_BACKEND", getDefaultStoreBackend(databaseURL)),
		DatabaseURL:    databaseURL,
		MigrateOnStart: getEnv("MIGRATE_ON_START", "true") == "true",
		CORSOrigins:    getEnv("CORS_ORIGINS", "http://localhost:3000"),

		JWTSecret:     getEnv("JWT_SECRET", ""),
		JWTIssuer:     getEnv("JWT_ISSUER", "dataroom"),
		JWTExpiration: time.Duration(getEnvInt("JWT_EXPIRATION_HOURS", 24*7)) * time.Hour,

		SupabaseURL:     supabaseURL,
		SupabaseJWKSURL: jwksURL,
		GoogleClientID:  getEnv("GOOGLE_CLIENT_ID", ""),

		StorageBackend: getEnv("STORAGE_BACKEND", "minio"),
		MinIO: MinIOConfig{
			Endpoint:       getEnv("MINIO_ENDPOINT", "localhost:9000"),
			PublicEndpoint: getEnv("MINIO_PUBLIC_ENDPOINT", ""),
			AccessKey:      getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey:      getEnv("MINIO_SECRET_KEY", ""),
			Bucket:         getEnv("MINIO_BUCKET", "dataroom-files"),
			Region:         getEnv("MINIO_REGION", "us-east-1"),
			UseSSL:         getEnv("MINIO_USE_SSL", "false") == "true",
			URLExpiry:      time.Duration(getEnvInt("MINIO_URL_EXPIRY_MINUTES", 60)) * time.Minute,
		},

		Upload: UploadPolicy{
			AllowedTypes: splitList(getEnv("UPLOAD_ALLOWED_TYPES", "application/pdf")),
			MaxBytes:     getEnvInt64("UPLOAD_MAX_BYTES", DefaultMaxUploadBytes),
		},
		UploadPolicyFile: getEnv("UPLOAD_POLICY_FILE", ""),

		LogDir:      getEnv("LOG_DIR", ""),
		LogMaxFiles: getEnvInt("LOG_MAX_FILES", 10),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		ServiceName:  getEnv("OTEL_SERVICE_NAME", "dataroom-api"),

		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getDefaultStoreBackend picks postgres when a database URL is configured
func getDefaultStoreBackend(databaseURL string) string {
	if databaseURL == "" {
		return "memory"
	}
	return "postgres"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}
	return n
}

// splitList splits a comma-separated env value, dropping blanks
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
