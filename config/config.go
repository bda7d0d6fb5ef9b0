package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"cv-tracker-backend/pkg/logger"
)

type Config struct {
	Port        string
	GinMode     string
	DBUrl       string
	FrontendURL string
	// Auth
	JWTSecret   string
	JWTTTLHours int
	// Redis/Upstash Configuration
	UpstashRedisURL       string
	UpstashRedisPassword  string
	ListasCacheTTLSeconds int
	// Rate Limiting Configuration
	RateLimitWindowSeconds   int
	RateLimitLoginThreshold  int
	RateLimitGlobalThreshold int
	// Attachment storage
	StorageDriver     string // "local" or "s3"
	StorageLocalDir   string
	StoragePublicURL  string
	S3Provider        string
	S3AccessKeyID     string
	S3SecretKey       string
	S3Region          string
	S3Bucket          string
	S3Prefix          string
	S3Endpoint        string
	MaxAttachmentMB   int
	ImageMaxDimension int
	// Events
	RabbitMQURL      string
	RabbitMQExchange string
	// Startup
	RunMigrations     bool
	SeedAdminEmail    string
	SeedAdminPassword string
}

func LoadConfig() (*Config, error) {
	// Only effective locally; production sets real environment variables
	_ = godotenv.Load()

	port := getEnv("PORT", "8080")
	cfg := &Config{
		Port:        port,
		GinMode:     getEnv("GIN_MODE", "debug"),
		DBUrl:       getEnv("DATABASE_URL", ""),
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),

		JWTSecret:   getEnv("JWT_SECRET", ""),
		JWTTTLHours: getEnvInt("JWT_TTL_HOURS", 12),

		UpstashRedisURL:       getEnv("UPSTASH_REDIS_URL", ""),
		UpstashRedisPassword:  getEnv("UPSTASH_REDIS_PASSWORD", ""),
		ListasCacheTTLSeconds: getEnvInt("LISTAS_CACHE_TTL_SECONDS", 300),

		RateLimitWindowSeconds:   getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitLoginThreshold:  getEnvInt("RATE_LIMIT_LOGIN_THRESHOLD", 10),
		RateLimitGlobalThreshold: getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 300),

		StorageDriver:     strings.ToLower(getEnv("STORAGE_DRIVER", "local")),
		StorageLocalDir:   getEnv("STORAGE_LOCAL_DIR", "./uploads"),
		StoragePublicURL:  strings.TrimRight(getEnv("STORAGE_PUBLIC_URL", "http://localhost:"+port+"/files"), "/"),
		S3Provider:        getEnv("S3_PROVIDER", "aws"),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretKey:       getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3Region:          getEnv("S3_REGION", "us-east-1"),
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3Prefix:          getEnv("S3_PREFIX", "curriculums"),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		MaxAttachmentMB:   getEnvInt("MAX_ATTACHMENT_MB", 5),
		ImageMaxDimension: getEnvInt("IMAGE_MAX_DIMENSION", 1200),

		RabbitMQURL:      getEnv("RABBITMQ_URL", ""),
		RabbitMQExchange: getEnv("RABBITMQ_EXCHANGE", "cv_tracker_events"),

		RunMigrations:     getEnvBool("RUN_MIGRATIONS", true),
		SeedAdminEmail:    getEnv("SEED_ADMIN_EMAIL", ""),
		SeedAdminPassword: getEnv("SEED_ADMIN_PASSWORD", ""),
	}

	if cfg.DBUrl == "" {
		logger.Log.Warn("DATABASE_URL is missing, using the in-memory store")
	}
	if cfg.UpstashRedisURL == "" {
		logger.Log.Warn("UPSTASH_REDIS_URL not configured, listas cache disabled and rate limiting in-memory")
	}
	if cfg.JWTSecret == "" {
		logger.Log.Warn("JWT_SECRET is missing, using an insecure development secret")
		cfg.JWTSecret = "dev-insecure-secret"
	}

	return cfg, nil
}

// IsRelease reports whether gin runs in release mode.
func (c *Config) IsRelease() bool {
	return c.GinMode == "release"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
