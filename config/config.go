package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	Env      string
	LogLevel string
	DBUrl    string
	// Auth: HS256 tokens are checked against JWTSecret, RS256 against the JWKS
	AuthURL     string
	JWTSecret   string
	FrontendURL string
	// Redis/Upstash Configuration
	RedisURL        string
	RedisPassword   string
	ProfileCacheTTL time.Duration
	// Secure cookies and HSTS; on by default in production
	SecureCookies bool
	// Object storage for profile images: "s3" or "cloudinary"
	ImageStore        string
	CloudinaryURL     string
	S3Provider        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Region          string
	S3Bucket          string
	S3Endpoint        string
	S3PublicBaseURL   string
	// Upload limits
	UploadMaxBytes     int64
	UploadMaxDimension int
	UploadPerMinute    int
	UploadPerDay       int
	// clamd address; empty disables malware scanning
	ClamAVAddr string
	// Messaging
	RabbitMQURL   string
	EventExchange string
}

func LoadConfig() (*Config, error) {
	// Load .env file when present; production injects the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		DBUrl:    getEnv("DATABASE_URL", ""),
		// Trim trailing slash to avoid double slashes when building the JWKS URL
		AuthURL:     strings.TrimRight(getEnv("AUTH_URL", ""), "/"),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		// Redis/Upstash Configuration
		RedisURL:        getEnv("REDIS_URL", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		ProfileCacheTTL: time.Duration(getEnvInt("PROFILE_CACHE_TTL_SECONDS", 300)) * time.Second,
		// Object storage
		ImageStore:        strings.ToLower(getEnv("IMAGE_STORE", "s3")),
		CloudinaryURL:     getEnv("CLOUDINARY_URL", ""),
		S3Provider:        getEnv("S3_PROVIDER", "aws"),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3Region:          getEnv("S3_REGION", "us-east-1"),
		S3Bucket:          getEnv("S3_BUCKET", "jobby-profile-images"),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3PublicBaseURL:   strings.TrimRight(getEnv("S3_PUBLIC_BASE_URL", ""), "/"),
		// Upload limits (with sensible defaults)
		UploadMaxBytes:     int64(getEnvInt("UPLOAD_MAX_BYTES", 5<<20)), // 5 MiB
		UploadMaxDimension: getEnvInt("UPLOAD_MAX_DIMENSION", 512),
		UploadPerMinute:    getEnvInt("UPLOAD_PER_MINUTE", 10),
		UploadPerDay:       getEnvInt("UPLOAD_PER_DAY", 50),
		ClamAVAddr:         getEnv("CLAMAV_ADDR", ""),
		// Messaging
		RabbitMQURL:   getEnv("RABBITMQ_URL", ""),
		EventExchange: getEnv("EVENT_EXCHANGE", "profile.events"),
	}

	cfg.SecureCookies = getEnvBool("SECURE_COOKIES", cfg.IsProduction())

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}
	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Profile cache and upload limits are disabled.")
	}
	if cfg.ImageStore == "cloudinary" && cfg.CloudinaryURL == "" {
		log.Println("WARNING: IMAGE_STORE=cloudinary but CLOUDINARY_URL is empty. Uploads will fail.")
	}
	if cfg.JWTSecret == "" && cfg.AuthURL == "" {
		log.Println("WARNING: neither JWT_SECRET nor AUTH_URL is set. Every request will be unauthenticated.")
	}

	return cfg, nil
}

// JWKSURL is where RS256 signing keys are published.
func (c *Config) JWKSURL() string {
	if c.AuthURL == "" {
		return ""
	}
	return c.AuthURL + "/auth/v1/.well-known/jwks.json"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
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
