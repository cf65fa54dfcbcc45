package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "secret"

type Config struct {
	AppEnv     string
	ServerPort string

	DBDriver    string // postgres, sqlite
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string

	JWTSecret     string
	TokenTTL      time.Duration
	ResetTokenTTL time.Duration
	CookieSecure  bool

	ClientURL   string
	CORSOrigins string

	LogLevel  string
	LogFormat string // text, json

	MailProvider   string // smtp, sendgrid
	EmailHost      string
	EmailPort      int
	EmailUser      string
	EmailPass      string
	EmailFrom      string
	SendGridAPIKey string

	AssetDriver   string // s3, local
	S3Bucket      string
	S3Region      string
	S3Endpoint    string
	S3AccessKey   string
	S3SecretKey   string
	S3PublicURL   string
	UploadDir     string
	PublicBaseURL string

	HousekeepingSchedule string
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	appEnv := getEnv("APP_ENV", "development")

	cfg := &Config{
		AppEnv:     appEnv,
		ServerPort: getEnv("SERVER_PORT", getEnv("PORT", "5000")),

		DBDriver:    strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  getEnv("DB_PASSWORD", "postgres"),
		DBName:      getEnv("DB_NAME", "learning_platform"),

		JWTSecret:     getEnv("JWT_SECRET", defaultJWTSecret),
		TokenTTL:      getEnvDuration("TOKEN_TTL", time.Hour),
		ResetTokenTTL: getEnvDuration("RESET_TOKEN_TTL", 10*time.Minute),
		CookieSecure:  getEnvBool("COOKIE_SECURE", appEnv == "production"),

		ClientURL:   strings.TrimRight(getEnv("CLIENT_URL", "http://localhost:5173"), "/"),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:5173"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		MailProvider:   strings.ToLower(getEnv("MAIL_PROVIDER", "smtp")),
		EmailHost:      getEnv("EMAIL_HOST", "localhost"),
		EmailPort:      getEnvInt("EMAIL_PORT", 587),
		EmailUser:      getEnv("EMAIL_USER", ""),
		EmailPass:      getEnv("EMAIL_PASS", ""),
		EmailFrom:      getEnv("EMAIL_FROM", "no-reply@coursehub.local"),
		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),

		AssetDriver:   strings.ToLower(getEnv("ASSET_DRIVER", "local")),
		S3Bucket:      getEnv("S3_BUCKET", "coursehub"),
		S3Region:      getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:    getEnv("S3_ENDPOINT", ""),
		S3AccessKey:   getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:   getEnv("S3_SECRET_KEY", ""),
		S3PublicURL:   strings.TrimRight(getEnv("S3_PUBLIC_URL", ""), "/"),
		UploadDir:     getEnv("UPLOAD_DIR", "uploads"),
		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:5000"), "/"),

		HousekeepingSchedule: getEnv("HOUSEKEEPING_SCHEDULE", "@every 10m"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == defaultJWTSecret && cfg.IsProduction() {
		log.Println("Warning: using default JWT_SECRET in production. Update it in your environment.")
	}

	return cfg, nil
}

// Validate rejects driver names the bootstrap code does not know how to build.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.MailProvider {
	case "smtp", "sendgrid":
	default:
		return fmt.Errorf("unsupported MAIL_PROVIDER %q", c.MailProvider)
	}
	switch c.AssetDriver {
	case "s3", "local":
	default:
		return fmt.Errorf("unsupported ASSET_DRIVER %q", c.AssetDriver)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.ResetTokenTTL <= 0 {
		return fmt.Errorf("RESET_TOKEN_TTL must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// DSN returns DATABASE_URL when set, otherwise a postgres DSN assembled from the DB_* parts.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	if c.DBDriver == "sqlite" {
		return c.DBName + ".db"
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort,
	)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to bool: %v", key, err)
		return defaultValue
	}
	return b
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to duration: %v", key, err)
		return defaultValue
	}
	return d
}
