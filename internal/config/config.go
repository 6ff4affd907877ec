package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Port        string
	DatabaseURL string
	LogLevel    string
	LogFormat   string

	CacheEnabled  bool
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisTTL      time.Duration
	SessionTTL    time.Duration

	MarginPercent float64
	DiscountBase  string
	BaseCurrency  string

	AdminUser         string
	AdminPasswordHash string

	UploadDir      string
	PublicFilesURL string

	SMTPHost           string
	SMTPPort           int
	SMTPUser           string
	SMTPPass           string
	BookingNotifyEmail string
	WhatsAppNumber     string

	CatalogRefreshSchedule string
}

// Load reads .env when present and then the process environment.
func Load(log logrus.FieldLogger) Config {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, using environment")
	}

	port := getEnv("PORT", "8080")
	return Config{
		Port:        port,
		DatabaseURL: getEnv("DATABASE_URL", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),

		CacheEnabled:  getEnvBool("CACHE_ENABLED", false),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTTL:      getEnvDuration("REDIS_TTL", 10*time.Minute),
		SessionTTL:    getEnvDuration("SESSION_TTL", 24*time.Hour),

		MarginPercent: getEnvFloat("MARGIN_PERCENT", 20),
		DiscountBase:  getEnv("DISCOUNT_BASE", "pre_margin"),
		BaseCurrency:  strings.ToUpper(getEnv("BASE_CURRENCY", "USD")),

		AdminUser:         getEnv("ADMIN_USER", "admin"),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),

		UploadDir:      getEnv("UPLOAD_DIR", "./uploads"),
		PublicFilesURL: getEnv("PUBLIC_FILES_URL", "http://localhost:"+port+"/files"),

		SMTPHost:           getEnv("SMTP_HOST", ""),
		SMTPPort:           getEnvInt("SMTP_PORT", 587),
		SMTPUser:           getEnv("SMTP_USER", ""),
		SMTPPass:           getEnv("SMTP_PASS", ""),
		BookingNotifyEmail: getEnv("BOOKING_NOTIFY_EMAIL", ""),
		WhatsAppNumber:     getEnv("WHATSAPP_NUMBER", ""),

		CatalogRefreshSchedule: getEnv("CATALOG_REFRESH_SCHEDULE", "@every 10m"),
	}
}

// MarginRate is the margin as a fraction.
func (c Config) MarginRate() float64 {
	return c.MarginPercent / 100
}

func (c Config) EmailEnabled() bool {
	return c.SMTPHost != "" && c.BookingNotifyEmail != ""
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func NewLogger(level, format string) *logrus.Logger {
	log := logrus.New()
	if lvl, err := logrus.ParseLevel(level); err == nil {
		log.SetLevel(lvl)
	}
	if format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return f
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return i
}
