package config

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "DATABASE_URL", "MARGIN_PERCENT", "DISCOUNT_BASE", "SESSION_TTL", "SMTP_PORT", "BASE_CURRENCY"} {
		t.Setenv(key, "")
	}

	cfg := Load(quietLogger())

	assert.Equal(t, "8080", cfg.Port)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, 0.2, cfg.MarginRate())
	assert.Equal(t, "pre_margin", cfg.DiscountBase)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, "USD", cfg.BaseCurrency)
	assert.Equal(t, "http://localhost:8080/files", cfg.PublicFilesURL)
	assert.Equal(t, "@every 10m", cfg.CatalogRefreshSchedule)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MARGIN_PERCENT", "15")
	t.Setenv("DISCOUNT_BASE", "post_margin")
	t.Setenv("CACHE_ENABLED", "yes")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("SMTP_PORT", "not-a-number")
	t.Setenv("BASE_CURRENCY", "sar")

	cfg := Load(quietLogger())

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 0.15, cfg.MarginRate())
	assert.Equal(t, "post_margin", cfg.DiscountBase)
	assert.True(t, cfg.CacheEnabled)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, "SAR", cfg.BaseCurrency)
}

func TestEmailEnabled(t *testing.T) {
	assert.False(t, Config{SMTPHost: "smtp.test"}.EmailEnabled())
	assert.True(t, Config{SMTPHost: "smtp.test", BookingNotifyEmail: "ops@test"}.EmailEnabled())
}

func TestNewLogger(t *testing.T) {
	log := NewLogger("debug", "json")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	log = NewLogger("bogus", "")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}
