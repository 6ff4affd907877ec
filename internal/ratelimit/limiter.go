package ratelimit

import (
	"context"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/dharmasatrya/tripbuilder/internal/models"
)

// KeyLimiter hands out one token bucket per key. Keys without an explicit
// limit get the defaults on first use.
type KeyLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	defaults Config
}

type Config struct {
	RequestsPerSecond float64
	BurstSize         int
}

func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 5,
		BurstSize:         10,
	}
}

func NewKeyLimiter(config Config) *KeyLimiter {
	return &KeyLimiter{
		limiters: make(map[string]*rate.Limiter),
		defaults: config,
	}
}

func (k *KeyLimiter) GetLimiter(key string) *rate.Limiter {
	k.mu.RLock()
	limiter, exists := k.limiters[key]
	k.mu.RUnlock()

	if exists {
		return limiter
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if limiter, exists = k.limiters[key]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(rate.Limit(k.defaults.RequestsPerSecond), k.defaults.BurstSize)
	k.limiters[key] = limiter
	return limiter
}

func (k *KeyLimiter) SetLimit(key string, rps float64, burst int) {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.limiters[key] = rate.NewLimiter(rate.Limit(rps), burst)
}

func (k *KeyLimiter) Wait(ctx context.Context, key string) error {
	return k.GetLimiter(key).Wait(ctx)
}

func (k *KeyLimiter) Allow(key string) bool {
	return k.GetLimiter(key).Allow()
}

// PerIP rejects requests with 429 once the caller's address runs out of
// tokens.
func PerIP(k *KeyLimiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !k.Allow(c.RealIP()) {
				return c.JSON(http.StatusTooManyRequests, models.ErrorResponse{
					Error:   "rate_limited",
					Message: "Too many requests, slow down",
					Code:    http.StatusTooManyRequests,
				})
			}
			return next(c)
		}
	}
}
