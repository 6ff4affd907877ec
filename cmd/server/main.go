package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/dharmasatrya/tripbuilder/internal/airport"
	"github.com/dharmasatrya/tripbuilder/internal/booking"
	"github.com/dharmasatrya/tripbuilder/internal/cache"
	"github.com/dharmasatrya/tripbuilder/internal/catalog"
	"github.com/dharmasatrya/tripbuilder/internal/config"
	"github.com/dharmasatrya/tripbuilder/internal/discount"
	"github.com/dharmasatrya/tripbuilder/internal/files"
	"github.com/dharmasatrya/tripbuilder/internal/handler"
	"github.com/dharmasatrya/tripbuilder/internal/itinerary"
	"github.com/dharmasatrya/tripbuilder/internal/notify"
	"github.com/dharmasatrya/tripbuilder/internal/pricing"
	"github.com/dharmasatrya/tripbuilder/internal/ratelimit"
	"github.com/dharmasatrya/tripbuilder/internal/session"
	"github.com/dharmasatrya/tripbuilder/internal/storage/memory"
	"github.com/dharmasatrya/tripbuilder/internal/storage/postgres"
	"github.com/dharmasatrya/tripbuilder/pkg/currency"
)

// repository is everything the services need from persistence.
type repository interface {
	catalog.Repository
	discount.Store
	discount.AdminStore
	booking.Repository
}

func main() {
	bootLog := logrus.New()
	cfg := config.Load(bootLog)
	log := config.NewLogger(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	repo, closeRepo := openRepository(ctx, cfg, log)
	defer closeRepo()

	if seeded, err := catalog.Seed(ctx, repo); err != nil {
		log.WithError(err).Fatal("Failed to seed catalog")
	} else if seeded {
		log.Info("Seeded starter catalog")
	}

	var (
		catalogCache cache.Cache = cache.NewNoOpCache()
		drafts       session.Store
	)
	if cfg.CacheEnabled {
		redisCfg := cache.DefaultRedisConfig()
		redisCfg.Host = cfg.RedisHost
		redisCfg.Port = cfg.RedisPort
		redisCfg.Password = cfg.RedisPassword
		redisCfg.TTL = cfg.RedisTTL

		client, err := cache.NewRedisClient(redisCfg)
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to Redis")
		}
		catalogCache = cache.NewRedisCache(client, redisCfg)
		drafts = session.NewRedisStore(client, redisCfg.Prefix, cfg.SessionTTL)
		log.WithFields(logrus.Fields{
			"host": cfg.RedisHost + ":" + cfg.RedisPort,
			"ttl":  cfg.RedisTTL,
		}).Info("Redis cache enabled")
	} else {
		drafts = session.NewMemoryStore(cfg.SessionTTL)
		log.Info("Cache disabled, drafts kept in memory")
	}
	defer catalogCache.Close()

	airports := airport.NewDirectory()
	rules := itinerary.NewRules(airports)
	currencies := currency.DefaultTable()
	if currencies.Base() != cfg.BaseCurrency {
		log.WithField("base_currency", cfg.BaseCurrency).Warn("Only USD rates are bundled, using USD as base")
	}

	catalogSvc := catalog.NewService(repo, catalogCache, log)
	resolver := discount.NewResolver(repo, log)
	engine := pricing.NewEngine(pricing.Config{
		MarginRate:   cfg.MarginRate(),
		DiscountBase: pricing.DiscountBase(cfg.DiscountBase),
	}, rules, currencies, resolver)

	blobs, err := files.NewDiskStore(cfg.UploadDir, cfg.PublicFilesURL)
	if err != nil {
		log.WithError(err).Fatal("Failed to prepare upload directory")
	}

	notifyLimiter := ratelimit.NewKeyLimiter(ratelimit.Config{RequestsPerSecond: 1, BurstSize: 5})
	var channels []notify.Channel
	if cfg.EmailEnabled() {
		channels = append(channels, notify.NewEmailChannel(notify.EmailConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPass,
			To:       cfg.BookingNotifyEmail,
		}))
	} else {
		log.Info("SMTP not configured, booking emails disabled")
	}
	dispatcher := notify.NewDispatcher(channels, notifyLimiter, log, notify.DispatcherConfig{
		WhatsAppNumber: cfg.WhatsAppNumber,
	})

	bookingSvc := booking.NewService(booking.Deps{
		Repo:      repo,
		Drafts:    drafts,
		Catalog:   catalogSvc,
		Engine:    engine,
		Discounts: resolver,
		Blobs:     blobs,
		Notifier:  dispatcher,
		Log:       log,
	})

	scheduler, err := startScheduler(cfg, catalogSvc, drafts, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to start scheduler")
	}
	defer scheduler.Stop()

	if cfg.AdminPasswordHash == "" {
		log.Warn("ADMIN_PASSWORD_HASH is empty, admin API is locked")
	}

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())

	handler.Routes{
		Public:    handler.NewPublicHandler(catalogSvc, bookingSvc, resolver, currencies, airports, log),
		Drafts:    handler.NewDraftHandler(bookingSvc, log),
		Admin:     handler.NewAdminHandler(catalogSvc, discount.NewManager(repo), bookingSvc, log),
		AdminAuth: handler.AdminAuth(cfg.AdminUser, cfg.AdminPasswordHash),
		Limiter:   ratelimit.NewKeyLimiter(ratelimit.DefaultConfig()),
		FilesDir:  blobs.Dir(),
	}.Register(e)

	go func() {
		log.WithField("port", cfg.Port).Info("Starting trip builder server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}
	dispatcher.Wait()

	log.Info("Server stopped")
}

func openRepository(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (repository, func()) {
	if cfg.DatabaseURL == "" {
		log.Info("DATABASE_URL is empty, using in-memory store")
		return memory.New(), func() {}
	}

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	repo := postgres.NewRepository(pool)
	if err := repo.Migrate(ctx); err != nil {
		log.WithError(err).Fatal("Failed to migrate database")
	}
	log.Info("Connected to PostgreSQL")
	return repo, pool.Close
}
