package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/authclient"
	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/db"
	"github.com/Skotchmaster/storefront/internal/draft"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/middleware/auth"
	loggingmw "github.com/Skotchmaster/storefront/internal/middleware/logging"
	metricsmw "github.com/Skotchmaster/storefront/internal/middleware/metrics"
	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/service"
)

func main() {
	cfg := config.Load()
	cfg.Validate()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	gdb, err := db.Open(openCtx, cfg.DBDriver, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}

	r := &repo.GormRepo{DB: gdb}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		producer := events.NewProducer(cfg.KafkaBrokers)
		defer producer.Close()
		publisher = producer
	}

	catalog := &service.CatalogService{Repo: r, Events: publisher}
	if cfg.ESURL != "" {
		esCtx, esCancel := context.WithTimeout(ctx, 5*time.Second)
		index, err := search.NewClient(esCtx, search.Config{
			URL:      cfg.ESURL,
			User:     cfg.ESUser,
			Password: cfg.ESPassword,
			Index:    cfg.ESIndex,
		})
		esCancel()
		if err != nil {
			logger.Warn("search_index_unavailable", "error", err)
		} else {
			catalog.Index = index
		}
	}

	drafts := draftStore(ctx, cfg, logger)

	carts := &service.CartService{Repo: r, Events: publisher}
	checkout := &service.CheckoutService{
		Carts:   carts,
		Repo:    r,
		Drafts:  drafts,
		Gateway: payment.StubGateway{},
		Events:  publisher,
	}
	orders := &service.OrderService{Repo: r, Events: publisher}

	var refresher auth.Refresher
	if cfg.AuthURL != "" {
		refresher = authclient.NewClient(cfg.AuthURL)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(metricsmw.Metrics)

	httpserver.Register(e, &httpserver.Deps{
		Catalog:       &httpserver.CatalogHTTP{Svc: catalog},
		Cart:          &httpserver.CartHTTP{Svc: carts},
		Checkout:      &httpserver.CheckoutHTTP{Svc: checkout},
		Orders:        &httpserver.OrderHTTP{Svc: orders},
		JWTSecret:     cfg.JWTSecret,
		AuthClient:    refresher,
		SecureCookies: cfg.CookieSecure,
		SessionTTL:    cfg.DraftTTL,
		Ready:         ping(gdb),
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("storefront listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	db.Close(gdb)

	logger.Info("storefront stopped")
}

// draftStore prefers Redis so drafts survive restarts and are shared between replicas.
func draftStore(ctx context.Context, cfg config.Config, logger *slog.Logger) draft.Store {
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		err := client.Ping(pingCtx).Err()
		if err == nil {
			return draft.NewRedisStore(client, cfg.DraftTTL)
		}
		logger.Warn("redis_unavailable", "addr", cfg.RedisAddr, "error", err)
		_ = client.Close()
	}

	mem := draft.NewMemoryStore(cfg.DraftTTL)
	go mem.Run(ctx, time.Minute)
	return mem
}

func ping(gdb *gorm.DB) func(context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := gdb.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
