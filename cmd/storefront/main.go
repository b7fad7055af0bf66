package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chandraa-ads/sthree-storefront/config"
	"github.com/chandraa-ads/sthree-storefront/internal/cart"
	shttp "github.com/chandraa-ads/sthree-storefront/internal/http"
	"github.com/chandraa-ads/sthree-storefront/internal/remote"
	"github.com/chandraa-ads/sthree-storefront/internal/session"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// .env is optional, real deployments configure through the environment
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := newLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	ctx := context.Background()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		logger.Fatal("Redis connection failed", zap.Error(err))
	}
	logger.Info("Redis ping succeeded", zap.String("addr", cfg.Redis.Addr))

	sessions := session.NewRedisStore(redisClient, cfg.Redis.SessionTTL)
	backend := remote.NewClient(cfg.Backend.BaseURL, cfg.Backend.RequestTimeout, logger)
	logger.Info("Using commerce backend", zap.String("base_url", cfg.Backend.BaseURL))

	carts := cart.NewRegistry(backend, logger)

	cartHandler := shttp.NewCartHandler(carts, backend, cfg.Server.RequestTimeout, logger)
	catalogHandler := shttp.NewCatalogHandler(backend, carts, cfg.Server.RequestTimeout, logger)
	wishlistHandler := shttp.NewWishlistHandler(backend, cfg.Server.RequestTimeout)
	reviewHandler := shttp.NewReviewHandler(backend, cfg.Server.RequestTimeout)

	router := shttp.NewRouter(
		cartHandler,
		catalogHandler,
		wishlistHandler,
		reviewHandler,
		sessions,
		cfg.Server.RequestTimeout,
		logger,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Storefront starting", zap.String("port", cfg.Server.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down storefront...")
	shutdownCtx, cancelShutdown := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("Storefront stopped")
}

func newLogger(cfg config.LoggerConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	zcfg := zap.NewProductionConfig()
	if cfg.Encoding == "console" {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}
