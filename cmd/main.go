package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/thidaswick/WorqHub/internal/handler"
	"github.com/thidaswick/WorqHub/internal/ratelimit"
	"github.com/thidaswick/WorqHub/internal/repository"
	"github.com/thidaswick/WorqHub/internal/service"
	"github.com/thidaswick/WorqHub/pkg/config"
	"github.com/thidaswick/WorqHub/pkg/database"
	"github.com/thidaswick/WorqHub/pkg/jwtutil"
	"github.com/thidaswick/WorqHub/pkg/logger"
	"github.com/thidaswick/WorqHub/pkg/password"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(cfg); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer func() { _ = log.Sync() }()
	log.Info("Starting WorqHub API...", zap.String("environment", cfg.Server.Env))

	// Initialize database
	db, err := database.Open(&cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("Failed to get database handle", zap.Error(err))
	}
	log.Info("Database ready")

	tokens, err := jwtutil.NewManager(jwtutil.Config{Secret: cfg.JWT.Secret, Expiration: cfg.JWT.Expiration})
	if err != nil {
		log.Fatal("Failed to initialize JWT manager", zap.Error(err))
	}
	hasher, err := password.NewHasher(cfg.Auth.BcryptCost)
	if err != nil {
		log.Fatal("Failed to initialize password hasher", zap.Error(err))
	}

	limiter, closeLimiter := loginLimiter(cfg, log)
	defer closeLimiter()

	repos, err := repository.New(db)
	if err != nil {
		log.Fatal("Failed to initialize repositories", zap.Error(err))
	}
	authService := service.NewAuthService(repos.Users, repos.Tenants, tokens, hasher, limiter, log)

	e := handler.NewServer(handler.Deps{
		Config: cfg,
		Log:    log,
		Tokens: tokens,
		Auth:   authService,
		Repos:  repos,
		DB:     sqlDB,
	})

	// Start server
	go func() {
		log.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
	if err := sqlDB.Close(); err != nil {
		log.Error("Failed to close database", zap.Error(err))
	}
}

// loginLimiter returns the redis-backed login throttle, or a no-op limiter
// when REDIS_ADDR is not set.
func loginLimiter(cfg *config.Config, log *zap.Logger) (ratelimit.Limiter, func()) {
	if cfg.Redis.Addr == "" {
		log.Warn("REDIS_ADDR not set, login throttling disabled")
		return ratelimit.Noop{}, func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("Redis unreachable, login throttle will fail open", zap.Error(err))
	}

	limiter, err := ratelimit.NewRedis(client, "worqhub:login:", cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginWindow)
	if err != nil {
		log.Fatal("Failed to initialize login throttle", zap.Error(err))
	}
	log.Info("Login throttle enabled",
		zap.Int("max_attempts", cfg.Auth.LoginMaxAttempts),
		zap.Duration("window", cfg.Auth.LoginWindow))
	return limiter, func() { _ = client.Close() }
}
