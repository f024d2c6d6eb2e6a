package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"loyaltycard/internal/config"
	"loyaltycard/internal/handlers"
	"loyaltycard/internal/middleware"
	"loyaltycard/internal/repositories/interfaces"
	"loyaltycard/internal/repositories/memory"
	"loyaltycard/internal/repositories/mongodb"
	"loyaltycard/internal/services"
	"loyaltycard/pkg/auth"
	"loyaltycard/pkg/cache"
	"loyaltycard/pkg/database"
	"loyaltycard/pkg/logger"
	"loyaltycard/pkg/push"
	"loyaltycard/pkg/wallet"
	"loyaltycard/routes"

	"github.com/gin-gonic/gin"
)

type repositories struct {
	customers  interfaces.CustomerRepository
	counters   interfaces.CounterRepository
	tenants    interfaces.TenantRepository
	plans      interfaces.PlanRepository
	transactor interfaces.Transactor
	pinger     handlers.Pinger
	close      func() error
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:   logger.LogLevel(cfg.App.LogLevel),
		Format:  cfg.App.LogFormat,
		Output:  "stdout",
		AppName: cfg.App.Name,
		Version: cfg.App.Version,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := setupRepositories(ctx, cfg.Database, appLogger)
	if err != nil {
		return err
	}
	defer repos.close()

	backend, err := setupCache(cfg.Redis)
	if err != nil {
		return err
	}
	defer backend.Close()

	notifier, err := setupPush(cfg.Push.APNS, appLogger)
	if err != nil {
		return err
	}

	verifier, err := setupVerifier(ctx, cfg.Auth)
	if err != nil {
		return err
	}

	cacheService := services.NewCacheService(backend, services.LockOptions{
		TTL:      cfg.Scan.LockTTL,
		Wait:     cfg.Scan.LockWait,
		Interval: cfg.Scan.LockInterval,
	}, cfg.Redis.PlanCacheTTL, appLogger)

	wallets := wallet.NewRegistry(
		wallet.NewAppleProvider(cfg.Wallet.AppleBaseURL, cfg.Wallet.Timeout, notifier, appLogger),
		wallet.NewGoogleProvider(cfg.Wallet.AndroidBaseURL, cfg.Wallet.ClassID, cfg.Wallet.Timeout),
	)

	planService := services.NewPlanService(repos.tenants, repos.plans, cacheService, cfg.Redis.PlanCacheTTL, appLogger)
	customerService := services.NewCustomerService(repos.customers, repos.counters, planService, cacheService, cfg.App.PublicURL, appLogger)
	enrollmentService := services.NewEnrollmentService(repos.customers, repos.counters, repos.transactor, planService, wallets, appLogger)
	accrualService := services.NewAccrualService(repos.customers, cacheService, wallets, appLogger)
	messagingService := services.NewMessagingService(repos.customers, repos.counters, repos.transactor, planService, wallets, appLogger)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware(appLogger))
	router.Use(middleware.RecoveryMiddleware(appLogger))
	router.Use(middleware.CORSMiddleware(cfg.Auth.CORSAllowedOrigins))

	routes.Setup(router, &routes.Handlers{
		Enrollment: handlers.NewEnrollmentHandler(enrollmentService, planService, customerService, appLogger),
		Scan:       handlers.NewScanHandler(accrualService, appLogger),
		Customer:   handlers.NewCustomerHandler(customerService, messagingService, appLogger),
		Dashboard:  handlers.NewDashboardHandler(customerService, planService, appLogger),
		PassKit:    handlers.NewPassKitHandler(customerService, cfg.Push.APNS.PassTypeID, appLogger),
		Health: handlers.NewHealthHandler(cfg.App.Version, map[string]handlers.Pinger{
			"database": repos.pinger,
			"cache":    backend,
		}),
	}, verifier, cfg.Push.APNS.PassKitToken)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.WithField("addr", server.Addr).Info("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	appLogger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func setupRepositories(ctx context.Context, cfg *config.DatabaseConfig, log *logger.Logger) (*repositories, error) {
	if cfg.Driver == config.DatabaseDriverMemory {
		log.Warn("Using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		return &repositories{
			customers:  memory.NewCustomerRepository(store),
			counters:   memory.NewCounterRepository(store),
			tenants:    memory.NewTenantRepository(store),
			plans:      memory.NewPlanRepository(store),
			transactor: store,
			pinger:     store,
			close:      func() error { return nil },
		}, nil
	}

	db, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.URI,
		Database:       cfg.Database,
		MaxPoolSize:    cfg.MaxPoolSize,
		MinPoolSize:    cfg.MinPoolSize,
		ConnectTimeout: cfg.ConnectTimeout,
		SocketTimeout:  cfg.SocketTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := database.NewMigrator(db.Database, log).Up(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &repositories{
		customers:  mongodb.NewCustomerRepository(db.Database),
		counters:   mongodb.NewCounterRepository(db.Database),
		tenants:    mongodb.NewTenantRepository(db.Database),
		plans:      mongodb.NewPlanRepository(db.Database),
		transactor: mongodb.NewTransactor(db),
		pinger:     db,
		close:      db.Close,
	}, nil
}

type cacheBackend interface {
	services.CacheBackend
	Ping(ctx context.Context) error
	Close() error
}

func setupCache(cfg *config.RedisConfig) (cacheBackend, error) {
	if !cfg.Enabled {
		return cache.NewMemoryCache(), nil
	}

	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Host:         cfg.Host,
		Port:         cfg.Port,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		KeyPrefix:    cfg.KeyPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return redisCache, nil
}

func setupPush(cfg *config.APNSConfig, log *logger.Logger) (push.PassUpdateNotifier, error) {
	if !cfg.Enabled {
		log.Info("APNs disabled, Apple Wallet passes will not be refreshed by push")
		return push.NopNotifier{}, nil
	}

	provider, err := push.NewAPNSProvider(cfg.KeyFile, cfg.KeyID, cfg.TeamID, cfg.PassTypeID, cfg.Production)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize APNs: %w", err)
	}
	return provider, nil
}

func setupVerifier(ctx context.Context, cfg *config.AuthConfig) (auth.TenantVerifier, error) {
	if cfg.Provider == config.AuthProviderFirebase {
		verifier, err := auth.NewFirebaseVerifier(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredFile)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Firebase auth: %w", err)
		}
		return verifier, nil
	}
	return auth.NewJWTVerifier(cfg.JWTSecret, cfg.JWTIssuer), nil
}
