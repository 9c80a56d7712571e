package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	financeapp "github.com/homeshare/backend/internal/application/finance"
	"github.com/homeshare/backend/internal/domain/room"
	"github.com/homeshare/backend/internal/infrastructure/cache"
	"github.com/homeshare/backend/internal/infrastructure/config"
	"github.com/homeshare/backend/internal/infrastructure/logger"
	"github.com/homeshare/backend/internal/infrastructure/persistence"
	"github.com/homeshare/backend/internal/interfaces/http/handler"
	"github.com/homeshare/backend/internal/interfaces/http/middleware"
	"github.com/homeshare/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting homeshare backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	var redisClient *redis.Client
	if addr := cfg.Redis.Addr(); addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Warn("Redis unreachable, membership cache disabled", zap.Error(err))
			redisClient = nil
		} else {
			log.Info("Redis connected", zap.String("addr", addr))
			defer func() {
				_ = redisClient.Close()
			}()
		}
	}

	var rooms room.Repository = persistence.NewGormRoomRepository(db.DB)
	rooms = cache.NewMembershipCache(rooms, redisClient, cfg.Redis.TTL, log)

	uow := persistence.NewGormUnitOfWork(db.DB)
	billService := financeapp.NewBillService(uow, rooms)
	paymentService := financeapp.NewPaymentService(uow, rooms)
	reversalService := financeapp.NewReversalService(uow, rooms)
	queryService := financeapp.NewQueryService(uow, rooms)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	}

	engine.Use(
		middleware.RequestID(),
		middleware.RequestLogger(log),
		middleware.Recovery(log),
		middleware.CORS(cfg.HTTP.CORSAllowOrigins),
		middleware.JWTAuth(middleware.JWTConfig{
			Secret:    cfg.JWT.Secret,
			Issuer:    cfg.JWT.Issuer,
			SkipPaths: []string{"/api/v1/system/health"},
		}),
	)

	router.NewRouter(engine).
		Register(handler.NewFinanceHandler(
			billService, paymentService, reversalService, queryService,
			cfg.Debug.EndpointsEnabled)).
		Register(handler.NewUsersHandler(queryService, cfg.Debug.EndpointsEnabled)).
		Register(handler.NewSystemHandler(db, cfg.App.Name)).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}
