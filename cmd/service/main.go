package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kasap-service/config"
	"kasap-service/internal/cache"
	"kasap-service/internal/cleanup"
	"kasap-service/internal/database"
	"kasap-service/internal/hashing"
	"kasap-service/internal/identity"
	"kasap-service/internal/logger"
	"kasap-service/internal/producer"
	"kasap-service/internal/repository"
	"kasap-service/internal/router"
	"kasap-service/internal/service"
	"kasap-service/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// @Title KasapApp API
// @Version 1.0
// @Description Booking backend for sacrifice butchering: orders, slots and appointments
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	_ = godotenv.Load()
	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}

	defer logger.Sync()

	log := logger.L()

	cfg := config.Load(log)
	if !isDev {
		gin.SetMode(gin.ReleaseMode)
	}

	db := database.ConnectDB(&cfg.DB.Config, log)
	defer database.CloseDB(db, log)

	repos := repository.New(db)

	// Interface values stay nil unless the backend is configured.
	var (
		redisClient *cache.RedisClient
		statsCache  service.StatsCache
		limiter     identity.RateLimiter
	)
	if cfg.Redis.Enabled {
		var err error
		redisClient, err = cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
		if err != nil {
			log.Fatal("failed to create redis client", zap.Error(err))
		}
		defer redisClient.Close()
		statsCache = redisClient
		limiter = redisClient
		log.Info("Redis cache enabled")
	} else {
		log.Info("Redis cache disabled")
	}

	var (
		events service.EventBus
		mailer identity.EmailProducer
	)
	if len(cfg.Kafka.Brokers) > 0 {
		eventProducer := producer.NewEventProducer(cfg.Kafka.Brokers, cfg.Kafka.EventsTopic)
		defer eventProducer.Close()
		emailProducer := producer.NewEmailProducer(cfg.Kafka.Brokers, cfg.Kafka.EmailTopic)
		defer emailProducer.Close()
		events = eventProducer
		mailer = emailProducer
		log.Info("Kafka producers enabled", zap.Strings("brokers", cfg.Kafka.Brokers))
	} else {
		log.Info("Kafka disabled, events are not published")
	}

	hasher := hashing.NewBcrypt(0)
	tokens := token.NewHSProvider(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience)
	provider := identity.NewProvider(repos, hasher, tokens, limiter, mailer, cfg.JWT.AccessExp, log)

	authSvc := service.NewAuthService(provider, repos, log)
	orderSvc := service.NewOrderService(repos, events, statsCache, log)
	calendarSvc := service.NewCalendarService(repos, events, log)

	cleanupSvc := cleanup.NewCleanupService(db, log)
	scheduler := cleanup.NewScheduler(cleanupSvc, cleanup.Intervals{
		Slots:  cfg.Cleanup.SlotsInterval,
		Tokens: cfg.Cleanup.TokensInterval,
	}, log)

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()
	scheduler.Start(cleanupCtx)

	engine := router.Router(router.Deps{
		Auth:     authSvc,
		Orders:   orderSvc,
		Calendar: calendarSvc,
		Ready: func(ctx context.Context) error {
			if err := database.Ping(ctx, db); err != nil {
				return err
			}
			if redisClient != nil {
				return redisClient.Ping(ctx)
			}
			return nil
		},
		Log: log,
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lis, err := net.Listen("tcp", cfg.GRPCHealthAddr)
	if err != nil {
		log.Fatal("failed to listen", zap.String("addr", cfg.GRPCHealthAddr), zap.Error(err))
	}
	grpcServer := grpc.NewServer()

	healthSrv := health.NewServer()
	healthSrv.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	grpc_health_v1.RegisterHealthServer(grpcServer, healthSrv)

	reflection.Register(grpcServer)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("Starting gRPC health server", zap.String("addr", cfg.GRPCHealthAddr))
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatal("gRPC server failed", zap.Error(err))
		}
	}()

	go func() {
		log.Info("Starting HTTP server", zap.String("addr", cfg.HTTPPort))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-quit
	log.Info("Shutting down...")

	healthSrv.Shutdown()
	scheduler.Stop()
	cleanupCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error("HTTP server shutdown failed", zap.Error(err))
	}

	grpcServer.GracefulStop()
	log.Info("Servers stopped gracefully")
}
