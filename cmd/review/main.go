package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/fraudreview/internal/review/application"
	"github.com/wyfcoding/fraudreview/internal/review/domain"
	"github.com/wyfcoding/fraudreview/internal/review/infrastructure/messaging"
	"github.com/wyfcoding/fraudreview/internal/review/infrastructure/persistence/mysql"
	reviewhttp "github.com/wyfcoding/fraudreview/internal/review/interfaces/http"
	"github.com/wyfcoding/fraudreview/pkg/cache"
	"github.com/wyfcoding/fraudreview/pkg/config"
	"github.com/wyfcoding/fraudreview/pkg/db"
	"github.com/wyfcoding/fraudreview/pkg/logger"
	"github.com/wyfcoding/fraudreview/pkg/metrics"
	"github.com/wyfcoding/fraudreview/pkg/middleware"
	"github.com/wyfcoding/fraudreview/pkg/mq"
)

func main() {
	// 1. 加载配置
	configPath := config.GetEnv("APP_CONFIG", "configs/review/config.toml")
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	if err := logger.Init(cfg.Logger); err != nil {
		fmt.Printf("failed to init logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// 3. 初始化指标
	m := metrics.New(cfg.ServiceName)

	// 4. 初始化数据库
	database, err := db.Init(db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to connect to database", "error", err)
	}
	defer database.Close()

	// 5. 自动迁移
	if err := database.AutoMigrate(
		&domain.Client{},
		&domain.Analyst{},
		&domain.SaqueReview{},
		&domain.DepositoReview{},
		&domain.AuditEntry{},
		&domain.FraudReport{},
	); err != nil {
		logger.Fatal(ctx, "failed to migrate database", "error", err)
	}

	// 6. 初始化缓存；连不上不致命，降级为直接读库
	var cacheClient cache.Cache
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedis(cache.RedisConfig{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			MaxPoolSize:  cfg.Redis.MaxPoolSize,
			ConnTimeout:  cfg.Redis.ConnTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			logger.Warn(ctx, "Redis unavailable, running without cache", "error", err)
			cacheClient = cache.NewNoop()
		} else {
			cacheClient = redisCache
			defer redisCache.Close()
		}
	} else {
		cacheClient = cache.NewNoop()
	}

	// 7. 初始化事件发布
	publisher := messaging.NewNoopPublisher()
	if cfg.Kafka.Enabled {
		producer, err := mq.NewProducer(mq.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			MaxRetries:   cfg.Kafka.MaxRetries,
			RetryBackoff: cfg.Kafka.RetryBackoff,
		})
		if err != nil {
			logger.Fatal(ctx, "failed to create kafka producer", "error", err)
		}
		defer producer.Close()
		publisher = messaging.NewKafkaPublisher(producer)
	}

	// 8. 依赖注入
	app := application.NewService(
		mysql.NewGormReviewRepository(database.DB),
		mysql.NewGormClientRepository(database.DB),
		mysql.NewGormAnalystRepository(database.DB),
		mysql.NewGormAuditRepository(database.DB),
		mysql.NewGormFraudRepository(database.DB),
		cacheClient,
		m,
		publisher,
		application.Config{
			LastReviewTTL: time.Duration(cfg.Review.LastReviewTTL) * time.Second,
			StatusTTL:     time.Duration(cfg.Review.StatusTTL) * time.Second,
			AuditListTTL:  time.Duration(cfg.Review.AuditListTTL) * time.Second,
		},
	)
	handler := reviewhttp.NewReviewHandler(app)

	// 9. 启动 HTTP 服务
	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.GinRecovery(), middleware.GinLogging(), middleware.GinMetrics(m))
	handler.RegisterRoutes(router)
	if cfg.Metrics.Enabled {
		router.GET(cfg.Metrics.Path, m.Handler())
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info(ctx, "HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "failed to serve", "error", err)
		}
	}()

	// 10. 优雅关停
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "server shutdown failed", "error", err)
	}
	logger.Info(ctx, "server stopped")
}
