package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/autoparts-api/config"
	"github.com/kendall-kelly/autoparts-api/server"
	"github.com/kendall-kelly/autoparts-api/services"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting auto parts API server", zap.String("env", cfg.GoEnv))

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	// Auto-migrate database models
	if err := config.AutoMigrate(db); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}
	logger.Info("database migration completed successfully")

	ctx := context.Background()

	// Dashboard events are mirrored to Redis when REDIS_URL is set
	var publisher services.Publisher
	if cfg.RedisURL != "" {
		redisPublisher, err := services.NewRedisPublisher(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer func() { _ = redisPublisher.Close() }()
		publisher = redisPublisher
		logger.Info("publishing dashboard events to redis", zap.String("channel", cfg.RedisChannel))
	}
	notifier := services.NewNotifier(logger, publisher, cfg.RedisChannel)

	var uploads *services.UploadService
	if cfg.AWSS3Bucket != "" {
		s3Service, err := services.NewS3Service(ctx, cfg)
		if err != nil {
			logger.Fatal("failed to initialize S3 service", zap.Error(err))
		}
		uploads = services.NewUploadService(s3Service, logger)
	} else {
		logger.Warn("AWS_S3_BUCKET is not set, uploads are disabled")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router, err := server.NewRouter(server.App{
		Config: cfg,
		DB:     db,
		Logger: logger,
		Services: server.Services{
			Auth:             services.NewAuthService(db, services.NewSMTPMailer(cfg), cfg, logger),
			Google:           services.NewGoogleOAuthService(cfg),
			Catalog:          services.NewCatalogService(db, logger),
			Orders:           services.NewOrderService(db, notifier, logger),
			ProblematicParts: services.NewProblematicPartService(db, notifier, logger),
			Leads:            services.NewLeadService(db, services.NewMetaClient(cfg), cfg.MetaVerifyToken, notifier, logger),
			PaymentWebhooks:  services.NewPaymentWebhookService(db, logger),
			Uploads:          uploads,
			Notifier:         notifier,
		},
	})
	if err != nil {
		logger.Fatal("failed to build router", zap.Error(err))
	}

	// Start server
	addr := ":" + cfg.Port
	logger.Info("server is running", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}
