package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fixgo-platform/service-booking/internal/application"
	"github.com/fixgo-platform/service-booking/internal/config"
	bookingEvents "github.com/fixgo-platform/service-booking/internal/events"
	"github.com/fixgo-platform/service-booking/internal/gateway"
	"github.com/fixgo-platform/service-booking/internal/handler"
	"github.com/fixgo-platform/service-booking/internal/platform/database"
	"github.com/fixgo-platform/service-booking/internal/platform/health"
	"github.com/fixgo-platform/service-booking/internal/platform/kafka"
	"github.com/fixgo-platform/service-booking/internal/platform/logger"
	"github.com/fixgo-platform/service-booking/internal/platform/middleware"
	"github.com/fixgo-platform/service-booking/internal/repository"
	"github.com/fixgo-platform/service-booking/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewNamed(cfg.AppEnv, "service-booking", logger.Options{LogPath: cfg.LogPath})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-booking",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.AppEnv),
	)

	db, err := database.Connect(cfg.DBConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.RunMigrations(cfg.DBConfig.DatabaseURL(), "migrations", log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	refundGateway, err := gateway.NewStripeGateway(gateway.StripeConfig{
		SecretKey:         cfg.GatewayConfig.StripeSecretKey,
		APIURL:            cfg.GatewayConfig.APIURL,
		Timeout:           cfg.GatewayConfig.Timeout,
		MaxNetworkRetries: cfg.GatewayConfig.MaxRetries,
	}, log)
	if err != nil {
		log.Fatal("failed to create payment gateway", zap.Error(err))
	}

	bookingRepo := repository.NewGormBookingRepository(db)
	photoRepo := repository.NewGormPhotoRepository(db)
	vehicleRepo := repository.NewGormVehicleRepository(db)
	refRepo := repository.NewGormReferenceRepository(db)

	bookingService := application.NewBookingService(application.BookingServiceDeps{
		Bookings:       bookingRepo,
		Photos:         photoRepo,
		Users:          repository.NewGormUserRepository(db),
		Vehicles:       vehicleRepo,
		Refs:           refRepo,
		UoW:            repository.NewGormUnitOfWork(db),
		Gateway:        refundGateway,
		Publisher:      kafkaProducer,
		Logger:         log,
		GatewayTimeout: cfg.GatewayConfig.Timeout,
	})
	photoService := application.NewPhotoService(photoRepo, bookingRepo, log)
	vehicleService := application.NewVehicleService(vehicleRepo, refRepo, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groupID := cfg.KafkaConfig.GroupPrefix + "booking-service"
	paymentConsumer := bookingEvents.NewPaymentEventConsumer(
		cfg.KafkaConfig.Brokers,
		groupID,
		bookingService,
		log,
	)
	defer func() { _ = paymentConsumer.Close() }()

	go func() {
		log.Info("starting payment event consumer")
		if err := paymentConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("payment event consumer error", zap.Error(err))
		}
	}()

	reconciler := scheduler.NewRefundReconciler(
		bookingService,
		cfg.ReconcilerConfig.Interval,
		cfg.ReconcilerConfig.After,
		log,
	)
	go reconciler.Start(ctx)

	if err := handler.RegisterValidators(); err != nil {
		log.Fatal("failed to register request validators", zap.Error(err))
	}

	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	health.NewHandler(db, "service-booking").Register(router)

	handler.NewBookingHandler(bookingService).RegisterRoutes(&router.RouterGroup)
	handler.NewPhotoHandler(photoService).RegisterRoutes(&router.RouterGroup)
	handler.NewVehicleHandler(vehicleService).RegisterRoutes(&router.RouterGroup)
	handler.NewAdminBookingHandler(bookingService).RegisterRoutes(&router.RouterGroup)

	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-booking...")

	// Stops the consumer and the reconciler.
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-booking stopped")
}
