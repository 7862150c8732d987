package main

import (
	"log"

	"github.com/Pranav-6954/Carpooling/config"
	"github.com/Pranav-6954/Carpooling/internal/handler"
	"github.com/Pranav-6954/Carpooling/internal/middleware"
	"github.com/Pranav-6954/Carpooling/internal/repository"
	"github.com/Pranav-6954/Carpooling/internal/service"
	"github.com/Pranav-6954/Carpooling/pkg/database"
	"github.com/Pranav-6954/Carpooling/pkg/gateway"
	"github.com/Pranav-6954/Carpooling/pkg/logger"
	"github.com/Pranav-6954/Carpooling/pkg/maps"
	"github.com/Pranav-6954/Carpooling/pkg/rabbitmq"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	zl, err := logger.New()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	db := database.NewPostgresDB(cfg.DSN())

	publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL)
	if err != nil {
		// Notifications degrade to DB rows only; booking flow is unaffected.
		zl.Warn("rabbitmq unavailable, notifications will not be published", zap.Error(err))
	} else {
		defer publisher.Close()
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() { _ = rdb.Close() }()

	googleProvider, err := maps.NewGoogleProvider(cfg.GoogleMapsAPIKey)
	if err != nil {
		zl.Fatal("failed to create maps provider", zap.Error(err))
	}
	distance := maps.NewCachedProvider(googleProvider, rdb)

	stripeGateway := gateway.NewStripeGateway(cfg.StripeSecretKey)

	// Repositories
	offeringRepo := repository.NewOfferingRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Services
	sink := service.NewNotifier(notificationRepo, publisher, zl)
	fares := service.NewFareService(distance)
	ledger := service.NewInventoryLedger(offeringRepo, zl)
	bookingSvc := service.NewBookingService(bookingRepo, offeringRepo, paymentRepo, ledger, fares, sink, zl)
	offeringSvc := service.NewOfferingService(offeringRepo, bookingSvc, fares, sink, zl)
	paymentSvc := service.NewPaymentService(paymentRepo, bookingRepo, stripeGateway, sink, zl)

	// Echo
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			zl.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status))
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok", "service": "carpooling"})
	})

	handler.NewOfferingHandler(offeringSvc).RegisterRoutes(e)
	handler.NewBookingHandler(bookingSvc).RegisterRoutes(e)
	handler.NewPaymentHandler(paymentSvc).RegisterRoutes(e)
	handler.NewNotificationHandler(notificationRepo).RegisterRoutes(e)

	zl.Info("carpooling service starting", zap.String("port", cfg.ServerPort))
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
