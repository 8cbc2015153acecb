package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"rentals-api/config"
	"rentals-api/controllers"
	"rentals-api/database"
	"rentals-api/events"
	"rentals-api/logging"
	"rentals-api/mailer"
	"rentals-api/middleware"
	"rentals-api/repositories"
	"rentals-api/routes"
	"rentals-api/services"
	"rentals-api/uploads"
	"rentals-api/utils"
	"rentals-api/validation"
)

func main() {
	cfg := config.LoadConfig()
	logger := logging.New(logging.Config{
		ServiceName: "rentals-api",
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
	})

	if err := cfg.Validate(); err != nil {
		level.Error(logger).Log("msg", "invalid configuration", "err", err)
		os.Exit(1)
	}
	if err := start(cfg, logger); err != nil {
		level.Error(logger).Log("msg", "exit", "err", err)
		os.Exit(1)
	}
}

func start(cfg *config.Config, logger log.Logger) error {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(cfg.DB)
	if err != nil {
		return err
	}
	defer database.Close(db)
	level.Info(logger).Log("msg", "database connected", "driver", cfg.DB.Driver)

	if err := database.Migrate(db); err != nil {
		return err
	}
	if err := database.Seed(db); err != nil {
		return err
	}

	publisher := newPublisher(cfg, logger)
	defer publisher.Close()

	uploader := newUploader(cfg, logger)

	cache := repositories.NewCacheRepository(cfg.MemcachedHost, cfg.HomeCacheTTL, logger)
	defer cache.Stop()

	var limiter middleware.Limiter
	if cfg.RedisURL != "" {
		client, err := middleware.NewRedisClient(context.Background(), cfg.RedisURL)
		if err != nil {
			level.Warn(logger).Log("msg", "rate limiting disabled", "err", err)
		} else {
			defer client.Close()
			limiter = middleware.NewRedisLimiter(client, cfg.RateLimitMax, cfg.RateLimitWindow)
		}
	}

	validate := validation.New()
	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)

	userRepo := repositories.NewUserRepository(db)
	verificationRepo := repositories.NewVerificationRepository(db)
	propertyRepo := repositories.NewPropertyRepository(db)
	bookingRepo := repositories.NewBookingRepository(db)
	facilityRepo := repositories.NewFacilityRepository(db)
	paymentMethodRepo := repositories.NewPaymentMethodRepository(db)
	statsRepo := repositories.NewStatsRepository(db)

	homeService := services.NewHomeService(statsRepo, cache, cfg.HomeCacheTTL, logger)
	userService := services.NewUserService(userRepo, verificationRepo, tokens, mailer.NewLogMailer(logger), uploader, homeService, validate, logger, services.UserOptions{
		OTPTTL:         cfg.OTPTTL,
		ResetTokenTTL:  cfg.ResetTokenTTL,
		UploadFolder:   cfg.CloudinaryFolder,
		LegacyNextPage: cfg.LegacyNextPage,
	})
	propertyService := services.NewPropertyService(propertyRepo, facilityRepo, publisher, uploader, homeService, validate, logger, services.PropertyOptions{
		UploadFolder:   cfg.CloudinaryFolder,
		LegacyNextPage: cfg.LegacyNextPage,
	})
	bookingService := services.NewBookingService(bookingRepo, propertyRepo, paymentMethodRepo, homeService, validate)
	facilityService := services.NewFacilityService(facilityRepo, validate)
	paymentMethodService := services.NewPaymentMethodService(paymentMethodRepo, validate)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	router := routes.NewRouter(routes.Deps{
		Users:           controllers.NewUserController(userService, propertyService, bookingService, logger),
		Properties:      controllers.NewPropertyController(propertyService, logger),
		Bookings:        controllers.NewBookingController(bookingService, logger),
		Facilities:      controllers.NewFacilityController(facilityService, logger),
		PaymentMethods:  controllers.NewPaymentMethodController(paymentMethodService, logger),
		Home:            controllers.NewHomeController(homeService, logger),
		Tokens:          tokens,
		Logger:          logger,
		AllowedOrigins:  cfg.AllowedOrigins,
		Registry:        registry,
		Limiter:         limiter,
		RateLimitWindow: cfg.RateLimitWindow,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var g run.Group
	{
		g.Add(func() error {
			level.Info(logger).Log("msg", "http server listening", "addr", server.Addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		}, func(error) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				level.Error(logger).Log("msg", "http server shutdown", "err", err)
			}
		})
	}
	{
		g.Add(run.SignalHandler(context.Background(), syscall.SIGINT, syscall.SIGTERM))
	}

	err = g.Run()
	var sig run.SignalError
	if errors.As(err, &sig) {
		level.Info(logger).Log("msg", "shutting down", "signal", sig.Signal)
		return nil
	}
	return err
}

func newPublisher(cfg *config.Config, logger log.Logger) events.Publisher {
	if cfg.RabbitMQURL == "" {
		level.Info(logger).Log("msg", "RABBITMQ_URL not set, property events disabled")
		return events.NoopPublisher{}
	}
	publisher, err := events.NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.PropertiesQueue, logger)
	if err != nil {
		level.Warn(logger).Log("msg", "property events disabled", "err", err)
		return events.NoopPublisher{}
	}
	return publisher
}

func newUploader(cfg *config.Config, logger log.Logger) uploads.Uploader {
	if !cfg.CloudinaryEnabled() {
		level.Info(logger).Log("msg", "cloudinary credentials not set, uploads disabled")
		return uploads.Disabled{}
	}
	uploader, err := uploads.NewCloudinaryUploader(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		level.Warn(logger).Log("msg", "uploads disabled", "err", err)
		return uploads.Disabled{}
	}
	return uploader
}
