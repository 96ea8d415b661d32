package main

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/medconnect/clinic-platform/internal/api/router"
	"github.com/medconnect/clinic-platform/internal/appointments"
	"github.com/medconnect/clinic-platform/internal/auth"
	"github.com/medconnect/clinic-platform/internal/config"
	"github.com/medconnect/clinic-platform/internal/events"
	"github.com/medconnect/clinic-platform/internal/live"
	"github.com/medconnect/clinic-platform/internal/messages"
	"github.com/medconnect/clinic-platform/internal/notify"
	"github.com/medconnect/clinic-platform/internal/observability/metrics"
	"github.com/medconnect/clinic-platform/internal/patients"
	"github.com/medconnect/clinic-platform/internal/settings"
	"github.com/medconnect/clinic-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	if cfg.JWTSecret == "" {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("database unreachable", "error", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		redisClient = redis.NewClient(opts)
		defer func() { _ = redisClient.Close() }()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Error("redis unreachable, settings cache disabled", "error", err)
			redisClient = nil
		}
	}

	m := metrics.NewClinicMetrics(nil)
	outbox := events.NewOutboxStore(pool)
	hub := live.NewHub(logger.WithComponent("live"))

	sender := buildSender(ctx, cfg, logger)

	settingsRepo := settings.NewCachedRepository(
		settings.NewPostgresRepository(pool, outbox),
		redisClient,
		cfg.SettingsTTL,
		logger.WithComponent("settings"),
	)
	patientRepo := patients.NewPostgresRepository(pool, outbox)
	appointmentRepo := appointments.NewPostgresRepository(pool, outbox)
	messageRepo := messages.NewPostgresRepository(pool, outbox)
	authSvc := auth.NewService(auth.NewPostgresRepository(pool), settingsRepo, auth.Config{
		JWTSecret:   cfg.JWTSecret,
		TokenTTL:    cfg.TokenTTL,
		BcryptCost:  cfg.BcryptCost,
		AllowSignup: cfg.AllowSignup,
	}, logger.WithComponent("auth"))

	deliverer := events.NewDeliverer(outbox, hub, logger.WithComponent("outbox")).
		WithBatchSize(int32(cfg.OutboxBatchSize)).
		WithInterval(cfg.OutboxPollInterval).
		WithMetrics(m)
	go deliverer.Start(ctx)

	handler := router.New(router.Config{
		Logger:             logger,
		Metrics:            m,
		JWTSecret:          cfg.JWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		PortalRateLimit:    cfg.PortalRateLimit,
		PortalRateBurst:    cfg.PortalRateBurst,
		Auth:               auth.NewHandler(authSvc, logger.WithComponent("auth")),
		Appointments:       appointments.NewHandler(appointmentRepo, patientRepo, sender, m, logger.WithComponent("appointments")),
		Patients:           patients.NewHandler(patientRepo, logger.WithComponent("patients")),
		Messages:           messages.NewHandler(messageRepo, m, logger.WithComponent("messages")),
		Settings:           settings.NewHandler(settingsRepo, logger.WithComponent("settings")),
		Live:               live.NewHandler(hub, logger.WithComponent("live")),
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	logger.Info("server stopped")
}

// buildSender picks the configured email provider, falling back to the stub
// when the provider has no credentials.
func buildSender(ctx context.Context, cfg *config.Config, logger *logging.Logger) notify.EmailSender {
	log := logger.WithComponent("notify")
	switch cfg.EmailProvider {
	case "sendgrid":
		if s := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, log); s != nil {
			return s
		}
		log.Error("sendgrid selected but SENDGRID_API_KEY is empty, using stub sender")
	case "ses":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			log.Error("failed to load AWS config, using stub sender", "error", err)
			break
		}
		return notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, log)
	}
	return notify.NewStubEmailSender(log)
}
