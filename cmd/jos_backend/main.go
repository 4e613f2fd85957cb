package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/gestionale-jos/jos_backend/cmd/docs"
	portssvc "github.com/gestionale-jos/jos_backend/internal/core/ports/services"
	"github.com/gestionale-jos/jos_backend/internal/core/services"
	"github.com/gestionale-jos/jos_backend/internal/handlers"
	"github.com/gestionale-jos/jos_backend/internal/middleware"
	"github.com/gestionale-jos/jos_backend/internal/notify"
	"github.com/gestionale-jos/jos_backend/internal/platform/config"
	"github.com/gestionale-jos/jos_backend/internal/repositories"
	"github.com/gestionale-jos/jos_backend/internal/utils"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 15 * time.Second

// @title JOS Backend API
// @version 1.0
// @description Cash ledger, card payments and invoices of the rotisserie.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open the configured store and apply pending migrations
	repos, closeStore, err := repositories.Open(ctx, cfg, true)
	if err != nil {
		logger.Error("Failed to open store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStore()
	logger.Info("Store ready", slog.String("backend", cfg.StoreBackend))

	// Change events: always to the in-process hub, optionally to AMQP and Telegram
	hub := notify.NewHub(notify.DefaultSubscriberBuffer)
	publishers := notify.Multi{hub}
	if cfg.AMQPURL != "" {
		amqpPublisher, err := notify.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logger.Error("Failed to connect to AMQP, events stay in process", slog.String("error", err.Error()))
		} else {
			defer amqpPublisher.Close()
			publishers = append(publishers, amqpPublisher)
			logger.Info("Publishing change events to AMQP", slog.String("exchange", cfg.AMQPExchange))
		}
	}
	if cfg.TelegramBotToken != "" {
		telegram, err := notify.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			logger.Error("Failed to connect Telegram bot, closure notices disabled", slog.String("error", err.Error()))
		} else {
			defer telegram.Close()
			publishers = append(publishers, telegram)
			logger.Info("Sending day closures to Telegram")
		}
	}

	var events portssvc.EventPublisher = publishers
	serviceContainer := services.NewServiceContainer(cfg, repos, events, hub)

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, cfg.PosthogEndpoint, cfg.Shop.Name, logger)
	defer posthogClient.Close()

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	err = r.SetTrustedProxies(nil)
	if err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer, posthogClient)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		// Requests inherit ctx so open event streams end on shutdown.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", slog.String("error", err.Error()))
		}
	}()

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
	<-shutdownDone
	logger.Info("Server stopped")
}
