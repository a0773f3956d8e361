// Package main provides the API server entry point for the contact sync service.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/contact-sync/internal/api"
	"github.com/contact-sync/internal/config"
	"github.com/contact-sync/internal/delivery"
	"github.com/contact-sync/internal/importer"
	"github.com/contact-sync/internal/intercom"
	"github.com/contact-sync/internal/logging"
	"github.com/contact-sync/internal/service"
	"github.com/contact-sync/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize structured logging
	logLevel := logging.ParseLogLevel(cfg.Logging.Level)
	logFormat := logging.ParseLogFormat(cfg.Logging.Format)
	logging.InitGlobalLogger(logLevel, logFormat)

	logger := logging.GetGlobalLogger()
	logger.WithFields(map[string]interface{}{
		"level":  cfg.Logging.Level,
		"format": cfg.Logging.Format,
	}).Info("Structured logging initialized")

	// Connect to Postgres
	postgres, err := storage.NewPostgresDB(&cfg.Database.Postgres)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Postgres")
	}
	defer postgres.Close()

	// Connect to Redis
	redis, err := storage.NewRedisCache(&cfg.Database.Redis)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redis.Close()

	logger.Info("Database connections established")

	// Initialize repositories
	contactRepo := storage.NewContactRepository(postgres)
	checkpointRepo := storage.NewCheckpointRepository(postgres)
	broadcastRepo := storage.NewBroadcastRepository(postgres)

	// Initialize upstream CRM client
	intercomClient := intercom.NewClient(cfg.Intercom.APIToken, cfg.Intercom.BaseURL, cfg.Intercom.RequestsPerSecond)

	// Initialize email delivery provider
	var provider delivery.Provider
	mailgunProvider, err := delivery.NewMailgunProvider(&cfg.Mailgun)
	if err != nil {
		logger.WithError(err).Warn("Email delivery disabled: provider not configured")
	} else {
		provider = mailgunProvider
	}

	// Initialize services
	imp, err := importer.New("intercom", intercomClient, contactRepo, checkpointRepo, cfg.Import.PageSize)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize importer")
	}

	statsService := service.NewStatsService(contactRepo, broadcastRepo, redis, cfg.Cache.StatsTTL)
	audienceService := service.NewAudienceService(contactRepo, provider)
	broadcastService := service.NewBroadcastService(broadcastRepo, provider, cfg.Mailgun.DefaultFrom)
	suppressionService := service.NewSuppressionService(contactRepo, statsService)

	logger.Info("Services initialized")

	// Create server configuration. The import endpoint blocks for the
	// whole run, hence the long write timeout.
	serverConfig := &api.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    30 * time.Minute,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		Auth: api.AuthConfig{
			JWTSecret: cfg.Auth.JWTSecret,
			Allow: func(email string) bool {
				return email == cfg.Auth.OperatorEmail
			},
		},
	}

	server := api.NewServer(serverConfig, imp, audienceService, broadcastService, statsService, suppressionService)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	logger.WithFields(map[string]interface{}{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Server started successfully")

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), serverConfig.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("Server forced to shutdown")
	}

	logger.Info("Server exited")
}
