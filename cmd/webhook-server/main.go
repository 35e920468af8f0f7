package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httphandler "github.com/AratKruglik/wayforpay-go/internal/adapters/http"
	"github.com/AratKruglik/wayforpay-go/internal/adapters/messaging/kafka"
	"github.com/AratKruglik/wayforpay-go/internal/adapters/messaging/mock"
	"github.com/AratKruglik/wayforpay-go/internal/app"
	"github.com/AratKruglik/wayforpay-go/internal/config"
	"github.com/AratKruglik/wayforpay-go/internal/core/ports"
	"github.com/AratKruglik/wayforpay-go/internal/observability"
)

func main() {
	fallbackLogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fallbackLogger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.SetupLogger(cfg.App.Env)
	logger.Info("webhook server starting", "env", cfg.App.Env, "port", cfg.Server.Port)

	if err := cfg.WayForPay.Validate(); err != nil {
		logger.Error("invalid merchant configuration", "error", err)
		os.Exit(1)
	}

	var dispatcher ports.CallbackDispatcher
	if cfg.Kafka.Enabled {
		kafkaDispatcher, err := kafka.NewDispatcher([]string{cfg.Kafka.BootstrapServers}, cfg.Kafka.Topic, logger)
		if err != nil {
			logger.Error("failed to create kafka dispatcher", "error", err)
			os.Exit(1)
		}
		defer kafkaDispatcher.Close()
		dispatcher = kafkaDispatcher
		logger.Info("kafka dispatcher created", "topic", cfg.Kafka.Topic)
	} else {
		dispatcher = mock.NewDispatcher(logger)
		logger.Info("kafka disabled, callbacks will only be logged")
	}

	gateway := app.NewService(cfg.WayForPay, dispatcher, logger)
	webhookHandler := httphandler.NewWebhookHandler(gateway, logger)

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(observability.NewRequestLogger(logger))
	router.Use(observability.NewMetricsMiddleware())

	router.Post("/wayforpay/webhook", webhookHandler.HandleCallback)
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()
	logger.Info("webhook server listening", "addr", server.Addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	logger.Info("server stopped")
}
