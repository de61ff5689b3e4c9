package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openwander/wayfind/internal/config"
	"github.com/openwander/wayfind/internal/geocoding"
	"github.com/openwander/wayfind/internal/metrics"
	"github.com/openwander/wayfind/internal/models"
	"github.com/openwander/wayfind/internal/repository"
	"github.com/openwander/wayfind/internal/routing"
	"github.com/openwander/wayfind/internal/server"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	// This allows for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load application configuration.
	cfg := config.MustLoad()

	// Set up the logger based on the environment.
	logger := setupLogger(cfg.Env)

	// Create a separate registry for metrics with exemplar
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	// Route persistence is optional; the API degrades to calculation-only
	// endpoints when no database is configured.
	var repo repository.Interface
	if cfg.Database.Host != "" {
		dtb, err := repository.NewDatabase(ctx, cfg.Database)
		if err != nil {
			log.Fatalf("Failed to connect to DB: %v", err)
		}
		defer dtb.Close()
		repo = repository.NewRepository(dtb, logger)
		logger.InfoContext(ctx, "Route persistence enabled", "host", cfg.Database.Host)
	} else {
		logger.WarnContext(ctx, "No database configured, saved routes are disabled")
	}

	// Create geocoding provider using factory pattern based on configuration.
	// This allows runtime selection between different providers (Google, Nominatim).
	providerConfig := geocoding.ProviderConfig{
		Type:      geocoding.ProviderType(cfg.Geocoding.ProviderType),
		APIKey:    cfg.Geocoding.APIKey,
		RateLimit: cfg.Geocoding.RateLimit,
		UserAgent: cfg.Geocoding.UserAgent,
		Logger:    logger,
	}

	geoProvider, err := geocoding.NewProvider(providerConfig)
	if err != nil {
		log.Fatalf("Failed to create geocoding provider: %v", err)
	}
	logger.InfoContext(ctx, "Geocoding provider initialized", "type", cfg.Geocoding.ProviderType)

	geoService := geocoding.NewService(geoProvider, appMetrics, logger)

	// Init the routing client against the configured backend.
	router := routing.NewClient(cfg.Routing.BaseURL, cfg.Routing.Timeout, logger)
	logger.InfoContext(ctx, "Routing client initialized",
		"base_url", cfg.Routing.BaseURL, "city", cfg.Routing.City, "profile", cfg.Routing.Profile)

	defaults := server.Defaults{
		City:    cfg.Routing.City,
		Profile: models.Profile(cfg.Routing.Profile),
	}
	api := server.NewServer(router, geoService, repo, defaults, logger)

	mux := http.NewServeMux()
	mux.Handle("/", api)
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	readTimeout := 5
	writeTimeout := 30
	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      mux,
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}

	go func() {
		logger.InfoContext(ctx, "Starting HTTP server", "port", cfg.Port)
		if errServe := httpServer.ListenAndServe(); errServe != nil &&
			!errors.Is(errServe, http.ErrServerClosed) {
			logger.ErrorContext(ctx, "HTTP server failed", "error", errServe)
			stop()
		}
	}()

	// Log that the application has started.
	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	// Wait for the context to be canceled (e.g., by Ctrl+C).
	<-ctx.Done()

	// Log that a shutdown signal has been received.
	logger.InfoContext(ctx, "Shutdown signal received. Stopping application...")

	shutdownTimeout := 10 * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shut down HTTP server cleanly", "error", err)
	}

	// Log graceful shutdown completion.
	logger.Info("Application stopped gracefully.")
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					return a
				},
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelInfo,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					return a
				},
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelWarn,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelError,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)

		log.Error(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}
