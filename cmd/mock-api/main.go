package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appconfig "github.com/wolfman30/medcare-portal/internal/config"
	"github.com/wolfman30/medcare-portal/internal/mockapi"
	"github.com/wolfman30/medcare-portal/pkg/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting medcare mock API",
		"env", cfg.Env,
		"port", cfg.MockAPIPort,
		"jwt", cfg.MockAPIJWTSecret != "",
	)

	srv := &http.Server{
		Addr:         ":" + cfg.MockAPIPort,
		Handler:      newHandler(cfg, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// newHandler mounts the mock backend with the process metrics next to it.
func newHandler(cfg *appconfig.Config, logger *logging.Logger) http.Handler {
	mock := mockapi.New(mockapi.Config{
		Logger:      logger,
		Collections: mockapi.DefaultCollections(),
		ChatPath:    mockapi.DefaultChatPath,
		RateLimit:   cfg.MockAPIRateLimit,
		RateBurst:   cfg.MockAPIRateBurst,
		CORSOrigins: cfg.MockAPICORSOrigins,
		JWTSecret:   cfg.MockAPIJWTSecret,
	})
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.Mount("/", mock.Handler())
	return r
}
