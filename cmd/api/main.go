package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jwebster45206/book-engine/internal/config"
	"github.com/jwebster45206/book-engine/internal/handlers"
	"github.com/jwebster45206/book-engine/internal/logger"
	"github.com/jwebster45206/book-engine/internal/middleware"
	"github.com/jwebster45206/book-engine/internal/services"
	"github.com/jwebster45206/book-engine/pkg/knowledge"
	"github.com/jwebster45206/book-engine/pkg/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Book Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"generator", cfg.Generator,
		"storage", cfg.Storage,
		"model_name", cfg.ModelName)

	var generator session.Generator
	switch strings.ToLower(cfg.Generator) {
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			log.Error("Anthropic API key is required when using anthropic provider")
			os.Exit(1)
		}
		generator = services.NewAnthropicGenerator(cfg.AnthropicAPIKey, cfg.ModelName, log)
		log.Info("Using Anthropic narrative generator")
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			log.Error("OpenAI API key is required when using openai provider")
			os.Exit(1)
		}
		generator = services.NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.ModelName, cfg.OpenAIBaseURL, log)
		log.Info("Using OpenAI narrative generator")
	case "template":
		generator = services.NewTemplateGenerator(log)
		log.Info("Using templated narrative generator")
	default:
		log.Error("Invalid generator provider specified", "provider", cfg.Generator, "supported", []string{"anthropic", "openai", "template"})
		os.Exit(1)
	}
	generator = services.NewFilteredGenerator(generator, cfg.ContentRating)

	var storage services.Storage
	switch strings.ToLower(cfg.Storage) {
	case "redis":
		redisStorage := services.NewRedisStorage(cfg.RedisURL, cfg.SessionTTL, log)
		waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Minute)
		if err := redisStorage.WaitForConnection(waitCtx); err != nil {
			waitCancel()
			log.Error("Failed to connect to storage", "error", err)
			os.Exit(1)
		}
		waitCancel()
		storage = redisStorage
	case "sqlite":
		sqliteStorage, err := services.NewSqliteStorage(cfg.SqlitePath, log)
		if err != nil {
			log.Error("Failed to open storage", "error", err)
			os.Exit(1)
		}
		storage = sqliteStorage
	case "memory":
		storage = services.NewMemoryStorage()
	default:
		log.Error("Invalid storage backend specified", "backend", cfg.Storage, "supported", []string{"memory", "redis", "sqlite"})
		os.Exit(1)
	}
	log.Info("Storage ready", "backend", cfg.Storage)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(storage, log)
	mux.Handle("/health", healthHandler)
	mux.Handle("/metrics", promhttp.Handler())

	bookHandler := handlers.NewBookHandler(knowledge.NewEngine(nil), storage, log)
	mux.Handle("/v1/books", bookHandler)
	mux.Handle("/v1/books/", bookHandler)

	sessionHandler := handlers.NewSessionHandler(storage, generator, cfg.GeneratorTimeout, log)
	mux.Handle("/v1/sessions", sessionHandler)
	mux.Handle("/v1/sessions/", sessionHandler)

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	if err := storage.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}
