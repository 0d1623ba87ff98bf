// ABOUTME: Application entrypoint wiring config, cache, services, and routes
// ABOUTME: Starts the HTTP server for the Aerospike fleet health analyzer

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/fleetops/aerospike-health-analyzer/cache"
	"github.com/fleetops/aerospike-health-analyzer/config"
	"github.com/fleetops/aerospike-health-analyzer/handlers"
	"github.com/fleetops/aerospike-health-analyzer/logger"
	"github.com/fleetops/aerospike-health-analyzer/middleware"
	"github.com/fleetops/aerospike-health-analyzer/services"
)

func main() {
	// .env is optional; real deployments set environment variables directly
	godotenv.Load()

	// Initialize structured logging
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting Aerospike Health Analyzer Backend")

	// Initialize cache
	cacheTTL := time.Duration(cfg.CacheTTL) * time.Second
	c := cache.New(cacheTTL)
	slog.Info("Cache initialized", "ttl", cacheTTL)

	// Processing collaborators
	registry := services.NewRegistry()
	extractor := services.NewArchiveExtractor(cfg.UploadDir)
	runner := services.NewAsadmRunner(cfg.AsadmBinary)

	probeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if version, err := runner.Available(probeCtx); err == nil {
		slog.Info("asadm available", "version", version)
	} else {
		slog.Warn("asadm not available, processing jobs will fail", "binary", cfg.AsadmBinary, "error", err)
	}
	cancel()

	var parser services.StructuredParser
	if cfg.ParserConfigured() {
		parser = services.NewAnthropicParser(cfg.AnthropicAPIKey, cfg.AnthropicModel)
		slog.Info("AI parser configured", "model", cfg.AnthropicModel)
	} else {
		slog.Warn("ANTHROPIC_API_KEY not set, structured parsing disabled")
	}

	processor := services.NewProcessor(
		registry,
		extractor,
		runner,
		parser,
		cfg.AsadmCommands,
		time.Duration(cfg.ProcessTimeout)*time.Second,
	)

	// Rate limiters: stricter window for uploads
	var uploadLimiter, defaultLimiter *middleware.RateLimiter
	if cfg.RateLimitEnabled {
		uploadLimiter = middleware.NewRateLimiter(cfg.RateLimitUpload, time.Minute)
		defaultLimiter = middleware.NewRateLimiter(cfg.RateLimitDefault, time.Minute)
	}

	// Register routes with middleware
	h := handlers.NewHandler(cfg, c, registry, processor, runner)
	cors := middleware.CORS(cfg.CORSAllowedOrigins)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux, func(route handlers.Route) http.HandlerFunc {
		limiter := defaultLimiter
		if route.Upload() {
			limiter = uploadLimiter
		}
		return middleware.Chain(route.Handler,
			middleware.LogRequest,
			cors,
			middleware.RateLimit(limiter, middleware.ClientIP),
		)
	})

	// Start server
	addr := ":" + cfg.Port
	slog.Info("Server listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
