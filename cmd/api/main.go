package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lamitex/lamitex-crm/cmd/mainconfig"
	"github.com/lamitex/lamitex-crm/internal/api/router"
	"github.com/lamitex/lamitex-crm/internal/app/bootstrap"
	"github.com/lamitex/lamitex-crm/internal/chat"
	appconfig "github.com/lamitex/lamitex-crm/internal/config"
	"github.com/lamitex/lamitex-crm/internal/conversation"
	"github.com/lamitex/lamitex-crm/internal/dashboard"
	httpmiddleware "github.com/lamitex/lamitex-crm/internal/http/middleware"
	"github.com/lamitex/lamitex-crm/internal/leads"
	"github.com/lamitex/lamitex-crm/internal/navigation"
	"github.com/lamitex/lamitex-crm/internal/observability/metrics"
	"github.com/lamitex/lamitex-crm/internal/pipeline"
	"github.com/lamitex/lamitex-crm/internal/prospecting"
	"github.com/lamitex/lamitex-crm/pkg/logging"
)

func main() {
	// Load .env file when present
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting lamitex-crm API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"degraded", !cfg.HasAPIKey(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metricsHandler, crmMetrics := setupMetrics()

	chatClient, closeChat, err := setupChatClient(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize chat client", "error", err)
		os.Exit(1)
	}
	defer closeChat()

	registry := bootstrap.BuildRegistry(
		cfg,
		bootstrap.BuildSearcher(cfg, logger.Component("prospecting")),
		bootstrap.NewSenderFactory(chatClient, cfg, logger.Component("chat"), crmMetrics),
		crmMetrics,
		logger,
	)
	defer registry.Close()

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		defer redisClient.Close()
	}
	limiter, limiterBackend := bootstrap.BuildRateLimiter(cfg, redisClient, logger)
	defer httpmiddleware.CloseLimiter(limiter)

	r := router.New(&router.Config{
		Logger:             logger,
		NavigationHandler:  navigation.NewHandler(registry, logger),
		LeadsHandler:       leads.NewHandler(registry.Leads, logger),
		PipelineHandler:    pipeline.NewHandler(registry.Board, logger),
		ProspectingHandler: prospecting.NewHandler(registry.Prospecting, logger),
		ChatHandler:        chat.NewHandler(registry.Chat, logger),
		DashboardHandler:   dashboard.NewHandler(registry.Leads, logger),
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigin,
		Limiter:            limiter,
		LimiterBackend:     limiterBackend,
		Metrics:            crmMetrics,
	})

	// Create HTTP server. WriteTimeout stays unset for the chat websocket.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()
	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// setupMetrics registers the CRM collectors on a dedicated registry.
func setupMetrics() (http.Handler, *metrics.CRMMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewCRMMetrics(reg)
}

// setupChatClient builds the Gemini chat client, backed by Bedrock when a
// Bedrock model is configured.
func setupChatClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (conversation.LLMClient, func(), error) {
	var fallback conversation.LLMClient
	if cfg.HasAPIKey() && cfg.BedrockModelID != "" {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Warn("failed to load AWS config; continuing without bedrock fallback", "error", err)
		} else {
			fallback = bootstrap.BuildBedrockFallback(awsCfg, cfg, logger)
		}
	}
	return bootstrap.BuildChatClient(ctx, cfg, fallback, logger)
}
