package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"receiptvault/internal/config"
	"receiptvault/internal/domain"
	"receiptvault/internal/handler"
	"receiptvault/internal/infra/cache"
	"receiptvault/internal/infra/gcs"
	"receiptvault/internal/infra/observability"
	"receiptvault/internal/infra/resilience"
	"receiptvault/internal/infra/supabase"
	"receiptvault/internal/infra/vision"
	"receiptvault/internal/port"
	"receiptvault/internal/service"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("image_backend", cfg.ImageBackend),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
		zap.Duration("jwt_refresh_ttl", cfg.JWTRefreshTTL),
	)

	if cfg.SupabaseURL == "" {
		logger.Fatal("SUPABASE_URL is required")
	}

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "receiptvault")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	receiptsCache := cache.New[[]domain.Receipt](cfg.CacheTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("external-apis")

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	supabaseClient := supabase.NewClient(
		httpClient,
		cfg.SupabaseURL,
		cfg.SupabaseAnonKey,
		cfg.SupabaseServiceKey,
		cb,
		resilienceCfg,
		logger,
	)

	var ocrClient port.OCRClient
	if cfg.VisionAPIKey != "" {
		ocrClient, err = vision.NewOCRClient(context.Background(), cfg.VisionAPIKey, cb, resilienceCfg)
		if err != nil {
			logger.Fatal("failed to create vision client", zap.Error(err))
		}
	} else {
		logger.Warn("VISION_API_KEY not set, scans will return empty drafts")
		ocrClient = noopOCR{}
	}

	var imageStore port.ImageStore
	switch cfg.ImageBackend {
	case "gcs":
		store, err := gcs.NewStore(context.Background(), cfg.GCSBucket, logger)
		if err != nil {
			logger.Fatal("failed to create gcs store", zap.Error(err))
		}
		defer store.Close()
		imageStore = store
		logger.Info("using GCS image backend", zap.String("bucket", cfg.GCSBucket))
	default:
		imageStore = supabase.NewStorage(supabaseClient, cfg.SupabaseBucket)
		logger.Info("using Supabase Storage image backend", zap.String("bucket", cfg.SupabaseBucket))
	}

	// --- Services ---
	authSvc := service.NewAuthService(supabaseClient, cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL, logger)
	receiptSvc := service.NewReceiptService(supabaseClient, supabaseClient, receiptsCache, metrics, logger)
	reportSvc := service.NewReportService(supabaseClient, receiptsCache, metrics, logger)
	scanSvc := service.NewScanService(ocrClient, imageStore, metrics, logger)
	profileSvc := service.NewProfileService(supabaseClient, logger)

	// --- Router ---
	router := handler.NewRouter(handler.Services{
		Auth:     authSvc,
		Receipts: receiptSvc,
		Reports:  reportSvc,
		Scan:     scanSvc,
		Profile:  profileSvc,
	}, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

// noopOCR stands in when no Vision API key is configured.
type noopOCR struct{}

func (noopOCR) DetectText(context.Context, []byte) (string, error) {
	return "", nil
}
