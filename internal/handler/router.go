package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"receiptvault/internal/domain"
	"receiptvault/internal/infra/observability"
	"receiptvault/internal/service"
)

var tracer = otel.Tracer("handler")

// Services bundles everything the router needs.
type Services struct {
	Auth     *service.AuthService
	Receipts *service.ReceiptService
	Reports  *service.ReportService
	Scan     *service.ScanService
	Profile  *service.ProfileService
}

// NewRouter creates the HTTP router with all routes and middleware.
// Routes follow the API contract the receipt-tracker frontend consumes.
func NewRouter(svcs Services, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(svcs.Receipts, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// Authentication
		// =============================================
		r.Route("/auth", func(r chi.Router) {
			// Public routes
			r.Post("/register", authRegisterHandler(svcs.Auth, logger))
			r.Post("/login", authLoginHandler(svcs.Auth, logger))
			r.Post("/refresh", authRefreshHandler(svcs.Auth, logger))

			// Protected routes
			r.Group(func(r chi.Router) {
				r.Use(JWTAuthMiddleware(svcs.Auth, logger))
				r.Post("/logout", authLogoutHandler(svcs.Auth, logger))
				r.Put("/password", authChangePasswordHandler(svcs.Auth, logger))
			})
		})

		// =============================================
		// Receipts, reports, profile (protected)
		// =============================================
		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(svcs.Auth, logger))

			r.Route("/receipts", func(r chi.Router) {
				r.Get("/", listReceiptsHandler(svcs.Receipts, logger))
				r.Post("/", createReceiptHandler(svcs.Receipts, logger))
				r.Get("/summary", receiptSummaryHandler(svcs.Receipts, logger))
				r.Post("/scan", scanReceiptHandler(svcs.Scan, logger))
				r.Get("/{receiptId}", getReceiptHandler(svcs.Receipts, logger))
				r.Put("/{receiptId}", updateReceiptHandler(svcs.Receipts, logger))
				r.Delete("/{receiptId}", deleteReceiptHandler(svcs.Receipts, logger))
			})

			r.Get("/reports", getReportHandler(svcs.Reports, logger))

			r.Get("/profile", getProfileHandler(svcs.Profile, logger))
			r.Put("/profile", updateProfileHandler(svcs.Profile, logger))

			r.Get("/metrics/ocr", ocrMetricsHandler(metrics))
		})
	})

	return r
}

// ============================================================
// Operational handlers
// ============================================================

func healthzHandler(receipts *service.ReceiptService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "receiptvault-api", Status: "healthy", LatencyMs: 0, UptimePercent: 99.99, LastChecked: now},
		}

		if receipts != nil {
			start := time.Now()
			_, err := receipts.List(ctx, "health-check")
			latency := time.Since(start).Milliseconds()
			status := "healthy"
			if err != nil {
				status = "degraded"
			}
			services = append(services, domain.ServiceHealth{
				Name: "supabase", Status: status, LatencyMs: latency,
				UptimePercent: 99.9, LastChecked: now,
			})
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "unhealthy" {
				overallStatus = "unhealthy"
				break
			}
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func ocrMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetOCRSnapshot())
	}
}
