package handler

import (
	"errors"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"receiptvault/internal/domain"
	"receiptvault/internal/service"
)

var monthKeyPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// parseReportFilter reads the month/from/to/category query parameters
// shared by the list and report endpoints.
func parseReportFilter(q url.Values) (domain.ReportFilter, error) {
	filter := domain.ReportFilter{
		Month:    q.Get("month"),
		Category: q.Get("category"),
	}
	if filter.Month != "" && !monthKeyPattern.MatchString(filter.Month) {
		return filter, errors.New("month must be formatted YYYY-MM")
	}

	if from := q.Get("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return filter, errors.New("from must be formatted YYYY-MM-DD")
		}
		filter.From = t
	}
	if to := q.Get("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return filter, errors.New("to must be formatted YYYY-MM-DD")
		}
		filter.To = t
	}

	return filter, nil
}

// ============================================================
// Reports — GET /v1/reports
// ============================================================

// getReportHandler builds the chart-ready report. Query parameters:
// month (YYYY-MM), from/to (YYYY-MM-DD, both required to apply), category.
// A month selection takes precedence over the custom range.
func getReportHandler(svc *service.ReportService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/reports")
		defer span.End()

		filter, err := parseReportFilter(r.URL.Query())
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		userID := UserIDFromContext(ctx)
		span.SetAttributes(attribute.String("user.id", userID))

		report, err := svc.Build(ctx, userID, filter)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, report)
	}
}
