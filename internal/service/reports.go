package service

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"receiptvault/internal/domain"
	"receiptvault/internal/infra/observability"
	"receiptvault/internal/port"
)

// ReportService builds the chart-ready report for a user's receipt set.
// It shares the receipts cache with ReceiptService, so a report right
// after a write sees the fresh data.
type ReportService struct {
	store   port.ReceiptStore
	cache   port.Cache[[]domain.Receipt]
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewReportService creates the report service.
func NewReportService(
	store port.ReceiptStore,
	cache port.Cache[[]domain.Receipt],
	metrics *observability.Metrics,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		store:   store,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}
}

// Build fetches the user's receipts, aggregates them under the filter and
// derives the bar series. The fetched set is treated as an immutable
// snapshot for the whole pass.
func (s *ReportService) Build(ctx context.Context, userID string, filter domain.ReportFilter) (*domain.Report, error) {
	ctx, span := tracer.Start(ctx, "Reports.Build")
	defer span.End()
	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.String("filter.month", filter.Month),
		attribute.String("filter.category", filter.Category),
	)

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("report_build", time.Since(start))
	}()

	cacheKey := fmt.Sprintf("receipts:%s", userID)
	receipts, ok := s.cache.Get(cacheKey)
	if ok {
		s.metrics.IncrCacheHit("receipts")
	} else {
		s.metrics.IncrCacheMiss("receipts")

		var err error
		receipts, err = s.store.ListReceipts(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("receipts fetch: %w", err)
		}
		s.cache.Set(cacheKey, receipts)
	}

	result := Aggregate(receipts, filter)
	labels, series := BuildCategorySeries(result.CategoryTotals)

	return &domain.Report{
		AggregateResult: result,
		CategoryLabels:  labels,
		BarSeries:       series,
	}, nil
}
