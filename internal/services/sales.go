package services

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"sales-insight/internal/errors"
	"sales-insight/internal/models"
	"sales-insight/internal/observability"
)

const sampleRows = 5

// Sales runs the validation and analytics pipeline for uploaded datasets.
// It keeps no dataset state between calls, only running counters.
type Sales struct {
	validator  *Validator
	aggregator *Aggregator
	logger     *slog.Logger

	validated     atomic.Int64
	analyzed      atomic.Int64
	rejected      atomic.Int64
	rowsProcessed atomic.Int64

	mu      sync.RWMutex
	lastRun time.Time
}

func NewSales(logger *slog.Logger) *Sales {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sales{
		validator:  NewValidator(),
		aggregator: NewAggregator(),
		logger:     logger,
	}
}

// Validate scores the dataset without aggregating it.
func (s *Sales) Validate(ctx context.Context, ds *models.Dataset) *models.ValidationReport {
	_, span := observability.StartSpan(ctx, "sales.validate")
	defer span.Finish()

	start := time.Now()
	report := s.validator.Validate(ds)

	s.validated.Add(1)
	s.rowsProcessed.Add(int64(ds.NumRows()))
	s.touch()

	span.SetTag("rows", strconv.Itoa(ds.NumRows()))
	span.SetTag("valid", strconv.FormatBool(report.Valid))

	s.logger.InfoContext(ctx, "dataset validated",
		"request_id", observability.GetRequestID(ctx),
		"rows", ds.NumRows(),
		"valid", report.Valid,
		"errors", len(report.Errors),
		"warnings", len(report.Warnings),
		"quality_score", report.QualityScore,
		"duration", time.Since(start))

	return report
}

// Analyze validates the dataset and, only when it is valid, aggregates it.
// An invalid dataset yields the validation report together with a
// validation error carrying that report.
func (s *Sales) Analyze(ctx context.Context, ds *models.Dataset) (*models.Analysis, error) {
	ctx, span := observability.StartSpan(ctx, "sales.analyze")
	defer span.Finish()

	report := s.Validate(ctx, ds)
	result := &models.Analysis{Validation: report}

	if !report.Valid {
		s.rejected.Add(1)
		err := errors.ValidationFailed("Data validation failed", report)
		span.SetError(err)
		return result, err
	}

	start := time.Now()
	analytics, err := s.aggregator.Aggregate(ds)
	if err != nil {
		span.SetError(err)
		s.logger.ErrorContext(ctx, "aggregation failed",
			"request_id", observability.GetRequestID(ctx),
			"error", err)
		return result, errors.InternalWrap(err, "Error analyzing data")
	}
	result.Analytics = analytics
	s.analyzed.Add(1)

	s.logger.InfoContext(ctx, "dataset analyzed",
		"request_id", observability.GetRequestID(ctx),
		"rows", analytics.TotalOrders,
		"total_revenue", analytics.TotalRevenue,
		"duration", time.Since(start))

	return result, nil
}

// QuickStats summarizes the shape of an upload and returns its first rows
// keyed by column name, with nulls as JSON null.
func (s *Sales) QuickStats(ds *models.Dataset, filename string, size int64) *models.QuickStats {
	n := min(sampleRows, ds.NumRows())
	sample := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		row := make(map[string]any, ds.NumColumns())
		for j, name := range ds.Columns {
			if c := ds.Cell(i, j); !c.Null {
				row[name] = c.Value
			} else {
				row[name] = nil
			}
		}
		sample = append(sample, row)
	}

	return &models.QuickStats{
		Filename:    filename,
		FileSize:    size,
		Rows:        ds.NumRows(),
		Columns:     ds.NumColumns(),
		ColumnNames: append([]string{}, ds.Columns...),
		SampleData:  sample,
	}
}

func (s *Sales) Stats() map[string]any {
	s.mu.RLock()
	lastRun := s.lastRun
	s.mu.RUnlock()

	stats := map[string]any{
		"datasets_validated": s.validated.Load(),
		"datasets_analyzed":  s.analyzed.Load(),
		"datasets_rejected":  s.rejected.Load(),
		"rows_processed":     s.rowsProcessed.Load(),
	}
	if !lastRun.IsZero() {
		stats["last_run"] = lastRun.Format(time.RFC3339)
	}
	return stats
}

func (s *Sales) touch() {
	s.mu.Lock()
	s.lastRun = time.Now()
	s.mu.Unlock()
}
