package metrics

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	GenerationRequestsTotal metric.Int64Counter
	GenerationDuration      metric.Float64Histogram
	GenerationFailuresTotal metric.Int64Counter
	ItinerariesSavedTotal   metric.Int64Counter
	RegistrationsTotal      metric.Int64Counter
	DbQueryErrorsTotal      metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics creates the instruments once, from the global MeterProvider.
// Instruments created before a provider is installed are no-ops.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("go-travel-planner")
		m := &AppMetrics{}
		var errs []error
		var err error

		m.GenerationRequestsTotal, err = meter.Int64Counter("itinerary_generation_requests_total",
			metric.WithDescription("Itinerary generation requests by mode"),
			metric.WithUnit("{request}"))
		errs = append(errs, err)

		m.GenerationDuration, err = meter.Float64Histogram("itinerary_generation_duration_seconds",
			metric.WithDescription("Time spent producing an itinerary"),
			metric.WithUnit("s"))
		errs = append(errs, err)

		m.GenerationFailuresTotal, err = meter.Int64Counter("itinerary_generation_failures_total",
			metric.WithDescription("Failed generations by reason"),
			metric.WithUnit("{error}"))
		errs = append(errs, err)

		m.ItinerariesSavedTotal, err = meter.Int64Counter("itineraries_saved_total",
			metric.WithDescription("Itineraries saved to profiles"),
			metric.WithUnit("{itinerary}"))
		errs = append(errs, err)

		m.RegistrationsTotal, err = meter.Int64Counter("user_registrations_total",
			metric.WithDescription("Completed user registrations"),
			metric.WithUnit("{user}"))
		errs = append(errs, err)

		m.DbQueryErrorsTotal, err = meter.Int64Counter("db_query_errors_total",
			metric.WithDescription("Database query errors by repository operation"),
			metric.WithUnit("{error}"))
		errs = append(errs, err)

		for _, e := range errs {
			if e != nil {
				slog.Error("Metrics: failed to create instrument", slog.Any("error", e))
			}
		}
		appMetrics = m
	})
}

// Get returns the instruments, creating them on first use.
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}

// RecordDBError counts a failed repository operation.
func RecordDBError(ctx context.Context, operation string) {
	Get().DbQueryErrorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
}
