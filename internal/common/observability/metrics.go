package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability records worker outcomes through OpenTelemetry. New exports
// them on the default Prometheus registry next to the promauto metrics.
type Observability struct {
	provider *metric.MeterProvider

	jobs        otelmetric.Int64Counter
	jobDuration otelmetric.Float64Histogram
	saves       otelmetric.Int64Counter
	searchTerms otelmetric.Int64Counter
	reports     otelmetric.Int64Counter
}

func New(serviceName string) (*Observability, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, err
	}
	o, err := NewWithReader(serviceName, exporter)
	if err != nil {
		return nil, err
	}
	otel.SetMeterProvider(o.provider)
	return o, nil
}

// NewWithReader builds the instruments over an explicit reader.
func NewWithReader(serviceName string, reader metric.Reader) (*Observability, error) {
	provider := metric.NewMeterProvider(metric.WithReader(reader))
	meter := provider.Meter(serviceName)
	o := &Observability{provider: provider}

	var err error
	if o.jobs, err = meter.Int64Counter("foodlens.jobs",
		otelmetric.WithDescription("Jobs handled, by task type and status")); err != nil {
		return nil, err
	}
	if o.jobDuration, err = meter.Float64Histogram("foodlens.job.duration",
		otelmetric.WithDescription("Job handling time"),
		otelmetric.WithUnit("ms")); err != nil {
		return nil, err
	}
	if o.saves, err = meter.Int64Counter("foodlens.profile.saves",
		otelmetric.WithDescription("Profile saves, by outcome and whether enrichment ran")); err != nil {
		return nil, err
	}
	if o.searchTerms, err = meter.Int64Counter("foodlens.enrichment.terms",
		otelmetric.WithDescription("Condition terms searched during enrichment, by result")); err != nil {
		return nil, err
	}
	if o.reports, err = meter.Int64Counter("foodlens.reports",
		otelmetric.WithDescription("Analysis report emails, by delivery result")); err != nil {
		return nil, err
	}
	return o, nil
}

// Noop returns an instance whose recorders do nothing.
func Noop() *Observability {
	return &Observability{}
}

func (o *Observability) RecordJob(ctx context.Context, taskType, status string, duration time.Duration) {
	if o.jobs == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("task_type", taskType),
		attribute.String("status", status),
	)
	o.jobs.Add(ctx, 1, attrs)
	o.jobDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
}

// RecordProfileSave counts one save. total and successful are the enrichment
// term counters and are ignored when enrichment did not run.
func (o *Observability) RecordProfileSave(ctx context.Context, outcome string, enriched bool, total, successful int) {
	if o.saves == nil {
		return
	}
	o.saves.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.Bool("enriched", enriched),
	))
	if !enriched {
		return
	}
	o.searchTerms.Add(ctx, int64(successful), otelmetric.WithAttributes(attribute.String("result", "success")))
	if failed := total - successful; failed > 0 {
		o.searchTerms.Add(ctx, int64(failed), otelmetric.WithAttributes(attribute.String("result", "error")))
	}
}

func (o *Observability) RecordReport(ctx context.Context, delivered bool) {
	if o.reports == nil {
		return
	}
	o.reports.Add(ctx, 1, otelmetric.WithAttributes(attribute.Bool("delivered", delivered)))
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o.provider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return o.provider.Shutdown(ctx)
}
