package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func createTestObservability(t *testing.T) (*Observability, *metric.ManualReader) {
	t.Helper()
	reader := metric.NewManualReader()
	o, err := NewWithReader("test", reader)
	require.NoError(t, err)
	t.Cleanup(func() { _ = o.Shutdown(context.Background()) })
	return o, reader
}

// sums collects every int64 sum data point of the named instrument, keyed by
// its attribute set.
func sums(t *testing.T, reader *metric.ManualReader, name string) map[attribute.Distinct]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[attribute.Distinct]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "instrument %s is not an int64 sum", name)
			for _, dp := range sum.DataPoints {
				out[dp.Attributes.Equivalent()] += dp.Value
			}
		}
	}
	return out
}

func key(kvs ...attribute.KeyValue) attribute.Distinct {
	set := attribute.NewSet(kvs...)
	return set.Equivalent()
}

func TestRecordJob(t *testing.T) {
	o, reader := createTestObservability(t)
	ctx := context.Background()

	o.RecordJob(ctx, "analyze-food", "success", 120*time.Millisecond)
	o.RecordJob(ctx, "analyze-food", "success", 80*time.Millisecond)
	o.RecordJob(ctx, "analyze-food", "error", 10*time.Millisecond)

	got := sums(t, reader, "foodlens.jobs")
	assert.Equal(t, int64(2), got[key(attribute.String("task_type", "analyze-food"), attribute.String("status", "success"))])
	assert.Equal(t, int64(1), got[key(attribute.String("task_type", "analyze-food"), attribute.String("status", "error"))])
}

func TestRecordProfileSave(t *testing.T) {
	o, reader := createTestObservability(t)
	ctx := context.Background()

	o.RecordProfileSave(ctx, "created", true, 3, 2)
	o.RecordProfileSave(ctx, "unchanged", false, 0, 0)

	saves := sums(t, reader, "foodlens.profile.saves")
	assert.Equal(t, int64(1), saves[key(attribute.String("outcome", "created"), attribute.Bool("enriched", true))])
	assert.Equal(t, int64(1), saves[key(attribute.String("outcome", "unchanged"), attribute.Bool("enriched", false))])

	terms := sums(t, reader, "foodlens.enrichment.terms")
	assert.Equal(t, int64(2), terms[key(attribute.String("result", "success"))])
	assert.Equal(t, int64(1), terms[key(attribute.String("result", "error"))])
}

func TestRecordReport(t *testing.T) {
	o, reader := createTestObservability(t)

	o.RecordReport(context.Background(), true)
	o.RecordReport(context.Background(), false)
	o.RecordReport(context.Background(), false)

	got := sums(t, reader, "foodlens.reports")
	assert.Equal(t, int64(1), got[key(attribute.Bool("delivered", true))])
	assert.Equal(t, int64(2), got[key(attribute.Bool("delivered", false))])
}

func TestNoop(t *testing.T) {
	o := Noop()
	ctx := context.Background()

	assert.NotPanics(t, func() {
		o.RecordJob(ctx, "t", "success", time.Second)
		o.RecordProfileSave(ctx, "created", true, 1, 1)
		o.RecordReport(ctx, true)
	})
	assert.NoError(t, o.Shutdown(ctx))
}
