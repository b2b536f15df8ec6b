package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestPerfStatsRecordsGauges(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)
	defer provider.Shutdown(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go perfStatsLoop(ctx, time.Millisecond*10)

	require.Eventually(t, func() bool {
		var rm metricdata.ResourceMetrics
		if err := reader.Collect(context.Background(), &rm); err != nil {
			return false
		}
		recorded := map[string]bool{}
		for _, scope := range rm.ScopeMetrics {
			for _, m := range scope.Metrics {
				recorded[m.Name] = true
			}
		}
		return recorded["allocated_mb"] && recorded["live_objects"] && recorded["goroutine_count"]
	}, time.Second*2, time.Millisecond*20)
}
