package telemetry

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"go.opentelemetry.io/otel"
)

var meter = otel.Meter("go.perf_stats")
var cpuGauge, _ = meter.Float64Gauge("cpu_usage")
var memoryGauge, _ = meter.Int64Gauge("allocated_mb")
var liveObjectsGauge, _ = meter.Int64Gauge("live_objects")
var goroutineGauge, _ = meter.Int64Gauge("goroutine_count")

// InstrumentPerfStats records process-level gauges every 30s until ctx
// is canceled.
func InstrumentPerfStats(ctx context.Context) {
	go perfStatsLoop(ctx, time.Second*30)
}

func perfStatsLoop(ctx context.Context, interval time.Duration) {
	// prime the sampler so later zero-interval reads report usage since
	// the previous call instead of blocking
	cpu.PercentWithContext(ctx, 0, false)

	var memStats runtime.MemStats
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			runtime.ReadMemStats(&memStats)

			cpuUsage, err := cpu.PercentWithContext(ctx, 0, false)
			if err == nil && len(cpuUsage) > 0 {
				cpuGauge.Record(ctx, cpuUsage[0])
			} else if err != nil {
				slog.Warn("failed to read cpu usage", "err", err)
			}

			memoryGauge.Record(ctx, int64(memStats.Alloc/1_000_000))
			liveObjectsGauge.Record(ctx, int64(memStats.Mallocs)-int64(memStats.Frees))
			goroutineGauge.Record(ctx, int64(runtime.NumGoroutine()))
		case <-ctx.Done():
			return
		}
	}
}
