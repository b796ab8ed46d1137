package debug

// Periodic runtime stats logger, started only when config.Debug is true.
// Each redraw allocates a fresh photo image, so heap and goroutine counts are
// the first thing to check when the window grows sluggish.

import (
	"context"
	"log/slog"
	"runtime"
	"runtime/metrics"
	"time"

	"github.com/dustin/go-humanize"
)

// StartMemLogger logs goroutine count and heap usage every interval until ctx
// is cancelled.
func StartMemLogger(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if logger == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		samples := []metrics.Sample{{Name: "/sched/goroutines:goroutines"}}
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			metrics.Read(samples)
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)
			logger.Info("memstats",
				slog.Uint64("goroutines", samples[0].Value.Uint64()),
				slog.String("heap_alloc", humanize.Bytes(ms.HeapAlloc)),
				slog.String("heap_inuse", humanize.Bytes(ms.HeapInuse)),
				slog.String("heap_sys", humanize.Bytes(ms.HeapSys)),
				slog.String("stack_inuse", humanize.Bytes(ms.StackInuse)),
				slog.Uint64("num_gc", uint64(ms.NumGC)),
			)
		}
	}()
}
