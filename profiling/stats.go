package profiling

import (
	"context"
	"sync"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "xtree/prof"

type depthKey struct {
	subject  string
	caseName string
}

type runnerStats struct {
	latency metric.Int64Histogram
	ops     metric.Int64Counter
	depth   metric.Int64ObservableGauge

	lock   sync.Mutex
	depths map[depthKey]int64
}

func newRunnerStats() *runnerStats {
	meter := otel.Meter(meterName)
	stats := &runnerStats{
		depths: make(map[depthKey]int64, 8),
	}
	stats.latency = lo.Must(meter.Int64Histogram(
		"xtree.prof.op.latency",
		metric.WithUnit("ns"),
		metric.WithDescription("The averaged latency of a single tree operation."),
	))
	stats.ops = lo.Must(meter.Int64Counter(
		"xtree.prof.ops",
		metric.WithDescription("The tree operations performed by the profiler."),
	))
	stats.depth = lo.Must(meter.Int64ObservableGauge(
		"xtree.prof.depth",
		metric.WithDescription("The final tree depth of the depth cases."),
		metric.WithInt64Callback(func(_ context.Context, ob metric.Int64Observer) error {
			stats.lock.Lock()
			defer stats.lock.Unlock()
			for k, v := range stats.depths {
				ob.Observe(v, metric.WithAttributes(
					attribute.String("subject", k.subject),
					attribute.String("case", k.caseName),
				))
			}
			return nil
		}),
	))
	return stats
}

func (stats *runnerStats) record(ctx context.Context, res Result) {
	attrs := metric.WithAttributes(
		attribute.String("subject", res.Subject),
		attribute.String("case", res.Case),
	)
	stats.ops.Add(ctx, int64(len(res.Values)*max(res.Iters, 1)), attrs)
	if res.Kind == KindDepth {
		if len(res.Values) > 0 {
			stats.lock.Lock()
			stats.depths[depthKey{subject: res.Subject, caseName: res.Case}] = res.Values[len(res.Values)-1]
			stats.lock.Unlock()
		}
		return
	}
	for _, v := range res.Values {
		stats.latency.Record(ctx, v, attrs)
	}
}
