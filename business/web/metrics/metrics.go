// Package metrics constructs the metrics the application will track.
package metrics

import (
	"context"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// This holds the single instance of the metrics value needed for collecting
// metrics. The expectation is that there is only one service per process.
var m *metrics

// metrics represents the set of metrics we gather.
type metrics struct {
	goroutines prometheus.Gauge
	requests   prometheus.Counter
	errors     prometheus.Counter
	panics     prometheus.Counter
	settles    *prometheus.CounterVec
}

// init constructs the metrics value that will be used to capture metrics. The
// metrics value is stored in a package level variable since everything inside
// of prometheus is registered as a singleton.
func init() {
	m = &metrics{
		goroutines: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "launchpad",
			Name:      "goroutines",
			Help:      "Current number of goroutines.",
		}),
		requests: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "launchpad",
			Name:      "requests_total",
			Help:      "Total number of http requests.",
		}),
		errors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "launchpad",
			Name:      "errors_total",
			Help:      "Total number of http request errors.",
		}),
		panics: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "launchpad",
			Name:      "panics_total",
			Help:      "Total number of recovered panics.",
		}),
		settles: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "launchpad",
			Name:      "settles_total",
			Help:      "Total number of settled auction epochs.",
		}, []string{"auction"}),
	}
}

// =============================================================================

type ctxKey int

const key ctxKey = 1

// Set sets the metrics data into the context.
func Set(ctx context.Context) context.Context {
	return context.WithValue(ctx, key, m)
}

// AddRequests increments the request counter and refreshes the goroutine
// gauge.
func AddRequests(ctx context.Context) {
	v, ok := ctx.Value(key).(*metrics)
	if !ok {
		return
	}

	v.requests.Inc()
	v.goroutines.Set(float64(runtime.NumGoroutine()))
}

// AddErrors increments the errors counter.
func AddErrors(ctx context.Context) {
	if v, ok := ctx.Value(key).(*metrics); ok {
		v.errors.Inc()
	}
}

// AddPanics increments the panics counter.
func AddPanics(ctx context.Context) {
	if v, ok := ctx.Value(key).(*metrics); ok {
		v.panics.Inc()
	}
}

// AddSettle increments the settle counter for the specified auction.
func AddSettle(auction string) {
	m.settles.WithLabelValues(auction).Inc()
}
