package metrics

import (
	"net/http"
	"time"

	vm "github.com/VictoriaMetrics/metrics"
)

var (
	queriesTotal     = vm.NewCounter(`apocrypha_queries_total`)
	queryErrorsTotal = vm.NewCounter(`apocrypha_query_errors_total`)
	cacheHitsTotal   = vm.NewCounter(`apocrypha_cache_hits_total`)
	cacheMissesTotal = vm.NewCounter(`apocrypha_cache_misses_total`)
	flushTotal       = vm.NewCounter(`apocrypha_flush_total`)
	flushErrorsTotal = vm.NewCounter(`apocrypha_flush_errors_total`)
	flushDuration    = vm.NewHistogram(`apocrypha_flush_duration_seconds`)
	queryDuration    = vm.NewHistogram(`apocrypha_query_duration_seconds`)
)

// RecordQuery records the outcome and latency of one query.
func RecordQuery(d time.Duration, err error) {
	queriesTotal.Inc()
	queryDuration.Update(d.Seconds())
	if err != nil {
		queryErrorsTotal.Inc()
	}
}

// RecordCacheLookup records a single cache lookup's outcome.
func RecordCacheLookup(hit bool) {
	if hit {
		cacheHitsTotal.Inc()
	} else {
		cacheMissesTotal.Inc()
	}
}

// RecordFlush records one persistence-loop flush attempt.
func RecordFlush(d time.Duration, err error) {
	flushTotal.Inc()
	flushDuration.Update(d.Seconds())
	if err != nil {
		flushErrorsTotal.Inc()
	}
}

// ConnectionGauge registers a gauge that reports the server's current open
// connection count by calling get on every scrape.
func ConnectionGauge(get func() float64) {
	vm.NewGauge(`apocrypha_open_connections`, get)
}

// Handler returns an http.Handler serving every registered metric in
// Prometheus exposition format, for mounting at /metrics.
func Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		vm.WritePrometheus(w, true)
	})
}

// Serve starts a dedicated HTTP server for the metrics endpoint and blocks.
// Run in its own goroutine by the serve command when metrics are enabled.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	return http.ListenAndServe(addr, mux)
}
