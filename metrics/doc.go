// Package metrics exposes Apocrypha's runtime counters in Prometheus text
// format via github.com/VictoriaMetrics/metrics, the teacher's unused
// metrics dependency (present in its go.mod's require block but never
// imported by its code) - wired here to back queries-served, cache hit/miss,
// flush duration/failure, and open-connection counters.
//
// github.com/rcrowley/go-metrics, the teacher's other metrics dependency, is
// not used: it covers the same concern (counters/histograms/gauges) and
// wiring both would mean picking one to actually read from anyway. See
// DESIGN.md for the full writeup.
package metrics
