package main

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus instruments for the scraper and stores.
type Metrics struct {
	FetchesTotal      prometheus.Counter
	FetchFailures     prometheus.Counter
	ParseFailures     prometheus.Counter
	RecordsAppended   prometheus.Counter
	DuplicatesSkipped prometheus.Counter
	LastFetchUnix     prometheus.Gauge
}

// NewMetrics creates and registers the instruments with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FetchesTotal,
		m.FetchFailures,
		m.ParseFailures,
		m.RecordsAppended,
		m.DuplicatesSkipped,
		m.LastFetchUnix,
	)
	return m
}

// NewMetricsForTesting creates unregistered instruments so repeated test
// construction does not panic with "already registered".
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FetchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trolleywatch",
			Name:      "fetches_total",
			Help:      "Successful report page fetches.",
		}),
		FetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trolleywatch",
			Name:      "fetch_failures_total",
			Help:      "Report page fetches that failed after retries.",
		}),
		ParseFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trolleywatch",
			Name:      "parse_failures_total",
			Help:      "Fetched pages with no usable table or master row.",
		}),
		RecordsAppended: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trolleywatch",
			Name:      "records_appended_total",
			Help:      "Entity records written to the store.",
		}),
		DuplicatesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trolleywatch",
			Name:      "duplicates_skipped_total",
			Help:      "Appends skipped because an identical row existed.",
		}),
		LastFetchUnix: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "trolleywatch",
			Name:      "last_fetch_timestamp_seconds",
			Help:      "Unix time of the most recent successful fetch.",
		}),
	}
}
