// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "burst"

// Recorder receives search pipeline measurements.
type Recorder interface {
	RecordSearch(kind string)
	RecordIndexerQuery(indexer, outcome string, elapsed time.Duration)
	RecordMagnetResolution(outcome string)
	RecordResults(count int)
}

// Nop discards all measurements.
type Nop struct{}

func (Nop) RecordSearch(string)                              {}
func (Nop) RecordIndexerQuery(string, string, time.Duration) {}
func (Nop) RecordMagnetResolution(string)                    {}
func (Nop) RecordResults(int)                                {}

// Manager owns the Prometheus registry and the search collectors.
type Manager struct {
	registry *prometheus.Registry

	searchesTotal       *prometheus.CounterVec
	indexerQueriesTotal *prometheus.CounterVec
	indexerQueryTime    *prometheus.HistogramVec
	magnetResolutions   *prometheus.CounterVec
	resultsReturned     prometheus.Histogram
}

func NewManager() *Manager {
	m := &Manager{
		registry: prometheus.NewRegistry(),
		searchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "searches_total",
				Help:      "Total number of searches by kind",
			},
			[]string{"kind"},
		),
		indexerQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "indexer_queries_total",
				Help:      "Total number of indexer queries by outcome",
			},
			[]string{"indexer", "outcome"},
		),
		indexerQueryTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "indexer_query_duration_seconds",
				Help:      "Indexer query duration in seconds",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
			},
			[]string{"indexer"},
		),
		magnetResolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "magnet_resolutions_total",
				Help:      "Total number of download reference resolutions by outcome",
			},
			[]string{"outcome"}, // "magnet" / "resolved" / "failed"
		),
		resultsReturned: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "results_returned",
				Help:      "Number of results returned per search",
				Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250},
			},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.searchesTotal,
		m.indexerQueriesTotal,
		m.indexerQueryTime,
		m.magnetResolutions,
		m.resultsReturned,
	)

	return m
}

// Registry exposes the underlying registry for the metrics server and tests.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Manager) RecordSearch(kind string) {
	m.searchesTotal.WithLabelValues(kind).Inc()
}

func (m *Manager) RecordIndexerQuery(indexer, outcome string, elapsed time.Duration) {
	m.indexerQueriesTotal.WithLabelValues(indexer, outcome).Inc()
	m.indexerQueryTime.WithLabelValues(indexer).Observe(elapsed.Seconds())
}

func (m *Manager) RecordMagnetResolution(outcome string) {
	m.magnetResolutions.WithLabelValues(outcome).Inc()
}

func (m *Manager) RecordResults(count int) {
	m.resultsReturned.Observe(float64(count))
}
