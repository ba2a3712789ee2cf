// Package metrics holds the Prometheus collectors of the showcase pipeline and the icon cache.
package metrics

import (
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Tier is the icon cache layer an icon was served from.
type Tier string

const (
	// TierMemory is the in-memory icon cache.
	TierMemory Tier = "memory"
	// TierDisk is the on-disk icon cache.
	TierDisk Tier = "disk"
	// TierNetwork means the icon was downloaded.
	TierNetwork Tier = "network"
)

// Outcome is the result of a showcase refresh attempt.
type Outcome string

const (
	// OutcomeSkipped is a refresh that was not needed.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeFetched is a refresh that published a new catalog.
	OutcomeFetched Outcome = "fetched"
	// OutcomeFailed is a refresh that kept the previous state.
	OutcomeFailed Outcome = "failed"
)

const namespace = "app_showcase"

// Collectors records the pipeline events. A nil *Collectors records nothing.
type Collectors struct {
	iconLoads         *prometheus.CounterVec
	iconMisses        prometheus.Counter
	iconFetchFailures prometheus.Counter
	refreshes         *prometheus.CounterVec
	refreshDuration   prometheus.Histogram
}

// New creates the collectors and registers them in reg.
func New(reg prometheus.Registerer) *Collectors {
	f := promauto.With(reg)

	return &Collectors{
		iconLoads: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "icon_loads_total",
				Help:      "Tracks the number of icons served, by cache tier.",
			}, []string{"tier"},
		),
		iconMisses: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "icon_misses_total",
				Help:      "Tracks the number of icon loads which returned no image.",
			},
		),
		iconFetchFailures: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "icon_fetch_failures_total",
				Help:      "Tracks the number of icon downloads which failed.",
			},
		),
		refreshes: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "refreshes_total",
				Help:      "Tracks the number of showcase refresh attempts, by outcome.",
			}, []string{"outcome"},
		),
		refreshDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "refresh_duration_seconds",
				Help:      "Tracks the duration of remote catalog fetches.",
				// Bounded by the response timeout. Max of 10.24.
				Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
			},
		),
	}
}

// IconServed records an icon served from tier.
func (c *Collectors) IconServed(tier Tier) {
	if c == nil {
		return
	}
	c.iconLoads.WithLabelValues(string(tier)).Inc()
}

// IconMissed records an icon load which returned no image.
func (c *Collectors) IconMissed() {
	if c == nil {
		return
	}
	c.iconMisses.Inc()
}

// IconFetchFailed records a failed icon download.
func (c *Collectors) IconFetchFailed() {
	if c == nil {
		return
	}
	c.iconFetchFailures.Inc()
}

// Refreshed records a refresh attempt. d is ignored for skipped refreshes.
func (c *Collectors) Refreshed(o Outcome, d time.Duration) {
	if c == nil {
		return
	}
	c.refreshes.WithLabelValues(string(o)).Inc()
	if o != OutcomeSkipped {
		c.refreshDuration.Observe(d.Seconds())
	}
}

// WriteText writes every metric gathered from g in the Prometheus text exposition format.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	mfs, err := g.Gather()
	if err != nil {
		return fmt.Errorf("could not gather metrics: %v", err)
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("could not write metric %s: %v", mf.GetName(), err)
		}
	}
	return nil
}
