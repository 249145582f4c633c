// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

package notify

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// NotifyDeliveriesTotal counts deliveries by channel and outcome
	// (success, transient, permanent).
	NotifyDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_deliveries_total",
			Help: "Total number of notification delivery attempts",
		},
		[]string{"channel", "outcome"},
	)

	NotifyDeliveryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notify_delivery_duration_seconds",
			Help:    "Duration of notification deliveries",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"channel"},
	)

	// NotifyBreakerState is 0 closed, 1 half-open, 2 open.
	NotifyBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "notify_circuit_breaker_state",
			Help: "Notification circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"channel"},
	)
)

func recordDelivery(channel string, err error, d time.Duration) {
	NotifyDeliveryDuration.WithLabelValues(channel).Observe(d.Seconds())

	outcome := "success"
	if err != nil {
		outcome = "permanent"
		var de *DeliveryError
		if errors.As(err, &de) && de.Transient {
			outcome = "transient"
		}
	}
	NotifyDeliveriesTotal.WithLabelValues(channel, outcome).Inc()
}
