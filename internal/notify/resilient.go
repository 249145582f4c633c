// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/yamdb/internal/config"
	"github.com/tomtom215/yamdb/internal/logging"
)

// ResilienceConfig configures the limiter and breaker around a channel.
type ResilienceConfig struct {
	// RateLimit is messages per second; zero disables throttling.
	RateLimit float64
	Burst     int

	// FailureThreshold consecutive failures open the breaker for Timeout.
	FailureThreshold uint32
	Timeout          time.Duration
}

// ResilientChannel throttles and circuit-breaks another channel.
type ResilientChannel struct {
	next    Channel
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[struct{}]
}

// NewResilientChannel wraps next.
func NewResilientChannel(next Channel, cfg ResilienceConfig) *ResilientChannel {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	name := next.Name()
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		// Permanent failures (bad recipient, rejected auth) say nothing
		// about relay health.
		IsSuccessful: func(err error) bool {
			var de *DeliveryError
			if errors.As(err, &de) {
				return !de.Transient
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			NotifyBreakerState.WithLabelValues(name).Set(float64(to))
			logging.Warn().
				Str("channel", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Notification circuit breaker state changed")
		},
	}

	return &ResilientChannel{
		next:    next,
		limiter: limiter,
		breaker: gobreaker.NewCircuitBreaker[struct{}](settings),
	}
}

// Name returns the wrapped channel's name.
func (c *ResilientChannel) Name() string {
	return c.next.Name()
}

// Deliver waits for a rate-limit token, then delivers through the breaker.
func (c *ResilientChannel) Deliver(ctx context.Context, address, subject, body string) error {
	start := time.Now()
	err := c.deliver(ctx, address, subject, body)
	recordDelivery(c.Name(), err, time.Since(start))
	return err
}

func (c *ResilientChannel) deliver(ctx context.Context, address, subject, body string) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &DeliveryError{Channel: c.Name(), Transient: true, Err: fmt.Errorf("rate limited: %w", err)}
		}
	}

	_, err := c.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, c.next.Deliver(ctx, address, subject, body)
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &DeliveryError{Channel: c.Name(), Transient: true, Err: err}
	}
	var de *DeliveryError
	if errors.As(err, &de) {
		return err
	}
	return &DeliveryError{Channel: c.Name(), Transient: true, Err: err}
}

// State returns the breaker state for health reporting.
func (c *ResilientChannel) State() string {
	return c.breaker.State().String()
}

// New builds the configured backend wrapped in a ResilientChannel.
func New(cfg config.MailConfig) (*ResilientChannel, error) {
	var backend Channel
	switch cfg.Backend {
	case "smtp":
		backend = NewSMTPChannel(SMTPConfig{
			Host:     cfg.Host,
			Port:     cfg.Port,
			Username: cfg.Username,
			Password: cfg.Password,
			From:     cfg.From,
			UseTLS:   cfg.UseTLS,
			Timeout:  cfg.Timeout,
		})
	case "log", "":
		backend = NewLogChannel()
	default:
		return nil, fmt.Errorf("unknown mail backend %q", cfg.Backend)
	}

	return NewResilientChannel(backend, ResilienceConfig{
		RateLimit:        cfg.RateLimit,
		Burst:            cfg.Burst,
		FailureThreshold: cfg.BreakerFailures,
		Timeout:          cfg.BreakerTimeout,
	}), nil
}
