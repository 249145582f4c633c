// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

// Package notify delivers confirmation codes to account owners.
//
// A Channel sends one plain-text message to one address. Two backends ship:
//   - smtp: delivery through a mail relay
//   - log: the message is written to the application log (development)
//
// New wraps the backend in a rate limiter and a circuit breaker. Failures
// always surface as *DeliveryError; nothing is retried here.
package notify

import (
	"context"
	"errors"
	"fmt"
)

// Channel delivers a message to an address.
type Channel interface {
	// Name returns the channel identifier used in logs and metrics.
	Name() string

	// Deliver sends subject and body to address.
	Deliver(ctx context.Context, address, subject, body string) error
}

// DeliveryError reports a failed delivery. Transient errors (connection,
// timeout, throttling, open breaker) are worth retrying by the caller.
type DeliveryError struct {
	Channel   string
	Transient bool
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s delivery failed: %v", e.Channel, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// IsDeliveryError reports whether err wraps a *DeliveryError.
func IsDeliveryError(err error) bool {
	var de *DeliveryError
	return errors.As(err, &de)
}
