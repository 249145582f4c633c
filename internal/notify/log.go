// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

package notify

import (
	"context"

	"github.com/tomtom215/yamdb/internal/logging"
)

// LogChannel writes messages to the application log instead of sending
// them. Development only: the body, and so the code, reaches the log.
type LogChannel struct{}

// NewLogChannel creates a log-backed channel.
func NewLogChannel() *LogChannel {
	return &LogChannel{}
}

// Name returns the channel identifier.
func (c *LogChannel) Name() string {
	return "log"
}

// Deliver logs the message.
func (c *LogChannel) Deliver(ctx context.Context, address, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return &DeliveryError{Channel: c.Name(), Transient: true, Err: err}
	}
	logging.Ctx(ctx).Info().
		Str("to", logging.SanitizeEmail(address)).
		Str("subject", subject).
		Str("body", body).
		Msg("Outgoing message")
	return nil
}
