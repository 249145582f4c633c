// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// SMTPConfig holds relay settings for SMTPChannel.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	UseTLS   bool
	Timeout  time.Duration
}

// SMTPChannel implements email delivery via SMTP.
type SMTPChannel struct {
	cfg SMTPConfig
}

// NewSMTPChannel creates a new email delivery channel.
func NewSMTPChannel(cfg SMTPConfig) *SMTPChannel {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &SMTPChannel{cfg: cfg}
}

// Name returns the channel identifier.
func (c *SMTPChannel) Name() string {
	return "smtp"
}

// Deliver sends a plain-text message through the relay.
func (c *SMTPChannel) Deliver(ctx context.Context, address, subject, body string) error {
	if strings.ContainsAny(address, "\r\n") || !strings.Contains(address, "@") {
		return &DeliveryError{Channel: c.Name(), Err: fmt.Errorf("invalid recipient %q", address)}
	}

	if err := c.send(ctx, address, c.buildMessage(address, subject, body)); err != nil {
		return &DeliveryError{Channel: c.Name(), Transient: isTransientEmailError(err), Err: err}
	}
	return nil
}

// buildMessage constructs the message with headers.
func (c *SMTPChannel) buildMessage(to, subject, body string) string {
	var msg strings.Builder

	msg.WriteString(fmt.Sprintf("From: YaMDb <%s>\r\n", c.cfg.From))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", strings.NewReplacer("\r", "", "\n", "").Replace(subject)))
	msg.WriteString(fmt.Sprintf("Date: %s\r\n", time.Now().UTC().Format(time.RFC1123Z)))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)
	msg.WriteString("\r\n")

	return msg.String()
}

// send runs one SMTP transaction.
func (c *SMTPChannel) send(ctx context.Context, to, msg string) error {
	addr := net.JoinHostPort(c.cfg.Host, fmt.Sprintf("%d", c.cfg.Port))

	dialer := &net.Dialer{Timeout: c.cfg.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer func() { _ = conn.Close() }() //nolint:errcheck // Best effort cleanup

	deadline := time.Now().Add(c.cfg.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline) //nolint:errcheck // Best effort

	client, err := smtp.NewClient(conn, c.cfg.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer func() { _ = client.Close() }() //nolint:errcheck // Best effort cleanup

	if c.cfg.UseTLS {
		tlsConfig := &tls.Config{
			ServerName: c.cfg.Host,
			MinVersion: tls.VersionTLS12,
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	}

	if c.cfg.Username != "" && c.cfg.Password != "" {
		auth := smtp.PlainAuth("", c.cfg.Username, c.cfg.Password, c.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(c.cfg.From); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to start message: %w", err)
	}
	if _, err := writer.Write([]byte(msg)); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close message: %w", err)
	}

	// The message is accepted once DATA closes; a failed QUIT is ignored.
	_ = client.Quit() //nolint:errcheck // Message already accepted
	return nil
}

// isTransientEmailError classifies relay failures. Connection, timeout and
// 4xx replies are transient; authentication and 5xx replies are not.
func isTransientEmailError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "authentication"):
		return false
	case strings.Contains(errStr, "connect"), strings.Contains(errStr, "timeout"):
		return true
	}

	// textproto.Error carries the reply code in its message ("421 ...").
	for _, field := range strings.Fields(errStr) {
		if len(field) == 3 && field[0] == '4' {
			return true
		}
	}
	return false
}
