// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

package notify

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/yamdb/internal/config"
)

type fakeChannel struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeChannel) Name() string { return "fake" }

func (f *fakeChannel) Deliver(ctx context.Context, address, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

func TestDeliveryError(t *testing.T) {
	inner := errors.New("connection refused")
	var err error = &DeliveryError{Channel: "smtp", Transient: true, Err: inner}

	if !errors.Is(err, inner) {
		t.Error("DeliveryError must unwrap to its cause")
	}
	if !IsDeliveryError(err) {
		t.Error("IsDeliveryError = false")
	}
	if !strings.Contains(err.Error(), "smtp delivery failed") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestResilientChannel_Success(t *testing.T) {
	fake := &fakeChannel{}
	ch := NewResilientChannel(fake, ResilienceConfig{})

	if err := ch.Deliver(context.Background(), "a@x.com", "s", "b"); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if fake.calls != 1 {
		t.Errorf("calls = %d", fake.calls)
	}
	if ch.Name() != "fake" {
		t.Errorf("Name() = %q", ch.Name())
	}
}

func TestResilientChannel_BreakerOpens(t *testing.T) {
	fake := &fakeChannel{err: &DeliveryError{Channel: "fake", Transient: true, Err: errors.New("down")}}
	ch := NewResilientChannel(fake, ResilienceConfig{FailureThreshold: 2, Timeout: time.Hour})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := ch.Deliver(ctx, "a@x.com", "s", "b"); err == nil {
			t.Fatal("expected failure")
		}
	}

	err := ch.Deliver(ctx, "a@x.com", "s", "b")
	var de *DeliveryError
	if !errors.As(err, &de) || !de.Transient {
		t.Fatalf("open breaker error = %v, want transient DeliveryError", err)
	}
	if fake.calls != 2 {
		t.Errorf("open breaker must not call the backend, calls = %d", fake.calls)
	}
	if ch.State() != "open" {
		t.Errorf("State() = %q", ch.State())
	}
}

func TestResilientChannel_PermanentFailuresDoNotTrip(t *testing.T) {
	fake := &fakeChannel{err: &DeliveryError{Channel: "fake", Transient: false, Err: errors.New("550 no such user")}}
	ch := NewResilientChannel(fake, ResilienceConfig{FailureThreshold: 1, Timeout: time.Hour})

	for i := 0; i < 3; i++ {
		err := ch.Deliver(context.Background(), "a@x.com", "s", "b")
		var de *DeliveryError
		if !errors.As(err, &de) || de.Transient {
			t.Fatalf("attempt %d: err = %v, want permanent DeliveryError", i, err)
		}
	}
	if fake.calls != 3 {
		t.Errorf("calls = %d, want 3", fake.calls)
	}
}

func TestResilientChannel_WrapsPlainErrors(t *testing.T) {
	fake := &fakeChannel{err: errors.New("boom")}
	ch := NewResilientChannel(fake, ResilienceConfig{})

	err := ch.Deliver(context.Background(), "a@x.com", "s", "b")
	if !IsDeliveryError(err) {
		t.Fatalf("err = %v, want DeliveryError", err)
	}
}

func TestResilientChannel_RateLimited(t *testing.T) {
	fake := &fakeChannel{}
	ch := NewResilientChannel(fake, ResilienceConfig{RateLimit: 0.001, Burst: 1})

	if err := ch.Deliver(context.Background(), "a@x.com", "s", "b"); err != nil {
		t.Fatalf("first delivery: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := ch.Deliver(ctx, "a@x.com", "s", "b")
	var de *DeliveryError
	if !errors.As(err, &de) || !de.Transient {
		t.Fatalf("throttled delivery err = %v, want transient DeliveryError", err)
	}
	if fake.calls != 1 {
		t.Errorf("calls = %d, want 1", fake.calls)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		backend string
		want    string
		wantErr bool
	}{
		{"log", "log", false},
		{"", "log", false},
		{"smtp", "smtp", false},
		{"pigeon", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			ch, err := New(config.MailConfig{Backend: tt.backend, Host: "localhost", Port: 25, From: "a@b.c"})
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() err = %v", err)
			}
			if err == nil && ch.Name() != tt.want {
				t.Errorf("Name() = %q, want %q", ch.Name(), tt.want)
			}
		})
	}
}

func TestLogChannel(t *testing.T) {
	ch := NewLogChannel()
	if err := ch.Deliver(context.Background(), "a@x.com", "Code", "1234"); err != nil {
		t.Fatalf("Deliver: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := ch.Deliver(ctx, "a@x.com", "Code", "1234"); !IsDeliveryError(err) {
		t.Errorf("cancelled delivery err = %v", err)
	}
}

// fakeSMTPServer accepts one plaintext SMTP session and records the DATA
// payload. rcptReply overrides the RCPT TO reply.
func fakeSMTPServer(t *testing.T, rcptReply string) (addr string, data <-chan string) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	out := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		r := bufio.NewReader(conn)
		write := func(s string) { _, _ = conn.Write([]byte(s + "\r\n")) }
		write("220 localhost ESMTP")

		var body strings.Builder
		inData := false
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			if inData {
				if line == ".\r\n" {
					inData = false
					out <- body.String()
					write("250 OK")
					continue
				}
				body.WriteString(line)
				continue
			}
			cmd := strings.ToUpper(strings.TrimSpace(line))
			switch {
			case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
				write("250 localhost")
			case strings.HasPrefix(cmd, "MAIL FROM"):
				write("250 OK")
			case strings.HasPrefix(cmd, "RCPT TO"):
				if rcptReply != "" {
					write(rcptReply)
				} else {
					write("250 OK")
				}
			case cmd == "DATA":
				inData = true
				write("354 Start mail input")
			case cmd == "QUIT":
				write("221 Bye")
				return
			default:
				write("502 Not implemented")
			}
		}
	}()

	return ln.Addr().String(), out
}

func smtpChannelFor(t *testing.T, addr string) *SMTPChannel {
	t.Helper()
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatal(err)
	}
	p, err := strconv.Atoi(port)
	if err != nil {
		t.Fatal(err)
	}
	return NewSMTPChannel(SMTPConfig{Host: host, Port: p, From: "noreply@yamdb.local", Timeout: 5 * time.Second})
}

func TestSMTPChannel_Deliver(t *testing.T) {
	addr, data := fakeSMTPServer(t, "")
	ch := smtpChannelFor(t, addr)

	if err := ch.Deliver(context.Background(), "alice@x.com", "Your code", "Code: 4321"); err != nil {
		t.Fatalf("Deliver: %v", err)
	}

	select {
	case msg := <-data:
		for _, want := range []string{"To: alice@x.com", "Subject: Your code", "Code: 4321"} {
			if !strings.Contains(msg, want) {
				t.Errorf("message missing %q:\n%s", want, msg)
			}
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no message received")
	}
}

func TestSMTPChannel_RejectedRecipientIsPermanent(t *testing.T) {
	addr, _ := fakeSMTPServer(t, "550 No such user")
	ch := smtpChannelFor(t, addr)

	err := ch.Deliver(context.Background(), "ghost@x.com", "s", "b")
	var de *DeliveryError
	if !errors.As(err, &de) {
		t.Fatalf("err = %v, want DeliveryError", err)
	}
	if de.Transient {
		t.Error("550 must be permanent")
	}
}

func TestSMTPChannel_ConnectionRefusedIsTransient(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	err = smtpChannelFor(t, addr).Deliver(context.Background(), "a@x.com", "s", "b")
	var de *DeliveryError
	if !errors.As(err, &de) || !de.Transient {
		t.Fatalf("err = %v, want transient DeliveryError", err)
	}
}

func TestSMTPChannel_InvalidRecipient(t *testing.T) {
	ch := NewSMTPChannel(SMTPConfig{Host: "localhost", Port: 25, From: "a@b.c"})
	for _, addr := range []string{"no-at-sign", "a@x.com\r\nBcc: evil@x.com"} {
		if err := ch.Deliver(context.Background(), addr, "s", "b"); !IsDeliveryError(err) {
			t.Errorf("Deliver(%q) err = %v", addr, err)
		}
	}
}

func TestIsTransientEmailError(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{"failed to connect to SMTP server: refused", true},
		{"failed to set recipient: 421 service not available", true},
		{"failed to set recipient: 550 no such user", false},
		{"SMTP authentication failed: 535 bad credentials", false},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			if got := isTransientEmailError(errors.New(tt.msg)); got != tt.want {
				t.Errorf("isTransientEmailError(%q) = %v, want %v", tt.msg, got, tt.want)
			}
		})
	}
}
