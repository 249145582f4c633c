// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/yamdb/internal/audit"
	"github.com/tomtom215/yamdb/internal/auth"
	"github.com/tomtom215/yamdb/internal/config"
	"github.com/tomtom215/yamdb/internal/database"
	"github.com/tomtom215/yamdb/internal/models"
)

const testSecret = "api-test-secret-that-is-long-enough-for-hs256"

// recordingChannel captures confirmation messages instead of sending them.
type recordingChannel struct {
	mu     sync.Mutex
	bodies map[string]string // address -> last body
	err    error
}

func (c *recordingChannel) Name() string { return "recording" }

func (c *recordingChannel) Deliver(_ context.Context, address, _, body string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	if c.bodies == nil {
		c.bodies = make(map[string]string)
	}
	c.bodies[address] = body
	return nil
}

func (c *recordingChannel) setErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

// code returns the last code sent to address.
func (c *recordingChannel) code(t *testing.T, address string) string {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	body, ok := c.bodies[address]
	if !ok {
		t.Fatalf("no message delivered to %s", address)
	}
	fields := strings.Fields(body)
	return fields[len(fields)-1]
}

type testEnv struct {
	router     http.Handler
	db         *database.DB
	tokens     *auth.TokenManager
	channel    *recordingChannel
	auditStore *audit.MemoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "256MB", Threads: 2})
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.Config{
		API: config.APIConfig{DefaultPageSize: 10, MaxPageSize: 100},
		Security: config.SecurityConfig{
			JWTSecret:         testSecret,
			AccessTokenTTL:    time.Hour,
			RefreshTokenTTL:   24 * time.Hour,
			RateLimitDisabled: true,
		},
	}

	tokens, err := auth.NewTokenManager(&cfg.Security)
	if err != nil {
		t.Fatalf("NewTokenManager() error = %v", err)
	}

	auditStore := audit.NewMemoryStore(1000)
	auditLog := audit.NewLogger(auditStore, audit.DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = auditLog.Serve(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	channel := &recordingChannel{}
	lockout := auth.NewLockoutManager(auth.NewMemoryLockoutStore(), config.LockoutConfig{
		Enabled:     true,
		MaxAttempts: 3,
		Duration:    5 * time.Minute,
		MaxDuration: time.Hour,
	})
	svc := auth.NewService(db, tokens, channel, lockout, auditLog, "")

	h := NewHandler(Deps{
		Config:  cfg,
		DB:      db,
		Service: svc,
		Tokens:  tokens,
		Audit:   auditLog,
		Version: "test",
	})

	return &testEnv{
		router:     NewRouter(h),
		db:         db,
		tokens:     tokens,
		channel:    channel,
		auditStore: auditStore,
	}
}

// account creates an active account and returns it with an access token.
func (e *testEnv) account(t *testing.T, username string, role models.Role, superuser bool) (*models.Account, string) {
	t.Helper()
	a := &models.Account{
		Username:    username,
		Email:       username + "@example.com",
		Role:        role,
		IsSuperuser: superuser,
		IsActive:    true,
	}
	if err := e.db.CreateAccount(context.Background(), a); err != nil {
		t.Fatalf("CreateAccount(%s) error = %v", username, err)
	}
	pair, err := e.tokens.IssuePair(a)
	if err != nil {
		t.Fatalf("IssuePair() error = %v", err)
	}
	return a, pair.Access
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    Meta            `json:"meta"`
}

type response struct {
	*httptest.ResponseRecorder
	body envelope
}

// decode unmarshals the envelope data into v.
func (r *response) decode(t *testing.T, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(r.body.Data, v); err != nil {
		t.Fatalf("decode data %s: %v", r.body.Data, err)
	}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *response {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	resp := &response{ResponseRecorder: rec}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp.body); err != nil {
			t.Fatalf("%s %s: response is not an envelope: %s", method, path, rec.Body.String())
		}
	}
	return resp
}

// expect fails the test when the status differs, printing the body.
func expect(t *testing.T, r *response, status int) {
	t.Helper()
	if r.Code != status {
		t.Fatalf("status = %d, want %d; body: %s", r.Code, status, r.Body.String())
	}
}

// waitForEvents polls the audit store until n events of type et exist.
func (e *testEnv) waitForEvents(t *testing.T, et audit.EventType, n int64) []audit.Event {
	t.Helper()
	filter := audit.QueryFilter{Types: []audit.EventType{et}}
	deadline := time.Now().Add(2 * time.Second)
	for {
		count, err := e.auditStore.Count(context.Background(), filter)
		if err != nil {
			t.Fatal(err)
		}
		if count >= n {
			events, err := e.auditStore.Query(context.Background(), filter)
			if err != nil {
				t.Fatal(err)
			}
			return events
		}
		if time.Now().After(deadline) {
			t.Fatalf("%s events = %d, want %d", et, count, n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
