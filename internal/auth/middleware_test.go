// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tomtom215/yamdb/internal/audit"
	"github.com/tomtom215/yamdb/internal/models"
)

func TestAuthenticator_Middleware(t *testing.T) {
	store := newFakeAccountStore()
	alice := &models.Account{Username: "alice", Email: "alice@x.com", Role: models.RoleUser}
	if err := store.CreateAccount(context.Background(), alice); err != nil {
		t.Fatal(err)
	}
	tokens := newTestTokenManager(t)
	pair, _ := tokens.IssuePair(alice)
	ghostPair, _ := tokens.IssuePair(&models.Account{ID: 999, Username: "ghost"})

	auditStore := audit.NewMemoryStore(100)
	auditLog := audit.NewLogger(auditStore, audit.DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = auditLog.Serve(ctx)
		close(done)
	}()

	authn := NewAuthenticator(tokens, store, auditLog, nil)

	var seen *models.Account
	handler := authn.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = AccountFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantUser   string
	}{
		{"anonymous", "", http.StatusOK, ""},
		{"valid access token", "Bearer " + pair.Access, http.StatusOK, "alice"},
		{"lowercase scheme", "bearer " + pair.Access, http.StatusOK, "alice"},
		{"refresh token", "Bearer " + pair.Refresh, http.StatusUnauthorized, ""},
		{"garbage token", "Bearer abc", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic YWxpY2U6cHc=", http.StatusUnauthorized, ""},
		{"empty bearer", "Bearer ", http.StatusUnauthorized, ""},
		{"deleted account", "Bearer " + ghostPair.Access, http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/api/v1/titles", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantUser == "" && seen != nil {
				t.Errorf("account = %q, want anonymous", seen.Username)
			}
			if tt.wantUser != "" && (seen == nil || seen.Username != tt.wantUser) {
				t.Errorf("account = %+v, want %s", seen, tt.wantUser)
			}
			if tt.wantStatus == http.StatusUnauthorized && rec.Header().Get("WWW-Authenticate") == "" {
				t.Error("missing WWW-Authenticate header")
			}
		})
	}

	cancel()
	<-done

	n, err := auditStore.Count(context.Background(), audit.QueryFilter{Types: []audit.EventType{audit.EventTypeAuthFailure}})
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 {
		t.Errorf("auth failure events = %d, want 5", n)
	}
}

func TestAuthenticator_CustomFailureHandler(t *testing.T) {
	tokens := newTestTokenManager(t)
	called := false
	authn := NewAuthenticator(tokens, newFakeAccountStore(), nil, func(w http.ResponseWriter, r *http.Request, err error) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	})

	handler := authn.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached with a bad token")
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !called || rec.Code != http.StatusTeapot {
		t.Errorf("custom handler called=%v status=%d", called, rec.Code)
	}
}

func TestAccountFromContext(t *testing.T) {
	if AccountFromContext(context.Background()) != nil {
		t.Error("empty context should carry no account")
	}
	a := &models.Account{Username: "alice"}
	if got := AccountFromContext(ContextWithAccount(context.Background(), a)); got != a {
		t.Errorf("AccountFromContext() = %v", got)
	}
}
