// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

package authz

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	io_prometheus_client "github.com/prometheus/client_model/go"

	"github.com/tomtom215/yamdb/internal/models"
)

type ctxKey struct{}

func requesterFromTestContext(ctx context.Context) *models.Account {
	a, _ := ctx.Value(ctxKey{}).(*models.Account)
	return a
}

func withRequester(r *http.Request, a *models.Account) *http.Request {
	if a == nil {
		return r
	}
	return r.WithContext(context.WithValue(r.Context(), ctxKey{}, a))
}

func TestMiddleware_Require(t *testing.T) {
	m := NewMiddleware(requesterFromTestContext, nil)

	tests := []struct {
		name       string
		policy     Policy
		method     string
		req        *models.Account
		wantStatus int
		wantCalled bool
	}{
		{"anonymous browse catalog", PolicyAdminOrReadOnly, http.MethodGet, nil, http.StatusOK, true},
		{"anonymous create title", PolicyAdminOrReadOnly, http.MethodPost, nil, http.StatusUnauthorized, false},
		{"user create title", PolicyAdminOrReadOnly, http.MethodPost, plainUser, http.StatusForbidden, false},
		{"admin create title", PolicyAdminOrReadOnly, http.MethodPost, admin, http.StatusOK, true},
		{"user lists accounts", PolicyAdminWriteOnly, http.MethodGet, plainUser, http.StatusForbidden, false},
		{"superuser lists accounts", PolicyAdminWriteOnly, http.MethodGet, superuser, http.StatusOK, true},
		{"anonymous profile", PolicySelfProfile, http.MethodGet, nil, http.StatusUnauthorized, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			h := m.Require(tt.policy)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			}))

			req := withRequester(httptest.NewRequest(tt.method, "/api/v1/x", nil), tt.req)
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if called != tt.wantCalled {
				t.Errorf("next called = %v, want %v", called, tt.wantCalled)
			}
			if tt.wantStatus == http.StatusUnauthorized && rr.Header().Get("WWW-Authenticate") == "" {
				t.Error("401 without WWW-Authenticate")
			}
		})
	}
}

func TestMiddleware_CustomDeny(t *testing.T) {
	var gotPolicy Policy
	var gotDecision Decision
	m := NewMiddleware(requesterFromTestContext, func(w http.ResponseWriter, _ *http.Request, p Policy, d Decision) {
		gotPolicy, gotDecision = p, d
		w.WriteHeader(http.StatusTeapot)
	})

	h := m.Require(PolicyAdminWriteOnly)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("next must not be called")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, withRequester(httptest.NewRequest(http.MethodDelete, "/", nil), moderator))

	if rr.Code != http.StatusTeapot || gotPolicy != PolicyAdminWriteOnly || gotDecision != DenyForbidden {
		t.Errorf("deny handler got code=%d policy=%s decision=%v", rr.Code, gotPolicy, gotDecision)
	}
}

func getCounterValue(counter prometheus.Counter) float64 {
	var m io_prometheus_client.Metric
	if err := counter.Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

func TestRecordDecision(t *testing.T) {
	denied := AuthzDeniedTotal.WithLabelValues(string(PolicyAdminWriteOnly), "forbidden")
	allowed := AuthzDecisionsTotal.WithLabelValues(string(PolicyAdminWriteOnly), "superuser", "allow")

	beforeDenied := getCounterValue(denied)
	beforeAllowed := getCounterValue(allowed)

	RecordDecision(PolicyAdminWriteOnly, moderator, DenyForbidden)
	RecordDecision(PolicyAdminWriteOnly, superuser, Allow)

	if getCounterValue(denied) != beforeDenied+1 {
		t.Error("expected denial counter to increase")
	}
	if getCounterValue(allowed) != beforeAllowed+1 {
		t.Error("expected allow counter to increase with superuser label")
	}
}
