// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/yamdb/internal/config"
	"github.com/tomtom215/yamdb/internal/models"
)

var (
	// ErrInvalidToken covers malformed, tampered, expired and wrongly
	// signed tokens.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenType is returned when a refresh token is presented where an
	// access token is expected, or the reverse.
	ErrTokenType = errors.New("wrong token type")
)

// TokenType distinguishes the two halves of a token pair.
type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

// Claims represents JWT claims. Subject carries the account ID.
type Claims struct {
	Username string    `json:"username"`
	Role     string    `json:"role"`
	Type     TokenType `json:"typ"`
	jwt.RegisteredClaims
}

// AccountID parses the subject claim.
func (c *Claims) AccountID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return id, nil
}

// TokenPair is returned on activation and refresh.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// TokenManager issues and verifies HS256 token pairs. It holds no mutable
// state and is safe for concurrent use.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenManager creates a token manager from the security config.
//
// The secret is copied into a []byte once; an empty secret is an error
// (config validation already enforces the 32 byte minimum).
func NewTokenManager(cfg *config.SecurityConfig) (*TokenManager, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but was empty")
	}
	if cfg.AccessTokenTTL <= 0 || cfg.RefreshTokenTTL <= 0 {
		return nil, fmt.Errorf("token lifetimes must be positive")
	}

	return &TokenManager{
		secret:     []byte(cfg.JWTSecret),
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		now:        time.Now,
	}, nil
}

// IssuePair signs a fresh access and refresh token for the account.
func (m *TokenManager) IssuePair(a *models.Account) (*TokenPair, error) {
	access, err := m.issue(a, TokenAccess, m.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := m.issue(a, TokenRefresh, m.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

func (m *TokenManager) issue(a *models.Account, typ TokenType, ttl time.Duration) (string, error) {
	now := m.now()
	claims := &Claims{
		Username: a.Username,
		Role:     string(a.Role),
		Type:     typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(a.ID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	TokensIssuedTotal.WithLabelValues(string(typ)).Inc()
	return signed, nil
}

// VerifyAccess validates an access token and returns its claims.
func (m *TokenManager) VerifyAccess(tokenString string) (*Claims, error) {
	return m.verify(tokenString, TokenAccess)
}

// VerifyRefresh validates a refresh token and returns its claims.
func (m *TokenManager) VerifyRefresh(tokenString string) (*Claims, error) {
	return m.verify(tokenString, TokenRefresh)
}

// verify checks signature, algorithm, expiry and not-before, then the
// token type. It has no side effects beyond metrics.
func (m *TokenManager) verify(tokenString string, want TokenType) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		TokenVerificationsTotal.WithLabelValues(string(want), "invalid").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		TokenVerificationsTotal.WithLabelValues(string(want), "invalid").Inc()
		return nil, ErrInvalidToken
	}
	if claims.Type != want {
		TokenVerificationsTotal.WithLabelValues(string(want), "wrong_type").Inc()
		return nil, fmt.Errorf("%w: got %q, want %q", ErrTokenType, claims.Type, want)
	}

	TokenVerificationsTotal.WithLabelValues(string(want), "valid").Inc()
	return claims, nil
}
