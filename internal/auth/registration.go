// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/yamdb/internal/audit"
	"github.com/tomtom215/yamdb/internal/database"
	"github.com/tomtom215/yamdb/internal/logging"
	"github.com/tomtom215/yamdb/internal/models"
	"github.com/tomtom215/yamdb/internal/notify"
)

var (
	ErrReservedUsername = errors.New("username is reserved")
	ErrEmailMismatch    = errors.New("email does not match the registered address")
	ErrAlreadyExists    = errors.New("username or email already exists")
	ErrInvalidCode      = errors.New("invalid confirmation code")
	ErrActivationLocked = errors.New("too many failed attempts")
)

// LockedError carries the time until activation is allowed again.
// errors.Is(err, ErrActivationLocked) holds for it.
type LockedError struct {
	RetryAfter time.Duration
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("%s, retry in %s", ErrActivationLocked, e.RetryAfter.Round(time.Second))
}

func (e *LockedError) Is(target error) bool {
	return target == ErrActivationLocked
}

const (
	codeMin = 1000
	codeMax = 9999
)

// AccountStore is the storage the credential flow needs.
type AccountStore interface {
	GetAccountByID(ctx context.Context, id int64) (*models.Account, error)
	GetAccountByUsername(ctx context.Context, username string) (*models.Account, error)
	CreateAccount(ctx context.Context, a *models.Account) error
	SetConfirmationHash(ctx context.Context, id int64, hash string) error
	ActivateAccount(ctx context.Context, id int64) error
}

// Service runs the two-step sign-up: Register sends a code, Activate
// exchanges it for a token pair.
type Service struct {
	accounts AccountStore
	tokens   *TokenManager
	channel  notify.Channel
	lockout  *LockoutManager
	audit    *audit.Logger
	subject  string

	hashCost int
	newCode  func() (string, error)
}

// NewService wires the credential flow. lockout and auditLog may be nil.
func NewService(accounts AccountStore, tokens *TokenManager, channel notify.Channel,
	lockout *LockoutManager, auditLog *audit.Logger, subject string) *Service {
	if subject == "" {
		subject = "Confirmation code"
	}
	return &Service{
		accounts: accounts,
		tokens:   tokens,
		channel:  channel,
		lockout:  lockout,
		audit:    auditLog,
		subject:  subject,
		hashCost: bcrypt.DefaultCost,
		newCode:  generateCode,
	}
}

// generateCode returns a uniformly random code in [1000, 9999].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+codeMin), nil
}

// Register creates an unconfirmed account, or re-sends a code to an
// existing one when the email matches, and delivers a fresh confirmation
// code. The code hash is stored only once delivery succeeded, so a failed
// delivery leaves any earlier code in place.
func (s *Service) Register(ctx context.Context, username, email string) (*models.Account, error) {
	if models.IsReservedUsername(username) {
		RegistrationsTotal.WithLabelValues("reserved").Inc()
		return nil, ErrReservedUsername
	}

	account, resent, err := s.findOrCreate(ctx, username, email)
	if err != nil {
		return nil, err
	}

	code, err := s.newCode()
	if err != nil {
		RegistrationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	body := fmt.Sprintf("Your confirmation code: %s", code)
	if err := s.channel.Deliver(ctx, account.Email, s.subject, body); err != nil {
		RegistrationsTotal.WithLabelValues("delivery_failed").Inc()
		logging.Ctx(ctx).Warn().Err(err).
			Str("username", logging.SanitizeValue(account.Username)).
			Msg("Confirmation code delivery failed")
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), s.hashCost)
	if err != nil {
		RegistrationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("hash code: %w", err)
	}
	if err := s.accounts.SetConfirmationHash(ctx, account.ID, string(hash)); err != nil {
		RegistrationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("store code: %w", err)
	}

	if resent {
		RegistrationsTotal.WithLabelValues("resent").Inc()
	} else {
		RegistrationsTotal.WithLabelValues("created").Inc()
	}
	s.audit.LogRegistered(ctx, account.Username, resent)
	logging.Ctx(ctx).Info().
		Str("username", logging.SanitizeValue(account.Username)).
		Bool("resent", resent).
		Msg("Confirmation code sent")

	return account, nil
}

// findOrCreate returns the existing account for username when its email
// matches, or inserts a new one. resent reports the first case.
func (s *Service) findOrCreate(ctx context.Context, username, email string) (account *models.Account, resent bool, err error) {
	existing, err := s.accounts.GetAccountByUsername(ctx, username)
	switch {
	case err == nil:
		if !strings.EqualFold(existing.Email, email) {
			RegistrationsTotal.WithLabelValues("email_mismatch").Inc()
			return nil, false, ErrEmailMismatch
		}
		return existing, true, nil
	case !errors.Is(err, database.ErrNotFound):
		RegistrationsTotal.WithLabelValues("error").Inc()
		return nil, false, err
	}

	account = &models.Account{Username: username, Email: email, Role: models.RoleUser}
	if err := s.accounts.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, database.ErrConflict) {
			RegistrationsTotal.WithLabelValues("conflict").Inc()
			return nil, false, ErrAlreadyExists
		}
		RegistrationsTotal.WithLabelValues("error").Inc()
		return nil, false, err
	}
	return account, false, nil
}

// Activate checks a confirmation code and, on success, activates the
// account, consumes the code and issues a token pair.
func (s *Service) Activate(ctx context.Context, username, code string) (*TokenPair, error) {
	account, err := s.accounts.GetAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			ActivationsTotal.WithLabelValues("not_found").Inc()
		} else {
			ActivationsTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	// The attempt is counted before the slow compare so parallel guesses
	// see each other.
	var attempt AttemptResult
	if s.lockout != nil {
		attempt, err = s.lockout.ReserveAttempt(ctx, account.Username, audit.SourceFromContext(ctx).IPAddress)
		var lockedErr *LockedError
		switch {
		case errors.As(err, &lockedErr):
			ActivationsTotal.WithLabelValues("locked").Inc()
			return nil, lockedErr
		case err != nil:
			ActivationsTotal.WithLabelValues("error").Inc()
			return nil, err
		}
	}

	if account.ConfirmationHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(account.ConfirmationHash), []byte(code)) != nil {
		return nil, s.recordFailure(ctx, account, attempt)
	}

	if s.lockout != nil {
		if err := s.lockout.RecordSuccess(ctx, account.Username); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Failed to clear lockout entry")
		}
	}
	if err := s.accounts.ActivateAccount(ctx, account.ID); err != nil {
		ActivationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	account.IsActive = true
	account.ConfirmationHash = ""

	pair, err := s.tokens.IssuePair(account)
	if err != nil {
		ActivationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	ActivationsTotal.WithLabelValues("success").Inc()
	s.audit.LogActivated(ctx, account)
	return pair, nil
}

func (s *Service) recordFailure(ctx context.Context, account *models.Account, attempt AttemptResult) error {
	ActivationsTotal.WithLabelValues("invalid_code").Inc()

	s.audit.LogActivationFailed(ctx, account.Username, attempt.Attempts)
	if attempt.Locked {
		s.audit.LogLocked(ctx, account.Username, attempt.Remaining, attempt.Attempts)
	}
	return ErrInvalidCode
}

// Refresh exchanges a refresh token for a new pair built from the stored
// account, so role changes since issuance take effect.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}
	id, err := claims.AccountID()
	if err != nil {
		return nil, err
	}

	account, err := s.accounts.GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%w: account no longer exists", ErrInvalidToken)
		}
		return nil, err
	}
	return s.tokens.IssuePair(account)
}
