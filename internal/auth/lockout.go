// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/yamdb/internal/config"
	"github.com/tomtom215/yamdb/internal/logging"
)

// ErrLockoutNotFound is returned when a lockout entry doesn't exist.
var ErrLockoutNotFound = errors.New("lockout entry not found")

// entryRetention keeps unlocked entries around so the exponential backoff
// still sees recent lockouts.
const entryRetention = 24 * time.Hour

// LockoutEntry tracks failed confirmation attempts for one username.
type LockoutEntry struct {
	Subject        string    `json:"subject"`
	FailedAttempts int       `json:"failed_attempts"`
	LastAttempt    time.Time `json:"last_attempt"`
	LockoutCount   int       `json:"lockout_count"` // Number of times locked out (for exponential backoff)
	LockedUntil    time.Time `json:"locked_until"`
	LastFailedIP   string    `json:"last_failed_ip,omitempty"`
}

// IsLocked returns true if the entry is currently locked out.
func (e *LockoutEntry) IsLocked() bool {
	return time.Now().Before(e.LockedUntil)
}

// LockoutStore defines the interface for lockout state persistence.
type LockoutStore interface {
	GetEntry(ctx context.Context, subject string) (*LockoutEntry, error)
	SaveEntry(ctx context.Context, entry *LockoutEntry) error
	DeleteEntry(ctx context.Context, subject string) error
	ListLockedEntries(ctx context.Context) ([]*LockoutEntry, error)
	CleanupExpired(ctx context.Context) (int, error)
}

// AttemptResult describes the state after a failed attempt.
type AttemptResult struct {
	// Attempts is the number of consecutive failures, counting the one
	// that triggered a lockout.
	Attempts  int
	Locked    bool
	Remaining time.Duration
}

// LockoutManager throttles confirmation code guessing per username.
type LockoutManager struct {
	config config.LockoutConfig
	store  LockoutStore

	// mu serializes read-modify-write of entries.
	mu sync.Mutex
}

// NewLockoutManager creates a lockout manager. Zero config values fall back
// to 5 attempts, 15 minutes, a 24 hour cap and a 5 minute cleanup interval.
func NewLockoutManager(store LockoutStore, cfg config.LockoutConfig) *LockoutManager {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.Duration <= 0 {
		cfg.Duration = 15 * time.Minute
	}
	if cfg.MaxDuration <= 0 {
		cfg.MaxDuration = 24 * time.Hour
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}
	return &LockoutManager{config: cfg, store: store}
}

// NewLockoutFromConfig picks the badger store when a store path is set and
// the memory store otherwise.
func NewLockoutFromConfig(cfg config.LockoutConfig) (*LockoutManager, error) {
	if cfg.StorePath == "" {
		return NewLockoutManager(NewMemoryLockoutStore(), cfg), nil
	}
	store, err := OpenBadgerLockoutStore(cfg)
	if err != nil {
		return nil, err
	}
	return NewLockoutManager(store, cfg), nil
}

func lockoutKey(username string) string {
	return strings.ToLower(username)
}

// CheckLocked returns true if the username is currently locked out,
// with the time remaining.
func (m *LockoutManager) CheckLocked(ctx context.Context, username string) (bool, time.Duration, error) {
	if !m.config.Enabled {
		return false, 0, nil
	}

	entry, err := m.store.GetEntry(ctx, lockoutKey(username))
	if err != nil {
		if errors.Is(err, ErrLockoutNotFound) {
			return false, 0, nil
		}
		return false, 0, fmt.Errorf("check lockout: %w", err)
	}

	if !entry.IsLocked() {
		return false, 0, nil
	}
	return true, time.Until(entry.LockedUntil), nil
}

// calculateLockoutDuration computes the lockout duration with optional exponential backoff.
func calculateLockoutDuration(cfg *config.LockoutConfig, lockoutCount int) time.Duration {
	duration := cfg.Duration

	if !cfg.Exponential || lockoutCount == 0 {
		return duration
	}

	// Cap the shift; anything past 2^16 exceeds any sane maximum anyway.
	if lockoutCount > 16 {
		lockoutCount = 16
	}
	duration = time.Duration(int64(duration) * int64(1<<lockoutCount))

	if duration > cfg.MaxDuration {
		return cfg.MaxDuration
	}
	return duration
}

// ReserveAttempt counts an attempt before the code is compared. It returns
// a *LockedError without counting when the username is already locked. The
// attempt that reaches the limit applies the lock and is still allowed to
// proceed; a correct code then clears it through RecordSuccess. Concurrent
// guesses therefore cannot exceed MaxAttempts per lockout window.
func (m *LockoutManager) ReserveAttempt(ctx context.Context, username, ip string) (AttemptResult, error) {
	res, alreadyLocked, err := m.countAttempt(ctx, username, ip)
	if err != nil {
		return AttemptResult{}, err
	}
	if alreadyLocked {
		return res, &LockedError{RetryAfter: res.Remaining}
	}
	return res, nil
}

// countAttempt increments the failure count under m.mu. alreadyLocked
// reports an entry that was locked before this call; it is left unchanged.
func (m *LockoutManager) countAttempt(ctx context.Context, username, ip string) (res AttemptResult, alreadyLocked bool, err error) {
	if !m.config.Enabled {
		return AttemptResult{}, false, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	subject := lockoutKey(username)
	entry, err := m.store.GetEntry(ctx, subject)
	if err != nil && !errors.Is(err, ErrLockoutNotFound) {
		return AttemptResult{}, false, fmt.Errorf("get entry: %w", err)
	}
	if entry == nil {
		entry = &LockoutEntry{Subject: subject}
	}

	if entry.IsLocked() {
		return AttemptResult{Attempts: entry.FailedAttempts, Locked: true, Remaining: time.Until(entry.LockedUntil)}, true, nil
	}

	now := time.Now()
	entry.FailedAttempts++
	entry.LastAttempt = now
	entry.LastFailedIP = ip
	attempts := entry.FailedAttempts

	if entry.FailedAttempts < m.config.MaxAttempts {
		if err := m.store.SaveEntry(ctx, entry); err != nil {
			return AttemptResult{}, false, fmt.Errorf("save entry: %w", err)
		}
		return AttemptResult{Attempts: attempts}, false, nil
	}

	duration := calculateLockoutDuration(&m.config, entry.LockoutCount)
	entry.LockedUntil = now.Add(duration)
	entry.LockoutCount++
	entry.FailedAttempts = 0

	if err := m.store.SaveEntry(ctx, entry); err != nil {
		return AttemptResult{}, false, fmt.Errorf("save locked entry: %w", err)
	}

	LockoutsTotal.Inc()
	logging.Warn().
		Str("subject", logging.SanitizeValue(subject)).
		Dur("duration", duration).
		Int("lockout_count", entry.LockoutCount).
		Msg("Activation locked")

	return AttemptResult{Attempts: attempts, Locked: true, Remaining: duration}, false, nil
}

// RecordSuccess clears the lockout state for a username.
func (m *LockoutManager) RecordSuccess(ctx context.Context, username string) error {
	if !m.config.Enabled {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.DeleteEntry(ctx, lockoutKey(username)); err != nil && !errors.Is(err, ErrLockoutNotFound) {
		return fmt.Errorf("clear lockout: %w", err)
	}
	return nil
}

// LockedEntries returns all currently locked usernames.
func (m *LockoutManager) LockedEntries(ctx context.Context) ([]*LockoutEntry, error) {
	entries, err := m.store.ListLockedEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list locked: %w", err)
	}

	var locked []*LockoutEntry
	for _, entry := range entries {
		if entry.IsLocked() {
			locked = append(locked, entry)
		}
	}
	return locked, nil
}

// performCleanup executes a cleanup operation and logs the result.
func (m *LockoutManager) performCleanup(ctx context.Context) {
	m.mu.Lock()
	count, err := m.store.CleanupExpired(ctx)
	m.mu.Unlock()

	if err != nil {
		logging.Error().Err(err).Msg("Lockout cleanup error")
		return
	}
	if count > 0 {
		LockoutCleanupTotal.Add(float64(count))
		logging.Info().Int("count", count).Msg("Cleaned up expired lockout entries")
	}

	locked, err := m.LockedEntries(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("Lockout listing error")
		return
	}
	LockedAccounts.Set(float64(len(locked)))
}

// Serve prunes expired entries until ctx is canceled. It implements
// suture.Service.
func (m *LockoutManager) Serve(ctx context.Context) error {
	ticker := time.NewTicker(m.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.performCleanup(ctx)
		}
	}
}

func (m *LockoutManager) String() string {
	return "lockout-cleanup"
}

// Close releases the store if it holds resources.
func (m *LockoutManager) Close() error {
	if c, ok := m.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// MemoryLockoutStore implements LockoutStore using in-memory storage.
// Suitable for development and single-instance deployments.
type MemoryLockoutStore struct {
	entries map[string]*LockoutEntry
	mu      sync.RWMutex
}

// NewMemoryLockoutStore creates a new in-memory lockout store.
func NewMemoryLockoutStore() *MemoryLockoutStore {
	return &MemoryLockoutStore{
		entries: make(map[string]*LockoutEntry),
	}
}

func (s *MemoryLockoutStore) GetEntry(ctx context.Context, subject string) (*LockoutEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[subject]
	if !ok {
		return nil, ErrLockoutNotFound
	}
	return copyEntry(entry), nil
}

func (s *MemoryLockoutStore) SaveEntry(ctx context.Context, entry *LockoutEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[entry.Subject] = copyEntry(entry)
	return nil
}

func (s *MemoryLockoutStore) DeleteEntry(ctx context.Context, subject string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[subject]; !ok {
		return ErrLockoutNotFound
	}
	delete(s.entries, subject)
	return nil
}

func copyEntry(entry *LockoutEntry) *LockoutEntry {
	copied := *entry
	return &copied
}

func (s *MemoryLockoutStore) ListLockedEntries(ctx context.Context) ([]*LockoutEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var locked []*LockoutEntry
	now := time.Now()
	for _, entry := range s.entries {
		if now.Before(entry.LockedUntil) {
			locked = append(locked, copyEntry(entry))
		}
	}
	return locked, nil
}

// shouldCleanupEntry determines if an entry is eligible for cleanup.
func shouldCleanupEntry(entry *LockoutEntry, expireThreshold time.Time) bool {
	return !entry.IsLocked() && entry.LastAttempt.Before(expireThreshold)
}

func (s *MemoryLockoutStore) CleanupExpired(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expireThreshold := time.Now().Add(-entryRetention)

	count := 0
	for subject, entry := range s.entries {
		if shouldCleanupEntry(entry, expireThreshold) {
			delete(s.entries, subject)
			count++
		}
	}
	return count, nil
}
