// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/yamdb/internal/config"
)

func testLockoutConfig() config.LockoutConfig {
	return config.LockoutConfig{
		Enabled:     true,
		MaxAttempts: 3,
		Duration:    5 * time.Minute,
		MaxDuration: time.Hour,
	}
}

func newBadgerTestStore(t *testing.T) *BadgerLockoutStore {
	t.Helper()
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		t.Fatalf("badger.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewBadgerLockoutStore(db)
}

// lockoutStores runs a test against both store implementations.
func lockoutStores(t *testing.T, fn func(t *testing.T, store LockoutStore)) {
	t.Run("memory", func(t *testing.T) { fn(t, NewMemoryLockoutStore()) })
	t.Run("badger", func(t *testing.T) { fn(t, newBadgerTestStore(t)) })
}

func TestLockoutManager_ReserveAttempt(t *testing.T) {
	lockoutStores(t, func(t *testing.T, store LockoutStore) {
		manager := NewLockoutManager(store, testLockoutConfig())
		ctx := context.Background()

		for i := 1; i < 3; i++ {
			res, err := manager.ReserveAttempt(ctx, "alice", "10.0.0.1")
			if err != nil {
				t.Fatalf("attempt %d: unexpected error: %v", i, err)
			}
			if res.Locked {
				t.Fatalf("locked after %d attempts", i)
			}
			if res.Attempts != i {
				t.Errorf("Attempts = %d, want %d", res.Attempts, i)
			}
		}

		res, err := manager.ReserveAttempt(ctx, "alice", "10.0.0.1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !res.Locked || res.Remaining <= 0 || res.Attempts != 3 {
			t.Errorf("third attempt = %+v, want locked", res)
		}

		if _, err := manager.ReserveAttempt(ctx, "bob", ""); err != nil {
			t.Fatal(err)
		}
		locked, err := manager.LockedEntries(ctx)
		if err != nil {
			t.Fatalf("LockedEntries() error = %v", err)
		}
		if len(locked) != 1 || locked[0].Subject != "alice" {
			t.Errorf("LockedEntries() = %+v, want only alice", locked)
		}
	})
}

func TestLockoutManager_ReserveAttemptRefusedWhileLocked(t *testing.T) {
	lockoutStores(t, func(t *testing.T, store LockoutStore) {
		manager := NewLockoutManager(store, testLockoutConfig())
		ctx := context.Background()

		for i := 1; i <= 3; i++ {
			res, err := manager.ReserveAttempt(ctx, "alice", "")
			if err != nil {
				t.Fatalf("reservation %d: error = %v", i, err)
			}
			if res.Locked != (i == 3) {
				t.Errorf("reservation %d: Locked = %v", i, res.Locked)
			}
		}

		res, err := manager.ReserveAttempt(ctx, "ALICE", "")
		var le *LockedError
		if !errors.As(err, &le) || le.RetryAfter <= 0 {
			t.Fatalf("ReserveAttempt() on locked subject = %+v, %v; want *LockedError", res, err)
		}

		// A refused reservation does not extend the lock.
		entry, err := store.GetEntry(ctx, "alice")
		if err != nil {
			t.Fatal(err)
		}
		if entry.LockoutCount != 1 {
			t.Errorf("LockoutCount = %d, want 1", entry.LockoutCount)
		}

		if err := manager.RecordSuccess(ctx, "alice"); err != nil {
			t.Fatal(err)
		}
		if _, err := manager.ReserveAttempt(ctx, "alice", ""); err != nil {
			t.Errorf("ReserveAttempt() after success = %v", err)
		}
	})
}

func TestLockoutManager_CaseInsensitiveSubject(t *testing.T) {
	manager := NewLockoutManager(NewMemoryLockoutStore(), testLockoutConfig())
	ctx := context.Background()

	for _, name := range []string{"alice", "ALICE", "Alice"} {
		if _, err := manager.ReserveAttempt(ctx, name, ""); err != nil {
			t.Fatal(err)
		}
	}

	locked, remaining, err := manager.CheckLocked(ctx, "aLiCe")
	if err != nil {
		t.Fatal(err)
	}
	if !locked || remaining <= 0 {
		t.Errorf("CheckLocked() = %v, %v; want locked", locked, remaining)
	}
}

func TestLockoutManager_RecordSuccessClears(t *testing.T) {
	lockoutStores(t, func(t *testing.T, store LockoutStore) {
		manager := NewLockoutManager(store, testLockoutConfig())
		ctx := context.Background()

		for i := 0; i < 3; i++ {
			if _, err := manager.ReserveAttempt(ctx, "alice", ""); err != nil {
				t.Fatal(err)
			}
		}
		if locked, _, _ := manager.CheckLocked(ctx, "alice"); !locked {
			t.Fatal("expected lock")
		}

		if err := manager.RecordSuccess(ctx, "alice"); err != nil {
			t.Fatalf("RecordSuccess() error = %v", err)
		}
		if locked, _, _ := manager.CheckLocked(ctx, "alice"); locked {
			t.Error("still locked after RecordSuccess")
		}
		// Clearing twice is not an error.
		if err := manager.RecordSuccess(ctx, "alice"); err != nil {
			t.Errorf("second RecordSuccess() error = %v", err)
		}
	})
}

func TestLockoutManager_Disabled(t *testing.T) {
	cfg := testLockoutConfig()
	cfg.Enabled = false
	manager := NewLockoutManager(NewMemoryLockoutStore(), cfg)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		res, err := manager.ReserveAttempt(ctx, "alice", "")
		if err != nil || res.Locked {
			t.Fatalf("disabled manager locked: %+v, %v", res, err)
		}
	}
	if locked, _, _ := manager.CheckLocked(ctx, "alice"); locked {
		t.Error("disabled manager reports a lock")
	}
}

func TestCalculateLockoutDuration(t *testing.T) {
	cfg := config.LockoutConfig{Duration: 15 * time.Minute, MaxDuration: 24 * time.Hour, Exponential: true}

	tests := []struct {
		count int
		want  time.Duration
	}{
		{0, 15 * time.Minute},
		{1, 30 * time.Minute},
		{2, time.Hour},
		{6, 16 * time.Hour},
		{7, 24 * time.Hour},
		{64, 24 * time.Hour},
	}
	for _, tt := range tests {
		if got := calculateLockoutDuration(&cfg, tt.count); got != tt.want {
			t.Errorf("calculateLockoutDuration(%d) = %v, want %v", tt.count, got, tt.want)
		}
	}

	cfg.Exponential = false
	if got := calculateLockoutDuration(&cfg, 5); got != 15*time.Minute {
		t.Errorf("linear duration = %v, want 15m", got)
	}
}

func TestLockoutStores_Cleanup(t *testing.T) {
	lockoutStores(t, func(t *testing.T, store LockoutStore) {
		ctx := context.Background()
		old := time.Now().Add(-48 * time.Hour)

		entries := []*LockoutEntry{
			{Subject: "stale", FailedAttempts: 1, LastAttempt: old},
			{Subject: "recent", FailedAttempts: 1, LastAttempt: time.Now()},
			{Subject: "locked", LastAttempt: old, LockedUntil: time.Now().Add(time.Hour)},
		}
		for _, e := range entries {
			if err := store.SaveEntry(ctx, e); err != nil {
				t.Fatalf("SaveEntry(%s) error = %v", e.Subject, err)
			}
		}

		n, err := store.CleanupExpired(ctx)
		if err != nil {
			t.Fatalf("CleanupExpired() error = %v", err)
		}
		if n > 1 {
			t.Errorf("CleanupExpired() removed %d, want at most 1", n)
		}
		if _, err := store.GetEntry(ctx, "stale"); !errors.Is(err, ErrLockoutNotFound) {
			t.Errorf("stale entry survived: %v", err)
		}
		for _, subject := range []string{"recent", "locked"} {
			if _, err := store.GetEntry(ctx, subject); err != nil {
				t.Errorf("%s entry removed: %v", subject, err)
			}
		}

		locked, err := store.ListLockedEntries(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(locked) != 1 || locked[0].Subject != "locked" {
			t.Errorf("ListLockedEntries() = %+v", locked)
		}
	})
}

func TestLockoutManager_Serve(t *testing.T) {
	cfg := testLockoutConfig()
	cfg.CleanupInterval = 10 * time.Millisecond
	store := NewMemoryLockoutStore()
	manager := NewLockoutManager(store, cfg)

	ctx := context.Background()
	if err := store.SaveEntry(ctx, &LockoutEntry{Subject: "stale", LastAttempt: time.Now().Add(-48 * time.Hour)}); err != nil {
		t.Fatal(err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- manager.Serve(runCtx) }()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := store.GetEntry(ctx, "stale"); errors.Is(err, ErrLockoutNotFound) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
	if _, err := store.GetEntry(ctx, "stale"); !errors.Is(err, ErrLockoutNotFound) {
		t.Error("cleanup loop did not prune the stale entry")
	}
	if manager.String() != "lockout-cleanup" {
		t.Errorf("String() = %q", manager.String())
	}
}
