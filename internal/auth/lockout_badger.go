// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/yamdb/internal/config"
)

const lockoutKeyPrefix = "lockout:"

// BadgerLockoutStore implements LockoutStore using BadgerDB so lockouts
// survive a restart.
type BadgerLockoutStore struct {
	db    *badger.DB
	owned bool
}

// NewBadgerLockoutStore wraps an already open database. Close leaves it open.
func NewBadgerLockoutStore(db *badger.DB) *BadgerLockoutStore {
	return &BadgerLockoutStore{db: db}
}

// OpenBadgerLockoutStore opens a BadgerDB at cfg.StorePath.
func OpenBadgerLockoutStore(cfg config.LockoutConfig) (*BadgerLockoutStore, error) {
	opts := badger.DefaultOptions(cfg.StorePath)
	opts.Logger = nil // Suppress BadgerDB logs
	opts.SyncWrites = cfg.StoreSyncOnWrite
	if cfg.StoreValueLogBytes > 0 {
		opts.ValueLogFileSize = cfg.StoreValueLogBytes
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for lockouts: %w", err)
	}
	return &BadgerLockoutStore{db: db, owned: true}, nil
}

// GetEntry retrieves a lockout entry by subject.
func (s *BadgerLockoutStore) GetEntry(ctx context.Context, subject string) (*LockoutEntry, error) {
	var entry LockoutEntry

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(lockoutKeyPrefix + subject))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrLockoutNotFound
		}
		if err != nil {
			return fmt.Errorf("get lockout: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// SaveEntry persists an entry with a TTL so badger drops it on its own once
// it is past retention.
func (s *BadgerLockoutStore) SaveEntry(ctx context.Context, entry *LockoutEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal lockout: %w", err)
	}

	expires := entry.LastAttempt
	if entry.LockedUntil.After(expires) {
		expires = entry.LockedUntil
	}
	ttl := time.Until(expires.Add(entryRetention))
	if ttl <= 0 {
		ttl = time.Minute
	}

	return s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(lockoutKeyPrefix+entry.Subject), data).WithTTL(ttl)
		return txn.SetEntry(e)
	})
}

// DeleteEntry removes a lockout entry.
func (s *BadgerLockoutStore) DeleteEntry(ctx context.Context, subject string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		key := []byte(lockoutKeyPrefix + subject)
		if _, err := txn.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
			return ErrLockoutNotFound
		} else if err != nil {
			return fmt.Errorf("get lockout: %w", err)
		}
		return txn.Delete(key)
	})
}

// scan calls fn for every decodable entry.
func (s *BadgerLockoutStore) scan(fn func(*LockoutEntry)) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(lockoutKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var entry LockoutEntry
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			})
			if err != nil {
				continue
			}
			fn(&entry)
		}
		return nil
	})
}

// ListLockedEntries returns all entries that are currently locked.
func (s *BadgerLockoutStore) ListLockedEntries(ctx context.Context) ([]*LockoutEntry, error) {
	var locked []*LockoutEntry
	err := s.scan(func(e *LockoutEntry) {
		if e.IsLocked() {
			locked = append(locked, e)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("scan lockouts: %w", err)
	}
	return locked, nil
}

// CleanupExpired removes entries past retention that the TTL has not
// reclaimed yet.
func (s *BadgerLockoutStore) CleanupExpired(ctx context.Context) (int, error) {
	threshold := time.Now().Add(-entryRetention)

	var expired []string
	err := s.scan(func(e *LockoutEntry) {
		if shouldCleanupEntry(e, threshold) {
			expired = append(expired, e.Subject)
		}
	})
	if err != nil {
		return 0, fmt.Errorf("scan lockouts: %w", err)
	}

	count := 0
	for _, subject := range expired {
		if err := s.DeleteEntry(ctx, subject); err != nil {
			continue
		}
		count++
	}
	return count, nil
}

// Close closes the database if this store opened it.
func (s *BadgerLockoutStore) Close() error {
	if s.owned {
		return s.db.Close()
	}
	return nil
}
