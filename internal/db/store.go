package db

import (
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"
)

var ErrStoreClosed = errors.New("store closed")

// Store is the persistence layer bound to one storage target. Each
// Store owns its connection and can be closed independently of others.
type Store struct {
	database *gorm.DB
	path     string
	now      func() time.Time

	migrations MigrationReport

	closeMu sync.Mutex
	closed  bool
}

type Option func(*Store)

// WithClock replaces the time source used for created/updated stamps.
func WithClock(now func() time.Time) Option {
	return func(store *Store) {
		if now != nil {
			store.now = now
		}
	}
}

func Open(path string, options ...Option) (*Store, error) {
	store := &Store{path: path, now: time.Now}
	for _, option := range options {
		option(store)
	}

	database, report, err := openSQLite(path, store.now)
	if err != nil {
		return nil, err
	}
	store.database = database
	store.migrations = report
	return store, nil
}

// MigrationReport describes the migration run performed when the store opened.
func (store *Store) MigrationReport() MigrationReport {
	return store.migrations
}

func (store *Store) Path() string {
	return store.path
}

func (store *Store) Close() error {
	store.closeMu.Lock()
	defer store.closeMu.Unlock()

	if store.closed {
		return ErrStoreClosed
	}
	sqlDB, err := store.database.DB()
	if err != nil {
		return err
	}
	store.closed = true
	return sqlDB.Close()
}

func (store *Store) timestamp() time.Time {
	return store.now().UTC()
}
