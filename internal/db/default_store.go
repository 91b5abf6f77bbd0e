package db

import (
	"errors"
	"path/filepath"
	"sync"
)

var ErrDefaultStoreInitialized = errors.New("default store already initialized with another path")

var DefaultPath = filepath.Join("data", "clarity.db")

var (
	defaultMu    sync.Mutex
	defaultStore *Store
	defaultPath  string
)

// Init opens the process-wide store at path. Calling it again with the
// same path returns the existing store.
func Init(path string, options ...Option) (*Store, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultStore != nil {
		if defaultPath == path {
			return defaultStore, nil
		}
		return nil, ErrDefaultStoreInitialized
	}
	return openDefaultLocked(path, options...)
}

// Default returns the process-wide store, opening DefaultPath on first
// use when Init was never called.
func Default() (*Store, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultStore != nil {
		return defaultStore, nil
	}
	return openDefaultLocked(DefaultPath)
}

func CloseDefault() error {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultStore == nil {
		return nil
	}
	err := defaultStore.Close()
	defaultStore = nil
	defaultPath = ""
	return err
}

func openDefaultLocked(path string, options ...Option) (*Store, error) {
	store, err := Open(path, options...)
	if err != nil {
		return nil, err
	}
	defaultStore = store
	defaultPath = path
	return store, nil
}
