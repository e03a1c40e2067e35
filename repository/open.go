package repository

import (
	"fmt"
	"io"

	"bankingSystem/internal/config"
	"bankingSystem/internal/db"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open builds the AccountStore selected by cfg. The returned Closer releases any
// underlying database handle and is never nil.
func Open(cfg config.StorageConfig) (AccountStore, io.Closer, error) {
	switch cfg.Driver {
	case "", config.DriverFile:
		return NewFileStore(cfg.File), nopCloser{}, nil
	case config.DriverSQLite:
		d, err := db.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite %s: %w", cfg.SQLitePath, err)
		}
		return NewSQLiteStore(d), d, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
