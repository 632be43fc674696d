package postgres

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/andresuchdata/stockweeks/internal/config"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
)

type DB struct {
	*sqlx.DB
	sem *semaphore.Weighted
}

var (
	dbInstance *DB
	dbErr      error
	once       sync.Once
)

// NewDB creates the process-wide lib/pq connection pool.
func NewDB(cfg *config.DatabaseConfig) (*DB, error) {
	once.Do(func() {
		dbInstance, dbErr = Connect("postgres", cfg.DSN(), cfg.MaxConcurrency)
	})

	return dbInstance, dbErr
}

// Connect opens a pool on driverName ("postgres" for lib/pq, "pgx" for the
// pgx stdlib driver) and verifies it with a ping.
func Connect(driverName, dsn string, maxConcurrency int64) (*DB, error) {
	db, err := sqlx.Connect(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driverName, err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if maxConcurrency <= 0 {
		maxConcurrency = 10
	}
	return Wrap(db, maxConcurrency), nil
}

// Wrap limits concurrent operations on an existing connection pool.
func Wrap(db *sqlx.DB, maxConcurrency int64) *DB {
	return &DB{DB: db, sem: semaphore.NewWeighted(maxConcurrency)}
}

// Acquire reserves one operation slot. Call the returned func to release it.
func (db *DB) Acquire(ctx context.Context) (func(), error) {
	if err := db.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("could not acquire semaphore: %w", err)
	}
	return func() { db.sem.Release(1) }, nil
}

// WithTx executes a function within a transaction
func (db *DB) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	release, err := db.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("could not rollback transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	return nil
}
