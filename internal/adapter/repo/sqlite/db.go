// Package sqliterepo keeps the run journal in an embedded SQLite file.
package sqliterepo

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite connection holding the run registry and event journal.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates the database at path and applies the schema.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS simulation_runs (
		run_id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		start_year_tick INTEGER NOT NULL,
		last_tick INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		started_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tick_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES simulation_runs(run_id) ON DELETE CASCADE,
		tick INTEGER NOT NULL,
		seq INTEGER NOT NULL,
		type TEXT NOT NULL,
		occurred_at TIMESTAMP NOT NULL,
		payload TEXT NOT NULL,
		UNIQUE (run_id, seq)
	);

	CREATE INDEX IF NOT EXISTS idx_tick_events_run_tick ON tick_events(run_id, tick);
	`
	_, err := db.conn.Exec(schema)
	return err
}

type txKeyType struct{}

var txKey = txKeyType{}

// ext returns the transaction bound to ctx, or the pool.
func (db *DB) ext(ctx context.Context) sqlx.ExtContext {
	if tx, ok := ctx.Value(txKey).(*sqlx.Tx); ok && tx != nil {
		return tx
	}
	return db.conn
}

type TxManager struct {
	db *DB
}

func NewTxManager(db *DB) TxManager {
	return TxManager{db: db}
}

func (t TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey).(*sqlx.Tx); ok {
		return fn(ctx)
	}
	tx, err := t.db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := fn(context.WithValue(ctx, txKey, tx)); err != nil {
		return err
	}
	return tx.Commit()
}
