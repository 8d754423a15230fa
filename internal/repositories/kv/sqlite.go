package kv

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/winvault/internal/dbx"
)

// SQLiteStore is the Store backed by a *sql.DB. Plain reads and writes run
// in autocommit mode; Batch wraps its callback in a transaction.
type SQLiteStore struct {
	*SQLiteRepository
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{SQLiteRepository: NewSQLiteRepository(db), db: db}
}

func (s *SQLiteStore) Batch(ctx context.Context, fn func(ctx context.Context, r Repository) error) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, NewSQLiteRepository(tx))
	})
}
