package db

import (
	"context"
	"database/sql"

	"github.com/willemschots/newsroom/internal/auth"
)

// Store is responsible for interacting with a database.
//
// Writes go through the write handle, reads through the read handle.
// See db.OpenSQLite for why these are separate.
type Store struct {
	writeDB *sql.DB
	readDB  *sql.DB
}

// New creates a new Store.
func New(writeDB, readDB *sql.DB) *Store {
	return &Store{
		writeDB: writeDB,
		readDB:  readDB,
	}
}

// BeginTx starts a new transaction.
func (s *Store) BeginTx(ctx context.Context) (auth.Tx, error) {
	tx, err := s.writeDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Tx{
		tx: tx,
	}, nil
}

// FindUsers queries for users outside of a transaction.
// It returns an empty slice if no users are found.
func (s *Store) FindUsers(ctx context.Context, filter *auth.UserFilter) ([]auth.User, error) {
	return selectUsers(func(query string, params ...any) (*sql.Rows, error) {
		return s.readDB.QueryContext(ctx, query, params...)
	}, filter)
}
