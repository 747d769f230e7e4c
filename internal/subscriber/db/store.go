package db

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/willemschots/newsroom/internal/krypto"
	"github.com/willemschots/newsroom/internal/subscriber"
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
func (s *Store) BeginTx(ctx context.Context) (subscriber.Tx, error) {
	tx, err := s.writeDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Tx{
		tx: tx,
	}, nil
}

// FindSubscribers queries for subscribers based on the provided filter.
// It returns an empty slice if no subscribers are found.
func (s *Store) FindSubscribers(ctx context.Context, filter *subscriber.SubscriberFilter) ([]subscriber.Subscriber, error) {
	return selectSubscribers(func(query string, params ...any) (*sql.Rows, error) {
		return s.readDB.QueryContext(ctx, query, params...)
	}, filter)
}

// SubscriberIDByToken resolves the subscriber a confirmation token was
// issued to. It returns errorz.ErrNotFound for unknown tokens.
func (s *Store) SubscriberIDByToken(ctx context.Context, token krypto.Token) (uuid.UUID, error) {
	return selectSubscriberIDByToken(func(query string, params ...any) (*sql.Rows, error) {
		return s.readDB.QueryContext(ctx, query, params...)
	}, token)
}

// ConfirmSubscriber marks the subscriber as confirmed. Confirming an
// already confirmed subscriber is a no-op.
func (s *Store) ConfirmSubscriber(ctx context.Context, id uuid.UUID) error {
	return updateSubscriberStatus(func(query string, params ...any) (sql.Result, error) {
		return s.writeDB.ExecContext(ctx, query, params...)
	}, id, subscriber.StatusConfirmed)
}
