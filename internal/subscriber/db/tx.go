package db

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/willemschots/newsroom/internal/krypto"
	"github.com/willemschots/newsroom/internal/subscriber"
)

type Tx struct {
	tx *sql.Tx
}

func (t *Tx) Commit() error {
	return t.tx.Commit()
}

func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}

// CreateSubscriber creates a subscriber in the database.
func (t *Tx) CreateSubscriber(s *subscriber.Subscriber) error {
	return insertSubscriber(t.tx.Exec, s)
}

// CreateToken stores a confirmation token for the given subscriber.
func (t *Tx) CreateToken(token krypto.Token, subscriberID uuid.UUID) error {
	return insertToken(t.tx.Exec, token, subscriberID)
}
