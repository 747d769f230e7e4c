package subscriber

import (
	"context"

	"github.com/google/uuid"
	"github.com/willemschots/newsroom/internal/krypto"
)

// SubscriberFilter is used to filter subscribers.
// Returned subscribers must match all the provided fields.
// If a field is empty or nil, it's ignored.
type SubscriberFilter struct {
	IDs      []uuid.UUID
	Statuses []Status
}

// Store provides access to the subscriber store.
type Store interface {
	BeginTx(ctx context.Context) (Tx, error)

	FindSubscribers(ctx context.Context, filter *SubscriberFilter) ([]Subscriber, error)

	// SubscriberIDByToken resolves the subscriber a confirmation token
	// was issued to. It returns errorz.ErrNotFound for unknown tokens.
	SubscriberIDByToken(ctx context.Context, token krypto.Token) (uuid.UUID, error)

	// ConfirmSubscriber marks the subscriber as confirmed. Confirming
	// an already confirmed subscriber is a no-op.
	ConfirmSubscriber(ctx context.Context, id uuid.UUID) error
}

// Tx is a transaction. If an error occurs on any of the Create methods,
// the transaction is considered to have failed and should be rolled back.
// Tx is not safe for concurrent use.
type Tx interface {
	Commit() error
	Rollback() error

	CreateSubscriber(s *Subscriber) error
	CreateToken(token krypto.Token, subscriberID uuid.UUID) error
}
