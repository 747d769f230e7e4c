package db

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/willemschots/newsroom/internal/db"
	"github.com/willemschots/newsroom/internal/email"
	"github.com/willemschots/newsroom/internal/errorz"
	"github.com/willemschots/newsroom/internal/krypto"
	"github.com/willemschots/newsroom/internal/subscriber"
)

type execFunc func(query string, params ...any) (sql.Result, error)
type queryFunc func(query string, params ...any) (*sql.Rows, error)

func insertSubscriber(ef execFunc, s *subscriber.Subscriber) error {
	if s.ID == uuid.Nil {
		return fmt.Errorf("zero uuid provided: %w", errorz.ErrConstraintViolated)
	}

	var q db.Query
	q.Unsafe(`INSERT INTO subscriptions (id, email, name, subscribed_at, status) VALUES (`)
	q.Params(s.ID, string(s.Email), string(s.Name), s.SubscribedAt, string(s.Status))
	q.Unsafe(`)`)

	query, params, err := q.Get()
	if err != nil {
		return err
	}

	_, err = ef(query, params...)
	if err != nil {
		return errorz.MapDBErr(err)
	}

	return nil
}

func insertToken(ef execFunc, token krypto.Token, subscriberID uuid.UUID) error {
	var q db.Query
	q.Unsafe(`INSERT INTO subscription_tokens (subscription_token, subscriber_id) VALUES (`)
	q.Params(token.String(), subscriberID)
	q.Unsafe(`)`)

	query, params, err := q.Get()
	if err != nil {
		return err
	}

	_, err = ef(query, params...)
	if err != nil {
		return errorz.MapDBErr(err)
	}

	return nil
}

func selectSubscribers(qf queryFunc, f *subscriber.SubscriberFilter) ([]subscriber.Subscriber, error) {
	var q db.Query
	q.Unsafe(`SELECT id, email, name, subscribed_at, status FROM subscriptions WHERE 1=1 `)

	if len(f.IDs) > 0 {
		q.Unsafe(`AND id IN (`)
		q.Params(anySlice(f.IDs)...)
		q.Unsafe(`) `)
	}

	if len(f.Statuses) > 0 {
		q.Unsafe(`AND status IN (`)
		q.Params(anySlice(f.Statuses)...)
		q.Unsafe(`) `)
	}

	q.Unsafe(`ORDER BY subscribed_at ASC`)

	query, params, err := q.Get()
	if err != nil {
		return nil, err
	}

	rows, err := qf(query, params...)
	if err != nil {
		return nil, errorz.MapDBErr(err)
	}

	defer rows.Close()

	out := make([]subscriber.Subscriber, 0)
	for rows.Next() {
		var (
			s      subscriber.Subscriber
			addr   string
			name   string
			status string
		)

		err := rows.Scan(&s.ID, &addr, &name, &s.SubscribedAt, &status)
		if err != nil {
			return nil, errorz.MapDBErr(err)
		}

		// Stored emails and names are not re-validated here. Rows
		// predating the current validation rules should still come
		// out, it's up to callers to decide how to handle them.
		s.Email = email.Address(addr)
		s.Name = subscriber.Name(name)

		s.Status, err = subscriber.ParseStatus(status)
		if err != nil {
			return nil, err
		}

		out = append(out, s)
	}

	if err := rows.Err(); err != nil {
		return nil, errorz.MapDBErr(err)
	}

	return out, nil
}

func selectSubscriberIDByToken(qf queryFunc, token krypto.Token) (uuid.UUID, error) {
	var q db.Query
	q.Unsafe(`SELECT subscriber_id FROM subscription_tokens WHERE subscription_token = `)
	q.Param(token.String())

	query, params, err := q.Get()
	if err != nil {
		return uuid.Nil, err
	}

	rows, err := qf(query, params...)
	if err != nil {
		return uuid.Nil, errorz.MapDBErr(err)
	}

	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return uuid.Nil, errorz.MapDBErr(err)
		}
		return uuid.Nil, fmt.Errorf("token not found: %w", errorz.ErrNotFound)
	}

	var id uuid.UUID
	if err := rows.Scan(&id); err != nil {
		return uuid.Nil, errorz.MapDBErr(err)
	}

	return id, rows.Err()
}

func updateSubscriberStatus(ef execFunc, id uuid.UUID, status subscriber.Status) error {
	var q db.Query
	q.Unsafe(`UPDATE subscriptions SET status = `)
	q.Param(string(status))
	q.Unsafe(` WHERE id = `)
	q.Param(id)

	query, params, err := q.Get()
	if err != nil {
		return err
	}

	result, err := ef(query, params...)
	if err != nil {
		return errorz.MapDBErr(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errorz.MapDBErr(err)
	}

	if rows == 0 {
		return fmt.Errorf("subscriber not found: %w", errorz.ErrNotFound)
	}

	return nil
}

func anySlice[T any](s []T) []any {
	out := make([]any, 0, len(s))
	for _, v := range s {
		out = append(out, v)
	}
	return out
}
