package subscriber

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/willemschots/newsroom/internal/email"
	"github.com/willemschots/newsroom/internal/errorz"
	"github.com/willemschots/newsroom/internal/krypto"
)

// ErrUnknownToken indicates a confirmation token does not exist.
var ErrUnknownToken = errors.New("unknown subscription token")

// Emailer is used to send templated emails.
type Emailer interface {
	Send(ctx context.Context, template string, to email.Address, data any) error
}

// Service runs the subscription workflow.
type Service struct {
	store   Store
	emailer Emailer
	baseURL string

	// NowFunc is used to get the current time.
	// Exposed for testing purposes.
	NowFunc func() time.Time
}

func NewService(store Store, emailer Emailer, baseURL string) *Service {
	return &Service{
		store:   store,
		emailer: emailer,
		baseURL: baseURL,
		NowFunc: time.Now,
	}
}

// ConfirmationData is the data rendered into confirmation emails.
type ConfirmationData struct {
	Name            Name
	ConfirmationURL string
}

// Subscribe registers a new pending subscriber and sends them an email
// with a confirmation link.
//
// The subscriber and their confirmation token are stored in a single
// transaction. Either both exist afterwards or neither does, a token
// without a subscriber (or the reverse) would leave the confirmation
// flow permanently broken for that email address.
func (s *Service) Subscribe(ctx context.Context, ns NewSubscriber) error {
	if err := ns.validate(); err != nil {
		return err
	}

	token, err := krypto.GenerateToken()
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	sub := Subscriber{
		ID:           uuid.New(),
		Email:        ns.Email,
		Name:         ns.Name,
		SubscribedAt: s.NowFunc(),
		Status:       StatusPendingConfirmation,
	}

	err = s.inTx(ctx, func(tx Tx) error {
		if txErr := tx.CreateSubscriber(&sub); txErr != nil {
			return txErr
		}

		return tx.CreateToken(token, sub.ID)
	})
	if err != nil {
		return fmt.Errorf("failed to store subscriber: %w", err)
	}

	// The subscriber is committed at this point. If the email fails the
	// error is reported, but the subscription stands.
	err = s.emailer.Send(ctx, "subscription-confirmation", sub.Email, ConfirmationData{
		Name:            sub.Name,
		ConfirmationURL: s.confirmationURL(token),
	})
	if err != nil {
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}

	return nil
}

// Confirm marks the subscriber the token was issued to as confirmed.
// It returns ErrUnknownToken if the token does not exist. Confirming
// twice with the same token is not an error.
func (s *Service) Confirm(ctx context.Context, token krypto.Token) error {
	id, err := s.store.SubscriberIDByToken(ctx, token)
	if err != nil {
		if errors.Is(err, errorz.ErrNotFound) {
			return ErrUnknownToken
		}
		return fmt.Errorf("failed to resolve token: %w", err)
	}

	if err := s.store.ConfirmSubscriber(ctx, id); err != nil {
		return fmt.Errorf("failed to confirm subscriber: %w", err)
	}

	return nil
}

func (s *Service) confirmationURL(token krypto.Token) string {
	return fmt.Sprintf("%s/subscriptions/confirm?%s", s.baseURL, url.Values{
		"subscription_token": []string{token.String()},
	}.Encode())
}

func (s *Service) inTx(ctx context.Context, f func(tx Tx) error) error {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return err
	}

	err = f(tx)
	if err != nil {
		rBackErr := tx.Rollback()
		if rBackErr != nil {
			err = errors.Join(err, rBackErr)
		}
		return err
	}

	return tx.Commit()
}
