package newsletter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/willemschots/newsroom/internal/email"
	"github.com/willemschots/newsroom/internal/errorz"
	"github.com/willemschots/newsroom/internal/subscriber"
)

// Issue is a single newsletter issue.
type Issue struct {
	Title string `schema:"title"`
	HTML  string `schema:"content_html"`
	Text  string `schema:"content_text"`
}

func (i Issue) validate() error {
	var invalid errorz.InvalidInput

	if i.Title == "" {
		invalid = append(invalid, errorz.Keyed{Key: "title", Err: errors.New("is required")})
	}

	if i.HTML == "" {
		invalid = append(invalid, errorz.Keyed{Key: "content_html", Err: errors.New("is required")})
	}

	if i.Text == "" {
		invalid = append(invalid, errorz.Keyed{Key: "content_text", Err: errors.New("is required")})
	}

	if len(invalid) > 0 {
		return invalid
	}

	return nil
}

// SubscriberStore provides the recipients for an issue.
type SubscriberStore interface {
	FindSubscribers(ctx context.Context, filter *subscriber.SubscriberFilter) ([]subscriber.Subscriber, error)
}

// Service publishes newsletter issues to confirmed subscribers.
type Service struct {
	store  SubscriberStore
	sender email.Sender
	from   email.Address
	logger *slog.Logger
}

func NewService(store SubscriberStore, sender email.Sender, from email.Address, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		sender: sender,
		from:   from,
		logger: logger,
	}
}

// Publish sends the issue to every confirmed subscriber.
//
// A stored email address that no longer passes validation is logged and
// skipped, one bad row should not block the issue for everyone else. A
// failure to actually send is an error, the caller needs to know the
// issue only partially went out.
func (s *Service) Publish(ctx context.Context, issue Issue) error {
	if err := issue.validate(); err != nil {
		return err
	}

	subs, err := s.store.FindSubscribers(ctx, &subscriber.SubscriberFilter{
		Statuses: []subscriber.Status{subscriber.StatusConfirmed},
	})
	if err != nil {
		return fmt.Errorf("failed to find confirmed subscribers: %w", err)
	}

	msg := email.Message{
		Subject:  issue.Title,
		HTMLBody: issue.HTML,
		TextBody: issue.Text,
	}

	for _, sub := range subs {
		addr, err := email.ParseAddress(string(sub.Email))
		if err != nil {
			s.logger.Warn("skipping subscriber with invalid stored email",
				"subscriber_id", sub.ID,
				"error", err,
			)
			continue
		}

		if err := s.sender.Send(ctx, s.from, addr, msg); err != nil {
			return fmt.Errorf("failed to send issue to %s: %w", addr, err)
		}
	}

	return nil
}
