package subscriber

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/willemschots/newsroom/internal/email"
	"github.com/willemschots/newsroom/internal/errorz"
)

// ErrInvalidName indicates a subscriber name is not valid.
var ErrInvalidName = errors.New("invalid subscriber name")

const maxNameRunes = 256

// forbiddenNameRunes are rejected to keep names out of injection
// territory when they end up in emails or markup.
const forbiddenNameRunes = `/()"<>\{}`

// Name is the name of a subscriber.
type Name string

// ParseName validates the given string as a subscriber name. Names must
// be non-empty after trimming, at most 256 characters long and may not
// contain any of the forbidden characters.
func ParseName(raw string) (Name, error) {
	if strings.TrimSpace(raw) == "" {
		return Name(""), ErrInvalidName
	}

	if utf8.RuneCountInString(raw) > maxNameRunes {
		return Name(""), ErrInvalidName
	}

	if strings.ContainsAny(raw, forbiddenNameRunes) {
		return Name(""), ErrInvalidName
	}

	return Name(raw), nil
}

func (n *Name) UnmarshalText(text []byte) error {
	name, err := ParseName(string(text))
	if err != nil {
		return err
	}

	*n = name

	return nil
}

// Status indicates where a subscriber is in the confirmation flow.
type Status string

const (
	StatusPendingConfirmation Status = "pending_confirmation"
	StatusConfirmed           Status = "confirmed"
)

var ErrInvalidStatus = errors.New("invalid subscriber status")

// ParseStatus validates a raw status as it comes out of the database.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusPendingConfirmation, StatusConfirmed:
		return Status(raw), nil
	}

	return Status(""), ErrInvalidStatus
}

// Subscriber is someone who signed up for the newsletter.
type Subscriber struct {
	ID           uuid.UUID
	Email        email.Address
	Name         Name
	SubscribedAt time.Time
	Status       Status
}

// NewSubscriber is a request to subscribe to the newsletter.
type NewSubscriber struct {
	Email email.Address `schema:"email"`
	Name  Name          `schema:"name"`
}

// validate catches fields that were never set. Values that were set go
// through the parse functions when they are decoded.
func (ns NewSubscriber) validate() error {
	var invalid errorz.InvalidInput

	if ns.Email == "" {
		invalid = append(invalid, errorz.Keyed{Key: "email", Err: errors.New("is required")})
	}

	if ns.Name == "" {
		invalid = append(invalid, errorz.Keyed{Key: "name", Err: errors.New("is required")})
	}

	if len(invalid) > 0 {
		return invalid
	}

	return nil
}
