package email

import (
	"errors"
	"net/mail"
	"strings"
)

// ErrInvalidEmail indicates an email address is not valid.
var ErrInvalidEmail = errors.New("invalid email address")

// maxAddressLen is the maximum address length per RFC 3696.
const maxAddressLen = 320

// Address is an email address. Subscribers sign up with one and every
// outgoing email is delivered to one.
type Address string

// ParseAddress checks that the given string is shaped like a bare email
// address. It only checks the format, there is no guarantee a mailbox
// exists on the other end.
func ParseAddress(raw string) (Address, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || len(trimmed) > maxAddressLen {
		return Address(""), ErrInvalidEmail
	}

	addr, err := mail.ParseAddress(trimmed)
	if err != nil {
		return Address(""), ErrInvalidEmail
	}

	// mail.ParseAddress is more lenient than we want, it also accepts
	// addresses with display names and comments:
	// "Alice <alice@example.com>(comment)".
	// Reject anything that is not just the address itself.
	if addr.Address != trimmed {
		return Address(""), ErrInvalidEmail
	}

	return Address(addr.Address), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	addr, err := ParseAddress(string(text))
	if err != nil {
		return err
	}

	*a = addr

	return nil
}
