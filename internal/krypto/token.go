package krypto

import (
	"crypto/rand"
	"errors"
	"log/slog"
)

const (
	// TokenLen is the length of a subscription token in characters.
	TokenLen = 25

	tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

var ErrInvalidToken = errors.New("invalid token")

// Token is a random case-sensitive alphanumeric token that is sent via
// email to confirm a subscription.
//
// The only time a token should be provided to an outside party is as part
// of the confirmation email. Tokens are confidential and should never be
// exposed in logs.
type Token [TokenLen]byte

// GenerateToken creates a new random token. Each character is drawn
// uniformly from the token alphabet.
func GenerateToken() (Token, error) {
	var t Token

	// Rejection sampling, so the modulo does not bias towards the start
	// of the alphabet. 248 is the largest multiple of len(tokenAlphabet)
	// that fits a byte.
	const limit = 248

	buf := make([]byte, TokenLen)
	i := 0
	for i < TokenLen {
		if _, err := rand.Read(buf); err != nil {
			return Token{}, err
		}

		for _, b := range buf {
			if b >= limit {
				continue
			}
			t[i] = tokenAlphabet[int(b)%len(tokenAlphabet)]
			i++
			if i == TokenLen {
				break
			}
		}
	}

	return t, nil
}

// ParseToken parses a token from a string.
func ParseToken(raw string) (Token, error) {
	if len(raw) != TokenLen {
		return Token{}, ErrInvalidToken
	}

	var t Token
	for i := 0; i < TokenLen; i++ {
		if !validTokenByte(raw[i]) {
			return Token{}, ErrInvalidToken
		}
		t[i] = raw[i]
	}

	return t, nil
}

// String returns the string representation of the token. As opposed to a
// password this is allowed, we need to embed tokens in confirmation links.
func (t Token) String() string {
	return string(t[:])
}

// LogValue implements the slog.Valuer interface.
func (t Token) LogValue() slog.Value {
	return slog.StringValue(SecretMarker)
}

func validTokenByte(b byte) bool {
	switch {
	case b >= 'A' && b <= 'Z':
		return true
	case b >= 'a' && b <= 'z':
		return true
	case b >= '0' && b <= '9':
		return true
	}
	return false
}
