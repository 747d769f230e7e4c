package auth

import (
	"fmt"
	"strings"
	"unicode/utf8"

	zxcvbn "github.com/ccojocar/zxcvbn-go"
	"github.com/ccojocar/zxcvbn-go/match"
	"github.com/willemschots/newsroom/internal/krypto"
)

const (
	// We put a generous upper cap on password length, so people can use
	// passphrases but we don't allow MBs of data as a password. An
	// unbounded password would also be an easy way to bog down the
	// hash workers.
	maxPasswordBytes = 512

	// Passwords with a strength score below this are rejected.
	minPasswordScore = 3
)

var ErrInvalidPassword = fmt.Errorf("invalid password")

// WeakPasswordError indicates a password was rejected by the strength
// estimator. Its message is meant to be shown to end users.
type WeakPasswordError struct {
	Warning     string
	Suggestions []string
}

func (e *WeakPasswordError) Error() string {
	if e.Warning == "" && len(e.Suggestions) == 0 {
		return "The password is too weak."
	}

	lines := make([]string, 0, len(e.Suggestions)+1)
	if e.Warning != "" {
		lines = append(lines, e.Warning)
	}
	lines = append(lines, e.Suggestions...)

	return strings.Join(lines, "\n")
}

// Password is a plaintext password.
//
// It should never be persisted, logged or exposed in any other way. To
// protect ourselves from accidentally doing so, the type implements
// several common interfaces that would allow it to be used inappropriately.
//
// There are two ways to obtain a Password:
//   - ParsePassword, which also enforces the strength policy. Use this
//     whenever a new password is being set.
//   - UnmarshalText, which only enforces the length cap. This allows
//     existing passwords to be decoded from incoming login forms without
//     retroactively applying the policy to them.
type Password struct {
	plain []byte
}

// ParsePassword creates a new Password from a plaintext string and checks
// it against the strength policy. Weak passwords are rejected with a
// *WeakPasswordError describing why.
func ParsePassword(pwd string) (Password, error) {
	if len(pwd) == 0 || len(pwd) > maxPasswordBytes {
		return Password{}, ErrInvalidPassword
	}

	strength := zxcvbn.PasswordStrength(pwd, nil)
	if strength.Score < minPasswordScore {
		return Password{}, feedback(strength.MatchSequence)
	}

	return Password{
		plain: []byte(pwd),
	}, nil
}

// UnmarshalText sets the password to the provided value. Only the length
// cap is enforced, not the strength policy.
func (p *Password) UnmarshalText(text []byte) error {
	if len(text) == 0 || len(text) > maxPasswordBytes {
		return ErrInvalidPassword
	}

	p.plain = make([]byte, len(text))
	copy(p.plain, text)

	return nil
}

// String renders a * for every character in the password. The length of
// a password is not considered sensitive, the value very much is.
func (p Password) String() string {
	return strings.Repeat("*", utf8.RuneCount(p.plain))
}

func (p Password) Format(f fmt.State, verb rune) {
	f.Write([]byte(p.String()))
}

func (p Password) MarshalText() ([]byte, error) {
	return []byte(krypto.SecretMarker), nil
}

// feedback translates the estimators match sequence into a
// *WeakPasswordError with a human readable explanation. The advice is
// based on the largest pattern found in the password.
func feedback(seq []match.Match) *WeakPasswordError {
	var longest *match.Match
	for i := range seq {
		if longest == nil || len(seq[i].Token) > len(longest.Token) {
			longest = &seq[i]
		}
	}

	if longest == nil {
		return &WeakPasswordError{}
	}

	werr := &WeakPasswordError{
		Suggestions: []string{"Add another word or two. Uncommon words are better."},
	}

	switch {
	case longest.Pattern == "dictionary" || longest.Pattern == "l33t":
		if longest.DictionaryName == "passwords" {
			werr.Warning = "This is similar to a commonly used password."
		} else {
			werr.Warning = "A word by itself is easy to guess."
		}
	case longest.Pattern == "spatial":
		werr.Warning = "Short keyboard patterns are easy to guess."
		werr.Suggestions = append(werr.Suggestions, "Use a longer keyboard pattern with more turns.")
	case longest.Pattern == "repeat":
		werr.Warning = "Repeated character patterns are easy to guess."
		werr.Suggestions = append(werr.Suggestions, "Avoid repeated words and characters.")
	case longest.Pattern == "sequence":
		werr.Warning = "Sequences like abc or 6543 are easy to guess."
		werr.Suggestions = append(werr.Suggestions, "Avoid sequences.")
	case strings.HasPrefix(longest.Pattern, "date"):
		werr.Warning = "Dates are often easy to guess."
		werr.Suggestions = append(werr.Suggestions, "Avoid dates and years that are associated with you.")
	}

	return werr
}
