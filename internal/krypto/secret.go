package krypto

import "fmt"

// Secret is arbitrary sensitive data that needs to be passed around
// but not exposed. Things like passwords, API tokens or other credentials.
//
// The default print and serialization paths all render the SecretMarker
// instead of the wrapped value. The only way to get to the value is the
// explicit SecretValue method.
type Secret struct {
	value []byte
}

// NewSecret creates a new secret.
func NewSecret(raw string) Secret {
	return Secret{
		value: []byte(raw),
	}
}

func (s Secret) Format(f fmt.State, verb rune) {
	f.Write([]byte(SecretMarker))
}

func (s Secret) MarshalText() ([]byte, error) {
	return []byte(SecretMarker), nil
}

// UnmarshalText sets the secret to the provided value. This allows
// secrets to be decoded directly from incoming form fields.
func (s *Secret) UnmarshalText(text []byte) error {
	s.value = make([]byte, len(text))
	copy(s.value, text)
	return nil
}

// SecretValue returns the secret as a byte slice. This is provided
// as an escape hatch for cases where the value needs to be provided
// to third party packages or libraries.
func (s Secret) SecretValue() []byte {
	return s.value
}
