package krypto_test

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/willemschots/newsroom/internal/krypto"
)

func Test_Secret_DoesNotExpose(t *testing.T) {
	const raw = "super-secret-value"

	secret := krypto.NewSecret(raw)

	t.Run("ok, fmt verbs render the marker", func(t *testing.T) {
		for _, verb := range []string{"%s", "%v", "%+v", "%#v", "%q"} {
			got := fmt.Sprintf(verb, secret)
			if strings.Contains(got, raw) {
				t.Errorf("verb %s exposed the secret: %s", verb, got)
			}
			if got != krypto.SecretMarker {
				t.Errorf("verb %s got %q, want %q", verb, got, krypto.SecretMarker)
			}
		}
	})

	t.Run("ok, json marshal renders the marker", func(t *testing.T) {
		got, err := json.Marshal(secret)
		if err != nil {
			t.Fatalf("failed to marshal: %v", err)
		}

		if strings.Contains(string(got), raw) {
			t.Errorf("json marshal exposed the secret: %s", got)
		}
	})

	t.Run("ok, explicit accessor exposes the value", func(t *testing.T) {
		if string(secret.SecretValue()) != raw {
			t.Errorf("got %q, want %q", secret.SecretValue(), raw)
		}
	})

	t.Run("ok, unmarshal text round trip", func(t *testing.T) {
		var s krypto.Secret
		if err := s.UnmarshalText([]byte(raw)); err != nil {
			t.Fatalf("failed to unmarshal: %v", err)
		}

		if string(s.SecretValue()) != raw {
			t.Errorf("got %q, want %q", s.SecretValue(), raw)
		}
	})
}

func Test_Key_DoesNotExpose(t *testing.T) {
	raw := strings.Repeat("ab", 32)

	key, err := krypto.ParseKey(raw)
	if err != nil {
		t.Fatalf("failed to parse key: %v", err)
	}

	got := fmt.Sprintf("%v", key)
	if got != krypto.SecretMarker {
		t.Errorf("got %q, want %q", got, krypto.SecretMarker)
	}

	if len(key.SecretValue()) != 32 {
		t.Errorf("got key of %d bytes, want 32", len(key.SecretValue()))
	}
}

func Test_ParseKey_Fails(t *testing.T) {
	failTests := map[string]string{
		"empty":     "",
		"too short": strings.Repeat("ab", 31),
		"too long":  strings.Repeat("ab", 33),
		"non-hex":   strings.Repeat("zz", 32),
	}

	for name, raw := range failTests {
		t.Run(name, func(t *testing.T) {
			_, err := krypto.ParseKey(raw)
			if err == nil {
				t.Errorf("expected error, got nil")
			}
		})
	}
}
