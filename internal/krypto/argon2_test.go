package krypto_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/willemschots/newsroom/internal/krypto"
)

func failTextToArgon2Hash() map[string]string {
	return map[string]string{
		"fail, wrong variant":           "$argon2i$v=19$m=19456,t=2,p=1$gZiV/M1gPc22ElAH/Jh1Hw$CWOrkoo7oJBQ/iyh7uJ0LO2aLEfrHwTWllSAxT0zRno",
		"fail, non-numeric version":     "$argon2id$v=abc$m=19456,t=2,p=1$gZiV/M1gPc22ElAH/Jh1Hw$CWOrkoo7oJBQ/iyh7uJ0LO2aLEfrHwTWllSAxT0zRno",
		"fail, non-matching version":    "$argon2id$v=18$m=19456,t=2,p=1$gZiV/M1gPc22ElAH/Jh1Hw$CWOrkoo7oJBQ/iyh7uJ0LO2aLEfrHwTWllSAxT0zRno",
		"fail, non-numeric memory":      "$argon2id$v=19$m=abc,t=2,p=1$gZiV/M1gPc22ElAH/Jh1Hw$CWOrkoo7oJBQ/iyh7uJ0LO2aLEfrHwTWllSAxT0zRno",
		"fail, non-numeric iterations":  "$argon2id$v=19$m=19456,t=abc,p=1$gZiV/M1gPc22ElAH/Jh1Hw$CWOrkoo7oJBQ/iyh7uJ0LO2aLEfrHwTWllSAxT0zRno",
		"fail, non-numeric parallelism": "$argon2id$v=19$m=19456,t=2,p=abc$gZiV/M1gPc22ElAH/Jh1Hw$CWOrkoo7oJBQ/iyh7uJ0LO2aLEfrHwTWllSAxT0zRno",
		"fail, zero iterations":         "$argon2id$v=19$m=19456,t=0,p=1$gZiV/M1gPc22ElAH/Jh1Hw$CWOrkoo7oJBQ/iyh7uJ0LO2aLEfrHwTWllSAxT0zRno",
		"fail, zero parallelism":        "$argon2id$v=19$m=19456,t=2,p=0$gZiV/M1gPc22ElAH/Jh1Hw$CWOrkoo7oJBQ/iyh7uJ0LO2aLEfrHwTWllSAxT0zRno",
		"fail, memory too small":        "$argon2id$v=19$m=4,t=2,p=1$gZiV/M1gPc22ElAH/Jh1Hw$CWOrkoo7oJBQ/iyh7uJ0LO2aLEfrHwTWllSAxT0zRno",
		"fail, excessive memory":        "$argon2id$v=19$m=4294967295,t=2,p=1$gZiV/M1gPc22ElAH/Jh1Hw$CWOrkoo7oJBQ/iyh7uJ0LO2aLEfrHwTWllSAxT0zRno",
		"fail, non-base64 salt":         "$argon2id$v=19$m=19456,t=2,p=1$??????????????????????$CWOrkoo7oJBQ/iyh7uJ0LO2aLEfrHwTWllSAxT0zRno",
		"fail, non-base64 hash":         "$argon2id$v=19$m=19456,t=2,p=1$gZiV/M1gPc22ElAH/Jh1Hw$???????????????????????????????????????????",
		"fail, missing segments":        "$argon2id$v=19$m=19456,t=2,p=1$gZiV/M1gPc22ElAH/Jh1Hw",
		"fail, empty":                   "",
	}
}

// knownHash is a fixed valid-format hash with no real matching password.
func knownHash() (string, krypto.Argon2Hash) {
	return "$argon2id$v=19$m=15000,t=2,p=1$gZiV/M1gPc22ElAH/Jh1Hw$CWOrkoo7oJBQ/iyh7uJ0LO2aLEfrHwTWllSAxT0zRno",
		krypto.Argon2Hash{
			Variant:     "argon2id",
			Version:     19,
			MemoryKiB:   15000,
			Iterations:  2,
			Parallelism: 1,
			Salt: []byte{
				0x81, 0x98, 0x95, 0xfc, 0xcd, 0x60, 0x3d, 0xcd,
				0xb6, 0x12, 0x50, 0x07, 0xfc, 0x98, 0x75, 0x1f,
			},
			Hash: []byte{
				0x09, 0x63, 0xab, 0x92, 0x8a, 0x3b, 0xa0, 0x90,
				0x50, 0xfe, 0x2c, 0xa1, 0xee, 0xe2, 0x74, 0x2c,
				0xed, 0x9a, 0x2c, 0x47, 0xeb, 0x1f, 0x04, 0xd6,
				0x96, 0x54, 0x80, 0xc5, 0x3d, 0x33, 0x46, 0x7a,
			},
		}
}

func Test_Argon2Hash_HashAndMatch(t *testing.T) {
	okTests := map[string]string{
		"ascii":     "12345678",
		"non-ascii": "🥸🥸🥸",
	}

	for name, raw := range okTests {
		t.Run(name, func(t *testing.T) {
			got, err := krypto.HashArgon2([]byte(raw))
			if err != nil {
				t.Fatalf("failed to hash: %v", err)
			}

			if !got.MatchBytes([]byte(raw)) {
				t.Errorf("expected raw value to match its own hash, but it did not")
			}

			if got.MatchBytes([]byte(raw + "x")) {
				t.Errorf("expected different value to not match hash, but it did")
			}

			// Hashing the same value again must yield a different hash
			// because of the random salt.
			again, err := krypto.HashArgon2([]byte(raw))
			if err != nil {
				t.Fatalf("failed to hash: %v", err)
			}

			if reflect.DeepEqual(got, again) {
				t.Errorf("did not expect\n%#v\nto equal\n%#v\n", got, again)
			}
		})
	}

	t.Run("fail, empty", func(t *testing.T) {
		_, err := krypto.HashArgon2(nil)
		if !errors.Is(err, krypto.ErrInvalidInput) {
			t.Fatalf("expected %v, but got %v (via errors.Is)", krypto.ErrInvalidInput, err)
		}
	})
}

func Test_Argon2Hash_ParseAndString(t *testing.T) {
	t.Run("ok, known hash", func(t *testing.T) {
		raw, want := knownHash()

		got, err := krypto.ParseArgon2Hash(raw)
		if err != nil {
			t.Fatalf("failed to parse hash: %v", err)
		}

		if !reflect.DeepEqual(got, want) {
			t.Errorf("wanted\n%#v\nbut got\n%#v\n", want, got)
		}

		if got.String() != raw {
			t.Errorf("got\n%s\nwant\n%s\n", got.String(), raw)
		}
	})

	t.Run("ok, round trip freshly derived hash", func(t *testing.T) {
		hash, err := krypto.HashArgon2([]byte("some data"))
		if err != nil {
			t.Fatalf("failed to hash: %v", err)
		}

		parsed, err := krypto.ParseArgon2Hash(hash.String())
		if err != nil {
			t.Fatalf("failed to parse hash: %v", err)
		}

		if !reflect.DeepEqual(hash, parsed) {
			t.Errorf("wanted\n%#v\nbut got\n%#v\n", hash, parsed)
		}

		if !parsed.MatchBytes([]byte("some data")) {
			t.Errorf("expected raw value to match parsed hash, but it did not")
		}
	})

	for name, txt := range failTextToArgon2Hash() {
		t.Run(name, func(t *testing.T) {
			_, err := krypto.ParseArgon2Hash(txt)
			if !errors.Is(err, krypto.ErrInvalidInput) {
				t.Errorf("expected error to match (using errors.Is)\n%v\ngot\n%v\n", krypto.ErrInvalidInput, err)
			}
		})
	}
}

func Test_Argon2Hash_TextAndSQL(t *testing.T) {
	raw, want := knownHash()

	t.Run("ok, marshal text", func(t *testing.T) {
		got, err := want.MarshalText()
		if err != nil {
			t.Fatalf("failed to marshal text: %v", err)
		}

		if string(got) != raw {
			t.Errorf("got\n%s\nwant\n%s\n", got, raw)
		}
	})

	t.Run("ok, unmarshal text", func(t *testing.T) {
		var got krypto.Argon2Hash
		if err := got.UnmarshalText([]byte(raw)); err != nil {
			t.Fatalf("failed to unmarshal text: %v", err)
		}

		if !reflect.DeepEqual(got, want) {
			t.Errorf("got\n%#v\nwant\n%#v\n", got, want)
		}
	})

	t.Run("ok, scan and value", func(t *testing.T) {
		var got krypto.Argon2Hash
		if err := got.Scan(raw); err != nil {
			t.Fatalf("failed to scan: %v", err)
		}

		if !reflect.DeepEqual(got, want) {
			t.Errorf("got\n%#v\nwant\n%#v\n", got, want)
		}

		v, err := got.Value()
		if err != nil {
			t.Fatalf("failed to get driver value: %v", err)
		}

		if v != raw {
			t.Errorf("got\n%v\nwant\n%s\n", v, raw)
		}
	})

	t.Run("fail, scan not a string", func(t *testing.T) {
		var got krypto.Argon2Hash
		if err := got.Scan(42); err == nil {
			t.Fatalf("expected error to be non-nil")
		}
	})
}
