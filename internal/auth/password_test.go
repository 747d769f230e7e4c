package auth_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/willemschots/newsroom/internal/auth"
	"github.com/willemschots/newsroom/internal/krypto"
)

func Test_ParsePassword(t *testing.T) {
	okTests := []string{
		"r0sebudmaelstrom11/20/91aaaa",
		"reallyStrongPassword1",
		"correct horse battery staple",
	}

	for _, tc := range okTests {
		t.Run(fmt.Sprintf("ok, %s", tc), func(t *testing.T) {
			_, err := auth.ParsePassword(tc)
			if err != nil {
				t.Errorf("failed to parse password: %v", err)
			}
		})
	}

	weakTests := []string{
		"abc123",
		"hey<123",
		"password",
		"qwertyuiop",
		"aaaaaaaaaaaaaaaa",
	}

	for _, tc := range weakTests {
		t.Run(fmt.Sprintf("fail, weak password %s", tc), func(t *testing.T) {
			_, err := auth.ParsePassword(tc)

			var werr *auth.WeakPasswordError
			if !errors.As(err, &werr) {
				t.Fatalf("expected a *WeakPasswordError, got %v", err)
			}

			if werr.Error() == "" {
				t.Errorf("expected a non-empty user facing message")
			}
		})
	}

	t.Run("fail, empty password", func(t *testing.T) {
		_, err := auth.ParsePassword("")
		if !errors.Is(err, auth.ErrInvalidPassword) {
			t.Errorf("expected error %v, got %v (via errors.Is)", auth.ErrInvalidPassword, err)
		}
	})

	t.Run("fail, too long password", func(t *testing.T) {
		long := make([]byte, 513)
		for i := range long {
			long[i] = byte('a' + i%26)
		}

		_, err := auth.ParsePassword(string(long))
		if !errors.Is(err, auth.ErrInvalidPassword) {
			t.Errorf("expected error %v, got %v (via errors.Is)", auth.ErrInvalidPassword, err)
		}
	})
}

func Test_WeakPasswordError_Error(t *testing.T) {
	t.Run("no feedback", func(t *testing.T) {
		werr := &auth.WeakPasswordError{}
		if werr.Error() != "The password is too weak." {
			t.Errorf("got %q, want %q", werr.Error(), "The password is too weak.")
		}
	})

	t.Run("warning and suggestions", func(t *testing.T) {
		werr := &auth.WeakPasswordError{
			Warning:     "A word by itself is easy to guess.",
			Suggestions: []string{"Add another word or two. Uncommon words are better."},
		}

		want := "A word by itself is easy to guess.\nAdd another word or two. Uncommon words are better."
		if werr.Error() != want {
			t.Errorf("got %q, want %q", werr.Error(), want)
		}
	})
}

func Test_Password_DoesNotExpose(t *testing.T) {
	pwd, err := auth.ParsePassword("reallyStrongPassword1")
	if err != nil {
		t.Fatalf("failed to parse password: %v", err)
	}

	t.Run("display masks every character", func(t *testing.T) {
		want := "*********************"
		for _, got := range []string{
			pwd.String(),
			fmt.Sprintf("%s", pwd),
			fmt.Sprintf("%v", pwd),
		} {
			if got != want {
				t.Errorf("got %q, want %q", got, want)
			}
		}
	})

	t.Run("marshals to the secret marker", func(t *testing.T) {
		data, err := json.Marshal(pwd)
		if err != nil {
			t.Fatalf("failed to marshal password: %v", err)
		}

		want := fmt.Sprintf("%q", krypto.SecretMarker)
		if string(data) != want {
			t.Errorf("got %s, want %s", data, want)
		}
	})
}

func Test_Password_UnmarshalText(t *testing.T) {
	t.Run("ok, weak passwords are accepted", func(t *testing.T) {
		// Existing users might have passwords that predate the
		// strength policy, they still need to be able to log in.
		var pwd auth.Password
		err := pwd.UnmarshalText([]byte("abc123"))
		if err != nil {
			t.Fatalf("failed to unmarshal password: %v", err)
		}

		if pwd.String() != "******" {
			t.Errorf("got %q, want %q", pwd.String(), "******")
		}
	})

	t.Run("fail, empty password", func(t *testing.T) {
		var pwd auth.Password
		err := pwd.UnmarshalText([]byte(""))
		if !errors.Is(err, auth.ErrInvalidPassword) {
			t.Errorf("expected error %v, got %v (via errors.Is)", auth.ErrInvalidPassword, err)
		}
	})
}
