package subscriber_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/willemschots/newsroom/internal/subscriber"
)

func Test_ParseName(t *testing.T) {
	okTests := map[string]string{
		"simple name":            "Alice Appleton",
		"256 character name":     strings.Repeat("ё", 256),
		"name with punctuation":  "Mr. O'Neil-Smith, jr.",
		"name with inner spaces": "Anna  Maria",
	}

	for name, tc := range okTests {
		t.Run(fmt.Sprintf("ok, %s", name), func(t *testing.T) {
			got, err := subscriber.ParseName(tc)
			if err != nil {
				t.Fatalf("failed to parse name: %v", err)
			}

			if string(got) != tc {
				t.Errorf("got %q, want %q", got, tc)
			}
		})
	}

	failTests := map[string]string{
		"empty string":       "",
		"whitespace only":    "   ",
		"257 character name": strings.Repeat("ё", 257),
	}

	for _, c := range []string{`/`, `(`, `)`, `"`, `<`, `>`, `\`, `{`, `}`} {
		failTests[fmt.Sprintf("forbidden character %s", c)] = fmt.Sprintf("Alice%sAppleton", c)
	}

	for name, tc := range failTests {
		t.Run(fmt.Sprintf("fail, %s", name), func(t *testing.T) {
			_, err := subscriber.ParseName(tc)
			if !errors.Is(err, subscriber.ErrInvalidName) {
				t.Errorf("expected error %v, got %v (via errors.Is)", subscriber.ErrInvalidName, err)
			}
		})
	}
}

func Test_ParseStatus(t *testing.T) {
	for _, tc := range []string{"pending_confirmation", "confirmed"} {
		t.Run(fmt.Sprintf("ok, %s", tc), func(t *testing.T) {
			got, err := subscriber.ParseStatus(tc)
			if err != nil {
				t.Fatalf("failed to parse status: %v", err)
			}

			if string(got) != tc {
				t.Errorf("got %q, want %q", got, tc)
			}
		})
	}

	for _, tc := range []string{"", "unknown", "CONFIRMED"} {
		t.Run(fmt.Sprintf("fail, %q", tc), func(t *testing.T) {
			_, err := subscriber.ParseStatus(tc)
			if !errors.Is(err, subscriber.ErrInvalidStatus) {
				t.Errorf("expected error %v, got %v (via errors.Is)", subscriber.ErrInvalidStatus, err)
			}
		})
	}
}
